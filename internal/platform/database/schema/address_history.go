package schema

// AddressHistoryTable represents the 'address_history' table
type AddressHistoryTable struct {
	Table      string
	ID         string
	AddressKey string
	CreatedAt  string
	CreatedBy  string
	Snapshot   string
}

// AddressHistory is the schema definition for address_history
var AddressHistory = AddressHistoryTable{
	Table:      "address_history",
	ID:         "id",
	AddressKey: "address_key",
	CreatedAt:  "created_at",
	CreatedBy:  "created_by",
	Snapshot:   "snapshot",
}

func (t AddressHistoryTable) Columns() []string {
	return []string{t.ID, t.AddressKey, t.CreatedAt, t.CreatedBy, t.Snapshot}
}
