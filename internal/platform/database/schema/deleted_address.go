package schema

// DeletedAddressTable represents the 'deleted_address' archive table
type DeletedAddressTable struct {
	Table      string
	AddressKey string
	DeletedAt  string
	DeletedBy  string
	Snapshot   string
}

// DeletedAddress is the schema definition for deleted_address
var DeletedAddress = DeletedAddressTable{
	Table:      "deleted_address",
	AddressKey: "address_key",
	DeletedAt:  "deleted_at",
	DeletedBy:  "deleted_by",
	Snapshot:   "snapshot",
}

func (t DeletedAddressTable) Columns() []string {
	return []string{t.AddressKey, t.DeletedAt, t.DeletedBy, t.Snapshot}
}
