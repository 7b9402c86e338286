package schema

// FreeDefinedFieldHistoryTable represents the 'free_defined_field_history' table
type FreeDefinedFieldHistoryTable struct {
	Table     string
	ID        string
	FieldID   string
	CreatedAt string
	CreatedBy string
	Snapshot  string
}

// FreeDefinedFieldHistory is the schema definition for free_defined_field_history
var FreeDefinedFieldHistory = FreeDefinedFieldHistoryTable{
	Table:     "free_defined_field_history",
	ID:        "id",
	FieldID:   "field_id",
	CreatedAt: "created_at",
	CreatedBy: "created_by",
	Snapshot:  "snapshot",
}

func (t FreeDefinedFieldHistoryTable) Columns() []string {
	return []string{t.ID, t.FieldID, t.CreatedAt, t.CreatedBy, t.Snapshot}
}
