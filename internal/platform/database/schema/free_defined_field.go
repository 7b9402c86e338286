package schema

// FreeDefinedFieldTable represents the 'free_defined_field' catalogue table
type FreeDefinedFieldTable struct {
	Table     string
	ID        string
	Group     string
	Label     string
	Position  string
	Visible   string
	ValueType string
	CreatedAt string
	CreatedBy string
	EditedAt  string
	EditedBy  string
}

// FreeDefinedField is the schema definition for free_defined_field
var FreeDefinedField = FreeDefinedFieldTable{
	Table:     "free_defined_field",
	ID:        "id",
	Group:     "field_group",
	Label:     "label",
	Position:  "position",
	Visible:   "visible",
	ValueType: "value_type",
	CreatedAt: "created_at",
	CreatedBy: "created_by",
	EditedAt:  "edited_at",
	EditedBy:  "edited_by",
}

func (t FreeDefinedFieldTable) Columns() []string {
	return []string{
		t.ID, t.Group, t.Label, t.Position, t.Visible, t.ValueType,
		t.CreatedAt, t.CreatedBy, t.EditedAt, t.EditedBy,
	}
}
