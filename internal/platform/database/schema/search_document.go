package schema

// SearchDocumentTable represents the 'search_document' table
type SearchDocumentTable struct {
	Table     string
	DocID     string
	Fields    string
	Vector    string
	UpdatedAt string
}

// SearchDocument is the schema definition for search_document
var SearchDocument = SearchDocumentTable{
	Table:     "search_document",
	DocID:     "doc_id",
	Fields:    "fields",
	Vector:    "vector",
	UpdatedAt: "updated_at",
}

func (t SearchDocumentTable) Columns() []string {
	return []string{t.DocID, t.Fields, t.Vector, t.UpdatedAt}
}
