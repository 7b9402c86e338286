package schema

// AddressTable represents the 'address' table
type AddressTable struct {
	Table string

	Key       string
	UID       string
	Owner     string
	Kind      string
	CreatedAt string
	CreatedBy string
	EditedAt  string
	EditedBy  string
	DeletedAt string

	Organization string
	Position     string
	Salutation   string
	FirstName    string
	LastName     string
	Nickname     string
	Street       string
	Postcode     string
	City         string
	District     string
	Region       string
	Country      string
	Gender       string

	OrganizationLower string
	PositionLower     string
	SalutationLower   string
	FirstNameLower    string
	LastNameLower     string
	NicknameLower     string
	StreetLower       string
	PostcodeLower     string
	CityLower         string

	OrganizationChar1 string
	PositionChar1     string
	SalutationChar1   string
	FirstNameChar1    string
	LastNameChar1     string
	NicknameChar1     string
	StreetChar1       string
	PostcodeChar1     string
	CityChar1         string

	CategoryItems string
	TagItems      string
	BusinessItems string

	Items string
}

// Address is the schema definition for address
var Address = AddressTable{
	Table: "address",

	Key:       "key",
	UID:       "uid",
	Owner:     "owner",
	Kind:      "kind",
	CreatedAt: "created_at",
	CreatedBy: "created_by",
	EditedAt:  "edited_at",
	EditedBy:  "edited_by",
	DeletedAt: "deleted_at",

	Organization: "organization",
	Position:     "position",
	Salutation:   "salutation",
	FirstName:    "first_name",
	LastName:     "last_name",
	Nickname:     "nickname",
	Street:       "street",
	Postcode:     "postcode",
	City:         "city",
	District:     "district",
	Region:       "region",
	Country:      "country",
	Gender:       "gender",

	OrganizationLower: "organization_lower",
	PositionLower:     "position_lower",
	SalutationLower:   "salutation_lower",
	FirstNameLower:    "first_name_lower",
	LastNameLower:     "last_name_lower",
	NicknameLower:     "nickname_lower",
	StreetLower:       "street_lower",
	PostcodeLower:     "postcode_lower",
	CityLower:         "city_lower",

	OrganizationChar1: "organization_char1",
	PositionChar1:     "position_char1",
	SalutationChar1:   "salutation_char1",
	FirstNameChar1:    "first_name_char1",
	LastNameChar1:     "last_name_char1",
	NicknameChar1:     "nickname_char1",
	StreetChar1:       "street_char1",
	PostcodeChar1:     "postcode_char1",
	CityChar1:         "city_char1",

	CategoryItems: "category_items",
	TagItems:      "tag_items",
	BusinessItems: "business_items",

	Items: "items",
}

func (t AddressTable) Columns() []string {
	return []string{
		t.Key, t.UID, t.Owner, t.Kind,
		t.CreatedAt, t.CreatedBy, t.EditedAt, t.EditedBy, t.DeletedAt,
		t.Organization, t.Position, t.Salutation, t.FirstName, t.LastName,
		t.Nickname, t.Street, t.Postcode, t.City, t.District, t.Region,
		t.Country, t.Gender,
		t.OrganizationLower, t.PositionLower, t.SalutationLower,
		t.FirstNameLower, t.LastNameLower, t.NicknameLower,
		t.StreetLower, t.PostcodeLower, t.CityLower,
		t.OrganizationChar1, t.PositionChar1, t.SalutationChar1,
		t.FirstNameChar1, t.LastNameChar1, t.NicknameChar1,
		t.StreetChar1, t.PostcodeChar1, t.CityChar1,
		t.CategoryItems, t.TagItems, t.BusinessItems,
		t.Items,
	}
}
