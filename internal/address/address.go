// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package address implements the contact record aggregate and its service.

An Address is the only entity family in the system: scalar descriptive
fields, three flat string-set fields (category, tag, business), and eight
repeated sub-item collections, each child carrying its own stable uid and
audit metadata. Records are soft-deleted by default; force deletion also
purges history.

The package follows a strict write path: normalize and validate first
(atomic, nothing applied on failure), snapshot the pre-image, commit to the
primary store, then schedule the derived index update off the request path.
*/
package address

import (
	"strings"
	"time"

	"github.com/karteiapp/kartei/internal/search"
	"github.com/karteiapp/kartei/pkg/format"
)

// Record kinds. Any "x-" prefixed tag is accepted as an extension kind.
const (
	KindIndividual   = "individual"
	KindOrganization = "organization"
	KindGroup        = "group"
	KindLocation     = "location"

	kindExtensionPrefix = "x-"
)

// Gender codes (male, female, other, none, unknown).
var genderCodes = []string{"m", "f", "o", "n", "u"}

// Free-defined value types.
var valueTypes = []string{"text", "int", "float", "date"}

// birthdayLabels are the anniversary labels recognized as a birthday,
// matched case-insensitively in collection order.
var birthdayLabels = []string{"birthday", "geburtstag"}

// KindValid reports whether the kind is a known enum value or an
// x- extension tag.
func KindValid(kind string) bool {
	switch kind {
	case KindIndividual, KindOrganization, KindGroup, KindLocation:
		return true
	}
	return strings.HasPrefix(kind, kindExtensionPrefix) && len(kind) > len(kindExtensionPrefix)
}

// GenderValid reports whether the gender is one of the five codes.
func GenderValid(gender string) bool {
	for _, code := range genderCodes {
		if gender == code {
			return true
		}
	}
	return false
}

// ValueTypeValid reports whether the free-defined value type is known.
func ValueTypeValid(valueType string) bool {
	for _, vt := range valueTypes {
		if valueType == vt {
			return true
		}
	}
	return false
}

// SubItemMeta is the identity and audit metadata shared by every sub-item.
// The uid is generated on first save and immutable afterwards; edited_at
// advances only when the item's content actually changed.
type SubItemMeta struct {
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	EditedAt  time.Time `json:"edited_at"`
	EditedBy  string    `json:"edited_by"`
}

// Phone is a labeled phone number.
type Phone struct {
	SubItemMeta
	Label  string `json:"label"`
	Number string `json:"number"`
}

// Email is a labeled email address.
type Email struct {
	SubItemMeta
	Label string `json:"label"`
	Email string `json:"email"`
}

// URL is a labeled web address.
type URL struct {
	SubItemMeta
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Note is a free-form text note.
type Note struct {
	SubItemMeta
	Text string `json:"text"`
}

// Journal is a dated free-form journal entry.
type Journal struct {
	SubItemMeta
	Text string `json:"text"`
}

// Agreement is a free-form agreement text.
type Agreement struct {
	SubItemMeta
	Text string `json:"text"`
}

// Anniversary is a recurring date; any component may be absent, at least
// one must be present. Day accepts 1-31 regardless of month.
type Anniversary struct {
	SubItemMeta
	Label string `json:"label"`
	Year  *int   `json:"year,omitempty"`
	Month *int   `json:"month,omitempty"`
	Day   *int   `json:"day,omitempty"`
}

// FreeDefined is a value for a configurable free-defined field.
type FreeDefined struct {
	SubItemMeta
	Group     string `json:"group,omitempty"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	ValueType string `json:"value_type"`
}

// Items groups the eight sub-item collections of a record.
type Items struct {
	Phones        []Phone       `json:"phone_items,omitempty"`
	Emails        []Email       `json:"email_items,omitempty"`
	URLs          []URL         `json:"url_items,omitempty"`
	Notes         []Note        `json:"note_items,omitempty"`
	Journals      []Journal     `json:"journal_items,omitempty"`
	Agreements    []Agreement   `json:"agreement_items,omitempty"`
	FreeDefined   []FreeDefined `json:"free_defined_items,omitempty"`
	Anniversaries []Anniversary `json:"anniversary_items,omitempty"`
}

// Address is the contact record root aggregate.
//
// Key is the storage key (UUIDv7), UID is the stable record identity,
// distinct from the key. Scalar fields are nil when unset. The lowercase
// and first-character projections are derived at write time by the store
// and never held authoritatively on the model.
type Address struct {
	Key   string `json:"key"`
	UID   string `json:"uid"`
	Owner string `json:"owner"`
	Kind  string `json:"kind"`

	CreatedAt time.Time  `json:"created_at"`
	CreatedBy string     `json:"created_by"`
	EditedAt  time.Time  `json:"edited_at"`
	EditedBy  string     `json:"edited_by"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	Organization *string `json:"organization,omitempty"`
	Position     *string `json:"position,omitempty"`
	Salutation   *string `json:"salutation,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Nickname     *string `json:"nickname,omitempty"`
	Street       *string `json:"street,omitempty"`
	Postcode     *string `json:"postcode,omitempty"`
	City         *string `json:"city,omitempty"`
	District     *string `json:"district,omitempty"`
	Region       *string `json:"region,omitempty"`
	Country      *string `json:"country,omitempty"`
	Gender       *string `json:"gender,omitempty"`

	CategoryItems []string `json:"category_items,omitempty"`
	TagItems      []string `json:"tag_items,omitempty"`
	BusinessItems []string `json:"business_items,omitempty"`

	Items Items `json:"items"`
}

// FilterableFields are the scalar fields carrying lowercase and
// first-character projections for filtering and sorting.
var FilterableFields = []string{
	"organization", "position", "salutation", "first_name",
	"last_name", "nickname", "street", "postcode", "city",
}

// scalarByName resolves a scalar field pointer by its wire name.
func (address *Address) scalarByName(name string) *string {
	switch name {
	case "organization":
		return address.Organization
	case "position":
		return address.Position
	case "salutation":
		return address.Salutation
	case "first_name":
		return address.FirstName
	case "last_name":
		return address.LastName
	case "nickname":
		return address.Nickname
	case "street":
		return address.Street
	case "postcode":
		return address.Postcode
	case "city":
		return address.City
	case "district":
		return address.District
	case "region":
		return address.Region
	case "country":
		return address.Country
	case "gender":
		return address.Gender
	}
	return nil
}

// Projection returns the derived lowercase and first-character values for a
// filterable field. Both are nil when the source field is unset.
func (address *Address) Projection(field string) (lower, char1 *string) {
	source := address.scalarByName(field)
	if source == nil || *source == "" {
		return nil, nil
	}

	loweredValue := strings.ToLower(*source)
	char1Value := loweredFirstChar(*source)
	return &loweredValue, &char1Value
}

// loweredFirstChar is the lowercased first rune of the value.
func loweredFirstChar(value string) string {
	for _, r := range strings.ToLower(value) {
		return string(r)
	}
	return ""
}

// birthdayItem returns the first anniversary whose label marks a birthday.
func (address *Address) birthdayItem() *Anniversary {
	for i := range address.Items.Anniversaries {
		label := strings.ToLower(address.Items.Anniversaries[i].Label)
		for _, known := range birthdayLabels {
			if label == known {
				return &address.Items.Anniversaries[i]
			}
		}
	}
	return nil
}

// Birthday is the ISO partial birth date: "YYYY-MM-DD" when fully known,
// "MM-DD" without a year, otherwise empty.
func (address *Address) Birthday() string {
	item := address.birthdayItem()
	if item == nil || item.Month == nil || item.Day == nil {
		return ""
	}

	if item.Year != nil {
		return format.PartialDate(*item.Year, *item.Month, *item.Day)
	}
	return format.PartialDate(0, *item.Month, *item.Day)
}

// Age is the age in full years at the reference time, or -1 when the birth
// date is not fully known.
func (address *Address) Age(now time.Time) int {
	item := address.birthdayItem()
	if item == nil || item.Year == nil || item.Month == nil || item.Day == nil {
		return -1
	}

	age := now.Year() - *item.Year
	if int(now.Month()) < *item.Month || (int(now.Month()) == *item.Month && now.Day() < *item.Day) {
		age--
	}

	if age < 0 {
		return -1
	}
	return age
}

// SearchSource builds the searchable projection of the record for the
// derived index.
func (address *Address) SearchSource() search.Source {
	source := search.Source{DocID: address.Key}

	scalarNames := []string{
		"organization", "position", "salutation", "first_name", "last_name",
		"nickname", "street", "postcode", "city", "district", "region",
		"country", "gender",
	}

	filterable := make(map[string]bool, len(FilterableFields))
	for _, name := range FilterableFields {
		filterable[name] = true
	}

	for _, name := range scalarNames {
		value := address.scalarByName(name)
		if value == nil {
			continue
		}
		source.Scalars = append(source.Scalars, search.Scalar{
			Name:       name,
			Value:      *value,
			Filterable: filterable[name],
		})
	}

	source.Scalars = append(source.Scalars,
		search.Scalar{Name: "kind", Value: address.Kind},
		search.Scalar{Name: "owner", Value: address.Owner},
	)

	source.MultiValues = []search.MultiValue{
		{Name: "category", Values: address.CategoryItems},
		{Name: "tag", Values: address.TagItems},
		{Name: "business", Values: address.BusinessItems},
	}

	var phones, emails, urls []string
	for _, item := range address.Items.Phones {
		phones = append(phones, item.Number)
	}
	for _, item := range address.Items.Emails {
		emails = append(emails, item.Email)
	}
	for _, item := range address.Items.URLs {
		urls = append(urls, item.URL)
	}
	source.Contacts = []search.MultiValue{
		{Name: "phone", Values: phones},
		{Name: "email", Values: emails},
		{Name: "url", Values: urls},
	}

	for _, item := range address.Items.FreeDefined {
		source.FreeDefined = append(source.FreeDefined, search.TypedValue{
			Label:     item.Label,
			Value:     item.Text,
			ValueType: item.ValueType,
		})
	}

	for _, item := range address.Items.Anniversaries {
		parts := search.DateParts{Label: item.Label}
		if item.Year != nil {
			parts.Year = *item.Year
		}
		if item.Month != nil {
			parts.Month = *item.Month
		}
		if item.Day != nil {
			parts.Day = *item.Day
		}
		source.Anniversaries = append(source.Anniversaries, parts)
	}

	return source
}

// Clone returns a deep copy of the record.
func (address *Address) Clone() *Address {
	clone := *address

	clone.DeletedAt = copyTimePtr(address.DeletedAt)
	clone.Organization = copyStringPtr(address.Organization)
	clone.Position = copyStringPtr(address.Position)
	clone.Salutation = copyStringPtr(address.Salutation)
	clone.FirstName = copyStringPtr(address.FirstName)
	clone.LastName = copyStringPtr(address.LastName)
	clone.Nickname = copyStringPtr(address.Nickname)
	clone.Street = copyStringPtr(address.Street)
	clone.Postcode = copyStringPtr(address.Postcode)
	clone.City = copyStringPtr(address.City)
	clone.District = copyStringPtr(address.District)
	clone.Region = copyStringPtr(address.Region)
	clone.Country = copyStringPtr(address.Country)
	clone.Gender = copyStringPtr(address.Gender)

	clone.CategoryItems = append([]string(nil), address.CategoryItems...)
	clone.TagItems = append([]string(nil), address.TagItems...)
	clone.BusinessItems = append([]string(nil), address.BusinessItems...)

	clone.Items = Items{
		Phones:      append([]Phone(nil), address.Items.Phones...),
		Emails:      append([]Email(nil), address.Items.Emails...),
		URLs:        append([]URL(nil), address.Items.URLs...),
		Notes:       append([]Note(nil), address.Items.Notes...),
		Journals:    append([]Journal(nil), address.Items.Journals...),
		Agreements:  append([]Agreement(nil), address.Items.Agreements...),
		FreeDefined: append([]FreeDefined(nil), address.Items.FreeDefined...),
	}

	clone.Items.Anniversaries = make([]Anniversary, len(address.Items.Anniversaries))
	for i, item := range address.Items.Anniversaries {
		copied := item
		copied.Year = copyIntPtr(item.Year)
		copied.Month = copyIntPtr(item.Month)
		copied.Day = copyIntPtr(item.Day)
		clone.Items.Anniversaries[i] = copied
	}

	return &clone
}

func copyStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
