// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address

import (
	"time"

	"github.com/karteiapp/kartei/pkg/format"
	"github.com/karteiapp/kartei/pkg/slice"
)

// DictOptions controls the transport dictionary produced by [Address.ToDict].
//
// Exclude always wins over Include when both name the same field. The
// metadata flags strip the audit fields at the record level and inside
// every sub-item. ExcludeEmptyFields removes unset scalars and empty
// set-valued fields but leaves present-but-empty sub-item collections
// alone.
type DictOptions struct {
	Include                 []string
	Exclude                 []string
	ExcludeCreationMetadata bool
	ExcludeEditMetadata     bool
	ExcludeEmptyFields      bool
}

// Audit field names shared by the record and every sub-item.
const (
	fieldCreatedAt = "created_at"
	fieldCreatedBy = "created_by"
	fieldEditedAt  = "edited_at"
	fieldEditedBy  = "edited_by"
)

// ToDict renders the record as a transport-safe dictionary. Every temporal
// value is an ISO-8601 string; the derived projections never appear; the
// computed birthday and age appear only when they can be derived.
func (address *Address) ToDict(opts DictOptions) map[string]any {
	dict := map[string]any{
		"key":          address.Key,
		"uid":          address.UID,
		"owner":        address.Owner,
		"kind":         address.Kind,
		fieldCreatedAt: format.DateTimeISO(address.CreatedAt),
		fieldCreatedBy: address.CreatedBy,
		fieldEditedAt:  format.DateTimeISO(address.EditedAt),
		fieldEditedBy:  address.EditedBy,
	}

	if address.DeletedAt != nil {
		dict["deleted_at"] = format.DateTimeISO(*address.DeletedAt)
	}

	scalars := map[string]*string{
		"organization": address.Organization,
		"position":     address.Position,
		"salutation":   address.Salutation,
		"first_name":   address.FirstName,
		"last_name":    address.LastName,
		"nickname":     address.Nickname,
		"street":       address.Street,
		"postcode":     address.Postcode,
		"city":         address.City,
		"district":     address.District,
		"region":       address.Region,
		"country":      address.Country,
		"gender":       address.Gender,
	}

	for name, value := range scalars {
		if value != nil {
			dict[name] = *value
		} else if !opts.ExcludeEmptyFields {
			dict[name] = nil
		}
	}

	sets := map[string][]string{
		"category_items": address.CategoryItems,
		"tag_items":      address.TagItems,
		"business_items": address.BusinessItems,
	}

	for name, values := range sets {
		if len(values) > 0 {
			dict[name] = values
		} else if !opts.ExcludeEmptyFields {
			dict[name] = []string{}
		}
	}

	dict["phone_items"] = phoneDicts(address.Items.Phones, opts)
	dict["email_items"] = emailDicts(address.Items.Emails, opts)
	dict["url_items"] = urlDicts(address.Items.URLs, opts)
	dict["note_items"] = textDicts(address.Items.Notes, noteText, noteMeta, opts)
	dict["journal_items"] = textDicts(address.Items.Journals, journalText, journalMeta, opts)
	dict["agreement_items"] = textDicts(address.Items.Agreements, agreementText, agreementMeta, opts)
	dict["free_defined_items"] = freeDefinedDicts(address.Items.FreeDefined, opts)
	dict["anniversary_items"] = anniversaryDicts(address.Items.Anniversaries, opts)

	if birthday := address.Birthday(); birthday != "" {
		dict["birthday"] = birthday
	}
	if age := address.Age(time.Now()); age >= 0 {
		dict["age"] = age
	}

	stripRecordMetadata(dict, opts)
	applyFieldSelection(dict, opts)

	return dict
}

// subItemDict builds the shared identity/audit part of a sub-item dict.
func subItemDict(meta SubItemMeta, opts DictOptions) map[string]any {
	item := map[string]any{"uid": meta.UID}

	if !opts.ExcludeCreationMetadata {
		item[fieldCreatedAt] = format.DateTimeISO(meta.CreatedAt)
		item[fieldCreatedBy] = meta.CreatedBy
	}
	if !opts.ExcludeEditMetadata {
		item[fieldEditedAt] = format.DateTimeISO(meta.EditedAt)
		item[fieldEditedBy] = meta.EditedBy
	}

	return item
}

func phoneDicts(items []Phone, opts DictOptions) []map[string]any {
	dicts := make([]map[string]any, 0, len(items))
	for _, item := range items {
		d := subItemDict(item.SubItemMeta, opts)
		d["label"] = item.Label
		d["number"] = item.Number
		dicts = append(dicts, d)
	}
	return dicts
}

func emailDicts(items []Email, opts DictOptions) []map[string]any {
	dicts := make([]map[string]any, 0, len(items))
	for _, item := range items {
		d := subItemDict(item.SubItemMeta, opts)
		d["label"] = item.Label
		d["email"] = item.Email
		dicts = append(dicts, d)
	}
	return dicts
}

func urlDicts(items []URL, opts DictOptions) []map[string]any {
	dicts := make([]map[string]any, 0, len(items))
	for _, item := range items {
		d := subItemDict(item.SubItemMeta, opts)
		d["label"] = item.Label
		d["url"] = item.URL
		dicts = append(dicts, d)
	}
	return dicts
}

// Accessors letting the three plain-text collections share one dict builder.
func noteText(n Note) string                { return n.Text }
func noteMeta(n Note) SubItemMeta           { return n.SubItemMeta }
func journalText(j Journal) string          { return j.Text }
func journalMeta(j Journal) SubItemMeta     { return j.SubItemMeta }
func agreementText(a Agreement) string      { return a.Text }
func agreementMeta(a Agreement) SubItemMeta { return a.SubItemMeta }

func textDicts[T any](items []T, text func(T) string, meta func(T) SubItemMeta, opts DictOptions) []map[string]any {
	dicts := make([]map[string]any, 0, len(items))
	for _, item := range items {
		d := subItemDict(meta(item), opts)
		d["text"] = text(item)
		dicts = append(dicts, d)
	}
	return dicts
}

func freeDefinedDicts(items []FreeDefined, opts DictOptions) []map[string]any {
	dicts := make([]map[string]any, 0, len(items))
	for _, item := range items {
		d := subItemDict(item.SubItemMeta, opts)
		if item.Group != "" {
			d["group"] = item.Group
		}
		d["label"] = item.Label
		d["text"] = item.Text
		d["value_type"] = item.ValueType
		dicts = append(dicts, d)
	}
	return dicts
}

func anniversaryDicts(items []Anniversary, opts DictOptions) []map[string]any {
	dicts := make([]map[string]any, 0, len(items))
	for _, item := range items {
		d := subItemDict(item.SubItemMeta, opts)
		d["label"] = item.Label
		if item.Year != nil {
			d["year"] = *item.Year
		}
		if item.Month != nil {
			d["month"] = *item.Month
		}
		if item.Day != nil {
			d["day"] = *item.Day
		}
		dicts = append(dicts, d)
	}
	return dicts
}

// stripRecordMetadata removes the record-level audit fields per the flags.
func stripRecordMetadata(dict map[string]any, opts DictOptions) {
	if opts.ExcludeCreationMetadata {
		delete(dict, fieldCreatedAt)
		delete(dict, fieldCreatedBy)
	}
	if opts.ExcludeEditMetadata {
		delete(dict, fieldEditedAt)
		delete(dict, fieldEditedBy)
	}
}

// applyFieldSelection enforces include/exclude lists; exclusion wins when
// both name the same field.
func applyFieldSelection(dict map[string]any, opts DictOptions) {
	if len(opts.Include) > 0 {
		for name := range dict {
			if !slice.Contains(opts.Include, name) {
				delete(dict, name)
			}
		}
	}

	for _, name := range opts.Exclude {
		delete(dict, name)
	}
}
