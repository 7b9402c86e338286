// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package address

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/karteiapp/kartei/internal/platform/validate"
	"github.com/karteiapp/kartei/pkg/format"
	"github.com/karteiapp/kartei/pkg/opt"
	"github.com/karteiapp/kartei/pkg/pointer"
	"github.com/karteiapp/kartei/pkg/slice"
)

// Input carries one create or save mutation. Every field is tri-state:
// omitted fields leave the stored value untouched, explicit null (or empty)
// clears it, a value replaces it. Create treats omitted and null alike.
type Input struct {
	Kind opt.Val[string] `json:"kind"`

	Organization opt.Val[string] `json:"organization"`
	Position     opt.Val[string] `json:"position"`
	Salutation   opt.Val[string] `json:"salutation"`
	FirstName    opt.Val[string] `json:"first_name"`
	LastName     opt.Val[string] `json:"last_name"`
	Nickname     opt.Val[string] `json:"nickname"`
	Street       opt.Val[string] `json:"street"`
	Postcode     opt.Val[string] `json:"postcode"`
	City         opt.Val[string] `json:"city"`
	District     opt.Val[string] `json:"district"`
	Region       opt.Val[string] `json:"region"`
	Country      opt.Val[string] `json:"country"`
	Gender       opt.Val[string] `json:"gender"`

	CategoryItems opt.Val[[]string] `json:"category_items"`
	TagItems      opt.Val[[]string] `json:"tag_items"`
	BusinessItems opt.Val[[]string] `json:"business_items"`

	Phones        opt.Val[[]PhoneInput]       `json:"phone_items"`
	Emails        opt.Val[[]EmailInput]       `json:"email_items"`
	URLs          opt.Val[[]URLInput]         `json:"url_items"`
	Notes         opt.Val[[]TextInput]        `json:"note_items"`
	Journals      opt.Val[[]TextInput]        `json:"journal_items"`
	Agreements    opt.Val[[]TextInput]        `json:"agreement_items"`
	FreeDefined   opt.Val[[]FreeDefinedInput] `json:"free_defined_items"`
	Anniversaries opt.Val[[]AnniversaryInput] `json:"anniversary_items"`
}

// Sub-item inputs. A present uid resubmits an existing item; an absent uid
// creates a new one.
type PhoneInput struct {
	UID    string `json:"uid,omitempty"`
	Label  string `json:"label"`
	Number string `json:"number"`
}

type EmailInput struct {
	UID   string `json:"uid,omitempty"`
	Label string `json:"label"`
	Email string `json:"email"`
}

type URLInput struct {
	UID   string `json:"uid,omitempty"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// TextInput is shared by notes, journals, and agreements.
type TextInput struct {
	UID  string `json:"uid,omitempty"`
	Text string `json:"text"`
}

type AnniversaryInput struct {
	UID   string `json:"uid,omitempty"`
	Label string `json:"label"`
	Year  *int   `json:"year"`
	Month *int   `json:"month"`
	Day   *int   `json:"day"`
}

type FreeDefinedInput struct {
	UID       string `json:"uid,omitempty"`
	Group     string `json:"group"`
	Label     string `json:"label"`
	Text      string `json:"text"`
	ValueType string `json:"value_type"`
}

// ApplyCreate builds a fresh record from the input. The caller becomes
// owner and creator; the storage key is assigned by the service.
func ApplyCreate(input Input, user string, now time.Time) (*Address, error) {
	address := &Address{
		UID:       uuid.NewString(),
		Owner:     user,
		Kind:      KindIndividual,
		CreatedAt: now,
		CreatedBy: user,
		EditedAt:  now,
		EditedBy:  user,
	}

	validator := &validate.Validator{}

	if kind := format.Clean(input.Kind.Value()); kind != "" {
		address.Kind = strings.ToLower(kind)
	}
	if !KindValid(address.Kind) {
		validator.Custom("kind", true, "Must be individual, organization, group, location, or an x- extension tag")
	}

	applyFields(address, input, user, now, validator)

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return address, nil
}

// ApplySave builds the post-save state of an existing record without
// touching the prior value. Nothing is applied when validation fails.
func ApplySave(prior *Address, input Input, user string, now time.Time) (*Address, error) {
	next := prior.Clone()
	validator := &validate.Validator{}

	if input.Kind.Present() {
		kind := strings.ToLower(format.Clean(input.Kind.Value()))
		if kind == "" {
			validator.Custom("kind", true, "This field is required")
		} else if !KindValid(kind) {
			validator.Custom("kind", true, "Must be individual, organization, group, location, or an x- extension tag")
		} else {
			next.Kind = kind
		}
	}

	applyFields(next, input, user, now, validator)

	next.EditedAt = now
	next.EditedBy = user

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return next, nil
}

// applyFields applies every present scalar, set, and sub-item field of the
// input onto the record. Shared between create (empty prior) and save.
func applyFields(address *Address, input Input, user string, now time.Time, validator *validate.Validator) {
	applyScalar(&address.Organization, input.Organization)
	applyScalar(&address.Position, input.Position)
	applyScalar(&address.Salutation, input.Salutation)
	applyScalar(&address.FirstName, input.FirstName)
	applyScalar(&address.LastName, input.LastName)
	applyScalar(&address.Nickname, input.Nickname)
	applyScalar(&address.Street, input.Street)
	applyScalar(&address.Postcode, input.Postcode)
	applyScalar(&address.City, input.City)
	applyScalar(&address.District, input.District)
	applyScalar(&address.Region, input.Region)
	applyScalar(&address.Country, input.Country)

	if input.Gender.Present() {
		gender := strings.ToLower(format.Clean(input.Gender.Value()))
		switch {
		case gender == "":
			address.Gender = nil
		case GenderValid(gender):
			address.Gender = &gender
		default:
			validator.OneOf("gender", gender, genderCodes...)
		}
	}

	applyStringSet(&address.CategoryItems, input.CategoryItems)
	applyStringSet(&address.TagItems, input.TagItems)
	applyStringSet(&address.BusinessItems, input.BusinessItems)

	if input.Phones.Present() {
		address.Items.Phones = mergePhones(input.Phones.Value(), address.Items.Phones, user, now)
	}
	if input.Emails.Present() {
		address.Items.Emails = mergeEmails(input.Emails.Value(), address.Items.Emails, user, now)
	}
	if input.URLs.Present() {
		address.Items.URLs = mergeURLs(input.URLs.Value(), address.Items.URLs, user, now)
	}
	if input.Notes.Present() {
		address.Items.Notes = mergeNotes(input.Notes.Value(), address.Items.Notes, user, now)
	}
	if input.Journals.Present() {
		address.Items.Journals = mergeJournals(input.Journals.Value(), address.Items.Journals, user, now)
	}
	if input.Agreements.Present() {
		address.Items.Agreements = mergeAgreements(input.Agreements.Value(), address.Items.Agreements, user, now)
	}
	if input.FreeDefined.Present() {
		address.Items.FreeDefined = mergeFreeDefined(input.FreeDefined.Value(), address.Items.FreeDefined, user, now, validator)
	}
	if input.Anniversaries.Present() {
		address.Items.Anniversaries = mergeAnniversaries(input.Anniversaries.Value(), address.Items.Anniversaries, user, now, validator)
	}
}

// applyScalar applies a tri-state scalar: absent keeps, null/empty clears,
// value replaces (cleaned).
func applyScalar(target **string, value opt.Val[string]) {
	if !value.Present() {
		return
	}

	cleaned := format.Clean(value.Value())
	if cleaned == "" {
		*target = nil
		return
	}
	*target = &cleaned
}

// applyStringSet applies a tri-state set field, always storing it
// deduplicated and sorted.
func applyStringSet(target *[]string, value opt.Val[[]string]) {
	if !value.Present() {
		return
	}

	var cleaned []string
	for _, item := range value.Value() {
		if c := format.Clean(item); c != "" {
			cleaned = append(cleaned, c)
		}
	}

	*target = slice.DedupSort(cleaned)
}

// newMeta stamps identity and audit metadata for a brand-new sub-item.
func newMeta(user string, now time.Time) SubItemMeta {
	return SubItemMeta{
		UID:       uuid.NewString(),
		CreatedAt: now,
		CreatedBy: user,
		EditedAt:  now,
		EditedBy:  user,
	}
}

// carryMeta keeps the prior identity and creation metadata; the edit
// metadata advances only when the item content changed.
func carryMeta(prior SubItemMeta, changed bool, user string, now time.Time) SubItemMeta {
	if changed {
		prior.EditedAt = now
		prior.EditedBy = user
	}
	return prior
}

func mergePhones(inputs []PhoneInput, prior []Phone, user string, now time.Time) []Phone {
	priorByUID := make(map[string]Phone, len(prior))
	for _, item := range prior {
		priorByUID[item.UID] = item
	}

	var merged []Phone
	for _, in := range inputs {
		label := format.Clean(in.Label)
		number := format.Clean(in.Number)
		if number == "" {
			continue
		}

		if existing, found := priorByUID[in.UID]; in.UID != "" && found {
			changed := existing.Label != label || existing.Number != number
			merged = append(merged, Phone{
				SubItemMeta: carryMeta(existing.SubItemMeta, changed, user, now),
				Label:       label,
				Number:      number,
			})
			continue
		}

		merged = append(merged, Phone{SubItemMeta: newMeta(user, now), Label: label, Number: number})
	}
	return merged
}

func mergeEmails(inputs []EmailInput, prior []Email, user string, now time.Time) []Email {
	priorByUID := make(map[string]Email, len(prior))
	for _, item := range prior {
		priorByUID[item.UID] = item
	}

	var merged []Email
	for _, in := range inputs {
		label := format.Clean(in.Label)
		email := format.Clean(in.Email)
		if email == "" {
			continue
		}

		if existing, found := priorByUID[in.UID]; in.UID != "" && found {
			changed := existing.Label != label || existing.Email != email
			merged = append(merged, Email{
				SubItemMeta: carryMeta(existing.SubItemMeta, changed, user, now),
				Label:       label,
				Email:       email,
			})
			continue
		}

		merged = append(merged, Email{SubItemMeta: newMeta(user, now), Label: label, Email: email})
	}
	return merged
}

func mergeURLs(inputs []URLInput, prior []URL, user string, now time.Time) []URL {
	priorByUID := make(map[string]URL, len(prior))
	for _, item := range prior {
		priorByUID[item.UID] = item
	}

	var merged []URL
	for _, in := range inputs {
		label := format.Clean(in.Label)
		url := format.Clean(in.URL)
		if url == "" {
			continue
		}

		// Bare host names become browsable links.
		if !strings.Contains(url, "://") {
			url = "http://" + url
		}

		if existing, found := priorByUID[in.UID]; in.UID != "" && found {
			changed := existing.Label != label || existing.URL != url
			merged = append(merged, URL{
				SubItemMeta: carryMeta(existing.SubItemMeta, changed, user, now),
				Label:       label,
				URL:         url,
			})
			continue
		}

		merged = append(merged, URL{SubItemMeta: newMeta(user, now), Label: label, URL: url})
	}
	return merged
}

// textItem is the merge result shared by notes, journals, and agreements.
type textItem struct {
	meta SubItemMeta
	text string
}

// mergeTextItems implements the shared merge for the plain-text
// collections (notes, journals, agreements).
func mergeTextItems(inputs []TextInput, priorMeta map[string]SubItemMeta, priorText map[string]string, user string, now time.Time) []textItem {
	var merged []textItem

	for _, in := range inputs {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			continue
		}

		if existingMeta, found := priorMeta[in.UID]; in.UID != "" && found {
			changed := priorText[in.UID] != text
			merged = append(merged, textItem{carryMeta(existingMeta, changed, user, now), text})
			continue
		}

		merged = append(merged, textItem{newMeta(user, now), text})
	}
	return merged
}

func mergeNotes(inputs []TextInput, prior []Note, user string, now time.Time) []Note {
	metaByUID := make(map[string]SubItemMeta, len(prior))
	textByUID := make(map[string]string, len(prior))
	for _, item := range prior {
		metaByUID[item.UID] = item.SubItemMeta
		textByUID[item.UID] = item.Text
	}

	var merged []Note
	for _, item := range mergeTextItems(inputs, metaByUID, textByUID, user, now) {
		merged = append(merged, Note{SubItemMeta: item.meta, Text: item.text})
	}
	return merged
}

func mergeJournals(inputs []TextInput, prior []Journal, user string, now time.Time) []Journal {
	metaByUID := make(map[string]SubItemMeta, len(prior))
	textByUID := make(map[string]string, len(prior))
	for _, item := range prior {
		metaByUID[item.UID] = item.SubItemMeta
		textByUID[item.UID] = item.Text
	}

	var merged []Journal
	for _, item := range mergeTextItems(inputs, metaByUID, textByUID, user, now) {
		merged = append(merged, Journal{SubItemMeta: item.meta, Text: item.text})
	}
	return merged
}

func mergeAgreements(inputs []TextInput, prior []Agreement, user string, now time.Time) []Agreement {
	metaByUID := make(map[string]SubItemMeta, len(prior))
	textByUID := make(map[string]string, len(prior))
	for _, item := range prior {
		metaByUID[item.UID] = item.SubItemMeta
		textByUID[item.UID] = item.Text
	}

	var merged []Agreement
	for _, item := range mergeTextItems(inputs, metaByUID, textByUID, user, now) {
		merged = append(merged, Agreement{SubItemMeta: item.meta, Text: item.text})
	}
	return merged
}

func mergeFreeDefined(inputs []FreeDefinedInput, prior []FreeDefined, user string, now time.Time, validator *validate.Validator) []FreeDefined {
	priorByUID := make(map[string]FreeDefined, len(prior))
	for _, item := range prior {
		priorByUID[item.UID] = item
	}

	var merged []FreeDefined
	for _, in := range inputs {
		group := format.Clean(in.Group)
		label := format.Clean(in.Label)
		text := format.Clean(in.Text)
		if text == "" {
			continue
		}

		valueType := strings.ToLower(format.Clean(in.ValueType))
		if valueType == "" {
			valueType = "text"
		}

		if label == "" {
			validator.Custom("free_defined_items.label", true, "This field is required")
			continue
		}
		if !ValueTypeValid(valueType) {
			validator.OneOf("free_defined_items.value_type", valueType, valueTypes...)
			continue
		}

		if existing, found := priorByUID[in.UID]; in.UID != "" && found {
			changed := existing.Group != group || existing.Label != label ||
				existing.Text != text || existing.ValueType != valueType
			merged = append(merged, FreeDefined{
				SubItemMeta: carryMeta(existing.SubItemMeta, changed, user, now),
				Group:       group,
				Label:       label,
				Text:        text,
				ValueType:   valueType,
			})
			continue
		}

		merged = append(merged, FreeDefined{
			SubItemMeta: newMeta(user, now),
			Group:       group,
			Label:       label,
			Text:        text,
			ValueType:   valueType,
		})
	}
	return merged
}

func mergeAnniversaries(inputs []AnniversaryInput, prior []Anniversary, user string, now time.Time, validator *validate.Validator) []Anniversary {
	priorByUID := make(map[string]Anniversary, len(prior))
	for _, item := range prior {
		priorByUID[item.UID] = item
	}

	var merged []Anniversary
	for _, in := range inputs {
		label := format.Clean(in.Label)
		if in.Year == nil && in.Month == nil && in.Day == nil {
			continue
		}

		if label == "" {
			validator.Custom("anniversary_items.label", true, "This field is required")
			continue
		}
		if in.Month != nil && (*in.Month < 1 || *in.Month > 12) {
			validator.Custom("anniversary_items.month", true, "Must be between 1 and 12")
			continue
		}
		// Day 1-31 regardless of month; no calendar-correctness check.
		if in.Day != nil && (*in.Day < 1 || *in.Day > 31) {
			validator.Custom("anniversary_items.day", true, "Must be between 1 and 31")
			continue
		}

		if existing, found := priorByUID[in.UID]; in.UID != "" && found {
			changed := existing.Label != label ||
				!pointer.Equal(existing.Year, in.Year) ||
				!pointer.Equal(existing.Month, in.Month) ||
				!pointer.Equal(existing.Day, in.Day)
			merged = append(merged, Anniversary{
				SubItemMeta: carryMeta(existing.SubItemMeta, changed, user, now),
				Label:       label,
				Year:        copyIntPtr(in.Year),
				Month:       copyIntPtr(in.Month),
				Day:         copyIntPtr(in.Day),
			})
			continue
		}

		merged = append(merged, Anniversary{
			SubItemMeta: newMeta(user, now),
			Label:       label,
			Year:        copyIntPtr(in.Year),
			Month:       copyIntPtr(in.Month),
			Day:         copyIntPtr(in.Day),
		})
	}
	return merged
}
