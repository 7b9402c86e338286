// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

/*
Package freedef manages the catalogue of configurable free-defined fields.

Address records carry free-defined field values (group, label, text,
value type); this package owns the definitions behind them: which fields
exist, how they are grouped and ordered in editing interfaces, and which
value type their values are expected to carry. The catalogue is
administrative data, changed rarely and read by address tooling.
*/
package freedef

import (
	"strings"
	"time"

	"github.com/karteiapp/kartei/internal/platform/validate"
	"github.com/karteiapp/kartei/pkg/format"
	"github.com/karteiapp/kartei/pkg/opt"
)

// Value types a definition may declare for its values.
var valueTypes = []string{"text", "int", "float", "date"}

// Field is one catalogue entry.
type Field struct {
	ID        string    `json:"id"`
	Group     string    `json:"group,omitempty"`
	Label     string    `json:"label"`
	Position  int       `json:"position"`
	Visible   bool      `json:"visible"`
	ValueType string    `json:"value_type"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	EditedAt  time.Time `json:"edited_at"`
	EditedBy  string    `json:"edited_by"`
}

// Input is the partial-update payload for a catalogue entry.
type Input struct {
	Group     opt.Val[string] `json:"group"`
	Label     opt.Val[string] `json:"label"`
	Position  opt.Val[int]    `json:"position"`
	Visible   opt.Val[bool]   `json:"visible"`
	ValueType opt.Val[string] `json:"value_type"`
}

// ApplyCreate builds a new catalogue entry from the input. The label is
// mandatory; the value type defaults to text; new entries are visible.
func ApplyCreate(input Input, user string, now time.Time) (*Field, error) {
	field := &Field{
		Visible:   true,
		ValueType: "text",
		CreatedAt: now,
		CreatedBy: user,
		EditedAt:  now,
		EditedBy:  user,
	}

	validator := &validate.Validator{}
	applyInput(field, input, validator)
	validator.Required("label", field.Label)

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return field, nil
}

// ApplySave applies a partial update onto a copy of the prior entry.
func ApplySave(prior *Field, input Input, user string, now time.Time) (*Field, error) {
	next := *prior
	validator := &validate.Validator{}

	applyInput(&next, input, validator)
	validator.Required("label", next.Label)

	next.EditedAt = now
	next.EditedBy = user

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return &next, nil
}

func applyInput(field *Field, input Input, validator *validate.Validator) {
	if input.Group.Present() {
		field.Group = format.Clean(input.Group.Value())
	}
	if input.Label.Present() {
		field.Label = format.Clean(input.Label.Value())
	}
	if input.Position.Present() {
		field.Position = input.Position.Value()
	}
	if input.Visible.Present() {
		field.Visible = input.Visible.Value()
	}
	if input.ValueType.Present() {
		valueType := strings.ToLower(format.Clean(input.ValueType.Value()))
		if valueType == "" {
			valueType = "text"
		}
		validator.OneOf("value_type", valueType, valueTypes...)
		field.ValueType = valueType
	}
}
