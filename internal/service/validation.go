package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxTitleLength bounds the title column (varchar(255)).
const maxTitleLength = 255

// validateTitle applies the title rule shared by create and update:
// required (whitespace-only counts as missing), at most 255 characters.
func validateTitle(title string) []string {
	var msgs []string
	if strings.TrimSpace(title) == "" {
		msgs = append(msgs, "The title field is required.")
		return msgs
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		msgs = append(msgs, fmt.Sprintf("The title may not be greater than %d characters.", maxTitleLength))
	}
	return msgs
}

// stringField reads an optional JSON field as a string, trimming surrounding
// whitespace. Absent or null fields yield a nil value. A value of the wrong
// type yields a field message instead of a decode failure, so it reaches the
// caller through the validation taxonomy.
func stringField(raw json.RawMessage, field string) (*string, []string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, []string{fmt.Sprintf("The %s must be a string.", field)}
	}
	s = strings.TrimSpace(s)
	return &s, nil
}

// boolField reads an optional JSON field as a boolean, with the same
// conventions as stringField.
func boolField(raw json.RawMessage, field string) (*bool, []string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, []string{fmt.Sprintf("The %s field must be true or false.", field)}
	}
	return &b, nil
}
