package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/bankfeed/internal/model"
)

var (
	// ErrIncompleteMapping is returned when a required field has no column.
	ErrIncompleteMapping = errors.New("column mapping incomplete")
	// ErrUnknownColumn is returned when a mapping names a header the file lacks.
	ErrUnknownColumn = errors.New("mapped column not in file")
)

// fieldKeywords drives header auto-detection, checked in model.Fields order.
var fieldKeywords = map[model.Field][]string{
	model.FieldDate:        {"date"},
	model.FieldDescription: {"description", "narrative", "details", "memo"},
	model.FieldAmount:      {"amount", "credit", "debit"},
	model.FieldBalance:     {"balance"},
	model.FieldReference:   {"reference", "ref", "cheque"},
}

// DetectMapping guesses a column mapping from header names. Each header is
// given to the first field whose keywords it contains and whose slot is
// still free. Unmatched fields stay empty.
func DetectMapping(headers []string) model.ColumnMapping {
	var m model.ColumnMapping
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, f := range model.Fields {
			if m.Get(f) != "" || !containsAny(lower, fieldKeywords[f]) {
				continue
			}
			m.Set(f, h)
			break
		}
	}
	return m
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ApplyOverrides replaces mapped headers with explicit choices. An empty
// override value clears an optional field.
func ApplyOverrides(m model.ColumnMapping, overrides map[model.Field]string) model.ColumnMapping {
	for _, f := range model.Fields {
		if h, ok := overrides[f]; ok {
			m.Set(f, h)
		}
	}
	return m
}

// ParseOverride parses a "field=header" flag value.
func ParseOverride(s string) (model.Field, string, error) {
	name, header, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid mapping %q: want field=header", s)
	}
	f := model.Field(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range model.Fields {
		if f == known {
			return f, strings.TrimSpace(header), nil
		}
	}
	return "", "", fmt.Errorf("invalid mapping %q: unknown field %q", s, name)
}

// ColumnIndex holds cell positions per field; -1 means unmapped.
type ColumnIndex map[model.Field]int

// ValidateMapping checks that m is complete and that every mapped header is
// present, returning the cell position of each field.
func ValidateMapping(m model.ColumnMapping, headers []string) (ColumnIndex, error) {
	if !m.Complete() {
		return nil, fmt.Errorf("%w: missing %v", ErrIncompleteMapping, m.Missing())
	}

	idx := make(ColumnIndex, len(model.Fields))
	for _, f := range model.Fields {
		h := m.Get(f)
		if h == "" {
			idx[f] = -1
			continue
		}
		pos := headerPos(headers, h)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %s -> %q", ErrUnknownColumn, f, h)
		}
		idx[f] = pos
	}
	return idx, nil
}

func headerPos(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
