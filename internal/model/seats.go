package model

import (
	"database/sql/driver" // driver.Valuer contract for writing the JSON column
	"encoding/json"       // seat labels are persisted as a JSON array
	"fmt"                 // error formatting for unsupported scan sources
	"strings"             // trimming of raw labels
)

// SeatLabels is an ordered set of seat labels (e.g. "A1", "B12").  It is
// stored in MySQL as a JSON array of strings, which matches the
// locked_seats and seat_numbers columns.  Order is preserved so that API
// responses echo labels in the order the client sent them.
type SeatLabels []string

// NormalizeSeats trims every label, drops empty ones and collapses
// duplicates while keeping the first occurrence.
func NormalizeSeats(raw []string) SeatLabels {
	out := make(SeatLabels, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// set builds a lookup map of the labels.
func (s SeatLabels) set() map[string]struct{} {
	m := make(map[string]struct{}, len(s))
	for _, l := range s {
		m[l] = struct{}{}
	}
	return m
}

// Contains reports whether label is part of the set.
func (s SeatLabels) Contains(label string) bool {
	for _, l := range s {
		if l == label {
			return true
		}
	}
	return false
}

// Intersect returns the labels of s that are also present in other, in
// the order they appear in s.
func (s SeatLabels) Intersect(other SeatLabels) SeatLabels {
	if len(s) == 0 || len(other) == 0 {
		return SeatLabels{}
	}
	lookup := other.set()
	out := SeatLabels{}
	for _, l := range s {
		if _, ok := lookup[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Without returns the labels of s that are not present in remove.
func (s SeatLabels) Without(remove SeatLabels) SeatLabels {
	lookup := remove.set()
	out := make(SeatLabels, 0, len(s))
	for _, l := range s {
		if _, ok := lookup[l]; !ok {
			out = append(out, l)
		}
	}
	return out
}

// Union merges several label sets into one, skipping duplicates.
func Union(sets ...SeatLabels) SeatLabels {
	var all []string
	for _, s := range sets {
		all = append(all, s...)
	}
	return NormalizeSeats(all)
}

// Value encodes the labels as a JSON array.  A nil set is written as
// "[]" so the column never holds JSON null.
func (s SeatLabels) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan decodes a JSON array column.  SQL NULL and empty payloads yield
// an empty set.
func (s *SeatLabels) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = SeatLabels{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("seat labels: unsupported scan type %T", src)
	}
	if len(raw) == 0 || string(raw) == "null" {
		*s = SeatLabels{}
		return nil
	}
	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil {
		return fmt.Errorf("seat labels: %w", err)
	}
	*s = SeatLabels(labels)
	return nil
}
