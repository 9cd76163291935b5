package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque tweet identifier.
//
// The value is kept as the exact text the source encoded it with. Scrape
// files and the lookup API both encode tweet ids as base-10 integers that
// exceed float64 precision, so the text form is the only lossless one.
type ID string

// isInteger reports whether s is a valid JSON integer: an optionally signed
// run of ASCII digits without leading zeros.
func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" || (s[0] == '0' && len(s) > 1) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON writes integer ids as JSON numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if isInteger(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return fmt.Errorf("invalid id: %q", s)
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	*id = ID(num.String())
	return nil
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// IDSet is a set of identifiers.
type IDSet map[ID]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids []ID) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is a member of the set.
func (s IDSet) Contains(id ID) bool {
	_, ok := s[id]
	return ok
}
