package task

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Quadrant is stored and emitted in its descriptive form. The two-letter
// codes are accepted on input only.
type Quadrant string

const (
	UrgentImportant       Quadrant = "urgent-important"
	NotUrgentImportant    Quadrant = "not-urgent-important"
	UrgentNotImportant    Quadrant = "urgent-not-important"
	NotUrgentNotImportant Quadrant = "not-urgent-not-important"
)

var Quadrants = []Quadrant{UrgentImportant, NotUrgentImportant, UrgentNotImportant, NotUrgentNotImportant}

var quadrantCodes = map[string]Quadrant{
	"UI": UrgentImportant,
	"NI": NotUrgentImportant,
	"UN": UrgentNotImportant,
	"NN": NotUrgentNotImportant,
}

func ParseQuadrant(s string) (Quadrant, error) {
	s = strings.TrimSpace(s)
	if q, ok := quadrantCodes[strings.ToUpper(s)]; ok {
		return q, nil
	}
	q := Quadrant(strings.ToLower(s))
	if !q.Valid() {
		return "", &ValidationError{Field: "quadrant", Msg: fmt.Sprintf("unknown value %q", s)}
	}
	return q, nil
}

func (q Quadrant) Valid() bool {
	switch q {
	case UrgentImportant, NotUrgentImportant, UrgentNotImportant, NotUrgentNotImportant:
		return true
	}
	return false
}

func (q Quadrant) Code() string {
	for code, v := range quadrantCodes {
		if v == q {
			return code
		}
	}
	return ""
}

func (q *Quadrant) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ValidationError{Field: "quadrant", Msg: "must be a string"}
	}
	parsed, err := ParseQuadrant(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func quadrantNames() []string {
	names := make([]string, len(Quadrants))
	for i, q := range Quadrants {
		names[i] = string(q)
	}
	return names
}
