package task

import (
	"encoding/json"
	"strings"
	"time"
)

// Field carries a value together with whether it was supplied at all.
// Decoding a JSON key into a Field marks it Set, including explicit null.
type Field[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	return json.Unmarshal(b, &f.Value)
}

// Patch is a sparse update: only Set fields are written.
// DueDate and CategoryID accept nil to clear the value.
type Patch struct {
	Title       Field[string]
	Description Field[string]
	CategoryID  Field[*int64]
	DueDate     Field[*time.Time]
	Quadrant    Field[Quadrant]
	Completed   Field[bool]
	ReminderSet Field[bool]
	Tags        Field[[]string]
}

func (p Patch) Validate() error {
	if p.Title.Set && strings.TrimSpace(p.Title.Value) == "" {
		return &ValidationError{Field: "title", Msg: "must not be empty"}
	}
	if p.Quadrant.Set && !p.Quadrant.Value.Valid() {
		return &ValidationError{Field: "quadrant", Msg: "must be one of " + strings.Join(quadrantNames(), ", ")}
	}
	return nil
}

// Apply returns t with the supplied fields replaced. Category resolution is
// left to the caller since it needs the store.
func (p Patch) Apply(t Task) Task {
	if p.Title.Set {
		t.Title = strings.TrimSpace(p.Title.Value)
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.Quadrant.Set {
		t.Quadrant = p.Quadrant.Value
	}
	if p.Completed.Set {
		t.Completed = p.Completed.Value
	}
	if p.ReminderSet.Set {
		t.ReminderSet = p.ReminderSet.Value
	}
	if p.Tags.Set {
		t.Tags = NormalizeTags(p.Tags.Value)
	}
	return t
}
