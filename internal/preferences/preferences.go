package preferences

import (
	"github.com/MikeSquared-Agency/prefsd/internal/locale"
)

// Preferences is the structured record extracted from a transcript.
// A nil pointer means the field is unset.
type Preferences struct {
	Language *locale.Language `json:"language,omitempty" yaml:"language,omitempty"`
	Timezone *locale.Timezone `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Currency *locale.Currency `json:"currency,omitempty" yaml:"currency,omitempty"`
	Country  *string          `json:"country,omitempty" yaml:"country,omitempty"`
	City     *string          `json:"city,omitempty" yaml:"city,omitempty"`

	// RulesAndMemories keeps extraction order; duplicates are intentional.
	RulesAndMemories []string `json:"rules_and_memories" yaml:"rules_and_memories"`
}

// Merge combines p with other without modifying either.
//
// Scalar fields are first-writer-wins: a field already set on p is kept and
// other only fills fields p leaves unset. Rules concatenate as p ++ other.
func (p Preferences) Merge(other Preferences) Preferences {
	out := Preferences{
		Language: first(p.Language, other.Language),
		Timezone: first(p.Timezone, other.Timezone),
		Currency: first(p.Currency, other.Currency),
		Country:  first(p.Country, other.Country),
		City:     first(p.City, other.City),
	}
	out.RulesAndMemories = make([]string, 0, len(p.RulesAndMemories)+len(other.RulesAndMemories))
	out.RulesAndMemories = append(out.RulesAndMemories, p.RulesAndMemories...)
	out.RulesAndMemories = append(out.RulesAndMemories, other.RulesAndMemories...)
	return out
}

// SetFields returns the JSON names of populated fields in declaration order.
func (p Preferences) SetFields() []string {
	var fields []string
	if p.Language != nil {
		fields = append(fields, "language")
	}
	if p.Timezone != nil {
		fields = append(fields, "timezone")
	}
	if p.Currency != nil {
		fields = append(fields, "currency")
	}
	if p.Country != nil {
		fields = append(fields, "country")
	}
	if p.City != nil {
		fields = append(fields, "city")
	}
	if len(p.RulesAndMemories) > 0 {
		fields = append(fields, "rules_and_memories")
	}
	return fields
}

// IsEmpty reports whether no field is set.
func (p Preferences) IsEmpty() bool {
	return len(p.SetFields()) == 0
}

func first[T any](a, b *T) *T {
	if a != nil {
		v := *a
		return &v
	}
	if b != nil {
		v := *b
		return &v
	}
	return nil
}
