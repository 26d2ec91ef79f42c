package preferences

import (
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/prefsd/internal/locale"
)

func TestMerge_DisjointFields(t *testing.T) {
	lang := Preferences{Language: lo.ToPtr(locale.Language("fr"))}
	rules := Preferences{RulesAndMemories: []string{"Likes blue."}}

	merged := Preferences{}.Merge(lang).Merge(rules)

	require.NotNil(t, merged.Language)
	assert.Equal(t, locale.Language("fr"), *merged.Language)
	assert.Equal(t, []string{"Likes blue."}, merged.RulesAndMemories)
	assert.Equal(t, []string{"language", "rules_and_memories"}, merged.SetFields())
}

func TestMerge_RulesConcatenateInFoldOrder(t *testing.T) {
	a := Preferences{RulesAndMemories: []string{"a1", "a2"}}
	b := Preferences{RulesAndMemories: []string{"b1", "a1"}}

	assert.Equal(t, []string{"a1", "a2", "b1", "a1"}, a.Merge(b).RulesAndMemories)
	assert.Equal(t, []string{"b1", "a1", "a1", "a2"}, b.Merge(a).RulesAndMemories)
}

func TestMerge_RulesAssociative(t *testing.T) {
	a := Preferences{RulesAndMemories: []string{"a"}}
	b := Preferences{RulesAndMemories: []string{"b"}}
	c := Preferences{RulesAndMemories: []string{"c"}}

	assert.Equal(t, a.Merge(b).Merge(c).RulesAndMemories, a.Merge(b.Merge(c)).RulesAndMemories)
}

func TestMerge_FirstWriterWins(t *testing.T) {
	a := Preferences{
		Language: lo.ToPtr(locale.Language("en")),
		City:     lo.ToPtr("London"),
	}
	b := Preferences{
		Language: lo.ToPtr(locale.Language("ja")),
		City:     lo.ToPtr("Tokyo"),
		Country:  lo.ToPtr("Japan"),
	}

	merged := a.Merge(b)
	assert.Equal(t, locale.Language("en"), *merged.Language)
	assert.Equal(t, "London", *merged.City)
	assert.Equal(t, "Japan", *merged.Country, "unset field filled from the right-hand side")

	reversed := b.Merge(a)
	assert.Equal(t, locale.Language("ja"), *reversed.Language)
}

func TestMerge_DoesNotMutateOrAlias(t *testing.T) {
	a := Preferences{City: lo.ToPtr("London"), RulesAndMemories: make([]string, 1, 10)}
	a.RulesAndMemories[0] = "a"
	b := Preferences{RulesAndMemories: []string{"b"}}

	merged := a.Merge(b)
	*merged.City = "Paris"
	merged.RulesAndMemories[0] = "changed"

	assert.Equal(t, "London", *a.City)
	assert.Equal(t, []string{"a"}, a.RulesAndMemories)
	assert.Equal(t, []string{"b"}, b.RulesAndMemories)
}

func TestMerge_EmptyIsIdentity(t *testing.T) {
	p := Preferences{Currency: lo.ToPtr(locale.Currency("EUR")), RulesAndMemories: []string{"x"}}
	assert.Equal(t, p, Preferences{}.Merge(p))
	assert.Equal(t, p, p.Merge(Preferences{}))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Preferences{}.IsEmpty())
	assert.True(t, Preferences{RulesAndMemories: []string{}}.IsEmpty())
	assert.False(t, Preferences{Country: lo.ToPtr("UK")}.IsEmpty())
}

func TestJSON_UnsetFieldsOmitted(t *testing.T) {
	p := Preferences{}.Merge(Preferences{Language: lo.ToPtr(locale.Language("ja"))})

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"language":"ja","rules_and_memories":[]}`, string(data))
}

func TestJSON_DecodeValidates(t *testing.T) {
	var p Preferences
	err := json.Unmarshal([]byte(`{"language":"fr","timezone":"Europe/Paris","currency":"eur","rules_and_memories":["r"]}`), &p)
	require.NoError(t, err)
	assert.Equal(t, locale.Currency("EUR"), *p.Currency)
	assert.Equal(t, locale.Timezone("Europe/Paris"), *p.Timezone)

	err = json.Unmarshal([]byte(`{"timezone":"Nowhere/Land"}`), &p)
	assert.Error(t, err)
}
