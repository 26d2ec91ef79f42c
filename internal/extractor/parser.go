package extractor

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/MikeSquared-Agency/prefsd/internal/locale"
	"github.com/MikeSquared-Agency/prefsd/internal/preferences"
)

var (
	// [Display Name](#code), whitespace tolerated around '#'.
	languageTagPattern = regexp.MustCompile(`(?i)\[([^\]]+)\]\s*\(\s*#\s*([^)]+?)\s*\)`)
	rulePattern        = regexp.MustCompile(`(?im)^rule:\s*(.+)`)
)

// LanguageTag is the first [name](#code) annotation found in model output.
type LanguageTag struct {
	Name string
	Code string
}

// FindLanguageTag returns the first language annotation in text. Later
// annotations are ignored.
func FindLanguageTag(text string) (LanguageTag, bool) {
	m := languageTagPattern.FindStringSubmatch(text)
	if m == nil {
		return LanguageTag{}, false
	}
	return LanguageTag{Name: strings.TrimSpace(m[1]), Code: strings.TrimSpace(m[2])}, true
}

// ParseLanguage turns language-analysis output into a delta that only touches
// Language. A missing tag or an unresolvable one leaves the field unset.
func ParseLanguage(text string, logger *slog.Logger) preferences.Preferences {
	tag, ok := FindLanguageTag(text)
	if !ok {
		logger.Error("no language expression found", "text", text)
		return preferences.Preferences{}
	}

	lang, err := locale.LookupLanguage(tag.Code)
	if err != nil {
		logger.Error("invalid language code", "code", tag.Code, "error", err)
		logger.Info("trying language display name", "name", tag.Name)
		lang, err = locale.LookupLanguage(tag.Name)
		if err != nil {
			logger.Error("failed to resolve language", "name", tag.Name, "code", tag.Code, "error", err)
			return preferences.Preferences{}
		}
	}

	return preferences.Preferences{Language: &lang}
}

// ParseRules extracts every "rule: ..." line in order, keeping duplicates.
// A lone "rule: None" (or "null") means nothing was found.
func ParseRules(text string) []string {
	matches := rulePattern.FindAllStringSubmatch(text, -1)
	rules := lo.Map(matches, func(m []string, _ int) string {
		return strings.TrimSpace(m[1])
	})

	if len(rules) == 1 {
		switch strings.ToLower(rules[0]) {
		case "none", "null":
			return []string{}
		}
	}
	return rules
}

// ParseRulesAndMemories wraps ParseRules in a delta that only touches RulesAndMemories.
func ParseRulesAndMemories(text string) preferences.Preferences {
	return preferences.Preferences{RulesAndMemories: ParseRules(text)}
}
