package locale

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknownLanguage is returned when a token cannot be mapped to a supported language.
var ErrUnknownLanguage = errors.New("unknown language")

// Language is a supported language code, e.g. "en" or "zh-CN".
type Language string

// supportedCodes is the closed set of codes accepted for the language preference.
// Order is the order shown to the model.
var supportedCodes = []Language{
	"af", "sq", "am", "ar", "hy", "az", "eu", "be", "bn", "bs", "bg", "ca", "ceb", "ny",
	"zh-CN", "zh-TW", "co", "hr", "cs", "da", "nl", "en", "eo", "et", "tl", "fi", "fr",
	"fy", "gl", "ka", "de", "el", "gu", "ht", "ha", "haw", "iw", "hi", "hmn", "hu", "is",
	"ig", "id", "ga", "it", "ja", "jw", "kn", "kk", "km", "ko", "ku", "ky", "lo", "la",
	"lv", "lt", "lb", "mk", "mg", "ms", "ml", "mt", "mi", "mr", "mn", "my", "ne", "no",
	"ps", "fa", "pl", "pt", "pa", "ro", "ru", "sm", "gd", "sr", "st", "sn", "sd", "si",
	"sk", "sl", "so", "es", "su", "sw", "sv", "tg", "ta", "te", "th", "tr", "uk", "ur",
	"uz", "vi", "cy", "xh", "yi", "yo", "zu",
}

// languageAliases covers common names the display tables do not produce.
var languageAliases = map[string]Language{
	"chinese":             "zh-CN",
	"mandarin":            "zh-CN",
	"simplified chinese":  "zh-CN",
	"traditional chinese": "zh-TW",
	"cantonese":           "zh-TW",
	"filipino":            "tl",
	"hebrew":              "iw",
	"javanese":            "jw",
	"norwegian":           "no",
	"farsi":               "fa",
	"persian":             "fa",
	"kurdish":             "ku",
	"burmese":             "my",
	"chichewa":            "ny",
	"scots gaelic":        "gd",
	"haitian creole":      "ht",
}

// codeAliases maps current ISO codes onto the legacy codes kept in supportedCodes.
var codeAliases = map[string]Language{
	"nb":  "no",
	"nn":  "no",
	"he":  "iw",
	"jv":  "jw",
	"fil": "tl",
}

var (
	supportedTags   []language.Tag
	languageMatcher language.Matcher
	languageByName  map[string]Language
)

func init() {
	supportedTags = make([]language.Tag, len(supportedCodes))
	languageByName = make(map[string]Language, len(supportedCodes)*2+len(languageAliases))
	for i, code := range supportedCodes {
		tag := language.Make(string(code))
		supportedTags[i] = tag
		for _, name := range []string{
			display.English.Tags().Name(tag),
			display.Self.Name(tag),
		} {
			key := normalizeName(name)
			if key == "" {
				continue
			}
			if _, taken := languageByName[key]; !taken {
				languageByName[key] = code
			}
		}
	}
	for alias, code := range languageAliases {
		languageByName[alias] = code
	}
	languageMatcher = language.NewMatcher(supportedTags)
}

// Languages returns the supported languages in display order.
func Languages() []Language {
	out := make([]Language, len(supportedCodes))
	copy(out, supportedCodes)
	return out
}

// LanguageCodes returns the supported codes as plain strings.
func LanguageCodes() []string {
	out := make([]string, len(supportedCodes))
	for i, code := range supportedCodes {
		out[i] = string(code)
	}
	return out
}

// ParseLanguage accepts only an exact supported code, ignoring case.
func ParseLanguage(code string) (Language, error) {
	code = strings.TrimSpace(code)
	for _, l := range supportedCodes {
		if strings.EqualFold(string(l), code) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
}

// LookupLanguage resolves a token that may be a language code or a common
// language name ("fr", "FR", "fr-CA", "French", "Français") to a supported
// language.
func LookupLanguage(token string) (Language, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrUnknownLanguage)
	}

	if l, err := ParseLanguage(token); err == nil {
		return l, nil
	}

	if l, ok := codeAliases[strings.ToLower(token)]; ok {
		return l, nil
	}

	// The matcher also returns CLDR neighbours (br -> fr, fo -> da); only
	// region and script variants of a supported base language are accepted.
	if tag, err := language.Parse(token); err == nil && tag != language.Und {
		_, idx, conf := languageMatcher.Match(tag)
		if conf >= language.High && sameBase(tag, supportedTags[idx]) {
			return supportedCodes[idx], nil
		}
	}

	if l, ok := languageByName[normalizeName(token)]; ok {
		return l, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, token)
}

// Name returns the English display name of the language.
func (l Language) Name() string {
	for i, code := range supportedCodes {
		if code == l {
			return display.English.Tags().Name(supportedTags[i])
		}
	}
	return string(l)
}

func (l Language) String() string { return string(l) }

// UnmarshalText validates the code against the supported set.
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func sameBase(a, b language.Tag) bool {
	return baseOf(a) == baseOf(b)
}

func baseOf(t language.Tag) language.Base {
	if c, err := language.All.Canonicalize(t); err == nil {
		t = c
	}
	base, _ := t.Base()
	return base
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
