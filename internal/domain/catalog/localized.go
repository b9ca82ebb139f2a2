package catalog

import (
	"golang.org/x/text/language"
)

// SupportedLanguages lists the content languages in matcher preference order
var SupportedLanguages = []language.Tag{
	language.English,
	language.French,
	language.Arabic,
}

var languageMatcher = language.NewMatcher(SupportedLanguages)

// MatchLanguage resolves an Accept-Language style preference list to a supported tag.
// Unknown or empty input falls back to English.
func MatchLanguage(preferences ...string) language.Tag {
	tags := make([]language.Tag, 0, len(preferences))
	for _, p := range preferences {
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return language.English
	}
	_, index, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return language.English
	}
	return SupportedLanguages[index]
}

// LocalizedText holds a translatable string in every supported language
type LocalizedText struct {
	En string `json:"en"`
	Fr string `json:"fr,omitempty"`
	Ar string `json:"ar,omitempty"`
}

// In returns the text for the given language, falling back to English
func (t LocalizedText) In(tag language.Tag) string {
	base, _ := tag.Base()
	var s string
	switch base.String() {
	case "fr":
		s = t.Fr
	case "ar":
		s = t.Ar
	default:
		s = t.En
	}
	if s == "" {
		return t.Default()
	}
	return s
}

// Default returns the English text, or the first non-empty translation
func (t LocalizedText) Default() string {
	switch {
	case t.En != "":
		return t.En
	case t.Fr != "":
		return t.Fr
	default:
		return t.Ar
	}
}

// IsEmpty reports whether no translation is set
func (t LocalizedText) IsEmpty() bool {
	return t.En == "" && t.Fr == "" && t.Ar == ""
}
