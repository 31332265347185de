// Package i18n resolves user locales against the set the product supports.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supported)

// SupportedTags returns the list of supported language tags.
func SupportedTags() []language.Tag {
	tags := make([]language.Tag, len(supported))
	copy(tags, supported)
	return tags
}

// DefaultTag returns the default language tag.
func DefaultTag() language.Tag {
	return supported[0]
}

// ParseTag parses a locale string into a supported tag. The bool reports
// whether the input matched a supported locale exactly enough to honor it.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTag(), false
	}
	parsed, err := language.Parse(value)
	if err != nil {
		return DefaultTag(), false
	}
	tag, _, confidence := matcher.Match(parsed)
	if confidence < language.High {
		return DefaultTag(), false
	}
	return tag, true
}

// MatchOrDefault resolves an Accept-Language style preference list to a
// supported tag, falling back to the default.
func MatchOrDefault(preferences ...language.Tag) language.Tag {
	if len(preferences) == 0 {
		return DefaultTag()
	}
	tag, _, confidence := matcher.Match(preferences...)
	if confidence == language.No {
		return DefaultTag()
	}
	return tag
}
