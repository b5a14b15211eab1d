package helpers

import (
	"strings"

	"github.com/joshua-takyi/rsvp/internal/models"
	"golang.org/x/text/language"
)

var supportedTags = []language.Tag{
	language.English,
	language.Spanish,
	language.Dutch,
}

var tagMatcher = language.NewMatcher(supportedTags)

// MatchLanguage picks the best supported language for an Accept-Language
// header value, defaulting to English.
func MatchLanguage(acceptLanguage string) models.Language {
	accept := strings.TrimSpace(acceptLanguage)
	if accept == "" {
		return models.LanguageEN
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return models.LanguageEN
	}
	_, idx, confidence := tagMatcher.Match(tags...)
	if confidence == language.No {
		return models.LanguageEN
	}
	base, _ := supportedTags[idx].Base()
	return models.Language(base.String())
}
