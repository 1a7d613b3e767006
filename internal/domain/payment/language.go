package payment

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Language is a payment page language accepted from clients.
type Language struct {
	tag language.Tag
}

// Supported payment page languages.
var (
	English = Language{tag: language.English}
	Welsh   = Language{tag: language.MustParse("cy")}
)

// supportedLanguages lists accepted languages in the order they are reported to clients.
var supportedLanguages = []Language{English, Welsh}

// String returns the ISO 639-1 code sent on the wire.
func (l Language) String() string {
	return l.tag.String()
}

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	return l.tag
}

// LanguageFromCode returns the supported language whose code is exactly code.
// Matching is case-sensitive and does not accept regional variants.
func LanguageFromCode(code string) (Language, bool) {
	for _, l := range supportedLanguages {
		if l.String() == code {
			return l, true
		}
	}

	return Language{}, false
}

// languageReason is the failure reason listing every supported code.
func languageReason() string {
	quoted := make([]string, 0, len(supportedLanguages))
	for _, l := range supportedLanguages {
		quoted = append(quoted, strconv.Quote(l.String()))
	}

	return "Must be " + strings.Join(quoted, " or ")
}
