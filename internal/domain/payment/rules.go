package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Reasons reported in P0102 messages.
const (
	reasonNumeric    = "Must be a valid numeric format"
	reasonString     = "Must be a valid string format"
	reasonURL        = "Must be a valid URL format"
	reasonAgreement  = "Must be a valid agreement ID"
	reasonBool       = "Must be true or false"
	reasonMinFormat  = "Must be greater than or equal to %d"
	reasonMaxFormat  = "Must be less than or equal to %d"
	reasonLenFormat  = "Must be less than or equal to %d characters length"
	secureURLScheme  = "https"
	jsonNullLiteral  = "null"
	jsonTrueLiteral  = "true"
	jsonFalseLiteral = "false"
)

// urlValidate checks URL shape with the same rules the HTTP layer uses for bound DTOs.
var urlValidate = validator.New()

// rawField is one buffered top-level member of the request object.
type rawField struct {
	present bool
	raw     json.RawMessage
}

// lookup returns the buffered member for name.
func lookup(fields map[string]json.RawMessage, name string) rawField {
	raw, ok := fields[name]
	if !ok {
		return rawField{}
	}

	return rawField{present: true, raw: bytes.TrimSpace(raw)}
}

func (f rawField) isNull() bool {
	return string(f.raw) == jsonNullLiteral
}

func (f rawField) isString() bool {
	return len(f.raw) > 0 && f.raw[0] == '"'
}

func (f rawField) isNumber() bool {
	if len(f.raw) == 0 {
		return false
	}

	c := f.raw[0]

	return c == '-' || (c >= '0' && c <= '9')
}

// stringValue decodes a JSON string member.
func (f rawField) stringValue() (string, error) {
	var s string
	if err := json.Unmarshal(f.raw, &s); err != nil {
		return "", fmt.Errorf("decoding string: %w", err)
	}

	return s, nil
}

// requireInt reads a mandatory integral amount within [lo, hi].
func requireInt(field string, v rawField, lo, hi int64) (int64, *Failure) {
	if !v.present || v.isNull() {
		return 0, missing(field)
	}

	if !v.isNumber() {
		return 0, invalid(KindStructural, field, reasonNumeric)
	}

	n, err := strconv.ParseInt(string(v.raw), 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			// Integral but beyond int64: still a range problem, not a format one.
			if v.raw[0] == '-' {
				return 0, invalid(KindSemantic, field, fmt.Sprintf(reasonMinFormat, lo))
			}

			return 0, invalid(KindSemantic, field, fmt.Sprintf(reasonMaxFormat, hi))
		}

		return 0, invalid(KindStructural, field, reasonNumeric)
	}

	if n < lo {
		return 0, invalid(KindSemantic, field, fmt.Sprintf(reasonMinFormat, lo))
	}

	if n > hi {
		return 0, invalid(KindSemantic, field, fmt.Sprintf(reasonMaxFormat, hi))
	}

	return n, nil
}

// requireString reads a mandatory, non-empty string of at most maxLen characters.
func requireString(field string, v rawField, maxLen int) (string, *Failure) {
	if !v.present || v.isNull() {
		return "", missing(field)
	}

	if !v.isString() {
		return "", invalid(KindStructural, field, reasonString)
	}

	s, err := v.stringValue()
	if err != nil {
		return "", invalid(KindStructural, field, reasonString)
	}

	if s == "" {
		return "", missing(field)
	}

	if utf8.RuneCountInString(s) > maxLen {
		return "", invalid(KindSemantic, field, fmt.Sprintf(reasonLenFormat, maxLen))
	}

	return s, nil
}

// optionalString reads an optional string of at most maxLen characters.
// A key sent with a null value counts as a missing mandatory attribute.
func optionalString(field string, v rawField, maxLen int, kindReason string) (string, bool, *Failure) {
	if !v.present {
		return "", false, nil
	}

	if v.isNull() {
		return "", false, missing(field)
	}

	if !v.isString() {
		return "", false, invalid(KindStructural, field, kindReason)
	}

	s, err := v.stringValue()
	if err != nil {
		return "", false, invalid(KindStructural, field, kindReason)
	}

	if utf8.RuneCountInString(s) > maxLen {
		return "", false, invalid(KindSemantic, field, fmt.Sprintf(reasonLenFormat, maxLen))
	}

	return s, true, nil
}

// optionalURL reads an optional absolute URL. Length is checked before shape.
func optionalURL(field string, v rawField, maxLen int, allowInsecure bool) (string, bool, *Failure) {
	s, ok, failure := optionalString(field, v, maxLen, reasonURL)
	if failure != nil || !ok {
		return "", false, failure
	}

	if !isAbsoluteURL(s, allowInsecure) {
		return "", false, invalid(KindSemantic, field, reasonURL)
	}

	return s, true, nil
}

// isAbsoluteURL reports whether s has a scheme and host.
func isAbsoluteURL(s string, allowInsecure bool) bool {
	if urlValidate.Var(s, "url") != nil {
		return false
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return allowInsecure || u.Scheme == secureURLScheme
}

// optionalLanguage reads an optional language code. Every bad value,
// including null and the empty string, gets the same reason.
func optionalLanguage(field string, v rawField) (Language, bool, *Failure) {
	if !v.present {
		return Language{}, false, nil
	}

	if v.isString() {
		if s, err := v.stringValue(); err == nil {
			if lang, ok := LanguageFromCode(s); ok {
				return lang, true, nil
			}
		}
	}

	return Language{}, false, invalid(KindSemantic, field, languageReason())
}

// optionalBool reads an optional JSON boolean literal.
func optionalBool(field string, v rawField) (value, ok bool, failure *Failure) {
	if !v.present {
		return false, false, nil
	}

	switch string(v.raw) {
	case jsonTrueLiteral:
		return true, true, nil
	case jsonFalseLiteral:
		return false, true, nil
	default:
		return false, false, invalid(KindStructural, field, reasonBool)
	}
}
