package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Attributes with these keys are always masked.
var (
	credentialFields = []string{
		"password", "secret", "token", "credentials", "authorization", "cookie",
		"apiKey", "api_key", "accessToken", "access_token",
	}
	cardholderFields = []string{
		"card_number", "cardNumber", "cvc", "cardholder_name", "email",
	}
	sensitivePrefixes = []string{"secret", "private"}
)

// Values matching these are masked whatever their key. Connector error
// bodies are logged on failure, so a card number can turn up anywhere.
var sensitiveValues = []*regexp.Regexp{
	// Public API keys: api_live_ or api_test_ and the key body
	regexp.MustCompile(`(?i)\bapi_(live|test)_[A-Za-z0-9]{16,}`),
	// Primary account numbers: 13 to 19 digits, optionally grouped
	regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^(bearer|basic)\s+.+$`),
}

func redactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(credentialFields)+len(cardholderFields)+len(sensitivePrefixes)+len(sensitiveValues))

	for _, f := range append(credentialFields, cardholderFields...) {
		opts = append(opts, masq.WithFieldName(f))
	}

	for _, p := range sensitivePrefixes {
		opts = append(opts, masq.WithFieldPrefix(p))
	}

	for _, re := range sensitiveValues {
		opts = append(opts, masq.WithRegex(re))
	}

	return opts
}

// RedactAttr returns a slog ReplaceAttr func that masks credentials and
// cardholder data, plus whatever extra selects.
func RedactAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(redactOptions(), extra...)...)
}
