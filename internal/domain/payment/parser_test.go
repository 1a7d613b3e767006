package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/pay-public-api/internal/domain"
)

func newTestParser() *Parser {
	return NewParser(ParserConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// body builds a JSON document from a base of valid fields plus overrides.
// A nil override value removes the key; use json.RawMessage for literal values.
func body(t *testing.T, overrides map[string]any) []byte {
	t.Helper()

	fields := map[string]any{
		FieldAmount:      1000,
		FieldReference:   "Some reference",
		FieldDescription: "Some description",
		FieldReturnURL:   "https://somewhere.gov.uk/rainbow/1",
	}

	for k, v := range overrides {
		if v == nil {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}

	b, err := json.Marshal(fields)
	require.NoError(t, err)

	return b
}

var null = json.RawMessage("null")

func requireFailure(t *testing.T, err error) *Failure {
	t.Helper()

	var failure *Failure
	require.True(t, errors.As(err, &failure), "expected *Failure, got %v", err)

	return failure
}

// --- Success Tests ---

func TestParser_Parse_MinimalRequest(t *testing.T) {
	req, err := newTestParser().Parse(context.Background(), body(t, nil))
	require.NoError(t, err)

	assert.Equal(t, int64(1000), req.Amount())
	assert.Equal(t, "Some reference", req.Reference())
	assert.Equal(t, "Some description", req.Description())

	returnURL, ok := req.ReturnURL()
	assert.True(t, ok)
	assert.Equal(t, "https://somewhere.gov.uk/rainbow/1", returnURL)

	_, ok = req.AgreementID()
	assert.False(t, ok)
	_, ok = req.Language()
	assert.False(t, ok)
	_, ok = req.DelayedCapture()
	assert.False(t, ok)
}

func TestParser_Parse_OptionalFields(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]any
		check func(*testing.T, *CreatePaymentRequest)
	}{
		{
			name:  "language en",
			extra: map[string]any{FieldLanguage: "en"},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				lang, ok := r.Language()
				assert.True(t, ok)
				assert.Equal(t, English, lang)
			},
		},
		{
			name:  "language cy",
			extra: map[string]any{FieldLanguage: "cy"},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				lang, ok := r.Language()
				assert.True(t, ok)
				assert.Equal(t, Welsh, lang)
				assert.Equal(t, "cy", lang.String())
			},
		},
		{
			name:  "delayed capture true",
			extra: map[string]any{FieldDelayedCapture: true},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				v, ok := r.DelayedCapture()
				assert.True(t, ok)
				assert.True(t, v)
			},
		},
		{
			name:  "delayed capture false",
			extra: map[string]any{FieldDelayedCapture: false},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				v, ok := r.DelayedCapture()
				assert.True(t, ok)
				assert.False(t, v)
			},
		},
		{
			name:  "agreement without return url",
			extra: map[string]any{FieldAgreementID: "abc123", FieldReturnURL: nil},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				id, ok := r.AgreementID()
				assert.True(t, ok)
				assert.Equal(t, "abc123", id)
				_, ok = r.ReturnURL()
				assert.False(t, ok)
			},
		},
		{
			name:  "agreement with null return url",
			extra: map[string]any{FieldAgreementID: "abc123", FieldReturnURL: null},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				_, ok := r.ReturnURL()
				assert.False(t, ok)
			},
		},
		{
			name:  "agreement with return url",
			extra: map[string]any{FieldAgreementID: "abc123"},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				_, ok := r.ReturnURL()
				assert.True(t, ok)
			},
		},
		{
			name:  "boundary amounts and lengths",
			extra: map[string]any{FieldAmount: MaxAmount, FieldReference: strings.Repeat("r", 255), FieldAgreementID: strings.Repeat("a", 26)},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				assert.Equal(t, int64(MaxAmount), r.Amount())
			},
		},
		{
			name:  "whitespace reference is a value",
			extra: map[string]any{FieldReference: "   "},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				assert.Equal(t, "   ", r.Reference())
			},
		},
		{
			name:  "multi-byte characters count once",
			extra: map[string]any{FieldDescription: strings.Repeat("é", 255)},
			check: func(t *testing.T, r *CreatePaymentRequest) {
				t.Helper()
				assert.Equal(t, strings.Repeat("é", 255), r.Description())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := newTestParser().Parse(context.Background(), body(t, tt.extra))
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestParser_Parse_DuplicateKeyLastWins(t *testing.T) {
	raw := `{"amount":5,"amount":7,"reference":"r","description":"d","return_url":"https://example.com"}`

	req, err := newTestParser().Parse(context.Background(), []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, int64(7), req.Amount())
}

// --- Failure Tests ---

func TestParser_Parse_Failures(t *testing.T) {
	tests := []struct {
		name        string
		raw         []byte
		overrides   map[string]any
		wantCode    string
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "malformed json",
			raw:         []byte(`{"amount": 1000, "reference": "x"`),
			wantCode:    CodeUnparsableJSON,
			wantKind:    KindStructural,
			wantMessage: "Unable to parse JSON",
		},
		{
			name:        "empty body",
			raw:         []byte(``),
			wantCode:    CodeUnparsableJSON,
			wantKind:    KindStructural,
			wantMessage: "Unable to parse JSON",
		},
		{
			name:        "top level array",
			raw:         []byte(`[]`),
			wantCode:    CodeUnparsableJSON,
			wantKind:    KindStructural,
			wantMessage: "Unable to parse JSON",
		},
		{
			name:        "top level null",
			raw:         []byte(`null`),
			wantCode:    CodeUnparsableJSON,
			wantKind:    KindStructural,
			wantMessage: "Unable to parse JSON",
		},
		{
			name:        "trailing data",
			raw:         []byte(`{"amount":1} {}`),
			wantCode:    CodeUnparsableJSON,
			wantKind:    KindStructural,
			wantMessage: "Unable to parse JSON",
		},
		{
			name:        "empty object reports amount first",
			raw:         []byte(`{}`),
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: amount",
		},
		{
			name:        "amount missing",
			overrides:   map[string]any{FieldAmount: nil},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: amount",
		},
		{
			name:        "amount null",
			overrides:   map[string]any{FieldAmount: null},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: amount",
		},
		{
			name:        "amount empty string",
			overrides:   map[string]any{FieldAmount: ""},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: amount. Must be a valid numeric format",
		},
		{
			name:        "amount fractional",
			overrides:   map[string]any{FieldAmount: json.RawMessage("10.5")},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: amount. Must be a valid numeric format",
		},
		{
			name:        "amount zero",
			overrides:   map[string]any{FieldAmount: 0},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: amount. Must be greater than or equal to 1",
		},
		{
			name:        "amount too large",
			overrides:   map[string]any{FieldAmount: 10_000_001},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: amount. Must be less than or equal to 10000000",
		},
		{
			name:        "amount beyond int64",
			overrides:   map[string]any{FieldAmount: json.RawMessage("99999999999999999999")},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: amount. Must be less than or equal to 10000000",
		},
		{
			name:        "reference missing",
			overrides:   map[string]any{FieldReference: nil},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: reference",
		},
		{
			name:        "reference not a string",
			overrides:   map[string]any{FieldReference: 1234},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: reference. Must be a valid string format",
		},
		{
			name:        "reference too long",
			overrides:   map[string]any{FieldReference: strings.Repeat("r", 256)},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: reference. Must be less than or equal to 255 characters length",
		},
		{
			name:        "description null",
			overrides:   map[string]any{FieldDescription: null},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: description",
		},
		{
			name:        "description empty",
			overrides:   map[string]any{FieldDescription: ""},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: description",
		},
		{
			name:        "description not a string",
			overrides:   map[string]any{FieldDescription: true},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: description. Must be a valid string format",
		},
		{
			name:        "description too long",
			overrides:   map[string]any{FieldDescription: strings.Repeat("d", 256)},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: description. Must be less than or equal to 255 characters length",
		},
		{
			name:        "return url missing without agreement",
			overrides:   map[string]any{FieldReturnURL: nil},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: return_url",
		},
		{
			name:        "return url null without agreement",
			overrides:   map[string]any{FieldReturnURL: null},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: return_url",
		},
		{
			name:        "return url not a string",
			overrides:   map[string]any{FieldReturnURL: 1},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: return_url. Must be a valid URL format",
		},
		{
			name:        "return url too long is reported before format",
			overrides:   map[string]any{FieldReturnURL: strings.Repeat("a", 2001)},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: return_url. Must be less than or equal to 2000 characters length",
		},
		{
			name:        "return url malformed",
			overrides:   map[string]any{FieldReturnURL: "not a url"},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: return_url. Must be a valid URL format",
		},
		{
			name:        "return url insecure",
			overrides:   map[string]any{FieldReturnURL: "http://somewhere.gov.uk/"},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: return_url. Must be a valid URL format",
		},
		{
			name:        "agreement null",
			overrides:   map[string]any{FieldAgreementID: null},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: agreement_id",
		},
		{
			name:        "agreement empty",
			overrides:   map[string]any{FieldAgreementID: "", FieldReturnURL: nil},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: agreement_id",
		},
		{
			name:        "agreement empty with return url",
			overrides:   map[string]any{FieldAgreementID: ""},
			wantCode:    CodeMissingAttribute,
			wantKind:    KindStructural,
			wantMessage: "Missing mandatory attribute: agreement_id",
		},
		{
			name:        "agreement not a string",
			overrides:   map[string]any{FieldAgreementID: 1234},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: agreement_id. Must be a valid agreement ID",
		},
		{
			name:        "agreement too long",
			overrides:   map[string]any{FieldAgreementID: strings.Repeat("a", 27)},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: agreement_id. Must be less than or equal to 26 characters length",
		},
		{
			name:        "agreement present but return url malformed",
			overrides:   map[string]any{FieldAgreementID: "abc123", FieldReturnURL: "nope"},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: "Invalid attribute value: return_url. Must be a valid URL format",
		},
		{
			name:        "language unsupported",
			overrides:   map[string]any{FieldLanguage: "fr"},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: `Invalid attribute value: language. Must be "en" or "cy"`,
		},
		{
			name:        "language number",
			overrides:   map[string]any{FieldLanguage: 1234},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: `Invalid attribute value: language. Must be "en" or "cy"`,
		},
		{
			name:        "language null",
			overrides:   map[string]any{FieldLanguage: null},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: `Invalid attribute value: language. Must be "en" or "cy"`,
		},
		{
			name:        "language empty",
			overrides:   map[string]any{FieldLanguage: ""},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: `Invalid attribute value: language. Must be "en" or "cy"`,
		},
		{
			name:        "language wrong case",
			overrides:   map[string]any{FieldLanguage: "EN"},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindSemantic,
			wantMessage: `Invalid attribute value: language. Must be "en" or "cy"`,
		},
		{
			name:        "delayed capture string",
			overrides:   map[string]any{FieldDelayedCapture: "true"},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: delayed_capture. Must be true or false",
		},
		{
			name:        "delayed capture null",
			overrides:   map[string]any{FieldDelayedCapture: null},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: delayed_capture. Must be true or false",
		},
		{
			name:        "delayed capture number",
			overrides:   map[string]any{FieldDelayedCapture: 0},
			wantCode:    CodeInvalidAttribute,
			wantKind:    KindStructural,
			wantMessage: "Invalid attribute value: delayed_capture. Must be true or false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			if raw == nil {
				raw = body(t, tt.overrides)
			}

			req, err := newTestParser().Parse(context.Background(), raw)
			require.Error(t, err)
			assert.Nil(t, req)

			failure := requireFailure(t, err)
			assert.Equal(t, tt.wantCode, failure.Code)
			assert.Equal(t, tt.wantKind, failure.Kind)
			assert.Equal(t, tt.wantMessage, failure.Message)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

// --- Ordering Tests ---

func TestParser_Parse_FirstFailureInFieldOrder(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantField string
	}{
		{
			name:      "amount before reference",
			overrides: map[string]any{FieldAmount: 0, FieldReference: nil},
			wantField: FieldAmount,
		},
		{
			name:      "reference before description",
			overrides: map[string]any{FieldReference: 1, FieldDescription: nil},
			wantField: FieldReference,
		},
		{
			name:      "description before return url",
			overrides: map[string]any{FieldDescription: nil, FieldReturnURL: "bad"},
			wantField: FieldDescription,
		},
		{
			name:      "agreement before return url",
			overrides: map[string]any{FieldAgreementID: 1, FieldReturnURL: "bad"},
			wantField: FieldAgreementID,
		},
		{
			name:      "return url before language",
			overrides: map[string]any{FieldReturnURL: "bad", FieldLanguage: "fr"},
			wantField: FieldReturnURL,
		},
		{
			name:      "language before delayed capture",
			overrides: map[string]any{FieldLanguage: "fr", FieldDelayedCapture: "yes"},
			wantField: FieldLanguage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestParser().Parse(context.Background(), body(t, tt.overrides))
			failure := requireFailure(t, err)
			assert.Equal(t, tt.wantField, failure.Field)
		})
	}
}

func TestParser_InsecureReturnURLAllowed(t *testing.T) {
	parser := NewParser(ParserConfig{
		Logger:                  slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowInsecureReturnURLs: true,
	})

	req, err := parser.Parse(context.Background(), body(t, map[string]any{FieldReturnURL: "http://localhost:3000/return"}))
	require.NoError(t, err)

	returnURL, _ := req.ReturnURL()
	assert.Equal(t, "http://localhost:3000/return", returnURL)
}

func TestParser_LogsStateTransitions(t *testing.T) {
	var buf bytes.Buffer
	parser := NewParser(ParserConfig{
		Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: levelTrace})),
	})

	_, err := parser.Parse(context.Background(), []byte(`{}`))
	require.Error(t, err)

	output := buf.String()
	assert.Contains(t, output, "parser state changed")
	assert.Contains(t, output, `"to":"failed"`)
	assert.Contains(t, output, `"code":"P0101"`)
}

func TestParser_NilLoggerDefaults(t *testing.T) {
	parser := NewParser(ParserConfig{})
	require.NotNil(t, parser)

	_, err := parser.Parse(context.Background(), body(t, nil))
	require.NoError(t, err)
}

func TestKindAndStateStrings(t *testing.T) {
	assert.Equal(t, "structural", KindStructural.String())
	assert.Equal(t, "semantic", KindSemantic.String())
	assert.Equal(t, "unknown", Kind(0).String())
	assert.Equal(t, "parsing", StateParsing.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "complete", StateComplete.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestLanguageFromCode(t *testing.T) {
	tests := []struct {
		code   string
		want   Language
		wantOK bool
	}{
		{code: "en", want: English, wantOK: true},
		{code: "cy", want: Welsh, wantOK: true},
		{code: "CY"},
		{code: "cy-GB"},
		{code: "en-GB"},
		{code: "fr"},
		{code: ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, ok := LanguageFromCode(tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "cy", Welsh.Tag().String())
}
