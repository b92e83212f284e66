package ltcheck

import (
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/langtools/ltcheck/internal/chunk"
)

// DefaultLanguage is used when no language code is set on a request.
const DefaultLanguage = "auto"

// Level selects the set of active rules.
type Level string

const (
	// LevelDefault is the server's default rule set.
	LevelDefault Level = "default"
	// LevelPicky activates additional rules useful for formal text.
	LevelPicky Level = "picky"
)

// CheckRequest is a POST /v2/check request.  Exactly one of Text and Data
// must be set; use WithText or WithData, which keep that invariant.
//
// The fields follow the server's JSON API; list fields are comma-joined on
// the wire.
type CheckRequest struct {
	// Text to be checked.  This or Data is required.
	Text *string `json:"text,omitempty"`
	// Annotated document to be checked, with markup spans excluded.
	Data *Data `json:"data,omitempty"`
	// Language code like "en-US", "de-DE", "fr", or "auto".
	Language string `json:"language" validate:"omitempty,langcode"`
	// Username for Premium API access.
	Username string `json:"username,omitempty"`
	// APIKey for Premium API access.
	APIKey string `json:"apiKey,omitempty"`
	// Dicts are names of dictionaries to include words from.
	Dicts []string `json:"dicts,omitempty"`
	// MotherTongue enables false-friend checks for some language pairs.
	MotherTongue string `json:"motherTongue,omitempty" validate:"omitempty,langcode"`
	// PreferredVariants resolve ambiguous detection under language=auto,
	// e.g. en-GB vs en-US.
	PreferredVariants []string `json:"preferredVariants,omitempty"`
	// EnabledRules are IDs of rules to enable.
	EnabledRules []string `json:"enabledRules,omitempty"`
	// DisabledRules are IDs of rules to disable.
	DisabledRules []string `json:"disabledRules,omitempty"`
	// EnabledCategories are IDs of categories to enable.
	EnabledCategories []string `json:"enabledCategories,omitempty"`
	// DisabledCategories are IDs of categories to disable.
	DisabledCategories []string `json:"disabledCategories,omitempty"`
	// EnabledOnly restricts checking to explicitly enabled rules/categories.
	EnabledOnly bool `json:"enabledOnly,omitempty"`
	// Level "picky" activates additional rules.
	Level Level `json:"level,omitempty"`
}

// NewCheckRequest returns an empty request with language set to "auto".
func NewCheckRequest() CheckRequest {
	return CheckRequest{Language: DefaultLanguage}
}

// WithText sets the text to be checked and clears any data field.
func (r CheckRequest) WithText(text string) CheckRequest {
	r.Text = &text
	r.Data = nil
	return r
}

// WithData sets the annotated document to be checked and clears any text
// field.
func (r CheckRequest) WithData(data *Data) CheckRequest {
	r.Data = data
	r.Text = nil
	return r
}

// WithDataString is WithData for a raw JSON annotations document.
func (r CheckRequest) WithDataString(s string) (CheckRequest, error) {
	data, err := ParseData(s)
	if err != nil {
		return r, err
	}
	return r.WithData(data), nil
}

// WithLanguage sets the language code.
func (r CheckRequest) WithLanguage(language string) CheckRequest {
	r.Language = language
	return r
}

// TryGetText returns the text this request asks the server to check: the
// raw text, or the annotated document's effective text.
func (r CheckRequest) TryGetText() (string, error) {
	switch {
	case r.Text != nil:
		return *r.Text, nil
	case r.Data != nil:
		return r.Data.EffectiveText()
	default:
		return "", ErrMissingInput
	}
}

// Split divides the request into several carrying consecutive fragments of
// its content, each below maxLen bytes when avoidable, cutting only after
// occurrences of pat.  All other request fields are copied as-is.
func (r CheckRequest) Split(maxLen int, pat string) ([]CheckRequest, error) {
	if r.Data != nil {
		parts := r.Data.Split(maxLen, pat)
		reqs := make([]CheckRequest, len(parts))
		for i, d := range parts {
			reqs[i] = r.WithData(d)
		}
		return reqs, nil
	}
	if r.Text == nil {
		return nil, ErrMissingInput
	}
	parts := chunk.SplitLen(*r.Text, maxLen, pat)
	reqs := make([]CheckRequest, len(parts))
	for i, t := range parts {
		reqs[i] = r.WithText(t)
	}
	return reqs, nil
}

// Validate checks the request against the shared validation rules: one of
// text/data present, never both, and well-formed language codes.
func (r CheckRequest) Validate() error {
	if r.Text == nil && r.Data == nil {
		return ErrMissingInput
	}
	if r.Text != nil && r.Data != nil {
		return errors.New("ltcheck: text and data fields are mutually exclusive")
	}
	return validate.Struct(r)
}

// Values form-encodes the request the way the server expects: data as a
// JSON object string, list fields comma-joined, defaults omitted.
func (r CheckRequest) Values() (url.Values, error) {
	form := url.Values{}

	switch {
	case r.Text != nil:
		form.Set("text", *r.Text)
	case r.Data != nil:
		raw, err := json.Marshal(r.Data)
		if err != nil {
			return nil, err
		}
		form.Set("data", string(raw))
	default:
		return nil, ErrMissingInput
	}

	lang := r.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	form.Set("language", lang)

	setOpt := func(key, v string) {
		if v != "" {
			form.Set(key, v)
		}
	}
	setOpt("username", r.Username)
	setOpt("apiKey", r.APIKey)
	setOpt("motherTongue", r.MotherTongue)
	setOpt("dicts", strings.Join(r.Dicts, ","))
	setOpt("preferredVariants", strings.Join(r.PreferredVariants, ","))
	setOpt("enabledRules", strings.Join(r.EnabledRules, ","))
	setOpt("disabledRules", strings.Join(r.DisabledRules, ","))
	setOpt("enabledCategories", strings.Join(r.EnabledCategories, ","))
	setOpt("disabledCategories", strings.Join(r.DisabledCategories, ","))
	if r.EnabledOnly {
		form.Set("enabledOnly", "true")
	}
	if r.Level != "" && r.Level != LevelDefault {
		form.Set("level", string(r.Level))
	}
	return form, nil
}

// langCodeRe matches "auto" aside: 2-3 alphabetic characters, optionally
// followed by a 2-letter region and further alphabetic subtags, e.g. "en",
// "en-US", "ca-ES-valencia".  Case-insensitive.
var langCodeRe = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z]{2}(-[a-zA-Z]+)*)?$`)

// ParseLanguageCode validates a language code.  A valid code does not
// guarantee the language exists on the server.
func ParseLanguageCode(v string) error {
	if v == DefaultLanguage || langCodeRe.MatchString(v) {
		return nil
	}
	return errors.New(
		`ltcheck: invalid language code: want "auto" or a code matching ` + langCodeRe.String())
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("langcode", func(fl validator.FieldLevel) bool {
		return ParseLanguageCode(fl.Field().String()) == nil
	}))
	return v
}()
