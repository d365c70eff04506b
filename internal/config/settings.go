package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultWebhookURL = "https://inbound.bigpanda.io/jenkins/changes"
	DefaultBaseURL    = "https://api.bigPanda.io"
)

// NotifierSettings are the BigPanda settings an administrator manages.
// They are read-only while events are processed.
type NotifierSettings struct {
	// Change notifications
	APIKey     string `json:"api_key" yaml:"api_key" dynamodbav:"ApiKey"`
	AppKey     string `json:"app_key" yaml:"app_key" dynamodbav:"AppKey"`
	WebhookURL string `json:"webhook_url" yaml:"webhook_url" dynamodbav:"WebhookUrl"`

	// Deployment notifications
	Token                      string `json:"token" yaml:"token" dynamodbav:"Token"`
	BaseURL                    string `json:"base_url" yaml:"base_url" dynamodbav:"BaseUrl"`
	UseNodeNameInsteadOfLabels bool   `json:"use_node_name_instead_of_labels" yaml:"use_node_name_instead_of_labels" dynamodbav:"UseNodeNameInsteadOfLabels"`
}

// WithDefaults returns a copy with blank URLs replaced by their defaults
func (s NotifierSettings) WithDefaults() NotifierSettings {
	if strings.TrimSpace(s.WebhookURL) == "" {
		s.WebhookURL = DefaultWebhookURL
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		s.BaseURL = DefaultBaseURL
	}
	return s
}

// ChangesEnabled reports whether change notifications can be sent
func (s NotifierSettings) ChangesEnabled() bool {
	return !isBlank(s.APIKey) && !isBlank(s.AppKey) && !isBlank(s.WebhookURL)
}

// DeploymentsEnabled reports whether deployment notifications can be sent
func (s NotifierSettings) DeploymentsEnabled() bool {
	return !isBlank(s.Token) && !isBlank(s.BaseURL)
}

// Redacted returns a copy safe to show to administrators
func (s NotifierSettings) Redacted() NotifierSettings {
	s.APIKey = redact(s.APIKey)
	s.AppKey = redact(s.AppKey)
	s.Token = redact(s.Token)
	return s
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Settings field names, as used by the admin API
const (
	FieldAPIKey     = "api_key"
	FieldAppKey     = "app_key"
	FieldWebhookURL = "webhook_url"
	FieldToken      = "token"
	FieldBaseURL    = "base_url"
)

var validate = validator.New()

type fieldRule struct {
	tag      string
	required string // message when blank
	invalid  string // message when the tag fails on a non-blank value
}

var fieldRules = map[string]fieldRule{
	FieldAPIKey:     {tag: "required", required: "Please provide an API Key"},
	FieldAppKey:     {tag: "required", required: "Please provide an App Key"},
	FieldWebhookURL: {tag: "required,url", required: "Please provide an endpoint URL", invalid: "Please specify a valid URL here"},
	FieldToken:      {tag: "required", required: "Please specify a valid bigPanda token here"},
	FieldBaseURL:    {tag: "required,url", required: "Please specify a valid URL here", invalid: "Please specify a valid URL here"},
}

// FieldErrors maps a settings field name to a human readable problem
type FieldErrors map[string]string

// CheckField validates a single settings field. It returns the empty string
// when the value is acceptable.
func CheckField(field, value string) (string, bool) {
	rule, ok := fieldRules[field]
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return rule.required, true
	}
	if err := validate.Var(value, rule.tag); err != nil {
		return rule.invalid, true
	}
	return "", true
}

// ValidateChanges validates the change notification fields
func (s NotifierSettings) ValidateChanges() FieldErrors {
	return checkFields(map[string]string{
		FieldAPIKey:     s.APIKey,
		FieldAppKey:     s.AppKey,
		FieldWebhookURL: s.WebhookURL,
	})
}

// ValidateDeployments validates the deployment notification fields
func (s NotifierSettings) ValidateDeployments() FieldErrors {
	return checkFields(map[string]string{
		FieldToken:   s.Token,
		FieldBaseURL: s.BaseURL,
	})
}

func checkFields(values map[string]string) FieldErrors {
	errs := FieldErrors{}
	for field, value := range values {
		if msg, _ := CheckField(field, value); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// Check splits problems into values that are present but malformed and
// required values that are missing. Missing values only disable the
// matching notifier.
func (s NotifierSettings) Check() (invalid, missing FieldErrors) {
	invalid, missing = FieldErrors{}, FieldErrors{}
	for field, value := range map[string]string{
		FieldAPIKey:     s.APIKey,
		FieldAppKey:     s.AppKey,
		FieldWebhookURL: s.WebhookURL,
		FieldToken:      s.Token,
		FieldBaseURL:    s.BaseURL,
	} {
		msg, _ := CheckField(field, value)
		switch {
		case msg == "":
		case isBlank(value):
			missing[field] = msg
		default:
			invalid[field] = msg
		}
	}
	return invalid, missing
}
