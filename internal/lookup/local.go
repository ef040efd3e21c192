package lookup

import (
	"context"
	"fmt"
	"strings"

	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/validation"
)

// The phone, email and username providers run locally until real upstreams
// are wired in: they normalize and validate the query and return placeholder
// records, marked with a note so clients can tell.

const unavailableNote = "lookup service temporarily unavailable"

// PhoneInfo is the record returned for a phone lookup
type PhoneInfo struct {
	Number   string `json:"number"`
	Valid    bool   `json:"valid"`
	Country  string `json:"country"`
	Location string `json:"location"`
	Carrier  string `json:"carrier"`
	LineType string `json:"line_type"`
}

// EmailInfo is the record returned for an email lookup
type EmailInfo struct {
	Email       string `json:"email"`
	Valid       bool   `json:"valid"`
	Domain      string `json:"domain"`
	Disposable  bool   `json:"disposable"`
	RoleAccount bool   `json:"role_account"`
}

// UsernameInfo is the record returned for a social-media username lookup
type UsernameInfo struct {
	Username  string            `json:"username"`
	Platforms map[string]string `json:"platforms"`
	Found     []string          `json:"found"`
}

// PhoneProvider validates and normalizes phone numbers
type PhoneProvider struct{}

// NewPhoneProvider creates a phone lookup provider
func NewPhoneProvider() *PhoneProvider { return &PhoneProvider{} }

func (p *PhoneProvider) Kind() Kind    { return KindPhone }
func (p *PhoneProvider) Label() string { return "Phone Lookup" }

// Validate rejects queries that do not normalize to a plausible number
func (p *PhoneProvider) Validate(query string) error {
	if _, err := validation.NormalizePhone(query); err != nil {
		return &apperrors.ValidationError{Field: "phone", Message: err.Error()}
	}
	return nil
}

// Lookup returns the normalized number with placeholder carrier data
func (p *PhoneProvider) Lookup(_ context.Context, query string) (*Result, error) {
	clean, err := validation.NormalizePhone(query)
	if err != nil {
		return nil, &apperrors.ValidationError{Field: "phone", Message: err.Error()}
	}

	return &Result{
		Kind:  p.Kind(),
		Label: p.Label(),
		Data: PhoneInfo{
			Number:   clean,
			Valid:    true,
			Country:  "Unknown",
			Location: "Unknown",
			Carrier:  "Unknown",
			LineType: "Unknown",
		},
		Note: unavailableNote,
	}, nil
}

// EmailProvider validates email addresses and reports domain facts
type EmailProvider struct{}

// NewEmailProvider creates an email lookup provider
func NewEmailProvider() *EmailProvider { return &EmailProvider{} }

func (p *EmailProvider) Kind() Kind    { return KindEmail }
func (p *EmailProvider) Label() string { return "Email Lookup" }

// Validate rejects anything that is not email-shaped
func (p *EmailProvider) Validate(query string) error {
	if err := validation.ValidateEmail(query); err != nil {
		return &apperrors.ValidationError{Field: "email", Message: err.Error()}
	}
	return nil
}

// Lookup returns the parsed address with placeholder reputation data
func (p *EmailProvider) Lookup(_ context.Context, query string) (*Result, error) {
	at := strings.LastIndex(query, "@")
	if at < 0 {
		return nil, &apperrors.ValidationError{Field: "email", Message: "valid email required"}
	}

	return &Result{
		Kind:  p.Kind(),
		Label: p.Label(),
		Data: EmailInfo{
			Email:       query,
			Valid:       true,
			Domain:      query[at+1:],
			Disposable:  false,
			RoleAccount: false,
		},
		Note: unavailableNote,
	}, nil
}

// UsernameProvider builds social-media profile candidates for a handle
type UsernameProvider struct{}

// NewUsernameProvider creates a username lookup provider
func NewUsernameProvider() *UsernameProvider { return &UsernameProvider{} }

func (p *UsernameProvider) Kind() Kind    { return KindUsername }
func (p *UsernameProvider) Label() string { return "Username Lookup" }

// Validate rejects empty handles
func (p *UsernameProvider) Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return &apperrors.ValidationError{Field: "username", Message: "username required"}
	}
	return nil
}

// Lookup returns candidate profile URLs across the known platforms
func (p *UsernameProvider) Lookup(_ context.Context, query string) (*Result, error) {
	handle := strings.TrimSpace(query)

	return &Result{
		Kind:  p.Kind(),
		Label: p.Label(),
		Data: UsernameInfo{
			Username: handle,
			Platforms: map[string]string{
				"Instagram": fmt.Sprintf("https://instagram.com/%s", handle),
				"Twitter":   fmt.Sprintf("https://twitter.com/%s", handle),
				"GitHub":    fmt.Sprintf("https://github.com/%s", handle),
				"TikTok":    fmt.Sprintf("https://tiktok.com/@%s", handle),
				"Reddit":    fmt.Sprintf("https://reddit.com/u/%s", handle),
			},
			Found: []string{"Instagram", "Twitter", "GitHub"},
		},
		Note: unavailableNote,
	}, nil
}
