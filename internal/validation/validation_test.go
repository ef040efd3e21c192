package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid simple", username: "alice", wantErr: false},
		{name: "valid with underscore and digits", username: "user_42", wantErr: false},
		{name: "minimum length", username: "abc", wantErr: false},
		{name: "too short", username: "ab", wantErr: true},
		{name: "too long", username: "abcdefghijklmnopqrstuvwxyz0123456789", wantErr: true},
		{name: "spaces", username: "user name", wantErr: true},
		{name: "special characters", username: "user!", wantErr: true},
		{name: "unicode", username: "пользователь", wantErr: true},
		{name: "empty", username: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIP(t *testing.T) {
	assert.NoError(t, ValidateIP("8.8.8.8"))
	assert.NoError(t, ValidateIP("2001:db8::1"))

	assert.Error(t, ValidateIP(""))
	assert.Error(t, ValidateIP("256.1.1.1"))
	assert.Error(t, ValidateIP("example.com"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("first.last@sub.example.co"))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("plainstring"))
	assert.Error(t, ValidateEmail("user@nodot"))
	assert.Error(t, ValidateEmail("@example.com"))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "formatted us number", input: "+1 (202) 555-0147", want: "+12025550147"},
		{name: "bare digits", input: "2025550147", want: "2025550147"},
		{name: "dots and dashes", input: "202.555-0147", want: "2025550147"},
		{name: "too short", input: "12345", wantErr: true},
		{name: "too long", input: "+1234567890123456", wantErr: true},
		{name: "letters only", input: "call me", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateBindCode(t *testing.T) {
	assert.NoError(t, ValidateBindCode("123456"))
	assert.NoError(t, ValidateBindCode("000000"))

	assert.Error(t, ValidateBindCode(""))
	assert.Error(t, ValidateBindCode("12345"))
	assert.Error(t, ValidateBindCode("1234567"))
	assert.Error(t, ValidateBindCode("12345a"))
}
