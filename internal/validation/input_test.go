package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
		errMsg   string
	}{
		{name: "Valid", username: "john_doe42"},
		{name: "Minimum Length", username: "abc"},
		{name: "Maximum Length", username: strings.Repeat("a", 80)},
		{name: "Empty", username: "", wantErr: true, errMsg: "required"},
		{name: "Too Short", username: "ab", wantErr: true, errMsg: "3-80 characters"},
		{name: "Too Long", username: strings.Repeat("a", 81), wantErr: true, errMsg: "3-80 characters"},
		{name: "Invalid Characters", username: "john doe", wantErr: true, errMsg: "3-80 characters"},
		{name: "Hyphen", username: "john-doe", wantErr: true, errMsg: "3-80 characters"},
		{name: "Reserved", username: "admin", wantErr: true, errMsg: "reserved"},
		{name: "Reserved Mixed Case", username: "RooT", wantErr: true, errMsg: "reserved"},
		{name: "Reserved Prefix Allowed", username: "admin2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.username)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Equal(t, "username", err.Field)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		want    string
		wantErr bool
	}{
		{name: "Valid", email: "user@example.com", want: "user@example.com"},
		{name: "Normalized To Lowercase", email: "User@Example.COM", want: "user@example.com"},
		{name: "Plus Addressing", email: "user+tag@example.com", want: "user+tag@example.com"},
		{name: "Empty", email: "", wantErr: true},
		{name: "Missing Domain", email: "user@", wantErr: true},
		{name: "Missing At", email: "example.com", wantErr: true},
		{name: "Display Name Form Rejected", email: "User <user@example.com>", wantErr: true},
		{name: "Too Long", email: strings.Repeat("a", 250) + "@x.io", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Email(tt.email)
			if tt.wantErr {
				require.NotNil(t, err)
			} else {
				require.Nil(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// Every strength rule failure must name the rule that was violated.
func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
		errMsg   string
	}{
		{name: "Strong", password: "Correct!Horse7Battery"},
		{name: "Empty", password: "", wantErr: true, errMsg: "required"},
		{name: "Too Short", password: "Sh0rt!pass", wantErr: true, errMsg: "at least 12 characters"},
		{name: "Too Long", password: "Aa1!" + strings.Repeat("x", 125), wantErr: true, errMsg: "exceed 128 characters"},
		{name: "No Lowercase", password: "NOLOWERCASE123!?", wantErr: true, errMsg: "lowercase"},
		{name: "No Uppercase", password: "nouppercase123!?", wantErr: true, errMsg: "uppercase"},
		{name: "No Digit", password: "NoDigitsInHere!?", wantErr: true, errMsg: "number"},
		{name: "No Symbol", password: "NoSymbolsHere123", wantErr: true, errMsg: "special character"},
		{name: "Common Pattern", password: "MyPassword123!?", wantErr: true, errMsg: "common patterns"},
		{name: "Common Pattern Qwerty", password: "SomeQWERTYx19!?", wantErr: true, errMsg: "common patterns"},
		{name: "Repeated Characters", password: "Gooood!Morning7", wantErr: true, errMsg: "repeated characters"},
		{name: "Three Repeats Allowed", password: "Goood!Morning72"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}
