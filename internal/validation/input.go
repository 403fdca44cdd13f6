package validation

import (
	"net/mail"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,80}$`)

// reservedUsernames can never be registered, regardless of case
var reservedUsernames = []string{
	"admin", "administrator", "root", "system", "api", "www", "mail",
	"ftp", "test", "guest", "anonymous", "null", "undefined",
}

// commonPasswordPatterns are rejected as case-insensitive substrings
var commonPasswordPatterns = []string{
	"password", "123456", "qwerty", "abc123", "letmein", "welcome",
	"monkey", "dragon", "master", "shadow", "superman", "michael",
}

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// Username validates a username: 3-80 characters, letters, digits and
// underscores only, and not a reserved name.
func Username(username string) *Error {
	if username == "" {
		return newError("username", "Username is required")
	}

	if !usernamePattern.MatchString(username) {
		return newError("username", "Username must be 3-80 characters long and contain only letters, numbers, and underscores")
	}

	lower := strings.ToLower(username)
	for _, reserved := range reservedUsernames {
		if lower == reserved {
			return newError("username", "Username is reserved and cannot be used")
		}
	}

	return nil
}

// Email validates an email address and returns its normalized form
// (lowercased). Fails on anything net/mail cannot parse as a bare address.
func Email(email string) (string, *Error) {
	if email == "" {
		return "", newError("email", "Email is required")
	}
	if len(email) > 254 {
		return "", newError("email", "Email must not exceed 254 characters")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError("email", "Invalid email address")
	}

	return strings.ToLower(addr.Address), nil
}

// Password validates password strength for registration and password
// change. Each failure names the specific rule that was violated.
// Login never re-validates strength.
func Password(password string) *Error {
	if password == "" {
		return newError("password", "Password is required")
	}

	if len(password) < 12 {
		return newError("password", "Password must be at least 12 characters long")
	}
	if len(password) > 128 {
		return newError("password", "Password must not exceed 128 characters")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasLower {
		return newError("password", "Password must contain at least one lowercase letter")
	}
	if !hasUpper {
		return newError("password", "Password must contain at least one uppercase letter")
	}
	if !hasDigit {
		return newError("password", "Password must contain at least one number")
	}
	if !hasSymbol {
		return newError("password", "Password must contain at least one special character")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPasswordPatterns {
		if strings.Contains(lower, pattern) {
			return newError("password", "Password contains common patterns and is not secure")
		}
	}

	// Reject any character repeated four or more times in a row
	run := 1
	runes := []rune(password)
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= 4 {
				return newError("password", "Password contains too many repeated characters")
			}
		} else {
			run = 1
		}
	}

	return nil
}
