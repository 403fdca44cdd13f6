package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Patterns that indicate injection attempts. Matched case-insensitively
// against the raw input before any escaping.
var sqlInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|EXEC|UNION|SCRIPT)\b`),
	regexp.MustCompile(`--|#|/\*|\*/`),
	regexp.MustCompile(`(?i)\bOR\b.*=.*\bOR\b`),
	regexp.MustCompile(`(?i)\bAND\b.*=.*\bAND\b`),
	regexp.MustCompile(`';|'|"`),
}

var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?is)<iframe[^>]*>.*?</iframe>`),
	regexp.MustCompile(`(?is)<object[^>]*>.*?</object>`),
	regexp.MustCompile(`(?is)<embed[^>]*>.*?</embed>`),
}

// allowedHTMLTags is the inline-tag allowlist kept when HTML is permitted
var allowedHTMLTags = []string{"b", "i", "u", "em", "strong", "p", "br"}

var htmlTagPattern = regexp.MustCompile(`(?s)</?([a-zA-Z][a-zA-Z0-9]*)[^>]*>`)

// SanitizeString sanitizes untrusted text input. Control characters are
// stripped (tab, newline and carriage return survive), injection patterns
// are rejected outright, and the result is either HTML-escaped or, when
// HTML is explicitly allowed, stripped down to a small allowlist of inline
// tags.
func SanitizeString(value string, maxLength int, allowHTML bool) (string, *Error) {
	if len(value) > maxLength {
		return "", newError("input", fmt.Sprintf("Input exceeds maximum length of %d", maxLength))
	}

	var b strings.Builder
	for _, r := range value {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		}
	}
	value = b.String()

	for _, pattern := range sqlInjectionPatterns {
		if pattern.MatchString(value) {
			return "", newError("input", "Potentially dangerous SQL pattern detected")
		}
	}

	for _, pattern := range xssPatterns {
		if pattern.MatchString(value) {
			return "", newError("input", "Potentially dangerous XSS pattern detected")
		}
	}

	if allowHTML {
		value = stripDisallowedTags(value)
	} else {
		value = html.EscapeString(value)
	}

	return strings.TrimSpace(value), nil
}

// stripDisallowedTags removes every HTML tag not on the allowlist,
// keeping the tag's inner text.
func stripDisallowedTags(value string) string {
	return htmlTagPattern.ReplaceAllStringFunc(value, func(tag string) string {
		name := strings.ToLower(htmlTagPattern.FindStringSubmatch(tag)[1])
		for _, allowed := range allowedHTMLTags {
			if name == allowed {
				return tag
			}
		}
		return ""
	})
}
