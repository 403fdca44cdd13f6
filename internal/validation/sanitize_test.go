package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		allowHTML bool
		want      string
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "Plain Text",
			input:     "hello world",
			maxLength: 100,
			want:      "hello world",
		},
		{
			name:      "Too Long",
			input:     "hello world",
			maxLength: 5,
			wantErr:   true,
			errMsg:    "maximum length of 5",
		},
		{
			name:      "Strips Control Characters",
			input:     "hel\x00lo\x07 wor\tld",
			maxLength: 100,
			want:      "hello wor\tld",
		},
		{
			name:      "SQL Keyword",
			input:     "1; DROP TABLE accounts",
			maxLength: 100,
			wantErr:   true,
			errMsg:    "SQL pattern",
		},
		{
			name:      "SQL Comment",
			input:     "value -- comment",
			maxLength: 100,
			wantErr:   true,
			errMsg:    "SQL pattern",
		},
		{
			name:      "Script Tag",
			input:     "<script>alert(1)</script>",
			maxLength: 100,
			wantErr:   true,
			errMsg:    "XSS pattern",
		},
		{
			name:      "Event Handler",
			input:     `<img onerror=alert(1)>`,
			maxLength: 100,
			wantErr:   true,
			errMsg:    "XSS pattern",
		},
		{
			name:      "Javascript Scheme",
			input:     "javascript:alert(1)",
			maxLength: 100,
			wantErr:   true,
			errMsg:    "XSS pattern",
		},
		{
			name:      "HTML Escaped By Default",
			input:     "<b>bold</b>",
			maxLength: 100,
			want:      "&lt;b&gt;bold&lt;/b&gt;",
		},
		{
			name:      "Allowed Inline Tags Kept",
			input:     "<b>bold</b> and <em>emphasis</em>",
			maxLength: 100,
			allowHTML: true,
			want:      "<b>bold</b> and <em>emphasis</em>",
		},
		{
			name:      "Disallowed Tags Stripped",
			input:     "<div><b>bold</b></div>",
			maxLength: 100,
			allowHTML: true,
			want:      "<b>bold</b>",
		},
		{
			name:      "Trims Whitespace",
			input:     "  padded  ",
			maxLength: 100,
			want:      "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeString(tt.input, tt.maxLength, tt.allowHTML)
			if tt.wantErr {
				require.NotNil(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.Nil(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
