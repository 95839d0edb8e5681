package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON untouched",
			input: `{"category": "Travel"}`,
			want:  `{"category": "Travel"}`,
		},
		{
			name:  "json fence stripped",
			input: "```json\n{\"category\": \"Travel\"}\n```",
			want:  `{"category": "Travel"}`,
		},
		{
			name:  "bare fence stripped",
			input: "```\n{\"category\": \"Travel\"}\n```",
			want:  `{"category": "Travel"}`,
		},
		{
			name:  "prose around object isolated",
			input: "Here is the result:\n{\"status\": \"Approved\"}\nLet me know if you need more.",
			want:  `{"status": "Approved"}`,
		},
		{
			name:  "nested braces kept intact",
			input: `prefix {"a": {"b": 1}} suffix`,
			want:  `{"a": {"b": 1}}`,
		},
		{
			name:  "no object returns trimmed text",
			input: "  no structured data here  ",
			want:  "no structured data here",
		},
		{
			name:  "whitespace trimmed",
			input: "\n\t{\"x\": 1}\n",
			want:  `{"x": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.input))
		})
	}
}
