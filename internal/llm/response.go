package llm

import "strings"

// CleanResponse strips markdown code fences that models wrap around JSON
// payloads and isolates the outermost JSON object when one is present.
func CleanResponse(content string) string {
	text := strings.TrimSpace(content)

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}

	return text[start : end+1]
}
