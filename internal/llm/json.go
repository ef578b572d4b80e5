package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodes model output as JSON, tolerating code fences, doubled braces and prose
// around the object
func DecodeJSON(raw string, v any) error {
	content := strings.ReplaceAll(raw, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "{{") {
		content = strings.ReplaceAll(content, "{{", "{")
		content = strings.ReplaceAll(content, "}}", "}")
	}

	err := json.Unmarshal([]byte(content), v)
	if err == nil {
		return nil
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")

	if start == -1 || end <= start {
		return fmt.Errorf("model output is not JSON: %w", err)
	}

	if err := json.Unmarshal([]byte(content[start:end+1]), v); err != nil {
		return fmt.Errorf("model output is not JSON after repair: %w", err)
	}

	return nil
}
