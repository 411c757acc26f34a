package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseClassification разбирает JSON ответа, в том числе обернутый в ```json ... ```.
func parseClassification(content string) (*PageClassification, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("в ответе нет JSON: %q", content)
	}

	var result PageClassification
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	result.Kind = strings.ToLower(strings.TrimSpace(result.Kind))
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return &result, nil
}
