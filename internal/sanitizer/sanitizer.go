// Package sanitizer маскирует персональные данные заявителя перед записью в лог,
// в БД и в запросы к LLM.
package sanitizer

import (
	"strings"
)

type DataSanitizer struct {
	rules []SanitizerRule
}

type SanitizerRule interface {
	Sanitize(text string) string
}

func New() *DataSanitizer {
	return &DataSanitizer{rules: applicantRules}
}

func (s *DataSanitizer) Sanitize(text string) string {
	for _, r := range s.rules {
		if text == "" {
			break
		}
		text = r.Sanitize(text)
	}
	return text
}

// Поля анкеты, значения которых не выводятся даже частично.
var sensitiveFields = []string{
	"passport", "birth", "dob", "email", "phone", "address",
	"national_id", "income", "conviction", "refusal",
}

// SanitizeValue маскирует значение поля анкеты по имени поля; значения прочих полей
// проходят через общие правила.
func (s *DataSanitizer) SanitizeValue(field, value string) string {
	if value == "" {
		return value
	}

	lower := strings.ToLower(field)
	for _, keyword := range sensitiveFields {
		if strings.Contains(lower, keyword) {
			return mask(value)
		}
	}

	return s.Sanitize(value)
}

// mask оставляет первый символ, чтобы в логе было видно, что поле заполнено.
func mask(value string) string {
	runes := []rune(value)
	if len(runes) <= 2 {
		return "[FILTERED]"
	}
	return string(runes[0]) + "***[FILTERED]"
}
