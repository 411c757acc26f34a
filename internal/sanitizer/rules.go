package sanitizer

import "regexp"

// patternRule заменяет совпадения шаблона. В replacement доступны группы ${1}, ${2}.
type patternRule struct {
	pattern     *regexp.Regexp
	replacement string
}

func (r patternRule) Sanitize(text string) string {
	return r.pattern.ReplaceAllString(text, r.replacement)
}

func rule(pattern, replacement string) patternRule {
	return patternRule{pattern: regexp.MustCompile(pattern), replacement: replacement}
}

// Порядок важен: e-mail до телефонов, паспорт и дата рождения до адреса.
// Номер заявки AVATS (6-10 цифр подряд) не задевается: телефоном считается
// номер с + или с подписью.
var applicantRules = []SanitizerRule{
	rule(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`, `[FILTERED_EMAIL]`),
	rule(`(?i)\b(passport(?:\s+(?:number|no\.?))?\s*[:=#]?\s*)([A-Z]{0,2}\d{6,9}[A-Z]?)\b`, `${1}[FILTERED_PASSPORT]`),
	rule(`(?i)\b((?:date\s+of\s+birth|dob|born)\s*[:=]?\s*)(\d{1,2}[/.-]\d{1,2}[/.-]\d{4}|\d{4}-\d{2}-\d{2})`, `${1}[FILTERED_DOB]`),
	rule(`\+\d{1,3}[-.\s]?\(?\d{1,4}\)?(?:[-.\s]?\d{2,5}){2,4}`, `[FILTERED_PHONE]`),
	rule(`(?i)\b(phone|mobile|tel\.?|телефон)(\s*(?:number|no\.?)?\s*[:=]?\s*)[+\d\s\-\(\)]{7,}\d`, `${1}${2}[FILTERED_PHONE]`),
	rule(`(?i)\b((?:home\s+)?address(?:\s+line\s*\d)?\s*[:=]\s*)([^\n;]{5,})`, `${1}[FILTERED_ADDRESS]`),
	// Eircode
	rule(`\b[ACDEFHKNPRTVWXY]\d{2}\s?[0-9ACDEFHKNPRTVWXY]{4}\b`, `[FILTERED_ADDRESS]`),
}
