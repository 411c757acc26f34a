package browser

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	colonSpacePattern       = regexp.MustCompile(`^([^:]+):\s+(.+)$`)
	containsPatternDouble   = regexp.MustCompile(`:contains\("([^"]*)"\)`)
	containsPatternSingle   = regexp.MustCompile(`:contains\('([^']*)'\)`)
	containsPatternNoQuotes = regexp.MustCompile(`:contains\(([^)'"]+)\)`)

	validPseudoClasses = []string{":hover", ":focus", ":active", ":visited", ":link", ":checked",
		":disabled", ":enabled", ":first-child", ":last-child", ":nth-child", ":nth-of-type",
		":has-text", ":has", ":not", ":contains", ":visible"}
)

// NormalizeSelector приводит селектор к синтаксису Playwright.
// jQuery :contains() превращается в :has-text(), "button: Текст" в "button:has-text('Текст')".
// Селекторы xpath= и // не трогаются.
func NormalizeSelector(selector string) (string, bool) {
	if selector == "" || isXPath(selector) {
		return selector, false
	}

	normalized := selector
	changed := false

	if submatch := colonSpacePattern.FindStringSubmatch(normalized); len(submatch) >= 3 {
		tagPart := strings.TrimSpace(submatch[1])
		textPart := strings.TrimSpace(submatch[2])

		isValidPseudo := false
		for _, pseudo := range validPseudoClasses {
			if strings.HasSuffix(tagPart, pseudo) || strings.Contains(normalized, pseudo+"(") {
				isValidPseudo = true
				break
			}
		}

		if !isValidPseudo && tagPart != "" && textPart != "" {
			changed = true
			textPart = strings.ReplaceAll(textPart, `"`, `\"`)
			normalized = tagPart + `:has-text("` + textPart + `")`
		}
	}

	normalized = containsPatternDouble.ReplaceAllStringFunc(normalized, func(match string) string {
		changed = true
		text := containsPatternDouble.FindStringSubmatch(match)[1]
		text = strings.ReplaceAll(text, "\\", "\\\\")
		return `:has-text("` + text + `")`
	})

	normalized = containsPatternSingle.ReplaceAllStringFunc(normalized, func(match string) string {
		changed = true
		text := containsPatternSingle.FindStringSubmatch(match)[1]
		text = strings.ReplaceAll(text, "\\", "\\\\")
		return `:has-text('` + text + `')`
	})

	normalized = containsPatternNoQuotes.ReplaceAllStringFunc(normalized, func(match string) string {
		changed = true
		text := strings.TrimSpace(containsPatternNoQuotes.FindStringSubmatch(match)[1])
		return `:has-text("` + text + `")`
	})

	return normalized, changed
}

// ValidateSelector отсекает пустые селекторы и URL, переданные вместо селектора.
func ValidateSelector(selector string) error {
	selectorTrimmed := strings.TrimSpace(selector)
	if selectorTrimmed == "" {
		return fmt.Errorf("селектор не может быть пустым")
	}

	if strings.HasPrefix(selectorTrimmed, "http://") || strings.HasPrefix(selectorTrimmed, "https://") {
		return fmt.Errorf("селектор не может быть URL, для перехода используй Navigate: %s", selector)
	}

	if strings.Contains(selectorTrimmed, "://") {
		return fmt.Errorf("селектор не может содержать протокол (://): %s", selector)
	}

	return nil
}

// XPathLiteral экранирует строку для XPath 1.0, где нет escape-последовательностей.
func XPathLiteral(text string) string {
	if !strings.Contains(text, "'") {
		return "'" + text + "'"
	}
	if !strings.Contains(text, `"`) {
		return `"` + text + `"`
	}
	parts := strings.Split(text, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

func isXPath(selector string) bool {
	s := strings.TrimSpace(selector)
	return strings.HasPrefix(s, "xpath=") || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "(//")
}
