package site

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Элементы, в которые AVATS выводит номер заявки на страницах подтверждения.
var numberSelectors = []string{
	"[id*='ApplicationNumber']",
	"[id*='ApplicationNo']",
	"[id*='AppNo']",
	"[id*='TransactionNumber']",
	"[id*='TransactionNo']",
}

var (
	digitsPattern = regexp.MustCompile(`\b(\d{6,10})\b`)
	labelPattern  = regexp.MustCompile(`(?i)(?:application|transaction|reference)\s*(?:number|no\.?|id)\s*(?:is)?\s*[:#-]?\s*(\d{6,10})\b`)
)

// ExtractApplicationNumber ищет номер заявки сначала в помеченных элементах,
// затем по тексту вида "Your application number is 61234567".
func ExtractApplicationNumber(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	for _, selector := range numberSelectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if text == "" {
				text, _ = s.Attr("value")
			}
			if m := digitsPattern.FindStringSubmatch(text); m != nil {
				found = m[1]
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}

	body := doc.Find("body").Clone()
	body.Find("script, style").Remove()
	text := strings.Join(strings.Fields(body.Text()), " ")
	if m := labelPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	return "", false
}
