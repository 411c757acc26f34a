package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageSnapshot содержит все, что нужно для распознавания страницы AVATS:
// видимый текст, заголовки и сообщения валидаторов ASP.NET.
type PageSnapshot struct {
	URL              string
	Title            string
	Headings         []string
	Text             string
	ValidationErrors []string
	HTML             string
}

// Селекторы, под которыми ASP.NET Web Forms выводит ошибки валидации.
var validationSelectors = []string{
	".validation-summary-errors li",
	".validation-summary-errors span",
	"div[id$='ValidationSummary1'] li",
	"span[id*='Validator']",
	"span[id*='_rfv']",
	"span[id*='_rev']",
	"span[id*='_cv']",
	"span[style*='color:Red']",
	"span.error",
	"span.field-validation-error",
	"[id$='lblError']",
}

// FromHTML строит snapshot из HTML страницы.
func FromHTML(url, html string) (*PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора HTML: %w", err)
	}

	snapshot := &PageSnapshot{
		URL:   url,
		Title: collapse(doc.Find("title").First().Text()),
		HTML:  html,
	}

	doc.Find("h1, h2, h3, legend").Each(func(_ int, s *goquery.Selection) {
		if text := collapse(s.Text()); text != "" {
			snapshot.Headings = append(snapshot.Headings, text)
		}
	})

	snapshot.ValidationErrors = validationErrors(doc)

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body = body.Clone()
	body.Find("script, style, noscript, input[type='hidden']").Remove()
	// Скрытые валидаторы присутствуют в DOM всегда и не должны влиять на распознавание
	body.Find("[style*='display:none'], [style*='display: none'], [style*='visibility:hidden'], [style*='visibility: hidden']").Remove()
	snapshot.Text = collapse(body.Text())

	return snapshot, nil
}

func validationErrors(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var errs []string

	for _, selector := range validationSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if hidden(s) {
				return
			}
			text := collapse(s.Text())
			if text == "" || seen[text] {
				return
			}
			seen[text] = true
			errs = append(errs, text)
		})
	}

	return errs
}

// hidden повторяет логику клиентских валидаторов ASP.NET:
// неактивный валидатор рендерится со style="display:none" или visibility:hidden.
func hidden(s *goquery.Selection) bool {
	for node := s; node.Length() > 0; node = node.Parent() {
		style, _ := node.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

// collapse схлопывает пробелы, включая &nbsp; (strings.Fields считает U+00A0 пробелом).
func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
