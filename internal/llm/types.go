// Package llm - необязательный классификатор страниц AVATS на базе OpenAI.
// Используется, когда эвристики site.Detector не узнали страницу.
package llm

import (
	"context"
	"fmt"
	"strings"

	"visaAgent/internal/site"
)

// Logger сохраняет запросы к LLM. Реализуется database.ApplicationRepository.
type Logger interface {
	LogLLMRequest(ctx context.Context, applicationID *uint, role, promptText, responseText, model string, tokensUsed int) error
}

// PageClassifier - то, что нужно агенту от LLM.
type PageClassifier interface {
	ClassifyPage(ctx context.Context, url, text string, applicationID *uint) (*PageClassification, error)
}

// PageClassification - ответ модели.
type PageClassification struct {
	Kind       string  `json:"kind"`       // home, consent, retrieve, form, error, confirmation, unknown
	Page       int     `json:"page"`       // номер страницы анкеты для kind=form
	Confidence float64 `json:"confidence"` // 0..1
	Reasoning  string  `json:"reasoning"`
}

// State переводит ответ в состояние детектора. false - ответ непригоден.
func (c PageClassification) State() (site.State, bool) {
	kind := site.ParseKind(c.Kind)
	if kind == site.KindUnknown {
		return site.State{}, false
	}
	if kind == site.KindForm {
		if c.Page < 1 || c.Page > site.FormPages {
			return site.State{}, false
		}
		return site.State{Kind: kind, Page: c.Page}, true
	}
	return site.State{Kind: kind}, true
}

func (c PageClassification) String() string {
	state, ok := c.State()
	if !ok {
		return fmt.Sprintf("unknown (%.2f)", c.Confidence)
	}
	return fmt.Sprintf("%s (%.2f): %s", state, c.Confidence, strings.TrimSpace(c.Reasoning))
}
