// Package agent проходит анкету AVATS как конечный автомат: распознает страницу,
// выполняет действие для ее состояния и восстанавливается после редиректов и ошибок сайта.
package agent

import (
	"time"

	"visaAgent/internal/appnumber"
	"visaAgent/internal/browser"
	"visaAgent/internal/database"
	"visaAgent/internal/form"
	"visaAgent/internal/llm"
	"visaAgent/internal/logger"
	"visaAgent/internal/site"
)

// NumberStore хранит номер заявки между запусками. Реализуется appnumber.FileStore.
type NumberStore interface {
	Load() (string, error)
	Save(number string) error
}

// Recorder сохраняет ход заявки. Реализуется database.ApplicationRepository.
type Recorder interface {
	UpdateStatus(id uint, status, summary string) error
	SetApplicationNumber(id uint, number string) error
	SetLastPage(id uint, page string) error
	CreateStep(step *database.PageStep) error
}

// Deps - внешние зависимости агента. Classifier, Recorder и Numbers необязательны.
type Deps struct {
	Browser    browser.Browser
	Classifier llm.PageClassifier
	Recorder   Recorder
	Numbers    NumberStore
	Log        *logger.Zap
}

// Config содержит конфигурацию для агента.
type Config struct {
	HomeURL           string
	PostbackDelay     time.Duration // пауза после postback
	SettleDelay       time.Duration // пауза после перехода и на неизвестной странице
	MaxPageAttempts   int           // неудачных попыток страницы до размыкания breaker
	MaxErrorRefreshes int           // обновлений страницы ошибки подряд до возврата на главную
	MaxSteps          int
	MaxUnknown        int // неизвестных страниц подряд до возврата на главную
	SubmitFinal       bool
	ScreenshotDir     string
	Retries           int           // попыток для одного действия браузера
	RetryDelay        time.Duration // начальная задержка backoff
	ConfidenceMin     float64       // минимальная уверенность классификатора
}

// Agent проходит анкету одной заявки.
type Agent struct {
	browser    browser.Browser
	filler     *form.Filler
	detector   *site.Detector
	pages      []form.Page
	classifier llm.PageClassifier
	recorder   Recorder
	numbers    NumberStore
	log        *logger.Zap
	cfg        Config
	breakers   *CircuitBreakerPool
}

// Result - итог прохода.
type Result struct {
	ApplicationID     uint
	ApplicationNumber string
	Status            string
	FinalState        site.State
	Steps             int
	PagesFilled       []int
	Summary           string
}

type nopRecorder struct{}

func (nopRecorder) UpdateStatus(uint, string, string) error { return nil }
func (nopRecorder) SetApplicationNumber(uint, string) error { return nil }
func (nopRecorder) SetLastPage(uint, string) error          { return nil }
func (nopRecorder) CreateStep(*database.PageStep) error     { return nil }

type memoryNumbers struct{ number string }

func (m *memoryNumbers) Load() (string, error) {
	if m.number == "" {
		return "", appnumber.ErrNotFound
	}
	return m.number, nil
}

func (m *memoryNumbers) Save(number string) error {
	m.number = number
	return nil
}
