package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"visaAgent/internal/extractor"
)

var ErrNotLaunched = errors.New("браузер не запущен")

type Browser interface {
	Launch(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	CurrentURL() string
	GetPageSnapshot(ctx context.Context) (*extractor.PageSnapshot, error)
	IsVisible(ctx context.Context, selector string) (bool, error)
	WaitForSelector(ctx context.Context, selector string) error
	WaitForLoadState(ctx context.Context, state string) error
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	SelectOption(ctx context.Context, selector, value string) error
	SetChecked(ctx context.Context, selector string, checked bool) error
	TriggerPostback(ctx context.Context, selector string) error
	ClosePopups(ctx context.Context) error
	// ValidateForm запускает клиентские валидаторы и возвращает их сообщения.
	ValidateForm(ctx context.Context, formSelector string) (bool, []string, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

type PlaywrightBrowser struct {
	mu      sync.RWMutex
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     Config
}

type Config struct {
	Headless        bool
	UserDataDir     string
	BrowsersPath    string
	Display         string
	Engine          string // firefox | chromium
	Locale          string
	Timezone        string
	Timeout         time.Duration
	NavigateTimeout time.Duration
	ActionTimeout   time.Duration
}
