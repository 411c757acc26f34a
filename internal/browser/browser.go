package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

func New(cfg Config) *PlaywrightBrowser {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 60 * time.Second // AVATS отвечает медленно
	}
	if cfg.ActionTimeout == 0 {
		cfg.ActionTimeout = 10 * time.Second
	}
	if cfg.Engine == "" {
		cfg.Engine = "firefox"
	}
	if cfg.Locale == "" {
		cfg.Locale = "en-IE"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Dublin"
	}
	return &PlaywrightBrowser{cfg: cfg}
}

func (b *PlaywrightBrowser) getPage() (playwright.Page, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.page == nil {
		return nil, ErrNotLaunched
	}
	return b.page, nil
}

func (b *PlaywrightBrowser) chromium() bool {
	return strings.EqualFold(b.cfg.Engine, "chromium")
}

// launchArgs возвращает флаги движка и переменные окружения процесса браузера.
func (b *PlaywrightBrowser) launchArgs() (args []string, env map[string]string) {
	if b.chromium() {
		args = []string{"--no-sandbox", "--disable-dev-shm-usage"}
	}
	if b.cfg.Display != "" {
		env = map[string]string{"DISPLAY": b.cfg.Display}
	}
	return args, env
}

// openContext запускает движок и возвращает контекст браузера. С UserDataDir контекст
// постоянный, и cookies AVATS переживают перезапуск.
func (b *PlaywrightBrowser) openContext(pw *playwright.Playwright) (playwright.Browser, playwright.BrowserContext, error) {
	engine := pw.Firefox
	if b.chromium() {
		engine = pw.Chromium
	}
	args, env := b.launchArgs()
	viewport := &playwright.Size{Width: 1280, Height: 900}

	if b.cfg.UserDataDir != "" {
		bctx, err := engine.LaunchPersistentContext(b.cfg.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:   playwright.Bool(b.cfg.Headless),
			Args:       args,
			Env:        env,
			Locale:     playwright.String(b.cfg.Locale),
			TimezoneId: playwright.String(b.cfg.Timezone),
			Viewport:   viewport,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка запуска persistent context: %w", err)
		}
		return nil, bctx, nil
	}

	br, err := engine.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     args,
		Env:      env,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка запуска %s: %w", b.cfg.Engine, err)
	}

	bctx, err := br.NewContext(playwright.BrowserNewContextOptions{
		Locale:     playwright.String(b.cfg.Locale),
		TimezoneId: playwright.String(b.cfg.Timezone),
		Viewport:   viewport,
	})
	if err != nil {
		_ = br.Close()
		return nil, nil, fmt.Errorf("ошибка создания контекста: %w", err)
	}
	return br, bctx, nil
}

func (b *PlaywrightBrowser) Launch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.cfg.BrowsersPath != "" {
		if err := os.Setenv("PLAYWRIGHT_BROWSERS_PATH", b.cfg.BrowsersPath); err != nil {
			return err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("ошибка запуска playwright: %w", err)
	}

	br, bctx, err := b.openContext(pw)
	if err != nil {
		_ = pw.Stop()
		return err
	}

	// persistent context открывается с пустой вкладкой
	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = bctx.NewPage(); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()
		return fmt.Errorf("ошибка открытия вкладки: %w", err)
	}
	page.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))

	b.mu.Lock()
	b.pw, b.browser, b.context, b.page = pw, br, bctx, page
	b.mu.Unlock()
	return nil
}

// runWithTimeout выполняет блокирующий вызов playwright с ограничением по ctx и таймауту.
func runWithTimeout(ctx context.Context, timeout time.Duration, op string, fn func() error) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- fn()
	}()

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s timeout after %v", op, timeout)
	case err := <-errChan:
		return err
	}
}

func (b *PlaywrightBrowser) Navigate(ctx context.Context, url string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	err = runWithTimeout(ctx, b.cfg.NavigateTimeout, "navigate", func() error {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
		})
		return err
	})
	if err != nil {
		return err
	}

	if err := b.ClosePopups(ctx); err != nil {
		return fmt.Errorf("ошибка закрытия попапов после навигации: %w", err)
	}

	return nil
}

func (b *PlaywrightBrowser) Reload(ctx context.Context) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	return runWithTimeout(ctx, b.cfg.NavigateTimeout, "reload", func() error {
		_, err := page.Reload(playwright.PageReloadOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
		})
		return err
	})
}

func (b *PlaywrightBrowser) CurrentURL() string {
	page, err := b.getPage()
	if err != nil {
		return ""
	}
	return page.URL()
}

func (b *PlaywrightBrowser) Click(ctx context.Context, selector string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	selector, err = prepareSelector(selector)
	if err != nil {
		return err
	}

	if err := b.WaitForSelector(ctx, selector); err != nil {
		return fmt.Errorf("элемент не найден: %w", err)
	}

	if err := b.reveal(ctx, page, selector); err != nil {
		return err
	}

	return runWithTimeout(ctx, b.cfg.ActionTimeout, "click", func() error {
		return page.Locator(selector).First().Click()
	})
}

func (b *PlaywrightBrowser) Type(ctx context.Context, selector, text string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	selector, err = prepareSelector(selector)
	if err != nil {
		return err
	}

	if err := b.WaitForSelector(ctx, selector); err != nil {
		return fmt.Errorf("элемент не найден: %w", err)
	}

	if err := b.reveal(ctx, page, selector); err != nil {
		return err
	}

	return runWithTimeout(ctx, b.cfg.ActionTimeout, "type", func() error {
		return page.Locator(selector).First().Fill(text)
	})
}

// content возвращает HTML страницы после загрузки.
func (b *PlaywrightBrowser) content(ctx context.Context) (string, error) {
	page, err := b.getPage()
	if err != nil {
		return "", err
	}

	if err := b.WaitForLoadState(ctx, "load"); err != nil {
		return "", fmt.Errorf("ошибка ожидания загрузки страницы: %w", err)
	}

	return page.Content()
}

// Close закрывает контекст, браузер и драйвер playwright и собирает все ошибки.
func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.context != nil {
		errs = append(errs, b.context.Close())
	}
	if b.browser != nil {
		errs = append(errs, b.browser.Close())
	}
	if b.pw != nil {
		errs = append(errs, b.pw.Stop())
	}
	b.pw, b.browser, b.context, b.page = nil, nil, nil, nil
	return errors.Join(errs...)
}
