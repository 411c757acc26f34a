package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// prepareSelector валидирует и нормализует селектор перед передачей в playwright.
func prepareSelector(selector string) (string, error) {
	if err := ValidateSelector(selector); err != nil {
		return "", fmt.Errorf("невалидный селектор: %w", err)
	}
	normalized, _ := NormalizeSelector(selector)
	return normalized, nil
}

func (b *PlaywrightBrowser) WaitForSelector(ctx context.Context, selector string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	selector, err = prepareSelector(selector)
	if err != nil {
		return err
	}

	return runWithTimeout(ctx, b.cfg.Timeout, "wait for selector", func() error {
		return page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(float64(b.cfg.Timeout.Milliseconds())),
		})
	})
}

// IsVisible не ждет появления элемента: селектор, которого нет на странице, дает false.
func (b *PlaywrightBrowser) IsVisible(ctx context.Context, selector string) (bool, error) {
	page, err := b.getPage()
	if err != nil {
		return false, err
	}

	selector, err = prepareSelector(selector)
	if err != nil {
		return false, err
	}

	var visible bool
	err = runWithTimeout(ctx, b.cfg.ActionTimeout, "is visible", func() error {
		var err error
		visible, err = page.Locator(selector).First().IsVisible()
		return err
	})
	return visible, err
}

var loadStates = map[string]*playwright.LoadState{
	"load":             playwright.LoadStateLoad,
	"domcontentloaded": playwright.LoadStateDomcontentloaded,
	"networkidle":      playwright.LoadStateNetworkidle,
}

// WaitForLoadState ждет состояния загрузки. Неизвестное имя трактуется как load.
func (b *PlaywrightBrowser) WaitForLoadState(ctx context.Context, state string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	loadState, ok := loadStates[strings.ToLower(state)]
	if !ok {
		loadState = playwright.LoadStateLoad
	}

	return runWithTimeout(ctx, b.cfg.Timeout, "wait for "+string(*loadState), func() error {
		return page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   loadState,
			Timeout: playwright.Float(float64(b.cfg.Timeout.Milliseconds())),
		})
	})
}

// Баннеры cookie и уведомления, которые перекрывают форму AVATS.
var popupSelectors = []string{
	"#onetrust-accept-btn-handler",
	"#cookieConsentAccept",
	"[id$='btnAcceptCookies']",
	".cookie-banner button:has-text('Accept')",
	"[role='dialog'] button[aria-label*='close' i]",
	".modal button.close",
	"[data-dismiss='modal']",
	"[aria-label='Close']",
}

// ClosePopups закрывает видимые баннеры. Ошибки отдельных селекторов игнорируются.
func (b *PlaywrightBrowser) ClosePopups(ctx context.Context) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	closed := 0
	for _, selector := range popupSelectors {
		if err := ctx.Err(); err != nil {
			return err
		}

		locator := page.Locator(selector).First()
		if visible, err := locator.IsVisible(); err != nil || !visible {
			continue
		}
		err := locator.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(float64(b.cfg.ActionTimeout.Milliseconds())),
		})
		if err == nil {
			closed++
		}
	}

	if closed > 0 {
		return b.WaitForLoadState(ctx, "domcontentloaded")
	}
	return nil
}
