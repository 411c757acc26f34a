package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// centerScript возвращает true, если элемент пришлось прокрутить.
const centerScript = `el => {
	const r = el.getBoundingClientRect();
	const h = window.innerHeight || document.documentElement.clientHeight;
	if (r.top >= 0 && r.bottom <= h) {
		return false;
	}
	el.scrollIntoView({ behavior: 'auto', block: 'center' });
	return true;
}`

// reveal прокручивает страницу так, чтобы контрол оказался в окне.
func (b *PlaywrightBrowser) reveal(ctx context.Context, page playwright.Page, selector string) error {
	locator := page.Locator(selector).First()

	err := runWithTimeout(ctx, b.cfg.ActionTimeout, "scroll", func() error {
		return locator.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
			Timeout: playwright.Float(float64(b.cfg.ActionTimeout.Milliseconds())),
		})
	})
	if err == nil || ctx.Err() != nil {
		return err
	}

	// скрытые через display:none контролы playwright не прокручивает
	return runWithTimeout(ctx, b.cfg.ActionTimeout, "scroll fallback", func() error {
		if _, err := locator.Evaluate(centerScript, nil); err != nil {
			return fmt.Errorf("ошибка прокрутки к %s: %w", selector, err)
		}
		return nil
	})
}
