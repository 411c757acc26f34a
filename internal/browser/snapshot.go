package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"visaAgent/internal/extractor"
)

func (b *PlaywrightBrowser) GetPageSnapshot(ctx context.Context) (*extractor.PageSnapshot, error) {
	page, err := b.getPage()
	if err != nil {
		return nil, err
	}

	html, err := b.content(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := extractor.FromHTML(page.URL(), html)
	if err != nil {
		return nil, fmt.Errorf("ошибка извлечения snapshot: %w", err)
	}
	return snapshot, nil
}

// Screenshot сохраняет снимок всей страницы в path, создавая каталог при необходимости.
func (b *PlaywrightBrowser) Screenshot(ctx context.Context, path string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ошибка создания каталога скриншотов: %w", err)
	}

	return runWithTimeout(ctx, b.cfg.ActionTimeout, "screenshot", func() error {
		_, err := page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(path),
			FullPage: playwright.Bool(true),
		})
		return err
	})
}
