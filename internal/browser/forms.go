package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// SelectOption выбирает пункт списка сначала по value, затем по видимому тексту.
func (b *PlaywrightBrowser) SelectOption(ctx context.Context, selector, value string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	selector, err = prepareSelector(selector)
	if err != nil {
		return err
	}

	locator := page.Locator(selector).First()

	var selected []string
	err = runWithTimeout(ctx, b.cfg.ActionTimeout, "select by value", func() error {
		var err error
		selected, err = locator.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}},
			playwright.LocatorSelectOptionOptions{Timeout: playwright.Float(float64(b.cfg.ActionTimeout.Milliseconds()))})
		return err
	})
	if err == nil && len(selected) > 0 {
		return nil
	}

	err = runWithTimeout(ctx, b.cfg.ActionTimeout, "select by label", func() error {
		var err error
		selected, err = locator.SelectOption(playwright.SelectOptionValues{Labels: &[]string{value}},
			playwright.LocatorSelectOptionOptions{Timeout: playwright.Float(float64(b.cfg.ActionTimeout.Milliseconds()))})
		return err
	})
	if err != nil {
		return fmt.Errorf("пункт %q не найден в %s: %w", value, selector, err)
	}
	if len(selected) == 0 {
		return fmt.Errorf("пункт %q не найден в %s", value, selector)
	}
	return nil
}

func (b *PlaywrightBrowser) SetChecked(ctx context.Context, selector string, checked bool) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	selector, err = prepareSelector(selector)
	if err != nil {
		return err
	}

	return runWithTimeout(ctx, b.cfg.ActionTimeout, "set checked", func() error {
		return page.Locator(selector).First().SetChecked(checked)
	})
}

// ValidateForm запускает клиентскую валидацию ASP.NET (Page_ClientValidate) и собирает
// тексты видимых валидаторов.
func (b *PlaywrightBrowser) ValidateForm(ctx context.Context, formSelector string) (bool, []string, error) {
	page, err := b.getPage()
	if err != nil {
		return false, nil, err
	}

	if formSelector == "" {
		formSelector = "form"
	}

	form, err := page.QuerySelector(formSelector)
	if err != nil || form == nil {
		return false, []string{"Форма не найдена"}, nil
	}

	result, err := page.Evaluate(`() => {
		let valid = true;
		if (typeof window.Page_ClientValidate === 'function') {
			valid = window.Page_ClientValidate('') !== false;
		}
		const messages = [];
		const validators = window.Page_Validators || [];
		for (const v of validators) {
			if (v.isvalid === false && v.textContent.trim() !== '') {
				messages.push(v.textContent.trim());
			}
		}
		return { valid, messages };
	}`)
	if err != nil {
		return false, nil, fmt.Errorf("ошибка клиентской валидации: %w", err)
	}

	out, _ := result.(map[string]any)
	valid, _ := out["valid"].(bool)

	var errs []string
	if raw, ok := out["messages"].([]any); ok {
		for _, m := range raw {
			if s, ok := m.(string); ok {
				errs = append(errs, s)
			}
		}
	}

	return valid && len(errs) == 0, errs, nil
}
