package browser

import (
	"context"
	"fmt"
)

// Скрипт читает у контрола AutoPostBack-обработчик и UniqueID (name) для __doPostBack.
const postbackInfoScript = `el => ({
	handler: (el.getAttribute('onchange') || el.getAttribute('onclick') || '').includes('__doPostBack'),
	doPostBack: typeof window.__doPostBack === 'function',
	target: el.name || (el.id || '').replace(/_/g, '$'),
})`

const forcePostbackScript = `target => window.__doPostBack(target, '')`

type postbackMode string

const (
	// change от SelectOption/Click уже запустил обработчик, повторное событие дало бы второй постбэк
	postbackHandler postbackMode = "handler"
	postbackForced  postbackMode = "forced"
	postbackNone    postbackMode = "none"
)

type postbackInfo struct {
	Handler    bool
	DoPostBack bool
	Target     string
}

func parsePostbackInfo(raw any) postbackInfo {
	m, _ := raw.(map[string]any)
	info := postbackInfo{}
	info.Handler, _ = m["handler"].(bool)
	info.DoPostBack, _ = m["doPostBack"].(bool)
	info.Target, _ = m["target"].(string)
	return info
}

func (i postbackInfo) mode() postbackMode {
	switch {
	case i.Handler:
		return postbackHandler
	case i.DoPostBack && i.Target != "":
		return postbackForced
	default:
		return postbackNone
	}
}

// TriggerPostback дожидается постбэка контрола. Если у контрола нет AutoPostBack-обработчика,
// __doPostBack вызывается напрямую.
func (b *PlaywrightBrowser) TriggerPostback(ctx context.Context, selector string) error {
	page, err := b.getPage()
	if err != nil {
		return err
	}

	selector, err = prepareSelector(selector)
	if err != nil {
		return err
	}

	var info postbackInfo
	err = runWithTimeout(ctx, b.cfg.ActionTimeout, "postback", func() error {
		raw, err := page.Locator(selector).First().Evaluate(postbackInfoScript, nil)
		info = parsePostbackInfo(raw)
		return err
	})
	if err != nil {
		return fmt.Errorf("ошибка постбэка для %s: %w", selector, err)
	}

	switch info.mode() {
	case postbackNone:
		return nil
	case postbackForced:
		err = runWithTimeout(ctx, b.cfg.ActionTimeout, "postback", func() error {
			_, err := page.Evaluate(forcePostbackScript, info.Target)
			return err
		})
		if err != nil {
			return fmt.Errorf("ошибка __doPostBack(%s): %w", info.Target, err)
		}
	}

	return b.WaitForLoadState(ctx, "load")
}
