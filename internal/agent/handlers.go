package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"visaAgent/internal/database"
	"visaAgent/internal/extractor"
	"visaAgent/internal/form"
	"visaAgent/internal/site"
)

// act выполняет действие для распознанного состояния.
func (a *Agent) act(ctx context.Context, r *run, state site.State, snapshot *extractor.PageSnapshot) (outcome, error) {
	r.final = state

	switch state.Kind {
	case site.KindHome:
		return a.onHome(ctx, r)
	case site.KindConsent:
		return a.onConsent(ctx, r)
	case site.KindRetrieve:
		return a.onRetrieve(ctx, r)
	case site.KindForm:
		return a.onForm(ctx, r, state)
	case site.KindError:
		return a.onError(ctx, r, snapshot)
	case site.KindOffsite:
		a.log.Warn("Браузер ушел с сайта AVATS", a.contextFields(r, r.stepNo, zap.String("url", snapshot.URL))...)
		return outcome{action: "home", result: "возврат с " + snapshot.URL}, a.goHome(ctx)
	case site.KindConfirmation:
		return a.onConfirmation(r)
	default:
		return a.onUnknown(ctx, r)
	}
}

// onHome: с известным номером заявку восстанавливаем, без номера начинаем новую.
// Если кнопки нет MaxUnknown шагов подряд, открываем главную заново.
func (a *Agent) onHome(ctx context.Context, r *run) (outcome, error) {
	out, chain := outcome{action: "apply", result: "новая заявка"}, form.HomeApply()
	if r.number != "" {
		out, chain = outcome{action: "retrieve", result: "восстановление заявки " + r.number}, form.HomeRetrieve()
	}

	err := a.click(ctx, chain)
	if err == nil || fatal(err) {
		r.homeFailures = 0
		return out, err
	}

	r.homeFailures++
	if r.homeFailures < a.cfg.MaxUnknown {
		return out, err
	}
	r.homeFailures = 0
	a.log.Warn("На главной не найдена кнопка, открываем главную заново",
		a.contextFields(r, r.stepNo, zap.String("action", out.action), zap.Error(err))...)
	return outcome{action: "home", result: "кнопка " + out.action + " не найдена"}, a.goHome(ctx)
}

func (a *Agent) onConsent(ctx context.Context, r *run) (outcome, error) {
	page := form.ConsentPage()
	err := a.submitPage(ctx, r, site.KindConsent.String(), isKind(site.KindConsent), func() error {
		if _, err := a.filler.FillPage(ctx, page, r.applicant, nil); err != nil {
			return err
		}
		return a.filler.Submit(ctx, page.Next)
	})
	return outcome{action: "consent", result: "согласие подтверждено"}, err
}

func (a *Agent) onRetrieve(ctx context.Context, r *run) (outcome, error) {
	if r.number == "" {
		return outcome{action: "home", result: "номер заявки неизвестен"}, a.goHome(ctx)
	}

	page := form.RetrievePage()
	extra := map[string]string{form.FieldApplicationNumber: r.number}
	err := a.submitPage(ctx, r, site.KindRetrieve.String(), isKind(site.KindRetrieve), func() error {
		if _, err := a.filler.FillPage(ctx, page, r.applicant, extra); err != nil {
			return err
		}
		return a.filler.Submit(ctx, page.Next)
	})
	return outcome{action: "retrieve", result: "введен номер заявки " + r.number}, err
}

func (a *Agent) onForm(ctx context.Context, r *run, state site.State) (outcome, error) {
	n := state.Page
	page, ok := form.PageByNumber(a.pages, n)
	if !ok {
		return outcome{action: "fill"}, fmt.Errorf("страницы %d нет в каталоге", n)
	}

	if n < r.furthest {
		a.log.Warn("Сайт вернул на предыдущую страницу", a.contextFields(r, r.stepNo,
			zap.Int("page", n), zap.Int("furthest", r.furthest))...)
	}

	var report form.FillReport

	if n == site.FormPages && !a.cfg.SubmitFinal {
		err := a.submitPage(ctx, r, state.String(), nil, func() error {
			var err error
			report, err = a.filler.FillPage(ctx, page, r.applicant, nil)
			if err != nil {
				return err
			}
			return a.filler.Validate(ctx)
		})
		if err != nil {
			return outcome{action: "fill", result: report.String()}, err
		}

		a.filled(r, n)
		r.done = true
		r.status = database.StatusReady
		return outcome{action: "fill", result: report.String() + ", финальная отправка отключена"}, nil
	}

	err := a.submitPage(ctx, r, state.String(), isForm(n), func() error {
		var err error
		report, err = a.filler.FillPage(ctx, page, r.applicant, nil)
		if err != nil {
			return err
		}
		return a.filler.Submit(ctx, page.Next)
	})
	if err != nil {
		return outcome{action: "fill+next", result: report.String()}, err
	}

	a.filled(r, n)
	return outcome{action: "fill+next", result: report.String()}, nil
}

func (a *Agent) filled(r *run, n int) {
	r.pagesFilled = append(r.pagesFilled, n)
	if n > r.furthest {
		r.furthest = n
	}
}

func (a *Agent) onError(ctx context.Context, r *run, snapshot *extractor.PageSnapshot) (outcome, error) {
	r.errorRefreshes++
	if r.errorRefreshes > a.cfg.MaxErrorRefreshes {
		r.errorRefreshes = 0
		a.log.Warn("Страница ошибки не уходит после обновлений, возвращаемся на главную",
			a.contextFields(r, r.stepNo, zap.String("url", snapshot.URL))...)
		return outcome{action: "home", result: "ошибка сайта не исчезла"}, a.goHome(ctx)
	}

	err := retryAction(ctx, a.cfg.Retries, a.cfg.RetryDelay, func() error {
		return a.browser.Reload(ctx)
	})
	if err == nil {
		err = wait(ctx, a.cfg.SettleDelay)
	}
	return outcome{
		action: "reload",
		result: fmt.Sprintf("обновление %d из %d", r.errorRefreshes, a.cfg.MaxErrorRefreshes),
	}, err
}

func (a *Agent) onConfirmation(r *run) (outcome, error) {
	r.done = true
	r.status = database.StatusCompleted

	if r.number == "" {
		a.log.Warn("На странице подтверждения не найден номер заявки", a.contextFields(r, r.stepNo)...)
		return outcome{action: "confirm", result: "заявка отправлена, номер не найден"}, nil
	}
	return outcome{action: "confirm", result: "заявка отправлена, номер " + r.number}, nil
}

func (a *Agent) onUnknown(ctx context.Context, r *run) (outcome, error) {
	r.unknownStreak++
	if r.unknownStreak >= a.cfg.MaxUnknown {
		r.unknownStreak = 0
		return outcome{action: "home", result: "страница не распознана"}, a.goHome(ctx)
	}
	return outcome{action: "wait", result: "страница не распознана, ждем"}, wait(ctx, a.cfg.SettleDelay)
}

// click нажимает первый подходящий элемент цепочки, повторяя при временных ошибках.
func (a *Agent) click(ctx context.Context, chain []string) error {
	return retryAction(ctx, a.cfg.Retries, a.cfg.RetryDelay, func() error {
		return a.filler.Submit(ctx, chain)
	})
}

// submitPage выполняет fn через breaker страницы key. Если после fn браузер остался
// на той же странице (stillHere), попытка считается неудачной.
func (a *Agent) submitPage(ctx context.Context, r *run, key string, stillHere func(site.State) bool, fn func() error) error {
	breaker := a.breakers.For(key)

	err := breaker.Call(func() error {
		if err := fn(); err != nil {
			return err
		}
		if stillHere == nil {
			return nil
		}
		return a.checkLeft(ctx, r, stillHere)
	})
	if err == nil || errors.Is(err, ErrCircuitOpen) {
		return err
	}

	failures := breaker.Failures()
	if breaker.State() == StateOpen {
		return fmt.Errorf("%w: %s, %d неудачных попыток подряд: %v", ErrCircuitOpen, key, failures, err)
	}
	a.log.Warn("Страница не отправлена",
		a.contextFields(r, r.stepNo,
			zap.String("page", key),
			zap.Int("attempt", failures),
			zap.Int("max_attempts", a.cfg.MaxPageAttempts),
			zap.Error(err),
		)...)
	return err
}

func (a *Agent) checkLeft(ctx context.Context, r *run, stillHere func(site.State) bool) error {
	snapshot, err := a.browser.GetPageSnapshot(ctx)
	if err != nil {
		return err
	}
	a.captureNumber(r, snapshot.HTML)

	if !stillHere(a.detector.Detect(snapshot.URL, snapshot.Text)) {
		return nil
	}
	if len(snapshot.ValidationErrors) > 0 {
		return fmt.Errorf("%w: %s", form.ErrValidationFailed, strings.Join(snapshot.ValidationErrors, "; "))
	}
	return fmt.Errorf("после отправки осталась та же страница")
}

func isKind(kind site.Kind) func(site.State) bool {
	return func(s site.State) bool { return s.Kind == kind }
}

func isForm(page int) func(site.State) bool {
	return func(s site.State) bool { return s.IsForm(page) }
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
