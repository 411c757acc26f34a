package agent

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"visaAgent/internal/appnumber"
	"visaAgent/internal/database"
	"visaAgent/internal/extractor"
	"visaAgent/internal/form"
	"visaAgent/internal/logger"
	"visaAgent/internal/profile"
	"visaAgent/internal/site"
)

// New создает агента. Нулевые лимиты заменяются значениями по умолчанию,
// нулевые задержки остаются нулевыми.
func New(deps Deps, cfg Config) *Agent {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = 80
	}
	if cfg.MaxPageAttempts <= 0 {
		cfg.MaxPageAttempts = 3
	}
	if cfg.MaxErrorRefreshes <= 0 {
		cfg.MaxErrorRefreshes = 3
	}
	if cfg.MaxUnknown <= 0 {
		cfg.MaxUnknown = 2
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.ConfidenceMin <= 0 {
		cfg.ConfidenceMin = 0.6
	}

	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	var recorder Recorder = nopRecorder{}
	if deps.Recorder != nil {
		recorder = deps.Recorder
	}
	var numbers NumberStore = &memoryNumbers{}
	if deps.Numbers != nil {
		numbers = deps.Numbers
	}

	pages := form.Catalog()

	return &Agent{
		browser: deps.Browser,
		filler: form.NewFiller(deps.Browser, log.Named("form"), form.Options{
			PostbackDelay: cfg.PostbackDelay,
			SettleDelay:   cfg.SettleDelay,
		}),
		detector:   site.NewDetector(cfg.HomeURL, form.Signatures(pages)),
		pages:      pages,
		classifier: deps.Classifier,
		recorder:   recorder,
		numbers:    numbers,
		log:        log.Named("agent"),
		cfg:        cfg,
		breakers:   NewCircuitBreakerPool(cfg.MaxPageAttempts, time.Hour),
	}
}

// run - состояние одного прохода.
type run struct {
	app       *database.Application
	applicant *profile.Applicant
	number    string

	errorRefreshes int
	unknownStreak  int
	homeFailures   int
	furthest       int
	pagesFilled    []int
	stepNo         int
	done           bool
	status         string
	final          site.State
}

// outcome - итог одного шага.
type outcome struct {
	action string
	result string
}

// Run проходит анкету: цикл "распознать страницу -> выполнить действие" до страницы
// подтверждения или до заполненной десятой страницы, если SubmitFinal выключен.
// Номер заявки берется только из app, новая заявка начинается с кнопки Apply.
func (a *Agent) Run(ctx context.Context, app *database.Application, applicant *profile.Applicant) (*Result, error) {
	return a.start(ctx, app, applicant, false)
}

// Resume работает как Run, но без номера в app читает сохраненный номер из NumberStore
// и восстанавливает заявку через страницу Retrieve.
func (a *Agent) Resume(ctx context.Context, app *database.Application, applicant *profile.Applicant) (*Result, error) {
	return a.start(ctx, app, applicant, true)
}

func (a *Agent) start(ctx context.Context, app *database.Application, applicant *profile.Applicant, resume bool) (*Result, error) {
	if app == nil {
		app = &database.Application{}
	}
	if applicant == nil {
		return nil, fmt.Errorf("анкета заявителя не задана")
	}

	r := &run{app: app, applicant: applicant, number: app.ApplicationNumber}
	if r.number == "" && resume {
		number, err := a.numbers.Load()
		switch {
		case err == nil:
			r.number = number
		case !errors.Is(err, appnumber.ErrNotFound):
			a.log.Warn("Не удалось прочитать сохраненный номер заявки", zap.Error(err))
		}
	}

	a.log.Info("Начинаем заполнение анкеты", a.contextFields(r, 0,
		zap.String("home", a.cfg.HomeURL),
		zap.Bool("has_number", r.number != ""),
		zap.Bool("submit_final", a.cfg.SubmitFinal))...)

	a.record(func() error { return a.recorder.UpdateStatus(app.ID, database.StatusRunning, "") })
	a.breakers.ResetAll()

	err := a.execute(ctx, r)
	return a.finish(r, err)
}

func (a *Agent) execute(ctx context.Context, r *run) error {
	if err := a.browser.Launch(ctx); err != nil {
		return fmt.Errorf("ошибка запуска браузера: %w", err)
	}
	defer func() {
		if err := a.browser.Close(); err != nil {
			a.log.Warn("Ошибка закрытия браузера", zap.Error(err))
		}
	}()

	if err := a.goHome(ctx); err != nil {
		return err
	}

	for !r.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.stepNo >= a.cfg.MaxSteps {
			return fmt.Errorf("%w: %d", ErrStepLimit, a.cfg.MaxSteps)
		}
		r.stepNo++

		snapshot, state, err := a.observe(ctx, r)
		if err != nil {
			return err
		}

		out, err := a.act(ctx, r, state, snapshot)
		a.recordStep(r, state, snapshot.URL, out, err)

		if err != nil {
			a.screenshot(ctx, r, state)
			if fatal(err) {
				return err
			}
			a.log.Warn("Шаг не удался, повторим", a.contextFields(r, r.stepNo,
				zap.String("page", state.String()), zap.Error(err))...)
		}
	}

	return nil
}

// observe снимает страницу, распознает состояние и запоминает номер заявки, если он появился.
func (a *Agent) observe(ctx context.Context, r *run) (*extractor.PageSnapshot, site.State, error) {
	var snapshot *extractor.PageSnapshot
	err := retryAction(ctx, a.cfg.Retries, a.cfg.RetryDelay, func() error {
		var err error
		snapshot, err = a.browser.GetPageSnapshot(ctx)
		return err
	})
	if err != nil {
		return nil, site.State{}, fmt.Errorf("ошибка снимка страницы: %w", err)
	}

	state := a.detector.Detect(snapshot.URL, snapshot.Text)
	if state.Kind == site.KindUnknown {
		state = a.classify(ctx, r, snapshot)
	}
	if state.Kind != site.KindError {
		r.errorRefreshes = 0
	}
	if state.Kind != site.KindUnknown {
		r.unknownStreak = 0
	}
	if state.Kind != site.KindHome {
		r.homeFailures = 0
	}

	a.captureNumber(r, snapshot.HTML)

	a.log.Debug("Страница распознана", a.contextFields(r, r.stepNo,
		zap.String("page", state.String()),
		zap.String("url", snapshot.URL),
		zap.String("title", snapshot.Title))...)

	return snapshot, state, nil
}

// classify спрашивает LLM, если классификатор настроен. Ответ с низкой уверенностью игнорируется.
func (a *Agent) classify(ctx context.Context, r *run, snapshot *extractor.PageSnapshot) site.State {
	unknown := site.State{Kind: site.KindUnknown}
	if a.classifier == nil {
		return unknown
	}

	var appID *uint
	if r.app.ID != 0 {
		appID = &r.app.ID
	}

	c, err := a.classifier.ClassifyPage(ctx, snapshot.URL, snapshot.Text, appID)
	if err != nil {
		a.log.Warn("Классификатор страницы недоступен", a.contextFields(r, r.stepNo, zap.Error(err))...)
		return unknown
	}

	state, ok := c.State()
	if !ok || c.Confidence < a.cfg.ConfidenceMin {
		a.log.Info("Классификатор не уверен", a.contextFields(r, r.stepNo, zap.String("answer", c.String()))...)
		return unknown
	}

	a.log.Info("Страница распознана классификатором", a.contextFields(r, r.stepNo, zap.String("answer", c.String()))...)
	return state
}

// captureNumber сохраняет новый номер заявки в файл и в базу.
func (a *Agent) captureNumber(r *run, html string) {
	number, ok := site.ExtractApplicationNumber(html)
	if !ok || number == r.number {
		return
	}

	r.number = number
	r.app.ApplicationNumber = number
	a.log.Info("Получен номер заявки", a.contextFields(r, r.stepNo, zap.String("application_number", number))...)

	if err := a.numbers.Save(number); err != nil {
		a.log.Error("Не удалось сохранить номер заявки", a.contextFields(r, r.stepNo, zap.Error(err))...)
	}
	a.record(func() error { return a.recorder.SetApplicationNumber(r.app.ID, number) })
}

func (a *Agent) goHome(ctx context.Context) error {
	return retryAction(ctx, a.cfg.Retries, a.cfg.RetryDelay, func() error {
		return a.browser.Navigate(ctx, a.cfg.HomeURL)
	})
}

func (a *Agent) recordStep(r *run, state site.State, pageURL string, out outcome, err error) {
	result := out.result
	if err != nil {
		result = "ошибка: " + err.Error()
	}

	a.log.Info("Шаг выполнен", a.contextFields(r, r.stepNo,
		zap.String("page", state.String()),
		zap.String("action", out.action),
		zap.String("result", result))...)

	step := &database.PageStep{
		ApplicationID: r.app.ID,
		StepNo:        r.stepNo,
		Page:          state.String(),
		Action:        out.action,
		URL:           pageURL,
		Result:        result,
	}
	a.record(func() error { return a.recorder.CreateStep(step) })
	a.record(func() error { return a.recorder.SetLastPage(r.app.ID, state.String()) })
}

// record пишет в базу. Ошибки только логируются.
func (a *Agent) record(fn func() error) {
	if err := fn(); err != nil {
		a.log.Warn("Ошибка записи в базу", zap.Error(err))
	}
}

func (a *Agent) screenshot(ctx context.Context, r *run, state site.State) {
	if a.cfg.ScreenshotDir == "" || ctx.Err() != nil {
		return
	}
	name := fmt.Sprintf("app%d-step%03d-%s.png", r.app.ID, r.stepNo, strings.ReplaceAll(state.String(), ":", "-"))
	path := filepath.Join(a.cfg.ScreenshotDir, name)
	if err := a.browser.Screenshot(ctx, path); err != nil {
		a.log.Warn("Не удалось сохранить скриншот", zap.String("path", path), zap.Error(err))
		return
	}
	a.log.Info("Скриншот сохранен", zap.String("path", path))
}

func (a *Agent) finish(r *run, err error) (*Result, error) {
	res := &Result{
		ApplicationID:     r.app.ID,
		ApplicationNumber: r.number,
		Status:            r.status,
		FinalState:        r.final,
		Steps:             r.stepNo,
		PagesFilled:       r.pagesFilled,
	}

	if err != nil {
		res.Status = database.StatusFailed
		res.Summary = fmt.Sprintf("остановлено на шаге %d: %v", r.stepNo, err)
		a.log.Error("Заполнение анкеты прервано", a.contextFields(r, r.stepNo, zap.Error(err))...)
	} else {
		res.Summary = fmt.Sprintf("%s за %d шагов, страниц заполнено: %d", res.Status, r.stepNo, len(r.pagesFilled))
		if r.number != "" {
			res.Summary += ", номер заявки " + r.number
		}
		a.log.Info("Заполнение анкеты завершено", a.contextFields(r, r.stepNo,
			zap.String("status", res.Status),
			zap.String("application_number", r.number))...)
	}

	a.record(func() error { return a.recorder.UpdateStatus(r.app.ID, res.Status, res.Summary) })
	return res, err
}

// contextFields создаёт набор контекстных полей для логирования
func (a *Agent) contextFields(r *run, stepNo int, fields ...zap.Field) []zap.Field {
	result := make([]zap.Field, 0, len(fields)+2)
	if r != nil && r.app.ID != 0 {
		result = append(result, zap.Uint("application_id", r.app.ID))
	}
	if stepNo > 0 {
		result = append(result, zap.Int("step", stepNo))
	}
	result = append(result, fields...)
	return result
}
