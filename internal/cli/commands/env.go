// Package commands содержит подкоманды CLI visa.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"visaAgent/internal/agent"
	"visaAgent/internal/appnumber"
	"visaAgent/internal/browser"
	"visaAgent/internal/cli/ui"
	"visaAgent/internal/config"
	"visaAgent/internal/database"
	"visaAgent/internal/llm"
	"visaAgent/internal/logger"
)

var ErrNoDatabase = errors.New("БД не настроена: задайте DB_HOST")

// Env - общее окружение команд. Заполняется в PersistentPreRunE корневой команды.
type Env struct {
	Ctx  context.Context
	Cfg  *config.Cfg
	Log  *logger.Zap
	DB   *database.Database
	Repo *database.ApplicationRepository // nil, если БД не настроена
	Out  io.Writer

	// NewBrowser подменяется в тестах.
	NewBrowser func(cfg config.Browser) browser.Browser

	closers []func()
}

// OnClose регистрирует освобождение ресурса. Close вызывает их в обратном порядке.
func (e *Env) OnClose(fn func()) {
	e.closers = append(e.closers, fn)
}

func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func (e *Env) requireRepo() error {
	if e.Repo == nil {
		return ErrNoDatabase
	}
	return nil
}

func (e *Env) openBrowser() browser.Browser {
	if e.NewBrowser != nil {
		return e.NewBrowser(e.Cfg.Browser)
	}
	return browser.New(browserConfig(e.Cfg.Browser))
}

func browserConfig(cfg config.Browser) browser.Config {
	return browser.Config{
		Headless:        cfg.Headless,
		UserDataDir:     cfg.UserDataDir,
		BrowsersPath:    cfg.BrowsersPath,
		Display:         cfg.Display,
		Engine:          cfg.Engine,
		Timeout:         cfg.Timeout,
		NavigateTimeout: cfg.NavigateTimeout,
		ActionTimeout:   cfg.ActionTimeout,
	}
}

// classifier возвращает nil без OPENAI_API_KEY.
func (e *Env) classifier() llm.PageClassifier {
	if e.Cfg.OpenAI.KeyAI == "" {
		return nil
	}
	ai := e.Cfg.OpenAI
	opts := []llm.Option{
		llm.WithModel(ai.Model),
		llm.WithMaxTokens(ai.MaxTokens),
		llm.WithRateLimit(ai.RequestsPerMinute, ai.TokensPerHour),
		llm.WithZap(e.Log),
	}
	if e.Repo != nil {
		opts = append(opts, llm.WithLogger(e.Repo))
	}
	return llm.NewClient(ai.KeyAI, ai.BaseURL, opts...)
}

func (e *Env) numbers() *appnumber.FileStore {
	return appnumber.NewFileStore(e.Cfg.Form.AppNumberFile)
}

func (e *Env) newAgent(submitFinal bool) *agent.Agent {
	var recorder agent.Recorder
	if e.Repo != nil {
		recorder = e.Repo
	}

	f := e.Cfg.Form
	return agent.New(agent.Deps{
		Browser:    e.openBrowser(),
		Classifier: e.classifier(),
		Recorder:   recorder,
		Numbers:    e.numbers(),
		Log:        e.Log,
	}, agent.Config{
		HomeURL:           f.HomeURL,
		PostbackDelay:     f.PostbackDelay,
		SettleDelay:       f.SettleDelay,
		MaxPageAttempts:   f.MaxPageAttempts,
		MaxErrorRefreshes: f.MaxErrorRefreshes,
		MaxSteps:          f.MaxSteps,
		SubmitFinal:       f.SubmitFinal || submitFinal,
		ScreenshotDir:     f.ScreenshotDir,
		RetryDelay:        f.SettleDelay,
	})
}

func (e *Env) printf(format string, args ...any) {
	fmt.Fprintf(e.Out, format, args...)
}

func (e *Env) println(args ...any) {
	fmt.Fprintln(e.Out, args...)
}

func (e *Env) fail(format string, args ...any) {
	e.printf(ui.ColorRed+ui.IconCross+" "+format+ui.ColorReset+"\n", args...)
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("неверный ID заявки: %q", arg)
	}
	return uint(id), nil
}
