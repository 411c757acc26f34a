package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visaAgent/internal/appnumber"
	"visaAgent/internal/browser"
	"visaAgent/internal/config"
	"visaAgent/internal/form/formtest"
	"visaAgent/internal/logger"
)

const number = "61234567"

type testEnv struct {
	*Env
	site *formtest.AVATS
	out  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	profilePath := filepath.Join(dir, "applicant.yaml")
	require.NoError(t, os.WriteFile(profilePath, []byte(formtest.ApplicantYAML), 0o644))

	s := formtest.New(formtest.Applicant(), number)
	out := &bytes.Buffer{}

	return &testEnv{
		Env: &Env{
			Ctx: context.Background(),
			Cfg: &config.Cfg{Form: config.Form{
				HomeURL:       formtest.HomeURL,
				ProfilePath:   profilePath,
				AppNumberFile: filepath.Join(dir, "application_number.txt"),
				MaxSteps:      60,
			}},
			Log:        logger.NewNop(),
			Out:        out,
			NewBrowser: func(config.Browser) browser.Browser { return s },
		},
		site: s,
		out:  out,
	}
}

func TestRunCommand(t *testing.T) {
	env := newTestEnv(t)

	cmd := NewRunCommand(env.Env)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, env.out.String(), "Anita Sharma")
	assert.Contains(t, env.out.String(), "заполнена, ждет отправки")
	assert.Contains(t, env.out.String(), number)

	stored, err := appnumber.NewFileStore(env.Cfg.Form.AppNumberFile).Load()
	require.NoError(t, err)
	assert.Equal(t, number, stored)
}

func TestRunCommandRejectsInvalidProfile(t *testing.T) {
	env := newTestEnv(t)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("personal:\n  surname: Sharma\n"), 0o644))

	cmd := NewRunCommand(env.Env)
	cmd.SetArgs([]string{"--profile", bad})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
	assert.Empty(t, env.site.Navigations)
}

func TestResumeCommandWithNumber(t *testing.T) {
	env := newTestEnv(t)
	env.site.Route = func(from, to string) string {
		if from == formtest.RetrieveURL {
			return formtest.PageURL(10)
		}
		return to
	}

	cmd := NewResumeCommand(env.Env)
	cmd.SetArgs([]string{number})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, env.out.String(), "Продолжение заявки "+number)
	assert.Equal(t, number, env.site.Filled["ctl00_ContentPlaceHolder1_txtApplicationNumber"])
}

func TestResumeCommandUsesStoredNumber(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, appnumber.NewFileStore(env.Cfg.Form.AppNumberFile).Save(number))

	app, err := env.resolveApplication(nil)
	require.NoError(t, err)
	assert.Equal(t, number, app.ApplicationNumber)
}

func TestResumeCommandWithoutNumber(t *testing.T) {
	env := newTestEnv(t)

	cmd := NewResumeCommand(env.Env)
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "номер заявки не указан")
}

func TestDatabaseCommandsNeedRepository(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		run  func(*Env) error
	}{
		{"list", func(e *Env) error { c := NewListCommand(e); c.SetArgs([]string{}); return c.Execute() }},
		{"show", func(e *Env) error { c := NewShowCommand(e); c.SetArgs([]string{"1"}); return c.Execute() }},
		{"logs", func(e *Env) error { c := NewLogsCommand(e); c.SetArgs([]string{"1"}); return c.Execute() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(env.Env), ErrNoDatabase)
		})
	}
}

func TestDetectCommand(t *testing.T) {
	env := newTestEnv(t)
	env.site.FailValidation(3, "Email Address is required")

	cmd := NewDetectCommand(env.Env)
	cmd.SetArgs([]string{formtest.PageURL(3)})
	require.NoError(t, cmd.Execute())

	out := env.out.String()
	assert.Contains(t, out, "страница 3 из 10")
	assert.Contains(t, out, number)
	assert.Contains(t, out, "Email Address is required")
}

func TestDetectCommandHomeByDefault(t *testing.T) {
	env := newTestEnv(t)
	shot := filepath.Join(t.TempDir(), "home.png")

	cmd := NewDetectCommand(env.Env)
	cmd.SetArgs([]string{"--screenshot", shot})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, env.out.String(), "главная")
	assert.Equal(t, []string{shot}, env.site.Screenshots)
	assert.FileExists(t, shot)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = parseID("0")
	assert.Error(t, err)
	_, err = parseID("abc")
	assert.Error(t, err)
}

func TestBrowserConfigPassesTimeouts(t *testing.T) {
	cfg := browserConfig(config.Browser{
		Engine:          "chromium",
		Timeout:         30 * time.Second,
		NavigateTimeout: 2 * time.Minute,
		ActionTimeout:   1500 * time.Millisecond,
	})

	assert.Equal(t, "chromium", cfg.Engine)
	assert.Equal(t, 2*time.Minute, cfg.NavigateTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.ActionTimeout)
}

func TestEnvCloseRunsInReverseOrder(t *testing.T) {
	env := &Env{}
	var order []string
	env.OnClose(func() { order = append(order, "log") })
	env.OnClose(func() { order = append(order, "db") })

	env.Close()
	env.Close()
	assert.Equal(t, []string{"db", "log"}, order)
}
