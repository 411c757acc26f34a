package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultHomeURL = "https://www.visas.inis.gov.ie/avats/OnlineHome.aspx"

type Cfg struct {
	Database   Database
	Logger     Logger
	OpenAI     OpenAI
	Browser    Browser
	Migrations Migrations
	Form       Form
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type OpenAI struct {
	KeyAI             string
	Model             string
	BaseURL           string
	MaxTokens         int
	RequestsPerMinute int
	TokensPerHour     int
}

type Browser struct {
	Display      string
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	Engine       string
	Timeout      time.Duration

	NavigateTimeout time.Duration // переход и перезагрузка страницы
	ActionTimeout   time.Duration // клик, ввод, выбор пункта
}

// Form описывает поведение прохода по анкете AVATS.
type Form struct {
	HomeURL           string
	ProfilePath       string
	AppNumberFile     string
	ScreenshotDir     string
	PostbackDelay     time.Duration // пауза после postback перед ожиданием загрузки
	SettleDelay       time.Duration // пауза после перехода на следующую страницу
	MaxPageAttempts   int
	MaxErrorRefreshes int
	MaxSteps          int
	SubmitFinal       bool
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		OpenAI: OpenAI{
			KeyAI:             os.Getenv("OPENAI_API_KEY"),
			Model:             env("OPENAI_MODEL", "gpt-4o"),
			BaseURL:           os.Getenv("OPENAI_BASE_URL"),
			MaxTokens:         envInt("OPENAI_MAX_TOKENS", 400),
			RequestsPerMinute: envInt("OPENAI_RPM", 20),
			TokensPerHour:     envInt("OPENAI_TPH", 60000),
		},
		Browser: Browser{
			Display:      env("DISPLAY", ":0"),
			Headless:     envBool("PW_HEADLESS"),
			UserDataDir:  env("PW_USER_DATA_DIR", ""),
			BrowsersPath: env("PLAYWRIGHT_BROWSERS_PATH", ""),
			Engine:       strings.ToLower(env("PW_BROWSER", "firefox")),
			Timeout:      envDuration("PW_TIMEOUT", 30*time.Second),

			NavigateTimeout: envDuration("PW_NAVIGATE_TIMEOUT", 60*time.Second),
			ActionTimeout:   envDuration("PW_ACTION_TIMEOUT", 10*time.Second),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
		Form: Form{
			HomeURL:           env("AVATS_HOME_URL", DefaultHomeURL),
			ProfilePath:       env("PROFILE_PATH", "applicant.yaml"),
			AppNumberFile:     env("APP_NUMBER_FILE", "application_number.txt"),
			ScreenshotDir:     env("SCREENSHOT_DIR", ""),
			PostbackDelay:     envDuration("FORM_POSTBACK_DELAY", 2*time.Second),
			SettleDelay:       envDuration("FORM_SETTLE_DELAY", time.Second),
			MaxPageAttempts:   envInt("FORM_MAX_PAGE_ATTEMPTS", 3),
			MaxErrorRefreshes: envInt("FORM_MAX_ERROR_REFRESHES", 3),
			MaxSteps:          envInt("FORM_MAX_STEPS", 80),
			SubmitFinal:       envBool("FORM_SUBMIT_FINAL"),
		},
	}

	if _, err := url.ParseRequestURI(cfg.Form.HomeURL); err != nil {
		return nil, fmt.Errorf("некорректный AVATS_HOME_URL %q: %w", cfg.Form.HomeURL, err)
	}

	return cfg, nil
}

// DatabaseEnabled сообщает, настроено ли подключение к PostgreSQL.
// Без DB_HOST приложение работает только с файлом номера заявки.
func (c *Cfg) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

func (c *Cfg) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name)
}

func (c *Cfg) MigrateURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

// envDuration принимает как "1500ms"/"2s", так и целое число миллисекунд.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
