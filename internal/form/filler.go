package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"visaAgent/internal/browser"
	"visaAgent/internal/logger"
	"visaAgent/internal/profile"
	"visaAgent/internal/sanitizer"
)

var (
	ErrNoSelectorMatched = errors.New("ни один селектор не подошел")
	ErrValidationFailed  = errors.New("страница не прошла валидацию")
	ErrMissingValue      = errors.New("нет значения для обязательного поля")
)

type Options struct {
	PostbackDelay time.Duration
	SettleDelay   time.Duration
}

type Filler struct {
	browser   browser.Browser
	log       *logger.Zap
	sanitizer *sanitizer.DataSanitizer
	opts      Options
}

func NewFiller(b browser.Browser, log *logger.Zap, opts Options) *Filler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Filler{
		browser:   b,
		log:       log,
		sanitizer: sanitizer.New(),
		opts:      opts,
	}
}

// FillReport - итог заполнения одной страницы.
type FillReport struct {
	Page    int
	Filled  []string
	Skipped []string
}

func (r FillReport) String() string {
	return fmt.Sprintf("заполнено %d, пропущено %d", len(r.Filled), len(r.Skipped))
}

// Resolve возвращает первый видимый селектор из цепочки.
func (f *Filler) Resolve(ctx context.Context, selectors []string) (string, error) {
	for _, selector := range selectors {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		visible, err := f.browser.IsVisible(ctx, selector)
		if errors.Is(err, browser.ErrNotLaunched) {
			return "", err
		}
		if err == nil && visible {
			return selector, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoSelectorMatched, strings.Join(selectors, " | "))
}

// FillField вводит значение в поле. Для полей с постбэком страница перезагружается,
// и следующие поля ищутся уже на новой странице.
func (f *Filler) FillField(ctx context.Context, field Field, value string) error {
	selector, err := f.Resolve(ctx, field.SelectorsFor(value))
	if err != nil {
		return err
	}

	switch field.Kind {
	case Select:
		err = f.browser.SelectOption(ctx, selector, value)
	case Radio:
		err = f.browser.Click(ctx, selector)
	case Checkbox:
		err = f.browser.SetChecked(ctx, selector, value == "Yes")
	case Date:
		if _, perr := time.Parse("02/01/2006", value); perr != nil {
			return fmt.Errorf("поле %s: дата %q не в формате DD/MM/YYYY", field.Name, value)
		}
		err = f.browser.Type(ctx, selector, value)
	default:
		err = f.browser.Type(ctx, selector, value)
	}
	if err != nil {
		return fmt.Errorf("поле %s (%s): %w", field.Name, field.Kind, err)
	}

	if field.Postback {
		if err := f.postback(ctx, selector); err != nil {
			return fmt.Errorf("поле %s: %w", field.Name, err)
		}
	}

	return nil
}

func (f *Filler) postback(ctx context.Context, selector string) error {
	if err := f.browser.TriggerPostback(ctx, selector); err != nil {
		return err
	}
	if err := sleep(ctx, f.opts.PostbackDelay); err != nil {
		return err
	}
	return f.browser.WaitForLoadState(ctx, "load")
}

// FillPage заполняет все поля страницы. Значения из extra важнее значений анкеты.
// Поля с невыполненным условием When пропускаются. Опциональные поля пропускаются
// также без значения или без селектора, для обязательных это ошибка.
func (f *Filler) FillPage(ctx context.Context, page Page, a *profile.Applicant, extra map[string]string) (FillReport, error) {
	report := FillReport{Page: page.Number}

	for _, field := range page.Fields {
		if field.When != nil && !field.When(a) {
			report.Skipped = append(report.Skipped, field.Name)
			continue
		}

		value, ok := extra[field.Name]
		if !ok && field.Value != nil && a != nil {
			value = field.Value(a)
		}
		if strings.TrimSpace(value) == "" {
			if !field.Optional {
				return report, fmt.Errorf("страница %d: %w: %s", page.Number, ErrMissingValue, field.Name)
			}
			report.Skipped = append(report.Skipped, field.Name)
			continue
		}

		err := f.FillField(ctx, field, value)
		if errors.Is(err, ErrNoSelectorMatched) && field.Optional {
			report.Skipped = append(report.Skipped, field.Name)
			f.log.Debug("Опциональное поле не найдено", zap.String("field", field.Name))
			continue
		}
		if err != nil {
			return report, fmt.Errorf("страница %d, поле %s: %w", page.Number, field.Name, err)
		}

		report.Filled = append(report.Filled, field.Name)
		f.log.Debug("Поле заполнено",
			zap.Int("page", page.Number),
			zap.String("field", field.Name),
			zap.String("value", f.sanitizer.SanitizeValue(field.Name, value)),
		)
	}

	return report, nil
}

// Submit нажимает кнопку перехода и ждет загрузки следующей страницы.
func (f *Filler) Submit(ctx context.Context, next []string) error {
	selector, err := f.Resolve(ctx, next)
	if err != nil {
		return fmt.Errorf("кнопка перехода: %w", err)
	}

	if err := f.browser.Click(ctx, selector); err != nil {
		return fmt.Errorf("ошибка нажатия %s: %w", selector, err)
	}

	if err := sleep(ctx, f.opts.SettleDelay); err != nil {
		return err
	}

	return f.browser.WaitForLoadState(ctx, "load")
}

// Validate запускает клиентскую валидацию страницы и возвращает ErrValidationFailed,
// если валидаторы сработали или на странице видны их сообщения.
func (f *Filler) Validate(ctx context.Context) error {
	valid, messages, err := f.browser.ValidateForm(ctx, "")
	if err != nil {
		return fmt.Errorf("клиентская валидация: %w", err)
	}

	snapshot, err := f.browser.GetPageSnapshot(ctx)
	if err != nil {
		return err
	}

	messages = mergeMessages(messages, snapshot.ValidationErrors)
	if len(messages) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(messages, "; "))
	}
	if !valid {
		return fmt.Errorf("%w: Page_ClientValidate вернул false", ErrValidationFailed)
	}
	return nil
}

func mergeMessages(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, m := range list {
			m = strings.TrimSpace(m)
			if m == "" || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
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
