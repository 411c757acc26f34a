package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"visaAgent/internal/browser"
	"visaAgent/internal/form"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker разомкнут")
	ErrStepLimit   = errors.New("превышен лимит шагов")
)

type ErrorType int

const (
	ErrorTypeTemporary ErrorType = iota
	ErrorTypeCritical
	ErrorTypeRetryable
)

func (e ErrorType) String() string {
	switch e {
	case ErrorTypeTemporary:
		return "temporary"
	case ErrorTypeCritical:
		return "critical"
	case ErrorTypeRetryable:
		return "retryable"
	default:
		return "unknown"
	}
}

type ActionError struct {
	Type    ErrorType
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

var (
	retryableMarkers = []string{"timeout", "network", "connection", "ECONNREFUSED", "ETIMEDOUT", "NS_ERROR_NET"}
	temporaryMarkers = []string{"not found", "не найден", "selector", "element", "элемент"}
)

func classifyError(action string, err error) *ActionError {
	if err == nil {
		return nil
	}

	actionErr := &ActionError{Type: ErrorTypeCritical, Action: action, Message: err.Error(), Err: err}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, browser.ErrNotLaunched), errors.Is(err, ErrCircuitOpen),
		errors.Is(err, form.ErrValidationFailed), errors.Is(err, form.ErrMissingValue):
		return actionErr
	case errors.Is(err, form.ErrNoSelectorMatched):
		actionErr.Type = ErrorTypeTemporary
		return actionErr
	}

	errStr := err.Error()
	for _, marker := range retryableMarkers {
		if strings.Contains(errStr, marker) {
			actionErr.Type = ErrorTypeRetryable
			return actionErr
		}
	}
	for _, marker := range temporaryMarkers {
		if strings.Contains(errStr, marker) {
			actionErr.Type = ErrorTypeTemporary
			return actionErr
		}
	}

	return actionErr
}

func isCriticalError(err error) bool {
	return classifyError("", err).Type == ErrorTypeCritical
}

// retryAction повторяет fn с экспоненциальной задержкой. Критичные ошибки прерывают повторы сразу.
func retryAction(ctx context.Context, maxRetries int, delay time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.MaxInterval = 8 * delay
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries-1)), ctx)

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := fn()
		if err != nil && isCriticalError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)

	if err == nil || isCriticalError(err) {
		return err
	}
	return fmt.Errorf("после %d попыток: %w", attempts, err)
}

// fatal сообщает, что после ошибки проход продолжать нельзя.
func fatal(err error) bool {
	return errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrStepLimit) ||
		errors.Is(err, browser.ErrNotLaunched) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
