package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visaAgent/internal/browser"
	"visaAgent/internal/form"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"selector", fmt.Errorf("кнопка перехода: %w", form.ErrNoSelectorMatched), ErrorTypeTemporary},
		{"element text", errors.New("element is not attached to the DOM"), ErrorTypeTemporary},
		{"timeout", errors.New("navigate timeout after 60s"), ErrorTypeRetryable},
		{"network", errors.New("NS_ERROR_NET_RESET"), ErrorTypeRetryable},
		{"validation", fmt.Errorf("%w: Email is required", form.ErrValidationFailed), ErrorTypeCritical},
		{"missing value", fmt.Errorf("страница 3: %w: city", form.ErrMissingValue), ErrorTypeCritical},
		{"not launched", browser.ErrNotLaunched, ErrorTypeCritical},
		{"canceled", context.Canceled, ErrorTypeCritical},
		{"circuit", ErrCircuitOpen, ErrorTypeCritical},
		{"other", errors.New("boom"), ErrorTypeCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError("click", tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Type, got.Type.String())
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.Nil(t, classifyError("click", nil))
}

func TestRetryActionRetriesTemporaryErrors(t *testing.T) {
	calls := 0
	err := retryAction(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return form.ErrNoSelectorMatched
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, form.ErrNoSelectorMatched)
	assert.Contains(t, err.Error(), "после 3 попыток")
}

func TestRetryActionSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retryAction(context.Background(), 5, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryActionStopsOnCriticalError(t *testing.T) {
	calls := 0
	err := retryAction(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return browser.ErrNotLaunched
	})

	assert.ErrorIs(t, err, browser.ErrNotLaunched)
	assert.Equal(t, 1, calls)
}

func TestRetryActionHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retryAction(ctx, 5, time.Millisecond, func() error {
		calls++
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Hour)
	fail := errors.New("validation")

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Call(func() error { return fail }), fail)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 0, cb.Failures())
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Hour)
	fail := errors.New("fail")

	_ = cb.Call(func() error { return fail })
	require.NoError(t, cb.Call(func() error { return nil }))
	_ = cb.Call(func() error { return fail })

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, 1, cb.Failures())
}

func TestCircuitBreakerHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	fail := errors.New("fail")

	_ = cb.Call(func() error { return fail })
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.ErrorIs(t, cb.Call(func() error { return fail }), fail)
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerPool(t *testing.T) {
	pool := NewCircuitBreakerPool(1, time.Hour)

	a := pool.For("form:3")
	assert.Same(t, a, pool.For("form:3"))
	assert.NotSame(t, a, pool.For("form:4"))

	_ = a.Call(func() error { return errors.New("fail") })
	assert.Equal(t, StateOpen, a.State())

	pool.ResetAll()
	assert.Equal(t, StateClosed, a.State())
}
