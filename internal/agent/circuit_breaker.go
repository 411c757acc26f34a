package agent

import (
	"fmt"
	"sync"
	"time"
)

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker считает неудачные попытки одной страницы подряд. После limit неудач
// он размыкается на cooldown, затем пропускает одну пробную попытку.
type CircuitBreaker struct {
	mu       sync.Mutex
	limit    int
	cooldown time.Duration
	failures int
	openedAt time.Time // нулевое значение - замкнут
	probing  bool
}

func NewCircuitBreaker(limit int, cooldown time.Duration) *CircuitBreaker {
	if limit <= 0 {
		limit = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{limit: limit, cooldown: cooldown}
}

func (cb *CircuitBreaker) stateLocked() CircuitState {
	switch {
	case cb.openedAt.IsZero():
		return StateClosed
	case time.Since(cb.openedAt) > cb.cooldown:
		return StateHalfOpen
	default:
		return StateOpen
	}
}

// Call выполняет fn. Пока breaker разомкнут, fn не вызывается и возвращается ErrCircuitOpen.
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	switch cb.stateLocked() {
	case StateOpen:
		cb.mu.Unlock()
		return fmt.Errorf("%w после %d неудач", ErrCircuitOpen, cb.limit)
	case StateHalfOpen:
		cb.openedAt = time.Time{}
		cb.failures = 0
		cb.probing = true
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		cb.probing = false
		return nil
	}

	cb.failures++
	if cb.probing || cb.failures >= cb.limit {
		cb.openedAt = time.Now()
		cb.probing = false
	}
	return err
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.openedAt = time.Time{}
	cb.probing = false
}

// CircuitBreakerPool держит по breaker на каждую страницу (ключ - состояние, например "form:3").
type CircuitBreakerPool struct {
	breakers sync.Map
	limit    int
	cooldown time.Duration
}

func NewCircuitBreakerPool(limit int, cooldown time.Duration) *CircuitBreakerPool {
	return &CircuitBreakerPool{limit: limit, cooldown: cooldown}
}

func (pool *CircuitBreakerPool) For(key string) *CircuitBreaker {
	if cb, ok := pool.breakers.Load(key); ok {
		return cb.(*CircuitBreaker)
	}
	cb, _ := pool.breakers.LoadOrStore(key, NewCircuitBreaker(pool.limit, pool.cooldown))
	return cb.(*CircuitBreaker)
}

func (pool *CircuitBreakerPool) ResetAll() {
	pool.breakers.Range(func(_, cb any) bool {
		cb.(*CircuitBreaker).Reset()
		return true
	})
}
