package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает запросы к классификатору: запросов в минуту и токенов в час.
// Токены, израсходованные сверх оценки, уходят в долг и задерживают следующие запросы.
type RateLimiter struct {
	requestsPerMinute int
	tokensPerHour     int
	requests          *rate.Limiter
	tokens            *rate.Limiter
}

func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	if tokensPerHour <= 0 {
		tokensPerHour = 60000
	}

	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		tokensPerHour:     tokensPerHour,
		requests:          rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
		tokens:            rate.NewLimiter(rate.Every(time.Hour/time.Duration(tokensPerHour)), tokensPerHour),
	}
}

// take списывает n без ожидания. Если списать нельзя, возвращает время до пополнения.
func take(lim *rate.Limiter, n int) (time.Duration, bool) {
	now := time.Now()
	r := lim.ReserveN(now, n)
	if !r.OK() {
		return 0, false
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return delay, false
	}
	return 0, true
}

// AllowRequest списывает один запрос или возвращает ошибку, если лимит исчерпан.
func (rl *RateLimiter) AllowRequest(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if wait, ok := take(rl.requests, 1); !ok {
		return fmt.Errorf("превышен лимит запросов (%d RPM), повторите через %v",
			rl.requestsPerMinute, wait.Round(time.Millisecond))
	}
	return nil
}

// AllowTokens резервирует оценку токенов для запроса.
func (rl *RateLimiter) AllowTokens(ctx context.Context, tokens int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tokens > rl.tokensPerHour {
		return fmt.Errorf("запрос на %d токенов больше часового лимита %d", tokens, rl.tokensPerHour)
	}
	if wait, ok := take(rl.tokens, tokens); !ok {
		return fmt.Errorf("превышен лимит токенов (%d TPH): %d требуется, %d доступно, повторите через %v",
			rl.tokensPerHour, tokens, available(rl.tokens), wait.Round(time.Second))
	}
	return nil
}

// ConsumeTokens списывает токены, израсходованные сверх оценки.
func (rl *RateLimiter) ConsumeTokens(tokens int) {
	if tokens > rl.tokensPerHour {
		tokens = rl.tokensPerHour
	}
	if tokens > 0 {
		rl.tokens.ReserveN(time.Now(), tokens)
	}
}

func available(lim *rate.Limiter) int {
	if n := int(lim.Tokens()); n > 0 {
		return n
	}
	return 0
}

func (rl *RateLimiter) GetStats() (requestsAvailable int, tokensAvailable int) {
	return available(rl.requests), available(rl.tokens)
}
