package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"visaAgent/internal/logger"
	"visaAgent/internal/site"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    site.State
		ok      bool
		conf    float64
	}{
		{"plain", `{"kind":"form","page":4,"confidence":0.9,"reasoning":"passport fields"}`, site.State{Kind: site.KindForm, Page: 4}, true, 0.9},
		{"fenced", "```json\n{\"kind\": \"Consent\", \"confidence\": 0.7}\n```", site.State{Kind: site.KindConsent}, true, 0.7},
		{"with prose", `Sure: {"kind":"error","confidence":1.4}`, site.State{Kind: site.KindError}, true, 1},
		{"form without page", `{"kind":"form","page":0,"confidence":0.8}`, site.State{}, false, 0.8},
		{"unknown", `{"kind":"unknown","confidence":0.2}`, site.State{}, false, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.content)
			require.NoError(t, err)
			state, ok := got.State()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, state)
			assert.InDelta(t, tt.conf, got.Confidence, 1e-9)
		})
	}
}

func TestParseClassificationRejectsGarbage(t *testing.T) {
	_, err := parseClassification("I cannot tell")
	assert.Error(t, err)

	_, err = parseClassification(`{"kind": }`)
	assert.Error(t, err)
}

func TestRateLimiterRequests(t *testing.T) {
	rl := NewRateLimiter(2, 1000)
	ctx := context.Background()

	require.NoError(t, rl.AllowRequest(ctx))
	require.NoError(t, rl.AllowRequest(ctx))
	assert.Error(t, rl.AllowRequest(ctx))

	requests, tokens := rl.GetStats()
	assert.Equal(t, 0, requests)
	assert.Equal(t, 1000, tokens)
}

func TestRateLimiterTokens(t *testing.T) {
	rl := NewRateLimiter(10, 1000)
	ctx := context.Background()

	require.NoError(t, rl.AllowTokens(ctx, 600))
	err := rl.AllowTokens(ctx, 600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400 доступно")

	rl.ConsumeTokens(1000)
	_, tokens := rl.GetStats()
	assert.Equal(t, 0, tokens)
}

func TestNewClientOptions(t *testing.T) {
	c := NewClient("key", "", WithModel(""), WithMaxTokens(0))
	assert.Equal(t, openai.GPT4oMini, c.model)
	assert.Equal(t, 400, c.maxTokens)

	c = NewClient("key", "http://localhost:11434/v1", WithModel("gpt-4o"), WithMaxTokens(200), WithRateLimit(1, 100))
	assert.Equal(t, "gpt-4o", c.model)
	assert.Equal(t, 200, c.maxTokens)
	requests, tokens := c.limiter.GetStats()
	assert.Equal(t, 1, requests)
	assert.Equal(t, 100, tokens)
}

func TestEstimateTokens(t *testing.T) {
	req := openai.ChatCompletionRequest{
		MaxTokens: 100,
		Messages: []openai.ChatCompletionMessage{
			{Content: "12345678"},
			{Content: "1234"},
		},
	}
	assert.Equal(t, 103, estimateTokens(req))
}

func TestCompleteRespectsRequestLimit(t *testing.T) {
	c := NewClient("key", "", WithRateLimit(1, 1000))
	require.NoError(t, c.limiter.AllowRequest(context.Background()))

	_, err := c.complete(context.Background(), openai.ChatCompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "лимит запросов")
}

func TestTruncateKeepsRunes(t *testing.T) {
	text := strings.Repeat("Ж", maxPageText) // 2 байта на символ
	cut := truncate(text, maxPageText+1)
	assert.True(t, utf8.ValidString(cut))
	assert.Len(t, cut, maxPageText)

	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "", truncate("€", 2))
}

type failingLogger struct{}

func (failingLogger) LogLLMRequest(context.Context, *uint, string, string, string, string, int) error {
	return errors.New("database is locked")
}

func observed() (*logger.Zap, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return &logger.Zap{Logger: zap.New(core)}, logs
}

func TestLogWarnsWhenRepositoryFails(t *testing.T) {
	zl, logs := observed()
	c := NewClient("key", "", WithLogger(failingLogger{}), WithZap(zl))

	c.log(context.Background(), nil, "classify", "prompt", "response", 42)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Не удалось сохранить запрос к LLM", entries[0].Message)
	assert.Equal(t, "database is locked", entries[0].ContextMap()["error"])
	assert.EqualValues(t, 42, entries[0].ContextMap()["tokens"])
}

func TestCompleteWarnsWithLimiterStats(t *testing.T) {
	zl, logs := observed()
	c := NewClient("key", "", WithRateLimit(1, 1000), WithZap(zl))
	require.NoError(t, c.limiter.AllowRequest(context.Background()))

	_, err := c.complete(context.Background(), openai.ChatCompletionRequest{})
	require.Error(t, err)

	entries := logs.FilterMessage("Лимит классификатора исчерпан").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 0, entries[0].ContextMap()["requests_available"])
	assert.EqualValues(t, 1000, entries[0].ContextMap()["tokens_available"])
}
