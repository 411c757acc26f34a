package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"visaAgent/internal/logger"
	"visaAgent/internal/sanitizer"
)

// Client классифицирует страницы через OpenAI-совместимый API.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	logger    Logger
	zlog      *logger.Zap
	sanitizer *sanitizer.DataSanitizer
	limiter   *RateLimiter
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLogger включает запись промптов и ответов в БД.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithZap(l *logger.Zap) Option {
	return func(c *Client) {
		if l != nil {
			c.zlog = l.Named("llm")
		}
	}
}

func WithRateLimit(requestsPerMinute, tokensPerHour int) Option {
	return func(c *Client) { c.limiter = NewRateLimiter(requestsPerMinute, tokensPerHour) }
}

func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	apiCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		apiCfg.BaseURL = baseURL
	}

	c := &Client{
		api:       openai.NewClientWithConfig(apiCfg),
		model:     openai.GPT4oMini,
		maxTokens: 400,
		zlog:      logger.NewNop(),
		sanitizer: sanitizer.New(),
		limiter:   NewRateLimiter(0, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// estimateTokens - грубая оценка, около 4 символов на токен плюс бюджет ответа.
func estimateTokens(req openai.ChatCompletionRequest) int {
	n := req.MaxTokens
	for _, msg := range req.Messages {
		n += len(msg.Content) / 4
	}
	return n
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := c.limiter.AllowRequest(ctx); err != nil {
		c.limited(err)
		return openai.ChatCompletionResponse{}, err
	}

	estimated := estimateTokens(req)
	if err := c.limiter.AllowTokens(ctx, estimated); err != nil {
		c.limited(err)
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, err
	}

	if extra := resp.Usage.TotalTokens - estimated; extra > 0 {
		c.limiter.ConsumeTokens(extra)
	}
	return resp, nil
}

func (c *Client) log(ctx context.Context, applicationID *uint, role, prompt, response string, tokens int) {
	if c.logger == nil {
		return
	}
	err := c.logger.LogLLMRequest(ctx, applicationID, role,
		c.sanitizer.Sanitize(prompt), c.sanitizer.Sanitize(response), c.model, tokens)
	if err != nil {
		c.zlog.Warn("Не удалось сохранить запрос к LLM",
			zap.String("role", role),
			zap.Int("tokens", tokens),
			zap.Error(err),
		)
	}
}

func (c *Client) limited(err error) {
	requests, tokens := c.limiter.GetStats()
	c.zlog.Warn("Лимит классификатора исчерпан",
		zap.Int("requests_available", requests),
		zap.Int("tokens_available", tokens),
		zap.Error(err),
	)
}
