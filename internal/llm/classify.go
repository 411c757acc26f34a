package llm

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
)

// максимальная длина текста страницы в промпте
const maxPageText = 4000

const classifySystemMsg = `You classify pages of the Irish online visa application site (AVATS).
Possible kinds:
- home: the AVATS start page with "Apply" and "Retrieve" links
- consent: data protection / privacy acknowledgement before the form
- retrieve: a page asking for an existing application number
- form: one of the ten application form pages (give its number 1-10)
- error: server error, session expired or maintenance page
- confirmation: the application was submitted
- unknown: anything else
Form pages in order: 1 visa type and purpose, 2 personal details, 3 contact details,
4 passport, 5 travel dates, 6 visa history, 7 family, 8 employment, 9 contacts in Ireland,
10 declaration.
Respond with JSON: {"kind": "...", "page": 0, "confidence": 0.0, "reasoning": "..."}`

// truncate обрезает s до limit байт по границе символа UTF-8.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func formatPrompt(systemMsg, userPrompt string) string {
	return fmt.Sprintf("System: %s\n\nUser: %s", systemMsg, userPrompt)
}

func (c *Client) ClassifyPage(ctx context.Context, url, text string, applicationID *uint) (*PageClassification, error) {
	text = truncate(text, maxPageText)
	prompt := fmt.Sprintf("URL: %s\n\nVisible text:\n%s", url, c.sanitizer.Sanitize(text))

	resp, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemMsg},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		c.log(ctx, applicationID, "error", formatPrompt(classifySystemMsg, prompt), err.Error(), 0)
		return nil, fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("пустой ответ от OpenAI")
	}

	content := resp.Choices[0].Message.Content
	c.log(ctx, applicationID, "classify", formatPrompt(classifySystemMsg, prompt), content, resp.Usage.TotalTokens)

	return parseClassification(content)
}
