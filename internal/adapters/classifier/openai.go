package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"briefly-bot/internal/domain"
	openai "briefly-bot/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// excerptLimit ограничивает объём текста статьи в промпте.
const excerptLimit = 2000

// OpenAI реализует классификатор и автора сводок через Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var (
	_ domain.Classifier   = (*OpenAI)(nil)
	_ domain.ReportWriter = (*OpenAI)(nil)
)

// NewOpenAI создаёт провайдер классификации.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

type verdictPayload struct {
	IsMajor    bool   `json:"is_major"`
	Summary    string `json:"summary"`
	SocialText string `json:"social_text"`
}

const classifySystemPrompt = `You are an expert Business Intelligence Analyst.
Return a JSON object with EXACTLY these 3 fields:
1. 'is_major': boolean (true ONLY for massive global business events, M&A >$500M, or major policy shifts).
2. 'summary': A detailed, comprehensive 3-paragraph summary of the article for our website. Write at least 150 words.
3. 'social_text': A highly dense, information-packed paragraph (180-220 characters) for an image graphic. MAXIMIZE information density: include exact numbers, key names, and the core strategic impact. STRICT RULES: Use normal sentence case. NO ALL CAPS. Do not repeat the exact title.`

// Classify выносит вердикт по одной новости. Одна попытка на кандидата:
// ошибку обрабатывает вызывающая сторона пропуском новости.
func (c *OpenAI) Classify(ctx context.Context, title, excerpt, category string) (domain.Classification, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Title: %s\nCategory: %s\nContent: %s", title, category, clipRunes(excerpt, excerptLimit))

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: classifySystemPrompt},
			{Role: openai.RoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ResponseFormatTypeJSONObject},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Classification{}, fmt.Errorf("openai completion: пустой ответ")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed verdictPayload
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return domain.Classification{}, fmt.Errorf("распаковка ответа LLM: %w", err)
	}
	return domain.Classification{
		IsMajor:    parsed.IsMajor,
		Summary:    strings.TrimSpace(parsed.Summary),
		SocialText: strings.TrimSpace(parsed.SocialText),
	}, nil
}

// WriteReport строит текст ежедневной сводки по списку заголовков.
func (c *OpenAI) WriteReport(ctx context.Context, titles []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var b strings.Builder
	for _, title := range titles {
		b.WriteString("- ")
		b.WriteString(title)
		b.WriteString("\n")
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: "Summarize the top global business trends of the last 24 hours in 3 detailed paragraphs."},
			{Role: openai.RoleUser, Content: "Context:\n" + b.String()},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: пустой ответ")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
