package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "briefly-bot/internal/infra/openai"
)

type fakeChatClient struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: f.content}}},
	}, nil
}

func TestClassifyParsesVerdict(t *testing.T) {
	client := &fakeChatClient{content: `{"is_major": true, "summary": "три абзаца", "social_text": "плотный текст"}`}
	c := NewOpenAI(client, "gpt-4o-mini", 10*time.Second)

	verdict, err := c.Classify(context.Background(), "Acme buys Globex for $2B", "текст статьи", "Markets")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !verdict.IsMajor {
		t.Fatalf("ожидали is_major=true")
	}
	if verdict.Summary != "три абзаца" || verdict.SocialText != "плотный текст" {
		t.Fatalf("вердикт разобран неверно: %+v", verdict)
	}
	if client.lastReq.ResponseFormat == nil || client.lastReq.ResponseFormat.Type != openai.ResponseFormatTypeJSONObject {
		t.Fatalf("классификатор должен просить JSON-объект")
	}
}

func TestClassifyProviderError(t *testing.T) {
	client := &fakeChatClient{err: errors.New("timeout")}
	c := NewOpenAI(client, "gpt-4o-mini", 10*time.Second)

	if _, err := c.Classify(context.Background(), "title", "text", "Tech"); err == nil {
		t.Fatalf("ошибка провайдера должна подниматься наверх")
	}
}

func TestClassifyMalformedResponse(t *testing.T) {
	client := &fakeChatClient{content: "это не json"}
	c := NewOpenAI(client, "gpt-4o-mini", 10*time.Second)

	if _, err := c.Classify(context.Background(), "title", "text", "Tech"); err == nil {
		t.Fatalf("нечитаемый ответ должен быть ошибкой")
	}
}

func TestClassifyClipsLongExcerpt(t *testing.T) {
	client := &fakeChatClient{content: `{"is_major": false, "summary": "s", "social_text": "t"}`}
	c := NewOpenAI(client, "gpt-4o-mini", 10*time.Second)

	long := make([]rune, excerptLimit*2)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := c.Classify(context.Background(), "title", string(long), "Tech"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	userMsg := client.lastReq.Messages[1].Content
	if len([]rune(userMsg)) > excerptLimit+200 {
		t.Fatalf("текст статьи должен обрезаться до лимита промпта")
	}
}

func TestWriteReport(t *testing.T) {
	client := &fakeChatClient{content: "три абзаца о трендах"}
	c := NewOpenAI(client, "gpt-4o-mini", 10*time.Second)

	report, err := c.WriteReport(context.Background(), []string{"Story one", "Story two"})
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if report != "три абзаца о трендах" {
		t.Fatalf("неожиданный текст сводки: %q", report)
	}
}
