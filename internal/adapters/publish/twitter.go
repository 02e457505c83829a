package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

const twitterTweetsURL = "https://api.twitter.com/2/tweets"

// TwitterPublisher постит текстовый твит через API v2.
// Картинка в твит не вкладывается: media upload требует OAuth 1.0a,
// а здесь используется bearer-токен.
type TwitterPublisher struct {
	bearerToken string
	httpClient  *http.Client
}

var _ domain.Publisher = (*TwitterPublisher)(nil)

// NewTwitter создаёт паблишер X/Twitter.
func NewTwitter(bearerToken string, timeout time.Duration) *TwitterPublisher {
	return &TwitterPublisher{
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Name возвращает имя канала рассылки.
func (p *TwitterPublisher) Name() string { return "twitter" }

// Publish отправляет твит с заголовком и ссылкой.
func (p *TwitterPublisher) Publish(ctx context.Context, story domain.StoryRecord, _ string) error {
	payload, err := json.Marshal(map[string]string{"text": tweetText(story)})
	if err != nil {
		return fmt.Errorf("сериализация твита: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterTweetsURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("создание запроса к Twitter: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	metrics.ObserveNetworkRequest("twitter", "create_tweet", "", start, err)
	if err != nil {
		return fmt.Errorf("запрос к Twitter: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twitter вернул статус %d: %s", resp.StatusCode, raw)
	}
	return nil
}
