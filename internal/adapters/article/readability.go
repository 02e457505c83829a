package article

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

// Extractor скачивает страницу и извлекает основной текст статьи.
type Extractor struct {
	http *http.Client
}

var _ domain.ArticleFetcher = (*Extractor)(nil)

// NewExtractor создаёт извлекатель текста с таймаутом на запрос.
func NewExtractor(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{http: &http.Client{Timeout: timeout}}
}

// FetchText возвращает извлечённый текст статьи по ссылке.
func (e *Extractor) FetchText(ctx context.Context, link string) (string, error) {
	parsed, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("разбор ссылки статьи: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("запрос статьи: %w", err)
	}
	req.Header.Set("User-Agent", "briefly-bot/1.0 (+https://briefly.life)")

	start := time.Now()
	resp, err := e.http.Do(req)
	metrics.ObserveNetworkRequest("article", "fetch_body", parsed.Host, start, err)
	if err != nil {
		return "", fmt.Errorf("загрузка статьи: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("загрузка статьи: статус %d", resp.StatusCode)
	}

	extracted, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("извлечение текста: %w", err)
	}
	return strings.TrimSpace(extracted.TextContent), nil
}
