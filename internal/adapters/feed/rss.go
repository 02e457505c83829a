package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

// RSSSource читает RSS/Atom ленты.
type RSSSource struct {
	http   *http.Client
	parser *gofeed.Parser
}

var _ domain.FeedSource = (*RSSSource)(nil)

// NewRSSSource создаёт источник лент с таймаутом на запрос.
func NewRSSSource(timeout time.Duration) *RSSSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RSSSource{
		http:   &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

// Fetch возвращает первые limit элементов ленты. Лимит — страховка
// от разросшихся лент, а не требование корректности.
func (s *RSSSource) Fetch(ctx context.Context, category, url string, limit int) ([]domain.FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("запрос ленты %s: %w", category, err)
	}
	req.Header.Set("User-Agent", "briefly-bot/1.0 (+https://briefly.life)")

	start := time.Now()
	resp, err := s.http.Do(req)
	metrics.ObserveNetworkRequest("rss", "fetch_feed", category, start, err)
	if err != nil {
		return nil, fmt.Errorf("опрос ленты %s: %w", category, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("опрос ленты %s: статус %d", category, resp.StatusCode)
	}

	parsed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("разбор ленты %s: %w", category, err)
	}

	items := parsed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	entries := make([]domain.FeedEntry, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}
		entries = append(entries, domain.FeedEntry{
			Title:       title,
			Link:        link,
			PublishedAt: publishedAt,
		})
	}
	return entries, nil
}
