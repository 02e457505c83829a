package article

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"briefly-bot/internal/domain"
)

// CachedFetcher кэширует извлечённые тексты статей. Кэш спасает от
// повторной загрузки той же ссылки между прогонами, например после
// упавшего рендера. Любая ошибка кэша трактуется как промах.
type CachedFetcher struct {
	inner domain.ArticleFetcher
	cache domain.Cache
	ttl   time.Duration
}

var _ domain.ArticleFetcher = (*CachedFetcher)(nil)

// NewCachedFetcher оборачивает извлекатель кэшем.
func NewCachedFetcher(inner domain.ArticleFetcher, cache domain.Cache, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &CachedFetcher{inner: inner, cache: cache, ttl: ttl}
}

// FetchText возвращает текст из кэша либо делегирует извлекателю.
func (f *CachedFetcher) FetchText(ctx context.Context, link string) (string, error) {
	key := cacheKey(link)
	if cached, err := f.cache.Get(key); err == nil && len(cached) > 0 {
		return string(cached), nil
	}
	text, err := f.inner.FetchText(ctx, link)
	if err != nil {
		return "", err
	}
	_ = f.cache.Set(key, []byte(text), f.ttl)
	return text, nil
}

func cacheKey(link string) string {
	sum := sha256.Sum256([]byte(link))
	return "article_body:" + hex.EncodeToString(sum[:16])
}
