package domain

import (
	"context"
	"time"
)

// FeedSource возвращает первые limit элементов ленты по URL.
type FeedSource interface {
	Fetch(ctx context.Context, category, url string, limit int) ([]FeedEntry, error)
}

// ArticleFetcher извлекает текст статьи по ссылке.
type ArticleFetcher interface {
	FetchText(ctx context.Context, link string) (string, error)
}

// Classifier выносит вердикт по одной новости. Любая ошибка означает
// "пропустить кандидата": повторных попыток в рамках прогона нет.
type Classifier interface {
	Classify(ctx context.Context, title, excerpt, category string) (Classification, error)
}

// ReportWriter строит текст ежедневной сводки по списку заголовков.
type ReportWriter interface {
	WriteReport(ctx context.Context, titles []string) (string, error)
}

// StoryStore управляет рабочим окном новостей.
// Порядок Records всегда от новых к старым.
type StoryStore interface {
	Load() error
	Records() []StoryRecord
	IsKnownLink(link string) bool
	Insert(record StoryRecord) error
	Prune(now time.Time, maxAge time.Duration, maxCount int)
	Persist() error
}

// BroadcastLedger хранит ссылки уже разосланных новостей. Только добавление.
type BroadcastLedger interface {
	Load() error
	Contains(link string) bool
	Append(link string) error
}

// ReportStore хранит ежедневные сводки, не более одной на календарный день.
type ReportStore interface {
	Load() ([]DailyReport, error)
	Save(reports []DailyReport) error
}

// Renderer рисует карточку новости и сохраняет её по указанному пути.
type Renderer interface {
	Render(story StoryRecord, path string) error
}

// Publisher отправляет финализированную новость в один внешний канал.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, story StoryRecord, imagePath string) error
}

// StoryArchive сохраняет новости во внешнее хранилище для сайта.
// Ошибки архива не влияют на ход прогона.
type StoryArchive interface {
	ArchiveStory(ctx context.Context, story StoryRecord) error
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Once(key string, ttl time.Duration, fn func() error) error
	Set(key string, value []byte, ttl time.Duration) error
	Get(key string) ([]byte, error)
}
