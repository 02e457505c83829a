package domain

import "time"

// Категории лент по умолчанию совпадают с исходными источниками briefly.life.
const (
	CategoryMarkets  = "Markets"
	CategoryTech     = "Tech"
	CategoryFinance  = "Finance"
	CategoryBusiness = "Business"
)

// StoryRecord описывает одну дедуплицированную новость.
// Запись неизменяема после создания; keywordSet по заголовку
// пересчитывается отдельно и не входит в схему хранения.
type StoryRecord struct {
	Category    string
	Title       string
	Link        string
	Summary     string
	SocialText  string
	IsMajor     bool
	PublishedAt time.Time
}

// Classification содержит вердикт классификатора по одной новости.
type Classification struct {
	IsMajor    bool
	Summary    string
	SocialText string
}

// FeedEntry представляет один элемент RSS-ленты до обогащения.
type FeedEntry struct {
	Title       string
	Link        string
	PublishedAt time.Time
}

// DailyReport содержит сводку трендов за один календарный день.
type DailyReport struct {
	Date    string
	Content string
}

// RunStats агрегирует итог одного прогона пайплайна.
type RunStats struct {
	SourcesScanned    int
	SourceErrors      int
	Ingested          int
	SkippedKnownLink  int
	SkippedSimilar    int
	SkippedShortText  int
	SkippedClassifier int
	Retained          int
	PersistFailed     bool
}
