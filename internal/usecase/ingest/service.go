// Package ingest содержит оркестратор одного прогона пайплайна:
// опрос лент, дедупликация, классификация и обновление рабочего окна.
package ingest

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
	"briefly-bot/internal/usecase/dedup"
)

// ReportGenerator строит ежедневную сводку по текущему окну новостей.
type ReportGenerator interface {
	Generate(ctx context.Context, stories []domain.StoryRecord, now time.Time) error
}

// Config задаёт параметры прогона.
type Config struct {
	Sources        map[string]string
	EntriesPerFeed int
	MinChars       int
	MaxAge         time.Duration
	MaxCount       int
}

// Service выполняет один прогон от опроса лент до сохранения окна.
type Service struct {
	cfg        Config
	store      domain.StoryStore
	feeds      domain.FeedSource
	articles   domain.ArticleFetcher
	classifier domain.Classifier
	archive    domain.StoryArchive
	reports    ReportGenerator
	loc        *time.Location
	now        func() time.Time
	log        zerolog.Logger
}

// NewService создаёт оркестратор. archive и reports опциональны.
func NewService(
	cfg Config,
	store domain.StoryStore,
	feeds domain.FeedSource,
	articles domain.ArticleFetcher,
	classifier domain.Classifier,
	archive domain.StoryArchive,
	reports ReportGenerator,
	loc *time.Location,
	log zerolog.Logger,
) *Service {
	return &Service{
		cfg:        cfg,
		store:      store,
		feeds:      feeds,
		articles:   articles,
		classifier: classifier,
		archive:    archive,
		reports:    reports,
		loc:        loc,
		now:        time.Now,
		log:        log.With().Str("component", "ingest").Logger(),
	}
}

// Run выполняет один прогон. Ошибки отдельных источников и кандидатов
// не прерывают прогон: они учитываются в статистике и метриках.
func (s *Service) Run(ctx context.Context) (domain.RunStats, error) {
	var stats domain.RunStats

	if err := s.store.Load(); err != nil {
		return stats, err
	}

	now := s.now().In(s.loc)
	s.store.Prune(now, s.cfg.MaxAge, s.cfg.MaxCount)

	retained := s.store.Records()
	titles := make([]string, 0, len(retained))
	for _, record := range retained {
		titles = append(titles, record.Title)
	}
	corpus := dedup.NewCorpus(titles)

	// Источники обходятся в детерминированном порядке.
	categories := make([]string, 0, len(s.cfg.Sources))
	for category := range s.cfg.Sources {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		stats.SourcesScanned++
		entries, err := s.feeds.Fetch(ctx, category, s.cfg.Sources[category], s.cfg.EntriesPerFeed)
		if err != nil {
			stats.SourceErrors++
			metrics.FeedFetchErrors.Inc()
			s.log.Warn().Err(err).Str("category", category).Msg("источник недоступен, пропускаем")
			continue
		}
		for _, entry := range entries {
			s.processEntry(ctx, entry, category, now, corpus, &stats)
		}
	}

	stats.Retained = len(s.store.Records())

	if err := s.store.Persist(); err != nil {
		stats.PersistFailed = true
		s.log.Error().Err(err).Msg("не удалось сохранить окно новостей")
	}

	if s.reports != nil {
		if err := s.reports.Generate(ctx, s.store.Records(), now); err != nil {
			s.log.Warn().Err(err).Msg("сводка за день не построена")
		}
	}

	return stats, nil
}

func (s *Service) processEntry(ctx context.Context, entry domain.FeedEntry, category string, now time.Time, corpus *dedup.Corpus, stats *domain.RunStats) {
	log := s.log.With().Str("category", category).Str("link", entry.Link).Logger()

	if s.store.IsKnownLink(entry.Link) {
		stats.SkippedKnownLink++
		metrics.IncSkip("known_link")
		return
	}
	if corpus.IsDuplicate(entry.Title) {
		stats.SkippedSimilar++
		metrics.IncSkip("similar")
		log.Debug().Str("title", entry.Title).Msg("похожая новость уже в окне")
		return
	}

	text, err := s.articles.FetchText(ctx, entry.Link)
	if err != nil {
		stats.SkippedShortText++
		metrics.IncSkip("short_text")
		log.Warn().Err(err).Msg("текст статьи недоступен")
		return
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < s.cfg.MinChars {
		stats.SkippedShortText++
		metrics.IncSkip("short_text")
		return
	}

	verdict, err := s.classifier.Classify(ctx, entry.Title, text, category)
	if err != nil {
		stats.SkippedClassifier++
		metrics.ClassifierFailures.Inc()
		log.Warn().Err(err).Msg("классификатор не дал вердикт, кандидат пропущен")
		return
	}

	record := domain.StoryRecord{
		Category:    category,
		Title:       entry.Title,
		Link:        entry.Link,
		Summary:     verdict.Summary,
		SocialText:  verdict.SocialText,
		IsMajor:     verdict.IsMajor,
		PublishedAt: now,
	}
	if err := s.store.Insert(record); err != nil {
		stats.SkippedKnownLink++
		metrics.IncSkip("known_link")
		log.Warn().Err(err).Msg("запись не добавлена в окно")
		return
	}
	corpus.Add(entry.Title)
	stats.Ingested++
	metrics.IncIngested(category)
	log.Info().Str("title", entry.Title).Bool("is_major", record.IsMajor).Msg("новость добавлена в окно")

	if s.archive != nil {
		if err := s.archive.ArchiveStory(ctx, record); err != nil {
			log.Warn().Err(err).Msg("новость не попала в архив сайта")
		}
	}
}
