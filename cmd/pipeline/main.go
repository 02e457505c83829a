package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"briefly-bot/internal/adapters/article"
	"briefly-bot/internal/adapters/classifier"
	"briefly-bot/internal/adapters/feed"
	"briefly-bot/internal/adapters/publish"
	"briefly-bot/internal/adapters/render"
	"briefly-bot/internal/adapters/repo"
	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/cache"
	"briefly-bot/internal/infra/config"
	"briefly-bot/internal/infra/db"
	applog "briefly-bot/internal/infra/log"
	"briefly-bot/internal/infra/metrics"
	"briefly-bot/internal/infra/openai"
	"briefly-bot/internal/usecase/broadcast"
	"briefly-bot/internal/usecase/ingest"
	"briefly-bot/internal/usecase/report"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv).With().
		Str("service", "pipeline").
		Str("run_id", uuid.NewString()).
		Logger()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Эндпоинт /metrics доступен только на время прогона.
	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.TZ).Msg("pipeline: неизвестная отчётная зона")
	}

	store := repo.NewFileStore(filepath.Join(cfg.DataDir, cfg.StoreFile), loc, logger)
	ledger := repo.NewFileLedger(filepath.Join(cfg.DataDir, cfg.LedgerFile))
	if err := ledger.Load(); err != nil {
		logger.Fatal().Err(err).Msg("pipeline: журнал рассылок не читается")
	}
	reportStore := repo.NewFileReportStore(filepath.Join(cfg.DataDir, cfg.ReportsFile), logger)
	imagePath := filepath.Join(cfg.DataDir, cfg.ImageFile)

	feeds := feed.NewRSSSource(cfg.Feeds.Timeout)

	var articles domain.ArticleFetcher = article.NewExtractor(cfg.Article.Timeout)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		articles = article.NewCachedFetcher(articles, cache.NewRedis(redisClient), cfg.Article.CacheTTL)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("pipeline: включён кэш текстов статей")
	}

	var verdicts domain.Classifier
	var reporter domain.ReportWriter
	if cfg.OpenAI.APIKey != "" {
		llm := classifier.NewOpenAI(openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout), cfg.OpenAI.Model, cfg.OpenAI.Timeout)
		verdicts, reporter = llm, llm
	} else {
		simple := classifier.NewSimple()
		verdicts, reporter = simple, simple
		logger.Warn().Msg("pipeline: ключ OpenAI не задан, работает эвристический классификатор")
	}

	var archive domain.StoryArchive
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("pipeline: нет подключения к БД")
		}
		defer pool.Close()
		archive = repo.NewPostgresArchive(pool)
	}

	publishers := buildPublishers(cfg, logger)

	reports := report.NewService(reportStore, reporter, loc, cfg.Reports.MaxEntries, cfg.Reports.ContextTitles, logger)
	ingestService := ingest.NewService(
		ingest.Config{
			Sources:        cfg.Feeds.Sources,
			EntriesPerFeed: cfg.Feeds.EntriesPerFeed,
			MinChars:       cfg.Article.MinChars,
			MaxAge:         cfg.Retention.MaxAge,
			MaxCount:       cfg.Retention.MaxCount,
		},
		store, feeds, articles, verdicts, archive, reports, loc, logger,
	)
	broadcastService := broadcast.NewService(store, ledger, render.NewCardRenderer(cfg.Render.FontPath), publishers, imagePath, logger)

	start := time.Now()
	stats, err := ingestService.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("pipeline: прогон прерван")
	}
	logger.Info().
		Int("sources_scanned", stats.SourcesScanned).
		Int("source_errors", stats.SourceErrors).
		Int("ingested", stats.Ingested).
		Int("skipped_known_link", stats.SkippedKnownLink).
		Int("skipped_similar", stats.SkippedSimilar).
		Int("skipped_short_text", stats.SkippedShortText).
		Int("skipped_classifier", stats.SkippedClassifier).
		Int("retained", stats.Retained).
		Bool("persist_failed", stats.PersistFailed).
		Msg("pipeline: опрос лент завершён")

	story, sent, err := broadcastService.BroadcastNext(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("pipeline: рассылка не состоялась")
	} else if sent {
		logger.Info().Str("link", story.Link).Str("title", story.Title).Msg("pipeline: главная новость разослана")
	}

	metrics.PipelineRunSeconds.Observe(time.Since(start).Seconds())
	logger.Info().Dur("took", time.Since(start)).Msg("pipeline: прогон завершён")
}

// buildPublishers собирает каналы рассылки по заполненным секциям конфига.
func buildPublishers(cfg config.AppConfig, logger zerolog.Logger) []domain.Publisher {
	var publishers []domain.Publisher

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			logger.Fatal().Err(err).Msg("pipeline: Telegram-бот не инициализирован")
		}
		publishers = append(publishers, publish.NewTelegram(bot, cfg.Telegram.ChatID))
	}
	if cfg.Discord.WebhookURL != "" {
		publishers = append(publishers, publish.NewDiscord(cfg.Discord.WebhookURL, 15*time.Second))
	}
	if cfg.Twitter.BearerToken != "" {
		publishers = append(publishers, publish.NewTwitter(cfg.Twitter.BearerToken, 15*time.Second))
	}
	if cfg.Instagram.AccessToken != "" && cfg.Instagram.UserID != "" && cfg.Instagram.ImageBaseURL != "" {
		publishers = append(publishers, publish.NewInstagram(cfg.Instagram.AccessToken, cfg.Instagram.UserID, cfg.Instagram.ImageBaseURL, 30*time.Second))
	}

	if len(publishers) == 0 {
		logger.Warn().Msg("pipeline: каналы рассылки не настроены, будет только рендер карточки")
	}
	return publishers
}
