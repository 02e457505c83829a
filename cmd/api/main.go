package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"briefly-bot/internal/adapters/repo"
	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/config"
	applog "briefly-bot/internal/infra/log"
	"briefly-bot/internal/infra/metrics"
)

// storyResponse описывает новость в ответе API сайта.
type storyResponse struct {
	Category   string `json:"category"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Summary    string `json:"summary"`
	SocialText string `json:"social_text"`
	IsMajor    bool   `json:"is_major"`
	Date       string `json:"date"`
}

type reportResponse struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv).With().Str("service", "api").Logger()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.TZ).Msg("api: неизвестная отчётная зона")
	}

	store := repo.NewFileStore(filepath.Join(cfg.DataDir, cfg.StoreFile), loc, logger)
	reportStore := repo.NewFileReportStore(filepath.Join(cfg.DataDir, cfg.ReportsFile), logger)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	r.Get("/api/v1/news", func(w http.ResponseWriter, r *http.Request) {
		records, err := loadRecords(store)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load news")
			return
		}
		writeJSON(w, map[string]any{"items": toResponses(records, false)})
	})

	r.Get("/api/v1/news/major", func(w http.ResponseWriter, r *http.Request) {
		records, err := loadRecords(store)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load news")
			return
		}
		writeJSON(w, map[string]any{"items": toResponses(records, true)})
	})

	r.Get("/api/v1/reports", func(w http.ResponseWriter, r *http.Request) {
		reports, err := reportStore.Load()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load reports")
			return
		}
		items := make([]reportResponse, 0, len(reports))
		for _, report := range reports {
			items = append(items, reportResponse{Date: report.Date, Content: report.Content})
		}
		writeJSON(w, map[string]any{"items": items})
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), ":9090")
	go func() {
		logger.Info().Int("port", cfg.Port).Msg("api: старт")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("api: сервер остановлен")
		}
	}()
	<-ctx.Done()
	logger.Info().Msg("api: остановка")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// loadRecords перечитывает файл на каждый запрос: пайплайн обновляет
// его атомарной заменой, конкурентный доступ закрыт внутри FileStore.
func loadRecords(store *repo.FileStore) ([]domain.StoryRecord, error) {
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store.Records(), nil
}

func toResponses(records []domain.StoryRecord, majorOnly bool) []storyResponse {
	items := make([]storyResponse, 0, len(records))
	for _, record := range records {
		if majorOnly && !record.IsMajor {
			continue
		}
		items = append(items, storyResponse{
			Category:   record.Category,
			Title:      record.Title,
			Link:       record.Link,
			Summary:    record.Summary,
			SocialText: record.SocialText,
			IsMajor:    record.IsMajor,
			Date:       record.PublishedAt.Format("2006-01-02 15:04"),
		})
	}
	return items
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
