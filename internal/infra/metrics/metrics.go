package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	FeedFetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_fetch_errors_total",
		Help: "Ошибки при опросе RSS-лент",
	})
	StoriesIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stories_ingested_total",
		Help: "Принятые новости по категориям",
	}, []string{"category"})
	CandidatesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "candidates_skipped_total",
		Help: "Отброшенные кандидаты по причинам",
	}, []string{"reason"})
	ClassifierFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classifier_failures_total",
		Help: "Ошибки классификатора",
	})
	BroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broadcasts_total",
		Help: "Зафиксированные рассылки главных новостей",
	})
	RenderErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "render_errors_total",
		Help: "Ошибки рендера карточек",
	})
	PublishErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "publish_errors_total",
		Help: "Ошибки отправки по каналам",
	}, []string{"sink"})
	PipelineRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipeline_run_seconds",
		Help:    "Длительность одного прогона пайплайна",
		Buckets: prometheus.DefBuckets,
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 60},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		FeedFetchErrors,
		StoriesIngested,
		CandidatesSkipped,
		ClassifierFailures,
		BroadcastsTotal,
		RenderErrors,
		PublishErrors,
		PipelineRunSeconds,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}

// IncSkip увеличивает счётчик отброшенных кандидатов.
func IncSkip(reason string) {
	CandidatesSkipped.WithLabelValues(reason).Inc()
}

// IncIngested увеличивает счётчик принятых новостей.
func IncIngested(category string) {
	StoriesIngested.WithLabelValues(category).Inc()
}

// IncPublishError увеличивает счётчик ошибок канала рассылки.
func IncPublishError(sink string) {
	PublishErrors.WithLabelValues(sink).Inc()
}
