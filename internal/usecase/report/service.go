// Package report строит ежедневные сводки трендов: не более одной
// на календарный день, окно хранения ограничено по количеству.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"briefly-bot/internal/domain"
)

const reportDateLayout = "2006-01-02"

// Service генерирует и хранит ежедневные сводки.
type Service struct {
	store         domain.ReportStore
	writer        domain.ReportWriter
	loc           *time.Location
	maxEntries    int
	contextTitles int
	log           zerolog.Logger
}

// NewService создаёт сервис сводок.
func NewService(store domain.ReportStore, writer domain.ReportWriter, loc *time.Location, maxEntries, contextTitles int, log zerolog.Logger) *Service {
	return &Service{
		store:         store,
		writer:        writer,
		loc:           loc,
		maxEntries:    maxEntries,
		contextTitles: contextTitles,
		log:           log.With().Str("component", "report").Logger(),
	}
}

// Generate строит сводку за календарный день now, если её ещё нет.
// Повторный вызов в тот же день ничего не делает, пустой список
// новостей тоже.
func (s *Service) Generate(ctx context.Context, stories []domain.StoryRecord, now time.Time) error {
	if len(stories) == 0 {
		return nil
	}

	date := now.In(s.loc).Format(reportDateLayout)
	reports, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("загрузка сводок: %w", err)
	}
	for _, report := range reports {
		if report.Date == date {
			return nil
		}
	}

	titles := make([]string, 0, s.contextTitles)
	for _, story := range stories {
		if len(titles) == s.contextTitles {
			break
		}
		titles = append(titles, story.Title)
	}

	content, err := s.writer.WriteReport(ctx, titles)
	if err != nil {
		return fmt.Errorf("генерация сводки: %w", err)
	}

	reports = append([]domain.DailyReport{{Date: date, Content: content}}, reports...)
	if s.maxEntries > 0 && len(reports) > s.maxEntries {
		reports = reports[:s.maxEntries]
	}
	if err := s.store.Save(reports); err != nil {
		return fmt.Errorf("сохранение сводок: %w", err)
	}

	s.log.Info().Str("date", date).Int("titles", len(titles)).Msg("сводка за день сохранена")
	return nil
}
