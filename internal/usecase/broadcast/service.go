package broadcast

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

// Service выбирает следующую главную новость и раздаёт её по каналам.
// Новость рассылается не более одного раза: после успешного рендера
// ссылка попадает в журнал. Если рендер упал, записи в журнале нет и
// новость остаётся кандидатом на следующий прогон.
type Service struct {
	store      domain.StoryStore
	ledger     domain.BroadcastLedger
	renderer   domain.Renderer
	publishers []domain.Publisher
	imagePath  string
	log        zerolog.Logger
}

// NewService создаёт сервис рассылки.
func NewService(store domain.StoryStore, ledger domain.BroadcastLedger, renderer domain.Renderer, publishers []domain.Publisher, imagePath string, log zerolog.Logger) *Service {
	return &Service{
		store:      store,
		ledger:     ledger,
		renderer:   renderer,
		publishers: publishers,
		imagePath:  imagePath,
		log:        log,
	}
}

// BroadcastNext находит первую подходящую запись в текущем порядке
// хранилища (от новых к старым) и раздаёт её. Возвращает выбранную
// новость и признак того, что рассылка состоялась. Отсутствие
// кандидата — обычный исход, не ошибка.
func (s *Service) BroadcastNext(ctx context.Context) (domain.StoryRecord, bool, error) {
	var selected domain.StoryRecord
	found := false
	for _, record := range s.store.Records() {
		if !record.IsMajor {
			continue
		}
		if s.ledger.Contains(record.Link) {
			continue
		}
		selected = record
		found = true
		break
	}
	if !found {
		s.log.Info().Msg("broadcast: нет новых главных новостей")
		return domain.StoryRecord{}, false, nil
	}

	if err := s.renderer.Render(selected, s.imagePath); err != nil {
		metrics.RenderErrors.Inc()
		return domain.StoryRecord{}, false, fmt.Errorf("рендер карточки: %w", err)
	}

	// Рассылка фиксируется по успешному рендеру. Если журнал не
	// записался, следующая попытка повторит отправку: приемлемая
	// деградация до at-least-once.
	if err := s.ledger.Append(selected.Link); err != nil {
		s.log.Error().Err(err).Str("link", selected.Link).Msg("broadcast: журнал не записан, возможна повторная рассылка")
	}
	metrics.BroadcastsTotal.Inc()

	for _, publisher := range s.publishers {
		if err := publisher.Publish(ctx, selected, s.imagePath); err != nil {
			metrics.IncPublishError(publisher.Name())
			s.log.Error().Err(err).Str("sink", publisher.Name()).Str("link", selected.Link).Msg("broadcast: канал не принял новость")
			continue
		}
		s.log.Info().Str("sink", publisher.Name()).Str("link", selected.Link).Msg("broadcast: отправлено")
	}
	return selected, true, nil
}
