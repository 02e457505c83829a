package broadcast

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"briefly-bot/internal/adapters/repo"
	"briefly-bot/internal/domain"
)

type stubStore struct {
	records []domain.StoryRecord
}

func (s *stubStore) Load() error                         { return nil }
func (s *stubStore) Records() []domain.StoryRecord       { return s.records }
func (s *stubStore) IsKnownLink(string) bool             { return false }
func (s *stubStore) Insert(domain.StoryRecord) error     { return nil }
func (s *stubStore) Prune(time.Time, time.Duration, int) {}
func (s *stubStore) Persist() error                      { return nil }

type memLedger struct {
	links     map[string]struct{}
	appendErr error
}

func newMemLedger() *memLedger { return &memLedger{links: make(map[string]struct{})} }

func (l *memLedger) Load() error { return nil }
func (l *memLedger) Contains(link string) bool {
	_, ok := l.links[link]
	return ok
}
func (l *memLedger) Append(link string) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.links[link] = struct{}{}
	return nil
}

type stubRenderer struct {
	err   error
	calls int
}

func (r *stubRenderer) Render(domain.StoryRecord, string) error {
	r.calls++
	return r.err
}

type stubPublisher struct {
	name   string
	err    error
	seen   []string
	images []string
}

func (p *stubPublisher) Name() string { return p.name }
func (p *stubPublisher) Publish(_ context.Context, story domain.StoryRecord, imagePath string) error {
	p.seen = append(p.seen, story.Link)
	p.images = append(p.images, imagePath)
	return p.err
}

func major(link string, publishedAt time.Time) domain.StoryRecord {
	return domain.StoryRecord{Title: "title " + link, Link: link, IsMajor: true, PublishedAt: publishedAt}
}

func TestBroadcastNextSelectsMajorAndRecordsOnce(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{records: []domain.StoryRecord{
		major("https://example.com/a", now),
		{Title: "minor", Link: "https://example.com/b", IsMajor: false, PublishedAt: now.Add(-time.Hour)},
	}}
	ledger := newMemLedger()
	renderer := &stubRenderer{}
	sink := &stubPublisher{name: "telegram"}
	service := NewService(store, ledger, renderer, []domain.Publisher{sink}, "card.jpg", zerolog.Nop())

	story, ok, err := service.BroadcastNext(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !ok || story.Link != "https://example.com/a" {
		t.Fatalf("ожидали рассылку новости a, получили %v", story)
	}
	if !ledger.Contains("https://example.com/a") {
		t.Fatalf("ссылка должна попасть в журнал")
	}
	if len(sink.seen) != 1 || sink.seen[0] != "https://example.com/a" {
		t.Fatalf("канал должен получить ровно одну новость")
	}

	// Повторный вызов без изменений: рассылать нечего.
	_, ok, err = service.BroadcastNext(context.Background())
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if ok {
		t.Fatalf("повторная рассылка той же новости запрещена")
	}
	if len(sink.seen) != 1 {
		t.Fatalf("канал не должен получить новость второй раз")
	}
}

func TestBroadcastNextNothingEligible(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{records: []domain.StoryRecord{
		{Title: "minor", Link: "https://example.com/b", PublishedAt: now},
	}}
	service := NewService(store, newMemLedger(), &stubRenderer{}, nil, "card.jpg", zerolog.Nop())

	_, ok, err := service.BroadcastNext(context.Background())
	if err != nil {
		t.Fatalf("отсутствие кандидата не ошибка: %v", err)
	}
	if ok {
		t.Fatalf("не ожидали рассылку")
	}
}

func TestBroadcastNextDrainsEligibleOneByOne(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{records: []domain.StoryRecord{
		major("https://example.com/new", now),
		major("https://example.com/old", now.Add(-2*time.Hour)),
	}}
	ledger := newMemLedger()
	service := NewService(store, ledger, &stubRenderer{}, nil, "card.jpg", zerolog.Nop())

	first, ok, err := service.BroadcastNext(context.Background())
	if err != nil || !ok {
		t.Fatalf("ожидали первую рассылку: %v", err)
	}
	if first.Link != "https://example.com/new" {
		t.Fatalf("свежая новость выигрывает у старой, получили %s", first.Link)
	}

	second, ok, err := service.BroadcastNext(context.Background())
	if err != nil || !ok {
		t.Fatalf("ожидали вторую рассылку: %v", err)
	}
	if second.Link != "https://example.com/old" {
		t.Fatalf("второй должна уйти старая новость, получили %s", second.Link)
	}

	_, ok, _ = service.BroadcastNext(context.Background())
	if ok {
		t.Fatalf("после двух рассылок кандидатов не осталось")
	}
}

func TestBroadcastNextTieBreakOnEqualTimestamps(t *testing.T) {
	// Две главные новости с одной и той же датой публикации: выигрывает
	// добавленная позже, потому что вставка ставит её в начало окна, а
	// стабильная сортировка не меняет порядок равных дат.
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := repo.NewFileStore(filepath.Join(t.TempDir(), "news_data.json"), time.UTC, zerolog.Nop())
	if err := store.Insert(major("https://example.com/first", now)); err != nil {
		t.Fatalf("не ожидали ошибку вставки: %v", err)
	}
	if err := store.Insert(major("https://example.com/second", now)); err != nil {
		t.Fatalf("не ожидали ошибку вставки: %v", err)
	}
	ledger := newMemLedger()
	service := NewService(store, ledger, &stubRenderer{}, nil, filepath.Join(t.TempDir(), "card.jpg"), zerolog.Nop())

	first, ok, err := service.BroadcastNext(context.Background())
	if err != nil || !ok {
		t.Fatalf("ожидали первую рассылку: %v", err)
	}
	if first.Link != "https://example.com/second" {
		t.Fatalf("при равных датах выигрывает более поздняя вставка, получили %s", first.Link)
	}

	second, ok, err := service.BroadcastNext(context.Background())
	if err != nil || !ok {
		t.Fatalf("ожидали вторую рассылку: %v", err)
	}
	if second.Link != "https://example.com/first" {
		t.Fatalf("второй должна уйти ранняя вставка, получили %s", second.Link)
	}
}

func TestBroadcastNextRenderFailureKeepsEligible(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{records: []domain.StoryRecord{major("https://example.com/a", now)}}
	ledger := newMemLedger()
	renderer := &stubRenderer{err: errors.New("диск переполнен")}
	sink := &stubPublisher{name: "telegram"}
	service := NewService(store, ledger, renderer, []domain.Publisher{sink}, "card.jpg", zerolog.Nop())

	_, ok, err := service.BroadcastNext(context.Background())
	if err == nil || ok {
		t.Fatalf("ошибка рендера должна прерывать рассылку")
	}
	if ledger.Contains("https://example.com/a") {
		t.Fatalf("при ошибке рендера журнал не пишется")
	}
	if len(sink.seen) != 0 {
		t.Fatalf("каналы не должны получать новость при ошибке рендера")
	}

	// Следующий прогон может повторить попытку.
	renderer.err = nil
	_, ok, err = service.BroadcastNext(context.Background())
	if err != nil || !ok {
		t.Fatalf("новость должна остаться кандидатом: %v", err)
	}
}

func TestBroadcastNextPublisherFailureStillRecorded(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{records: []domain.StoryRecord{major("https://example.com/a", now)}}
	ledger := newMemLedger()
	broken := &stubPublisher{name: "discord", err: errors.New("webhook 500")}
	healthy := &stubPublisher{name: "telegram"}
	service := NewService(store, ledger, &stubRenderer{}, []domain.Publisher{broken, healthy}, "card.jpg", zerolog.Nop())

	_, ok, err := service.BroadcastNext(context.Background())
	if err != nil || !ok {
		t.Fatalf("отказ одного канала не прерывает рассылку: %v", err)
	}
	if !ledger.Contains("https://example.com/a") {
		t.Fatalf("рассылка фиксируется по успешному рендеру")
	}
	if len(healthy.seen) != 1 {
		t.Fatalf("остальные каналы должны получить новость")
	}
}

func TestBroadcastNextLedgerFailureDoesNotAbort(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &stubStore{records: []domain.StoryRecord{major("https://example.com/a", now)}}
	ledger := newMemLedger()
	ledger.appendErr = errors.New("нет места")
	sink := &stubPublisher{name: "telegram"}
	service := NewService(store, ledger, &stubRenderer{}, []domain.Publisher{sink}, "card.jpg", zerolog.Nop())

	_, ok, err := service.BroadcastNext(context.Background())
	if err != nil || !ok {
		t.Fatalf("ошибка журнала не фатальна: %v", err)
	}
	if len(sink.seen) != 1 {
		t.Fatalf("каналы всё равно получают новость")
	}
}
