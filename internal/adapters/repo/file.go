package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"briefly-bot/internal/domain"
)

// ErrDuplicateLink возвращается при попытке вставить уже известную ссылку.
var ErrDuplicateLink = errors.New("ссылка уже есть в хранилище")

// storeTimeLayout совпадает с форматом дат исходного файла news_data.json.
const storeTimeLayout = "2006-01-02 15:04"

// FileStore хранит рабочее окно новостей в одном JSON-файле.
// Файл принадлежит процессу на время прогона, запись всегда целиком.
// Доступ к окну защищён мьютексом: API сайта перечитывает файл на
// каждый запрос из конкурентных обработчиков.
type FileStore struct {
	path string
	loc  *time.Location
	log  zerolog.Logger

	mu      sync.RWMutex
	records []domain.StoryRecord
}

var _ domain.StoryStore = (*FileStore)(nil)

// NewFileStore создаёт хранилище поверх файла по указанному пути.
func NewFileStore(path string, loc *time.Location, log zerolog.Logger) *FileStore {
	if loc == nil {
		loc = time.UTC
	}
	return &FileStore{path: path, loc: loc, log: log}
}

// storedStory — схема одной записи на диске.
type storedStory struct {
	Category   string `json:"category"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	Summary    string `json:"summary"`
	SocialText string `json:"social_text"`
	IsMajor    bool   `json:"is_major"`
	Date       string `json:"date"`
}

// Load читает файл хранилища. Отсутствующий или испорченный файл
// трактуется как пустое хранилище: прогон начинается с чистого окна.
func (s *FileStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("store: файл не прочитан, начинаем с пустого окна")
		}
		s.replace(nil)
		return nil
	}
	var stored []storedStory
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("store: файл повреждён, начинаем с пустого окна")
		s.replace(nil)
		return nil
	}
	records := make([]domain.StoryRecord, 0, len(stored))
	for _, item := range stored {
		publishedAt, err := time.ParseInLocation(storeTimeLayout, item.Date, s.loc)
		if err != nil {
			s.log.Warn().Str("link", item.Link).Str("date", item.Date).Msg("store: запись с нечитаемой датой отброшена")
			continue
		}
		records = append(records, domain.StoryRecord{
			Category:    item.Category,
			Title:       item.Title,
			Link:        item.Link,
			Summary:     item.Summary,
			SocialText:  item.SocialText,
			IsMajor:     item.IsMajor,
			PublishedAt: publishedAt,
		})
	}
	sortNewestFirst(records)
	s.replace(records)
	return nil
}

// replace подменяет окно целиком под блокировкой записи.
func (s *FileStore) replace(records []domain.StoryRecord) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// Records возвращает удержанные записи от новых к старым.
func (s *FileStore) Records() []domain.StoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StoryRecord, len(s.records))
	copy(out, s.records)
	return out
}

// IsKnownLink проверяет ссылку по всем удержанным записям.
func (s *FileStore) IsKnownLink(link string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.knownLinkLocked(link)
}

func (s *FileStore) knownLinkLocked(link string) bool {
	for _, record := range s.records {
		if record.Link == link {
			return true
		}
	}
	return false
}

// Insert добавляет запись в начало окна. Ссылка должна быть уникальна;
// запись сразу видна последующим проверкам в рамках того же прогона.
func (s *FileStore) Insert(record domain.StoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.knownLinkLocked(record.Link) {
		return fmt.Errorf("%w: %s", ErrDuplicateLink, record.Link)
	}
	s.records = append([]domain.StoryRecord{record}, s.records...)
	return nil
}

// Prune удаляет записи старше maxAge (запись ровно возраста maxAge
// удерживается) и, если maxCount > 0, обрезает окно до maxCount самых
// свежих записей. Перед отсечением выполняется полная пересортировка.
func (s *FileStore) Prune(now time.Time, maxAge time.Duration, maxCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sortNewestFirst(s.records)
	if maxAge > 0 {
		cutoff := now.Add(-maxAge)
		kept := s.records[:0]
		for _, record := range s.records {
			if !record.PublishedAt.Before(cutoff) {
				kept = append(kept, record)
			}
		}
		s.records = kept
	}
	if maxCount > 0 && len(s.records) > maxCount {
		s.records = s.records[:maxCount]
	}
}

// Persist записывает окно целиком: сортировка, временный файл, rename.
func (s *FileStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sortNewestFirst(s.records)
	stored := make([]storedStory, 0, len(s.records))
	for _, record := range s.records {
		stored = append(stored, storedStory{
			Category:   record.Category,
			Title:      record.Title,
			Link:       record.Link,
			Summary:    record.Summary,
			SocialText: record.SocialText,
			IsMajor:    record.IsMajor,
			Date:       record.PublishedAt.In(s.loc).Format(storeTimeLayout),
		})
	}
	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация хранилища: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("временный файл хранилища: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("запись хранилища: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("закрытие файла хранилища: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("замена файла хранилища: %w", err)
	}
	return nil
}

// Len возвращает размер окна.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func sortNewestFirst(records []domain.StoryRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PublishedAt.After(records[j].PublishedAt)
	})
}
