package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"briefly-bot/internal/domain"
)

// FileReportStore хранит ежедневные сводки в одном JSON-файле,
// от новых к старым.
type FileReportStore struct {
	path string
	log  zerolog.Logger
}

var _ domain.ReportStore = (*FileReportStore)(nil)

// NewFileReportStore создаёт хранилище сводок.
func NewFileReportStore(path string, log zerolog.Logger) *FileReportStore {
	return &FileReportStore{path: path, log: log}
}

type storedReport struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Load читает сводки. Отсутствующий или испорченный файл — пустой список.
func (s *FileReportStore) Load() ([]domain.DailyReport, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("reports: файл не прочитан, начинаем с пустого списка")
		}
		return nil, nil
	}
	var stored []storedReport
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("reports: файл повреждён, начинаем с пустого списка")
		return nil, nil
	}
	reports := make([]domain.DailyReport, 0, len(stored))
	for _, item := range stored {
		reports = append(reports, domain.DailyReport{Date: item.Date, Content: item.Content})
	}
	return reports, nil
}

// Save записывает список сводок целиком через временный файл и rename.
func (s *FileReportStore) Save(reports []domain.DailyReport) error {
	stored := make([]storedReport, 0, len(reports))
	for _, report := range reports {
		stored = append(stored, storedReport{Date: report.Date, Content: report.Content})
	}
	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация сводок: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("временный файл сводок: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("запись сводок: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("закрытие файла сводок: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("замена файла сводок: %w", err)
	}
	return nil
}
