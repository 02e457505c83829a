package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"briefly-bot/internal/domain"
)

func TestReportStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_summaries.json")
	store := NewFileReportStore(path, zerolog.Nop())

	reports := []domain.DailyReport{
		{Date: "2025-03-02", Content: "свежая сводка"},
		{Date: "2025-03-01", Content: "вчерашняя сводка"},
	}
	if err := store.Save(reports); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("ожидали 2 сводки, получили %d", len(loaded))
	}
	if loaded[0].Date != "2025-03-02" {
		t.Fatalf("порядок сводок должен сохраняться: %v", loaded)
	}
}

func TestReportStoreMissingFile(t *testing.T) {
	store := NewFileReportStore(filepath.Join(t.TempDir(), "daily_summaries.json"), zerolog.Nop())
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("отсутствующий файл не должен быть ошибкой: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("ожидали пустой список")
	}
}

func TestReportStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_summaries.json")
	if err := os.WriteFile(path, []byte("[{"), 0o644); err != nil {
		t.Fatalf("подготовка файла: %v", err)
	}
	store := NewFileReportStore(path, zerolog.Nop())
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("испорченный файл не должен быть ошибкой: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("испорченный файл трактуется как пустой список")
	}
}
