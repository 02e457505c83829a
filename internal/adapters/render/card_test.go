package render

import (
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"briefly-bot/internal/domain"
)

func TestRenderWritesJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_news_post.jpg")
	renderer := NewCardRenderer("")
	story := domain.StoryRecord{
		Category:    domain.CategoryMarkets,
		Title:       "Acme buys Globex for $2B in landmark deal",
		SocialText:  "Acme pays $2B for Globex, its largest deal, reshaping the widget market.",
		PublishedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := renderer.Render(story, path); err != nil {
		t.Fatalf("не ожидали ошибку рендера: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("карточка не записана: %v", err)
	}
	defer file.Close()
	img, format, err := image.Decode(file)
	if err != nil {
		t.Fatalf("карточка не декодируется: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("ожидали jpeg, получили %s", format)
	}
	bounds := img.Bounds()
	if bounds.Dx() != cardSize || bounds.Dy() != cardSize {
		t.Fatalf("ожидали карточку %dx%d, получили %dx%d", cardSize, cardSize, bounds.Dx(), bounds.Dy())
	}
}

func TestRenderMissingFontFails(t *testing.T) {
	renderer := NewCardRenderer(filepath.Join(t.TempDir(), "нет-такого.ttf"))
	story := domain.StoryRecord{Category: domain.CategoryTech, Title: "title", PublishedAt: time.Now()}
	if err := renderer.Render(story, filepath.Join(t.TempDir(), "card.jpg")); err == nil {
		t.Fatalf("отсутствующий шрифт должен быть ошибкой")
	}
}

func TestRenderEmptySocialText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.jpg")
	renderer := NewCardRenderer("")
	story := domain.StoryRecord{
		Category:    domain.CategoryTech,
		Title:       "Short title",
		PublishedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := renderer.Render(story, path); err != nil {
		t.Fatalf("карточка без плотного текста должна рендериться: %v", err)
	}
}
