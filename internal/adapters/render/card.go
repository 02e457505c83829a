package render

import (
	"fmt"
	"strings"

	"github.com/fogleman/gg"

	"briefly-bot/internal/domain"
)

// Размеры квадратной карточки под Instagram.
const (
	cardSize    = 1080
	jpegQuality = 90
)

// CardRenderer рисует карточку новости: категория в рамке, дата,
// заголовок и плотный текст. Раскладка и палитра повторяют фирменный
// стиль briefly.life.
type CardRenderer struct {
	fontPath string
}

var _ domain.Renderer = (*CardRenderer)(nil)

// NewCardRenderer создаёт рендерер. Пустой fontPath означает
// встроенный растровый шрифт.
func NewCardRenderer(fontPath string) *CardRenderer {
	return &CardRenderer{fontPath: fontPath}
}

// Render сохраняет карточку по указанному пути в формате JPEG.
func (r *CardRenderer) Render(story domain.StoryRecord, path string) error {
	dc := gg.NewContext(cardSize, cardSize)

	// Фон почти чёрный, акцент фирменный синий.
	dc.SetRGB255(10, 10, 10)
	dc.Clear()

	titleFont := false
	if r.fontPath != "" {
		if err := dc.LoadFontFace(r.fontPath, 30); err != nil {
			return fmt.Errorf("загрузка шрифта: %w", err)
		}
		titleFont = true
	}

	// Категория в синей рамке.
	dc.SetRGB255(59, 130, 246)
	dc.SetLineWidth(3)
	dc.DrawRectangle(50, 50, 150, 50)
	dc.Stroke()
	dc.DrawStringAnchored(strings.ToUpper(story.Category), 125, 75, 0.5, 0.5)

	// Дата публикации справа сверху.
	dc.SetRGB255(100, 100, 100)
	dc.DrawStringAnchored(story.PublishedAt.Format("2006-01-02 15:04"), 1030, 75, 1, 0.5)

	// Заголовок с переносом строк.
	if titleFont {
		if err := dc.LoadFontFace(r.fontPath, 60); err != nil {
			return fmt.Errorf("загрузка шрифта: %w", err)
		}
	}
	dc.SetRGB255(255, 255, 255)
	dc.DrawStringWrapped(story.Title, 50, 250, 0, 0, 980, 1.4, gg.AlignLeft)

	// Плотный текст для карточки, если классификатор его дал.
	if social := strings.TrimSpace(story.SocialText); social != "" {
		if titleFont {
			if err := dc.LoadFontFace(r.fontPath, 30); err != nil {
				return fmt.Errorf("загрузка шрифта: %w", err)
			}
		}
		dc.SetRGB255(180, 180, 180)
		dc.DrawStringWrapped(clipRunes(social, 220), 50, 700, 0, 0, 980, 1.5, gg.AlignLeft)
	}

	if err := gg.SaveJPG(path, dc.Image(), jpegQuality); err != nil {
		return fmt.Errorf("сохранение карточки: %w", err)
	}
	return nil
}

func clipRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
