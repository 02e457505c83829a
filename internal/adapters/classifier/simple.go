package classifier

import (
	"context"
	"strings"
	"unicode/utf8"

	"briefly-bot/internal/domain"
)

// SimpleClassifier реализует доменные интерфейсы эвристикой.
// Используется в dev-окружении и как запасной вариант без ключа OpenAI.
type SimpleClassifier struct{}

var (
	_ domain.Classifier   = (*SimpleClassifier)(nil)
	_ domain.ReportWriter = (*SimpleClassifier)(nil)
)

// NewSimple создаёт классификатор.
func NewSimple() *SimpleClassifier {
	return &SimpleClassifier{}
}

// majorMarkers — слова, по которым эвристика считает новость главной.
var majorMarkers = []string{
	"acquisition", "merger", "acquires", "bankruptcy", "billion",
	"rate cut", "rate hike", "sanctions", "ipo",
}

// Classify строит вердикт без обращения к LLM: краткий пересказ из
// первых предложений, плотная строка для карточки из первых слов.
func (s *SimpleClassifier) Classify(_ context.Context, title, excerpt, _ string) (domain.Classification, error) {
	text := strings.TrimSpace(excerpt)
	lowerTitle := strings.ToLower(title)
	isMajor := false
	for _, marker := range majorMarkers {
		if strings.Contains(lowerTitle, marker) {
			isMajor = true
			break
		}
	}
	words := strings.Fields(text)
	summary := strings.Join(words[:min(len(words), 120)], " ")
	social := truncate(strings.Join(words[:min(len(words), 40)], " "), 220)
	return domain.Classification{
		IsMajor:    isMajor,
		Summary:    summary,
		SocialText: social,
	}, nil
}

// WriteReport перечисляет заголовки без генерации.
func (s *SimpleClassifier) WriteReport(_ context.Context, titles []string) (string, error) {
	if len(titles) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString("Top stories of the last 24 hours:\n")
	for _, title := range titles {
		b.WriteString("- ")
		b.WriteString(title)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
