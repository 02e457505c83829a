package dedup

import (
	"strings"
	"unicode"
)

// minKeywordLen отсекает предлоги, артикли и прочий шум.
const minKeywordLen = 4

// Keywords — нормализованное множество токенов заголовка.
type Keywords map[string]struct{}

// Extract выделяет из текста максимальные последовательности букв и цифр
// длиной не короче четырёх рун, в нижнем регистре. Дубликаты схлопываются.
func Extract(text string) Keywords {
	set := make(Keywords)
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		word := b.String()
		b.Reset()
		if len([]rune(word)) >= minKeywordLen {
			set[word] = struct{}{}
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return set
}

func (k Keywords) contains(word string) bool {
	_, ok := k[word]
	return ok
}
