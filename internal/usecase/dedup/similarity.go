package dedup

// SimilarityThreshold — доля пересечения ключевых слов кандидата,
// выше которой заголовок считается повтором темы.
const SimilarityThreshold = 0.7

// Corpus накапливает множества ключевых слов уже принятых новостей.
type Corpus struct {
	sets []Keywords
}

// NewCorpus строит корпус по заголовкам удержанных записей.
func NewCorpus(titles []string) *Corpus {
	c := &Corpus{sets: make([]Keywords, 0, len(titles))}
	for _, title := range titles {
		c.sets = append(c.sets, Extract(title))
	}
	return c
}

// Add дополняет корпус заголовком принятой новости.
func (c *Corpus) Add(title string) {
	c.sets = append(c.sets, Extract(title))
}

// IsDuplicate сообщает, повторяет ли заголовок уже известную тему.
// Доля нормируется на ключевые слова кандидата: короткий заголовок
// совпадает с длинным по той же теме, но длинный не ловится на малой
// части своего содержимого. Пустое множество ключевых слов никогда
// не считается дубликатом. Проверка останавливается на первом
// совпадении: порядок корпуса влияет только на скорость.
func (c *Corpus) IsDuplicate(title string) bool {
	candidate := Extract(title)
	if len(candidate) == 0 {
		return false
	}
	for _, existing := range c.sets {
		common := 0
		for word := range candidate {
			if existing.contains(word) {
				common++
			}
		}
		if float64(common)/float64(len(candidate)) > SimilarityThreshold {
			return true
		}
	}
	return false
}

// Len возвращает размер корпуса.
func (c *Corpus) Len() int {
	return len(c.sets)
}
