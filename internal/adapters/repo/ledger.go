package repo

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"briefly-bot/internal/domain"
)

// FileLedger хранит разосланные ссылки построчно, только добавление.
// Ротацию файла обеспечивает внешнее окружение, не это ядро.
type FileLedger struct {
	path  string
	links map[string]struct{}
}

var _ domain.BroadcastLedger = (*FileLedger)(nil)

// NewFileLedger создаёт журнал поверх файла по указанному пути.
func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path, links: make(map[string]struct{})}
}

// Load читает журнал. Отсутствующий файл означает пустой журнал.
func (l *FileLedger) Load() error {
	l.links = make(map[string]struct{})
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("чтение журнала рассылки: %w", err)
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		link := strings.TrimSpace(scanner.Text())
		if link == "" {
			continue
		}
		l.links[link] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("чтение журнала рассылки: %w", err)
	}
	return nil
}

// Contains сообщает, была ли ссылка уже разослана.
func (l *FileLedger) Contains(link string) bool {
	_, ok := l.links[link]
	return ok
}

// Append дописывает ссылку в журнал. Повторное добавление — no-op:
// ссылка встречается в журнале не более одного раза.
func (l *FileLedger) Append(link string) error {
	if l.Contains(link) {
		return nil
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("открытие журнала рассылки: %w", err)
	}
	defer file.Close()
	if _, err := file.WriteString(link + "\n"); err != nil {
		return fmt.Errorf("запись в журнал рассылки: %w", err)
	}
	l.links[link] = struct{}{}
	return nil
}
