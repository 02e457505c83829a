package publish

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

// TelegramPublisher отправляет карточку с подписью в канал через Bot API.
type TelegramPublisher struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ domain.Publisher = (*TelegramPublisher)(nil)

// NewTelegram создаёт паблишер Telegram.
func NewTelegram(bot *tgbotapi.BotAPI, chatID int64) *TelegramPublisher {
	return &TelegramPublisher{bot: bot, chatID: chatID}
}

// Name возвращает имя канала рассылки.
func (p *TelegramPublisher) Name() string { return "telegram" }

// Publish отправляет фото с подписью.
func (p *TelegramPublisher) Publish(_ context.Context, story domain.StoryRecord, imagePath string) error {
	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FilePath(imagePath))
	photo.Caption = telegramCaption(story)
	photo.ParseMode = tgbotapi.ModeMarkdown

	start := time.Now()
	_, err := p.bot.Send(photo)
	metrics.ObserveNetworkRequest("telegram_bot", "send_photo", strconv.FormatInt(p.chatID, 10), start, err)
	if err != nil {
		return fmt.Errorf("отправка фото в Telegram: %w", err)
	}
	return nil
}
