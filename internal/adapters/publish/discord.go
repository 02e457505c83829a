package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

// DiscordPublisher публикует карточку в канал через webhook.
type DiscordPublisher struct {
	webhookURL string
	httpClient *http.Client
}

var _ domain.Publisher = (*DiscordPublisher)(nil)

// NewDiscord создаёт паблишер Discord.
func NewDiscord(webhookURL string, timeout time.Duration) *DiscordPublisher {
	return &DiscordPublisher{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name возвращает имя канала рассылки.
func (p *DiscordPublisher) Name() string { return "discord" }

type discordEmbed struct {
	Title       string             `json:"title"`
	URL         string             `json:"url"`
	Description string             `json:"description"`
	Color       int                `json:"color"`
	Image       *discordEmbedImage `json:"image,omitempty"`
	Footer      discordEmbedFooter `json:"footer"`
}

type discordEmbedImage struct {
	URL string `json:"url"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Publish отправляет embed с приложенной карточкой одним
// multipart-запросом: файл в части files[0], embed ссылается на него
// через attachment://.
func (p *DiscordPublisher) Publish(ctx context.Context, story domain.StoryRecord, imagePath string) error {
	image, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("чтение карточки для Discord: %w", err)
	}
	defer image.Close()

	fileName := filepath.Base(imagePath)
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{{
			Title:       story.Title,
			URL:         story.Link,
			Description: socialOrFallback(story),
			Color:       0x3B82F6,
			Image:       &discordEmbedImage{URL: "attachment://" + fileName},
			Footer:      discordEmbedFooter{Text: "Briefly Intelligence"},
		}},
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("сериализация webhook-пейлоада: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormField("payload_json")
	if err != nil {
		return fmt.Errorf("сборка multipart-запроса: %w", err)
	}
	if _, err := part.Write(payloadJSON); err != nil {
		return fmt.Errorf("сборка multipart-запроса: %w", err)
	}
	filePart, err := writer.CreateFormFile("files[0]", fileName)
	if err != nil {
		return fmt.Errorf("сборка multipart-запроса: %w", err)
	}
	if _, err := io.Copy(filePart, image); err != nil {
		return fmt.Errorf("копирование карточки в запрос: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("сборка multipart-запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, &body)
	if err != nil {
		return fmt.Errorf("создание запроса к Discord: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	metrics.ObserveNetworkRequest("discord", "webhook_execute", "", start, err)
	if err != nil {
		return fmt.Errorf("запрос к Discord: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord webhook вернул статус %d: %s", resp.StatusCode, raw)
	}
	return nil
}
