package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

const instagramGraphURL = "https://graph.facebook.com/v19.0"

// InstagramPublisher публикует карточку через Graph API в два шага:
// создание media-контейнера по публичному URL картинки и его публикация.
type InstagramPublisher struct {
	accessToken  string
	userID       string
	imageBaseURL string
	httpClient   *http.Client
}

var _ domain.Publisher = (*InstagramPublisher)(nil)

// NewInstagram создаёт паблишер Instagram. imageBaseURL указывает на
// каталог, где отрендеренная карточка доступна по HTTP.
func NewInstagram(accessToken, userID, imageBaseURL string, timeout time.Duration) *InstagramPublisher {
	return &InstagramPublisher{
		accessToken:  accessToken,
		userID:       userID,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Name возвращает имя канала рассылки.
func (p *InstagramPublisher) Name() string { return "instagram" }

// Publish создаёт контейнер и публикует его.
func (p *InstagramPublisher) Publish(ctx context.Context, story domain.StoryRecord, imagePath string) error {
	imageURL := p.imageBaseURL + "/" + filepath.Base(imagePath)

	creationID, err := p.createContainer(ctx, imageURL, instagramCaption(story))
	if err != nil {
		return fmt.Errorf("создание media-контейнера: %w", err)
	}
	if err := p.publishContainer(ctx, creationID); err != nil {
		return fmt.Errorf("публикация контейнера %s: %w", creationID, err)
	}
	return nil
}

func (p *InstagramPublisher) createContainer(ctx context.Context, imageURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", caption)
	form.Set("access_token", p.accessToken)

	endpoint := fmt.Sprintf("%s/%s/media", instagramGraphURL, p.userID)
	var result struct {
		ID string `json:"id"`
	}
	if err := p.postForm(ctx, "media_create", endpoint, form, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", fmt.Errorf("graph api не вернул id контейнера")
	}
	return result.ID, nil
}

func (p *InstagramPublisher) publishContainer(ctx context.Context, creationID string) error {
	form := url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", p.accessToken)

	endpoint := fmt.Sprintf("%s/%s/media_publish", instagramGraphURL, p.userID)
	var result struct {
		ID string `json:"id"`
	}
	return p.postForm(ctx, "media_publish", endpoint, form, &result)
}

func (p *InstagramPublisher) postForm(ctx context.Context, operation, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("создание запроса к Graph API: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	metrics.ObserveNetworkRequest("instagram", operation, p.userID, start, err)
	if err != nil {
		return fmt.Errorf("запрос к Graph API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("graph api вернул статус %d: %s", resp.StatusCode, raw)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("разбор ответа Graph API: %w", err)
	}
	return nil
}
