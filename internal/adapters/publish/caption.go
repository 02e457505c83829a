package publish

import (
	"fmt"
	"strings"

	"briefly-bot/internal/domain"
)

// Лимиты подписи во внешних API.
const (
	telegramCaptionLimit = 1024
	tweetLimit           = 280
)

const fallbackSocialText = "Detailed strategic briefing available in the link below."

// socialOrFallback возвращает плотный текст новости либо заглушку.
func socialOrFallback(story domain.StoryRecord) string {
	if social := strings.TrimSpace(story.SocialText); social != "" {
		return social
	}
	return fallbackSocialText
}

// telegramCaption собирает подпись к фото для Telegram.
func telegramCaption(story domain.StoryRecord) string {
	caption := fmt.Sprintf("🚀 *NEW CONTENT READY*\n\n*%s*\n\n%s\n\n🔗 %s", story.Title, socialOrFallback(story), story.Link)
	return clipRunes(caption, telegramCaptionLimit)
}

// tweetText собирает текст твита в пределах лимита.
func tweetText(story domain.StoryRecord) string {
	text := fmt.Sprintf("🚨 %s\n\nRead more: %s\n#BrieflyIntelligence #TechNews", story.Title, story.Link)
	return clipRunes(text, tweetLimit)
}

// instagramCaption собирает подпись для фото-поста.
func instagramCaption(story domain.StoryRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 %s\n\n", story.Title)
	fmt.Fprintf(&b, "📊 %s\n\n", socialOrFallback(story))
	fmt.Fprintf(&b, "💼 Category: %s\n", strings.ToUpper(story.Category))
	b.WriteString(".\n.\n.\n")
	b.WriteString("#businessintelligence #executivebriefing #markets #tech #finance #brieflylife #news")
	return b.String()
}

func clipRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
