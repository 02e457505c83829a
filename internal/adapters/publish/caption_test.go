package publish

import (
	"strings"
	"testing"
	"unicode/utf8"

	"briefly-bot/internal/domain"
)

func TestTelegramCaptionLayout(t *testing.T) {
	story := domain.StoryRecord{
		Title:      "Acme buys Globex for $2B",
		SocialText: "Acme pays $2B for Globex, reshaping the widget market.",
		Link:       "https://example.com/acme",
	}

	caption := telegramCaption(story)

	for _, fragment := range []string{"*NEW CONTENT READY*", "*Acme buys Globex for $2B*", story.SocialText, "🔗 https://example.com/acme"} {
		if !strings.Contains(caption, fragment) {
			t.Fatalf("в подписи нет фрагмента %q: %q", fragment, caption)
		}
	}
}

func TestTelegramCaptionClippedToLimit(t *testing.T) {
	story := domain.StoryRecord{
		Title:      strings.Repeat("ё", 2000),
		SocialText: "text",
		Link:       "https://example.com/a",
	}
	caption := telegramCaption(story)
	if got := utf8.RuneCountInString(caption); got != telegramCaptionLimit {
		t.Fatalf("ожидали ровно %d рун, получили %d", telegramCaptionLimit, got)
	}
}

func TestTweetTextWithinLimit(t *testing.T) {
	story := domain.StoryRecord{
		Title: strings.Repeat("long headline ", 40),
		Link:  "https://example.com/a",
	}
	if got := utf8.RuneCountInString(tweetText(story)); got > tweetLimit {
		t.Fatalf("твит длиннее лимита: %d рун", got)
	}

	short := domain.StoryRecord{Title: "Short", Link: "https://example.com/b"}
	text := tweetText(short)
	if !strings.Contains(text, "Short") || !strings.Contains(text, short.Link) {
		t.Fatalf("короткий твит должен содержать заголовок и ссылку: %q", text)
	}
}

func TestSocialOrFallback(t *testing.T) {
	if got := socialOrFallback(domain.StoryRecord{SocialText: "  "}); got != fallbackSocialText {
		t.Fatalf("пустой плотный текст должен заменяться заглушкой, получили %q", got)
	}
	if got := socialOrFallback(domain.StoryRecord{SocialText: "dense"}); got != "dense" {
		t.Fatalf("ожидали исходный текст, получили %q", got)
	}
}

func TestInstagramCaptionContainsCategory(t *testing.T) {
	story := domain.StoryRecord{
		Category:   domain.CategoryFinance,
		Title:      "Rates on hold",
		SocialText: "Central bank keeps rates unchanged.",
	}
	caption := instagramCaption(story)
	if !strings.Contains(caption, "Category: FINANCE") {
		t.Fatalf("в подписи нет категории: %q", caption)
	}
	if !strings.Contains(caption, "#brieflylife") {
		t.Fatalf("в подписи нет хэштегов: %q", caption)
	}
}
