package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию пайплайна и API.
// Конфиг строится один раз на прогон и передаётся компонентам явно:
// никто не читает окружение напрямую.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	TZ     string `envconfig:"TZ" default:"Europe/Bucharest"`
	Port   int    `envconfig:"PORT" default:"8080"`

	DataDir     string `envconfig:"DATA_DIR" default:"."`
	StoreFile   string `envconfig:"STORE_FILE" default:"news_data.json"`
	LedgerFile  string `envconfig:"LEDGER_FILE" default:"posted_links.txt"`
	ReportsFile string `envconfig:"REPORTS_FILE" default:"daily_summaries.json"`
	ImageFile   string `envconfig:"IMAGE_FILE" default:"last_news_post.jpg"`

	Feeds struct {
		Sources        map[string]string `envconfig:"FEED_SOURCES"`
		EntriesPerFeed int               `envconfig:"FEED_ENTRIES_PER_FEED" default:"25"`
		Timeout        time.Duration     `envconfig:"FEED_TIMEOUT" default:"15s"`
	} `envconfig:""`

	Article struct {
		MinChars int           `envconfig:"ARTICLE_MIN_CHARS" default:"300"`
		Timeout  time.Duration `envconfig:"ARTICLE_TIMEOUT" default:"15s"`
		CacheTTL time.Duration `envconfig:"ARTICLE_CACHE_TTL" default:"6h"`
	} `envconfig:""`

	Retention struct {
		MaxAge   time.Duration `envconfig:"RETENTION_MAX_AGE" default:"24h"`
		MaxCount int           `envconfig:"RETENTION_MAX_COUNT" default:"0"`
	} `envconfig:""`

	Render struct {
		FontPath string `envconfig:"RENDER_FONT_PATH"`
	} `envconfig:""`

	Reports struct {
		MaxEntries    int `envconfig:"REPORTS_MAX_ENTRIES" default:"7"`
		ContextTitles int `envconfig:"REPORTS_CONTEXT_TITLES" default:"25"`
	} `envconfig:""`

	OpenAI struct {
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		BaseURL string        `envconfig:"OPENAI_BASE_URL"`
		Model   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
		Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"20s"`
	} `envconfig:""`

	Telegram struct {
		Token  string `envconfig:"TELEGRAM_BOT_TOKEN"`
		ChatID int64  `envconfig:"TELEGRAM_CHAT_ID"`
	} `envconfig:""`

	Discord struct {
		WebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`
	} `envconfig:""`

	Twitter struct {
		BearerToken string `envconfig:"TWITTER_BEARER_TOKEN"`
	} `envconfig:""`

	Instagram struct {
		AccessToken  string `envconfig:"IG_ACCESS_TOKEN"`
		UserID       string `envconfig:"IG_USER_ID"`
		ImageBaseURL string `envconfig:"IG_IMAGE_BASE_URL"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	if len(cfg.Feeds.Sources) == 0 {
		cfg.Feeds.Sources = defaultSources()
	}
	return cfg
}

// defaultSources повторяет исходный набор лент briefly.life.
func defaultSources() map[string]string {
	return map[string]string{
		"Markets":  "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=15839069",
		"Tech":     "https://techcrunch.com/feed/",
		"Finance":  "https://finance.yahoo.com/news/rssindex",
		"Business": "https://www.cnbc.com/id/10001147/device/rss/rss.html",
	}
}
