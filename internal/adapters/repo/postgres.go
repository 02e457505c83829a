package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"briefly-bot/internal/domain"
	"briefly-bot/internal/infra/metrics"
)

// PostgresArchive складывает все принятые новости в БД сайта.
// Архив не участвует в решениях пайплайна: ошибки записи не фатальны.
type PostgresArchive struct {
	pool *pgxpool.Pool
}

var _ domain.StoryArchive = (*PostgresArchive)(nil)

// NewPostgresArchive создаёт адаптер архива.
func NewPostgresArchive(pool *pgxpool.Pool) *PostgresArchive {
	return &PostgresArchive{pool: pool}
}

func (p *PostgresArchive) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// ArchiveStory сохраняет новость с upsert по ссылке.
func (p *PostgresArchive) ArchiveStory(ctx context.Context, story domain.StoryRecord) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO stories (category, title, link, summary, social_text, is_major, published_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (link) DO NOTHING
`, story.Category, story.Title, story.Link, story.Summary, story.SocialText, story.IsMajor, story.PublishedAt)
	metrics.ObserveNetworkRequest("postgres", "stories_insert", "stories", start, err)
	return err
}
