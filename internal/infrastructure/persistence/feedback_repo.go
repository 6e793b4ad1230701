package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/pkg/errcodes"
)

const commentColumns = `market_id, visitor_id, comment, rank`

type FeedbackRepository struct {
	db *sqlx.DB
}

func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) All(ctx context.Context) ([]entity.FeedbackEntry, error) {
	query := `SELECT ` + commentColumns + ` FROM comments ORDER BY market_id, visitor_id`

	return r.entries(ctx, query)
}

func (r *FeedbackRepository) ByMarket(ctx context.Context, marketID int64) ([]entity.FeedbackEntry, error) {
	query := r.db.Rebind(`SELECT ` + commentColumns + ` FROM comments WHERE market_id = ? ORDER BY visitor_id`)

	return r.entries(ctx, query, marketID)
}

// Comments отзывы о рынке с никами авторов.
func (r *FeedbackRepository) Comments(ctx context.Context, marketID int64) ([]entity.CommentView, error) {
	query := r.db.Rebind(`
		SELECT v.nick_name, c.comment, c.rank
		FROM comments c
		JOIN visitors v ON v.id = c.visitor_id
		WHERE c.market_id = ?
		ORDER BY v.nick_name`)

	var schemas []commentViewSchema
	if err := r.db.SelectContext(ctx, &schemas, query, marketID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get comments")
	}

	views := make([]entity.CommentView, 0, len(schemas))
	for _, s := range schemas {
		views = append(views, s.toDomain())
	}

	return views, nil
}

func (r *FeedbackRepository) VisitorsByNickname(ctx context.Context, nickname string) ([]entity.Visitor, error) {
	query := r.db.Rebind(`SELECT id, nick_name, user_password FROM visitors WHERE nick_name = ? ORDER BY id`)

	var schemas []visitorSchema
	if err := r.db.SelectContext(ctx, &schemas, query, nickname); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get visitors")
	}

	visitors := make([]entity.Visitor, 0, len(schemas))
	for _, s := range schemas {
		visitors = append(visitors, s.toDomain())
	}

	return visitors, nil
}

func (r *FeedbackRepository) entries(ctx context.Context, query string, args ...any) ([]entity.FeedbackEntry, error) {
	var schemas []commentSchema
	if err := r.db.SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get feedback")
	}

	entries := make([]entity.FeedbackEntry, 0, len(schemas))
	for _, s := range schemas {
		entries = append(entries, s.toDomain())
	}

	return entries, nil
}
