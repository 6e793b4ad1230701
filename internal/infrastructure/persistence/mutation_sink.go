package persistence

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/service/comment"
	"geo_feedback/pkg/errcodes"
)

// MutationSink применяет решения по отзывам в одной транзакции.
type MutationSink struct {
	db *sqlx.DB
}

func NewMutationSink(db *sqlx.DB) *MutationSink {
	return &MutationSink{db: db}
}

// Apply выполняет мутации по порядку. Конфликт уникальности (ник уже занят,
// отзыв уже создан параллельно) или пропавшая строка при обновлении
// возвращаются с кодом errcodes.Conflict.
func (s *MutationSink) Apply(ctx context.Context, mutations []comment.Mutation) error {
	if len(mutations) == 0 {
		return nil
	}

	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var createdVisitorID int64

		for _, m := range mutations {
			switch m.Kind {
			case comment.CreateVisitor:
				id, err := s.createVisitorTx(ctx, tx, m)
				if err != nil {
					return err
				}
				createdVisitorID = id
			case comment.CreateComment:
				if m.Entry.VisitorID == 0 {
					m.Entry.VisitorID = createdVisitorID
				}
				if err := s.createCommentTx(ctx, tx, m); err != nil {
					return err
				}
			case comment.UpdateComment:
				if err := s.updateCommentTx(ctx, tx, m); err != nil {
					return err
				}
			case comment.DeleteComment:
				if err := s.deleteCommentTx(ctx, tx, m); err != nil {
					return err
				}
			default:
				return domain.Errorf(errcodes.InternalServerError, "unknown mutation %q", m.Kind)
			}
		}

		return nil
	})
}

func (s *MutationSink) createVisitorTx(ctx context.Context, tx *sqlx.Tx, m comment.Mutation) (int64, error) {
	query := tx.Rebind(`INSERT INTO visitors (nick_name, user_password) VALUES (?, ?) RETURNING id`)

	var id int64
	if err := tx.GetContext(ctx, &id, query, m.Visitor.Nickname, m.Visitor.Password); err != nil {
		return 0, wrapWrite(err, "failed to create visitor")
	}

	return id, nil
}

func (s *MutationSink) createCommentTx(ctx context.Context, tx *sqlx.Tx, m comment.Mutation) error {
	if m.Entry.VisitorID == 0 {
		return domain.NewError(errcodes.InternalServerError, "comment without visitor")
	}

	query := tx.Rebind(`
		INSERT INTO comments (market_id, visitor_id, comment, rank, updated_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := tx.ExecContext(ctx, query,
		m.Entry.EntityID, m.Entry.VisitorID, m.Entry.Comment, rankToNull(m.Entry.Rank), time.Now().UTC(),
	)
	if err != nil {
		return wrapWrite(err, "failed to create comment")
	}

	return nil
}

func (s *MutationSink) updateCommentTx(ctx context.Context, tx *sqlx.Tx, m comment.Mutation) error {
	query := tx.Rebind(`
		UPDATE comments
		SET comment = ?, rank = ?, updated_at = ?
		WHERE market_id = ? AND visitor_id = ?`)

	res, err := tx.ExecContext(ctx, query,
		m.Entry.Comment, rankToNull(m.Entry.Rank), time.Now().UTC(), m.Entry.EntityID, m.Entry.VisitorID,
	)
	if err != nil {
		return wrapWrite(err, "failed to update comment")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.Conflict, "comment disappeared before update")
	}

	return nil
}

func (s *MutationSink) deleteCommentTx(ctx context.Context, tx *sqlx.Tx, m comment.Mutation) error {
	query := tx.Rebind(`DELETE FROM comments WHERE market_id = ? AND visitor_id = ?`)

	if _, err := tx.ExecContext(ctx, query, m.Entry.EntityID, m.Entry.VisitorID); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to delete comment")
	}

	return nil
}
