package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// CommentRepository manages suggestion comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListBySuggestion(ctx context.Context, suggestionID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (suggestion_id, user_id, comment_text)
        VALUES ($1,$2,$3)
        RETURNING comment_id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.SuggestionID,
		comment.UserID,
		comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListBySuggestion(ctx context.Context, suggestionID int64) ([]domain.Comment, error) {
	const query = `
        SELECT c.comment_id, c.suggestion_id, c.user_id, c.comment_text, c.created_at, u.username
        FROM comments c
        JOIN users u ON u.user_id = c.user_id
        WHERE c.suggestion_id=$1
        ORDER BY c.created_at ASC, c.comment_id ASC`
	rows, err := r.pool.Query(ctx, query, suggestionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Comment{}
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.SuggestionID,
			&comment.UserID,
			&comment.Text,
			&comment.CreatedAt,
			&comment.AuthorUsername,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
