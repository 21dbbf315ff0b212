package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/safety-suggestions/internal/domain"
)

// SuggestionRepository encapsulates suggestion persistence.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) error
	GetByID(ctx context.Context, id int64) (*domain.Suggestion, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListAll(ctx context.Context) ([]domain.Suggestion, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Suggestion, error)
	UpdateStatus(ctx context.Context, id int64, status domain.SuggestionStatus) (*domain.Suggestion, error)
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository instantiates repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

const suggestionColumns = `s.suggestion_id, s.user_id, s.title, s.description, s.department,
               s.file_attachment_path, s.status, s.created_at, s.updated_at`

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	const query = `
        INSERT INTO suggestions (user_id, title, description, department, file_attachment_path, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING suggestion_id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		suggestion.UserID,
		suggestion.Title,
		suggestion.Description,
		suggestion.Department,
		suggestion.AttachmentPath,
		suggestion.Status,
	).Scan(&suggestion.ID, &suggestion.CreatedAt, &suggestion.UpdatedAt)
}

func (r *suggestionRepository) GetByID(ctx context.Context, id int64) (*domain.Suggestion, error) {
	const query = `
        SELECT ` + suggestionColumns + `, u.username, u.email
        FROM suggestions s
        JOIN users u ON u.user_id = s.user_id
        WHERE s.suggestion_id=$1`

	var suggestion domain.Suggestion
	dest := append(suggestionScanTargets(&suggestion), &suggestion.SubmitterUsername, &suggestion.SubmitterEmail)
	if err := r.pool.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *suggestionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suggestions WHERE suggestion_id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *suggestionRepository) ListAll(ctx context.Context) ([]domain.Suggestion, error) {
	const query = `
        SELECT ` + suggestionColumns + `, u.username
        FROM suggestions s
        JOIN users u ON u.user_id = s.user_id
        ORDER BY s.created_at DESC, s.suggestion_id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSuggestions(rows, func(s *domain.Suggestion) []any {
		return append(suggestionScanTargets(s), &s.SubmitterUsername)
	})
}

func (r *suggestionRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Suggestion, error) {
	const query = `
        SELECT ` + suggestionColumns + `
        FROM suggestions s
        WHERE s.user_id=$1
        ORDER BY s.created_at DESC, s.suggestion_id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSuggestions(rows, suggestionScanTargets)
}

func (r *suggestionRepository) UpdateStatus(ctx context.Context, id int64, status domain.SuggestionStatus) (*domain.Suggestion, error) {
	const query = `
        UPDATE suggestions s SET status=$1, updated_at=NOW()
        WHERE s.suggestion_id=$2
        RETURNING ` + suggestionColumns

	var suggestion domain.Suggestion
	if err := r.pool.QueryRow(ctx, query, status, id).Scan(suggestionScanTargets(&suggestion)...); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func suggestionScanTargets(s *domain.Suggestion) []any {
	return []any{
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.Description,
		&s.Department,
		&s.AttachmentPath,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
}

func scanSuggestions(rows pgx.Rows, targets func(*domain.Suggestion) []any) ([]domain.Suggestion, error) {
	result := []domain.Suggestion{}
	for rows.Next() {
		var suggestion domain.Suggestion
		if err := rows.Scan(targets(&suggestion)...); err != nil {
			return nil, err
		}
		result = append(result, suggestion)
	}
	return result, rows.Err()
}
