// Package repotest provides in-memory repository implementations for tests.
//
// The fakes mirror the Postgres behaviour the services depend on: pgx.ErrNoRows for
// missing rows, SQLSTATE 23503/23505 errors for foreign-key and unique violations,
// and the same ordering guarantees as the SQL queries.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/safety-suggestions/internal/domain"
	"github.com/spec-kit/safety-suggestions/internal/repository"
)

// Store holds every table. Each accessor returns a repository view over it.
type Store struct {
	mu          sync.Mutex
	users       []domain.User
	suggestions []domain.Suggestion
	comments    []domain.Comment
	seq         int64

	// Now stamps created_at/updated_at. Tests may replace it.
	Now func() time.Time
	// Err, when set, is returned by every operation.
	Err error
}

// NewStore returns an empty store with a monotonically increasing clock.
func NewStore() *Store {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var tick int64
	s := &Store{}
	s.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func (s *Store) Users() repository.UserRepository             { return userRepo{s} }
func (s *Store) Suggestions() repository.SuggestionRepository { return suggestionRepo{s} }
func (s *Store) Comments() repository.CommentRepository       { return commentRepo{s} }
func (s *Store) Analytics() repository.AnalyticsRepository    { return analyticsRepo{s} }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) userByID(id int64) (*domain.User, bool) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], true
		}
	}
	return nil, false
}

func (s *Store) suggestionIndex(id int64) int {
	for i := range s.suggestions {
		if s.suggestions[i].ID == id {
			return i
		}
	}
	return -1
}

func violation(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint, Message: "constraint violation"}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return violation("23505", "users_email_key")
		}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = r.s.Now()
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			clone := u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r userRepo) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type suggestionRepo struct{ s *Store }

func (r suggestionRepo) Create(_ context.Context, suggestion *domain.Suggestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.userByID(suggestion.UserID); !ok {
		return violation("23503", "suggestions_user_id_fkey")
	}
	suggestion.ID = r.s.nextID()
	suggestion.CreatedAt = r.s.Now()
	suggestion.UpdatedAt = suggestion.CreatedAt
	stored := *suggestion
	stored.SubmitterUsername, stored.SubmitterEmail = "", ""
	r.s.suggestions = append(r.s.suggestions, stored)
	return nil
}

func (r suggestionRepo) GetByID(_ context.Context, id int64) (*domain.Suggestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	idx := r.s.suggestionIndex(id)
	if idx < 0 {
		return nil, pgx.ErrNoRows
	}
	clone := r.s.suggestions[idx]
	if u, ok := r.s.userByID(clone.UserID); ok {
		clone.SubmitterUsername = u.Username
		clone.SubmitterEmail = u.Email
	}
	return &clone, nil
}

func (r suggestionRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	return r.s.suggestionIndex(id) >= 0, nil
}

func (r suggestionRepo) ListAll(_ context.Context) ([]domain.Suggestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]domain.Suggestion, 0, len(r.s.suggestions))
	for _, sg := range r.s.suggestions {
		if u, ok := r.s.userByID(sg.UserID); ok {
			sg.SubmitterUsername = u.Username
		}
		result = append(result, sg)
	}
	sortNewestFirst(result)
	return result, nil
}

func (r suggestionRepo) ListByUser(_ context.Context, userID int64) ([]domain.Suggestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := []domain.Suggestion{}
	for _, sg := range r.s.suggestions {
		if sg.UserID == userID {
			result = append(result, sg)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r suggestionRepo) UpdateStatus(_ context.Context, id int64, status domain.SuggestionStatus) (*domain.Suggestion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	idx := r.s.suggestionIndex(id)
	if idx < 0 {
		return nil, pgx.ErrNoRows
	}
	r.s.suggestions[idx].Status = status
	r.s.suggestions[idx].UpdatedAt = r.s.Now()
	clone := r.s.suggestions[idx]
	return &clone, nil
}

func sortNewestFirst(items []domain.Suggestion) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.s.suggestionIndex(comment.SuggestionID) < 0 {
		return violation("23503", "comments_suggestion_id_fkey")
	}
	if _, ok := r.s.userByID(comment.UserID); !ok {
		return violation("23503", "comments_user_id_fkey")
	}
	comment.ID = r.s.nextID()
	comment.CreatedAt = r.s.Now()
	stored := *comment
	stored.AuthorUsername = ""
	r.s.comments = append(r.s.comments, stored)
	return nil
}

func (r commentRepo) ListBySuggestion(_ context.Context, suggestionID int64) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := []domain.Comment{}
	for _, c := range r.s.comments {
		if c.SuggestionID != suggestionID {
			continue
		}
		if u, ok := r.s.userByID(c.UserID); ok {
			c.AuthorUsername = u.Username
		}
		result = append(result, c)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type analyticsRepo struct{ s *Store }

func (r analyticsRepo) CountByStatus(_ context.Context) ([]domain.StatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	counts := map[domain.SuggestionStatus]int64{}
	for _, sg := range r.s.suggestions {
		counts[sg.Status]++
	}
	result := []domain.StatusCount{}
	for status, n := range counts {
		result = append(result, domain.StatusCount{Status: status, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Status < result[j].Status })
	return result, nil
}

func (r analyticsRepo) CountByDepartment(_ context.Context) ([]domain.DepartmentCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	counts := map[string]int64{}
	for _, sg := range r.s.suggestions {
		dept := domain.UnassignedDepartment
		if sg.Department != nil {
			dept = *sg.Department
		}
		counts[dept]++
	}
	result := []domain.DepartmentCount{}
	for dept, n := range counts {
		result = append(result, domain.DepartmentCount{Department: dept, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Department < result[j].Department })
	return result, nil
}

// DailySubmissions windows relative to the latest stamp handed out by Now.
func (r analyticsRepo) DailySubmissions(_ context.Context, days int) ([]domain.DailyCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var latest time.Time
	for _, sg := range r.s.suggestions {
		if sg.CreatedAt.After(latest) {
			latest = sg.CreatedAt
		}
	}
	cutoff := latest.AddDate(0, 0, -days)
	counts := map[string]int64{}
	for _, sg := range r.s.suggestions {
		if sg.CreatedAt.Before(cutoff) {
			continue
		}
		counts[sg.CreatedAt.Format(time.DateOnly)]++
	}
	result := []domain.DailyCount{}
	for day, n := range counts {
		result = append(result, domain.DailyCount{Date: day, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}
