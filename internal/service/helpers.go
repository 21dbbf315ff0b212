package service

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/safety-suggestions/internal/domain"
	"github.com/spec-kit/safety-suggestions/internal/events"
	"github.com/spec-kit/safety-suggestions/pkg/util/errorutil"
)

func mapLookupError(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errorutil.NewNotFound("suggestion", map[string]any{"suggestion_id": id})
	}
	return errorutil.NewInternalError(err)
}

func actorOf(p *domain.Principal, fallbackUserID int64) events.Actor {
	if p == nil {
		return events.Actor{UserID: fallbackUserID}
	}
	return events.Actor{UserID: p.UserID, Role: p.Role}
}
