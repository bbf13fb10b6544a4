package repos

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
	pkgerr "github.com/voyagekit/tripcraft-backend/internal/pkg/errors"
	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, row *domain.PersonalizationSession) (*domain.PersonalizationSession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PersonalizationSession, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// BumpCounters increments viewed plus the action-specific counter and adds
	// the swipe's view duration to the running total.
	BumpCounters(dbc dbctx.Context, id uuid.UUID, action string, viewMS int64) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *sessionRepo) Create(dbc dbctx.Context, row *domain.PersonalizationSession) (*domain.PersonalizationSession, error) {
	if row == nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	if err := r.tx(dbc).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.PersonalizationSession, error) {
	if id == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	var row domain.PersonalizationSession
	if err := r.tx(dbc).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *sessionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).
		Model(&domain.PersonalizationSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sessionRepo) BumpCounters(dbc dbctx.Context, id uuid.UUID, action string, viewMS int64) error {
	if id == uuid.Nil {
		return pkgerr.ErrInvalidArgument
	}
	updates := map[string]interface{}{
		"viewed_count":   gorm.Expr("viewed_count + 1"),
		"total_swipe_ms": gorm.Expr("total_swipe_ms + ?", viewMS),
	}
	switch action {
	case domain.ActionLiked:
		updates["liked_count"] = gorm.Expr("liked_count + 1")
	case domain.ActionPassed:
		updates["passed_count"] = gorm.Expr("passed_count + 1")
	case domain.ActionSaved:
		updates["saved_count"] = gorm.Expr("saved_count + 1")
	default:
		return pkgerr.ErrInvalidArgument
	}
	return r.tx(dbc).
		Model(&domain.PersonalizationSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}
