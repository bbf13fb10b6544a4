package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyagekit/tripcraft-backend/internal/domain"
	pkgerr "github.com/voyagekit/tripcraft-backend/internal/pkg/errors"
	"github.com/voyagekit/tripcraft-backend/internal/platform/dbctx"
	"github.com/voyagekit/tripcraft-backend/internal/platform/logger"
)

type InteractionRepo interface {
	Create(dbc dbctx.Context, row *domain.DeckInteraction) (*domain.DeckInteraction, error)
	ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.DeckInteraction, error)
	ActivityIDsBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]uuid.UUID, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return &interactionRepo{db: db, log: baseLog.With("repo", "InteractionRepo")}
}

func (r *interactionRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *interactionRepo) Create(dbc dbctx.Context, row *domain.DeckInteraction) (*domain.DeckInteraction, error) {
	if row == nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	if err := r.tx(dbc).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *interactionRepo) ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.DeckInteraction, error) {
	var rows []*domain.DeckInteraction
	if sessionID == uuid.Nil {
		return rows, nil
	}
	if err := r.tx(dbc).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interactionRepo) ActivityIDsBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if sessionID == uuid.Nil {
		return ids, nil
	}
	if err := r.tx(dbc).
		Model(&domain.DeckInteraction{}).
		Where("session_id = ?", sessionID).
		Distinct("activity_id").
		Pluck("activity_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
