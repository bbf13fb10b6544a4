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

type ActivityRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Activity, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Activity, error)
	ListActiveByTenant(dbc dbctx.Context, tenantID uuid.UUID) ([]*domain.Activity, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *activityRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Activity, error) {
	if id == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	var row domain.Activity
	if err := r.tx(dbc).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *activityRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Activity, error) {
	var rows []*domain.Activity
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.tx(dbc).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *activityRepo) ListActiveByTenant(dbc dbctx.Context, tenantID uuid.UUID) ([]*domain.Activity, error) {
	var rows []*domain.Activity
	if tenantID == uuid.Nil {
		return rows, nil
	}
	if err := r.tx(dbc).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
