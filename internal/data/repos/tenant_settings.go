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

type TenantSettingsRepo interface {
	GetByTenantID(dbc dbctx.Context, tenantID uuid.UUID) (*domain.TenantSettings, error)
}

type tenantSettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTenantSettingsRepo(db *gorm.DB, baseLog *logger.Logger) TenantSettingsRepo {
	return &tenantSettingsRepo{db: db, log: baseLog.With("repo", "TenantSettingsRepo")}
}

func (r *tenantSettingsRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *tenantSettingsRepo) GetByTenantID(dbc dbctx.Context, tenantID uuid.UUID) (*domain.TenantSettings, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	var row domain.TenantSettings
	if err := r.tx(dbc).Where("tenant_id = ?", tenantID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}
