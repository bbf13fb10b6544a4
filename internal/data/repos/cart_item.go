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

type CartItemRepo interface {
	Create(dbc dbctx.Context, row *domain.CartItem) (*domain.CartItem, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.CartItem, error)
	// GetBySessionAndActivity returns the non-cancelled row for the pair, or
	// ErrNotFound.
	GetBySessionAndActivity(dbc dbctx.Context, sessionID, activityID uuid.UUID) (*domain.CartItem, error)
	ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.CartItem, error)
	ListPendingFitted(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.CartItem, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type cartItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartItemRepo(db *gorm.DB, baseLog *logger.Logger) CartItemRepo {
	return &cartItemRepo{db: db, log: baseLog.With("repo", "CartItemRepo")}
}

func (r *cartItemRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *cartItemRepo) Create(dbc dbctx.Context, row *domain.CartItem) (*domain.CartItem, error) {
	if row == nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	if err := r.tx(dbc).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *cartItemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.CartItem, error) {
	if id == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	var row domain.CartItem
	if err := r.tx(dbc).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *cartItemRepo) GetBySessionAndActivity(dbc dbctx.Context, sessionID, activityID uuid.UUID) (*domain.CartItem, error) {
	if sessionID == uuid.Nil || activityID == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	var row domain.CartItem
	if err := r.tx(dbc).
		Where("session_id = ? AND activity_id = ? AND status <> ?", sessionID, activityID, domain.CartCancelled).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *cartItemRepo) ListBySessionID(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.CartItem, error) {
	var rows []*domain.CartItem
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

func (r *cartItemRepo) ListPendingFitted(dbc dbctx.Context, sessionID uuid.UUID) ([]*domain.CartItem, error) {
	var rows []*domain.CartItem
	if sessionID == uuid.Nil {
		return rows, nil
	}
	if err := r.tx(dbc).
		Where("session_id = ? AND status = ? AND fit_status = ?", sessionID, domain.CartPending, domain.FitFitted).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *cartItemRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return r.tx(dbc).
		Model(&domain.CartItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}
