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

type TripRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Trip, error)
	AddToTotalPrice(dbc dbctx.Context, id uuid.UUID, delta float64) error
}

type TripDayRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.TripDay, error)
	ListByTripID(dbc dbctx.Context, tripID uuid.UUID) ([]*domain.TripDay, error)
}

type TripEntryRepo interface {
	Create(dbc dbctx.Context, rows []*domain.TripEntry) ([]*domain.TripEntry, error)
	ListByDayIDs(dbc dbctx.Context, dayIDs []uuid.UUID) ([]*domain.TripEntry, error)
	MaxPosition(dbc dbctx.Context, dayID uuid.UUID) (int, error)
}

type tripRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTripRepo(db *gorm.DB, baseLog *logger.Logger) TripRepo {
	return &tripRepo{db: db, log: baseLog.With("repo", "TripRepo")}
}

func (r *tripRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *tripRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Trip, error) {
	if id == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	var row domain.Trip
	if err := r.tx(dbc).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *tripRepo) AddToTotalPrice(dbc dbctx.Context, id uuid.UUID, delta float64) error {
	if id == uuid.Nil {
		return pkgerr.ErrInvalidArgument
	}
	return r.tx(dbc).
		Model(&domain.Trip{}).
		Where("id = ?", id).
		Update("total_price", gorm.Expr("total_price + ?", delta)).Error
}

type tripDayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTripDayRepo(db *gorm.DB, baseLog *logger.Logger) TripDayRepo {
	return &tripDayRepo{db: db, log: baseLog.With("repo", "TripDayRepo")}
}

func (r *tripDayRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *tripDayRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.TripDay, error) {
	if id == uuid.Nil {
		return nil, pkgerr.ErrInvalidArgument
	}
	var row domain.TripDay
	if err := r.tx(dbc).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerr.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *tripDayRepo) ListByTripID(dbc dbctx.Context, tripID uuid.UUID) ([]*domain.TripDay, error) {
	var rows []*domain.TripDay
	if tripID == uuid.Nil {
		return rows, nil
	}
	if err := r.tx(dbc).
		Where("trip_id = ?", tripID).
		Order("day_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type tripEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTripEntryRepo(db *gorm.DB, baseLog *logger.Logger) TripEntryRepo {
	return &tripEntryRepo{db: db, log: baseLog.With("repo", "TripEntryRepo")}
}

func (r *tripEntryRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *tripEntryRepo) Create(dbc dbctx.Context, rows []*domain.TripEntry) ([]*domain.TripEntry, error) {
	if len(rows) == 0 {
		return []*domain.TripEntry{}, nil
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tripEntryRepo) ListByDayIDs(dbc dbctx.Context, dayIDs []uuid.UUID) ([]*domain.TripEntry, error) {
	var rows []*domain.TripEntry
	if len(dayIDs) == 0 {
		return rows, nil
	}
	if err := r.tx(dbc).
		Where("day_id IN ?", dayIDs).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *tripEntryRepo) MaxPosition(dbc dbctx.Context, dayID uuid.UUID) (int, error) {
	if dayID == uuid.Nil {
		return 0, pkgerr.ErrInvalidArgument
	}
	var max *int
	if err := r.tx(dbc).
		Model(&domain.TripEntry{}).
		Where("day_id = ?", dayID).
		Select("MAX(position)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
