package courierrepo

import (
	"context"
	"errors"

	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCourierRepository implements ports.CourierRepository using GORM.
type GormCourierRepository struct {
	db *gorm.DB
}

// NewGormCourierRepository creates a new GORM courier repository.
func NewGormCourierRepository(db *gorm.DB) *GormCourierRepository {
	return &GormCourierRepository{db: db}
}

// Add saves a new courier to the database.
func (r *GormCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves the courier's details and availability.
func (r *GormCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	// a map so that a released courier writes NULL
	result := r.db.WithContext(ctx).Model(&CourierDTO{}).Where("id = ?", dto.ID).Updates(map[string]any{
		"name":             dto.Name,
		"phone":            dto.Phone,
		"current_order_id": dto.CurrentOrderID,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("courier", aggregate.ID())
	}

	return nil
}

// Get retrieves a courier by ID.
func (r *GormCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CourierDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("courier", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAll retrieves every courier ordered by name.
func (r *GormCourierRepository) GetAll(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).Order("name, created_at").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// GetFirstAvailable locks the earliest registered available courier for the rest of
// the transaction. Rows locked by a concurrent claim are skipped, so two
// transactions never pick the same courier.
//
// Example:
//
//	uow.Begin(ctx)
//	c, err := uow.CourierRepository().GetFirstAvailable(ctx)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // every courier is busy
//	}
func (r *GormCourierRepository) GetFirstAvailable(ctx context.Context) (*courier.Courier, error) {
	var dto CourierDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("current_order_id IS NULL").
		Order("created_at, id").
		Limit(1).
		Find(&dto).Error
	if err != nil {
		return nil, err
	}
	if dto.ID == uuid.Nil {
		return nil, errs.NewObjectNotFoundError("courier", "first available")
	}

	return toDomain(dto)
}

// GetAllBusy retrieves all couriers currently serving an order.
func (r *GormCourierRepository) GetAllBusy(ctx context.Context) ([]*courier.Courier, error) {
	var dtos []CourierDTO
	if err := r.db.WithContext(ctx).
		Where("current_order_id IS NOT NULL").
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}
