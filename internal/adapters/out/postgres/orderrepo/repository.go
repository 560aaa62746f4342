package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
	"delivery-tracker/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// NextIdentity draws the next value of orders_id_seq.
func (r *GormOrderRepository) NextIdentity(ctx context.Context) (order.ID, error) {
	var id int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval('orders_id_seq')").Scan(&id).Error; err != nil {
		return 0, fmt.Errorf("allocate order id: %w", err)
	}
	return order.ID(id), nil
}

// Add saves a new order and its history.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update writes the order only while its stored status still equals expected, and
// appends the history entries that are not stored yet.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order, expected order.Status) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, expected.String()).
		Select("*").
		Omit(clause.Associations, "id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&OrderDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("order", aggregate.ID())
		}
		return ports.ErrStatusConflict
	}

	var stored int64
	if err := db.Model(&HistoryEntryDTO{}).Where("order_id = ?", dto.ID).Count(&stored).Error; err != nil {
		return err
	}
	if int(stored) >= len(dto.History) {
		return nil
	}

	pending := dto.History[stored:]
	return db.Create(&pending).Error
}

// Get retrieves an order with its history.
func (r *GormOrderRepository) Get(ctx context.Context, id order.ID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.withHistory(ctx).First(&dto, "id = ?", int64(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActive retrieves orders that are neither delivered nor cancelled, ordered by id.
func (r *GormOrderRepository) GetActive(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.withHistory(ctx).
		Where("status NOT IN ?", []string{order.Delivered.String(), order.Cancelled.String()}).
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) withHistory(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq")
	})
}
