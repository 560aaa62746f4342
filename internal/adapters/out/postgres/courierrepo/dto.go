// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// This package implements the repository pattern for the courier domain aggregate, handling
// the conversion between domain entities and database representations.
package courierrepo

import (
	"time"

	"delivery-tracker/internal/core/domain/model/courier"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
// A NULL CurrentOrderID means the courier is available.
type CourierDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Phone          string    `gorm:"type:varchar(64);not null"`
	CurrentOrderID *int64    `gorm:"index"`
	// CreatedAt is the registration order used by GetFirstAvailable.
	CreatedAt time.Time
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers" instead of "courier_dtos".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(c *courier.Courier) CourierDTO {
	var currentOrder *int64
	if id := c.CurrentOrder(); id != nil {
		raw := int64(*id)
		currentOrder = &raw
	}

	return CourierDTO{
		ID:             c.ID().Bytes(),
		Name:           c.Name(),
		Phone:          c.Phone(),
		CurrentOrderID: currentOrder,
	}
}

// toDomain converts a database DTO to a courier domain aggregate using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var currentOrder *order.ID
	if dto.CurrentOrderID != nil {
		orderID := order.ID(*dto.CurrentOrderID)
		currentOrder = &orderID
	}

	return courier.RestoreCourier(id, dto.Name, dto.Phone, currentOrder)
}

func toDomainList(dtos []CourierDTO) ([]*courier.Courier, error) {
	couriers := make([]*courier.Courier, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		couriers = append(couriers, c)
	}
	return couriers, nil
}
