// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The status is stored as its wire string; history rows live in order_history.
type OrderDTO struct {
	ID               int64       `gorm:"primaryKey;autoIncrement:false"`
	Business         LocationDTO `gorm:"embedded;embeddedPrefix:business_"`
	Customer         LocationDTO `gorm:"embedded;embeddedPrefix:customer_"`
	ContactEmail     string
	ContactPhone     string
	Status           string     `gorm:"type:varchar(32);not null;index"`
	CourierID        *uuid.UUID `gorm:"type:uuid"`
	CourierName      string
	CourierPhone     string
	DistanceKm       float64
	EstimatedMinutes int
	History          []HistoryEntryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO represents an embedded pair of coordinates.
type LocationDTO struct {
	Lat float64
	Lng float64
}

// HistoryEntryDTO is one row of an order's status history. Seq keeps the rows in
// the order they were appended.
type HistoryEntryDTO struct {
	ID      int64 `gorm:"primaryKey"`
	OrderID int64 `gorm:"not null;index"`
	Seq     int   `gorm:"not null"`
	Status  string
	At      time.Time
	Actor   string
}

// TableName specifies the database table name for history entries.
func (HistoryEntryDTO) TableName() string {
	return "order_history"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		ID:               int64(o.ID()),
		Business:         LocationDTO{Lat: o.BusinessLocation().Lat(), Lng: o.BusinessLocation().Lng()},
		Customer:         LocationDTO{Lat: o.CustomerLocation().Lat(), Lng: o.CustomerLocation().Lng()},
		ContactEmail:     o.Contact().Email,
		ContactPhone:     o.Contact().Phone,
		Status:           o.Status().String(),
		DistanceKm:       o.DistanceKm(),
		EstimatedMinutes: o.EstimatedMinutes(),
	}

	if c := o.Courier(); c != nil {
		raw := c.CourierID.Bytes()
		dto.CourierID = &raw
		dto.CourierName = c.Name
		dto.CourierPhone = c.Phone
	}

	history := o.History()
	dto.History = make([]HistoryEntryDTO, 0, len(history))
	for i, entry := range history {
		dto.History = append(dto.History, HistoryEntryDTO{
			OrderID: dto.ID,
			Seq:     i,
			Status:  entry.Status.String(),
			At:      entry.At,
			Actor:   entry.Actor,
		})
	}

	return dto
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
// History rows must be sorted by Seq.
func toDomain(dto OrderDTO) (*order.Order, error) {
	business, err := kernel.NewLocation(dto.Business.Lat, dto.Business.Lng)
	if err != nil {
		return nil, err
	}
	customer, err := kernel.NewLocation(dto.Customer.Lat, dto.Customer.Lng)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var courier *order.CourierAssignment
	if dto.CourierID != nil {
		courierID, idErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if idErr != nil {
			return nil, idErr
		}
		courier = &order.CourierAssignment{CourierID: courierID, Name: dto.CourierName, Phone: dto.CourierPhone}
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, row := range dto.History {
		entryStatus, statusErr := order.ParseStatus(row.Status)
		if statusErr != nil {
			return nil, statusErr
		}
		history = append(history, order.HistoryEntry{Status: entryStatus, At: row.At.UTC(), Actor: row.Actor})
	}

	return order.RestoreOrder(
		order.ID(dto.ID),
		business,
		customer,
		order.Contact{Email: dto.ContactEmail, Phone: dto.ContactPhone},
		status,
		courier,
		history,
		dto.DistanceKm,
		dto.EstimatedMinutes,
	)
}
