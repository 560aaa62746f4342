package http

import (
	"time"

	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/application/usecases/queries"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
)

// Wire types of the JSON API. Field names follow api/openapi.yaml.

// Error is the body of every non-2xx JSON response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Location is a pair of coordinates in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewOrder is the body of POST /api/v1/orders.
type NewOrder struct {
	Business    Location `json:"business"`
	Customer    Location `json:"customer"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	BaseMinutes int      `json:"base_minutes"`
}

// CreatedOrder is returned when an order is placed.
type CreatedOrder struct {
	ID               int64   `json:"id"`
	Status           string  `json:"status"`
	DistanceKm       float64 `json:"distance_km"`
	EstimatedMinutes int     `json:"estimated_minutes"`
}

// StatusChange is the body of PATCH /api/v1/orders/{orderId}/status.
type StatusChange struct {
	Status string `json:"status"`
}

// Transition reports an applied manual status change.
type Transition struct {
	OrderID int64  `json:"order_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Actor   string `json:"actor"`
}

// CourierAssignment is the courier attached to an order.
type CourierAssignment struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// HistoryEntry is one recorded status change.
type HistoryEntry struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
}

// Order is an order with its history.
type Order struct {
	ID               int64              `json:"id"`
	Status           string             `json:"status"`
	Business         Location           `json:"business"`
	Customer         Location           `json:"customer"`
	DistanceKm       float64            `json:"distance_km"`
	EstimatedMinutes int                `json:"estimated_minutes"`
	Courier          *CourierAssignment `json:"courier,omitempty"`
	History          []HistoryEntry     `json:"history"`
}

// OrderSummary is one entry of the active orders list.
type OrderSummary struct {
	ID          int64    `json:"id"`
	Status      string   `json:"status"`
	Customer    Location `json:"customer"`
	CourierName string   `json:"courier_name,omitempty"`
}

// Courier is one entry of the courier directory.
type Courier struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Available      bool   `json:"available"`
	CurrentOrderID *int64 `json:"current_order_id,omitempty"`
}

// NewCourier is the body of POST /api/v1/couriers.
type NewCourier struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func toLocation(l kernel.Location) Location {
	return Location{Lat: l.Lat(), Lng: l.Lng()}
}

func toCreatedOrder(result commands.CreateOrderResult) CreatedOrder {
	return CreatedOrder{
		ID:               int64(result.OrderID),
		Status:           order.Pending.String(),
		DistanceKm:       result.DistanceKm,
		EstimatedMinutes: result.EstimatedMinutes,
	}
}

func toTransition(result commands.TransitionResult) Transition {
	return Transition{
		OrderID: int64(result.OrderID),
		From:    result.From.String(),
		To:      result.To.String(),
		Actor:   result.Actor,
	}
}

func toOrder(r queries.GetOrderQueryResponse) Order {
	response := Order{
		ID:               int64(r.ID),
		Status:           r.Status.String(),
		Business:         toLocation(r.Business),
		Customer:         toLocation(r.Customer),
		DistanceKm:       r.DistanceKm,
		EstimatedMinutes: r.EstimatedMinutes,
		History:          make([]HistoryEntry, len(r.History)),
	}

	if r.Courier != nil {
		response.Courier = &CourierAssignment{
			ID:    r.Courier.CourierID.String(),
			Name:  r.Courier.Name,
			Phone: r.Courier.Phone,
		}
	}

	for i, entry := range r.History {
		response.History[i] = HistoryEntry{
			Status: entry.Status.String(),
			At:     entry.At,
			Actor:  entry.Actor,
		}
	}

	return response
}

func toOrderSummaries(orders []queries.GetActiveOrdersQueryResponse) []OrderSummary {
	response := make([]OrderSummary, len(orders))
	for i, o := range orders {
		response[i] = OrderSummary{
			ID:          int64(o.ID),
			Status:      o.Status.String(),
			Customer:    toLocation(o.Customer),
			CourierName: o.CourierName,
		}
	}
	return response
}

func toCouriers(couriers []queries.GetAllCouriersQueryResponse) []Courier {
	response := make([]Courier, len(couriers))
	for i, c := range couriers {
		response[i] = Courier{
			ID:        c.ID.String(),
			Name:      c.Name,
			Phone:     c.Phone,
			Available: c.Available,
		}
		if c.CurrentOrder != nil {
			id := int64(*c.CurrentOrder)
			response[i].CurrentOrderID = &id
		}
	}
	return response
}
