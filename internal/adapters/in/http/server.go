package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/application/usecases/queries"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/eventbus"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
)

// DefaultActor is recorded for manual changes sent without an X-Actor header.
const DefaultActor = "api"

type (
	// CreateOrderHandler places orders.
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.CreateOrderResult, error)
	}

	// ManualStatusHandler applies manual status changes.
	ManualStatusHandler interface {
		Handle(ctx context.Context, cmd commands.ApplyManualStatusCommand) (commands.TransitionResult, error)
	}

	// CreateCourierHandler registers couriers.
	CreateCourierHandler interface {
		Handle(ctx context.Context, cmd commands.CreateCourierCommand) error
	}

	// GetOrderHandler reads one order.
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error)
	}

	// ActiveOrdersHandler lists non-terminal orders.
	ActiveOrdersHandler interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.GetActiveOrdersQueryResponse, error)
	}

	// CouriersHandler lists couriers.
	CouriersHandler interface {
		Handle(ctx context.Context, query queries.GetAllCouriersQuery) ([]queries.GetAllCouriersQueryResponse, error)
	}

	// Tracker hands out per-order event streams.
	Tracker interface {
		Attach(orderID order.ID) *eventbus.Stream
		Detach(s *eventbus.Stream)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder   CreateOrderHandler
	ManualStatus  ManualStatusHandler
	CreateCourier CreateCourierHandler
	GetOrder      GetOrderHandler
	ActiveOrders  ActiveOrdersHandler
	Couriers      CouriersHandler
}

// Config tunes the tracking WebSockets.
type Config struct {
	// PingInterval is how often an idle socket is pinged.
	PingInterval time.Duration
	// WriteTimeout bounds every frame write.
	WriteTimeout time.Duration
	// KnownOrderTTL is how long an order found to exist is remembered.
	KnownOrderTTL time.Duration
}

// DefaultConfig returns the settings used by the serve command.
func DefaultConfig() Config {
	return Config{
		PingInterval:  30 * time.Second,
		WriteTimeout:  10 * time.Second,
		KnownOrderTTL: 5 * time.Minute,
	}
}

// Server implements ServerInterface on top of the application use cases.
type Server struct {
	handlers Handlers
	tracker  Tracker
	cfg      Config
	metrics  *Metrics
	logger   *slog.Logger

	upgrader    websocket.Upgrader
	knownOrders *cache.Cache

	closing   chan struct{}
	closeOnce sync.Once
	streams   sync.WaitGroup
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates a Server. A nil metrics creates unregistered collectors.
func NewServer(handlers Handlers, tracker Tracker, cfg Config, metrics *Metrics, logger *slog.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Server{
		handlers: handlers,
		tracker:  tracker,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger.With("component", "HTTPServer"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		knownOrders: cache.New(cfg.KnownOrderTTL, 2*cfg.KnownOrderTTL),
		closing:     make(chan struct{}),
	}
}

// Close ends every open tracking stream with a going-away frame and waits for them.
// echo's Shutdown does not wait for hijacked connections, so call Close first.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
	s.streams.Wait()
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "Invalid request body"})
	}

	business, err := kernel.NewLocation(body.Business.Lat, body.Business.Lng)
	if err != nil {
		return respondError(ctx, s.logger, err, "Invalid business location")
	}
	customer, err := kernel.NewLocation(body.Customer.Lat, body.Customer.Lng)
	if err != nil {
		return respondError(ctx, s.logger, err, "Invalid customer location")
	}

	cmd, err := commands.NewCreateOrderCommand(business, customer,
		order.Contact{Email: body.Email, Phone: body.Phone}, body.BaseMinutes)
	if err != nil {
		return respondError(ctx, s.logger, err, "Invalid order")
	}

	result, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err, "Failed to create order")
	}
	s.rememberOrder(result.OrderID)

	return ctx.JSON(http.StatusCreated, toCreatedOrder(result))
}

// GetActiveOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	orders, err := s.handlers.ActiveOrders.Handle(ctx.Request().Context(), queries.NewGetActiveOrdersQuery())
	if err != nil {
		return respondError(ctx, s.logger, err, "Failed to retrieve active orders")
	}

	return ctx.JSON(http.StatusOK, toOrderSummaries(orders))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderID int64) error {
	query, err := queries.NewGetOrderQuery(order.ID(orderID))
	if err != nil {
		return respondError(ctx, s.logger, err, "Invalid order id")
	}

	result, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, s.logger, err, "Failed to retrieve order")
	}
	s.rememberOrder(result.ID)

	return ctx.JSON(http.StatusOK, toOrder(result))
}

// UpdateOrderStatus handles PATCH /api/v1/orders/{orderId}/status.
func (s *Server) UpdateOrderStatus(ctx echo.Context, orderID int64, params UpdateOrderStatusParams) error {
	var body StatusChange
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "Invalid request body"})
	}

	actor := DefaultActor
	if params.XActor != nil && strings.TrimSpace(*params.XActor) != "" {
		actor = strings.TrimSpace(*params.XActor)
	}

	cmd, err := commands.NewApplyManualStatusCommand(order.ID(orderID), body.Status, actor)
	if err != nil {
		return respondError(ctx, s.logger, err, "Invalid status change")
	}

	result, err := s.handlers.ManualStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, s.logger, err, "Failed to change status")
	}

	return ctx.JSON(http.StatusOK, toTransition(result))
}

// GetCouriers handles GET /api/v1/couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	couriers, err := s.handlers.Couriers.Handle(ctx.Request().Context(), queries.NewGetAllCouriersQuery())
	if err != nil {
		return respondError(ctx, s.logger, err, "Failed to retrieve couriers")
	}

	return ctx.JSON(http.StatusOK, toCouriers(couriers))
}

// CreateCourier handles POST /api/v1/couriers.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var body NewCourier
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "Invalid request body"})
	}

	cmd, err := commands.NewCreateCourierCommand(body.Name, body.Phone)
	if err != nil {
		return respondError(ctx, s.logger, err, "Invalid courier")
	}

	if err = s.handlers.CreateCourier.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, s.logger, err, "Failed to create courier")
	}

	return ctx.NoContent(http.StatusCreated)
}

// ensureOrder returns nil when the order exists, consulting the cache first.
func (s *Server) ensureOrder(ctx context.Context, id order.ID) error {
	if _, ok := s.knownOrders.Get(orderKey(id)); ok {
		return nil
	}

	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return err
	}
	if _, err = s.handlers.GetOrder.Handle(ctx, query); err != nil {
		return err
	}

	s.rememberOrder(id)
	return nil
}

func (s *Server) rememberOrder(id order.ID) {
	s.knownOrders.SetDefault(orderKey(id), struct{}{})
}

func orderKey(id order.ID) string {
	return strconv.FormatInt(int64(id), 10)
}
