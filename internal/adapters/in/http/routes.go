package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of api/openapi.yaml.
type ServerInterface interface {
	// CreateOrder handles POST /api/v1/orders.
	CreateOrder(ctx echo.Context) error
	// GetActiveOrders handles GET /api/v1/orders/active.
	GetActiveOrders(ctx echo.Context) error
	// GetOrder handles GET /api/v1/orders/{orderId}.
	GetOrder(ctx echo.Context, orderID int64) error
	// UpdateOrderStatus handles PATCH /api/v1/orders/{orderId}/status.
	UpdateOrderStatus(ctx echo.Context, orderID int64, params UpdateOrderStatusParams) error
	// TrackOrder handles GET /api/v1/orders/{orderId}/track.
	TrackOrder(ctx echo.Context, orderID int64) error
	// GetCouriers handles GET /api/v1/couriers.
	GetCouriers(ctx echo.Context) error
	// CreateCourier handles POST /api/v1/couriers.
	CreateCourier(ctx echo.Context) error
}

// UpdateOrderStatusParams holds the header parameters of UpdateOrderStatus.
type UpdateOrderStatusParams struct {
	XActor *string
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// ServerInterfaceWrapper binds path and header parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// RegisterHandlers adds every API route to router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	wrapper := ServerInterfaceWrapper{Handler: si}

	router.POST("/api/v1/orders", wrapper.CreateOrder)
	router.GET("/api/v1/orders/active", wrapper.GetActiveOrders)
	router.GET("/api/v1/orders/:orderId", wrapper.GetOrder)
	router.PATCH("/api/v1/orders/:orderId/status", wrapper.UpdateOrderStatus)
	router.GET("/api/v1/orders/:orderId/track", wrapper.TrackOrder)
	router.GET("/api/v1/couriers", wrapper.GetCouriers)
	router.POST("/api/v1/couriers", wrapper.CreateCourier)
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetActiveOrders(ctx echo.Context) error {
	return w.Handler.GetActiveOrders(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}

	var params UpdateOrderStatusParams
	if values := ctx.Request().Header.Values("X-Actor"); len(values) > 0 {
		if len(values) != 1 {
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("Expected one value for X-Actor, got %d", len(values)))
		}

		var actor string
		err = runtime.BindStyledParameterWithOptions("simple", "X-Actor", values[0], &actor,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter X-Actor: %s", err))
		}
		params.XActor = &actor
	}

	return w.Handler.UpdateOrderStatus(ctx, orderID, params)
}

func (w *ServerInterfaceWrapper) TrackOrder(ctx echo.Context) error {
	orderID, err := bindOrderID(ctx)
	if err != nil {
		return err
	}
	return w.Handler.TrackOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) GetCouriers(ctx echo.Context) error {
	return w.Handler.GetCouriers(ctx)
}

func (w *ServerInterfaceWrapper) CreateCourier(ctx echo.Context) error {
	return w.Handler.CreateCourier(ctx)
}

func bindOrderID(ctx echo.Context) (int64, error) {
	var orderID int64
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}
	return orderID, nil
}
