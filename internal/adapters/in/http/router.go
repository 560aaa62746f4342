package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"delivery-tracker/internal/adapters/in/http/api"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// NewRouter builds the echo instance serving the API, the tracking WebSockets,
// the OpenAPI document, the Swagger UI, health and metrics.
func NewRouter(
	ctx context.Context,
	server *Server,
	metrics *Metrics,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) (*echo.Echo, error) {
	doc, err := api.Load(ctx)
	if err != nil {
		return nil, err
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}
	publishDocs(docJSON)

	validate, err := requestValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("build request validator: %w", err)
	}

	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(metrics.Middleware("/health", "/metrics", "/swagger/*"))
	e.Use(validate)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/api/openapi.json", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, docJSON)
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.InstanceName(docsInstance)))

	RegisterHandlers(e, server)

	return e, nil
}
