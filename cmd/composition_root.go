package cmd

import (
	"context"
	"fmt"
	"log/slog"

	httpadapter "delivery-tracker/internal/adapters/in/http"
	"delivery-tracker/internal/adapters/out/notify"
	"delivery-tracker/internal/core/application/lifecycle"
	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/application/usecases/queries"
	"delivery-tracker/internal/core/ports"
	"delivery-tracker/internal/eventbus"
	"delivery-tracker/internal/jobs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// CompositionRoot wires the adapters and use cases of one process.
//
// The orchestrator needs the advance handler and the manual and create handlers
// need the orchestrator, so everything is built eagerly in dependency order.
type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	uowFactory ports.UnitOfWorkFactory

	bus          *eventbus.Bus
	dispatcher   *notify.Dispatcher
	orchestrator *lifecycle.Orchestrator
	httpMetrics  *httpadapter.Metrics
}

// NewCompositionRoot builds the process graph on top of uowFactory.
func NewCompositionRoot(cfg Config, uowFactory ports.UnitOfWorkFactory, logger *slog.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &CompositionRoot{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		uowFactory:  uowFactory,
		bus:         eventbus.NewBus(logger, eventbus.NewMetrics(registry), eventbus.DefaultStreamBuffer),
		httpMetrics: httpadapter.NewMetrics(registry),
	}

	dispatcher, err := c.newDispatcher()
	if err != nil {
		return nil, err
	}
	c.dispatcher = dispatcher

	orchestrator, err := lifecycle.NewOrchestrator(
		cfg.Lifecycle,
		c.CreateAdvanceOrderStatusCommandHandler(),
		c.bus,
		lifecycle.NewMetrics(registry),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	c.orchestrator = orchestrator

	return c, nil
}

func (c *CompositionRoot) newDispatcher() (*notify.Dispatcher, error) {
	logSender := notify.NewLogSender(c.logger)
	senders := map[notify.Channel]notify.Sender{
		notify.ChannelEmail: logSender,
		notify.ChannelSMS:   logSender,
	}

	if c.cfg.SMTP.Enabled() {
		smtpSender, err := notify.NewSMTPSender(c.cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("create SMTP sender: %w", err)
		}
		senders[notify.ChannelEmail] = smtpSender
	}

	return notify.NewDispatcher(notify.DefaultDispatcherConfig(), senders, notify.NewMetrics(c.registry), c.logger), nil
}

// Registry returns the Prometheus registry of the process.
func (c *CompositionRoot) Registry() *prometheus.Registry { return c.registry }

// Bus returns the tracking event bus.
func (c *CompositionRoot) Bus() *eventbus.Bus { return c.bus }

// Dispatcher returns the notification dispatcher; its Run must be started.
func (c *CompositionRoot) Dispatcher() *notify.Dispatcher { return c.dispatcher }

// Orchestrator returns the lifecycle orchestrator; its Shutdown must be called.
func (c *CompositionRoot) Orchestrator() *lifecycle.Orchestrator { return c.orchestrator }

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateAdvanceOrderStatusCommandHandler() commands.AdvanceOrderStatusCommandHandler {
	return commands.NewAdvanceOrderStatusCommandHandler(c.uow(), c.bus, c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateApplyManualStatusCommandHandler() commands.ApplyManualStatusCommandHandler {
	return commands.NewApplyManualStatusCommandHandler(c.uow(), c.bus, c.dispatcher, c.orchestrator, c.logger)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.orchestrator, c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateReleaseCouriersCommandHandler() commands.ReleaseCouriersCommandHandler {
	return commands.NewReleaseCouriersCommandHandler(c.uow(), c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.uowFactory)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.uowFactory)
}

// CreateJobManager returns the scheduled jobs; StartAll must be called.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateReleaseCouriersCommandHandler(), c.cfg.ReleaseSchedule, c.logger)
}

// CreateHTTPServer returns the API server.
func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	return httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:   c.CreateCreateOrderCommandHandler(),
		ManualStatus:  c.CreateApplyManualStatusCommandHandler(),
		CreateCourier: c.CreateCreateCourierCommandHandler(),
		GetOrder:      c.CreateGetOrderQueryHandler(),
		ActiveOrders:  c.CreateGetActiveOrdersQueryHandler(),
		Couriers:      c.CreateGetAllCouriersQueryHandler(),
	}, c.bus, httpadapter.DefaultConfig(), c.httpMetrics, c.logger)
}

// CreateRouter returns the echo instance serving server.
func (c *CompositionRoot) CreateRouter(ctx context.Context, server *httpadapter.Server) (*echo.Echo, error) {
	e, err := httpadapter.NewRouter(ctx, server, c.httpMetrics, c.registry, c.logger)
	if err != nil {
		return nil, err
	}
	e.Logger.SetLevel(EchoLogLevel(c.cfg))
	return e, nil
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
