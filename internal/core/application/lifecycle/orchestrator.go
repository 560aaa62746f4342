package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/domain/model/kernel"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/services"
	"delivery-tracker/internal/core/ports"
)

// ErrOrchestratorIsClosed is returned by Shutdown when it is called twice.
var ErrOrchestratorIsClosed = errors.New("orchestrator is closed")

// StatusAdvancer applies one guarded automatic step.
type StatusAdvancer interface {
	Handle(ctx context.Context, cmd commands.AdvanceOrderStatusCommand) (commands.TransitionResult, error)
}

// Orchestrator owns the per-order lifecycle tasks and motion sessions.
//
// Example:
//
//	orchestrator := lifecycle.NewOrchestrator(cfg, advanceHandler, bus, metrics, logger)
//	defer orchestrator.Shutdown(ctx)
//
//	orchestrator.StartOrder(orderID, business, customer)
type Orchestrator struct {
	cfg         Config
	advancer    StatusAdvancer
	publisher   ports.EventPublisher
	synthesizer services.MotionSynthesizer
	metrics     *Metrics
	logger      *slog.Logger

	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	tasks    map[order.ID]context.CancelFunc
	sessions map[order.ID]*Session
	// stopped holds orders whose motion was stopped for a terminal status; they never
	// get a session again.
	stopped map[order.ID]struct{}
	closed  bool
}

// NewOrchestrator creates an orchestrator. metrics may be nil.
func NewOrchestrator(
	cfg Config,
	advancer StatusAdvancer,
	publisher ports.EventPublisher,
	metrics *Metrics,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	root, cancel := context.WithCancel(context.Background())

	return &Orchestrator{
		cfg:         cfg,
		advancer:    advancer,
		publisher:   publisher,
		synthesizer: services.NewMotionSynthesizer(),
		metrics:     metrics,
		logger:      logger.With("component", "Orchestrator"),
		root:        root,
		cancel:      cancel,
		tasks:       make(map[order.ID]context.CancelFunc),
		sessions:    make(map[order.ID]*Session),
		stopped:     make(map[order.ID]struct{}),
	}, nil
}

// StartOrder spawns the automatic lifecycle task of a newly placed order.
// It is a no-op if the order already has a task or the orchestrator is shut down.
func (o *Orchestrator) StartOrder(orderID order.ID, business kernel.Location, customer kernel.Location) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if _, ok := o.tasks[orderID]; ok {
		o.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(o.root)
	o.tasks[orderID] = cancel
	o.wg.Add(1)
	o.mu.Unlock()

	go func() {
		defer o.wg.Done()
		defer o.finishTask(orderID)

		o.runOrder(ctx, orderID)
	}()
}

// StartMotion starts the motion session of an order in transit and returns true.
// It returns false if the order already has an active session, its motion was
// stopped, the orchestrator is shut down, or the trip cannot be planned.
//
// Callers start motion after their in_transit write commits, so a terminal override
// can commit and call StopMotion first; StartMotion then refuses the order.
func (o *Orchestrator) StartMotion(orderID order.ID, business kernel.Location, customer kernel.Location) bool {
	start, end, substituted := services.ResolveMotionEndpoints(business, customer)
	if substituted {
		o.logger.Info("coordinates missing, using fallback route",
			"order_id", orderID, "start", start.String(), "end", end.String())
	}

	plan := services.MotionPlan{
		Start:    start,
		End:      end,
		Duration: o.cfg.TripDuration,
		Tick:     o.cfg.TickInterval,
	}
	if err := plan.Validate(); err != nil {
		o.logger.Error("motion plan rejected", "order_id", orderID, "error", err)
		return false
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false
	}
	if _, ok := o.sessions[orderID]; ok {
		o.mu.Unlock()
		return false
	}
	if _, ok := o.stopped[orderID]; ok {
		o.mu.Unlock()
		o.logger.Info("motion refused, order already finished", "order_id", orderID)
		return false
	}

	ctx, cancel := context.WithCancel(o.root)
	session := newSession(orderID, plan, cancel)
	o.sessions[orderID] = session
	o.wg.Add(1)
	o.mu.Unlock()

	o.metrics.sessions.Inc()
	o.logger.Info("motion started", "order_id", orderID, "steps", plan.Steps())

	go func() {
		defer o.wg.Done()
		defer o.removeSession(session)

		o.runSession(ctx, session)
	}()

	return true
}

// StopMotion cancels the order's motion session and keeps any later StartMotion for
// the order from running. It returns whether a session was active. No LocationUpdate
// of the order is published after StopMotion returns.
//
// The automatic lifecycle task is left alone: its remaining steps find the order
// moved on and are skipped.
func (o *Orchestrator) StopMotion(orderID order.ID) bool {
	o.mu.Lock()
	o.stopped[orderID] = struct{}{}
	session := o.sessions[orderID]
	o.mu.Unlock()

	if session == nil {
		return false
	}

	session.stop()
	return true
}

// Session returns a snapshot of the order's active motion session.
func (o *Orchestrator) Session(orderID order.ID) (SessionSnapshot, bool) {
	o.mu.Lock()
	session, ok := o.sessions[orderID]
	o.mu.Unlock()

	if !ok {
		return SessionSnapshot{}, false
	}
	return session.snapshot(), true
}

// ActiveSessions returns the number of running motion sessions.
func (o *Orchestrator) ActiveSessions() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sessions)
}

// Shutdown cancels every task and session and waits for them to return, or for ctx.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrOrchestratorIsClosed
	}
	o.closed = true
	o.mu.Unlock()

	o.cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.InfoContext(ctx, "orchestrator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) runOrder(ctx context.Context, orderID order.ID) {
	if !sleep(ctx, o.cfg.PreparingDelay) {
		return
	}
	if _, ok := o.step(ctx, orderID, order.Pending, order.Preparing); !ok {
		return
	}

	if !sleep(ctx, o.cfg.DispatchDelay) {
		return
	}
	result, ok := o.step(ctx, orderID, order.Preparing, order.InTransit)
	if !ok {
		return
	}

	o.StartMotion(orderID, result.Business, result.Customer)
}

func (o *Orchestrator) runSession(ctx context.Context, session *Session) {
	outcome, err := o.synthesizer.Run(ctx, session.plan, func(tick services.MotionTick) {
		if session.emit(o.publisher, tick) {
			o.metrics.locationUpdates.Inc()
		}
	}, session.isCancelled)
	if err != nil {
		o.logger.Error("motion failed", "order_id", session.orderID, "error", err)
		return
	}

	if outcome != services.MotionCompleted {
		o.logger.Info("motion cancelled", "order_id", session.orderID)
		return
	}

	// The session stays registered until delivery is recorded, so a concurrent
	// manual in_transit cannot start a second one.
	o.step(ctx, session.orderID, order.InTransit, order.Delivered)
}

// step applies one guarded automatic transition and reports whether it was applied.
func (o *Orchestrator) step(ctx context.Context, orderID order.ID, expected order.Status, next order.Status) (commands.TransitionResult, bool) {
	cmd, err := commands.NewAdvanceOrderStatusCommand(orderID, expected, next)
	if err != nil {
		o.logger.ErrorContext(ctx, "invalid automatic step", "order_id", orderID, "error", err)
		return commands.TransitionResult{}, false
	}

	result, err := o.advancer.Handle(ctx, cmd)
	switch {
	case commands.IsStale(err):
		o.metrics.staleSteps.Inc()
		o.logger.InfoContext(ctx, "order moved on, automatic step skipped",
			"order_id", orderID, "expected", expected, "next", next)
		return commands.TransitionResult{}, false
	case err != nil:
		o.logger.ErrorContext(ctx, "automatic step failed",
			"order_id", orderID, "expected", expected, "next", next, "error", err)
		return commands.TransitionResult{}, false
	}

	o.metrics.steps.WithLabelValues(next.String()).Inc()
	o.logger.InfoContext(ctx, "order advanced", "order_id", orderID, "from", result.From, "to", result.To)
	return result, true
}

func (o *Orchestrator) finishTask(orderID order.ID) {
	o.mu.Lock()
	cancel := o.tasks[orderID]
	delete(o.tasks, orderID)
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) removeSession(session *Session) {
	o.mu.Lock()
	if o.sessions[session.orderID] == session {
		delete(o.sessions, session.orderID)
	}
	o.mu.Unlock()

	session.cancel()
	o.metrics.sessions.Dec()
}

// sleep waits d or until ctx is done, and reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
