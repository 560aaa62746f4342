package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"delivery-tracker/internal/core/domain/model/order"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// ErrQueueFull is returned when a notification could not be queued.
var ErrQueueFull = errors.New("notification queue is full")

// Sender delivers one message over one channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// DispatcherConfig controls queueing and retries.
type DispatcherConfig struct {
	QueueSize       int
	Workers         int
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultDispatcherConfig returns the production settings.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:       256,
		Workers:         2,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

func (c DispatcherConfig) normalize() DispatcherConfig {
	defaults := DefaultDispatcherConfig()
	if c.QueueSize <= 0 {
		c.QueueSize = defaults.QueueSize
	}
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = defaults.InitialInterval
	}
	if c.MaxInterval < c.InitialInterval {
		c.MaxInterval = c.InitialInterval
	}
	return c
}

// Dispatcher implements ports.StatusNotifier on top of a bounded queue.
//
// NotifyStatusChange never blocks: it composes the messages and queues them, or
// reports ErrQueueFull. Workers started by Run send the queued messages, retrying
// failures with exponential backoff.
//
// Example:
//
//	dispatcher := notify.NewDispatcher(notify.DefaultDispatcherConfig(),
//	    map[notify.Channel]notify.Sender{
//	        notify.ChannelEmail: smtpSender,
//	        notify.ChannelSMS:   notify.NewLogSender(logger),
//	    }, notify.NewMetrics(reg), logger)
//	go dispatcher.Run(ctx)
type Dispatcher struct {
	config  DispatcherConfig
	senders map[Channel]Sender
	queue   chan Message
	metrics *Metrics
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher. Messages for a channel without a sender are
// skipped. A nil metrics creates unregistered collectors.
func NewDispatcher(config DispatcherConfig, senders map[Channel]Sender, metrics *Metrics, logger *slog.Logger) *Dispatcher {
	config = config.normalize()
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Dispatcher{
		config:  config,
		senders: senders,
		queue:   make(chan Message, config.QueueSize),
		metrics: metrics,
		logger:  logger.With("component", "NotificationDispatcher"),
	}
}

// NotifyStatusChange queues the e-mail and SMS announcing status.
func (d *Dispatcher) NotifyStatusChange(
	ctx context.Context,
	contact order.Contact,
	orderID order.ID,
	status order.Status,
) error {
	dropped := 0
	for _, msg := range Compose(contact, orderID, status) {
		if _, ok := d.senders[msg.Channel]; !ok {
			continue
		}

		select {
		case d.queue <- msg:
		default:
			dropped++
			d.metrics.Dropped().Inc()
			d.logger.WarnContext(ctx, "notification dropped", "order_id", orderID, "channel", msg.Channel)
		}
	}

	if dropped > 0 {
		return fmt.Errorf("%w: %d message(s) for order %d", ErrQueueFull, dropped, orderID)
	}
	return nil
}

// Pending returns the number of queued messages.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Run sends queued messages until ctx is cancelled. Messages still queued at that
// point are discarded.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.InfoContext(ctx, "notification dispatcher started", "workers", d.config.Workers)

	g, ctx := errgroup.WithContext(ctx)
	for range d.config.Workers {
		g.Go(func() error {
			d.work(ctx)
			return nil
		})
	}
	err := g.Wait()

	d.logger.Info("notification dispatcher stopped", "discarded", len(d.queue))
	return err
}

func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.queue:
			d.deliver(ctx, msg)
		}
	}
}

// deliver sends msg, retrying transient failures.
func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	sender := d.senders[msg.Channel]

	operation := func() error {
		err := sender.Send(ctx, msg)
		if errors.Is(err, ErrRecipientRequired) || errors.Is(err, ErrInvalidRecipient) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		d.metrics.Retries().Inc()
		d.logger.WarnContext(ctx, "notification failed, retrying",
			"order_id", msg.OrderID, "channel", msg.Channel, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, d.policy(ctx), notify); err != nil {
		d.metrics.Failed(msg.Channel).Inc()
		d.logger.ErrorContext(ctx, "notification failed",
			"order_id", msg.OrderID, "channel", msg.Channel, "status", msg.Status.String(), "error", err)
		return
	}

	d.metrics.Sent(msg.Channel).Inc()
}

func (d *Dispatcher) policy(ctx context.Context) backoff.BackOffContext {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = d.config.InitialInterval
	exponential.MaxInterval = d.config.MaxInterval
	exponential.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(d.config.MaxRetries)), ctx)
}
