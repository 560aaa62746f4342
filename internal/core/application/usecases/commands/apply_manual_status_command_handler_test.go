package commands_test

import (
	"log/slog"
	"sync/atomic"
	"testing"

	"delivery-tracker/internal/adapters/out/memory"
	"delivery-tracker/internal/core/application/usecases/commands"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
	"delivery-tracker/internal/core/ports"
	"delivery-tracker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type manualFixture struct {
	h         commands.ApplyManualStatusCommandHandler
	publisher *recordingPublisher
	notifier  *MockStatusNotifier
	motion    *MockMotionController
	timeline  *timeline
}

func newManualFixture(t *testing.T, factory commands.UoWFactory) manualFixture {
	t.Helper()
	tl := &timeline{}
	f := manualFixture{
		publisher: newRecordingPublisher(tl),
		notifier:  new(MockStatusNotifier),
		motion:    new(MockMotionController),
		timeline:  tl,
	}
	f.notifier.On("NotifyStatusChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.motion.On("StopMotion", mock.Anything).Run(func(mock.Arguments) { tl.add("stop") }).Return(true).Maybe()
	f.motion.On("StartMotion", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { tl.add("start") }).Return(true).Maybe()
	f.h = commands.NewApplyManualStatusCommandHandler(factory, f.publisher, f.notifier, f.motion, slog.Default())
	return f
}

func (f manualFixture) apply(t *testing.T, id order.ID, status string) (commands.TransitionResult, error) {
	t.Helper()
	cmd, err := commands.NewApplyManualStatusCommand(id, status, "admin")
	require.NoError(t, err)
	return f.h.Handle(t.Context(), cmd)
}

func TestApplyManualStatusCommandHandler_PendingToInTransitIsAccepted(t *testing.T) {
	store, factory := newStore(t)
	id := seedOrder(t, store)
	ana := seedCourier(t, store, "Ana", nil)
	f := newManualFixture(t, factory)

	result, err := f.apply(t, id, "in_transit")

	require.NoError(t, err)
	assert.Equal(t, order.Pending, result.From)
	assert.Equal(t, order.InTransit, result.To)
	assert.True(t, result.CourierAssigned)
	assert.False(t, loadCourier(t, store, ana).IsAvailable())

	o := loadOrder(t, store, id)
	history := o.History()
	require.Len(t, history, 2)
	assert.Equal(t, "admin", history[1].Actor)

	events := f.publisher.Events(id)
	require.Len(t, events, 1)
	assert.Equal(t, "Your order is on the way! Courier: Ana", events[0].(tracking.StatusUpdate).Message)
	assert.Equal(t, []string{"broadcast:status_update", "start"}, f.timeline.snapshot())
	f.motion.AssertCalled(t, "StartMotion", id, business, customer)
}

func TestApplyManualStatusCommandHandler_InTransitWithoutCourierStillMoves(t *testing.T) {
	store, factory := newStore(t)
	id := seedOrder(t, store)
	f := newManualFixture(t, factory)

	result, err := f.apply(t, id, "in_transit")

	require.NoError(t, err)
	assert.Nil(t, result.Courier)
	f.motion.AssertCalled(t, "StartMotion", id, business, customer)
}

func TestApplyManualStatusCommandHandler_SameStatusWithCourierDoesNotRestartMotion(t *testing.T) {
	store, factory := newStore(t)
	id := seedOrder(t, store)
	seedCourier(t, store, "Ana", nil)
	f := newManualFixture(t, factory)

	_, err := f.apply(t, id, "in_transit")
	require.NoError(t, err)
	result, err := f.apply(t, id, "in_transit")

	require.NoError(t, err)
	assert.False(t, result.CourierAssigned)
	assert.NotNil(t, result.Courier)
	f.motion.AssertNumberOfCalls(t, "StartMotion", 1)
	assert.Len(t, loadOrder(t, store, id).History(), 3)
}

func TestApplyManualStatusCommandHandler_TerminalStopsMotionBeforePublishing(t *testing.T) {
	store, factory := newStore(t)
	id := seedOrder(t, store)
	ana := seedCourier(t, store, "Ana", nil)
	f := newManualFixture(t, factory)

	_, err := f.apply(t, id, "in_transit")
	require.NoError(t, err)
	result, err := f.apply(t, id, "cancelled")

	require.NoError(t, err)
	assert.True(t, result.CourierReleased)
	assert.True(t, loadCourier(t, store, ana).IsAvailable())
	assert.Equal(t, []string{
		"broadcast:status_update", "start",
		"stop", "broadcast:status_update",
	}, f.timeline.snapshot())

	events := f.publisher.Events(id)
	assert.Equal(t, tracking.StatusUpdate{Status: order.Cancelled, Message: "Your order has been cancelled"}, events[1])
}

func TestApplyManualStatusCommandHandler_DeliveredIsFinal(t *testing.T) {
	store, factory := newStore(t)
	id := seedOrder(t, store)
	f := newManualFixture(t, factory)

	_, err := f.apply(t, id, "delivered")
	require.NoError(t, err)

	for _, status := range []string{"pending", "in_transit", "delivered", "cancelled"} {
		_, err = f.apply(t, id, status)
		require.ErrorIs(t, err, order.ErrInvalidTransition, status)
	}

	o := loadOrder(t, store, id)
	assert.Equal(t, order.Delivered, o.Status())
	assert.Len(t, o.History(), 2)
	assert.Len(t, f.publisher.Events(id), 1)
}

func TestApplyManualStatusCommandHandler_BackwardsOverrideIsAccepted(t *testing.T) {
	store, factory := newStore(t)
	id := seedOrder(t, store)
	f := newManualFixture(t, factory)

	_, err := f.apply(t, id, "preparing")
	require.NoError(t, err)
	result, err := f.apply(t, id, "pending")

	require.NoError(t, err)
	assert.Equal(t, order.Preparing, result.From)
	assert.Equal(t, order.Pending, result.To)
	assert.Equal(t,
		[]order.Status{order.Pending, order.Preparing, order.Pending},
		statusesOf(loadOrder(t, store, id).History()))
}

func TestApplyManualStatusCommandHandler_OrderNotFound(t *testing.T) {
	_, factory := newStore(t)
	f := newManualFixture(t, factory)

	_, err := f.apply(t, 404, "cancelled")

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	f.motion.AssertNotCalled(t, "StopMotion", mock.Anything)
	assert.Empty(t, f.timeline.snapshot())
}

func TestApplyManualStatusCommandHandler_ValidationError(t *testing.T) {
	_, factory := newStore(t)
	f := newManualFixture(t, factory)

	_, err := f.h.Handle(t.Context(), commands.ApplyManualStatusCommand{})
	require.ErrorIs(t, err, commands.ErrApplyManualStatusCommandIsNotConstructed)
}

// flakyUoWFactory loses the compare-and-set of the first `conflicts` units of work.
type flakyUoWFactory struct {
	factory   *memory.UnitOfWorkFactory
	conflicts *atomic.Int32
}

func (f flakyUoWFactory) Create() commands.UoW {
	if f.conflicts.Add(-1) >= 0 {
		return conflictingUoW{UnitOfWork: f.factory.Create()}
	}
	return f.factory.Create()
}

func TestApplyManualStatusCommandHandler_RetriesLostCompareAndSet(t *testing.T) {
	store, _ := newStore(t)
	id := seedOrder(t, store)
	conflicts := new(atomic.Int32)
	conflicts.Store(1)
	f := newManualFixture(t, flakyUoWFactory{factory: memory.NewUnitOfWorkFactory(store), conflicts: conflicts})

	result, err := f.apply(t, id, "cancelled")

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, result.To)
	assert.Equal(t, order.Cancelled, loadOrder(t, store, id).Status())
	assert.Len(t, f.publisher.Events(id), 1)
}

func TestApplyManualStatusCommandHandler_GivesUpAfterRepeatedConflicts(t *testing.T) {
	store, _ := newStore(t)
	id := seedOrder(t, store)
	conflicts := new(atomic.Int32)
	conflicts.Store(100)
	f := newManualFixture(t, flakyUoWFactory{factory: memory.NewUnitOfWorkFactory(store), conflicts: conflicts})

	_, err := f.apply(t, id, "cancelled")

	require.ErrorIs(t, err, ports.ErrStatusConflict)
	assert.Equal(t, order.Pending, loadOrder(t, store, id).Status())
	assert.Empty(t, f.publisher.Events(id))
	assert.Equal(t, int32(97), conflicts.Load())
}
