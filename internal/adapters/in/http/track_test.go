package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"delivery-tracker/internal/core/application/usecases/queries"
	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"
	"delivery-tracker/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dialTrack(t *testing.T, f *fixture, orderID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(f.echo)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/orders/" + orderID + "/track"
	return websocket.DefaultDialer.Dial(url, nil)
}

func (f *fixture) orderExists(id order.ID) {
	f.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID() == id
	})).Return(queries.GetOrderQueryResponse{ID: id, Status: order.Preparing}, nil)
}

func TestTrackOrder_StreamsEvents(t *testing.T) {
	f := newFixture(t)
	f.orderExists(7)

	conn, _, err := dialTrack(t, f, "7")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.bus.ObserverCount(7) == 1 }, time.Second, 10*time.Millisecond)

	f.bus.Broadcast(7, tracking.NewStatusUpdate(order.InTransit))
	f.bus.Broadcast(7, tracking.LocationUpdate{Lat: 6.21, Lng: -75.59, Progress: 50, ETAMinutes: 12})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var status map[string]any
	require.NoError(t, conn.ReadJSON(&status))
	assert.Equal(t, "status_update", status["type"])
	assert.Equal(t, "in_transit", status["status"])
	assert.Equal(t, order.InTransit.Message(), status["message"])

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"location_update","lat":6.21,"lng":-75.59,"progress":50,"eta_minutes":12}`, string(raw))
}

func TestTrackOrder_OtherOrdersAreNotDelivered(t *testing.T) {
	f := newFixture(t)
	f.orderExists(7)

	conn, _, err := dialTrack(t, f, "7")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.bus.ObserverCount(7) == 1 }, time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, f.bus.Broadcast(8, tracking.NewStatusUpdate(order.Delivered)))
	f.bus.Broadcast(7, tracking.NewStatusUpdate(order.Delivered))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event map[string]any
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "delivered", event["status"])
}

func TestTrackOrder_UnknownOrderIsRejectedBeforeUpgrade(t *testing.T) {
	f := newFixture(t)
	f.getOrder.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetOrderQueryResponse{}, errs.NewObjectNotFoundError("orderID", 404))

	_, resp, err := dialTrack(t, f, "404")

	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, f.bus.ActiveOrders())
}

func TestTrackOrder_ExistenceIsCached(t *testing.T) {
	f := newFixture(t)
	f.orderExists(7)

	for range 2 {
		conn, _, err := dialTrack(t, f, "7")
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}

	f.getOrder.AssertNumberOfCalls(t, "Handle", 1)
}

func TestTrackOrder_ClientHangupDetaches(t *testing.T) {
	f := newFixture(t)
	f.orderExists(7)

	conn, _, err := dialTrack(t, f, "7")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return f.bus.ObserverCount(7) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return f.bus.ObserverCount(7) == 0 }, time.Second, 10*time.Millisecond)
}

func TestTrackOrder_ServerCloseSendsGoingAway(t *testing.T) {
	f := newFixture(t)
	f.orderExists(7)

	conn, _, err := dialTrack(t, f, "7")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.bus.ObserverCount(7) == 1 }, time.Second, 10*time.Millisecond)

	// keep reading so the close handshake completes while Close waits
	readErr := make(chan error, 1)
	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		readErr <- err
	}()

	f.server.Close()

	err = <-readErr
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Equal(t, 0, f.bus.ObserverCount(7))
}
