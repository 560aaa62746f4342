package http

import (
	"time"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/domain/model/tracking"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// TrackOrder handles GET /api/v1/orders/{orderId}/track.
//
// The connection is upgraded to a WebSocket that receives one JSON text frame per
// tracking event of the order. The stream ends when the client hangs up, when the
// observer falls behind and the bus drops it, or when the server closes.
func (s *Server) TrackOrder(ctx echo.Context, orderID int64) error {
	id := order.ID(orderID)
	if err := s.ensureOrder(ctx.Request().Context(), id); err != nil {
		return respondError(ctx, s.logger, err, "Cannot track order")
	}

	conn, err := s.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// the upgrader already wrote the HTTP error
		s.logger.DebugContext(ctx.Request().Context(), "websocket upgrade failed", "order_id", orderID, "error", err)
		return nil
	}

	s.streams.Add(1)
	defer s.streams.Done()
	defer conn.Close()

	s.metrics.TrackingStreams().Inc()
	defer s.metrics.TrackingStreams().Dec()

	stream := s.tracker.Attach(id)
	defer s.tracker.Detach(stream)

	s.logger.Info("tracking stream opened", "order_id", orderID, "remote", ctx.RealIP())

	reason := s.pump(conn, stream.Events(), readLoop(conn))

	s.logger.Info("tracking stream closed", "order_id", orderID, "reason", reason)
	return nil
}

// pump writes events to conn until one side gives up, and reports why.
func (s *Server) pump(conn *websocket.Conn, events <-chan tracking.Event, hangup <-chan struct{}) string {
	ping := time.NewTicker(s.cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-hangup:
			return "client"

		case <-s.closing:
			s.closeFrame(conn, websocket.CloseGoingAway, "server shutting down")
			return "shutdown"

		case event, ok := <-events:
			if !ok {
				s.closeFrame(conn, websocket.CloseTryAgainLater, "stream dropped")
				return "dropped"
			}
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return "write failed"
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				return "ping failed"
			}
		}
	}
}

func (s *Server) closeFrame(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.WriteTimeout))
}

// readLoop discards client frames so control frames are processed, and closes the
// returned channel once the connection fails or the client closes it.
func readLoop(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return done
}
