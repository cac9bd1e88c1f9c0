package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleActionLogStream upgrades to a websocket and streams orchestrator
// events to the client until it disconnects. The stream starts at connect
// time; no history replay.
func (s *Server) handleActionLogStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ch, cancel := s.events.Subscribe()
	defer cancel()

	s.log.Info().Str("remote", r.RemoteAddr).Msg("Action log stream opened")

	// CloseRead yields a context that ends when the client disconnects and
	// is independent of the request timeout middleware
	ctx := conn.CloseRead(context.Background())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, event)
			writeCancel()
			if err != nil {
				s.log.Debug().Err(err).Msg("Action log stream write failed")
				return
			}
		}
	}
}
