package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/internal/pkg/entity"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const wsWriteTimeout = time.Second * 10

type wsEvent struct {
	Zones map[int]entity.ZoneView `json:"zones"`
}

// getWebsocket streams a fresh zone snapshot to the client every time the
// device reports a change. The change signal is buffered so a slow client
// never stalls notification delivery; coalesced signals just mean the client
// skips straight to the newest snapshot.
func (s *server) getWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	changes := make(chan struct{}, 1)
	sub := s.bus.Subscribe(s.avrs.DeviceInfo().MAC, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeSnapshot(conn); err != nil {
		return
	}
	for {
		select {
		case <-changes:
			if err := s.writeSnapshot(conn); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *server) writeSnapshot(conn *websocket.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(wsEvent{Zones: s.zoneViews()})
}
