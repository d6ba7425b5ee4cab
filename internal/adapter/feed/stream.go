package feed

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamBuffer = 16
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleStream pushes the session snapshot on connect and after every tick
// or transition. The stream ends with a close frame once the session is
// terminated.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookup(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, unsubscribe := session.Subscribe(streamBuffer)
	defer unsubscribe()

	log := s.log.With().Str("session_id", session.ID().String()).Logger()
	log.Debug().Msg("Stream opened")

	// Reader: only control frames are expected, a read error means the
	// client went away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := s.writeSnapshot(conn, session.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap, open := <-updates:
			if !open {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session terminated"),
					time.Now().Add(writeWait),
				)
				log.Debug().Msg("Stream closed, session terminated")
				return
			}
			if err := s.writeSnapshot(conn, snap); err != nil {
				log.Debug().Err(err).Msg("Stream write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-gone:
			log.Debug().Msg("Stream closed by client")
			return
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn, snap interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
