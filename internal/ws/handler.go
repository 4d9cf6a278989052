package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/td-sync/internal/hub"
)

const writeTimeout = 3 * time.Second

// conn adapts a websocket to the hub: each broadcast line becomes one text frame.
type conn struct {
	c   *websocket.Conn
	ctx context.Context
}

func (w conn) Send(b []byte) error {
	ctx, cancel := context.WithTimeout(w.ctx, writeTimeout)
	defer cancel()
	return w.c.Write(ctx, websocket.MessageText, b)
}

func (w conn) Close() error { return w.c.Close(websocket.StatusNormalClosure, "bye") }

// Spectate streams the match broadcast to a read-only websocket client. Cross-origin
// pages are refused unless their host matches one of origins.
func Spectate(h *hub.Hub, log *zap.Logger, origins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: origins})
		if err != nil {
			log.Debug("spectator refused", zap.String("origin", r.Header.Get("Origin")), zap.Error(err))
			return
		}
		defer c.CloseNow()

		clientID := "spectator-" + uuid.NewString()
		select {
		case h.Inbox() <- hub.Attach{ClientID: clientID, Conn: conn{c: c, ctx: r.Context()}}:
		case <-h.Done():
			c.Close(websocket.StatusGoingAway, "match closed")
			return
		}
		log.Info("spectator joined", zap.String("client", clientID))

		// Reader loop: spectators do not send anything, this only notices them leaving.
		for {
			_, _, err := c.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("spectator read", zap.String("client", clientID), zap.Error(err))
				}
				break
			}
		}

		select {
		case h.Inbox() <- hub.Detach{ClientID: clientID}:
		case <-h.Done():
		}
	}
}
