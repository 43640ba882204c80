package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/auth"
	"github.com/BarkinBalci/socials-sync-service/internal/service"
)

const (
	writeTimeout = 10 * time.Second

	// control frame payloads are limited to 125 bytes, two of which carry the code
	maxCloseReason = 123
)

// streamSocials handles GET /socials/stream: one JSON message per snapshot until the
// client leaves or the subscription ends
func (h *Handler) streamSocials(c *gin.Context) {
	ctx := c.Request.Context()
	user, _ := auth.CurrentUser(ctx)

	sub, err := h.socialService.OpenFeed(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer sub.Cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("user", user.Key()))
	log.Info("Snapshot stream opened")

	// reads only detect the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			log.Info("Snapshot stream closed by client")
			return

		case update, ok := <-sub.Updates():
			if !ok {
				reason := "subscription closed"
				code := websocket.CloseNormalClosure
				if err := sub.Err(); err != nil {
					reason = err.Error()
					code = websocket.CloseInternalServerErr
				}
				log.Info("Snapshot stream ended", zap.String("reason", reason))
				if len(reason) > maxCloseReason {
					reason = reason[:maxCloseReason]
				}
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(code, reason),
					time.Now().Add(writeTimeout))
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(service.BuildSnapshotResponse(update.Snapshot, user.Key(), update.Err)); err != nil {
				log.Warn("Failed to write snapshot", zap.Error(err))
				return
			}
		}
	}
}
