package handler

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pulseboard/pulseboard-backend/internal/config"
	"github.com/pulseboard/pulseboard-backend/internal/middleware"
	"github.com/pulseboard/pulseboard-backend/internal/service"
	ws "github.com/pulseboard/pulseboard-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// WSHandler streams permission change events to connected admin clients so
// an open access-control editor learns about someone else's edit without
// polling.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// PermissionStream godoc
// WS /ws/v1/permissions/stream
// Upgrades to WebSocket and forwards the Redis permission change channel.
func (h *WSHandler) PermissionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	sub := h.rdb.Subscribe(ctx, config.CacheKey.PermissionEventsChannel())
	defer sub.Close()

	wsLog := h.log.With().Str("user_id", claims.UserID.String()).Logger()
	wsLog.Info().Msg("Permission stream connected")

	// Reader goroutine only detects the client going away; this stream is
	// one-directional.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				wsLog.Warn().Msg("Event subscription closed")
				_ = ws.WriteError(conn, "event stream closed, reconnect")
				return
			}

			var event service.PermissionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed permission event")
				continue
			}

			err := ws.WriteTyped(conn, ws.PermissionsChanged{
				Event: ws.EventPermissions,
				Role:  string(event.Role),
				Kind:  event.Kind,
				At:    event.At.Format(time.RFC3339),
			})
			if err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		case <-done:
			wsLog.Debug().Msg("Client disconnected")
			return
		case <-ctx.Done():
			return
		}
	}
}
