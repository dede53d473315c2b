package relay

import (
	"context"
	"net/http"
	"strings"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/pkg/utils/tokens"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub      *Hub
	cfg      *config.Config
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, cfg *config.Config, log *zap.Logger) *Handler {
	h := &Handler{hub: hub, cfg: cfg, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) Hub() *Hub { return h.hub }

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.CORS.AllowOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// peerFromToken fills the user fields when the query carries a valid token.
// A missing or invalid token leaves the connection anonymous.
func (h *Handler) peerFromToken(raw string) Peer {
	if raw == "" {
		return Peer{}
	}
	claims, err := tokens.Parse(h.cfg.Auth.JWTSecret, raw)
	if err != nil {
		h.log.Debug("relay token rejected, connecting anonymously", zap.Error(err))
		return Peer{}
	}
	return Peer{UserID: claims.UserID.String(), Name: claims.Name}
}

// ServeWS godoc
//
//	@Summary		Realtime relay
//	@Description	Upgrades to a websocket carrying join-session, leave-session and code-update frames
//	@Tags			relay
//	@Param			token	query	string	false	"Optional bearer token identifying the user to peers"
//	@Success		101	"Switching Protocols"
//	@Router			/ws [get]
func (h *Handler) ServeWS(c *gin.Context) {
	peer := h.peerFromToken(c.Query("token"))

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("relay upgrade failed", zap.Error(err))
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	client := newClient(h.hub, conn, peer, h.cfg.Relay.SendBuffer)
	client.log.Debug("relay client connected", zap.String("user_id", peer.UserID))

	if hello, err := EncodeFrame(EventConnected, Connected{ConnectionID: client.ID()}); err == nil {
		client.enqueue(ctx, hello)
	}
	client.run(ctx, h.cfg.Relay.MaxMessageBytes)
}
