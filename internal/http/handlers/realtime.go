package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/http/response"
	"github.com/yungbote/novo-contact-backend/internal/pkg/ctxutil"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/realtime"
)

// RealtimeHandler serves call status streams. Each session holds at most
// one stream; a reconnect replaces the previous client.
type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*realtime.SSEClient // key: session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

func (h *RealtimeHandler) session(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
		return nil, false
	}
	if rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing session id"))
		return nil, false
	}
	return rd, true
}

func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd, ok := h.session(c)
	if !ok {
		return
	}

	h.mu.Lock()
	if existing, ok := h.clients[rd.SessionID]; ok {
		h.hub.CloseClient(existing)
		delete(h.clients, rd.SessionID)
	}
	client := h.hub.NewSSEClient(rd.UserID)
	h.clients[rd.SessionID] = client
	h.mu.Unlock()

	h.log.Debug("SSE stream open", "user_id", rd.UserID.String(), "client_id", client.ID.String())
	h.hub.AddChannel(client, rd.UserID.String())
	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[rd.SessionID] == client {
		delete(h.clients, rd.SessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

func (h *RealtimeHandler) SSESubscribe(c *gin.Context) {
	h.changeChannel(c, true)
}

func (h *RealtimeHandler) SSEUnsubscribe(c *gin.Context) {
	h.changeChannel(c, false)
}

func (h *RealtimeHandler) changeChannel(c *gin.Context, subscribe bool) {
	rd, ok := h.session(c)
	if !ok {
		return
	}
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Channel) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", errMissing("channel"))
		return
	}
	channel := strings.TrimSpace(req.Channel)
	// User channels are private.
	if other, err := uuid.Parse(channel); err == nil && other != rd.UserID {
		response.RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("channel belongs to another user"))
		return
	}

	h.mu.RLock()
	client, exists := h.clients[rd.SessionID]
	h.mu.RUnlock()
	if !exists {
		response.RespondError(c, http.StatusConflict, "no_stream", fmt.Errorf("no active SSE connection for this session"))
		return
	}

	if subscribe {
		h.hub.AddChannel(client, channel)
		response.RespondOK(c, gin.H{"message": "subscribed", "channel": channel})
		return
	}
	h.hub.RemoveChannel(client, channel)
	response.RespondOK(c, gin.H{"message": "unsubscribed", "channel": channel})
}
