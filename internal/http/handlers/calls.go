package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/http/response"
	"github.com/yungbote/novo-contact-backend/internal/observability"
	"github.com/yungbote/novo-contact-backend/internal/services"
)

type CallHandler struct {
	calls   services.CallService
	metrics *observability.Metrics
}

func NewCallHandler(calls services.CallService, metrics *observability.Metrics) *CallHandler {
	return &CallHandler{calls: calls, metrics: metrics}
}

// Initiate places a call for an owned contact. The body script, when set,
// replaces the stored one for this call only.
func (h *CallHandler) Initiate(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		ContactID uuid.UUID `json:"contact_id"`
		Script    string    `json:"script"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.ContactID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissing("contact_id"))
		return
	}
	res, err := h.calls.Initiate(c.Request.Context(), userID, req.ContactID, req.Script)
	if err != nil {
		h.metrics.IncCallPlaced("rejected")
		response.RespondAPIError(c, err)
		return
	}
	h.metrics.IncCallPlaced("initiated")
	response.RespondOK(c, res)
}

func (h *CallHandler) Status(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	st, err := h.calls.Status(c.Request.Context(), strings.TrimSpace(c.Param("sid")))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, st)
}
