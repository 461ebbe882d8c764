package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/novo-contact-backend/internal/http/response"
	"github.com/yungbote/novo-contact-backend/internal/services"
)

type ScheduledCallHandler struct {
	scheduled services.ScheduledCallService
}

func NewScheduledCallHandler(scheduled services.ScheduledCallService) *ScheduledCallHandler {
	return &ScheduledCallHandler{scheduled: scheduled}
}

func (h *ScheduledCallHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req services.ScheduledCallInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sc, err := h.scheduled.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sc)
}

// List accepts an optional ?status= filter.
func (h *ScheduledCallHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	list, err := h.scheduled.List(c.Request.Context(), userID, strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scheduled_calls": list})
}

func (h *ScheduledCallHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sc, err := h.scheduled.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sc)
}

func (h *ScheduledCallHandler) Cancel(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sc, err := h.scheduled.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sc)
}
