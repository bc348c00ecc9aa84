package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"violet-client/internal/app"
	"violet-client/internal/transport/http/response"
)

type ChatHandler struct {
	orchestrator *app.Orchestrator
}

type SendRequest struct {
	Question string `json:"question"`
}

type DraftRequest struct {
	Text string `json:"text"`
}

func NewChatHandler(orchestrator *app.Orchestrator) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator}
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if err := h.orchestrator.Send(c.Request.Context(), req.Question); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}

func (h *ChatHandler) Draft(c *gin.Context) {
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if err := h.orchestrator.SetDraft(req.Text); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}
