package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"violet-client/internal/app"
	"violet-client/internal/transport/http/response"
)

type AuthHandler struct {
	orchestrator *app.Orchestrator
}

// CredentialsRequest leaves emptiness checks to the orchestrator so that an
// empty field raises the same notification as in every other presentation.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(orchestrator *app.Orchestrator) *AuthHandler {
	return &AuthHandler{orchestrator: orchestrator}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if err := h.orchestrator.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if err := h.orchestrator.Register(c.Request.Context(), req.Username, req.Password); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.orchestrator.Logout(c.Request.Context())
	response.OK(c, h.orchestrator.Snapshot())
}

func (h *AuthHandler) State(c *gin.Context) {
	response.OK(c, h.orchestrator.Snapshot())
}
