package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"violet-client/internal/app"
	"violet-client/internal/backend"
	"violet-client/internal/transport/http/response"
)

// fail maps an orchestrator error to a status and envelope code. The state
// after the failure is attached so the page can re-render in one round trip.
func fail(c *gin.Context, orchestrator *app.Orchestrator, err error) {
	status, code := classify(err)
	response.ErrorWithData(c, status, code, err.Error(), orchestrator.Snapshot())
}

func classify(err error) (int, int) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, app.ErrNotAuthenticated):
		return http.StatusUnauthorized, response.CodeUnauthorized
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized, response.CodeSessionExpired
	case errors.Is(err, app.ErrNotConfirmed):
		return http.StatusPreconditionRequired, response.CodeNotConfirmed
	case errors.Is(err, app.ErrUploadInProgress), errors.Is(err, app.ErrChatPending):
		return http.StatusConflict, response.CodeConflict
	case errors.Is(err, app.ErrUnknownCollection):
		return http.StatusNotFound, response.CodeNotFound
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrInvalidUpload),
		errors.Is(err, app.ErrEmptyQuestion),
		errors.Is(err, app.ErrNoSelection):
		return http.StatusBadRequest, response.CodeBadRequest
	case backend.IsTransport(err):
		return http.StatusBadGateway, response.CodeBackendUnavailable
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status, response.CodeBackendRejected
		}
		return http.StatusBadGateway, response.CodeBackendUnavailable
	default:
		return http.StatusInternalServerError, response.CodeInternalServer
	}
}
