package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"violet-client/internal/app"
	"violet-client/internal/transport/http/response"
)

type CollectionHandler struct {
	orchestrator *app.Orchestrator
}

func NewCollectionHandler(orchestrator *app.Orchestrator) *CollectionHandler {
	return &CollectionHandler{orchestrator: orchestrator}
}

// queryConfirmer approves deletes only when the request carries confirm=true.
func queryConfirmer(c *gin.Context) app.Confirmer {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	return app.ConfirmFunc(func(string) bool { return confirmed })
}

func collectionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid collection id")
		return 0, false
	}
	return id, true
}

func (h *CollectionHandler) Refresh(c *gin.Context) {
	if err := h.orchestrator.Refresh(c.Request.Context()); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}

func (h *CollectionHandler) Select(c *gin.Context) {
	id, ok := collectionID(c)
	if !ok {
		return
	}
	if err := h.orchestrator.SelectByID(c.Request.Context(), id); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := collectionID(c)
	if !ok {
		return
	}
	if err := h.orchestrator.Delete(c.Request.Context(), id, queryConfirmer(c)); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}

func (h *CollectionHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.orchestrator.DeleteAll(c.Request.Context(), queryConfirmer(c))
	if err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, gin.H{"deleted_count": deleted, "state": h.orchestrator.Snapshot()})
}

func (h *CollectionHandler) Tables(c *gin.Context) {
	id, ok := collectionID(c)
	if !ok {
		return
	}
	tables, err := h.orchestrator.Tables(c.Request.Context(), id)
	if err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, gin.H{"collection_id": id, "tables": tables})
}

func (h *CollectionHandler) Providers(c *gin.Context) {
	providers, err := h.orchestrator.Providers(c.Request.Context())
	if err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, gin.H{"providers": providers})
}
