package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"violet-client/internal/app"
	"violet-client/internal/model"
	"violet-client/internal/transport/http/response"
)

const maxUploadBytes = 64 << 20

type UploadHandler struct {
	orchestrator *app.Orchestrator
}

func NewUploadHandler(orchestrator *app.Orchestrator) *UploadHandler {
	return &UploadHandler{orchestrator: orchestrator}
}

// Submit runs the whole upload flow for one multipart request: the "files"
// parts become the selection and "collection_name" names the collection.
func (h *UploadHandler) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart payload")
		return
	}

	files := make([]model.UploadFile, 0, len(form.File["files"]))
	for _, fh := range form.File["files"] {
		src, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Sprintf("read %s failed", fh.Filename))
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, fmt.Sprintf("read %s failed", fh.Filename))
			return
		}
		files = append(files, model.MemFile(fh.Filename, data))
	}

	if err := h.orchestrator.OpenUpload(); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	if _, err := h.orchestrator.SelectFiles(files); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	if err := h.orchestrator.SetCollectionName(c.PostForm("collection_name")); err != nil {
		fail(c, h.orchestrator, err)
		return
	}

	coll, err := h.orchestrator.SubmitUpload(c.Request.Context())
	if err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, gin.H{"collection": coll, "state": h.orchestrator.Snapshot()})
}

func (h *UploadHandler) Cancel(c *gin.Context) {
	if err := h.orchestrator.CancelUpload(); err != nil {
		fail(c, h.orchestrator, err)
		return
	}
	response.OK(c, h.orchestrator.Snapshot())
}
