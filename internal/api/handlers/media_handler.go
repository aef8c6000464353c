package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/dojoportal/internal/carousel"
	"github.com/yoockh/dojoportal/internal/services"
	"github.com/yoockh/dojoportal/internal/utils"
)

const maxUploadBytes = 50 << 20

type MediaHandler struct {
	svc services.MediaService
}

func NewMediaHandler(svc services.MediaService) *MediaHandler {
	return &MediaHandler{svc: svc}
}

func (h *MediaHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *MediaHandler) Upload(c *gin.Context) {
	const op = "MediaHandler.Upload"

	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}
	if fh.Size <= 0 {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file is empty", nil))
		return
	}
	if fh.Size > maxUploadBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large (max 50MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff content type (read 512 bytes)
	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	head = head[:n]

	ct := http.DetectContentType(head)
	if declared := fh.Header.Get("Content-Type"); !isMedia(ct) && isMedia(declared) {
		ct = declared
	}

	item, err := h.svc.Upload(c.Request.Context(), id.ID, services.UploadFile{
		Name:        fh.Filename,
		ContentType: ct,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func isMedia(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/")
}

type AddEmbedRequest struct {
	// Embed is a bare URL or pasted iframe markup.
	Embed string `json:"embed"`
}

func (h *MediaHandler) AddEmbed(c *gin.Context) {
	const op = "MediaHandler.AddEmbed"

	id, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req AddEmbedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}
	src, ok := carousel.ParseEmbed(req.Embed)
	if !ok {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "Paste a URL or iframe embed code.", nil))
		return
	}

	item, err := h.svc.AddEmbed(c.Request.Context(), id.ID, src)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *MediaHandler) Delete(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.svc.Remove(c.Request.Context(), *item); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
