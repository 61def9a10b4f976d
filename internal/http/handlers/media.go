package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lnco/artifact-service/internal/http/response"
	"github.com/lnco/artifact-service/internal/platform/logger"
	"github.com/lnco/artifact-service/internal/services"
)

type MediaHandler struct {
	log          *logger.Logger
	mediaService services.MediaService
}

func NewMediaHandler(log *logger.Logger, mediaService services.MediaService) *MediaHandler {
	return &MediaHandler{
		log:          log.With("handler", "MediaHandler"),
		mediaService: mediaService,
	}
}

// Upload is POST /upload: multipart field "image" plus an "isPrivate" form
// value.
func (h *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	isPrivate, _ := strconv.ParseBool(c.PostForm("isPrivate"))

	ref, err := h.mediaService.Upload(c.Request.Context(), data, fileHeader.Filename, isPrivate)
	if err != nil {
		h.log.Error("Media upload failed", "filename", fileHeader.Filename, "error", err)
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, ref)
}

type uploadByURLRequest struct {
	URL       string `json:"url" binding:"required"`
	IsPrivate bool   `json:"isPrivate"`
}

// UploadByURL is POST /upload/url.
func (h *MediaHandler) UploadByURL(c *gin.Context) {
	var req uploadByURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	ref, err := h.mediaService.UploadByURL(c.Request.Context(), req.URL, req.IsPrivate)
	if err != nil {
		h.log.Error("Media upload by URL failed", "url", req.URL, "error", err)
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, ref)
}

// Delete is DELETE /media/:name?isPrivate=.
func (h *MediaHandler) Delete(c *gin.Context) {
	isPrivate, _ := strconv.ParseBool(c.Query("isPrivate"))

	if err := h.mediaService.Delete(c.Request.Context(), c.Param("name"), isPrivate); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
