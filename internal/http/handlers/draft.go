package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lnco/artifact-service/internal/domain"
	"github.com/lnco/artifact-service/internal/http/middleware"
	"github.com/lnco/artifact-service/internal/http/response"
	"github.com/lnco/artifact-service/internal/platform/logger"
	"github.com/lnco/artifact-service/internal/services"
)

type DraftHandler struct {
	log          *logger.Logger
	draftService services.DraftService
}

func NewDraftHandler(log *logger.Logger, draftService services.DraftService) *DraftHandler {
	return &DraftHandler{
		log:          log.With("handler", "DraftHandler"),
		draftService: draftService,
	}
}

// Create is POST /draft.
func (h *DraftHandler) Create(c *gin.Context) {
	var artifact domain.Artifact
	if err := c.ShouldBindJSON(&artifact); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	draft, err := h.draftService.Create(c.Request.Context(), &artifact, middleware.Contributor(c))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, draft)
}

// GetByID is GET /draft/:id.
func (h *DraftHandler) GetByID(c *gin.Context) {
	draft, err := h.draftService.GetByID(c.Request.Context(), c.Param("id"), middleware.Contributor(c))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, draft)
}
