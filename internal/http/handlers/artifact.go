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

type ArtifactHandler struct {
	log             *logger.Logger
	artifactService services.ArtifactService
}

func NewArtifactHandler(log *logger.Logger, artifactService services.ArtifactService) *ArtifactHandler {
	return &ArtifactHandler{
		log:             log.With("handler", "ArtifactHandler"),
		artifactService: artifactService,
	}
}

// List is GET /fetch: every artifact projected to its journal entry.
func (h *ArtifactHandler) List(c *gin.Context) {
	journals, err := h.artifactService.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, journals)
}

// Journal is GET /user/journal: the caller's own artifacts.
func (h *ArtifactHandler) Journal(c *gin.Context) {
	contributor := middleware.Contributor(c)
	journals, err := h.artifactService.ListByContributor(c.Request.Context(), contributor)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, journals)
}

// GetByID is GET /fetch/:id. Anonymous reads are allowed; the editability
// flags just come back false.
func (h *ArtifactHandler) GetByID(c *gin.Context) {
	artifact, err := h.artifactService.GetByID(c.Request.Context(), c.Param("id"), middleware.Contributor(c))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, artifact)
}

// Create is POST /publish.
func (h *ArtifactHandler) Create(c *gin.Context) {
	var artifact domain.Artifact
	if err := c.ShouldBindJSON(&artifact); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}
	contributor := middleware.Contributor(c)

	created, err := h.artifactService.Create(c.Request.Context(), &artifact, contributor)
	if err != nil {
		h.log.Error("Artifact create failed", "contributor", contributor, "error", err)
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, created)
}

// Update is PATCH /update/:id.
func (h *ArtifactHandler) Update(c *gin.Context) {
	var partial domain.Artifact
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_payload", err)
		return
	}

	updated, err := h.artifactService.Update(c.Request.Context(), c.Param("id"), &partial, middleware.Contributor(c))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

// Delete is DELETE /remove/:id.
func (h *ArtifactHandler) Delete(c *gin.Context) {
	if err := h.artifactService.Delete(c.Request.Context(), c.Param("id"), middleware.Contributor(c)); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
