package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"push-campaign-backend/internal/model"
)

type createTemplateRequest struct {
	Name               string `json:"name" binding:"required"`
	Title              string `json:"title" binding:"required"`
	Body               string `json:"body"`
	Icon               string `json:"icon"`
	Image              string `json:"image"`
	Badge              string `json:"badge"`
	Tag                string `json:"tag"`
	URL                string `json:"url"`
	RequireInteraction bool   `json:"require_interaction"`
}

// CreateTemplate stores reusable notification content for the operator.
func (h *Handler) CreateTemplate(c *gin.Context) {
	op := h.operatorFromRequest(c)
	if op == nil {
		return
	}

	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := &model.Template{
		OperatorID:         op.ID,
		Name:               req.Name,
		Title:              req.Title,
		Body:               req.Body,
		Icon:               req.Icon,
		Image:              req.Image,
		Badge:              req.Badge,
		Tag:                req.Tag,
		URL:                req.URL,
		RequireInteraction: req.RequireInteraction,
	}
	if err := h.store.CreateTemplate(c.Request.Context(), t); err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": t.ID})
}

// ListTemplates returns the operator's templates.
func (h *Handler) ListTemplates(c *gin.Context) {
	op := h.operatorFromRequest(c)
	if op == nil {
		return
	}

	templates, err := h.store.ListTemplates(c.Request.Context(), op.ID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, templates)
}
