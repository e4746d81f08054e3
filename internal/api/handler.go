package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"push-campaign-backend/config"
	"push-campaign-backend/internal/dispatch"
	"push-campaign-backend/internal/model"
	"push-campaign-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	orchestrator *dispatch.Orchestrator
	pushCfg      *config.PushConfig
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, o *dispatch.Orchestrator, pushCfg *config.PushConfig) *Handler {
	return &Handler{
		store:        s,
		orchestrator: o,
		pushCfg:      pushCfg,
	}
}

// operatorFromRequest resolves the operator identity from the X-Admin-Token
// header. On failure it writes the error response and returns nil.
func (h *Handler) operatorFromRequest(c *gin.Context) *model.Operator {
	op, err := h.store.ResolveOperatorToken(c.Request.Context(), c.GetHeader("X-Admin-Token"))
	if err != nil {
		if errors.Is(err, store.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or unknown operator token"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil
	}
	return op
}

// writeStoreError maps store sentinel errors to HTTP statuses.
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
