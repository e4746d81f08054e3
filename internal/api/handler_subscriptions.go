package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"push-campaign-backend/internal/store"
	"push-campaign-backend/internal/ua"
)

type subscriptionKeys struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

type registerSubscriptionRequest struct {
	Endpoint   string           `json:"endpoint" binding:"required"`
	Keys       subscriptionKeys `json:"keys" binding:"required"`
	UserAgent  string           `json:"userAgent"`
	AdminToken string           `json:"adminToken"`
}

// RegisterSubscription handles creation or in-place refresh of a push
// subscription keyed by its endpoint URL.
func (h *Handler) RegisterSubscription(c *gin.Context) {
	var req registerSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agent := req.UserAgent
	if agent == "" {
		agent = c.Request.UserAgent()
	}
	client := ua.Parse(agent)

	id, err := h.store.UpsertSubscriber(c.Request.Context(), store.SubscriberRegistration{
		Endpoint:      req.Endpoint,
		P256DH:        req.Keys.P256DH,
		Auth:          req.Keys.Auth,
		UserAgent:     agent,
		Device:        client.Device,
		Browser:       client.Browser,
		OperatorToken: req.AdminToken,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// Unsubscribe deactivates a subscription. Repeated calls are harmless.
func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DeactivateSubscriber(c.Request.Context(), req.Endpoint); err != nil {
		writeStoreError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
