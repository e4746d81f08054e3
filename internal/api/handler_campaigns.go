package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"push-campaign-backend/internal/model"
	"push-campaign-backend/internal/push"
)

type sendCampaignRequest struct {
	TemplateID int64 `json:"template_id"`

	// Inline payload fields, used when no template id is given. A supplied
	// field also overrides the template's value.
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon"`
	Image              string         `json:"image"`
	Badge              string         `json:"badge"`
	Tag                string         `json:"tag"`
	URL                string         `json:"url"`
	Data               map[string]any `json:"data"`
	RequireInteraction bool           `json:"require_interaction"`
	Vibrate            []int          `json:"vibrate"`
}

// SendCampaign resolves the notification payload, persists the campaign row,
// and fans it out to all of the operator's active subscribers. The response
// carries the per-recipient outcomes and final tallies.
func (h *Handler) SendCampaign(c *gin.Context) {
	op := h.operatorFromRequest(c)
	if op == nil {
		return
	}

	var req sendCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.resolvePayload(c, op.ID, &req)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if payload.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign title is required"})
		return
	}

	extras, err := json.Marshal(map[string]any{
		"image":              payload.Image,
		"badge":              payload.Badge,
		"tag":                payload.Tag,
		"requireInteraction": payload.RequireInteraction,
		"vibrate":            payload.Vibrate,
		"data":               payload.Data,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	campaign := &model.Campaign{
		OperatorID: op.ID,
		Title:      payload.Title,
		Body:       payload.Body,
		Icon:       payload.Icon,
		URL:        payload.URL,
		Extras:     string(extras),
	}
	if err := h.store.CreateCampaign(c.Request.Context(), campaign); err != nil {
		writeStoreError(c, err)
		return
	}

	recipients, err := h.store.ListActiveSubscribers(c.Request.Context(), op.ID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	result, err := h.orchestrator.Dispatch(c.Request.Context(), campaign, payload, recipients)
	if err != nil {
		log.Printf("Campaign %d dispatch error: %v", campaign.ID, err)
		status := http.StatusInternalServerError
		if errors.Is(err, push.ErrPayloadTooLarge) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error(), "campaign_id": campaign.ID})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"campaign_id": campaign.ID,
		"tally":       result.Tally,
		"outcomes":    result.Outcomes,
	})
}

// resolvePayload builds the push payload from the referenced template, with
// inline request fields taking precedence.
func (h *Handler) resolvePayload(c *gin.Context, operatorID int64, req *sendCampaignRequest) (push.Payload, error) {
	p := push.Payload{
		Title:              req.Title,
		Body:               req.Body,
		Icon:               req.Icon,
		Image:              req.Image,
		Badge:              req.Badge,
		Tag:                req.Tag,
		URL:                req.URL,
		Data:               req.Data,
		RequireInteraction: req.RequireInteraction,
		Vibrate:            req.Vibrate,
	}
	if req.TemplateID == 0 {
		return p, nil
	}

	t, err := h.store.GetTemplate(c.Request.Context(), req.TemplateID, operatorID)
	if err != nil {
		return p, fmt.Errorf("template %d: %w", req.TemplateID, err)
	}
	if p.Title == "" {
		p.Title = t.Title
	}
	if p.Body == "" {
		p.Body = t.Body
	}
	if p.Icon == "" {
		p.Icon = t.Icon
	}
	if p.Image == "" {
		p.Image = t.Image
	}
	if p.Badge == "" {
		p.Badge = t.Badge
	}
	if p.Tag == "" {
		p.Tag = t.Tag
	}
	if p.URL == "" {
		p.URL = t.URL
	}
	if !p.RequireInteraction {
		p.RequireInteraction = t.RequireInteraction
	}
	return p, nil
}

// GetCampaign returns the campaign record, its deliveries joined with
// subscriber metadata, the status tally, and all recorded clicks.
func (h *Handler) GetCampaign(c *gin.Context) {
	op := h.operatorFromRequest(c)
	if op == nil {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid campaign id"})
		return
	}

	detail, err := h.store.CampaignDetail(c.Request.Context(), id, op.ID)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
