package api

import (
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"push-campaign-backend/internal/metrics"
	"push-campaign-backend/internal/store"
	"push-campaign-backend/internal/ua"
)

// ClickRedirect records a click against its campaign and redirects to the
// target URL. Recording is best-effort: a failed write is logged, never
// allowed to block the redirect.
func (h *Handler) ClickRedirect(c *gin.Context) {
	target := c.Query("url")
	if !validRedirectTarget(target) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be an absolute http(s) URL"})
		return
	}

	campaignID, err := strconv.ParseInt(c.Query("campaign_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign_id is required"})
		return
	}

	var deliveryID *int64
	if raw := c.Query("delivery_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			deliveryID = &id
		}
	}

	agent := c.Request.UserAgent()
	client := ua.Parse(agent)
	err = h.store.RecordClick(c.Request.Context(), store.ClickRecord{
		CampaignID: campaignID,
		DeliveryID: deliveryID,
		TargetURL:  target,
		IP:         c.ClientIP(),
		UserAgent:  agent,
		Device:     client.Device,
		Browser:    client.Browser,
	})
	if err != nil {
		log.Printf("Failed to record click for campaign %d: %v", campaignID, err)
	} else {
		metrics.RecordClick()
	}

	c.Redirect(http.StatusFound, target)
}

func validRedirectTarget(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
