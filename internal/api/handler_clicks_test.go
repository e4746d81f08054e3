package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"push-campaign-backend/internal/model"
)

func TestClickRedirect(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(t, s, nil)

	op := &model.Operator{Name: "acme", Token: "tok-acme"}
	require.NoError(t, s.DB().Create(op).Error)
	campaign := &model.Campaign{OperatorID: op.ID, Title: "launch"}
	require.NoError(t, s.DB().Create(campaign).Error)

	t.Run("records click and redirects", func(t *testing.T) {
		url := fmt.Sprintf("/c?campaign_id=%d&delivery_id=7&url=https://example.com/x", campaign.ID)
		w := doJSON(t, r, http.MethodGet, url, nil, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/x", w.Header().Get("Location"))

		var click model.Click
		require.NoError(t, s.DB().First(&click).Error)
		assert.Equal(t, campaign.ID, click.CampaignID)
		assert.Equal(t, op.ID, click.OperatorID)
		require.NotNil(t, click.DeliveryID)
		assert.Equal(t, int64(7), *click.DeliveryID)

		var stored model.Campaign
		require.NoError(t, s.DB().First(&stored, campaign.ID).Error)
		assert.Equal(t, 1, stored.ClickCount)
	})

	t.Run("redirects even when recording fails", func(t *testing.T) {
		// Break the click store so the insert throws.
		require.NoError(t, s.DB().Migrator().DropTable(&model.Click{}))

		url := fmt.Sprintf("/c?campaign_id=%d&url=https://example.com/x", campaign.ID)
		w := doJSON(t, r, http.MethodGet, url, nil, nil)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/x", w.Header().Get("Location"))
	})

	t.Run("rejects a missing or relative url", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/c?campaign_id=%d", campaign.ID), nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/c?campaign_id=%d&url=/relative", campaign.ID), nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a missing campaign id", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/c?url=https://example.com/x", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
