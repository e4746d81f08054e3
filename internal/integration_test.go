package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"push-campaign-backend/config"
	"push-campaign-backend/internal/api"
	"push-campaign-backend/internal/dispatch"
	"push-campaign-backend/internal/model"
	"push-campaign-backend/internal/push"
	"push-campaign-backend/internal/store"
)

// pushServiceStub fakes the third-party push service at the webpush level so
// the full stack (handler, orchestrator, transport, key normalization) runs.
type pushServiceStub struct {
	mu        sync.Mutex
	statusFor map[string]int
	seen      []*webpush.Subscription
}

func (p *pushServiceStub) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	p.mu.Lock()
	p.seen = append(p.seen, sub)
	p.mu.Unlock()
	status, ok := p.statusFor[sub.Endpoint]
	if !ok {
		status = http.StatusCreated
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}, nil
}

// TestCampaignLifecycle walks one campaign end to end: subscribe, fan out
// against a push service that reports one endpoint gone, verify the delivery
// rows, counters and deactivation, then attribute a click.
func TestCampaignLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(
		&model.Operator{},
		&model.Subscriber{},
		&model.Template{},
		&model.Campaign{},
		&model.Delivery{},
		&model.Click{},
	))

	cfg := &config.Config{
		Server: config.ServerConfig{
			RateLimitPerSec: 1000,
			RateLimitBurst:  1000,
			CacheTTLSeconds: 60,
		},
		Push: config.PushConfig{
			PublicKey:   "test-public",
			PrivateKey:  "test-private",
			Subject:     "mailto:ops@example.com",
			TTL:         86400,
			SendTimeout: time.Second,
		},
		Dispatch: config.DispatchConfig{Concurrency: 4},
	}

	appStore := store.NewGormStore(testDB)
	operator, err := appStore.EnsureOperator(context.Background(), "acme", "ops@acme.test")
	require.NoError(t, err)

	stub := &pushServiceStub{statusFor: map[string]int{
		"https://push.example.com/e1": http.StatusGone,
	}}
	transport := push.NewTransportWithSender(&cfg.Push, stub)
	orchestrator := dispatch.NewOrchestrator(appStore, transport, cfg.Dispatch.Concurrency)
	router := api.NewRouter(cfg, appStore, orchestrator)

	do := func(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	// --- Step 1: two endpoints register under the operator's token ---
	t.Run("Step 1: Subscribers Register", func(t *testing.T) {
		for _, endpoint := range []string{"https://push.example.com/e1", "https://push.example.com/e2"} {
			w := do(http.MethodPost, "/api/subscriptions", gin.H{
				"endpoint":   endpoint,
				"keys":       gin.H{"p256dh": "AAA+xyz/1==", "auth": "BBB+abc/2=="},
				"adminToken": operator.Token,
			}, nil)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		subs, err := appStore.ListActiveSubscribers(context.Background(), operator.ID)
		require.NoError(t, err)
		assert.Len(t, subs, 2)
	})

	// --- Step 2: the campaign fans out; e1's endpoint is gone ---
	var campaignID int64
	t.Run("Step 2: Campaign Fan-out", func(t *testing.T) {
		w := do(http.MethodPost, "/api/campaigns", gin.H{
			"title": "Launch day",
			"body":  "We are live",
			"url":   "https://acme.test/launch",
		}, map[string]string{"X-Admin-Token": operator.Token})
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			CampaignID int64       `json:"campaign_id"`
			Tally      store.Tally `json:"tally"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		campaignID = resp.CampaignID
		assert.Equal(t, store.Tally{Success: 1, Expired: 1}, resp.Tally)

		// Key material reached the push service in unpadded URL-safe form.
		require.NotEmpty(t, stub.seen)
		for _, sub := range stub.seen {
			assert.Equal(t, "AAA-xyz_1", sub.Keys.P256dh)
			assert.Equal(t, "BBB-abc_2", sub.Keys.Auth)
		}

		var delivery model.Delivery
		require.NoError(t, testDB.
			Joins("JOIN subscribers ON subscribers.id = deliveries.subscriber_id").
			Where("subscribers.endpoint = ?", "https://push.example.com/e1").
			First(&delivery).Error)
		assert.Equal(t, model.DeliveryExpired, delivery.Status)

		var gone model.Subscriber
		require.NoError(t, testDB.First(&gone, "endpoint = ?", "https://push.example.com/e1").Error)
		assert.False(t, gone.Active)

		var campaign model.Campaign
		require.NoError(t, testDB.First(&campaign, campaignID).Error)
		assert.Equal(t, 2, campaign.TotalRecipients)
		assert.Equal(t, 1, campaign.SuccessCount)
		assert.Equal(t, 1, campaign.ExpiredCount)
	})

	// --- Step 3: the expired endpoint is skipped next time ---
	t.Run("Step 3: Expired Endpoint Skipped", func(t *testing.T) {
		stub.seen = nil
		w := do(http.MethodPost, "/api/campaigns", gin.H{"title": "Follow-up"},
			map[string]string{"X-Admin-Token": operator.Token})
		require.Equal(t, http.StatusCreated, w.Code)

		require.Len(t, stub.seen, 1)
		assert.Equal(t, "https://push.example.com/e2", stub.seen[0].Endpoint)
	})

	// --- Step 4: a click on the delivered notification is attributed ---
	t.Run("Step 4: Click Attribution", func(t *testing.T) {
		w := do(http.MethodGet, fmt.Sprintf("/c?campaign_id=%d&url=https://acme.test/launch", campaignID), nil, nil)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://acme.test/launch", w.Header().Get("Location"))

		var campaign model.Campaign
		require.NoError(t, testDB.First(&campaign, campaignID).Error)
		assert.Equal(t, 1, campaign.ClickCount)

		var click model.Click
		require.NoError(t, testDB.First(&click, "campaign_id = ?", campaignID).Error)
		assert.Equal(t, operator.ID, click.OperatorID)
	})
}
