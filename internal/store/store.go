package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"push-campaign-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Operators
	ResolveOperatorToken(ctx context.Context, token string) (*model.Operator, error)
	EnsureOperator(ctx context.Context, name, email string) (*model.Operator, error)

	// Subscription registry
	UpsertSubscriber(ctx context.Context, reg SubscriberRegistration) (int64, error)
	DeactivateSubscriber(ctx context.Context, endpoint string) error
	ListActiveSubscribers(ctx context.Context, operatorID int64) ([]model.Subscriber, error)

	// Campaigns and deliveries
	CreateCampaign(ctx context.Context, c *model.Campaign) error
	CreateDelivery(ctx context.Context, d *model.Delivery) error
	FinalizeCampaign(ctx context.Context, campaignID int64, tally Tally) error
	CampaignDetail(ctx context.Context, campaignID, operatorID int64) (*CampaignDetail, error)

	// Click attribution
	RecordClick(ctx context.Context, rec ClickRecord) error

	// Templates
	CreateTemplate(ctx context.Context, t *model.Template) error
	ListTemplates(ctx context.Context, operatorID int64) ([]model.Template, error)
	GetTemplate(ctx context.Context, id, operatorID int64) (*model.Template, error)

	// Retention
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for handlers that run ad-hoc queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ResolveOperatorToken looks up the operator owning the given token.
func (s *gormStore) ResolveOperatorToken(ctx context.Context, token string) (*model.Operator, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var op model.Operator
	err := s.db.WithContext(ctx).First(&op, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve operator token: %w", err)
	}
	return &op, nil
}

// EnsureOperator returns the operator with the given name, creating it with a
// freshly generated token when absent.
func (s *gormStore) EnsureOperator(ctx context.Context, name, email string) (*model.Operator, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: operator name is required", ErrValidation)
	}
	var op model.Operator
	err := s.db.WithContext(ctx).First(&op, "name = ?", name).Error
	if err == nil {
		return &op, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up operator %q: %w", name, err)
	}

	op = model.Operator{Name: name, Email: email, Token: uuid.NewString()}
	if err := s.db.WithContext(ctx).Create(&op).Error; err != nil {
		return nil, fmt.Errorf("failed to create operator %q: %w", name, err)
	}
	return &op, nil
}

// UpsertSubscriber registers a push endpoint. The endpoint is the identity: a
// re-subscribe updates the existing row in place, refreshes the key material,
// and reactivates it. The operator id is only set when the stored value is
// unset and the incoming token resolves; an existing owner is never cleared.
func (s *gormStore) UpsertSubscriber(ctx context.Context, reg SubscriberRegistration) (int64, error) {
	if reg.Endpoint == "" || reg.P256DH == "" || reg.Auth == "" {
		return 0, fmt.Errorf("%w: endpoint, p256dh and auth are required", ErrValidation)
	}

	var operatorID *int64
	if reg.OperatorToken != "" {
		op, err := s.ResolveOperatorToken(ctx, reg.OperatorToken)
		if err != nil {
			return 0, err
		}
		operatorID = &op.ID
	}

	var id int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.Subscriber
		err := tx.First(&sub, "endpoint = ?", reg.Endpoint).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sub = model.Subscriber{
				Endpoint:   reg.Endpoint,
				P256DH:     reg.P256DH,
				Auth:       reg.Auth,
				OperatorID: operatorID,
				UserAgent:  reg.UserAgent,
				Device:     reg.Device,
				Browser:    reg.Browser,
				Active:     true,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return fmt.Errorf("failed to create subscriber: %w", err)
			}
			id = sub.ID
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up subscriber: %w", err)
		}

		sub.P256DH = reg.P256DH
		sub.Auth = reg.Auth
		sub.UserAgent = reg.UserAgent
		sub.Device = reg.Device
		sub.Browser = reg.Browser
		sub.Active = true
		if sub.OperatorID == nil && operatorID != nil {
			sub.OperatorID = operatorID
		}
		// Select lists the updated columns so a nil operator id never
		// overwrites an existing owner.
		cols := []string{"p256dh", "auth", "user_agent", "device", "browser", "active", "updated_at"}
		if sub.OperatorID != nil {
			cols = append(cols, "operator_id")
		}
		if err := tx.Model(&sub).Select(cols).Updates(&sub).Error; err != nil {
			return fmt.Errorf("failed to update subscriber: %w", err)
		}
		id = sub.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeactivateSubscriber soft-deletes an endpoint. It is a no-op when the
// endpoint is already inactive or unknown.
func (s *gormStore) DeactivateSubscriber(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrValidation)
	}
	err := s.db.WithContext(ctx).
		Model(&model.Subscriber{}).
		Where("endpoint = ?", endpoint).
		Update("active", false).Error
	if err != nil {
		return fmt.Errorf("failed to deactivate subscriber %s: %w", endpoint, err)
	}
	return nil
}

// ListActiveSubscribers returns the fan-out recipient set for an operator.
func (s *gormStore) ListActiveSubscribers(ctx context.Context, operatorID int64) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	err := s.db.WithContext(ctx).
		Where("operator_id = ? AND active = ?", operatorID, true).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscribers: %w", err)
	}
	return subs, nil
}

// CreateCampaign persists a new campaign row with zeroed counters.
func (s *gormStore) CreateCampaign(ctx context.Context, c *model.Campaign) error {
	if c.Title == "" {
		return fmt.Errorf("%w: campaign title is required", ErrValidation)
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// CreateDelivery persists one settled delivery attempt.
func (s *gormStore) CreateDelivery(ctx context.Context, d *model.Delivery) error {
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create delivery for campaign %d: %w", d.CampaignID, err)
	}
	return nil
}

// FinalizeCampaign writes the aggregate counters in a single UPDATE once all
// delivery attempts have settled.
func (s *gormStore) FinalizeCampaign(ctx context.Context, campaignID int64, tally Tally) error {
	res := s.db.WithContext(ctx).
		Model(&model.Campaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]any{
			"total_recipients": tally.Total(),
			"success_count":    tally.Success,
			"failed_count":     tally.Failed,
			"expired_count":    tally.Expired,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to finalize campaign %d: %w", campaignID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("finalize campaign %d: %w", campaignID, ErrNotFound)
	}
	return nil
}

// CampaignDetail loads a campaign scoped to its owning operator, its
// deliveries joined with subscriber metadata, the status tally, and clicks.
func (s *gormStore) CampaignDetail(ctx context.Context, campaignID, operatorID int64) (*CampaignDetail, error) {
	var detail CampaignDetail
	err := s.db.WithContext(ctx).
		First(&detail.Campaign, "id = ? AND operator_id = ?", campaignID, operatorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign %d: %w", campaignID, err)
	}

	err = s.db.WithContext(ctx).
		Model(&model.Delivery{}).
		Select("deliveries.id, deliveries.subscriber_id, deliveries.status, deliveries.error, subscribers.endpoint, subscribers.device, subscribers.browser").
		Joins("JOIN subscribers ON subscribers.id = deliveries.subscriber_id").
		Where("deliveries.campaign_id = ?", campaignID).
		Scan(&detail.Deliveries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load deliveries for campaign %d: %w", campaignID, err)
	}

	for _, d := range detail.Deliveries {
		switch d.Status {
		case model.DeliverySuccess:
			detail.Tally.Success++
		case model.DeliveryFailed:
			detail.Tally.Failed++
		case model.DeliveryExpired:
			detail.Tally.Expired++
		}
	}

	err = s.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Find(&detail.Clicks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load clicks for campaign %d: %w", campaignID, err)
	}
	return &detail, nil
}

// RecordClick inserts a click row and bumps the campaign click counter with a
// single-statement increment so concurrent clicks cannot lose updates.
func (s *gormStore) RecordClick(ctx context.Context, rec ClickRecord) error {
	if rec.CampaignID == 0 || rec.TargetURL == "" {
		return fmt.Errorf("%w: campaign id and target url are required", ErrValidation)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaign model.Campaign
		err := tx.Select("id", "operator_id").First(&campaign, rec.CampaignID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load campaign %d for click: %w", rec.CampaignID, err)
		}

		click := model.Click{
			CampaignID: campaign.ID,
			DeliveryID: rec.DeliveryID,
			OperatorID: campaign.OperatorID,
			TargetURL:  rec.TargetURL,
			IP:         rec.IP,
			UserAgent:  rec.UserAgent,
			Device:     rec.Device,
			Browser:    rec.Browser,
		}
		if err := tx.Create(&click).Error; err != nil {
			return fmt.Errorf("failed to create click: %w", err)
		}

		err = tx.Model(&model.Campaign{}).
			Where("id = ?", campaign.ID).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
		if err != nil {
			return fmt.Errorf("failed to increment click count for campaign %d: %w", campaign.ID, err)
		}
		return nil
	})
}

// CreateTemplate stores reusable notification content for an operator.
func (s *gormStore) CreateTemplate(ctx context.Context, t *model.Template) error {
	if t.Name == "" || t.Title == "" {
		return fmt.Errorf("%w: template name and title are required", ErrValidation)
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// ListTemplates returns all templates owned by an operator.
func (s *gormStore) ListTemplates(ctx context.Context, operatorID int64) ([]model.Template, error) {
	var templates []model.Template
	err := s.db.WithContext(ctx).
		Where("operator_id = ?", operatorID).
		Find(&templates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// GetTemplate loads one template scoped to its owning operator.
func (s *gormStore) GetTemplate(ctx context.Context, id, operatorID int64) (*model.Template, error) {
	var t model.Template
	err := s.db.WithContext(ctx).
		First(&t, "id = ? AND operator_id = ?", id, operatorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template %d: %w", id, err)
	}
	return &t, nil
}

// PruneBefore removes clicks and deliveries older than the cutoff and hard
// deletes subscribers that have been inactive since before it.
func (s *gormStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64

	res := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.Click{})
	if res.Error != nil {
		return removed, fmt.Errorf("failed to prune clicks: %w", res.Error)
	}
	removed += res.RowsAffected

	res = s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.Delivery{})
	if res.Error != nil {
		return removed, fmt.Errorf("failed to prune deliveries: %w", res.Error)
	}
	removed += res.RowsAffected

	res = s.db.WithContext(ctx).
		Where("active = ? AND updated_at < ?", false, cutoff).
		Delete(&model.Subscriber{})
	if res.Error != nil {
		return removed, fmt.Errorf("failed to prune inactive subscribers: %w", res.Error)
	}
	removed += res.RowsAffected

	return removed, nil
}
