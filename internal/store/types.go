package store

import (
	"errors"

	"push-campaign-backend/internal/model"
)

// Sentinel errors surfaced by the store. Handlers map these to HTTP statuses.
var (
	ErrValidation   = errors.New("store: invalid input")
	ErrUnauthorized = errors.New("store: operator token not recognized")
	ErrNotFound     = errors.New("store: record not found")
)

// SubscriberRegistration is the input of a subscribe (or re-subscribe) call.
type SubscriberRegistration struct {
	Endpoint      string
	P256DH        string
	Auth          string
	UserAgent     string
	Device        string
	Browser       string
	OperatorToken string
}

// ClickRecord is the input of a click-attribution write.
type ClickRecord struct {
	CampaignID int64
	DeliveryID *int64
	TargetURL  string
	IP         string
	UserAgent  string
	Device     string
	Browser    string
}

// Tally counts delivery outcomes by terminal status, one field per status.
type Tally struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Expired int `json:"expired"`
}

// Total returns the number of settled deliveries in the tally.
func (t Tally) Total() int {
	return t.Success + t.Failed + t.Expired
}

// DeliveryWithSubscriber is a delivery row joined with the subscriber's
// reporting metadata for the campaign detail view.
type DeliveryWithSubscriber struct {
	ID           int64                `json:"id"`
	SubscriberID int64                `json:"subscriber_id"`
	Status       model.DeliveryStatus `json:"status"`
	Error        string               `json:"error,omitempty"`
	Endpoint     string               `json:"endpoint"`
	Device       string               `json:"device"`
	Browser      string               `json:"browser"`
}

// CampaignDetail aggregates everything known about one campaign.
type CampaignDetail struct {
	Campaign   model.Campaign           `json:"campaign"`
	Deliveries []DeliveryWithSubscriber `json:"deliveries"`
	Tally      Tally                    `json:"tally"`
	Clicks     []model.Click            `json:"clicks"`
}
