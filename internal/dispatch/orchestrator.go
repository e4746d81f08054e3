package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"push-campaign-backend/internal/metrics"
	"push-campaign-backend/internal/model"
	"push-campaign-backend/internal/push"
	"push-campaign-backend/internal/store"
)

// Transport delivers one payload to one subscriber and classifies the result.
type Transport interface {
	Send(sub *model.Subscriber, payload []byte) push.Outcome
}

// RecipientOutcome is the settled result for one recipient of a campaign.
type RecipientOutcome struct {
	SubscriberID int64                `json:"subscriber_id"`
	Endpoint     string               `json:"endpoint"`
	Status       model.DeliveryStatus `json:"status"`
	Detail       string               `json:"detail,omitempty"`
}

// Result is what a completed campaign dispatch returns to the caller.
type Result struct {
	Outcomes []RecipientOutcome `json:"outcomes"`
	Tally    store.Tally        `json:"tally"`
}

// Orchestrator drives the per-campaign fan-out: it invokes the transport
// concurrently across all recipients, persists each settled outcome,
// deactivates expired endpoints, and finalizes the campaign's aggregate
// counters once every attempt has settled. It is the only component that
// mutates the registry based on a transport outcome.
type Orchestrator struct {
	store       store.Store
	transport   Transport
	concurrency int
}

// NewOrchestrator creates an orchestrator with the given fan-out bound.
func NewOrchestrator(s store.Store, t Transport, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{store: s, transport: t, concurrency: concurrency}
}

// Dispatch sends one campaign to all recipients. Per-recipient failures are
// isolated: a dead endpoint never aborts delivery to the rest. Cancelling ctx
// only stops scheduling of not-yet-started sends; in-flight sends complete
// and persist, since a push already handed to a third party cannot be
// recalled. The aggregate counters are written once, after full settlement;
// an error finalizing them is returned because the campaign result would
// otherwise be unreliable.
func (o *Orchestrator) Dispatch(ctx context.Context, campaign *model.Campaign, payload push.Payload, recipients []model.Subscriber) (*Result, error) {
	body, err := payload.Marshal(time.Now())
	if err != nil {
		return nil, fmt.Errorf("campaign %d payload: %w", campaign.ID, err)
	}

	started := time.Now()
	log.Printf("Dispatching campaign %d to %d recipients", campaign.ID, len(recipients))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res Result
	)
	sem := make(chan struct{}, o.concurrency)

	settle := func(sub model.Subscriber, status model.DeliveryStatus, detail string) {
		// Persistence uses a background context: outcomes of sends that
		// already reached the push service must be recorded even if the
		// caller has gone away.
		d := &model.Delivery{
			CampaignID:   campaign.ID,
			SubscriberID: sub.ID,
			Status:       status,
			Error:        detail,
		}
		if err := o.store.CreateDelivery(context.Background(), d); err != nil {
			log.Printf("Failed to persist delivery for subscriber %d in campaign %d: %v", sub.ID, campaign.ID, err)
		}

		if status == model.DeliveryExpired {
			if err := o.store.DeactivateSubscriber(context.Background(), sub.Endpoint); err != nil {
				log.Printf("Failed to deactivate expired endpoint %s: %v", sub.Endpoint, err)
			}
		}

		metrics.RecordDelivery(string(status))

		mu.Lock()
		res.Outcomes = append(res.Outcomes, RecipientOutcome{
			SubscriberID: sub.ID,
			Endpoint:     sub.Endpoint,
			Status:       status,
			Detail:       detail,
		})
		switch status {
		case model.DeliverySuccess:
			res.Tally.Success++
		case model.DeliveryFailed:
			res.Tally.Failed++
		case model.DeliveryExpired:
			res.Tally.Expired++
		}
		mu.Unlock()
	}

	for i := range recipients {
		sub := recipients[i]

		if ctx.Err() != nil {
			// Not yet started; record it as failed so no attempt is
			// dropped silently.
			settle(sub, model.DeliveryFailed, "cancelled before send")
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			out := o.transport.Send(&sub, body)
			switch out.Result {
			case push.ResultSuccess:
				settle(sub, model.DeliverySuccess, "")
			case push.ResultExpired:
				settle(sub, model.DeliveryExpired, out.Detail)
			default:
				settle(sub, model.DeliveryFailed, out.Detail)
			}
		}()
	}

	wg.Wait()
	metrics.RecordDispatch(time.Since(started))

	if err := o.store.FinalizeCampaign(context.Background(), campaign.ID, res.Tally); err != nil {
		return &res, err
	}

	log.Printf("Campaign %d settled: %d success, %d failed, %d expired",
		campaign.ID, res.Tally.Success, res.Tally.Failed, res.Tally.Expired)
	return &res, nil
}
