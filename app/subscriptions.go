// Subscription reconciliation: deriving the application's subscription
// state from Stripe and persisting one current row per agency.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/skozushko/brand-ambassador/app/models"

	"github.com/lib/pq"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/subscription"
)

var (
	errNotSubscriptionSession = errors.New("checkout session is not a subscription session")
	errSessionUserMismatch    = errors.New("checkout session user mismatch")
	errSessionMissingCustomer = errors.New("missing stripe customer on checkout session")
	errSessionMissingSub      = errors.New("missing stripe subscription on checkout session")
)

// normalizeStatus collapses Stripe's status vocabulary into the four
// application states.
func normalizeStatus(status stripe.SubscriptionStatus) models.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.SubscriptionActive
	case stripe.SubscriptionStatusPastDue:
		return models.SubscriptionPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusIncompleteExpired:
		return models.SubscriptionCanceled
	default:
		return models.SubscriptionInactive
	}
}

// regionsFromItems reads the purchased region label out of each line
// item's product metadata. Items without one contribute nothing.
func regionsFromItems(sub *stripe.Subscription) []string {
	var regions []string
	if sub == nil || sub.Items == nil {
		return regions
	}
	for _, item := range sub.Items.Data {
		if item == nil || item.Price == nil || item.Price.Product == nil {
			continue
		}
		if region := item.Price.Product.Metadata["region"]; region != "" {
			regions = append(regions, region)
		}
	}
	return regions
}

// fetchSubscriptionState retrieves the subscription with products expanded
// and derives the normalized status plus the purchased regions.
func fetchSubscriptionState(subscriptionID string) (models.SubscriptionStatus, []string, error) {
	params := &stripe.SubscriptionParams{}
	params.AddExpand("items.data.price.product")

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return models.SubscriptionInactive, nil, err
	}
	return normalizeStatus(sub.Status), regionsFromItems(sub), nil
}

// subscriptionUpdate is one reconciled state observation. ObservedAt is
// the upstream event time (or now, for the pull path) and guards every
// write so an out-of-order delivery cannot overwrite a newer state.
type subscriptionUpdate struct {
	AgencyUserID         string
	StripeCustomerID     string
	StripeSubscriptionID string
	Status               models.SubscriptionStatus
	Regions              []string
	ObservedAt           time.Time
}

type writeAction int

const (
	writeInsert writeAction = iota
	writeUpdate
	writeSkip
)

// planSubscriptionWrite picks how an observation lands: insert when the
// agency has no row yet, update the latest row in place when the
// observation is at least as new as it, skip when it is older. Replaying
// the same observation therefore updates in place, never duplicates.
func planSubscriptionWrite(existing *models.AgencySubscription, observedAt time.Time) writeAction {
	if existing == nil {
		return writeInsert
	}
	if observedAt.Before(existing.UpdatedAt) {
		return writeSkip
	}
	return writeUpdate
}

// saveSubscriptionForAgency upserts by latest-row-per-agency, per
// planSubscriptionWrite. The UPDATE repeats the staleness check in SQL
// because a concurrent writer may advance the row between our read and
// our write.
func saveSubscriptionForAgency(ctx context.Context, upd subscriptionUpdate) error {
	if db == nil {
		return errDBNotInitialized
	}

	existing, err := latestSubscription(ctx, upd.AgencyUserID)
	if err != nil {
		return err
	}

	regions := upd.Regions
	if regions == nil {
		regions = []string{}
	}

	switch planSubscriptionWrite(existing, upd.ObservedAt) {
	case writeSkip:
		log.Printf("skipping stale subscription update agency=%s observed=%s", upd.AgencyUserID, upd.ObservedAt)
		return nil

	case writeUpdate:
		_, err := db.ExecContext(ctx, `
			UPDATE agency_subscriptions
			SET stripe_customer_id = $1,
			    stripe_subscription_id = $2,
			    status = $3,
			    subscribed_continents = $4,
			    updated_at = $5
			WHERE id = $6
			  AND updated_at <= $5;
		`,
			upd.StripeCustomerID,
			upd.StripeSubscriptionID,
			upd.Status,
			pq.Array(regions),
			upd.ObservedAt,
			existing.ID,
		)
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO agency_subscriptions
			(agency_user_id, stripe_customer_id, stripe_subscription_id, status, subscribed_continents, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`,
		upd.AgencyUserID,
		upd.StripeCustomerID,
		upd.StripeSubscriptionID,
		upd.Status,
		pq.Array(regions),
		upd.ObservedAt,
	)
	return err
}

// markSubscriptionStatus transitions the row matched by Stripe
// subscription id, for events that carry no region payload (deletion,
// payment failure). Same staleness guard as a full save.
func markSubscriptionStatus(ctx context.Context, stripeSubscriptionID string, status models.SubscriptionStatus, observedAt time.Time) error {
	if db == nil {
		return errDBNotInitialized
	}

	_, err := db.ExecContext(ctx, `
		UPDATE agency_subscriptions
		SET status = $1, updated_at = $2
		WHERE stripe_subscription_id = $3
		  AND updated_at <= $2;
	`, status, observedAt, stripeSubscriptionID)
	return err
}

// agencyUserByCustomer resolves the agency behind a Stripe customer id
// from the newest subscription row that references it.
func agencyUserByCustomer(ctx context.Context, stripeCustomerID string) (string, error) {
	if db == nil {
		return "", nil
	}

	var userID string
	err := db.QueryRowContext(ctx, `
		SELECT agency_user_id
		FROM agency_subscriptions
		WHERE stripe_customer_id = $1
		ORDER BY updated_at DESC
		LIMIT 1;
	`, stripeCustomerID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return userID, err
}

// reconcileSubscription re-fetches the upstream subscription and persists
// the derived state for the given agency. Both the webhook push path and
// the checkout pull path land here, which is what keeps the race between
// them convergent.
func reconcileSubscription(ctx context.Context, agencyUserID, stripeCustomerID, stripeSubscriptionID string, observedAt time.Time) error {
	status, regions, err := fetchSubscriptionState(stripeSubscriptionID)
	if err != nil {
		return err
	}
	return saveSubscriptionForAgency(ctx, subscriptionUpdate{
		AgencyUserID:         agencyUserID,
		StripeCustomerID:     stripeCustomerID,
		StripeSubscriptionID: stripeSubscriptionID,
		Status:               status,
		Regions:              regions,
		ObservedAt:           observedAt,
	})
}

// SyncFromCheckoutSession is the webhook fallback: fetch the checkout
// session named in the success redirect, validate it belongs to the
// caller, and reconcile inline.
func SyncFromCheckoutSession(ctx context.Context, sessionID, userID string) error {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("subscription")

	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return err
	}

	if sess.Mode != stripe.CheckoutSessionModeSubscription {
		return errNotSubscriptionSession
	}
	if metaUser := sess.Metadata["user_id"]; metaUser != "" && metaUser != userID {
		return errSessionUserMismatch
	}
	if sess.Customer == nil || sess.Customer.ID == "" {
		return errSessionMissingCustomer
	}
	if sess.Subscription == nil || sess.Subscription.ID == "" {
		return errSessionMissingSub
	}

	return reconcileSubscription(ctx, userID, sess.Customer.ID, sess.Subscription.ID, time.Now().UTC())
}
