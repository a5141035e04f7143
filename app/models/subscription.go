package models

import "time"

// SubscriptionStatus is the application's four-state collapse of Stripe's
// subscription status vocabulary.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// AgencySubscription is the latest known billing state for one agency
// account. At most one row per agency is treated as current, selected by
// latest updated_at; historical duplicates are tolerated.
type AgencySubscription struct {
	ID                   int64              `json:"id"`
	AgencyUserID         string             `json:"agency_user_id"`
	StripeCustomerID     string             `json:"stripe_customer_id"`
	StripeSubscriptionID string             `json:"stripe_subscription_id"`
	Status               SubscriptionStatus `json:"status"`
	SubscribedRegions    []string           `json:"subscribed_continents"`
	UpdatedAt            time.Time          `json:"updated_at"`
}
