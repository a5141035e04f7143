package app

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/skozushko/brand-ambassador/app/config"
	"github.com/skozushko/brand-ambassador/app/models"
	"github.com/skozushko/brand-ambassador/auth"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

type checkoutRequest struct {
	PriceIDs []string `json:"price_ids"`
}

// CreateCheckoutSession starts a subscription Checkout Session for the
// selected region prices. The session carries the caller's user id in
// metadata so the webhook and the post-redirect sync can attribute it.
func CreateCheckoutSession(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.PriceIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "select at least one region"})
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("stripe checkout config load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	frontendURL := strings.TrimRight(cfg.Stripe.FrontendURL, "/")
	if frontendURL == "" {
		log.Printf("missing Stripe config: frontend_url=false")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}

	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.PriceIDs))
	for _, priceID := range req.PriceIDs {
		priceID = strings.TrimSpace(priceID)
		if priceID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty price id"})
			return
		}
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems:  items,
		SuccessURL: stripe.String(frontendURL + "/directory?success=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(frontendURL + "/subscribe?canceled=true"),
		Metadata: map[string]string{
			"user_id": claims.Subject,
		},
	}

	// Reuse the Stripe customer from a previous subscription so repeat
	// purchases land on the same customer record.
	existing, err := latestSubscription(c.Request.Context(), claims.Subject)
	if err != nil {
		log.Printf("checkout customer lookup failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to prepare billing"})
		return
	}
	if existing != nil && existing.StripeCustomerID != "" {
		params.Customer = stripe.String(existing.StripeCustomerID)
	} else if claims.Email != "" {
		params.CustomerEmail = stripe.String(claims.Email)
	}

	sess, err := session.New(params)
	if err != nil {
		log.Printf("stripe checkout session failed user=%s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL})
}

// StripeWebhook handles Stripe subscription lifecycle events and keeps
// agency_subscriptions in sync. Processing errors return 500 so Stripe
// retries the delivery.
func StripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Printf("stripe webhook read failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("stripe webhook config load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	endpointSecret := cfg.Stripe.WebhookSecret
	if endpointSecret == "" {
		log.Printf("stripe webhook secret missing")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		sigHeader,
		endpointSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		log.Printf("stripe webhook signature failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	observedAt := time.Unix(event.Created, 0).UTC()
	ctx := c.Request.Context()

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("stripe session unmarshal failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session payload"})
			return
		}
		if sess.Mode != stripe.CheckoutSessionModeSubscription {
			break
		}
		userID := sess.Metadata["user_id"]
		if userID == "" || sess.Customer == nil || sess.Subscription == nil {
			log.Printf("stripe session %s missing attribution fields", sess.ID)
			c.JSON(http.StatusBadRequest, gin.H{"error": "incomplete session payload"})
			return
		}
		if err := reconcileSubscription(ctx, userID, sess.Customer.ID, sess.Subscription.ID, observedAt); err != nil {
			log.Printf("checkout reconcile failed user=%s err=%v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record subscription"})
			return
		}

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("stripe subscription unmarshal failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription payload"})
			return
		}
		if sub.Customer == nil || sub.Customer.ID == "" {
			log.Printf("stripe subscription %s missing customer id", sub.ID)
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing customer id"})
			return
		}
		userID, err := agencyUserByCustomer(ctx, sub.Customer.ID)
		if err != nil {
			log.Printf("subscription owner lookup failed customer=%s err=%v", sub.Customer.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve subscription owner"})
			return
		}
		if userID == "" {
			// Update arrived before the checkout event, so the customer is
			// not attributable yet. Acknowledge and drop it: the checkout
			// event, a later subscription event, or the post-redirect sync
			// re-fetches the full state from Stripe either way.
			log.Printf("no agency for customer=%s yet, skipping update", sub.Customer.ID)
			break
		}
		if err := reconcileSubscription(ctx, userID, sub.Customer.ID, sub.ID, observedAt); err != nil {
			log.Printf("subscription reconcile failed user=%s err=%v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record subscription"})
			return
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			log.Printf("stripe subscription unmarshal failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription payload"})
			return
		}
		if err := markSubscriptionStatus(ctx, sub.ID, models.SubscriptionCanceled, observedAt); err != nil {
			log.Printf("subscription cancel failed sub=%s err=%v", sub.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record cancellation"})
			return
		}

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			log.Printf("stripe invoice unmarshal failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice payload"})
			return
		}
		if inv.Subscription == nil || inv.Subscription.ID == "" {
			// One-off invoice, nothing to transition.
			break
		}
		if err := markSubscriptionStatus(ctx, inv.Subscription.ID, models.SubscriptionPastDue, observedAt); err != nil {
			log.Printf("payment-failed transition failed sub=%s err=%v", inv.Subscription.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment failure"})
			return
		}

	default:
		// Intentionally ignore unhandled events.
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
