package app

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testWebhookSecret = "whsec_test_secret"

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/stripe/webhook", StripeWebhook)
	return router
}

// signPayload builds a Stripe-Signature header the way Stripe does:
// HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	payload := []byte(`{"id":"evt_1","type":"invoice.paid","created":1700000000,"data":{"object":{}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload, "whsec_wrong_secret", time.Now()))

	resp := httptest.NewRecorder()
	webhookRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))

	resp := httptest.NewRecorder()
	webhookRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStripeWebhookIgnoresUnhandledEvents(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	payload := []byte(`{"id":"evt_2","type":"invoice.paid","created":1700000000,"data":{"object":{}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	resp := httptest.NewRecorder()
	webhookRouter().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStripeWebhookSubscriptionDeletedWithoutDB(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	payload := []byte(`{"id":"evt_3","type":"customer.subscription.deleted","created":1700000000,` +
		`"data":{"object":{"id":"sub_123","customer":{"id":"cus_123"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	resp := httptest.NewRecorder()
	webhookRouter().ServeHTTP(resp, req)

	// No DB in tests: the cancellation cannot be recorded, and the handler
	// must not acknowledge an event it failed to process.
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStripeWebhookUpdateForUnknownCustomer(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", testWebhookSecret)

	payload := []byte(`{"id":"evt_4","type":"customer.subscription.updated","created":1700000000,` +
		`"data":{"object":{"id":"sub_999","customer":{"id":"cus_999"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	resp := httptest.NewRecorder()
	webhookRouter().ServeHTTP(resp, req)

	// An update for a customer with no local row is acknowledged and
	// dropped, not retried: a later event re-fetches the full state.
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}
