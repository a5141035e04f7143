package app

import (
	"log"

	"github.com/skozushko/brand-ambassador/app/config"

	"github.com/stripe/stripe-go/v79"
)

// InitStripe wires the Stripe API key from the environment.
func InitStripe() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config for stripe: %v", err)
	}
	stripe.Key = cfg.Stripe.SecretKey
}
