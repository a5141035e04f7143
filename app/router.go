// Package app wires shared HTTP routes for both local and Lambda execution.
package app

import (
	"fmt"
	"time"

	"github.com/skozushko/brand-ambassador/app/config"
	"github.com/skozushko/brand-ambassador/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// NewRouter builds the shared HTTP router for both local and Lambda execution.
func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Stripe.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	metrics := newHTTPMetrics(prometheus.DefaultRegisterer)
	router.Use(metrics.middleware())

	verifier, err := auth.NewVerifierFromEnv()
	if err != nil && !auth.AuthDisabled() {
		return nil, err
	}

	if cfg.Auth.SessionHashKey != "" {
		if err := auth.InitSessionCodec([]byte(cfg.Auth.SessionHashKey), []byte(cfg.Auth.SessionBlock)); err != nil {
			return nil, fmt.Errorf("session codec: %w", err)
		}
	}

	router.GET("/health", Health)
	router.GET("/metrics", metrics.handler())
	router.GET("/api/stats", GetStats)
	router.GET("/api/options", GetOptions)
	router.POST("/api/stripe/webhook", StripeWebhook)
	router.POST("/api/auth/set-session", SetSession(verifier))
	router.POST("/api/requests", CreateAgencyRequest)

	protected := router.Group("/")
	protected.Use(auth.Middleware(verifier, auth.MiddlewareConfig{}))
	protected.GET("/me", Me)
	protected.GET("/api/directory", GetDirectory)
	protected.GET("/api/directory/:id", GetDirectoryProfile)
	protected.POST("/api/directory/:id/reveal", RevealContact)
	protected.GET("/api/quota", GetQuota)
	protected.POST("/api/billing/checkout", CreateCheckoutSession)
	protected.POST("/api/ambassadors", CreateAmbassador)
	protected.GET("/api/ambassadors/me", GetMyProfile)
	protected.PUT("/api/ambassadors/me", UpdateMyProfile)

	return router, nil
}
