// Package app provides the marketplace HTTP handlers.
package app

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/skozushko/brand-ambassador/auth"

	"github.com/gin-gonic/gin"
)

// contextWithTimeout derives a bounded context from the request.
func contextWithTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Me returns the caller's identity plus a subscription and quota summary
// for the account menu.
func Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	out := gin.H{
		"user_id": claims.Subject,
		"email":   claims.Email,
	}

	sub, err := latestSubscription(ctx, claims.Subject)
	if err != nil {
		log.Printf("me subscription lookup failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}
	if sub != nil {
		out["subscription"] = gin.H{
			"status":  sub.Status,
			"regions": sub.SubscribedRegions,
		}
		if quota, err := quotaStatus(ctx, claims.Subject); err == nil {
			out["quota"] = quota
		}
	}

	c.JSON(http.StatusOK, out)
}

type setSessionRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SetSession verifies a Supabase token pair from the client-side sign-in
// and sets the HTTP-only session cookie. Posting empty tokens clears it.
func SetSession(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		if strings.TrimSpace(req.AccessToken) == "" {
			auth.ClearSessionCookie(c.Writer)
			c.JSON(http.StatusOK, gin.H{"status": "cleared"})
			return
		}

		if verifier == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "auth verifier not configured"})
			return
		}
		if _, err := verifier.Verify(req.AccessToken); err != nil {
			log.Printf("set-session token invalid: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if err := auth.WriteSessionCookie(c.Writer, auth.SessionTokens{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
		}); err != nil {
			log.Printf("set-session cookie write failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
