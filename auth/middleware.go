// Package auth provides Gin middleware for enforcing Supabase JWT auth.
package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MiddlewareConfig controls auth enforcement behavior.
type MiddlewareConfig struct {
	PublicPaths map[string]bool
	DisableAuth bool
}

// Middleware enforces auth and injects claims into the request context.
// A bearer token wins; the session cookie is the fallback for plain
// browser navigation. Either way the access token is verified against
// JWKS.
func Middleware(verifier *Verifier, cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.DisableAuth || AuthDisabled() {
			claims := &Claims{
				Subject: "local-dev",
				Issuer:  "local",
				Raw:     map[string]any{"sub": "local-dev"},
			}
			ctx := WithClaims(c.Request.Context(), claims)
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}

		if cfg.PublicPaths != nil && cfg.PublicPaths[c.FullPath()] {
			c.Next()
			return
		}

		if verifier == nil {
			respondUnauthorized(c, "auth verifier not configured")
			return
		}

		token, ok := requestToken(c)
		if !ok {
			log.Printf("auth failure: no credentials path=%s", c.Request.URL.Path)
			respondUnauthorized(c, "missing credentials")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			log.Printf("auth failure: token invalid path=%s err=%v", c.Request.URL.Path, err)
			respondUnauthorized(c, "invalid token")
			return
		}

		ctx := WithClaims(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestToken extracts the access token from the Authorization header
// or, failing that, from the session cookie.
func requestToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		return extractBearerToken(header)
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie == "" {
		return "", false
	}
	tokens, err := DecodeSessionCookie(cookie)
	if err != nil {
		log.Printf("auth failure: bad session cookie path=%s err=%v", c.Request.URL.Path, err)
		return "", false
	}
	if tokens.AccessToken == "" {
		return "", false
	}
	return tokens.AccessToken, true
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
	})
}
