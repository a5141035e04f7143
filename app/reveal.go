// Contact reveal and quota. Entitlement checks and the monthly counter
// live in the database functions reveal_contact and quota_status so the
// quota stays atomic under concurrent reveals; this side only maps their
// outcomes onto HTTP.
package app

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/skozushko/brand-ambassador/app/models"
	"github.com/skozushko/brand-ambassador/auth"

	"github.com/gin-gonic/gin"
)

func revealContact(ctx context.Context, agencyUserID, ambassadorID string) (*models.Contact, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var contact models.Contact
	err := db.QueryRowContext(ctx, `
		SELECT email, phone_number, instagram_handle
		FROM reveal_contact($1, $2);
	`, agencyUserID, ambassadorID).Scan(
		&contact.Email,
		&contact.PhoneNumber,
		&contact.InstagramHandle,
	)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func quotaStatus(ctx context.Context, agencyUserID string) (*models.QuotaStatus, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var q models.QuotaStatus
	err := db.QueryRowContext(ctx, `
		SELECT used, remaining, monthly_limit
		FROM quota_status($1);
	`, agencyUserID).Scan(&q.Used, &q.Remaining, &q.MonthlyLimit)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// mapRevealError translates the database function's error tokens into an
// HTTP status and a user-facing message.
func mapRevealError(err error) (int, string) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no_active_subscription"):
		return http.StatusForbidden, "Your account doesn't have an active subscription yet."
	case strings.Contains(msg, "quota_exceeded"):
		return http.StatusTooManyRequests, "You've hit your monthly contact-reveal limit."
	default:
		return http.StatusInternalServerError, msg
	}
}

// RevealContact spends one quota unit and returns the ambassador's
// contact details. Repeat reveals of the same profile in the same month
// are free; the database function handles that.
func RevealContact(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	ambassadorID := c.Param("id")
	if ambassadorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing ambassador id"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	contact, err := revealContact(ctx, claims.Subject, ambassadorID)
	if err != nil {
		status, msg := mapRevealError(err)
		if status == http.StatusInternalServerError {
			log.Printf("reveal failed user=%s ambassador=%s err=%v", claims.Subject, ambassadorID, err)
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	quota, err := quotaStatus(ctx, claims.Subject)
	if err != nil {
		log.Printf("quota read after reveal failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusOK, gin.H{"contact": contact})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact, "quota": quota})
}

// GetQuota reports the caller's reveal usage for the current month.
func GetQuota(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	quota, err := quotaStatus(ctx, claims.Subject)
	if err != nil {
		log.Printf("quota read failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load quota"})
		return
	}

	c.JSON(http.StatusOK, quota)
}
