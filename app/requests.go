package app

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/skozushko/brand-ambassador/app/models"

	"github.com/gin-gonic/gin"
)

// CreateAgencyRequest accepts an access-request lead from the public
// site. No auth: prospective agencies have no account yet.
func CreateAgencyRequest(c *gin.Context) {
	var req models.AgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.Email = strings.TrimSpace(req.Email)

	if req.CompanyName == "" || req.ContactName == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "company name, contact name and email are required"})
		return
	}
	for _, region := range req.Regions {
		if !SubscribableRegion(region) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown region: " + region})
			return
		}
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	if err := insertAgencyRequest(ctx, req); err != nil {
		log.Printf("agency request insert failed email=%s err=%v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "received"})
}
