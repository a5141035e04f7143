package app

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetStats serves the public landing-page numbers: total ambassador
// count plus a per-region rollup. Unmapped countries land in "Other".
func GetStats(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	countries, err := ambassadorCountries(ctx)
	if err != nil {
		log.Printf("stats query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	byRegion := make(map[string]int)
	for _, country := range countries {
		byRegion[RegionOf(country)]++
	}

	c.JSON(http.StatusOK, gin.H{
		"total":        len(countries),
		"by_continent": byRegion,
	})
}
