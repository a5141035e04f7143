package app

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skozushko/brand-ambassador/app/models"
	"github.com/skozushko/brand-ambassador/auth"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const (
	directoryDefaultPerPage = 25
	directoryMinPerPage     = 10
	directoryMaxPerPage     = 50
)

// DirectoryFilter is the parsed filter set for one directory read. The
// allowed-country list from the caller's subscription is part of the
// filter, not a separate code path.
type DirectoryFilter struct {
	Search       string
	Country      string
	StateRegion  string
	Experience   string
	Availability string

	HasVehicle      bool
	WillingToTravel bool

	RoleIDs     []int64
	SkillIDs    []int64
	LanguageIDs []int64
	MatchAll    bool

	Page    int
	PerPage int

	AllowedCountries []string
}

// parseDirectoryFilter reads the query string. Multi-select params accept
// both repeated keys (role=1&role=2) and comma lists (role=1,2).
func parseDirectoryFilter(c *gin.Context, allowedCountries []string) DirectoryFilter {
	f := DirectoryFilter{
		Search:           strings.TrimSpace(c.Query("q")),
		Country:          strings.TrimSpace(c.Query("country")),
		StateRegion:      strings.TrimSpace(c.Query("state")),
		Experience:       strings.TrimSpace(c.Query("experience")),
		Availability:     strings.TrimSpace(c.Query("availability")),
		HasVehicle:       parseFlag(c.Query("vehicle")),
		WillingToTravel:  parseFlag(c.Query("travel")),
		RoleIDs:          parseIDList(c.QueryArray("role")),
		SkillIDs:         parseIDList(c.QueryArray("skill")),
		LanguageIDs:      parseIDList(c.QueryArray("lang")),
		MatchAll:         strings.TrimSpace(c.Query("match")) == "all",
		AllowedCountries: allowedCountries,
	}

	f.Page = 1
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 1 {
		f.Page = n
	}

	f.PerPage = directoryDefaultPerPage
	if n, err := strconv.Atoi(c.Query("per")); err == nil && n != 0 {
		f.PerPage = n
	}
	if f.PerPage < directoryMinPerPage {
		f.PerPage = directoryMinPerPage
	}
	if f.PerPage > directoryMaxPerPage {
		f.PerPage = directoryMaxPerPage
	}

	return f
}

func parseFlag(v string) bool {
	return v == "1" || v == "true" || v == "on"
}

func parseIDList(values []string) []int64 {
	var out []int64
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if id, err := strconv.ParseInt(part, 10, 64); err == nil {
				out = append(out, id)
			}
		}
	}
	return out
}

// buildDirectoryQuery translates the filter into one parameterized SELECT
// against the ambassadors_directory view. Ordering is newest-first so
// offset pagination stays stable.
func buildDirectoryQuery(f DirectoryFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(`SELECT id, full_name, city, state_region, country,
		experience_level, availability_status,
		willing_to_travel, has_vehicle, bio,
		headshot_url, video_url, created_at,
		role_ids, role_names, skill_ids, skill_names,
		language_ids, language_names
	FROM ambassadors_directory
	WHERE 1=1`)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.AllowedCountries) > 0 {
		fmt.Fprintf(&sb, "\n\t  AND country = ANY(%s)", arg(pq.Array(f.AllowedCountries)))
	}

	if f.Country != "" {
		fmt.Fprintf(&sb, "\n\t  AND country = %s", arg(f.Country))
	}
	if f.StateRegion != "" {
		fmt.Fprintf(&sb, "\n\t  AND state_region = %s", arg(f.StateRegion))
	}
	if f.Experience != "" {
		fmt.Fprintf(&sb, "\n\t  AND experience_level = %s", arg(f.Experience))
	}
	if f.Availability != "" {
		fmt.Fprintf(&sb, "\n\t  AND availability_status = %s", arg(f.Availability))
	}
	if f.HasVehicle {
		sb.WriteString("\n\t  AND has_vehicle = TRUE")
	}
	if f.WillingToTravel {
		sb.WriteString("\n\t  AND willing_to_travel = TRUE")
	}

	// any = set overlap (&&), all = containment (@>).
	op := "&&"
	if f.MatchAll {
		op = "@>"
	}
	if len(f.RoleIDs) > 0 {
		fmt.Fprintf(&sb, "\n\t  AND role_ids %s %s", op, arg(pq.Array(f.RoleIDs)))
	}
	if len(f.SkillIDs) > 0 {
		fmt.Fprintf(&sb, "\n\t  AND skill_ids %s %s", op, arg(pq.Array(f.SkillIDs)))
	}
	if len(f.LanguageIDs) > 0 {
		fmt.Fprintf(&sb, "\n\t  AND language_ids %s %s", op, arg(pq.Array(f.LanguageIDs)))
	}

	if f.Search != "" {
		pattern := arg("%" + f.Search + "%")
		fmt.Fprintf(&sb, `
	  AND (full_name ILIKE %[1]s
	       OR city ILIKE %[1]s
	       OR state_region ILIKE %[1]s
	       OR country ILIKE %[1]s
	       OR instagram_handle ILIKE %[1]s
	       OR bio ILIKE %[1]s)`, pattern)
	}

	sb.WriteString("\n\tORDER BY created_at DESC")
	fmt.Fprintf(&sb, "\n\tLIMIT %s", arg(f.PerPage))
	fmt.Fprintf(&sb, "\n\tOFFSET %s;", arg((f.Page-1)*f.PerPage))

	return sb.String(), args
}

// GetDirectory is the gated directory search. No active subscription means
// a paywall response; a fresh checkout redirect gets one inline sync
// attempt before that verdict.
func GetDirectory(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 15*time.Second)
	defer cancel()

	sub, err := latestActiveSubscription(ctx, claims.Subject)
	if err != nil {
		log.Printf("directory subscription lookup failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}

	// Fallback for delayed/missed webhooks: sync directly from the
	// successful checkout session named in the redirect.
	if sub == nil && c.Query("success") == "true" {
		if sessionID := strings.TrimSpace(c.Query("session_id")); sessionID != "" {
			if err := SyncFromCheckoutSession(ctx, sessionID, claims.Subject); err != nil {
				log.Printf("post-checkout sync failed user=%s session=%s err=%v", claims.Subject, sessionID, err)
			}
			sub, err = latestActiveSubscription(ctx, claims.Subject)
			if err != nil {
				log.Printf("directory subscription re-read failed user=%s err=%v", claims.Subject, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
				return
			}
		}
	}

	if sub == nil {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     "subscription required",
			"plans_url": "/subscribe",
		})
		return
	}

	allowed := CountriesOf(sub.SubscribedRegions)
	if len(allowed) == 0 {
		// An active row with no resolvable regions grants nothing.
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     "subscription has no purchasable regions",
			"plans_url": "/subscribe",
		})
		return
	}

	filter := parseDirectoryFilter(c, allowed)
	profiles, err := queryDirectory(ctx, filter)
	if err != nil {
		log.Printf("directory query failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"count":    len(profiles),
		"page":     filter.Page,
		"per":      filter.PerPage,
		"has_next": len(profiles) == filter.PerPage,
	})
}

// GetDirectoryProfile serves one profile's public fields, still inside the
// caller's allowed country set.
func GetDirectoryProfile(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing ambassador id"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	sub, err := latestActiveSubscription(ctx, claims.Subject)
	if err != nil {
		log.Printf("profile subscription lookup failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}
	if sub == nil {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "subscription required", "plans_url": "/subscribe"})
		return
	}

	profile, err := getDirectoryProfile(ctx, id, CountriesOf(sub.SubscribedRegions))
	if err != nil {
		log.Printf("profile read failed id=%s err=%v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ambassador not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetOptions serves the roles/skills/languages vocabularies for the signup
// form and the directory sidebar.
func GetOptions(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	var roles, skills, languages []models.Option

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roles, err = loadOptions(gctx, "roles")
		return err
	})
	g.Go(func() (err error) {
		skills, err = loadOptions(gctx, "skills")
		return err
	})
	g.Go(func() (err error) {
		languages, err = loadOptions(gctx, "languages")
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("options load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load options"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roles":     roles,
		"skills":    skills,
		"languages": languages,
	})
}
