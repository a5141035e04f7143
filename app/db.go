package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/skozushko/brand-ambassador/app/config"
	"github.com/skozushko/brand-ambassador/app/models"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

var db *sql.DB

// errDBNotInitialized is returned by write paths when no pool is
// configured. Read paths return empty results instead so handler tests
// can run without a database; writes must never report false success.
var errDBNotInitialized = errors.New("db not initialized")

// MustInitDB initializes the global db and panics/logs fatally on error.
func MustInitDB() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.DB.Username,
		cfg.DB.Password,
		cfg.DB.URL,
		cfg.DB.Port,
		cfg.DB.Name,
	)

	d, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("sql.Open: %v", err)
	}

	if err := d.Ping(); err != nil {
		log.Fatalf("db.Ping: %v", err)
	}

	log.Println("Connected to Postgres")
	db = d
}

// loadOptions reads one reference vocabulary (roles, skills, languages),
// ordered by name for stable form rendering.
func loadOptions(ctx context.Context, table string) ([]models.Option, error) {
	if db == nil {
		// Allow test runs without a backing DB.
		return []models.Option{}, nil
	}

	switch table {
	case "roles", "skills", "languages":
	default:
		return nil, fmt.Errorf("unknown vocabulary table %q", table)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name
		FROM `+table+`
		ORDER BY name;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Option
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ambassadorCountries returns the country of every profile that has one,
// for the public stats rollup.
func ambassadorCountries(ctx context.Context) ([]string, error) {
	if db == nil {
		return []string{}, nil
	}

	rows, err := db.QueryContext(ctx, `
		SELECT country
		FROM ambassadors
		WHERE country IS NOT NULL;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// latestSubscription returns the most recently updated subscription row
// for an agency regardless of status, or nil when none exists.
func latestSubscription(ctx context.Context, agencyUserID string) (*models.AgencySubscription, error) {
	return queryLatestSubscription(ctx, agencyUserID, false)
}

// latestActiveSubscription is the paywall read: the latest row only when
// its normalized status is active.
func latestActiveSubscription(ctx context.Context, agencyUserID string) (*models.AgencySubscription, error) {
	return queryLatestSubscription(ctx, agencyUserID, true)
}

func queryLatestSubscription(ctx context.Context, agencyUserID string, activeOnly bool) (*models.AgencySubscription, error) {
	if db == nil {
		return nil, nil
	}

	q := `
		SELECT id, agency_user_id, stripe_customer_id, stripe_subscription_id,
		       status, subscribed_continents, updated_at
		FROM agency_subscriptions
		WHERE agency_user_id = $1
	`
	if activeOnly {
		q += ` AND status = 'active'`
	}
	q += `
		ORDER BY updated_at DESC
		LIMIT 1;
	`

	var sub models.AgencySubscription
	err := db.QueryRowContext(ctx, q, agencyUserID).Scan(
		&sub.ID,
		&sub.AgencyUserID,
		&sub.StripeCustomerID,
		&sub.StripeSubscriptionID,
		&sub.Status,
		pq.Array(&sub.SubscribedRegions),
		&sub.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// queryDirectory runs the built directory SELECT and scans the view rows.
func queryDirectory(ctx context.Context, filter DirectoryFilter) ([]models.DirectoryProfile, error) {
	if db == nil {
		return []models.DirectoryProfile{}, nil
	}

	query, args := buildDirectoryQuery(filter)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DirectoryProfile
	for rows.Next() {
		p, err := scanDirectoryProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// getDirectoryProfile reads one view row by id, still constrained by the
// caller's allowed country set so a direct link cannot bypass the region
// gate.
func getDirectoryProfile(ctx context.Context, id string, allowedCountries []string) (*models.DirectoryProfile, error) {
	if db == nil {
		return nil, nil
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, full_name, city, state_region, country,
		       experience_level, availability_status,
		       willing_to_travel, has_vehicle, bio,
		       headshot_url, video_url, created_at,
		       role_ids, role_names, skill_ids, skill_names,
		       language_ids, language_names
		FROM ambassadors_directory
		WHERE id = $1
		  AND country = ANY($2);
	`, id, pq.Array(allowedCountries))

	p, err := scanDirectoryProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDirectoryProfile(row rowScanner) (models.DirectoryProfile, error) {
	var (
		p           models.DirectoryProfile
		city        sql.NullString
		stateRegion sql.NullString
		country     sql.NullString
		bio         sql.NullString
		headshotURL sql.NullString
		videoURL    sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&p.FullName,
		&city,
		&stateRegion,
		&country,
		&p.ExperienceLevel,
		&p.AvailabilityStatus,
		&p.WillingToTravel,
		&p.HasVehicle,
		&bio,
		&headshotURL,
		&videoURL,
		&p.CreatedAt,
		pq.Array(&p.RoleIDs),
		pq.Array(&p.RoleNames),
		pq.Array(&p.SkillIDs),
		pq.Array(&p.SkillNames),
		pq.Array(&p.LanguageIDs),
		pq.Array(&p.LanguageNames),
	)
	if err != nil {
		return models.DirectoryProfile{}, err
	}

	p.City = city.String
	p.StateRegion = stateRegion.String
	p.Country = country.String
	p.Bio = bio.String
	p.HeadshotURL = headshotURL.String
	p.VideoURL = videoURL.String
	return p, nil
}

// insertAmbassador writes the profile row and returns the id the caller
// generated up front.
func insertAmbassador(ctx context.Context, id string, p models.AmbassadorParams) error {
	if db == nil {
		return errDBNotInitialized
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO ambassadors (
			id, user_id, full_name, email, phone_number, instagram_handle,
			city, state_region, country, timezone,
			experience_level, availability_status, bio,
			willing_to_travel, has_vehicle, can_work_weekends, can_work_nights,
			headshot_url, video_url, last_active_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, now());
	`,
		id,
		p.UserID,
		p.FullName,
		p.Email,
		nullIfEmpty(p.PhoneNumber),
		nullIfEmpty(p.InstagramHandle),
		nullIfEmpty(p.City),
		nullIfEmpty(p.StateRegion),
		nullIfEmpty(p.Country),
		nullIfEmpty(p.Timezone),
		p.ExperienceLevel,
		p.AvailabilityStatus,
		nullIfEmpty(p.Bio),
		p.WillingToTravel,
		p.HasVehicle,
		p.CanWorkWeekends,
		p.CanWorkNights,
		nullIfEmpty(p.HeadshotURL),
		nullIfEmpty(p.VideoURL),
	)
	return err
}

func updateAmbassador(ctx context.Context, id string, p models.AmbassadorParams) error {
	if db == nil {
		return errDBNotInitialized
	}

	_, err := db.ExecContext(ctx, `
		UPDATE ambassadors
		SET full_name = $1, email = $2, phone_number = $3, instagram_handle = $4,
		    city = $5, state_region = $6, country = $7, timezone = $8,
		    experience_level = $9, availability_status = $10, bio = $11,
		    willing_to_travel = $12, has_vehicle = $13,
		    can_work_weekends = $14, can_work_nights = $15,
		    headshot_url = COALESCE($16, headshot_url),
		    video_url = COALESCE($17, video_url),
		    last_active_at = now()
		WHERE id = $18;
	`,
		p.FullName,
		p.Email,
		nullIfEmpty(p.PhoneNumber),
		nullIfEmpty(p.InstagramHandle),
		nullIfEmpty(p.City),
		nullIfEmpty(p.StateRegion),
		nullIfEmpty(p.Country),
		nullIfEmpty(p.Timezone),
		p.ExperienceLevel,
		p.AvailabilityStatus,
		nullIfEmpty(p.Bio),
		p.WillingToTravel,
		p.HasVehicle,
		p.CanWorkWeekends,
		p.CanWorkNights,
		nullIfEmpty(p.HeadshotURL),
		nullIfEmpty(p.VideoURL),
		id,
	)
	return err
}

func getAmbassadorByUserID(ctx context.Context, userID string) (*models.Ambassador, error) {
	if db == nil {
		return nil, nil
	}

	var (
		a           models.Ambassador
		phone       sql.NullString
		instagram   sql.NullString
		city        sql.NullString
		stateRegion sql.NullString
		country     sql.NullString
		timezone    sql.NullString
		bio         sql.NullString
		headshotURL sql.NullString
		videoURL    sql.NullString
	)

	err := db.QueryRowContext(ctx, `
		SELECT a.id, a.user_id, a.full_name, a.email, a.phone_number,
		       a.instagram_handle, a.city, a.state_region, a.country,
		       a.timezone, a.experience_level, a.availability_status, a.bio,
		       a.willing_to_travel, a.has_vehicle,
		       a.can_work_weekends, a.can_work_nights,
		       a.headshot_url, a.video_url, a.created_at,
		       COALESCE(array_agg(DISTINCT ar.role_id) FILTER (WHERE ar.role_id IS NOT NULL), '{}'),
		       COALESCE(array_agg(DISTINCT ak.skill_id) FILTER (WHERE ak.skill_id IS NOT NULL), '{}'),
		       COALESCE(array_agg(DISTINCT al.language_id) FILTER (WHERE al.language_id IS NOT NULL), '{}')
		FROM ambassadors a
		LEFT JOIN ambassador_roles ar ON ar.ambassador_id = a.id
		LEFT JOIN ambassador_skills ak ON ak.ambassador_id = a.id
		LEFT JOIN ambassador_languages al ON al.ambassador_id = a.id
		WHERE a.user_id = $1
		GROUP BY a.id;
	`, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.FullName,
		&a.Email,
		&phone,
		&instagram,
		&city,
		&stateRegion,
		&country,
		&timezone,
		&a.ExperienceLevel,
		&a.AvailabilityStatus,
		&bio,
		&a.WillingToTravel,
		&a.HasVehicle,
		&a.CanWorkWeekends,
		&a.CanWorkNights,
		&headshotURL,
		&videoURL,
		&a.CreatedAt,
		pq.Array(&a.RoleIDs),
		pq.Array(&a.SkillIDs),
		pq.Array(&a.LanguageIDs),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.PhoneNumber = phone.String
	a.InstagramHandle = instagram.String
	a.City = city.String
	a.StateRegion = stateRegion.String
	a.Country = country.String
	a.Timezone = timezone.String
	a.Bio = bio.String
	a.HeadshotURL = headshotURL.String
	a.VideoURL = videoURL.String
	return &a, nil
}

// insertJoinRows writes the role/skill/language associations. The three
// inserts are independent, so they run concurrently.
func insertJoinRows(ctx context.Context, ambassadorID string, roleIDs, skillIDs, languageIDs []int64) error {
	if db == nil {
		return errDBNotInitialized
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return insertJoin(gctx, "ambassador_roles", "role_id", ambassadorID, roleIDs)
	})
	g.Go(func() error {
		return insertJoin(gctx, "ambassador_skills", "skill_id", ambassadorID, skillIDs)
	})
	g.Go(func() error {
		return insertJoin(gctx, "ambassador_languages", "language_id", ambassadorID, languageIDs)
	})
	return g.Wait()
}

func insertJoin(ctx context.Context, table, column, ambassadorID string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (ambassador_id, %s)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING;
	`, table, column), ambassadorID, pq.Array(ids))
	return err
}

// replaceJoinRows swaps all associations for a profile edit: delete then
// re-insert, per join table, concurrently.
func replaceJoinRows(ctx context.Context, ambassadorID string, roleIDs, skillIDs, languageIDs []int64) error {
	if db == nil {
		return errDBNotInitialized
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return replaceJoin(gctx, "ambassador_roles", "role_id", ambassadorID, roleIDs)
	})
	g.Go(func() error {
		return replaceJoin(gctx, "ambassador_skills", "skill_id", ambassadorID, skillIDs)
	})
	g.Go(func() error {
		return replaceJoin(gctx, "ambassador_languages", "language_id", ambassadorID, languageIDs)
	})
	return g.Wait()
}

func replaceJoin(ctx context.Context, table, column, ambassadorID string, ids []int64) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE ambassador_id = $1;
	`, table), ambassadorID); err != nil {
		return err
	}
	return insertJoin(ctx, table, column, ambassadorID, ids)
}

// insertAgencyRequest stores one access-request lead.
func insertAgencyRequest(ctx context.Context, req models.AgencyRequest) error {
	if db == nil {
		return errDBNotInitialized
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO agency_requests (company_name, contact_name, email, phone, regions, notes)
		VALUES ($1, $2, $3, $4, $5, $6);
	`,
		req.CompanyName,
		req.ContactName,
		req.Email,
		nullIfEmpty(req.Phone),
		pq.Array(req.Regions),
		nullIfEmpty(req.Notes),
	)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
