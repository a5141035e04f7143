package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	appconfig "github.com/skozushko/brand-ambassador/app/config"
	"github.com/skozushko/brand-ambassador/app/models"
	"github.com/skozushko/brand-ambassador/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxHeadshotBytes = 5 << 20
	maxVideoBytes    = 100 << 20
)

var headshotTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

var videoTypes = map[string]string{
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/quicktime": "mov",
}

// sagaStep is one tagged unit of the signup flow: an action plus the
// compensation that undoes it if a later step fails.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// runSteps executes steps in order. On failure, compensations for the
// already-completed steps run in reverse, best effort.
func runSteps(ctx context.Context, steps []sagaStep) error {
	for i, step := range steps {
		if err := step.run(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				if steps[j].compensate == nil {
					continue
				}
				if cerr := steps[j].compensate(ctx); cerr != nil {
					log.Printf("compensation %s failed: %v", steps[j].name, cerr)
				}
			}
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

// validateUpload checks size and content type and returns the extension
// to store the object under. The message is user-facing.
func validateUpload(header *multipart.FileHeader, kinds map[string]string, maxBytes int64, label string) (string, error) {
	if header.Size > maxBytes {
		return "", fmt.Errorf("%s must be under %d MB.", label, maxBytes>>20)
	}
	contentType := header.Header.Get("Content-Type")
	ext, ok := kinds[contentType]
	if !ok {
		return "", fmt.Errorf("%s has an unsupported format (%s).", label, contentType)
	}
	return ext, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ambassadorParamsFromForm maps the multipart form onto the explicit
// write command. Field-by-field on purpose: unknown form keys never
// reach the database.
func ambassadorParamsFromForm(c *gin.Context, userID string) (models.AmbassadorParams, error) {
	p := models.AmbassadorParams{
		UserID:             userID,
		FullName:           strings.TrimSpace(c.PostForm("full_name")),
		Email:              strings.TrimSpace(c.PostForm("email")),
		PhoneNumber:        strings.TrimSpace(c.PostForm("phone_number")),
		InstagramHandle:    strings.TrimSpace(strings.TrimPrefix(c.PostForm("instagram_handle"), "@")),
		City:               strings.TrimSpace(c.PostForm("city")),
		StateRegion:        strings.TrimSpace(c.PostForm("state_region")),
		Country:            strings.TrimSpace(c.PostForm("country")),
		Timezone:           strings.TrimSpace(c.PostForm("timezone")),
		ExperienceLevel:    models.ExperienceLevel(c.PostForm("experience_level")),
		AvailabilityStatus: models.AvailabilityStatus(c.PostForm("availability_status")),
		Bio:                strings.TrimSpace(c.PostForm("bio")),
		WillingToTravel:    parseFlag(c.PostForm("willing_to_travel")),
		HasVehicle:         parseFlag(c.PostForm("has_vehicle")),
		CanWorkWeekends:    parseFlag(c.PostForm("can_work_weekends")),
		CanWorkNights:      parseFlag(c.PostForm("can_work_nights")),
		RoleIDs:            parseIDList(c.PostFormArray("role_ids")),
		SkillIDs:           parseIDList(c.PostFormArray("skill_ids")),
		LanguageIDs:        parseIDList(c.PostFormArray("language_ids")),
	}

	if p.FullName == "" {
		return p, errors.New("full name is required")
	}
	if p.Email == "" {
		return p, errors.New("email is required")
	}
	if p.AvailabilityStatus == "" {
		p.AvailabilityStatus = models.AvailabilityAvailable
	}
	if !p.AvailabilityStatus.Valid() {
		return p, fmt.Errorf("invalid availability status %q", p.AvailabilityStatus)
	}
	if p.ExperienceLevel != "" && !p.ExperienceLevel.Valid() {
		return p, fmt.Errorf("invalid experience level %q", p.ExperienceLevel)
	}
	return p, nil
}

// CreateAmbassador handles the signup form: validate, upload media,
// insert the profile, then attach roles/skills/languages. Uploads are
// compensated on a failed insert so no orphaned objects linger.
func CreateAmbassador(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	params, err := ambassadorParamsFromForm(c, claims.Subject)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := getAmbassadorByUserID(c.Request.Context(), claims.Subject)
	if err != nil {
		log.Printf("signup duplicate check failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check existing profile"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "profile already exists", "id": existing.ID})
		return
	}

	headshot, err := c.FormFile("headshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "headshot is required"})
		return
	}
	headshotExt, err := validateUpload(headshot, headshotTypes, maxHeadshotBytes, "Headshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "intro video is required"})
		return
	}
	videoExt, err := validateUpload(video, videoTypes, maxVideoBytes, "Intro video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := appconfig.LoadConfig()
	if err != nil {
		log.Printf("signup config load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage not configured"})
		return
	}

	id := uuid.NewString()
	headshotKey := fmt.Sprintf("photos/%s.%s", id, headshotExt)
	videoKey := fmt.Sprintf("videos/%s.%s", id, videoExt)

	ctx, cancel := contextWithTimeout(c, 60*time.Second)
	defer cancel()

	steps := []sagaStep{
		{
			name: "upload-headshot",
			run: func(ctx context.Context) error {
				data, err := readUpload(headshot)
				if err != nil {
					return err
				}
				url, err := store.Upload(ctx, cfg.Storage.HeadshotBucket, headshotKey, data, headshot.Header.Get("Content-Type"))
				if err != nil {
					return err
				}
				params.HeadshotURL = url
				return nil
			},
			compensate: func(ctx context.Context) error {
				return store.Delete(ctx, cfg.Storage.HeadshotBucket, headshotKey)
			},
		},
		{
			name: "upload-video",
			run: func(ctx context.Context) error {
				data, err := readUpload(video)
				if err != nil {
					return err
				}
				url, err := store.Upload(ctx, cfg.Storage.VideoBucket, videoKey, data, video.Header.Get("Content-Type"))
				if err != nil {
					return err
				}
				params.VideoURL = url
				return nil
			},
			compensate: func(ctx context.Context) error {
				return store.Delete(ctx, cfg.Storage.VideoBucket, videoKey)
			},
		},
		{
			name: "insert-profile",
			run: func(ctx context.Context) error {
				return insertAmbassador(ctx, id, params)
			},
		},
	}

	if err := runSteps(ctx, steps); err != nil {
		log.Printf("signup failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The profile row exists either way; a failed association write is a
	// partial success the user can repair from the edit form.
	if err := insertJoinRows(ctx, id, params.RoleIDs, params.SkillIDs, params.LanguageIDs); err != nil {
		log.Printf("signup associations failed id=%s err=%v", id, err)
		c.JSON(http.StatusOK, gin.H{
			"id":      id,
			"warning": "profile created, but some selections were not saved",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetMyProfile returns the caller's own full profile.
func GetMyProfile(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	profile, err := getAmbassadorByUserID(ctx, claims.Subject)
	if err != nil {
		log.Printf("own profile read failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no profile yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateMyProfile edits the caller's profile in place. New media files
// replace the stored URLs; absent ones leave them untouched.
func UpdateMyProfile(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	ctx, cancel := contextWithTimeout(c, 60*time.Second)
	defer cancel()

	existing, err := getAmbassadorByUserID(ctx, claims.Subject)
	if err != nil {
		log.Printf("profile edit lookup failed user=%s err=%v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no profile yet"})
		return
	}

	params, err := ambassadorParamsFromForm(c, claims.Subject)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := appconfig.LoadConfig()
	if err != nil {
		log.Printf("profile edit config load failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage not configured"})
		return
	}

	if headshot, ferr := c.FormFile("headshot"); ferr == nil {
		ext, verr := validateUpload(headshot, headshotTypes, maxHeadshotBytes, "Headshot")
		if verr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		data, rerr := readUpload(headshot)
		if rerr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read headshot"})
			return
		}
		key := fmt.Sprintf("photos/%s.%s", existing.ID, ext)
		url, uerr := store.Upload(ctx, cfg.Storage.HeadshotBucket, key, data, headshot.Header.Get("Content-Type"))
		if uerr != nil {
			log.Printf("headshot replace failed id=%s err=%v", existing.ID, uerr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store headshot"})
			return
		}
		params.HeadshotURL = url
	}

	if video, ferr := c.FormFile("video"); ferr == nil {
		ext, verr := validateUpload(video, videoTypes, maxVideoBytes, "Intro video")
		if verr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
			return
		}
		data, rerr := readUpload(video)
		if rerr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read video"})
			return
		}
		key := fmt.Sprintf("videos/%s.%s", existing.ID, ext)
		url, uerr := store.Upload(ctx, cfg.Storage.VideoBucket, key, data, video.Header.Get("Content-Type"))
		if uerr != nil {
			log.Printf("video replace failed id=%s err=%v", existing.ID, uerr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store video"})
			return
		}
		params.VideoURL = url
	}

	if err := updateAmbassador(ctx, existing.ID, params); err != nil {
		log.Printf("profile update failed id=%s err=%v", existing.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	if err := replaceJoinRows(ctx, existing.ID, params.RoleIDs, params.SkillIDs, params.LanguageIDs); err != nil {
		log.Printf("profile associations update failed id=%s err=%v", existing.ID, err)
		c.JSON(http.StatusOK, gin.H{
			"id":      existing.ID,
			"warning": "profile saved, but some selections were not updated",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": existing.ID})
}
