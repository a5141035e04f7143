// Package models defines the marketplace entities persisted in Postgres.
package models

import "time"

type ExperienceLevel string

const (
	ExperienceNew         ExperienceLevel = "new"
	ExperienceExperienced ExperienceLevel = "experienced"
	ExperienceElite       ExperienceLevel = "elite"

	// Legacy vocabulary from the older profile-edit form. Still accepted
	// on writes so existing rows keep round-tripping.
	ExperienceBrandNew       ExperienceLevel = "brand_new"
	ExperienceLittle         ExperienceLevel = "little_experience"
	ExperienceMoreThanAYear  ExperienceLevel = "more_than_a_year"
	ExperienceIndustryVet    ExperienceLevel = "industry_vet"
)

func (e ExperienceLevel) Valid() bool {
	switch e {
	case ExperienceNew, ExperienceExperienced, ExperienceElite,
		ExperienceBrandNew, ExperienceLittle, ExperienceMoreThanAYear, ExperienceIndustryVet:
		return true
	}
	return false
}

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityLimited     AvailabilityStatus = "limited"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

func (a AvailabilityStatus) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityLimited, AvailabilityUnavailable:
		return true
	}
	return false
}

// Option is a reference-vocabulary entry (roles, skills, languages).
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AmbassadorParams is the explicit write command for a profile insert or
// update. Handlers map form fields onto it one by one; nothing is spread
// through implicitly.
type AmbassadorParams struct {
	UserID             string
	FullName           string
	Email              string
	PhoneNumber        string
	InstagramHandle    string
	City               string
	StateRegion        string
	Country            string
	Timezone           string
	ExperienceLevel    ExperienceLevel
	AvailabilityStatus AvailabilityStatus
	Bio                string
	WillingToTravel    bool
	HasVehicle         bool
	CanWorkWeekends    bool
	CanWorkNights      bool
	HeadshotURL        string
	VideoURL           string

	RoleIDs     []int64
	SkillIDs    []int64
	LanguageIDs []int64
}

// Ambassador is the full profile row, private contact fields included.
// Only the owner and the reveal path ever see it whole.
type Ambassador struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	FullName           string             `json:"full_name"`
	Email              string             `json:"email"`
	PhoneNumber        string             `json:"phone_number,omitempty"`
	InstagramHandle    string             `json:"instagram_handle,omitempty"`
	City               string             `json:"city,omitempty"`
	StateRegion        string             `json:"state_region,omitempty"`
	Country            string             `json:"country,omitempty"`
	Timezone           string             `json:"timezone,omitempty"`
	ExperienceLevel    ExperienceLevel    `json:"experience_level"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	Bio                string             `json:"bio,omitempty"`
	WillingToTravel    bool               `json:"willing_to_travel"`
	HasVehicle         bool               `json:"has_vehicle"`
	CanWorkWeekends    bool               `json:"can_work_weekends"`
	CanWorkNights      bool               `json:"can_work_nights"`
	HeadshotURL        string             `json:"headshot_url,omitempty"`
	VideoURL           string             `json:"video_url,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`

	RoleIDs     []int64 `json:"role_ids,omitempty"`
	SkillIDs    []int64 `json:"skill_ids,omitempty"`
	LanguageIDs []int64 `json:"language_ids,omitempty"`
}

// DirectoryProfile is one row of the ambassadors_directory view: the
// denormalized public projection used for search. Contact fields are
// deliberately absent; those go through the reveal path.
type DirectoryProfile struct {
	ID                 string             `json:"id"`
	FullName           string             `json:"full_name"`
	City               string             `json:"city,omitempty"`
	StateRegion        string             `json:"state_region,omitempty"`
	Country            string             `json:"country,omitempty"`
	ExperienceLevel    ExperienceLevel    `json:"experience_level"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
	WillingToTravel    bool               `json:"willing_to_travel"`
	HasVehicle         bool               `json:"has_vehicle"`
	Bio                string             `json:"bio,omitempty"`
	HeadshotURL        string             `json:"headshot_url,omitempty"`
	VideoURL           string             `json:"video_url,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`

	RoleIDs       []int64  `json:"role_ids"`
	RoleNames     []string `json:"role_names"`
	SkillIDs      []int64  `json:"skill_ids"`
	SkillNames    []string `json:"skill_names"`
	LanguageIDs   []int64  `json:"language_ids"`
	LanguageNames []string `json:"language_names"`
}

// Contact holds the private fields returned by a successful reveal.
type Contact struct {
	Email           string `json:"email,omitempty"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	InstagramHandle string `json:"instagram_handle,omitempty"`
}

// QuotaStatus is the monthly contact-reveal quota snapshot computed by
// the quota_status database function.
type QuotaStatus struct {
	Used         int `json:"used"`
	Remaining    int `json:"remaining"`
	MonthlyLimit int `json:"monthly_limit"`
}
