package models

// AgencyRequest is a submitted access-request lead. Write-only from the
// API; sales follow-up happens elsewhere.
type AgencyRequest struct {
	CompanyName string   `json:"company_name"`
	ContactName string   `json:"contact_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone,omitempty"`
	Regions     []string `json:"regions,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}
