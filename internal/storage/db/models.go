package db

import "time"

// Account roles stored in the users table.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Delegate is an event attendee identified by a unique badge ID.
type Delegate struct {
	ID          int64     `json:"id"`
	BadgeID     string    `json:"badge_id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	JobTitle    *string   `json:"job_title"`
	CompanyName *string   `json:"company_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateDelegateParams are the caller-supplied fields for a new delegate.
type CreateDelegateParams struct {
	BadgeID     string
	Name        string
	Email       *string
	JobTitle    *string
	CompanyName *string
}

// UpdateDelegateParams is a partial update; nil fields are left untouched.
type UpdateDelegateParams struct {
	Name        *string
	Email       *string
	JobTitle    *string
	CompanyName *string
}

// Startup is an exhibiting entity with a booth.
type Startup struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	Description *string   `json:"description"`
	Industry    *string   `json:"industry"`
	BoothNumber *string   `json:"booth_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateStartupParams are the caller-supplied fields for a new startup.
type CreateStartupParams struct {
	Name        string
	Email       *string
	Description *string
	Industry    *string
	BoothNumber *string
}

// UpdateStartupParams is a partial update; nil fields are left untouched.
type UpdateStartupParams struct {
	Name        *string
	Email       *string
	Description *string
	Industry    *string
	BoothNumber *string
}

// Recommendation is a suggested delegate-to-startup pairing. visited_at is
// set iff is_visited is true.
type Recommendation struct {
	ID         int64      `json:"id"`
	DelegateID int64      `json:"delegate_id"`
	StartupID  int64      `json:"startup_id"`
	IsVisited  bool       `json:"is_visited"`
	VisitedAt  *time.Time `json:"visited_at"`
}

// RecommendationDetail is a recommendation with the delegate and startup
// names joined in.
type RecommendationDetail struct {
	Recommendation
	DelegateName string `json:"delegate_name"`
	StartupName  string `json:"startup_name"`
}

// StartupRef is the startup subset embedded in a delegate's recommendation
// listing.
type StartupRef struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	BoothNumber *string `json:"booth_number"`
}

// DelegateRecommendation is a recommendation scoped to one delegate, with
// the referenced startup embedded.
type DelegateRecommendation struct {
	Recommendation
	Startup StartupRef `json:"startup"`
}

// ScanLog is an immutable record of a staff member scanning a delegate's
// badge.
type ScanLog struct {
	ID          int64     `json:"id"`
	DelegateID  int64     `json:"delegate_id"`
	StaffUserID int64     `json:"staff_user_id"`
	ScanTime    time.Time `json:"scan_time"`
}

// ScanDetail is a scan record with the joined names that the listing
// variants select; unselected fields are omitted from serialization.
type ScanDetail struct {
	ScanLog
	DelegateName    string `json:"delegate_name,omitempty"`
	DelegateBadgeID string `json:"delegate_badge_id,omitempty"`
	StaffUsername   string `json:"staff_username,omitempty"`
}

// User is a staff or admin account. The password hash never serializes.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StartupStats is one row of the top-startups ranking.
type StartupStats struct {
	ID                  int64   `json:"id"`
	Name                string  `json:"name"`
	BoothNumber         *string `json:"booth_number"`
	RecommendationCount int64   `json:"recommendation_count"`
	VisitCount          int64   `json:"visit_count"`
}
