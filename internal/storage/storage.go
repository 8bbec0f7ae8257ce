// Package storage provides the state management for delegates, startups,
// recommendations, scan logs, and staff accounts.
package storage

import (
	"context"

	"github.com/lanyardhq/lanyard/internal/storage/db"
)

const (
	// ErrNotFound is returned when a record cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned when a unique constraint is violated.
	ErrAlreadyExists Error = "already exists"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Delegates are the methods on a storage implementation responsible for
// accessing and modifying delegates.
type Delegates interface {
	// ListDelegates returns all delegates, newest first.
	ListDelegates(ctx context.Context) ([]db.Delegate, error)
	// GetDelegate returns the delegate with the given ID. An [ErrNotFound]
	// is returned if it does not exist.
	GetDelegate(ctx context.Context, id int64) (db.Delegate, error)
	// GetDelegateByBadge returns the delegate carrying the given badge ID.
	GetDelegateByBadge(ctx context.Context, badgeID string) (db.Delegate, error)
	// CreateDelegate inserts a new delegate and returns the stored row.
	// Returns [ErrAlreadyExists] if the badge ID is taken.
	CreateDelegate(ctx context.Context, params db.CreateDelegateParams) (db.Delegate, error)
	// UpdateDelegate applies a partial update; nil fields keep their prior
	// values. Returns [ErrNotFound] if the delegate does not exist.
	UpdateDelegate(ctx context.Context, id int64, params db.UpdateDelegateParams) (db.Delegate, error)
	// DeleteDelegate removes the delegate. Returns [ErrNotFound] if there
	// was no such row.
	DeleteDelegate(ctx context.Context, id int64) error
}

// Startups are the methods on a storage implementation responsible for
// accessing and modifying startups.
type Startups interface {
	ListStartups(ctx context.Context) ([]db.Startup, error)
	GetStartup(ctx context.Context, id int64) (db.Startup, error)
	CreateStartup(ctx context.Context, params db.CreateStartupParams) (db.Startup, error)
	UpdateStartup(ctx context.Context, id int64, params db.UpdateStartupParams) (db.Startup, error)
	DeleteStartup(ctx context.Context, id int64) error
}

// Recommendations are the methods on a storage implementation responsible
// for delegate-to-startup pairings.
type Recommendations interface {
	// ListRecommendations returns all recommendations with delegate and
	// startup names attached, newest first.
	ListRecommendations(ctx context.Context) ([]db.RecommendationDetail, error)
	// ListRecommendationsByDelegate returns one delegate's recommendations
	// with the referenced startup embedded.
	ListRecommendationsByDelegate(ctx context.Context, delegateID int64) ([]db.DelegateRecommendation, error)
	GetRecommendation(ctx context.Context, id int64) (db.RecommendationDetail, error)
	// CreateRecommendation inserts a pairing. Returns [ErrAlreadyExists]
	// for a duplicate (delegate, startup) pair and [ErrNotFound] if either
	// side is missing.
	CreateRecommendation(ctx context.Context, delegateID, startupID int64) (db.Recommendation, error)
	// MarkRecommendationVisited sets is_visited and stamps visited_at with
	// the current time. Re-marking re-stamps the timestamp.
	MarkRecommendationVisited(ctx context.Context, id int64) (db.Recommendation, error)
	DeleteRecommendation(ctx context.Context, id int64) error
}

// ScanLogs are the methods on a storage implementation responsible for the
// append-only badge scan log.
type ScanLogs interface {
	ListScans(ctx context.Context) ([]db.ScanDetail, error)
	ListScansByStaff(ctx context.Context, staffUserID int64) ([]db.ScanDetail, error)
	ListScansByDelegate(ctx context.Context, delegateID int64) ([]db.ScanDetail, error)
	// CreateScan appends a scan record for the acting staff user.
	CreateScan(ctx context.Context, delegateID, staffUserID int64) (db.ScanLog, error)
}

// Users are the methods on a storage implementation responsible for staff
// and admin accounts.
type Users interface {
	// ListStaffUsers returns staff-role accounts, newest first.
	ListStaffUsers(ctx context.Context) ([]db.User, error)
	GetUser(ctx context.Context, id int64) (db.User, error)
	// GetUserByName returns the account with the given username. An
	// [ErrNotFound] is returned if the username is unknown.
	GetUserByName(ctx context.Context, username string) (db.User, error)
	// CreateUser inserts an account with an already-hashed password.
	// Returns [ErrAlreadyExists] if the username is taken.
	CreateUser(ctx context.Context, username, passwordHash, role string) (db.User, error)
	// UpdateUserPassword overwrites the stored hash.
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (db.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Stats are the read-only aggregate queries backing the analytics endpoints.
type Stats interface {
	CountDelegates(ctx context.Context) (int64, error)
	CountStartups(ctx context.Context) (int64, error)
	CountRecommendations(ctx context.Context) (int64, error)
	CountVisitedRecommendations(ctx context.Context) (int64, error)
	CountScans(ctx context.Context) (int64, error)
	CountStaffUsers(ctx context.Context) (int64, error)
	// CountDelegateRecommendations returns the total and visited
	// recommendation counts scoped to one delegate.
	CountDelegateRecommendations(ctx context.Context, delegateID int64) (total, visited int64, err error)
	// TopStartups returns per-startup recommendation and visit counts,
	// sorted by visit count descending. Ties keep the fetch order.
	TopStartups(ctx context.Context) ([]db.StartupStats, error)
}

// Store is the set of methods the application expects of its storage
// implementation.
type Store interface {
	Delegates
	Startups
	Recommendations
	ScanLogs
	Users
	Stats

	// Close cleans up the storage implementation.
	Close() error
}
