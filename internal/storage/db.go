package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/lanyardhq/lanyard/internal/storage/db"
)

// Postgres error codes translated into the storage error taxonomy.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DB is a [Store] backed by a postgres database.
type DB struct {
	db *sql.DB
}

// NewDB opens a postgres connection for the given DSN and migrates the
// schema.
func NewDB(ctx context.Context, logger *slog.Logger, dsn string) (*DB, error) {
	handle, err := db.Open(ctx, logger, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{db: handle}, nil
}

// NewDBFromHandle wraps an already-open connection. The caller keeps
// ownership of migrations; used by the test harness.
func NewDBFromHandle(handle *sql.DB) *DB {
	return &DB{db: handle}
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// translate maps driver errors onto the storage taxonomy. Unique violations
// become [ErrAlreadyExists]; missing rows and broken references become
// [ErrNotFound].
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return ErrAlreadyExists
		case pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}

const delegateColumns = "id, badge_id, name, email, job_title, company_name, created_at"

func scanDelegate(row interface{ Scan(...any) error }) (db.Delegate, error) {
	var d db.Delegate
	err := row.Scan(&d.ID, &d.BadgeID, &d.Name, &d.Email, &d.JobTitle, &d.CompanyName, &d.CreatedAt)
	return d, translate(err)
}

// ListDelegates satisfies the [Delegates] interface.
func (d *DB) ListDelegates(ctx context.Context) ([]db.Delegate, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+delegateColumns+" FROM delegates ORDER BY created_at DESC")
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	delegates := []db.Delegate{}
	for rows.Next() {
		delegate, err := scanDelegate(rows)
		if err != nil {
			return nil, err
		}
		delegates = append(delegates, delegate)
	}
	return delegates, translate(rows.Err())
}

// GetDelegate satisfies the [Delegates] interface.
func (d *DB) GetDelegate(ctx context.Context, id int64) (db.Delegate, error) {
	return scanDelegate(d.db.QueryRowContext(ctx,
		"SELECT "+delegateColumns+" FROM delegates WHERE id = $1", id))
}

// GetDelegateByBadge satisfies the [Delegates] interface.
func (d *DB) GetDelegateByBadge(ctx context.Context, badgeID string) (db.Delegate, error) {
	return scanDelegate(d.db.QueryRowContext(ctx,
		"SELECT "+delegateColumns+" FROM delegates WHERE badge_id = $1", badgeID))
}

// CreateDelegate satisfies the [Delegates] interface.
func (d *DB) CreateDelegate(ctx context.Context, params db.CreateDelegateParams) (db.Delegate, error) {
	return scanDelegate(d.db.QueryRowContext(ctx, `
		INSERT INTO delegates (badge_id, name, email, job_title, company_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+delegateColumns,
		params.BadgeID, params.Name, params.Email, params.JobTitle, params.CompanyName))
}

// UpdateDelegate satisfies the [Delegates] interface. Only supplied fields
// overwrite; omitted fields retain prior values.
func (d *DB) UpdateDelegate(ctx context.Context, id int64, params db.UpdateDelegateParams) (db.Delegate, error) {
	set, args := updateSet(map[string]*string{
		"name":         params.Name,
		"email":        params.Email,
		"job_title":    params.JobTitle,
		"company_name": params.CompanyName,
	})
	if set == "" {
		return d.GetDelegate(ctx, id)
	}
	args = append(args, id)
	return scanDelegate(d.db.QueryRowContext(ctx, fmt.Sprintf(
		"UPDATE delegates SET %s WHERE id = $%d RETURNING %s",
		set, len(args), delegateColumns), args...))
}

// DeleteDelegate satisfies the [Delegates] interface.
func (d *DB) DeleteDelegate(ctx context.Context, id int64) error {
	return d.deleteRow(ctx, "DELETE FROM delegates WHERE id = $1", id)
}

const startupColumns = "id, name, email, description, industry, booth_number, created_at"

func scanStartup(row interface{ Scan(...any) error }) (db.Startup, error) {
	var s db.Startup
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Description, &s.Industry, &s.BoothNumber, &s.CreatedAt)
	return s, translate(err)
}

// ListStartups satisfies the [Startups] interface.
func (d *DB) ListStartups(ctx context.Context) ([]db.Startup, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+startupColumns+" FROM startups ORDER BY created_at DESC")
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	startups := []db.Startup{}
	for rows.Next() {
		startup, err := scanStartup(rows)
		if err != nil {
			return nil, err
		}
		startups = append(startups, startup)
	}
	return startups, translate(rows.Err())
}

// GetStartup satisfies the [Startups] interface.
func (d *DB) GetStartup(ctx context.Context, id int64) (db.Startup, error) {
	return scanStartup(d.db.QueryRowContext(ctx,
		"SELECT "+startupColumns+" FROM startups WHERE id = $1", id))
}

// CreateStartup satisfies the [Startups] interface.
func (d *DB) CreateStartup(ctx context.Context, params db.CreateStartupParams) (db.Startup, error) {
	return scanStartup(d.db.QueryRowContext(ctx, `
		INSERT INTO startups (name, email, description, industry, booth_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+startupColumns,
		params.Name, params.Email, params.Description, params.Industry, params.BoothNumber))
}

// UpdateStartup satisfies the [Startups] interface.
func (d *DB) UpdateStartup(ctx context.Context, id int64, params db.UpdateStartupParams) (db.Startup, error) {
	set, args := updateSet(map[string]*string{
		"name":         params.Name,
		"email":        params.Email,
		"description":  params.Description,
		"industry":     params.Industry,
		"booth_number": params.BoothNumber,
	})
	if set == "" {
		return d.GetStartup(ctx, id)
	}
	args = append(args, id)
	return scanStartup(d.db.QueryRowContext(ctx, fmt.Sprintf(
		"UPDATE startups SET %s WHERE id = $%d RETURNING %s",
		set, len(args), startupColumns), args...))
}

// DeleteStartup satisfies the [Startups] interface.
func (d *DB) DeleteStartup(ctx context.Context, id int64) error {
	return d.deleteRow(ctx, "DELETE FROM startups WHERE id = $1", id)
}

// ListRecommendations satisfies the [Recommendations] interface.
func (d *DB) ListRecommendations(ctx context.Context) ([]db.RecommendationDetail, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT r.id, r.delegate_id, r.startup_id, r.is_visited, r.visited_at,
		       d.name, s.name
		FROM recommendations r
		JOIN delegates d ON d.id = r.delegate_id
		JOIN startups s ON s.id = r.startup_id
		ORDER BY r.id DESC`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	recs := []db.RecommendationDetail{}
	for rows.Next() {
		var rec db.RecommendationDetail
		if err := rows.Scan(
			&rec.ID, &rec.DelegateID, &rec.StartupID, &rec.IsVisited, &rec.VisitedAt,
			&rec.DelegateName, &rec.StartupName,
		); err != nil {
			return nil, translate(err)
		}
		recs = append(recs, rec)
	}
	return recs, translate(rows.Err())
}

// ListRecommendationsByDelegate satisfies the [Recommendations] interface.
func (d *DB) ListRecommendationsByDelegate(ctx context.Context, delegateID int64) ([]db.DelegateRecommendation, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT r.id, r.delegate_id, r.startup_id, r.is_visited, r.visited_at,
		       s.id, s.name, s.booth_number
		FROM recommendations r
		JOIN startups s ON s.id = r.startup_id
		WHERE r.delegate_id = $1
		ORDER BY r.id`, delegateID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	recs := []db.DelegateRecommendation{}
	for rows.Next() {
		var rec db.DelegateRecommendation
		if err := rows.Scan(
			&rec.ID, &rec.DelegateID, &rec.StartupID, &rec.IsVisited, &rec.VisitedAt,
			&rec.Startup.ID, &rec.Startup.Name, &rec.Startup.BoothNumber,
		); err != nil {
			return nil, translate(err)
		}
		recs = append(recs, rec)
	}
	return recs, translate(rows.Err())
}

// GetRecommendation satisfies the [Recommendations] interface.
func (d *DB) GetRecommendation(ctx context.Context, id int64) (db.RecommendationDetail, error) {
	var rec db.RecommendationDetail
	err := d.db.QueryRowContext(ctx, `
		SELECT r.id, r.delegate_id, r.startup_id, r.is_visited, r.visited_at,
		       d.name, s.name
		FROM recommendations r
		JOIN delegates d ON d.id = r.delegate_id
		JOIN startups s ON s.id = r.startup_id
		WHERE r.id = $1`, id).Scan(
		&rec.ID, &rec.DelegateID, &rec.StartupID, &rec.IsVisited, &rec.VisitedAt,
		&rec.DelegateName, &rec.StartupName,
	)
	return rec, translate(err)
}

// CreateRecommendation satisfies the [Recommendations] interface.
func (d *DB) CreateRecommendation(ctx context.Context, delegateID, startupID int64) (db.Recommendation, error) {
	var rec db.Recommendation
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO recommendations (delegate_id, startup_id)
		VALUES ($1, $2)
		RETURNING id, delegate_id, startup_id, is_visited, visited_at`,
		delegateID, startupID).Scan(
		&rec.ID, &rec.DelegateID, &rec.StartupID, &rec.IsVisited, &rec.VisitedAt,
	)
	return rec, translate(err)
}

// MarkRecommendationVisited satisfies the [Recommendations] interface.
func (d *DB) MarkRecommendationVisited(ctx context.Context, id int64) (db.Recommendation, error) {
	var rec db.Recommendation
	err := d.db.QueryRowContext(ctx, `
		UPDATE recommendations
		SET is_visited = TRUE, visited_at = now()
		WHERE id = $1
		RETURNING id, delegate_id, startup_id, is_visited, visited_at`,
		id).Scan(
		&rec.ID, &rec.DelegateID, &rec.StartupID, &rec.IsVisited, &rec.VisitedAt,
	)
	return rec, translate(err)
}

// DeleteRecommendation satisfies the [Recommendations] interface.
func (d *DB) DeleteRecommendation(ctx context.Context, id int64) error {
	return d.deleteRow(ctx, "DELETE FROM recommendations WHERE id = $1", id)
}

// ListScans satisfies the [ScanLogs] interface.
func (d *DB) ListScans(ctx context.Context) ([]db.ScanDetail, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT l.id, l.delegate_id, l.staff_user_id, l.scan_time, d.name, u.username
		FROM scan_log l
		JOIN delegates d ON d.id = l.delegate_id
		JOIN users u ON u.id = l.staff_user_id
		ORDER BY l.scan_time DESC`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	scans := []db.ScanDetail{}
	for rows.Next() {
		var scan db.ScanDetail
		if err := rows.Scan(
			&scan.ID, &scan.DelegateID, &scan.StaffUserID, &scan.ScanTime,
			&scan.DelegateName, &scan.StaffUsername,
		); err != nil {
			return nil, translate(err)
		}
		scans = append(scans, scan)
	}
	return scans, translate(rows.Err())
}

// ListScansByStaff satisfies the [ScanLogs] interface.
func (d *DB) ListScansByStaff(ctx context.Context, staffUserID int64) ([]db.ScanDetail, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT l.id, l.delegate_id, l.staff_user_id, l.scan_time, d.name, d.badge_id
		FROM scan_log l
		JOIN delegates d ON d.id = l.delegate_id
		WHERE l.staff_user_id = $1
		ORDER BY l.scan_time DESC`, staffUserID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	scans := []db.ScanDetail{}
	for rows.Next() {
		var scan db.ScanDetail
		if err := rows.Scan(
			&scan.ID, &scan.DelegateID, &scan.StaffUserID, &scan.ScanTime,
			&scan.DelegateName, &scan.DelegateBadgeID,
		); err != nil {
			return nil, translate(err)
		}
		scans = append(scans, scan)
	}
	return scans, translate(rows.Err())
}

// ListScansByDelegate satisfies the [ScanLogs] interface.
func (d *DB) ListScansByDelegate(ctx context.Context, delegateID int64) ([]db.ScanDetail, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT l.id, l.delegate_id, l.staff_user_id, l.scan_time, u.username
		FROM scan_log l
		JOIN users u ON u.id = l.staff_user_id
		WHERE l.delegate_id = $1
		ORDER BY l.scan_time DESC`, delegateID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	scans := []db.ScanDetail{}
	for rows.Next() {
		var scan db.ScanDetail
		if err := rows.Scan(
			&scan.ID, &scan.DelegateID, &scan.StaffUserID, &scan.ScanTime,
			&scan.StaffUsername,
		); err != nil {
			return nil, translate(err)
		}
		scans = append(scans, scan)
	}
	return scans, translate(rows.Err())
}

// CreateScan satisfies the [ScanLogs] interface.
func (d *DB) CreateScan(ctx context.Context, delegateID, staffUserID int64) (db.ScanLog, error) {
	var scan db.ScanLog
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO scan_log (delegate_id, staff_user_id)
		VALUES ($1, $2)
		RETURNING id, delegate_id, staff_user_id, scan_time`,
		delegateID, staffUserID).Scan(
		&scan.ID, &scan.DelegateID, &scan.StaffUserID, &scan.ScanTime,
	)
	return scan, translate(err)
}

const userColumns = "id, username, password, role, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (db.User, error) {
	var u db.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, translate(err)
}

// ListStaffUsers satisfies the [Users] interface.
func (d *DB) ListStaffUsers(ctx context.Context) ([]db.User, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = $1 ORDER BY created_at DESC",
		db.RoleStaff)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	users := []db.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, translate(rows.Err())
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, id int64) (db.User, error) {
	return scanUser(d.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// GetUserByName satisfies the [Users] interface. The lookup is
// case-sensitive, matching how usernames are stored.
func (d *DB) GetUserByName(ctx context.Context, username string) (db.User, error) {
	return scanUser(d.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, username, passwordHash, role string) (db.User, error) {
	return scanUser(d.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password, role)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		username, passwordHash, role))
}

// UpdateUserPassword satisfies the [Users] interface.
func (d *DB) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) (db.User, error) {
	return scanUser(d.db.QueryRowContext(ctx, `
		UPDATE users SET password = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+userColumns,
		passwordHash, id))
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, id int64) error {
	return d.deleteRow(ctx, "DELETE FROM users WHERE id = $1", id)
}

// CountDelegates satisfies the [Stats] interface.
func (d *DB) CountDelegates(ctx context.Context) (int64, error) {
	return d.count(ctx, "SELECT count(*) FROM delegates")
}

// CountStartups satisfies the [Stats] interface.
func (d *DB) CountStartups(ctx context.Context) (int64, error) {
	return d.count(ctx, "SELECT count(*) FROM startups")
}

// CountRecommendations satisfies the [Stats] interface.
func (d *DB) CountRecommendations(ctx context.Context) (int64, error) {
	return d.count(ctx, "SELECT count(*) FROM recommendations")
}

// CountVisitedRecommendations satisfies the [Stats] interface.
func (d *DB) CountVisitedRecommendations(ctx context.Context) (int64, error) {
	return d.count(ctx, "SELECT count(*) FROM recommendations WHERE is_visited")
}

// CountScans satisfies the [Stats] interface.
func (d *DB) CountScans(ctx context.Context) (int64, error) {
	return d.count(ctx, "SELECT count(*) FROM scan_log")
}

// CountStaffUsers satisfies the [Stats] interface.
func (d *DB) CountStaffUsers(ctx context.Context) (int64, error) {
	return d.count(ctx, "SELECT count(*) FROM users WHERE role = $1", db.RoleStaff)
}

// CountDelegateRecommendations satisfies the [Stats] interface.
func (d *DB) CountDelegateRecommendations(ctx context.Context, delegateID int64) (total, visited int64, err error) {
	err = d.db.QueryRowContext(ctx, `
		SELECT count(*), count(*) FILTER (WHERE is_visited)
		FROM recommendations
		WHERE delegate_id = $1`, delegateID).Scan(&total, &visited)
	return total, visited, translate(err)
}

// TopStartups satisfies the [Stats] interface. Ties on visit count keep the
// underlying fetch order.
func (d *DB) TopStartups(ctx context.Context) ([]db.StartupStats, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.booth_number,
		       count(r.id) AS recommendation_count,
		       count(r.id) FILTER (WHERE r.is_visited) AS visit_count
		FROM startups s
		LEFT JOIN recommendations r ON r.startup_id = s.id
		GROUP BY s.id, s.name, s.booth_number
		ORDER BY visit_count DESC`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	stats := []db.StartupStats{}
	for rows.Next() {
		var s db.StartupStats
		if err := rows.Scan(&s.ID, &s.Name, &s.BoothNumber, &s.RecommendationCount, &s.VisitCount); err != nil {
			return nil, translate(err)
		}
		stats = append(stats, s)
	}
	return stats, translate(rows.Err())
}

func (d *DB) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := d.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, translate(err)
}

// deleteRow runs a single-row delete and reports [ErrNotFound] when nothing
// matched.
func (d *DB) deleteRow(ctx context.Context, query string, args ...any) error {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// updateSet builds the SET clause for a partial update from the supplied
// (non-nil) fields. Column iteration order is fixed to keep queries stable.
func updateSet(fields map[string]*string) (string, []any) {
	columns := []string{"name", "email", "description", "industry", "job_title", "company_name", "booth_number"}

	var set []string
	var args []any
	for _, col := range columns {
		val, ok := fields[col]
		if !ok || val == nil {
			continue
		}
		args = append(args, *val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	return strings.Join(set, ", "), args
}

var _ Store = (*DB)(nil)
