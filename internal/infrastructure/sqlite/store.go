// Package sqlite implements the reminder gateway on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shukatsu-reminders/internal/domain"
	_ "modernc.org/sqlite"
)

const busyTimeoutMs = 2000

// Store is a SQLite-backed record store. Timestamps are Unix milliseconds.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", connectionString(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func connectionString(path string) string {
	qs := url.Values{
		"_txlock": []string{"immediate"},
		"_pragma": []string{
			"journal_mode(WAL)",
			fmt.Sprintf("busy_timeout(%d)", busyTimeoutMs),
		},
	}
	return "file:" + path + "?" + qs.Encode()
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			company_id TEXT NOT NULL PRIMARY KEY,
			name       TEXT NOT NULL,
			url        TEXT,
			address    TEXT,
			industry   INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		) WITHOUT ROWID`,
		`CREATE TABLE IF NOT EXISTS selections (
			user_id    TEXT NOT NULL,
			company_id TEXT NOT NULL,
			status     TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, company_id)
		) WITHOUT ROWID`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id    TEXT NOT NULL PRIMARY KEY,
			company_id  TEXT,
			title       TEXT NOT NULL,
			type        TEXT NOT NULL,
			start_time  INTEGER NOT NULL,
			end_time    INTEGER,
			location    TEXT,
			description TEXT
		) WITHOUT ROWID`,
		`CREATE INDEX IF NOT EXISTS events_company_start ON events (company_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS events_type_start ON events (type, start_time)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PutCompany(ctx context.Context, c *domain.Company) error {
	var industry any
	if c.Industry != nil {
		industry = int64(*c.Industry)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO companies (company_id, name, url, address, industry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.CompanyID, c.Name, nullable(c.URL), nullable(c.Address), industry, toMillis(c.CreatedAt), toMillis(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put company %s: %w", c.CompanyID, err)
	}
	return nil
}

func (s *Store) PutSelection(ctx context.Context, sel *domain.Selection) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO selections (user_id, company_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		sel.UserID, sel.CompanyID, string(sel.Status), toMillis(sel.CreatedAt), toMillis(sel.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put selection %s/%s: %w", sel.UserID, sel.CompanyID, err)
	}
	return nil
}

func (s *Store) PutEvent(ctx context.Context, e *domain.Event) error {
	var companyID, endTime any
	if e.CompanyID != "" {
		companyID = e.CompanyID
	}
	if e.EndTime != nil {
		endTime = toMillis(*e.EndTime)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO events (event_id, company_id, title, type, start_time, end_time, location, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EventID, companyID, e.Title, string(e.Type), toMillis(e.StartTime), endTime, nullable(e.Location), nullable(e.Description))
	if err != nil {
		return fmt.Errorf("put event %s: %w", e.EventID, err)
	}
	return nil
}

const companyColumns = `c.company_id, c.name, c.url, c.address, c.industry, c.created_at, c.updated_at`

func (s *Store) ListSelections(ctx context.Context, userID string, statusIn []domain.SelectionStatus, updatedBefore time.Time) ([]domain.Selection, error) {
	if len(statusIn) == 0 {
		return nil, nil
	}
	args := []any{userID}
	for _, st := range statusIn {
		args = append(args, string(st))
	}
	args = append(args, ceilMillis(updatedBefore))

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.user_id, s.company_id, s.status, s.created_at, s.updated_at, `+companyColumns+`
		FROM selections s LEFT JOIN companies c ON c.company_id = s.company_id
		WHERE s.user_id = ? AND s.status IN (`+placeholders(len(statusIn))+`) AND s.updated_at < ?
		ORDER BY s.company_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	var out []domain.Selection
	for rows.Next() {
		var sel domain.Selection
		var status string
		var created, updated int64
		var c companyRow
		if err := rows.Scan(c.dest(&sel.UserID, &sel.CompanyID, &status, &created, &updated)...); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		sel.Status = domain.SelectionStatus(status)
		sel.CreatedAt, sel.UpdatedAt = fromMillis(created), fromMillis(updated)
		sel.Company = c.company()
		out = append(out, sel)
	}
	return out, rows.Err()
}

func (s *Store) ListEventsForCompany(ctx context.Context, companyID string, startAfter, startBefore time.Time) ([]domain.Event, error) {
	return s.queryEvents(ctx, `e.company_id = ? AND e.start_time >= ? AND e.start_time < ?`,
		companyID, ceilMillis(startAfter), ceilMillis(startBefore))
}

// ListDeadlineEvents is not scoped to a user: deadlines belong to companies.
func (s *Store) ListDeadlineEvents(ctx context.Context, startAfter, startBefore time.Time) ([]domain.Event, error) {
	return s.queryEvents(ctx, `e.type = ? AND e.start_time >= ? AND e.start_time <= ?`,
		string(domain.EventDeadline), ceilMillis(startAfter), toMillis(startBefore))
}

func (s *Store) queryEvents(ctx context.Context, where string, args ...any) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.event_id, e.company_id, e.title, e.type, e.start_time, e.end_time, e.location, e.description, `+companyColumns+`
		FROM events e LEFT JOIN companies c ON c.company_id = e.company_id
		WHERE `+where+`
		ORDER BY e.start_time, e.event_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		var companyID, location, description sql.NullString
		var typ string
		var start int64
		var end sql.NullInt64
		var c companyRow
		if err := rows.Scan(c.dest(&e.EventID, &companyID, &e.Title, &typ, &start, &end, &location, &description)...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CompanyID = companyID.String
		e.Type = domain.EventType(typ)
		e.StartTime = fromMillis(start)
		if end.Valid {
			t := fromMillis(end.Int64)
			e.EndTime = &t
		}
		e.Location = nullString(location)
		e.Description = nullString(description)
		e.Company = c.company()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) GetSelection(ctx context.Context, userID, companyID string) (*domain.Selection, error) {
	var sel domain.Selection
	var status string
	var created, updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, company_id, status, created_at, updated_at
		FROM selections WHERE user_id = ? AND company_id = ?`, userID, companyID).
		Scan(&sel.UserID, &sel.CompanyID, &status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("selection %s/%s: %w", userID, companyID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get selection: %w", err)
	}
	sel.Status = domain.SelectionStatus(status)
	sel.CreatedAt, sel.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &sel, nil
}

// companyRow receives the LEFT JOINed company columns.
type companyRow struct {
	id, name, url, address sql.NullString
	industry               sql.NullInt64
	created, updated       sql.NullInt64
}

// dest returns the scan targets: the leading columns followed by the company columns.
func (r *companyRow) dest(leading ...any) []any {
	return append(leading, &r.id, &r.name, &r.url, &r.address, &r.industry, &r.created, &r.updated)
}

// company returns nil when the join found no row.
func (r *companyRow) company() *domain.Company {
	if !r.id.Valid {
		return nil
	}
	c := &domain.Company{
		CompanyID: r.id.String,
		Name:      r.name.String,
		URL:       nullString(r.url),
		Address:   nullString(r.address),
		CreatedAt: fromMillis(r.created.Int64),
		UpdatedAt: fromMillis(r.updated.Int64),
	}
	if r.industry.Valid {
		n := int(r.industry.Int64)
		c.Industry = &n
	}
	return c
}

// nullable binds a nil pointer as NULL and any other pointer as its value.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// ceilMillis rounds t up to a whole millisecond, so that x < t <=> x < ceilMillis(t)
// and x >= t <=> x >= ceilMillis(t) for stored millisecond values x.
func ceilMillis(t time.Time) int64 {
	ms := t.UnixMilli()
	if t.Sub(time.UnixMilli(ms)) > 0 {
		ms++
	}
	return ms
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
