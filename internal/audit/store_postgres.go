package audit

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS registration_audit (
	id          UUID PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL,
	action      TEXT NOT NULL,
	customer_id BIGINT,
	email       TEXT NOT NULL,
	site_id     TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT '',
	device      TEXT NOT NULL DEFAULT '',
	code        TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS registration_audit_email_idx ON registration_audit (email, occurred_at DESC);
`

// PostgresStore writes events to the registration_audit table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table and index when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts an event. Re-inserting the same id is a no-op.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO registration_audit (
			id, occurred_at, action, customer_id, email, site_id,
			request_id, client_ip, device, code, reason
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	var customerID sql.NullInt64
	if event.CustomerID != 0 {
		customerID = sql.NullInt64{Int64: event.CustomerID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.Action),
		customerID,
		event.Email,
		event.SiteID,
		event.RequestID,
		event.ClientIP,
		event.Device,
		event.Code,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByEmail returns the events for one email, newest first.
func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]Event, error) {
	query := `
		SELECT id, occurred_at, action, customer_id, email, site_id,
			   request_id, client_ip, device, code, reason
		FROM registration_audit
		WHERE email = $1
		ORDER BY occurred_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e          Event
			action     string
			customerID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &action, &customerID, &e.Email, &e.SiteID,
			&e.RequestID, &e.ClientIP, &e.Device, &e.Code, &e.Reason); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		e.CustomerID = customerID.Int64
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
