package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const sessionTable = "tracking_session"

type (
	SessionRepository struct {
		conn *sqlx.DB
	}

	sessionRow struct {
		ID             string     `db:"id"`
		DeviceID       string     `db:"device_id"`
		ReportInterval int64      `db:"report_interval"`
		EndpointURL    string     `db:"endpoint_url"`
		HTTPHeaders    *string    `db:"http_headers"`
		Transport      string     `db:"transport"`
		StartedAt      time.Time  `db:"started_at"`
		ResumedAt      *time.Time `db:"resumed_at"`
	}
)

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{
		conn: db,
	}
}

// Save stores the session, replacing any previously stored one. The tracker
// runs at most one session at a time, so the table never holds more than a
// single row.
func (r *SessionRepository) Save(ctx context.Context, session *domain.TrackingSession) error {
	if session.ID == uuid.Nil {
		session.ID = NewSessionID(session.DeviceID, session.StartedAt)
	}

	var headersJSON *string

	if session.HTTPHeaders != nil {
		encoded, err := json.Marshal(session.HTTPHeaders)
		if err != nil {
			return fmt.Errorf("failed to marshal headers: %w", err)
		}

		s := string(encoded)
		headersJSON = &s
	}

	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery, deleteArgs, err := psql.Delete(sessionTable).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("failed to clear previous session: %w", err)
	}

	insertQuery, insertArgs, err := psql.Insert(sessionTable).
		Columns("id", "device_id", "report_interval", "endpoint_url", "http_headers",
			"transport", "started_at", "resumed_at").
		Values(session.ID, session.DeviceID, int64(session.ReportInterval), session.EndpointURL,
			headersJSON, session.Transport, session.StartedAt, session.ResumedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Find returns the stored session, or domain.ErrSessionNotFound when tracking
// has never been started or was stopped.
func (r *SessionRepository) Find(ctx context.Context) (*domain.TrackingSession, error) {
	query, args, err := psql.Select("id", "device_id", "report_interval", "endpoint_url",
		"http_headers", "transport", "started_at", "resumed_at").
		From(sessionTable).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var row sessionRow
	if err := r.conn.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return r.convertRowToSession(row)
}

// MarkResumed records the time tracking was resumed after a restart.
func (r *SessionRepository) MarkResumed(ctx context.Context, sessionID string, resumedAt time.Time) error {
	query, args, err := psql.Update(sessionTable).
		Set("resumed_at", resumedAt).
		Where(sq.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark session as resumed: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (r *SessionRepository) Clear(ctx context.Context) error {
	query, args, err := psql.Delete(sessionTable).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	return nil
}

func (r *SessionRepository) convertRowToSession(row sessionRow) (*domain.TrackingSession, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session ID: %w", err)
	}

	var headers map[string]string
	if row.HTTPHeaders != nil && *row.HTTPHeaders != "" {
		if err := json.Unmarshal([]byte(*row.HTTPHeaders), &headers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal headers: %w", err)
		}
	}

	return &domain.TrackingSession{
		ID:             id,
		DeviceID:       row.DeviceID,
		ReportInterval: time.Duration(row.ReportInterval),
		EndpointURL:    row.EndpointURL,
		HTTPHeaders:    headers,
		Transport:      domain.Transport(row.Transport),
		StartedAt:      row.StartedAt,
		ResumedAt:      row.ResumedAt,
	}, nil
}
