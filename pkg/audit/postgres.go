package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// psq is the PostgreSQL statement builder with dollar placeholders.
var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// auditColumns lists columns returned by SELECT queries.
var auditColumns = []string{
	"id", "timestamp", "duration_ms", "request_id", "session_id",
	"tool_name", "parameters", "success", "error_message",
}

const defaultQueryLimit = 100

// PostgresStore implements Logger backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Log inserts the event.
func (s *PostgresStore) Log(ctx context.Context, event Event) error {
	params, err := json.Marshal(event.Parameters)
	if err != nil {
		params = []byte("{}")
	}

	query, args, err := psq.Insert("audit_logs").
		Columns(auditColumns...).
		Values(
			event.ID,
			event.Timestamp,
			event.DurationMS,
			event.RequestID,
			event.SessionID,
			event.ToolName,
			params,
			event.Success,
			event.ErrorMessage,
		).ToSql()
	if err != nil {
		return fmt.Errorf("building audit insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// QueryFilter defines criteria for querying audit events.
type QueryFilter struct {
	StartTime *time.Time
	EndTime   *time.Time
	SessionID string
	ToolName  string
	Success   *bool
	Limit     int
}

// Query retrieves events matching the filter, newest first.
func (s *PostgresStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	qb := psq.Select(auditColumns...).From("audit_logs")
	if filter.StartTime != nil {
		qb = qb.Where(sq.GtOrEq{"timestamp": *filter.StartTime})
	}
	if filter.EndTime != nil {
		qb = qb.Where(sq.LtOrEq{"timestamp": *filter.EndTime})
	}
	if filter.SessionID != "" {
		qb = qb.Where(sq.Eq{"session_id": filter.SessionID})
	}
	if filter.ToolName != "" {
		qb = qb.Where(sq.Eq{"tool_name": filter.ToolName})
	}
	if filter.Success != nil {
		qb = qb.Where(sq.Eq{"success": *filter.Success})
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	qb = qb.OrderBy("timestamp DESC").Limit(uint64(limit))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building audit query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit logs: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event  Event
			params []byte
		)
		if err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.DurationMS,
			&event.RequestID,
			&event.SessionID,
			&event.ToolName,
			&params,
			&event.Success,
			&event.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		if len(params) > 0 {
			_ = json.Unmarshal(params, &event.Parameters)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// Close is a no-op; the caller owns the database handle.
func (s *PostgresStore) Close() error { return nil }

var _ Logger = (*PostgresStore)(nil)
