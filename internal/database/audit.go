// Package database stores the audit log in PostgreSQL.
//
// It is only used when DATABASE_URL is set; otherwise the service keeps its
// audit log in memory. Sessions themselves are never written here.
package database

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/dataquality/internal/config"
	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Connect opens a pool sized from cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// DatabaseName returns the database name from a connection URL, for logging.
func DatabaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS audit_log (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	action      TEXT NOT NULL,
	file_name   TEXT,
	column_name TEXT,
	field_type  TEXT,
	detail      TEXT,
	ip_address  INET,
	user_agent  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_log_session_idx ON audit_log (session_id, created_at DESC);
CREATE INDEX IF NOT EXISTS audit_log_created_idx ON audit_log (created_at);
`

// AuditStore is a core.AuditStore backed by the audit_log table.
type AuditStore struct {
	db DBTX
}

var _ core.AuditStore = (*AuditStore)(nil)

// NewAuditStore wraps db. Call EnsureSchema once before use.
func NewAuditStore(db DBTX) *AuditStore {
	return &AuditStore{db: db}
}

// EnsureSchema creates the audit table and indexes if they are missing.
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Record inserts one entry.
func (s *AuditStore) Record(ctx context.Context, e core.AuditEntry) error {
	id, err := toPgUUID(e.ID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO audit_log
			(id, session_id, action, file_name, column_name, field_type, detail, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id,
		e.SessionID,
		string(e.Action),
		toPgText(e.FileName),
		toPgText(e.Column),
		toPgText(e.FieldType),
		toPgText(e.Detail),
		parseIP(e.IPAddress),
		toPgText(e.UserAgent),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns the newest entries for a session first. limit <= 0 means all.
func (s *AuditStore) List(ctx context.Context, sessionID string, limit int) ([]core.AuditEntry, error) {
	query := `SELECT id, session_id, action, file_name, column_name, field_type, detail,
		ip_address, user_agent, created_at
		FROM audit_log WHERE session_id = $1 ORDER BY created_at DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]core.AuditEntry, 0)
	for rows.Next() {
		entry, err := scanAuditRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return entries, nil
}

// Purge deletes entries created before cutoff.
func (s *AuditStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM audit_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAuditRow(rows pgx.Rows) (core.AuditEntry, error) {
	var (
		id                                      pgtype.UUID
		entry                                   core.AuditEntry
		action                                  string
		fileName, column, fieldType, detail, ua pgtype.Text
		ip                                      *netip.Addr
	)

	if err := rows.Scan(&id, &entry.SessionID, &action, &fileName, &column, &fieldType,
		&detail, &ip, &ua, &entry.CreatedAt); err != nil {
		return core.AuditEntry{}, fmt.Errorf("scan audit row: %w", err)
	}

	entry.ID = fromPgUUID(id)
	entry.Action = core.AuditAction(action)
	entry.FileName = fileName.String
	entry.Column = column.String
	entry.FieldType = fieldType.String
	entry.Detail = detail.String
	entry.UserAgent = ua.String
	if ip != nil {
		entry.IPAddress = ip.String()
	}
	return entry, nil
}

// toPgText maps "" to SQL NULL.
func toPgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func toPgUUID(s string) (pgtype.UUID, error) {
	var u pgtype.UUID
	if err := u.Scan(s); err != nil {
		return u, fmt.Errorf("invalid audit id %q: %w", s, err)
	}
	return u, nil
}

func fromPgUUID(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	b := u.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// parseIP strips a port if present. Unparseable addresses become NULL.
func parseIP(s string) *netip.Addr {
	if s == "" {
		return nil
	}
	host := s
	if h, _, err := net.SplitHostPort(s); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return nil
	}
	return &addr
}
