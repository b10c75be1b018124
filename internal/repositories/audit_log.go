package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/db"
)

type dbLogEntry struct {
	ID            uuid.UUID      `db:"id"`
	EventType     string         `db:"event_type"`
	Account       string         `db:"account"`
	CredentialRef uuid.NullUUID  `db:"credential_ref"`
	ContentID     string         `db:"content_id"`
	ContentHash   string         `db:"content_hash"`
	TxnID         string         `db:"txn_id"`
	Details       types.JSONText `db:"details"`
	Success       bool           `db:"success"`
	Error         string         `db:"error"`
	CreatedAt     time.Time      `db:"created_at"`
}

type auditLog struct {
	conn *db.Sqlx
}

// NewAuditLog returns the event log repository. It uses sqlx as it is an append only table
// read with dynamic filters.
func NewAuditLog(conn *db.Sqlx) ports.AuditLogRepository {
	return &auditLog{conn: conn}
}

func (r *auditLog) Save(ctx context.Context, entry *domain.LogEntry) error {
	row, err := toDBLogEntry(entry)
	if err != nil {
		return err
	}
	const sql = `INSERT INTO audit_logs (id, event_type, account, credential_ref, content_id, content_hash, txn_id, details, success, error, created_at)
		VALUES (:id, :event_type, :account, :credential_ref, :content_id, :content_hash, :txn_id, :details, :success, :error, :created_at)`
	_, err = r.conn.DB.NamedExecContext(ctx, sql, row)
	return err
}

func (r *auditLog) List(ctx context.Context, filter ports.LogFilter) ([]*domain.LogEntry, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Account != "" {
		args = append(args, common.NormalizeAccount(filter.Account))
		where = append(where, fmt.Sprintf("account = $%d", len(args)))
	}
	if filter.EventType != nil {
		args = append(args, string(*filter.EventType))
		where = append(where, fmt.Sprintf("event_type = $%d", len(args)))
	}

	sql := `SELECT id, event_type, account, credential_ref, content_id, content_hash, txn_id, details, success, error, created_at FROM audit_logs`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	limit, offset := pageBounds(filter)
	args = append(args, limit, offset)
	sql += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []dbLogEntry
	if err := r.conn.DB.SelectContext(ctx, &rows, sql, args...); err != nil {
		return nil, err
	}

	entries := make([]*domain.LogEntry, 0, len(rows))
	for i := range rows {
		entry, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func pageBounds(filter ports.LogFilter) (limit, offset int) {
	limit = filter.Limit
	if limit <= 0 {
		limit = ports.DefaultLogLimit
	}
	if limit > ports.MaxLogLimit {
		limit = ports.MaxLogLimit
	}
	offset = filter.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func toDBLogEntry(entry *domain.LogEntry) (*dbLogEntry, error) {
	row := &dbLogEntry{
		ID:          entry.ID,
		EventType:   string(entry.EventType),
		Account:     common.NormalizeAccount(entry.Account),
		ContentID:   entry.ContentID,
		ContentHash: entry.ContentHash,
		TxnID:       entry.TxnID,
		Success:     entry.Success,
		Error:       entry.Error,
		CreatedAt:   entry.CreatedAt,
	}
	if entry.CredentialRef != nil {
		row.CredentialRef = uuid.NullUUID{UUID: *entry.CredentialRef, Valid: true}
	}
	if entry.Details != nil {
		details, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("cannot marshal log entry details: %w", err)
		}
		row.Details = details
	}
	return row, nil
}

func (e *dbLogEntry) toDomain() (*domain.LogEntry, error) {
	entry := &domain.LogEntry{
		ID:          e.ID,
		EventType:   domain.EventType(e.EventType),
		Account:     e.Account,
		ContentID:   e.ContentID,
		ContentHash: e.ContentHash,
		TxnID:       e.TxnID,
		Success:     e.Success,
		Error:       e.Error,
		CreatedAt:   e.CreatedAt,
	}
	if e.CredentialRef.Valid {
		entry.CredentialRef = common.ToPointer(e.CredentialRef.UUID)
	}
	if len(e.Details) > 0 {
		if err := e.Details.Unmarshal(&entry.Details); err != nil {
			return nil, fmt.Errorf("parsing log entry details: %w", err)
		}
	}
	return entry, nil
}
