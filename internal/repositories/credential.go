package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/db"
)

const credentialColumns = `id, credential_id, content_id, content_hash, txn_id, issuer, owner, title, description,
       category, file_name, file_size, file_type, status, verified, ledger_anchored, metadata, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

type credential struct {
	conn *db.Storage
}

// NewCredential returns a new credential repository backed by postgres
func NewCredential(conn *db.Storage) ports.CredentialRepository {
	return &credential{conn: conn}
}

func (r *credential) Save(ctx context.Context, c *domain.Credential) error {
	metadata := pgtype.JSONB{}
	if err := metadata.Set(c.Metadata); err != nil {
		return fmt.Errorf("cannot set credential metadata: %w", err)
	}

	const sql = `INSERT INTO credentials (id, credential_id, content_id, content_hash, txn_id, issuer, owner, title, description,
                         category, file_name, file_size, file_type, status, verified, ledger_anchored, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO
		UPDATE SET credential_id=$2, txn_id=$5, title=$8, description=$9, category=$10, status=$14, verified=$15,
		           ledger_anchored=$16, metadata=$17, updated_at=$19`
	_, err := r.conn.Pgx.Exec(ctx, sql,
		c.ID,
		c.CredentialID,
		c.ContentID,
		c.ContentHash,
		c.TxnID,
		common.NormalizeAccount(c.Issuer),
		common.NormalizeAccount(c.Owner),
		c.Title,
		c.Description,
		string(c.Category),
		c.File.Name,
		c.File.Size,
		c.File.Type,
		string(c.Status),
		c.Verified,
		c.LedgerAnchored,
		metadata,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if constraint, ok := db.IsDuplicateError(err); ok {
		return fmt.Errorf("%w: %s", ErrCredentialDuplicated, constraint)
	}
	return err
}

func (r *credential) GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	return r.getOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id)
}

func (r *credential) GetByCredentialID(ctx context.Context, credentialID int64) (*domain.Credential, error) {
	return r.getOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE credential_id = $1`, credentialID)
}

func (r *credential) GetByHash(ctx context.Context, contentHash string) (*domain.Credential, error) {
	return r.getOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE content_hash = $1`, contentHash)
}

func (r *credential) GetByContentID(ctx context.Context, contentID string) (*domain.Credential, error) {
	return r.getOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE content_id = $1`, contentID)
}

func (r *credential) GetByTxnID(ctx context.Context, txnID string) (*domain.Credential, error) {
	return r.getOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE txn_id = $1 ORDER BY created_at LIMIT 1`, txnID)
}

func (r *credential) ListByOwner(ctx context.Context, owner string) ([]*domain.Credential, error) {
	return r.getMany(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE owner = $1 ORDER BY created_at DESC`,
		common.NormalizeAccount(owner))
}

func (r *credential) CountByOwner(ctx context.Context, owner string, filter ports.CredentialFilter) (int, error) {
	sql := `SELECT count(*) FROM credentials WHERE owner = $1`
	args := []interface{}{common.NormalizeAccount(owner)}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		sql += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		sql += fmt.Sprintf(" AND verified = $%d", len(args))
	}

	var count int
	if err := r.conn.Pgx.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *credential) MarkRevoked(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	return r.getOne(ctx, `UPDATE credentials SET status = $2, updated_at = $3 WHERE id = $1 RETURNING `+credentialColumns,
		id, string(domain.CredentialStatusRevoked), time.Now().UTC())
}

func (r *credential) UpdateLedgerAnchor(ctx context.Context, id uuid.UUID, credentialID *int64, txnID string) error {
	const sql = `UPDATE credentials SET credential_id = $2, txn_id = $3, ledger_anchored = true, updated_at = $4
		WHERE id = $1 AND ledger_anchored = false`
	tag, err := r.conn.Pgx.Exec(ctx, sql, id, credentialID, txnID, time.Now().UTC())
	if constraint, ok := db.IsDuplicateError(err); ok {
		return fmt.Errorf("%w: %s", ErrCredentialDuplicated, constraint)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.conn.Pgx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM credentials WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrCredentialAlreadyAnchored
		}
		return ErrCredentialNotFound
	}
	return nil
}

func (r *credential) ListUnanchored(ctx context.Context, createdBefore time.Time, limit int) ([]*domain.Credential, error) {
	return r.getMany(ctx, `SELECT `+credentialColumns+` FROM credentials
		WHERE ledger_anchored = false AND status = $1 AND created_at < $2
		ORDER BY created_at LIMIT $3`, string(domain.CredentialStatusActive), createdBefore, limit)
}

func (r *credential) getOne(ctx context.Context, sql string, args ...interface{}) (*domain.Credential, error) {
	c, err := scanCredential(r.conn.Pgx.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	return c, err
}

func (r *credential) getMany(ctx context.Context, sql string, args ...interface{}) ([]*domain.Credential, error) {
	rows, err := r.conn.Pgx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	credentials := make([]*domain.Credential, 0)
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, c)
	}
	return credentials, rows.Err()
}

func scanCredential(row scanner) (*domain.Credential, error) {
	var (
		c        domain.Credential
		category string
		status   string
		metadata pgtype.JSONB
	)
	if err := row.Scan(
		&c.ID,
		&c.CredentialID,
		&c.ContentID,
		&c.ContentHash,
		&c.TxnID,
		&c.Issuer,
		&c.Owner,
		&c.Title,
		&c.Description,
		&category,
		&c.File.Name,
		&c.File.Size,
		&c.File.Type,
		&status,
		&c.Verified,
		&c.LedgerAnchored,
		&metadata,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Category = domain.CredentialCategory(category)
	c.Status = domain.CredentialStatus(status)
	if metadata.Status == pgtype.Present {
		if err := json.Unmarshal(metadata.Bytes, &c.Metadata); err != nil {
			return nil, fmt.Errorf("parsing credential metadata: %w", err)
		}
	}
	return &c, nil
}
