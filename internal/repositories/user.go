package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/db"
)

type user struct {
	conn *db.Storage
}

// NewUser returns a new user repository backed by postgres
func NewUser(conn *db.Storage) ports.UserRepository {
	return &user{conn: conn}
}

func (r *user) Save(ctx context.Context, u *domain.User) error {
	const sql = `INSERT INTO users (account, did, did_id, metadata_ref, did_txn_id, name, email, organization, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (account) DO
		UPDATE SET did=$2, did_id=$3, metadata_ref=$4, did_txn_id=$5, name=$6, email=$7, organization=$8, role=$9, updated_at=$11`
	_, err := r.conn.Pgx.Exec(ctx, sql,
		common.NormalizeAccount(u.Account),
		u.DID,
		u.DIDID,
		u.MetadataRef,
		u.DIDTxnID,
		u.Profile.Name,
		u.Profile.Email,
		u.Profile.Organization,
		string(u.Role),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *user) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	const sql = `SELECT account, did, did_id, metadata_ref, did_txn_id, name, email, organization, role, created_at, updated_at
		FROM users WHERE account = $1`
	var (
		u    domain.User
		role string
	)
	err := r.conn.Pgx.QueryRow(ctx, sql, common.NormalizeAccount(account)).Scan(
		&u.Account,
		&u.DID,
		&u.DIDID,
		&u.MetadataRef,
		&u.DIDTxnID,
		&u.Profile.Name,
		&u.Profile.Email,
		&u.Profile.Organization,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
