package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/beatx/beatx-server/pkg/database"
)

// RevocationRepository persists the revoked-token ledger in the
// token_blacklist table.
type RevocationRepository struct {
	pool database.DBTX
}

// NewRevocationRepository creates a PostgreSQL-backed revocation ledger.
func NewRevocationRepository(pool database.DBTX) *RevocationRepository {
	return &RevocationRepository{pool: pool}
}

// Insert records a revoked token. Revoking the same token twice is a no-op.
func (r *RevocationRepository) Insert(ctx context.Context, token string, expiresAt time.Time) error {
	const query = `
		INSERT INTO token_blacklist (token, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, token, expiresAt); err != nil {
		return fmt.Errorf("insert revocation: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token is on the ledger.
func (r *RevocationRepository) IsRevoked(ctx context.Context, token string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token = $1)`

	var revoked bool
	if err := r.pool.QueryRow(ctx, query, token).Scan(&revoked); err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// PurgeExpired removes ledger entries whose tokens have expired on their own.
func (r *RevocationRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM token_blacklist WHERE expires_at <= $1`

	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("purge revocations: %w", err)
	}
	return tag.RowsAffected(), nil
}
