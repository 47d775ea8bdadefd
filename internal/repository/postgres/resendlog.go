package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/beatx/beatx-server/pkg/database"
)

// ResendLogRepository enforces the verification-email resend cooldown on top
// of the email_resend_log table.
type ResendLogRepository struct {
	pool database.DBTX
}

// NewResendLogRepository creates a PostgreSQL-backed resend log.
func NewResendLogRepository(pool database.DBTX) *ResendLogRepository {
	return &ResendLogRepository{pool: pool}
}

// TryReserve claims the next send slot for email in a single conditional
// upsert. The insert wins for first-time senders; the conditional update wins
// only when the previous send is outside the cooldown window. Zero affected
// rows means the window is still open, in which case the remaining duration
// is read back separately.
func (r *ResendLogRepository) TryReserve(ctx context.Context, email string, now time.Time, window time.Duration) (time.Duration, bool, error) {
	const upsert = `
		INSERT INTO email_resend_log (email, last_sent_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET last_sent_at = EXCLUDED.last_sent_at
		WHERE email_resend_log.last_sent_at <= $3`

	windowStart := now.Add(-window)
	tag, err := r.pool.Exec(ctx, upsert, email, now, windowStart)
	if err != nil {
		return 0, false, fmt.Errorf("reserve resend slot: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return 0, true, nil
	}

	const read = `SELECT last_sent_at FROM email_resend_log WHERE email = $1`

	var lastSentAt time.Time
	err = r.pool.QueryRow(ctx, read, email).Scan(&lastSentAt)
	if err != nil {
		// The row vanished between the upsert and the read; the slot is
		// effectively free but this attempt already lost it. Report the
		// full window rather than claiming a send that did not happen.
		if errors.Is(err, pgx.ErrNoRows) {
			return window, false, nil
		}
		return 0, false, fmt.Errorf("read resend log: %w", err)
	}

	remaining := window - now.Sub(lastSentAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, false, nil
}
