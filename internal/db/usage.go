package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordUsage appends a generation call to the usage log.
func (db *DB) RecordUsage(ctx context.Context, rec UsageRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO api_usage (user_id, ip_address, generation_type) VALUES ($1, $2, $3)`,
		rec.UserID, rec.IPAddress, rec.GenerationType,
	)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// CountUsageSince counts calls by the user, or by ip when userID is nil, since t.
func (db *DB) CountUsageSince(ctx context.Context, userID *uuid.UUID, ip string, since time.Time) (int, error) {
	var (
		n   int
		err error
	)
	if userID != nil {
		err = db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM api_usage WHERE user_id = $1 AND created_at >= $2`, *userID, since,
		).Scan(&n)
	} else {
		err = db.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM api_usage WHERE user_id IS NULL AND ip_address = $1 AND created_at >= $2`, ip, since,
		).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count usage: %w", err)
	}
	return n, nil
}
