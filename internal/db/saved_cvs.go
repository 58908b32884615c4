package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrCVNotFound is returned when a saved CV does not exist or belongs to another user.
var ErrCVNotFound = errors.New("saved CV not found")

// SaveCV inserts a new saved CV when cv.ID is nil, or updates the caller's
// existing one. The stored row is returned.
func (db *DB) SaveCV(ctx context.Context, cv *SavedCV) (*SavedCV, error) {
	if cv == nil || len(cv.CVData) == 0 {
		return nil, errors.New("cv data is required")
	}
	theme := nullableJSON(cv.ThemeData)

	var row pgx.Row
	if cv.ID == uuid.Nil {
		row = db.pool.QueryRow(ctx,
			`INSERT INTO saved_cvs (user_id, title, cv_data, theme_data)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, user_id, title, cv_data, theme_data, created_at, updated_at`,
			cv.UserID, cv.Title, []byte(cv.CVData), theme,
		)
	} else {
		row = db.pool.QueryRow(ctx,
			`UPDATE saved_cvs SET title = $3, cv_data = $4, theme_data = $5, updated_at = NOW()
			 WHERE id = $1 AND user_id = $2
			 RETURNING id, user_id, title, cv_data, theme_data, created_at, updated_at`,
			cv.ID, cv.UserID, cv.Title, []byte(cv.CVData), theme,
		)
	}
	return scanSavedCV(row)
}

// GetCV returns one of the user's saved CVs.
func (db *DB) GetCV(ctx context.Context, userID, id uuid.UUID) (*SavedCV, error) {
	return scanSavedCV(db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, cv_data, theme_data, created_at, updated_at
		 FROM saved_cvs WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

// ListCVs returns the user's saved CVs, most recently updated first.
func (db *DB) ListCVs(ctx context.Context, userID uuid.UUID) ([]SavedCVSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, title, updated_at FROM saved_cvs WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved CVs: %w", err)
	}
	defer rows.Close()

	list := []SavedCVSummary{}
	for rows.Next() {
		var s SavedCVSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved CV: %w", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list saved CVs: %w", err)
	}
	return list, nil
}

// DeleteCV removes one of the user's saved CVs.
func (db *DB) DeleteCV(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM saved_cvs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved CV: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCVNotFound
	}
	return nil
}

func scanSavedCV(row pgx.Row) (*SavedCV, error) {
	var (
		cv    SavedCV
		data  []byte
		theme []byte
	)
	err := row.Scan(&cv.ID, &cv.UserID, &cv.Title, &data, &theme, &cv.CreatedAt, &cv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCVNotFound
		}
		return nil, fmt.Errorf("failed to read saved CV: %w", err)
	}
	cv.CVData = json.RawMessage(data)
	if len(theme) > 0 {
		cv.ThemeData = json.RawMessage(theme)
	}
	return &cv, nil
}

// nullableJSON maps an empty or null document to SQL NULL.
func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return []byte(raw)
}
