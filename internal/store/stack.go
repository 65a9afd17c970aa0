package store

import (
	"context"
	"fmt"
	"time"
)

// StackItems returns a user's stacked file paths, newest first.
func (s *Store) StackItems(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM `+s.table("stack")+` WHERE user_id = ? ORDER BY added_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stack: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan stack item: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// SaveStack replaces a user's stack with paths, given newest first.
func (s *Store) SaveStack(ctx context.Context, userID int64, paths []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stack tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table("stack")+` WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear stack: %w", err)
	}
	// Oldest rows get the earliest timestamps so ordering survives reloads.
	base := time.Now().UTC()
	for i, path := range paths {
		addedAt := base.Add(-time.Duration(i) * time.Second)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+s.table("stack")+` (user_id, path, added_at) VALUES (?, ?, ?)`,
			userID, path, formatDate(addedAt),
		); err != nil {
			return fmt.Errorf("insert stack item: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stack: %w", err)
	}
	return nil
}
