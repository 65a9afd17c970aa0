package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// AppendChange records a content mutation in the changelog.
func (s *Store) AppendChange(ctx context.Context, entry ChangeEntry) (int64, error) {
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table("log_change")+` (date, ownerid, title, contenttype, contentid, mutation_type, diff, comment)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		formatDate(entry.Date), nullableID(entry.OwnerID), entry.Title, entry.ContentType,
		entry.ContentID, entry.MutationType, entry.Diff, entry.Comment,
	)
	if err != nil {
		return 0, fmt.Errorf("insert change: %w", err)
	}
	return res.LastInsertId()
}

// ChangelogByContentType returns the newest changelog entries. An empty
// contentType spans all types; a positive ContentID narrows to one record.
func (s *Store) ChangelogByContentType(ctx context.Context, contentType string, opts ChangelogOptions) ([]ChangeEntry, error) {
	var (
		where []string
		args  []any
	)
	if contentType != "" {
		where = append(where, "l.contenttype = ?")
		args = append(args, contentType)
	}
	if opts.ContentID > 0 {
		where = append(where, "l.contentid = ?")
		args = append(args, opts.ContentID)
	}
	return s.queryChanges(ctx, where, args, normalizeLimit(opts.Limit, 5))
}

// ChangeActivity returns the newest changelog entries across all types.
func (s *Store) ChangeActivity(ctx context.Context, limit int) ([]ChangeEntry, error) {
	return s.queryChanges(ctx, nil, nil, normalizeLimit(limit, 8))
}

func (s *Store) queryChanges(ctx context.Context, where []string, args []any, limit int) ([]ChangeEntry, error) {
	query := `SELECT l.id, l.date, l.ownerid, COALESCE(u.displayname, ''), l.title, l.contenttype,
                     l.contentid, l.mutation_type, l.diff, l.comment
              FROM ` + s.table("log_change") + ` l
              LEFT JOIN ` + s.table("users") + ` u ON u.id = l.ownerid`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.date DESC, l.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query changelog: %w", err)
	}
	defer rows.Close()

	var out []ChangeEntry
	for rows.Next() {
		var (
			entry   ChangeEntry
			date    sql.NullString
			ownerID sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &date, &ownerID, &entry.OwnerName, &entry.Title, &entry.ContentType,
			&entry.ContentID, &entry.MutationType, &entry.Diff, &entry.Comment); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		entry.Date = parseDate(date)
		entry.OwnerID = ownerID.Int64
		out = append(out, entry)
	}
	return out, rows.Err()
}
