package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/logging"
)

// AppendSystemLog records an entry in the system activity log.
func (s *Store) AppendSystemLog(ctx context.Context, entry SystemEntry) (int64, error) {
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	if entry.Level == "" {
		entry.Level = "info"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table("log_system")+` (level, date, message, ownerid, requesturi, route, ip, context, source)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Level, formatDate(entry.Date), entry.Message, nullableID(entry.OwnerID),
		entry.RequestURI, entry.Route, entry.IP, entry.Context, entry.Source,
	)
	if err != nil {
		return 0, fmt.Errorf("insert system log: %w", err)
	}
	return res.LastInsertId()
}

// RecordActivity persists an entry produced by the logging activity handler.
func (s *Store) RecordActivity(ctx context.Context, entry logging.ActivityEntry) error {
	_, err := s.AppendSystemLog(ctx, SystemEntry{
		Level:      entry.Level,
		Date:       entry.Time,
		Message:    entry.Message,
		OwnerID:    entry.OwnerID,
		RequestURI: entry.RequestURI,
		Route:      entry.Route,
		IP:         entry.IP,
		Context:    entry.Context,
		Source:     entry.Source,
	})
	return err
}

// SystemActivity returns the newest system log entries matching q.
func (s *Store) SystemActivity(ctx context.Context, q SystemQuery) ([]SystemEntry, error) {
	var (
		where []string
		args  []any
	)
	if q.Context != "" {
		where = append(where, "l.context = ?")
		args = append(args, q.Context)
	}
	if q.Level != "" {
		where = append(where, "l.level = ?")
		args = append(args, q.Level)
	}
	query := `SELECT l.id, l.level, l.date, l.message, l.ownerid, COALESCE(u.displayname, ''),
                     l.requesturi, l.route, l.ip, l.context, l.source
              FROM ` + s.table("log_system") + ` l
              LEFT JOIN ` + s.table("users") + ` u ON u.id = l.ownerid`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.date DESC, l.id DESC LIMIT ?"
	args = append(args, normalizeLimit(q.Limit, 8))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query system log: %w", err)
	}
	defer rows.Close()

	var out []SystemEntry
	for rows.Next() {
		var (
			entry   SystemEntry
			date    sql.NullString
			ownerID sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &entry.Level, &date, &entry.Message, &ownerID, &entry.OwnerName,
			&entry.RequestURI, &entry.Route, &entry.IP, &entry.Context, &entry.Source); err != nil {
			return nil, fmt.Errorf("scan system log: %w", err)
		}
		entry.Date = parseDate(date)
		entry.OwnerID = ownerID.Int64
		out = append(out, entry)
	}
	return out, rows.Err()
}
