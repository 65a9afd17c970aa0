package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const contentColumns = "id, contenttype, slug, title, status, datecreated, datechanged, datepublish, ownerid"

// InsertContent stores a new record and its extra fields, returning the id.
// Zero timestamps default to now.
func (s *Store) InsertContent(ctx context.Context, c Content) (int64, error) {
	now := time.Now().UTC()
	if c.DateCreated.IsZero() {
		c.DateCreated = now
	}
	if c.DateChanged.IsZero() {
		c.DateChanged = c.DateCreated
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin content tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO `+s.table("content")+` (contenttype, slug, title, status, datecreated, datechanged, datepublish, ownerid)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ContentType, c.Slug, c.Title, c.Status,
		formatDate(c.DateCreated), formatDate(c.DateChanged), nullableDate(c.DatePublish), nullableID(c.OwnerID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert content: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	for name, value := range c.Fields {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+s.table("content_field")+` (content_id, name, value) VALUES (?, ?, ?)`,
			id, name, value,
		); err != nil {
			return 0, fmt.Errorf("insert content field %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit content: %w", err)
	}
	return id, nil
}

// ContentByID fetches a single record, or nil when absent.
func (s *Store) ContentByID(ctx context.Context, id int64) (*Content, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM `+s.table("content")+` WHERE id = ?`, id)
	c, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return c, nil
}

// LatestContent returns the most recently changed records of a content type.
func (s *Store) LatestContent(ctx context.Context, contentType string, limit int) ([]Content, error) {
	return s.queryContent(ctx,
		`SELECT `+contentColumns+` FROM `+s.table("content")+`
         WHERE contenttype = ? ORDER BY datechanged DESC, id DESC LIMIT ?`,
		contentType, normalizeLimit(limit, 5),
	)
}

// PublishedContent returns the published records of a content type, newest
// publication first.
func (s *Store) PublishedContent(ctx context.Context, contentType string) ([]Content, error) {
	return s.queryContent(ctx,
		`SELECT `+contentColumns+` FROM `+s.table("content")+`
         WHERE contenttype = ? AND status = ?
         ORDER BY datepublish DESC, id DESC`,
		contentType, StatusPublished,
	)
}

// SearchContent matches term against titles and slugs, case-insensitively.
func (s *Store) SearchContent(ctx context.Context, term string, limit int) ([]Content, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return s.queryContent(ctx,
		`SELECT `+contentColumns+` FROM `+s.table("content")+`
         WHERE lower(title) LIKE ? ESCAPE '\' OR lower(slug) LIKE ? ESCAPE '\'
         ORDER BY datechanged DESC, id DESC LIMIT ?`,
		pattern, pattern, normalizeLimit(limit, 10),
	)
}

// SlugTaken reports whether another record of contentType already uses slug
// in field. The record with id excludeID is ignored.
func (s *Store) SlugTaken(ctx context.Context, contentType, field, slug string, excludeID int64) (bool, error) {
	var (
		query string
		args  []any
	)
	if field == "" || field == "slug" {
		query = `SELECT COUNT(1) FROM ` + s.table("content") + ` WHERE contenttype = ? AND slug = ? AND id != ?`
		args = []any{contentType, slug, excludeID}
	} else {
		query = `SELECT COUNT(1) FROM ` + s.table("content_field") + ` f
                 JOIN ` + s.table("content") + ` c ON c.id = f.content_id
                 WHERE c.contenttype = ? AND f.name = ? AND f.value = ? AND c.id != ?`
		args = []any{contentType, field, slug, excludeID}
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return count > 0, nil
}

func (s *Store) queryContent(ctx context.Context, query string, args ...any) ([]Content, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	var out []Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanContent(scanner interface{ Scan(dest ...any) error }) (*Content, error) {
	var (
		c         Content
		created   sql.NullString
		changed   sql.NullString
		published sql.NullString
		ownerID   sql.NullInt64
	)
	if err := scanner.Scan(&c.ID, &c.ContentType, &c.Slug, &c.Title, &c.Status, &created, &changed, &published, &ownerID); err != nil {
		return nil, err
	}
	c.DateCreated = parseDate(created)
	c.DateChanged = parseDate(changed)
	c.DatePublish = parseDate(published)
	c.OwnerID = ownerID.Int64
	return &c, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
