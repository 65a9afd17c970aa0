package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const userColumns = "id, username, displayname, email, roles, enabled, lastseen"

// UpsertUser inserts or updates a user by username and returns its id.
func (s *Store) UpsertUser(ctx context.Context, u User) (int64, error) {
	if u.Username == "" {
		return 0, errors.New("upsert user: username is required")
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	roles, err := json.Marshal(nonNilRoles(u.Roles))
	if err != nil {
		return 0, fmt.Errorf("marshal roles: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+s.table("users")+` (username, displayname, email, roles, enabled)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(username) DO UPDATE SET
             displayname = excluded.displayname,
             email = excluded.email,
             roles = excluded.roles,
             enabled = excluded.enabled`,
		u.Username, u.DisplayName, u.Email, string(roles), u.Enabled,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert user: %w", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM `+s.table("users")+` WHERE username = ?`, u.Username).Scan(&id); err != nil {
		return 0, fmt.Errorf("read user id: %w", err)
	}
	return id, nil
}

// UserByName fetches a user, or nil when absent.
func (s *Store) UserByName(ctx context.Context, username string) (*User, error) {
	return s.queryUser(ctx, `SELECT `+userColumns+` FROM `+s.table("users")+` WHERE username = ?`, username)
}

// UserByID fetches a user, or nil when absent.
func (s *Store) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.queryUser(ctx, `SELECT `+userColumns+` FROM `+s.table("users")+` WHERE id = ?`, id)
}

// TouchUser updates the last-seen timestamp.
func (s *Store) TouchUser(ctx context.Context, id int64, at time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE `+s.table("users")+` SET lastseen = ? WHERE id = ?`, formatDate(at), id,
	); err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	return nil
}

func (s *Store) queryUser(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u        User
		rolesRaw string
		lastSeen sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &rolesRaw, &u.Enabled, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := json.Unmarshal([]byte(rolesRaw), &u.Roles); err != nil {
		return nil, fmt.Errorf("decode roles for %s: %w", u.Username, err)
	}
	u.LastSeen = parseDate(lastSeen)
	return &u, nil
}

func nonNilRoles(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}
