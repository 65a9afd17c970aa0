// Package session issues and validates signed back-end sessions.
//
// Tokens are HS256 JWTs carrying the username and a random session id. The
// middleware accepts them from the session cookie or an Authorization bearer
// header and loads the enabled user into the request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"backoffice/internal/config"
	"backoffice/internal/i18n"
	"backoffice/internal/logging"
	"backoffice/internal/services"
	"backoffice/internal/store"
)

// RootRole may do everything.
const RootRole = "root"

// Rejection reasons passed to the rejection hook.
const (
	ReasonMissing  = "missing"
	ReasonInvalid  = "invalid"
	ReasonDisabled = "disabled"
)

// ErrInvalidSession covers every way a token can fail validation.
var ErrInvalidSession = fmt.Errorf("%w: invalid session", services.ErrForbidden)

var errDisabled = fmt.Errorf("%w: user disabled", ErrInvalidSession)

// Claims are the JWT claims of a session token.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Users loads accounts; store.Store satisfies it.
type Users interface {
	UserByName(ctx context.Context, username string) (*store.User, error)
	TouchUser(ctx context.Context, id int64, at time.Time) error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRejectionHook registers fn to be called with the reason for every
// rejected request.
func WithRejectionHook(fn func(reason string)) Option {
	return func(m *Manager) {
		m.onReject = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager issues tokens and guards handlers.
type Manager struct {
	key         []byte
	cookieName  string
	ttl         time.Duration
	permissions map[string][]string
	fallback    string
	users       Users
	logger      *slog.Logger
	onReject    func(reason string)
	now         func() time.Time
}

// NewManager constructs a Manager from cfg.
func NewManager(cfg *config.Config, users Users, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		key:         []byte(cfg.Session.Key),
		cookieName:  cfg.Session.CookieName,
		ttl:         time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		permissions: cfg.Permissions,
		fallback:    cfg.Site.Locale,
		users:       users,
		logger:      logging.NewComponentLogger(logger, "session"),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Issue signs a new session for user and records the login.
func (m *Manager) Issue(ctx context.Context, user *store.User) (string, time.Time, error) {
	if user == nil || !user.Enabled {
		return "", time.Time{}, services.Wrap(services.ErrValidation, "session", "issue", "user is missing or disabled", nil)
	}
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		SessionID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}

	ctx = services.WithUser(ctx, user.ID, user.Username)
	m.logger.InfoContext(ctx, "Logged in: "+displayName(user),
		logging.Event("authentication"),
		logging.String("session_id", claims.SessionID),
	)
	if err := m.users.TouchUser(ctx, user.ID, now); err != nil {
		m.logger.WarnContext(ctx, "update last seen failed", logging.Error(err))
	}
	return token, expires, nil
}

// Cookie wraps token in the session cookie.
func (m *Manager) Cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Validate parses token and returns the enabled user it belongs to.
func (m *Manager) Validate(ctx context.Context, token string) (*store.User, error) {
	var claims Claims
	keyFunc := func(*jwt.Token) (any, error) { return m.key, nil }
	parsed, err := jwt.ParseWithClaims(token, &claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.SessionID == "" || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	user, err := m.users.UserByName(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user == nil || !user.Enabled {
		return nil, errDisabled
	}
	return user, nil
}

// Middleware rejects requests without a valid session with HTTP 401 and
// stores the user in the request context otherwise.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r, m.cookieName)
		if token == "" {
			m.reject(w, r, ReasonMissing, nil)
			return
		}
		user, err := m.Validate(r.Context(), token)
		if err != nil {
			reason := ReasonInvalid
			if errors.Is(err, errDisabled) {
				reason = ReasonDisabled
			}
			m.reject(w, r, reason, err)
			return
		}
		ctx := WithUser(r.Context(), user)
		ctx = services.WithUser(ctx, user.ID, user.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) reject(w http.ResponseWriter, r *http.Request, reason string, err error) {
	if m.onReject != nil {
		m.onReject(reason)
	}
	attrs := []logging.Attr{logging.String("reason", reason), logging.String("path", r.URL.Path)}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	m.logger.DebugContext(r.Context(), "session rejected", logging.Args(attrs...)...)

	loc := i18n.Printer(i18n.ResolveTag(r, i18n.ParseLocale(m.fallback)))
	http.Error(w, loc.Sprintf(i18n.KeyLoginRequired), http.StatusUnauthorized)
}

// Allowed reports whether user holds permission. Root is always allowed;
// everyone else needs one of the roles configured for the permission.
func (m *Manager) Allowed(user *store.User, permission string) bool {
	if user == nil || !user.Enabled {
		return false
	}
	if user.HasRole(RootRole) {
		return true
	}
	for _, role := range m.permissions[permission] {
		if user.HasRole(role) {
			return true
		}
	}
	return false
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if scheme, value, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func displayName(u *store.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

type userKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *store.User {
	user, _ := ctx.Value(userKey{}).(*store.User)
	return user
}
