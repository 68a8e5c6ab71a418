package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/catalog-admin/internal/admin"
)

// SessionCookie is the name of the cookie carrying the signed session id.
const SessionCookie = "catalog_admin_session"

// SessionConfig configures the session store.
type SessionConfig struct {
	// Secret signs session tokens (HS256).
	Secret []byte
	// TTL is how long an idle session is kept.
	TTL time.Duration
	// Secure marks the cookie as HTTPS only.
	Secure bool
	// Max caps the number of live sessions. Creating one more drops the
	// least recently seen.
	Max int
}

// DefaultMaxSessions is used when SessionConfig.Max is not set.
const DefaultMaxSessions = 10000

type session struct {
	coord    *admin.Coordinator
	lastSeen time.Time
}

// Sessions maps browser sessions to their admin coordinators. Session state
// lives in memory only; a restart starts every browser from scratch.
type Sessions struct {
	cfg      SessionConfig
	newCoord func() *admin.Coordinator
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*session
}

// NewSessions returns an empty store. newCoord is called once per new
// session.
func NewSessions(cfg SessionConfig, newCoord func() *admin.Coordinator) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.Max <= 0 {
		cfg.Max = DefaultMaxSessions
	}
	return &Sessions{
		cfg:      cfg,
		newCoord: newCoord,
		now:      time.Now,
		entries:  make(map[string]*session),
	}
}

// Coordinator returns the coordinator for the session of r, creating the
// session and setting its cookie when r carries none or an invalid one.
func (s *Sessions) Coordinator(w http.ResponseWriter, r *http.Request) *admin.Coordinator {
	id, issuedAt, err := s.parse(r)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			zctx.From(r.Context()).Debug("Discarding session cookie", zap.Error(err))
		}
		id = uuid.NewString()
	}

	now := s.now()
	if err != nil || now.Sub(issuedAt) > s.cfg.TTL/2 {
		if err := s.setCookie(w, id, now); err != nil {
			zctx.From(r.Context()).Error("Issue session cookie", zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		if len(s.entries) >= s.cfg.Max {
			s.dropOldest()
			zctx.From(r.Context()).Debug("Session limit reached, dropped oldest", zap.Int("max", s.cfg.Max))
		}
		e = &session{coord: s.newCoord()}
		s.entries[id] = e
	}
	e.lastSeen = now
	return e.coord
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Evict drops sessions idle for longer than the TTL.
func (s *Sessions) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.cfg.TTL {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

func (s *Sessions) dropOldest() {
	var (
		oldest string
		seen   time.Time
	)
	for id, e := range s.entries {
		if oldest == "" || e.lastSeen.Before(seen) {
			oldest, seen = id, e.lastSeen
		}
	}
	delete(s.entries, oldest)
}

// Run evicts idle sessions every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Evict(now); n > 0 {
				zctx.From(ctx).Debug("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// SessionKey returns the session id of r for use as a rate limit key, or an
// empty string when r has no valid session.
func (s *Sessions) SessionKey(r *http.Request) string {
	id, _, err := s.parse(r)
	if err != nil {
		return ""
	}
	return id
}

func (s *Sessions) parse(r *http.Request) (id string, issuedAt time.Time, err error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := new(jwt.RegisteredClaims)
	_, err = jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "parse session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", time.Time{}, errors.Wrap(err, "session subject")
	}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	return claims.Subject, issuedAt, nil
}

func (s *Sessions) setCookie(w http.ResponseWriter, id string, now time.Time) error {
	expires := now.Add(s.cfg.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return errors.Wrap(err, "sign session token")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
