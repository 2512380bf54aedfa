package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/auth"
	"github.com/nerrad567/gray-logic-av/internal/infrastructure/config"
)

const (
	// defaultTicketTTL is used when security.jwt.ws_ticket_ttl is unset.
	defaultTicketTTL = 60 * time.Second

	// ticketBytes is the number of random bytes used for WebSocket tickets.
	ticketBytes = 32

	// ctxKeyClaims is the context key for the authenticated token claims.
	ctxKeyClaims contextKey = "claims"
)

var errMissingBearer = errors.New("missing bearer token")

// ticketStore holds pending WebSocket authentication tickets.
// Tickets are single-use and expire after ttl.
type ticketStore struct {
	ttl     time.Duration
	tickets map[string]ticketEntry
	mu      sync.Mutex
}

type ticketEntry struct {
	subject   string
	expiresAt time.Time
}

func newTicketStore(ttl time.Duration) *ticketStore {
	return &ticketStore{
		ttl:     ttl,
		tickets: make(map[string]ticketEntry),
	}
}

func ticketTTL(cfg config.JWTConfig) time.Duration {
	if cfg.TicketTTL <= 0 {
		return defaultTicketTTL
	}
	return time.Duration(cfg.TicketTTL) * time.Second
}

// issue creates a ticket for subject.
func (ts *ticketStore) issue(subject string) string {
	ticket := generateTicket()

	ts.mu.Lock()
	ts.tickets[ticket] = ticketEntry{
		subject:   subject,
		expiresAt: time.Now().Add(ts.ttl),
	}
	ts.mu.Unlock()

	return ticket
}

// consume validates a ticket and removes it (single-use).
func (ts *ticketStore) consume(ticket string) (ticketEntry, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry, ok := ts.tickets[ticket]
	if !ok {
		return ticketEntry{}, false
	}
	delete(ts.tickets, ticket)

	return entry, time.Now().Before(entry.expiresAt)
}

// clean removes expired tickets.
func (ts *ticketStore) clean() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	for ticket, entry := range ts.tickets {
		if now.After(entry.expiresAt) {
			delete(ts.tickets, ticket)
		}
	}
}

// generateTicket creates a cryptographically random ticket string.
func generateTicket() string {
	b := make([]byte, ticketBytes)
	//nolint:errcheck // crypto/rand.Read always returns len(b) on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}

// cleanTicketsLoop removes expired tickets periodically until the context is cancelled.
func (s *Server) cleanTicketsLoop(ctx context.Context) {
	ticker := time.NewTicker(s.tickets.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickets.clean()
		}
	}
}

// authEnabled reports whether protected routes require a bearer token.
func (s *Server) authEnabled() bool {
	return s.secCfg.JWT.Enabled
}

// authMiddleware validates the bearer token on protected routes.
// It passes every request through when security.jwt.enabled is false.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.authenticate(r)
		if err != nil {
			s.logger.Debug("bearer token rejected",
				"path", r.URL.Path,
				"error", err,
				"request_id", r.Context().Value(ctxKeyRequestID),
			)
			writeUnauthorized(w, "invalid or missing bearer token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePermission rejects requests whose token role lacks perm.
func (s *Server) requirePermission(perm auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.authEnabled() {
				next.ServeHTTP(w, r)
				return
			}
			claims := claimsFrom(r.Context())
			if claims == nil || !auth.HasPermission(claims.Role, perm) {
				writeError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate parses and verifies the request's bearer token.
func (s *Server) authenticate(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, errMissingBearer
	}
	return auth.ParseToken(raw, s.secCfg.JWT.Secret)
}

// claimsFrom returns the claims stored by authMiddleware, or nil when auth
// is disabled.
func claimsFrom(ctx context.Context) *auth.Claims {
	v, _ := ctx.Value(ctxKeyClaims).(*auth.Claims) //nolint:errcheck // absent when auth is disabled
	return v
}

// subjectFrom returns the authenticated subject, or "" when auth is disabled.
func subjectFrom(ctx context.Context) string {
	if c := claimsFrom(ctx); c != nil {
		return c.Subject
	}
	return ""
}

// handleWSTicket generates a single-use WebSocket authentication ticket.
// The client uses this ticket to authenticate the WebSocket connection
// without exposing the bearer token in the URL.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	ticket := s.tickets.issue(subjectFrom(r.Context()))

	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(s.tickets.ttl.Seconds()),
	})
}
