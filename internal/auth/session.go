package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired: %w", ErrNotAuthenticated)
	ErrForbidden        = errors.New("forbidden")
)

const RoleAdmin = "admin"

// Claims is the part of the backend's JWT payload the storefront reads.
type Claims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	UserID  int64  `json:"userId"`
	Expiry  int64  `json:"exp"`
}

// Capabilities are resolved once per session from the token's role.
type Capabilities struct {
	CanManageCatalog bool `json:"canManageCatalog"`
	CanPurchase      bool `json:"canPurchase"`
}

func capabilitiesFor(role string) Capabilities {
	if role == RoleAdmin {
		return Capabilities{CanManageCatalog: true}
	}
	return Capabilities{CanPurchase: true}
}

// Session is a logged-in user. The zero value and a nil *Session are
// both unauthenticated.
type Session struct {
	token  string
	claims Claims
	caps   Capabilities
	now    func() time.Time
}

// ParseToken decodes the JWT payload without verifying the signature;
// the backend verifies it on every authenticated call.
func ParseToken(token string, now func() time.Time) (*Session, error) {
	if now == nil {
		now = time.Now
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed token: %w", ErrNotAuthenticated)
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("malformed token payload: %w", ErrNotAuthenticated)
	}
	var c Claims
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("malformed token claims: %w", ErrNotAuthenticated)
	}
	s := &Session{token: token, claims: c, caps: capabilitiesFor(c.Role), now: now}
	if s.expired() {
		return nil, ErrSessionExpired
	}
	return s, nil
}

func (s *Session) expired() bool {
	return s.claims.Expiry > 0 && s.now().Unix() >= s.claims.Expiry
}

func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

func (s *Session) Claims() Claims {
	if s == nil {
		return Claims{}
	}
	return s.claims
}

func (s *Session) Capabilities() Capabilities {
	if s == nil {
		return Capabilities{}
	}
	return s.caps
}

// Authorize is the presence check done before any backend call.
func (s *Session) Authorize() error {
	if s == nil || s.token == "" {
		return ErrNotAuthenticated
	}
	if s.expired() {
		return ErrSessionExpired
	}
	return nil
}

// AuthorizePurchase additionally requires the purchase capability.
func (s *Session) AuthorizePurchase() error {
	if err := s.Authorize(); err != nil {
		return err
	}
	if !s.caps.CanPurchase {
		return fmt.Errorf("role %q cannot purchase: %w", s.claims.Role, ErrForbidden)
	}
	return nil
}

func (s *Session) AuthorizeCatalogAdmin() error {
	if err := s.Authorize(); err != nil {
		return err
	}
	if !s.caps.CanManageCatalog {
		return fmt.Errorf("role %q cannot manage the catalog: %w", s.claims.Role, ErrForbidden)
	}
	return nil
}

// PurchaseGate adapts a session to the cart's authorization check.
type PurchaseGate struct{ Session *Session }

func (g PurchaseGate) Authorize() error { return g.Session.AuthorizePurchase() }
