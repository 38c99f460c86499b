package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ahinestrog/mybookstore-storefront/internal/rest"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncompleteForm     = errors.New("all fields are required")
)

type Registration struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r Registration) validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Password) == "" ||
		strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.FirstName) == "" ||
		strings.TrimSpace(r.LastName) == "" {
		return ErrIncompleteForm
	}
	return nil
}

// Profile update; an empty Password leaves the password unchanged.
type Profile struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password,omitempty"`
}

type Client struct {
	rest *rest.Client
}

func NewClient(rc *rest.Client) *Client { return &Client{rest: rc} }

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var out struct {
		Token string `json:"token"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.rest.Do(ctx, http.MethodPost, "/auth/login", "", in, &out); err != nil {
		if rest.HasStatus(err, http.StatusUnauthorized) || rest.HasStatus(err, http.StatusForbidden) ||
			rest.HasStatus(err, http.StatusBadRequest) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if out.Token == "" {
		return nil, ErrInvalidCredentials
	}
	return ParseToken(out.Token, nil)
}

func (c *Client) Register(ctx context.Context, r Registration) error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if err := r.validate(); err != nil {
		return err
	}
	if err := c.rest.Do(ctx, http.MethodPost, "/auth/register", "", r, nil); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	return nil
}

func (c *Client) UpdateProfile(ctx context.Context, s *Session, p Profile) error {
	if err := s.Authorize(); err != nil {
		return err
	}
	p.Email = strings.TrimSpace(p.Email)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	path := fmt.Sprintf("/users/%d", s.Claims().UserID)
	return c.rest.Do(ctx, http.MethodPut, path, s.Token(), p, nil)
}
