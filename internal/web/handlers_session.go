package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/cart"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GET /api/session
func (s *Server) handleSession(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"session": toSessionView(session(c))})
}

// POST /api/session/login
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		s.fail(c, invalid("username and password are required"))
		return
	}
	sess := session(c)
	if sess.Cart.Busy() {
		s.fail(c, cart.ErrCheckoutInProgress)
		return
	}
	a, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	if prev := sess.Auth(); prev != nil && prev.Claims().Subject != a.Claims().Subject {
		if err := sess.Cart.Clear(); err != nil {
			s.fail(c, err)
			return
		}
	}
	sess.SetAuth(a)
	sess.Notices.Info("Login successful")
	s.log.Info().Str("session", sess.ID).Str("user", a.Claims().Subject).Str("role", a.Claims().Role).Msg("login")
	respond(c, http.StatusOK, gin.H{"session": toSessionView(sess)})
}

// POST /api/session/register
func (s *Server) handleRegister(c *gin.Context) {
	var req auth.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, invalid("invalid registration form"))
		return
	}
	if err := s.auth.Register(c.Request.Context(), req); err != nil {
		s.fail(c, err)
		return
	}
	session(c).Notices.Info("Registration successful! Please log in.")
	respond(c, http.StatusCreated, nil)
}

// POST /api/session/logout
func (s *Server) handleLogout(c *gin.Context) {
	sess := session(c)
	if err := sess.Logout(); err != nil {
		s.fail(c, err)
		return
	}
	sess.Notices.Info("You have been logged out")
	respond(c, http.StatusOK, gin.H{"session": toSessionView(sess)})
}

// PUT /api/session/profile
func (s *Server) handleProfile(c *gin.Context) {
	var p auth.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		s.fail(c, invalid("invalid profile form"))
		return
	}
	if err := s.auth.UpdateProfile(c.Request.Context(), session(c).Auth(), p); err != nil {
		s.fail(c, err)
		return
	}
	session(c).Notices.Info("Profile updated successfully")
	respond(c, http.StatusOK, nil)
}
