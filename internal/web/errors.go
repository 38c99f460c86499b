package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/cart"
	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
	"github.com/ahinestrog/mybookstore-storefront/internal/orders"
	"github.com/ahinestrog/mybookstore-storefront/internal/rest"
)

var errBadRequest = errors.New("bad request")

type badRequest struct{ msg string }

func (e badRequest) Error() string        { return e.msg }
func (e badRequest) Is(target error) bool { return target == errBadRequest }

func invalid(msg string) error { return badRequest{msg: msg} }

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var (
		ie *cart.InsufficientInventoryError
		se *cart.SubmissionError
		re *rest.StatusError
	)
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ie), errors.Is(err, cart.ErrCheckoutInProgress), errors.Is(err, catalog.ErrDuplicateISBN):
		return http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, catalog.ErrInvalidSearch), errors.Is(err, auth.ErrIncompleteForm):
		return http.StatusBadRequest
	case errors.As(err, &se), errors.As(err, &re):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail answers with the mapped status and shows err as a notice.
func (s *Server) fail(c *gin.Context, err error) {
	session(c).Notices.Error(userMessage(err))
	s.failQuiet(c, err)
}

// failQuiet is fail for errors the cart already turned into a notice.
func (s *Server) failQuiet(c *gin.Context, err error) {
	status := statusFor(err)
	ev := s.log.Debug()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(err).Str("path", c.FullPath()).Int("status", status).Msg("request failed")
	respond(c, status, gin.H{"error": err.Error()})
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case errors.Is(err, auth.ErrNotAuthenticated):
		return "Please log in first"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Login failed. Please check your credentials."
	case errors.Is(err, auth.ErrForbidden):
		return "You do not have permission to do that"
	case statusFor(err) == http.StatusInternalServerError:
		return "Something went wrong. Please try again."
	default:
		return err.Error()
	}
}
