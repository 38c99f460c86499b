// Package web is the storefront gateway: one session per browser, a JSON
// API for the page, and the backend clients behind it.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/cart"
	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
	"github.com/ahinestrog/mybookstore-storefront/internal/config"
	"github.com/ahinestrog/mybookstore-storefront/internal/events"
	"github.com/ahinestrog/mybookstore-storefront/internal/orders"
	"github.com/ahinestrog/mybookstore-storefront/internal/purchase"
)

const (
	sessionKey       = "session"
	cartEventBacklog = 1024
)

var errBuyerChanged = errors.New("login changed during checkout")

// Deps are the collaborators the gateway talks to.
type Deps struct {
	Auth      *auth.Client
	Catalog   *catalog.Client
	Prices    *catalog.Cache
	Purchases *purchase.Client
	Orders    orders.Repository
	Rabbit    *events.Rabbit
	Log       zerolog.Logger
}

type Server struct {
	cfg        config.Config
	auth       *auth.Client
	catalog    *catalog.Client
	prices     *catalog.Cache
	purchases  *purchase.Client
	orders     orders.Repository
	rabbit     *events.Rabbit
	cartEvents *events.Queue
	sessions   *Registry
	log        zerolog.Logger
	now        func() time.Time
}

func NewServer(cfg config.Config, d Deps) *Server {
	s := &Server{
		cfg:       cfg,
		auth:      d.Auth,
		catalog:   d.Catalog,
		prices:    d.Prices,
		purchases: d.Purchases,
		orders:    d.Orders,
		rabbit:    d.Rabbit,
		log:       d.Log,
		now:       time.Now,
	}
	if d.Rabbit != nil {
		s.cartEvents = events.NewQueue(d.Rabbit, cartEventBacklog, d.Log)
	}
	s.sessions = NewRegistry(cfg.SessionTTL, s.buildSession)
	return s
}

// Close flushes queued cart events, giving up when ctx ends.
func (s *Server) Close(ctx context.Context) error {
	return s.cartEvents.Close(ctx)
}

// buildSession wires a fresh cart to the session's login, the backend
// and the notifiers.
func (s *Server) buildSession(sess *Session) {
	log := s.log.With().Str("session", sess.ID).Logger()
	gate := cart.GateFunc(func() error { return sess.Auth().AuthorizePurchase() })
	submit := cart.SubmitterFunc(func(ctx context.Context, lines []cart.Line) error {
		buyer := buyerFrom(ctx)
		if err := buyer.AuthorizePurchase(); err != nil {
			return err
		}
		if buyer.Claims().Subject != sess.Auth().Claims().Subject {
			return errBuyerChanged
		}
		items := make([]purchase.Item, len(lines))
		for i, l := range lines {
			items[i] = purchase.Item{BookID: l.BookID, Quantity: l.Quantity}
		}
		return s.purchases.Checkout(ctx, buyer.Token(), items)
	})
	notify := cart.Fanout{sess.Notices}
	if s.cartEvents != nil {
		notify = append(notify, events.NewCartNotifier(s.cartEvents, sess.ID, sess.userID, log))
	}
	sess.Cart = cart.New(gate, s.catalog, submit,
		cart.WithPriceCatalog(s.priceLookup()),
		cart.WithNotifier(notify),
		cart.WithLogger(log),
	)
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(requestLogger(s.log), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api", s.withSession)
	{
		sess := api.Group("/session")
		sess.GET("", s.handleSession)
		sess.POST("/login", s.handleLogin)
		sess.POST("/register", s.handleRegister)
		sess.POST("/logout", s.handleLogout)
		sess.PUT("/profile", s.handleProfile)

		books := api.Group("/books")
		books.GET("", s.handleListBooks)
		books.GET("/search", s.handleSearch)
		books.GET("/recommended", s.handleRecommended)
		books.GET("/:id", s.handleGetBook)

		admin := api.Group("/admin/books")
		admin.POST("", s.handleCreateBook)
		admin.PUT("/:id", s.handleUpdateBook)
		admin.DELETE("/:id", s.handleDeleteBook)

		c := api.Group("/cart")
		c.GET("", s.handleCart)
		c.POST("/items", s.handleAddItem)
		c.PUT("/items/:bookId", s.handleSetQuantity)
		c.DELETE("/items/:bookId", s.handleRemoveItem)
		c.POST("/checkout", s.handleCheckout)

		api.GET("/orders", s.handleOrders)
		api.GET("/orders/:id", s.handleOrder)
		api.GET("/purchases", s.handlePurchases)
	}
	return r
}

// Handler is the router behind the CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler(s.Router())
}

// withSession attaches the browser's session, creating it on first visit.
// The cookie is reissued on every request so it slides with the server-side
// TTL. An expired login is dropped together with the cart.
func (s *Server) withSession(c *gin.Context) {
	id, _ := c.Cookie(s.cfg.SessionCookie)
	sess, _ := s.sessions.Get(id)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.SessionCookie, sess.ID, int(s.cfg.SessionTTL.Seconds()), "/", "", s.cfg.Production(), true)

	if a := sess.Auth(); a != nil && a.Authorize() != nil {
		if err := sess.Logout(); err != nil {
			s.log.Debug().Err(err).Str("session", sess.ID).Msg("expired login kept until checkout ends")
		} else {
			s.log.Info().Str("session", sess.ID).Str("user", a.Claims().Subject).Msg("session expired, clearing cart")
			sess.Notices.Error("Your session has expired. Please log in again.")
		}
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func session(c *gin.Context) *Session { return c.MustGet(sessionKey).(*Session) }

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header("X-Request-ID", rid)
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("rid", rid).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http")
	}
}

// respond writes body plus the session's pending notices.
func respond(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["notices"] = session(c).Notices.Drain()
	c.JSON(status, body)
}
