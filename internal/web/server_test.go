package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
	"github.com/ahinestrog/mybookstore-storefront/internal/config"
	"github.com/ahinestrog/mybookstore-storefront/internal/orders"
	"github.com/ahinestrog/mybookstore-storefront/internal/purchase"
	"github.com/ahinestrog/mybookstore-storefront/internal/rest"
)

func init() { gin.SetMode(gin.TestMode) }

//
// -----------------------------------------------------------------------------
// Fake bookstore backend
// -----------------------------------------------------------------------------

type fakeBook struct {
	ID        string
	Title     string
	Price     string
	Inventory int
}

type backend struct {
	mu         sync.Mutex
	books      map[string]*fakeBook
	bookCalls  atomic.Int32
	checkouts  [][]purchase.Item
	tokens     []string
	created    int
	rejectCode int
	rejectText string

	// hold, when set, parks book lookups until closed; held is signalled
	// as each one parks.
	hold chan struct{}
	held chan struct{}
}

func newBackend() *backend {
	return &backend{books: map[string]*fakeBook{
		"b1": {ID: "b1", Title: "Dune", Price: "19.99", Inventory: 5},
		"b2": {ID: "b2", Title: "Emma", Price: "5.00", Inventory: 1},
	}}
}

// holdLookups parks every book lookup until the returned func is called.
func (b *backend) holdLookups() (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hold = make(chan struct{})
	b.held = make(chan struct{}, 16)
	hold := b.hold
	return func() { close(hold) }
}

func jwt(sub, role string, userID, exp int64) string {
	payload, _ := json.Marshal(map[string]any{"sub": sub, "role": role, "userId": userID, "exp": exp})
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func (b *backend) bookJSON(fb *fakeBook) string {
	return fmt.Sprintf(`{"id":%q,"title":%q,"author":"A","price":%s,"inventory":%d}`, fb.ID, fb.Title, fb.Price, fb.Inventory)
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "pw" {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		role, id := "USER", int64(7)
		switch in["username"] {
		case "admin":
			role, id = "admin", 1
		case "bob":
			id = 8
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": jwt(in["username"], role, id, time.Now().Add(time.Hour).Unix())})
	})
	mux.HandleFunc("GET /api/books", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		ids := make([]string, 0, len(b.books))
		for id := range b.books {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		var parts [][]byte
		for _, id := range ids {
			parts = append(parts, []byte(b.bookJSON(b.books[id])))
		}
		_, _ = w.Write([]byte("[" + string(bytes.Join(parts, []byte(","))) + "]"))
	})
	mux.HandleFunc("GET /api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.bookCalls.Add(1)
		b.mu.Lock()
		hold, held := b.hold, b.held
		b.mu.Unlock()
		if hold != nil {
			select {
			case held <- struct{}{}:
			default:
			}
			<-hold
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		fb, ok := b.books[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(b.bookJSON(fb)))
	})
	mux.HandleFunc("POST /api/books", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.created++
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /api/purchase/checkout", func(w http.ResponseWriter, r *http.Request) {
		var items []purchase.Item
		_ = json.NewDecoder(r.Body).Decode(&items)
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.rejectCode != 0 {
			http.Error(w, b.rejectText, b.rejectCode)
			return
		}
		b.checkouts = append(b.checkouts, items)
		b.tokens = append(b.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		for _, it := range items {
			b.books[it.BookID].Inventory -= it.Quantity
		}
		_, _ = w.Write([]byte("Checkout successful."))
	})
	mux.HandleFunc("GET /api/purchase/history", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":3,"purchaseDate":"2024-02-01T09:00:00","items":[{"bookId":"b1","quantity":2,"title":"Dune","purchasePrice":19.99}]}]`))
	})
	return mux
}

//
// -----------------------------------------------------------------------------
// Harness
// -----------------------------------------------------------------------------

type harness struct {
	t       *testing.T
	be      *backend
	srv     *Server
	front   *httptest.Server
	browser *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	be := newBackend()
	api := httptest.NewServer(be.handler())
	t.Cleanup(api.Close)

	repo, err := orders.NewSQLiteRepo(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	rc := rest.New(api.URL+"/api", 2*time.Second)
	books := catalog.NewClient(rc)
	cfg := config.Config{
		SessionCookie: "sid",
		SessionTTL:    time.Hour,
		CORSOrigins:   []string{"http://shop.test"},
		ServiceEnv:    "test",
	}
	srv := NewServer(cfg, Deps{
		Auth:      auth.NewClient(rc),
		Catalog:   books,
		Prices:    catalog.NewCache(books, 16, time.Minute),
		Purchases: purchase.NewClient(rc),
		Orders:    repo,
		Log:       zerolog.Nop(),
	})
	front := httptest.NewServer(srv.Handler())
	t.Cleanup(front.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{t: t, be: be, srv: srv, front: front, browser: &http.Client{Jar: jar}}
}

type reply struct {
	Status int
	Body   map[string]any
}

func (r reply) notices() []string {
	var out []string
	list, _ := r.Body["notices"].([]any)
	for _, n := range list {
		out = append(out, n.(map[string]any)["message"].(string))
	}
	return out
}

func (h *harness) do(method, path string, body any) reply {
	h.t.Helper()
	out, err := h.send(method, path, body)
	require.NoError(h.t, err)
	return out
}

// send is do without assertions, for use off the test goroutine.
func (h *harness) send(method, path string, body any) (reply, error) {
	var raw []byte
	if body != nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			return reply{}, err
		}
	}
	req, err := http.NewRequest(method, h.front.URL+path, bytes.NewReader(raw))
	if err != nil {
		return reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.browser.Do(req)
	if err != nil {
		return reply{}, err
	}
	defer resp.Body.Close()

	out := reply{Status: resp.StatusCode, Body: map[string]any{}}
	_ = json.NewDecoder(resp.Body).Decode(&out.Body)
	return out, nil
}

func (h *harness) login(user string) {
	h.t.Helper()
	r := h.do(http.MethodPost, "/api/session/login", loginRequest{Username: user, Password: "pw"})
	require.Equal(h.t, http.StatusOK, r.Status, r.Body)
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func cartCount(r reply) float64 {
	return r.Body["cart"].(map[string]any)["totalItems"].(float64)
}

//
// -----------------------------------------------------------------------------
// Cart and checkout
// -----------------------------------------------------------------------------

// TestCheckout_FullFlow verifies add, total, checkout, journal and redirect.
func TestCheckout_FullFlow(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("ana")

	for i := 0; i < 2; i++ {
		r := h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b1"})
		require.Equal(t, http.StatusOK, r.Status, r.Body)
	}

	r := h.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	view := r.Body["cart"].(map[string]any)
	assert.Equal(t, float64(2), view["totalItems"])
	assert.Equal(t, "$39.98", view["totalCost"])
	line := view["lines"].([]any)[0].(map[string]any)
	assert.Equal(t, "Dune", line["title"])
	assert.Equal(t, "$39.98", line["lineTotal"])

	r = h.do(http.MethodPost, "/api/cart/checkout", nil)
	require.Equal(t, http.StatusOK, r.Status, r.Body)
	order := r.Body["order"].(map[string]any)
	assert.Equal(t, "$39.98", order["total"])
	assert.Equal(t, float64(7), order["userId"])
	assert.Contains(t, r.notices(), "Purchase completed successfully")

	h.be.mu.Lock()
	assert.Equal(t, [][]purchase.Item{{{BookID: "b1", Quantity: 2}}}, h.be.checkouts)
	h.be.mu.Unlock()

	r = h.do(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, float64(0), cartCount(r))

	r = h.do(http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.Body["orders"], 1)
}

// TestCheckout_KeepsBuyerWhenLoginSwitches verifies a second login in the
// same browser cannot take over an order that is already being validated.
func TestCheckout_KeepsBuyerWhenLoginSwitches(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("ana")
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b1"}).Status)
	}

	release := h.be.holdLookups()
	type result struct {
		r   reply
		err error
	}
	done := make(chan result, 1)
	go func() {
		r, err := h.send(http.MethodPost, "/api/cart/checkout", nil)
		done <- result{r, err}
	}()
	select {
	case <-h.be.held:
	case <-time.After(2 * time.Second):
		release()
		t.Fatal("checkout never reached validation")
	}

	r := h.do(http.MethodPost, "/api/session/login", loginRequest{Username: "bob", Password: "pw"})
	assert.Equal(t, http.StatusConflict, r.Status)
	r = h.do(http.MethodPost, "/api/session/logout", nil)
	assert.Equal(t, http.StatusConflict, r.Status)

	release()
	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, http.StatusOK, res.r.Status, res.r.Body)
	order := res.r.Body["order"].(map[string]any)
	assert.Equal(t, float64(7), order["userId"])
	assert.Equal(t, "ana", order["username"])

	h.be.mu.Lock()
	require.Len(t, h.be.tokens, 1)
	buyer, err := auth.ParseToken(h.be.tokens[0], nil)
	h.be.mu.Unlock()
	require.NoError(t, err)
	assert.Equal(t, "ana", buyer.Claims().Subject)

	h.login("bob")
	r = h.do(http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Empty(t, r.Body["orders"])
}

// TestCart_RequiresLogin verifies anonymous cart calls are refused before
// any backend lookup.
func TestCart_RequiresLogin(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	r := h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b1"})
	assert.Equal(t, http.StatusUnauthorized, r.Status)
	assert.NotEmpty(t, r.notices())

	r = h.do(http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusUnauthorized, r.Status)
	assert.Zero(t, h.be.bookCalls.Load())
}

// TestCart_InsufficientInventory verifies the refusal status and notice.
func TestCart_InsufficientInventory(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("ana")

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b2"}).Status)
	r := h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b2"})
	assert.Equal(t, http.StatusConflict, r.Status)
	require.Len(t, r.notices(), 1)
	assert.Contains(t, r.notices()[0], "Not enough inventory")
}

// TestCart_SetQuantity verifies both the caller ceiling and the live ceiling.
func TestCart_SetQuantity(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("ana")
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b1"}).Status)

	three, two, nine := 3, 2, 9
	r := h.do(http.MethodPut, "/api/cart/items/b1", setQuantityRequest{Quantity: &three})
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, float64(3), cartCount(r))

	r = h.do(http.MethodPut, "/api/cart/items/b1", setQuantityRequest{Quantity: &three, MaxInventory: &two})
	assert.Equal(t, http.StatusConflict, r.Status)
	assert.Equal(t, []string{"Cannot set quantity above 2 (available inventory)"}, r.notices())

	r = h.do(http.MethodPut, "/api/cart/items/b1", setQuantityRequest{Quantity: &nine})
	assert.Equal(t, http.StatusConflict, r.Status)

	r = h.do(http.MethodPut, "/api/cart/items/b1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, r.Status)

	r = h.do(http.MethodDelete, "/api/cart/items/b1", nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Equal(t, float64(0), cartCount(r))
	r = h.do(http.MethodDelete, "/api/cart/items/nonexistent", nil)
	assert.Equal(t, http.StatusOK, r.Status)
}

// TestCheckout_RejectedKeepsCart verifies the backend text reaches the user
// and the cart survives.
func TestCheckout_RejectedKeepsCart(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("ana")
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b1"}).Status)

	h.be.mu.Lock()
	h.be.rejectCode, h.be.rejectText = http.StatusBadRequest, "Not enough inventory for book: Dune"
	h.be.mu.Unlock()

	r := h.do(http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusBadGateway, r.Status)
	assert.Equal(t, []string{"Not enough inventory for book: Dune"}, r.notices())

	r = h.do(http.MethodGet, "/api/session", nil)
	assert.Equal(t, float64(1), r.Body["session"].(map[string]any)["cartCount"])
}

// TestCheckout_EmptyCart verifies an empty cart is a bad request.
func TestCheckout_EmptyCart(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("ana")

	r := h.do(http.MethodPost, "/api/cart/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, r.Status)
}

//
// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// TestLogin_BadCredentials verifies a failed login is 401 with a notice.
func TestLogin_BadCredentials(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	r := h.do(http.MethodPost, "/api/session/login", loginRequest{Username: "ana", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, r.Status)
	assert.Equal(t, []string{"Login failed. Please check your credentials."}, r.notices())
}

// TestLogout_ClearsCart verifies logging out empties the cart.
func TestLogout_ClearsCart(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.login("ana")
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b1"}).Status)

	r := h.do(http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, r.Status)
	s := r.Body["session"].(map[string]any)
	assert.Equal(t, false, s["authenticated"])
	assert.Equal(t, float64(0), s["cartCount"])
}

// TestSession_CookieSlides verifies every request renews the session cookie.
func TestSession_CookieSlides(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.do(http.MethodGet, "/api/session", nil)
	var sid string
	for _, c := range h.browser.Jar.Cookies(mustURL(t, h.front.URL)) {
		if c.Name == "sid" {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)

	req, err := http.NewRequest(http.MethodGet, h.front.URL+"/api/session", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var renewed *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			renewed = c
		}
	}
	require.NotNil(t, renewed)
	assert.Equal(t, sid, renewed.Value)
	assert.Equal(t, int(time.Hour.Seconds()), renewed.MaxAge)
}

// TestSession_ExpiredClearsCart verifies an expired login drops the cart on
// the next request.
func TestSession_ExpiredClearsCart(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	r := h.do(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, r.Status)
	var sid string
	for _, c := range h.browser.Jar.Cookies(mustURL(t, h.front.URL)) {
		if c.Name == "sid" {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)
	sess, created := h.srv.sessions.Get(sid)
	require.False(t, created)

	var clock atomic.Int64
	clock.Store(1000)
	a, err := auth.ParseToken(jwt("ana", "USER", 7, 2000), func() time.Time { return time.Unix(clock.Load(), 0) })
	require.NoError(t, err)
	sess.SetAuth(a)
	require.NoError(t, sess.Cart.Add(t.Context(), "b1"))
	sess.Notices.Drain()

	clock.Store(2000)
	r = h.do(http.MethodGet, "/api/session", nil)
	s := r.Body["session"].(map[string]any)
	assert.Equal(t, false, s["authenticated"])
	assert.Equal(t, float64(0), s["cartCount"])
	assert.Equal(t, []string{"Your session has expired. Please log in again."}, r.notices())
}

// TestAdmin_Capabilities verifies admins manage the catalog but cannot buy.
func TestAdmin_Capabilities(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	book := map[string]any{"title": "New", "author": "Someone", "price": 12.5, "inventory": 3}
	h.login("ana")
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/admin/books", book).Status)

	h.login("admin")
	r := h.do(http.MethodGet, "/api/session", nil)
	caps := r.Body["session"].(map[string]any)["capabilities"].(map[string]any)
	assert.Equal(t, true, caps["canManageCatalog"])
	assert.Equal(t, false, caps["canPurchase"])

	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPost, "/api/cart/items", addItemRequest{BookID: "b1"}).Status)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/admin/books", book).Status)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/admin/books", map[string]any{"title": "x"}).Status)
	h.be.mu.Lock()
	assert.Equal(t, 1, h.be.created)
	h.be.mu.Unlock()
}

//
// -----------------------------------------------------------------------------
// Catalog and history
// -----------------------------------------------------------------------------

// TestBooks_ListAndGet verifies book views carry display fields.
func TestBooks_ListAndGet(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	r := h.do(http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Len(t, r.Body["books"], 2)

	r = h.do(http.MethodGet, "/api/books/b1", nil)
	require.Equal(t, http.StatusOK, r.Status)
	b := r.Body["book"].(map[string]any)
	assert.Equal(t, "$19.99", b["priceDisplay"])
	assert.Equal(t, "/api/placeholder/200/300", b["imageUrl"])

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/books/zzz", nil).Status)
}

// TestSearch_RejectsBadInput verifies search parameters are validated locally.
func TestSearch_RejectsBadInput(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/books/search?type=price&min=abc&max=3", nil).Status)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/books/search?type=price&min=9&max=3", nil).Status)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/books/search?type=author", nil).Status)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/books/search?type=colour&q=red", nil).Status)
}

// TestPurchases_History verifies totals are computed for each purchase.
func TestPurchases_History(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/purchases", nil).Status)

	h.login("ana")
	r := h.do(http.MethodGet, "/api/purchases", nil)
	require.Equal(t, http.StatusOK, r.Status)
	p := r.Body["purchases"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(2), p["totalItems"])
	assert.Equal(t, "$39.98", p["totalCost"])
}

// TestOrder_OnlyOwner verifies another user's order id reads as not found.
func TestOrder_OnlyOwner(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	o := orders.NewOrder(99, "someone", []orders.Item{{BookID: "b1", Title: "Dune", Qty: 1, UnitCents: 1999}}, time.Now())
	id, err := h.srv.orders.Create(t.Context(), o)
	require.NoError(t, err)

	h.login("ana")
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/orders/"+id, nil).Status)
}

// TestCORS_Preflight verifies configured origins pass the preflight.
func TestCORS_Preflight(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	req, err := http.NewRequest(http.MethodOptions, h.front.URL+"/api/cart/items", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://shop.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://shop.test", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

// TestHealthz verifies the liveness endpoint.
func TestHealthz(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	resp, err := http.Get(h.front.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
