package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ahinestrog/mybookstore-storefront/internal/cart"
	"github.com/ahinestrog/mybookstore-storefront/internal/events"
	"github.com/ahinestrog/mybookstore-storefront/internal/orders"
)

type addItemRequest struct {
	BookID string `json:"bookId"`
}

// MaxInventory, when sent, is the ceiling the page showed the user;
// otherwise the live catalog decides.
type setQuantityRequest struct {
	Quantity     *int `json:"quantity"`
	MaxInventory *int `json:"maxInventory"`
}

func cartSummary(m *cart.Manager) gin.H {
	return gin.H{"cart": gin.H{"lines": m.Lines(), "totalItems": m.TotalItems(), "busy": m.Busy()}}
}

// GET /api/cart
func (s *Server) handleCart(c *gin.Context) {
	m := session(c).Cart
	ctx := c.Request.Context()

	total, err := m.TotalCost(ctx)
	if err != nil {
		s.failQuiet(c, err)
		return
	}
	lines := m.Lines()
	view := cartView{
		Lines:      make([]lineView, 0, len(lines)),
		TotalItems: m.TotalItems(),
		TotalCost:  total.String(),
		TotalCents: total.Cents,
		Busy:       m.Busy(),
	}
	for _, l := range lines {
		b, err := s.priceLookup().GetBook(ctx, l.BookID)
		if err != nil {
			s.fail(c, err)
			return
		}
		view.Lines = append(view.Lines, lineView{
			BookID:    l.BookID,
			Title:     b.Title,
			Author:    b.Author,
			Quantity:  l.Quantity,
			Inventory: b.Inventory,
			UnitPrice: b.UnitPrice().String(),
			LineTotal: b.UnitPrice().Mul(l.Quantity).String(),
			ImageURL:  b.ImageURL(),
		})
	}
	respond(c, http.StatusOK, gin.H{"cart": view})
}

// POST /api/cart/items
func (s *Server) handleAddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookID == "" {
		s.fail(c, invalid("bookId is required"))
		return
	}
	m := session(c).Cart
	if err := m.Add(c.Request.Context(), req.BookID); err != nil {
		s.failQuiet(c, err)
		return
	}
	respond(c, http.StatusOK, cartSummary(m))
}

// PUT /api/cart/items/:bookId
func (s *Server) handleSetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		s.fail(c, invalid("quantity is required"))
		return
	}
	m := session(c).Cart
	id := c.Param("bookId")
	var err error
	if req.MaxInventory != nil {
		err = m.SetQuantity(id, *req.Quantity, *req.MaxInventory)
	} else {
		err = m.ChangeQuantity(c.Request.Context(), id, *req.Quantity)
	}
	if err != nil {
		s.failQuiet(c, err)
		return
	}
	respond(c, http.StatusOK, cartSummary(m))
}

// DELETE /api/cart/items/:bookId
func (s *Server) handleRemoveItem(c *gin.Context) {
	m := session(c).Cart
	if err := m.Remove(c.Param("bookId")); err != nil {
		s.failQuiet(c, err)
		return
	}
	respond(c, http.StatusOK, cartSummary(m))
}

// POST /api/cart/checkout validates and submits the cart, records the order
// locally and redirects to its confirmation (PRG). Submission and journal
// both use the login the checkout started under.
func (s *Server) handleCheckout(c *gin.Context) {
	sess := session(c)
	buyer := sess.Auth()
	ctx := withBuyer(c.Request.Context(), buyer)

	receipt, err := sess.Cart.Checkout(ctx)
	if err != nil {
		s.failQuiet(c, err)
		return
	}

	o := orders.NewOrder(buyer.Claims().UserID, buyer.Claims().Subject, orderItems(receipt), s.now())
	id, err := s.orders.Create(ctx, o)
	if err != nil {
		// The backend already accepted the order; only the local record is missing.
		s.log.Error().Err(err).Str("session", sess.ID).Msg("journal checkout")
		respond(c, http.StatusOK, gin.H{"checkedOut": receipt.Lines})
		return
	}
	s.publishOrder(ctx, o)
	s.log.Info().Str("order", id).Int64("user", o.UserID).Int64("total_cents", o.TotalCents).Msg("checkout recorded")
	c.Redirect(http.StatusSeeOther, "/api/orders/"+id)
}

// orderItems prices the journal from the books checkout validated against.
func orderItems(r cart.Receipt) []orders.Item {
	items := make([]orders.Item, len(r.Lines))
	for i, l := range r.Lines {
		b := r.Books[i]
		items[i] = orders.Item{BookID: l.BookID, Title: b.Title, Qty: l.Quantity, UnitCents: b.UnitPrice().Cents}
		if items[i].Title == "" {
			items[i].Title = l.BookID
		}
	}
	return items
}

func (s *Server) publishOrder(ctx context.Context, o *orders.Order) {
	if s.rabbit == nil {
		return
	}
	p := events.OrderRecordedPayload{OrderID: o.ID, UserID: o.UserID, TotalCents: o.TotalCents}
	for _, it := range o.Items {
		p.Items = append(p.Items, events.OrderItemEvt{
			BookID: it.BookID, Title: it.Title, Qty: it.Qty, UnitCents: it.UnitCents, LineCents: it.LineCents,
		})
	}
	if err := s.rabbit.PublishJSON(ctx, events.RKOrderRecorded, p); err != nil {
		s.log.Warn().Err(err).Str("order", o.ID).Msg("publish order")
	}
}

// GET /api/orders/:id
func (s *Server) handleOrder(c *gin.Context) {
	a := session(c).Auth()
	if err := a.Authorize(); err != nil {
		s.fail(c, err)
		return
	}
	o, err := s.orders.Get(c.Request.Context(), c.Param("id"))
	if err == nil && o.UserID != a.Claims().UserID {
		err = fmt.Errorf("order %s: %w", c.Param("id"), orders.ErrNotFound)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"order": orderView{Order: o, Total: o.Total().String()}})
}

// GET /api/orders lists the checkouts recorded by this storefront.
func (s *Server) handleOrders(c *gin.Context) {
	a := session(c).Auth()
	if err := a.Authorize(); err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.orders.ListByUser(c.Request.Context(), a.Claims().UserID)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]orderView, 0, len(list))
	for i := range list {
		out = append(out, orderView{Order: &list[i], Total: list[i].Total().String()})
	}
	respond(c, http.StatusOK, gin.H{"orders": out})
}

// GET /api/purchases
func (s *Server) handlePurchases(c *gin.Context) {
	a := session(c).Auth()
	if err := a.AuthorizePurchase(); err != nil {
		s.fail(c, err)
		return
	}
	history, err := s.purchases.History(c.Request.Context(), a.Token())
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]purchaseView, 0, len(history))
	for _, p := range history {
		out = append(out, purchaseView{Purchase: p, TotalItems: p.TotalItems(), TotalCost: p.TotalCost().String()})
	}
	if len(out) == 0 {
		session(c).Notices.Info("You haven't made any purchases yet")
	}
	respond(c, http.StatusOK, gin.H{"purchases": out})
}

// priceLookup is the cached catalog when there is one.
func (s *Server) priceLookup() cart.Catalog {
	if s.prices != nil {
		return s.prices
	}
	return s.catalog
}
