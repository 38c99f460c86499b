package web

import (
	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
	"github.com/ahinestrog/mybookstore-storefront/internal/orders"
	"github.com/ahinestrog/mybookstore-storefront/internal/purchase"
)

type bookView struct {
	catalog.Book
	PriceDisplay string `json:"priceDisplay"`
	ImageURL     string `json:"imageUrl"`
}

func toBookView(b catalog.Book) bookView {
	return bookView{Book: b, PriceDisplay: b.UnitPrice().String(), ImageURL: b.ImageURL()}
}

func toBookViews(bs []catalog.Book) []bookView {
	out := make([]bookView, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookView(b))
	}
	return out
}

type lineView struct {
	BookID    string `json:"bookId"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Quantity  int    `json:"quantity"`
	Inventory int    `json:"inventory"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
	ImageURL  string `json:"imageUrl"`
}

type cartView struct {
	Lines      []lineView `json:"lines"`
	TotalItems int        `json:"totalItems"`
	TotalCost  string     `json:"totalCost"`
	TotalCents int64      `json:"totalCents"`
	Busy       bool       `json:"busy"`
}

type sessionView struct {
	Authenticated bool              `json:"authenticated"`
	Username      string            `json:"username,omitempty"`
	Role          string            `json:"role,omitempty"`
	UserID        int64             `json:"userId,omitempty"`
	Capabilities  auth.Capabilities `json:"capabilities"`
	CartCount     int               `json:"cartCount"`
}

func toSessionView(s *Session) sessionView {
	a := s.Auth()
	c := a.Claims()
	return sessionView{
		Authenticated: a.Authorize() == nil,
		Username:      c.Subject,
		Role:          c.Role,
		UserID:        c.UserID,
		Capabilities:  a.Capabilities(),
		CartCount:     s.Cart.TotalItems(),
	}
}

type purchaseView struct {
	purchase.Purchase
	TotalItems int    `json:"totalItems"`
	TotalCost  string `json:"totalCost"`
}

type orderView struct {
	*orders.Order
	Total string `json:"total"`
}
