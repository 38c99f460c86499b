package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
)

// GET /api/books
func (s *Server) handleListBooks(c *gin.Context) {
	books, err := s.catalog.ListBooks(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"books": toBookViews(books)})
}

// GET /api/books/search?type=author&q=...  (price: min, max; inventory: min)
func (s *Server) handleSearch(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	books, err := s.catalog.Search(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	if len(books) == 0 {
		session(c).Notices.Info("No books found matching your search criteria")
	}
	respond(c, http.StatusOK, gin.H{"books": toBookViews(books)})
}

func parseQuery(c *gin.Context) (catalog.Query, error) {
	q := catalog.Query{
		Kind: catalog.SearchKind(c.DefaultQuery("type", string(catalog.SearchTitle))),
		Term: strings.TrimSpace(c.Query("q")),
	}
	switch q.Kind {
	case catalog.SearchPrice, catalog.SearchInventory:
		var err error
		if q.Min, err = decimalParam(c, "min"); err != nil {
			return q, err
		}
		if q.Kind == catalog.SearchPrice {
			if q.Max, err = decimalParam(c, "max"); err != nil {
				return q, err
			}
		}
	default:
		if q.Term == "" {
			return q, invalid("please enter a search term")
		}
	}
	return q, nil
}

func decimalParam(c *gin.Context, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.Query(name)))
	if err != nil || d.IsNegative() {
		return decimal.Zero, invalid("please enter a valid " + name + " value")
	}
	return d, nil
}

// GET /api/books/recommended
func (s *Server) handleRecommended(c *gin.Context) {
	a := session(c).Auth()
	if err := a.Authorize(); err != nil {
		s.fail(c, err)
		return
	}
	books, err := s.catalog.Recommended(c.Request.Context(), a.Token())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"books": toBookViews(books)})
}

// GET /api/books/:id
func (s *Server) handleGetBook(c *gin.Context) {
	b, err := s.catalog.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"book": toBookView(b)})
}

func bindBook(c *gin.Context) (catalog.Book, error) {
	var b catalog.Book
	if err := c.ShouldBindJSON(&b); err != nil {
		return b, invalid("invalid book form")
	}
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	switch {
	case b.Title == "" || b.Author == "":
		return b, invalid("title and author are required")
	case b.Price.IsNegative():
		return b, invalid("price cannot be negative")
	case b.Inventory < 0:
		return b, invalid("inventory cannot be negative")
	}
	return b, nil
}

// POST /api/admin/books
func (s *Server) handleCreateBook(c *gin.Context) {
	a := session(c).Auth()
	if err := a.AuthorizeCatalogAdmin(); err != nil {
		s.fail(c, err)
		return
	}
	b, err := bindBook(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.catalog.CreateBook(c.Request.Context(), a.Token(), b); err != nil {
		s.fail(c, err)
		return
	}
	session(c).Notices.Info("Book created successfully")
	respond(c, http.StatusCreated, nil)
}

// PUT /api/admin/books/:id
func (s *Server) handleUpdateBook(c *gin.Context) {
	a := session(c).Auth()
	if err := a.AuthorizeCatalogAdmin(); err != nil {
		s.fail(c, err)
		return
	}
	b, err := bindBook(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	b.ID = c.Param("id")
	if err := s.catalog.UpdateBook(c.Request.Context(), a.Token(), b); err != nil {
		s.fail(c, err)
		return
	}
	s.invalidate(b.ID)
	session(c).Notices.Info("Book updated successfully")
	respond(c, http.StatusOK, nil)
}

// DELETE /api/admin/books/:id
func (s *Server) handleDeleteBook(c *gin.Context) {
	a := session(c).Auth()
	if err := a.AuthorizeCatalogAdmin(); err != nil {
		s.fail(c, err)
		return
	}
	id := c.Param("id")
	if err := s.catalog.DeleteBook(c.Request.Context(), a.Token(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.invalidate(id)
	session(c).Notices.Info("Book deleted successfully")
	respond(c, http.StatusOK, nil)
}

func (s *Server) invalidate(id string) {
	if s.prices != nil {
		s.prices.Invalidate(id)
	}
}
