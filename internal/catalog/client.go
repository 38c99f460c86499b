package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahinestrog/mybookstore-storefront/internal/rest"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrInvalidSearch = errors.New("invalid search")
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")
)

type Client struct {
	rest *rest.Client
}

func NewClient(rc *rest.Client) *Client { return &Client{rest: rc} }

func (c *Client) GetBook(ctx context.Context, id string) (Book, error) {
	if strings.TrimSpace(id) == "" {
		return Book{}, fmt.Errorf("book %q: %w", id, ErrNotFound)
	}
	var b Book
	err := c.rest.Do(ctx, http.MethodGet, "/books/"+url.PathEscape(id), "", nil, &b)
	if rest.HasStatus(err, http.StatusNotFound) {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var out []Book
	err := c.rest.Do(ctx, http.MethodGet, "/books", "", nil, &out)
	return out, err
}

// Recommended needs the user's token; the backend personalises the list.
func (c *Client) Recommended(ctx context.Context, token string) ([]Book, error) {
	var out []Book
	err := c.rest.Do(ctx, http.MethodGet, "/books/recommended", token, nil, &out)
	return out, err
}

func (c *Client) Search(ctx context.Context, q Query) ([]Book, error) {
	path, err := searchPath(q)
	if err != nil {
		return nil, err
	}
	var out []Book
	err = c.rest.Do(ctx, http.MethodGet, path, "", nil, &out)
	return out, err
}

func searchPath(q Query) (string, error) {
	v := url.Values{}
	term := strings.TrimSpace(q.Term)
	switch q.Kind {
	case SearchTitle:
		v.Set("keyword", term)
		return "/books/search?" + v.Encode(), nil
	case SearchAuthor:
		v.Set("author", term)
		return "/books/search/author?" + v.Encode(), nil
	case SearchPublisher:
		v.Set("publisher", term)
		return "/books/search/publisher?" + v.Encode(), nil
	case SearchISBN:
		v.Set("isbn", term)
		return "/books/search/isbn?" + v.Encode(), nil
	case SearchPrice:
		if q.Max.LessThan(q.Min) {
			return "", fmt.Errorf("max price below min price: %w", ErrInvalidSearch)
		}
		v.Set("minPrice", q.Min.String())
		v.Set("maxPrice", q.Max.String())
		return "/books/filter/price?" + v.Encode(), nil
	case SearchInventory:
		v.Set("minInventory", q.Min.Truncate(0).String())
		return "/books/filter/inventory?" + v.Encode(), nil
	default:
		return "", fmt.Errorf("search type %q: %w", q.Kind, ErrInvalidSearch)
	}
}

// bookPayload sends price as a JSON number; decimal.Decimal marshals as a string.
type bookPayload struct {
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Publisher   string      `json:"publisher,omitempty"`
	ISBN        string      `json:"isbn,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price"`
	Inventory   int         `json:"inventory"`
	ImageName   string      `json:"imageName,omitempty"`
}

func toPayload(b Book) bookPayload {
	return bookPayload{
		ID: b.ID, Title: b.Title, Author: b.Author, Publisher: b.Publisher,
		ISBN: b.ISBN, Description: b.Description, Price: json.Number(b.Price.String()),
		Inventory: b.Inventory, ImageName: b.ImageName,
	}
}

func (c *Client) CreateBook(ctx context.Context, token string, b Book) error {
	err := c.rest.Do(ctx, http.MethodPost, "/books", token, toPayload(b), nil)
	var se *rest.StatusError
	if errors.As(err, &se) && strings.Contains(se.Message, "ISBN") {
		return fmt.Errorf("%s: %w", b.ISBN, ErrDuplicateISBN)
	}
	return err
}

func (c *Client) UpdateBook(ctx context.Context, token string, b Book) error {
	if b.ID == "" {
		return fmt.Errorf("update without id: %w", ErrNotFound)
	}
	err := c.rest.Do(ctx, http.MethodPut, "/books/"+url.PathEscape(b.ID), token, toPayload(b), nil)
	if rest.HasStatus(err, http.StatusNotFound) {
		return fmt.Errorf("book %s: %w", b.ID, ErrNotFound)
	}
	return err
}

func (c *Client) DeleteBook(ctx context.Context, token, id string) error {
	err := c.rest.Do(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), token, nil, nil)
	if rest.HasStatus(err, http.StatusNotFound) {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	return err
}
