// Package client is the Go SDK for the despensa REST API. It mirrors what
// the web frontend's service layer does: bearer-token auth, a pagination
// normalizer tolerant of legacy response shapes, and cached resource
// stores with optimistic mutation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds every request round-trip.
const DefaultTimeout = 10 * time.Second

// APIError is an error the server answered with. A request that never
// reached the server returns a plain transport error instead, so callers
// can tell "backend said no" apart from "network is down".
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to the despensa API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the given base URL (e.g. "https://api.example.com").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do performs a request and decodes the response into out (unless nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure; the server never answered.
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// newAPIError extracts the server's {"error": "..."} message when present.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	message := http.StatusText(status)
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			message = payload.Error
		} else if payload.Message != "" {
			message = payload.Message
		}
	}
	return &APIError{StatusCode: status, Message: message}
}

// ==================== Wire types ====================

// List is the client-side view of a shopping list.
type List struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Recurring       bool       `json:"recurring"`
	OwnerID         uint       `json:"owner_id"`
	LastPurchasedAt *time.Time `json:"last_purchased_at,omitempty"`
	Items           []Item     `json:"items,omitempty"`
	Shares          []Share    `json:"shares,omitempty"`
}

// Item is the client-side view of a list item.
type Item struct {
	ID         uint    `json:"id"`
	ListID     uint    `json:"list_id"`
	ProductID  uint    `json:"product_id"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit,omitempty"`
	Purchased  bool    `json:"purchased"`
	CategoryID *uint   `json:"category_id,omitempty"`
}

// Share is the client-side view of a grant.
type Share struct {
	ID     uint   `json:"id"`
	Email  string `json:"email"`
	UserID *uint  `json:"user_id,omitempty"`
}

// Pantry is the client-side view of a pantry.
type Pantry struct {
	ID     uint    `json:"id"`
	Name   string  `json:"name"`
	Shares []Share `json:"shares,omitempty"`
}

// Purchase is the client-side view of a history snapshot.
type Purchase struct {
	ID        uint      `json:"id"`
	ListID    uint      `json:"list_id"`
	ListName  string    `json:"list_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials for Login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the token payload returned by auth endpoints.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ItemPatch carries partial list-item updates.
type ItemPatch struct {
	Quantity   *float64 `json:"quantity,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	Purchased  *bool    `json:"purchased,omitempty"`
	CategoryID *uint    `json:"category_id,omitempty"`
}

// ==================== Auth ====================

// Login authenticates and stores the access token on the client.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, creds, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

// Refresh exchanges a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var session Session
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil, body, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

// ==================== Lists ====================

// ListLists fetches one page of lists, normalizing whatever envelope the
// deployment answers with.
func (c *Client) ListLists(ctx context.Context, page, perPage int) ([]List, Meta, error) {
	query := pageQuery(page, perPage)

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/shopping-lists", query, nil, &raw); err != nil {
		return nil, Meta{}, err
	}

	normalized, err := NormalizePage(raw, page, perPage)
	if err != nil {
		return nil, Meta{}, err
	}

	lists := make([]List, 0, len(normalized.Data))
	for _, entry := range normalized.Data {
		var list List
		if err := json.Unmarshal(entry, &list); err != nil {
			return nil, Meta{}, fmt.Errorf("decode list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, normalized.Meta, nil
}

// CreateList creates a shopping list.
func (c *Client) CreateList(ctx context.Context, name string, recurring bool) (*List, error) {
	var list List
	body := map[string]interface{}{"name": name, "recurring": recurring}
	if err := c.do(ctx, http.MethodPost, "/api/shopping-lists", nil, body, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DeleteList removes a list.
func (c *Client) DeleteList(ctx context.Context, listID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/shopping-lists/%d", listID), nil, nil, nil)
}

// ListItems fetches one page of a list's items.
func (c *Client) ListItems(ctx context.Context, listID uint, page, perPage int) ([]Item, Meta, error) {
	query := pageQuery(page, perPage)

	var raw json.RawMessage
	path := fmt.Sprintf("/api/shopping-lists/%d/items", listID)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, Meta{}, err
	}

	normalized, err := NormalizePage(raw, page, perPage)
	if err != nil {
		return nil, Meta{}, err
	}

	items := make([]Item, 0, len(normalized.Data))
	for _, entry := range normalized.Data {
		var item Item
		if err := json.Unmarshal(entry, &item); err != nil {
			return nil, Meta{}, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, item)
	}
	return items, normalized.Meta, nil
}

// UpdateItem patches a list item.
func (c *Client) UpdateItem(ctx context.Context, listID, itemID uint, patch ItemPatch) (*Item, error) {
	var item Item
	path := fmt.Sprintf("/api/shopping-lists/%d/items/%d", listID, itemID)
	if err := c.do(ctx, http.MethodPut, path, nil, patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PurchaseList marks every item purchased and returns the snapshot.
func (c *Client) PurchaseList(ctx context.Context, listID uint) (*Purchase, error) {
	var purchase Purchase
	path := fmt.Sprintf("/api/shopping-lists/%d/purchase", listID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &purchase); err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ResetList marks every item pending again.
func (c *Client) ResetList(ctx context.Context, listID uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/shopping-lists/%d/reset", listID), nil, nil, nil)
}

// RestorePurchase creates a fresh list from a snapshot.
func (c *Client) RestorePurchase(ctx context.Context, purchaseID uint) (*List, error) {
	var list List
	path := fmt.Sprintf("/api/purchases/%d/restore", purchaseID)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func pageQuery(page, perPage int) url.Values {
	query := url.Values{}
	if page > 0 {
		query.Set("page", fmt.Sprintf("%d", page))
	}
	if perPage > 0 {
		query.Set("per_page", fmt.Sprintf("%d", perPage))
	}
	return query
}
