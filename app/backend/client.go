package backend

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

	"MotoZonePos/app/models"
)

// Client talks to the remote backend's HTTP/JSON API. All responses use the
// backend's envelope format: {"success": bool, "data": ..., "message": ...}.
// A 401 from any endpoint maps to models.ErrUnauthorized so the session
// layer can force a logout and clear the token.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend client for the given base URL
// (e.g. "http://localhost:3000/api").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do performs one API call and decodes the envelope's data into out (when
// out is non-nil).
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return models.ErrUnauthorized
	case http.StatusNotFound:
		return models.ErrNotFound
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to decode response (%d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("backend error: %s", msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// Health probes GET /health. The caller bounds it with a context deadline;
// any transport error, timeout or non-success envelope is a failed probe.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// --- Auth ---

// LoginResult is the payload of a successful login or registration
type LoginResult struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Login authenticates against POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account via POST /auth/register
func (c *Client) Register(ctx context.Context, email, password, name, role string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
		"role":     role,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Profile fetches the authenticated user via GET /auth/profile
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Products ---

// Products lists the product collection
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct sends a draft; the backend assigns the id
func (c *Client) CreateProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPost, "/products", draft, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies a partial update and returns the merged entity
func (c *Client) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	var product models.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), patch, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil)
}

// --- Categories (served under the products resource) ---

// Categories lists the category collection
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.do(ctx, http.MethodGet, "/products/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateCategory sends a draft; the backend assigns the id
func (c *Client) CreateCategory(ctx context.Context, draft models.CategoryDraft) (*models.Category, error) {
	var category models.Category
	if err := c.do(ctx, http.MethodPost, "/products/categories", draft, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory applies a partial update and returns the merged entity
func (c *Client) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	var category models.Category
	if err := c.do(ctx, http.MethodPut, "/products/categories/"+url.PathEscape(id), patch, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/categories/"+url.PathEscape(id), nil, nil)
}

// --- Services ---

// Services lists the service collection
func (c *Client) Services(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	if err := c.do(ctx, http.MethodGet, "/services", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// CreateService sends a draft; the backend assigns the id
func (c *Client) CreateService(ctx context.Context, draft models.ServiceDraft) (*models.Service, error) {
	var service models.Service
	if err := c.do(ctx, http.MethodPost, "/services", draft, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// UpdateService applies a partial update and returns the merged entity
func (c *Client) UpdateService(ctx context.Context, id string, patch models.ServicePatch) (*models.Service, error) {
	var service models.Service
	if err := c.do(ctx, http.MethodPut, "/services/"+url.PathEscape(id), patch, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// DeleteService removes a service
func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/services/"+url.PathEscape(id), nil, nil)
}

// --- Sales ---

// Sales lists all sales
func (c *Client) Sales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	if err := c.do(ctx, http.MethodGet, "/sales", nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// CreateSale persists a sale draft; the backend assigns id and date
func (c *Client) CreateSale(ctx context.Context, draft models.SaleDraft) (*models.Sale, error) {
	var sale models.Sale
	if err := c.do(ctx, http.MethodPost, "/sales", draft, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// SaleByID fetches one sale with its items
func (c *Client) SaleByID(ctx context.Context, id string) (*models.Sale, error) {
	var sale models.Sale
	if err := c.do(ctx, http.MethodGet, "/sales/"+url.PathEscape(id), nil, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// SalesSummary fetches today / this month / all-time totals
func (c *Client) SalesSummary(ctx context.Context) (*models.SalesSummary, error) {
	var summary models.SalesSummary
	if err := c.do(ctx, http.MethodGet, "/sales/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SalesByDateRange fetches sales between two dates (inclusive)
func (c *Client) SalesByDateRange(ctx context.Context, startDate, endDate string) ([]models.Sale, error) {
	query := url.Values{}
	query.Set("start_date", startDate)
	query.Set("end_date", endDate)

	var sales []models.Sale
	if err := c.do(ctx, http.MethodGet, "/sales/date-range?"+query.Encode(), nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// SalesByCashier fetches the sales recorded by one user
func (c *Client) SalesByCashier(ctx context.Context, cashierID string) ([]models.Sale, error) {
	var sales []models.Sale
	if err := c.do(ctx, http.MethodGet, "/sales/cashier/"+url.PathEscape(cashierID), nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// SaleItems fetches every sale line flattened with its sale context
func (c *Client) SaleItems(ctx context.Context) ([]models.SaleItemRecord, error) {
	var items []models.SaleItemRecord
	if err := c.do(ctx, http.MethodGet, "/sale-items", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ProductSalesStats fetches the product best-seller ranking
func (c *Client) ProductSalesStats(ctx context.Context) (*models.ProductSalesStats, error) {
	var stats models.ProductSalesStats
	if err := c.do(ctx, http.MethodGet, "/products/stats/sales", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ServiceSalesStats fetches the service best-seller ranking
func (c *Client) ServiceSalesStats(ctx context.Context) (*models.ServiceSalesStats, error) {
	var stats models.ServiceSalesStats
	if err := c.do(ctx, http.MethodGet, "/products/stats/services", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
