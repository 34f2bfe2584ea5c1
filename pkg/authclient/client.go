// Package authclient is a small HTTP client for the role_gate API.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authclient: status %d", e.Status)
	}
	return fmt.Sprintf("authclient: status %d: %s", e.Status, e.Message)
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type SearchResponse struct {
	Total int64  `json:"total"`
	Users []User `json:"users"`
}

func (c *Client) Register(ctx context.Context, name, email, password, role string) error {
	body := map[string]string{"name": name, "email": email, "password": password, "role": role}
	return c.do(ctx, http.MethodPost, "/register", "", body, nil)
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LogOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Dashboard fetches the dashboard of the given role and returns its message.
func (c *Client) Dashboard(ctx context.Context, token, role string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodGet, "/dashboard/"+url.PathEscape(role), token, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) SearchUsers(ctx context.Context, token, query string, page, size int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}

	var out SearchResponse
	if err := c.do(ctx, http.MethodGet, "/dashboard/admin/users?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
