package client

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
	"sync"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/client/models"
	"github.com/dmitrijs2005/todokeeper/internal/common"
)

const apiPrefix = "/api/v1"

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API served at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + apiPrefix,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *HTTPClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

func (c *HTTPClient) IsLoggedIn() bool {
	a, _ := c.tokens()
	return a != ""
}

// Logout forgets the token pair. The server keeps no session to end.
func (c *HTTPClient) Logout() {
	c.setTokens("", "")
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	body := map[string]string{"email": email, "username": username, "password": password}
	var u models.User
	if err := c.send(ctx, http.MethodPost, "/auth/register", "", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var tp models.TokenPair
	if err := c.send(ctx, http.MethodPost, "/auth/login", "", body, &tp); err != nil {
		return err
	}
	c.setTokens(tp.AccessToken, tp.RefreshToken)
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.authorized(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListTodos(ctx context.Context, page, perPage int) (*models.TodoPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var p models.TodoPage
	if err := c.authorized(ctx, http.MethodGet, "/todos?"+q.Encode(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	var t models.Todo
	if err := c.authorized(ctx, http.MethodPost, "/todos", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) GetTodo(ctx context.Context, id int64) (*models.Todo, error) {
	var t models.Todo
	if err := c.authorized(ctx, http.MethodGet, todoPath(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) ToggleTodo(ctx context.Context, id int64) (*models.Todo, error) {
	var t models.Todo
	if err := c.authorized(ctx, http.MethodPost, todoPath(id)+"/toggle", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *HTTPClient) DeleteTodo(ctx context.Context, id int64) error {
	return c.authorized(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

// authorized sends an access-token request. On 401 the token pair is
// refreshed once and the request repeated.
func (c *HTTPClient) authorized(ctx context.Context, method, path string, in, out any) error {
	access, refresh := c.tokens()
	if access == "" {
		return ErrUnauthorized
	}

	err := c.send(ctx, method, path, access, in, out)
	if err == nil || !errors.Is(err, ErrUnauthorized) || refresh == "" {
		return err
	}

	if err := c.refresh(ctx, refresh); err != nil {
		return err
	}

	access, _ = c.tokens()
	return c.send(ctx, method, path, access, in, out)
}

// refresh rotates the token pair. A rejected refresh token ends the session.
func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) error {
	var tp models.TokenPair
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", refreshToken, nil, &tp); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.Logout()
		}
		return err
	}
	c.setTokens(tp.AccessToken, tp.RefreshToken)
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
	}
	return apiErr
}
