// Package jsonplaceholder implements the service.Backend interface over a
// JSONPlaceholder-style posts REST API.
package jsonplaceholder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"

	"labposts/internal/service"
	"labposts/internal/wire"
)

const (
	// DefaultBaseURL is the public demo API.
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 10 * time.Second

	// postsPath is the collection path below the base URL.
	postsPath = "/posts"
)

// Client implements service.Backend over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client (for testing).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit paces outbound requests to perSecond. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url: unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListItems returns the posts collection in API order.
func (c *Client) ListItems(ctx context.Context) ([]service.Item, error) {
	var posts []wire.Post
	if err := c.do(ctx, "list posts", http.MethodGet, postsPath, nil, &posts); err != nil {
		return nil, err
	}

	items := make([]service.Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, p.ToItem())
	}
	return items, nil
}

// GetItem returns a single post.
func (c *Client) GetItem(ctx context.Context, id int) (service.Item, error) {
	var post wire.Post
	if err := c.do(ctx, "get post", http.MethodGet, itemPath(id), nil, &post); err != nil {
		return service.Item{}, err
	}
	if post.ID == 0 {
		return service.Item{}, &service.DecodeError{Op: "get post", Err: errors.New("missing id")}
	}
	return post.ToItem(), nil
}

// CreateItem creates a post. The API assigns the ID.
func (c *Client) CreateItem(ctx context.Context, title, description string) (service.Item, error) {
	req := wire.Post{Title: title, Body: description, UserID: wire.UserID}

	var post wire.Post
	if err := c.do(ctx, "create post", http.MethodPost, postsPath, req, &post); err != nil {
		return service.Item{}, err
	}
	if post.ID == 0 {
		return service.Item{}, &service.DecodeError{Op: "create post", Err: errors.New("missing id")}
	}
	return post.ToItem(), nil
}

// ReplaceItem sends a full replacement of the post. Fields not sent are
// not preserved upstream.
func (c *Client) ReplaceItem(ctx context.Context, id int, title, description string) (service.Item, error) {
	req := wire.Post{ID: id, Title: title, Body: description, UserID: wire.UserID}

	var post wire.Post
	if err := c.do(ctx, "replace post", http.MethodPut, itemPath(id), req, &post); err != nil {
		return service.Item{}, err
	}
	// The echo may omit the id; it is immutable, so keep ours.
	post.ID = id
	return post.ToItem(), nil
}

// DeleteItem deletes a post.
func (c *Client) DeleteItem(ctx context.Context, id int) error {
	return c.do(ctx, "delete post", http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id int) string {
	return postsPath + "/" + strconv.Itoa(id)
}

// do performs one round trip: encode body, send, check status, decode into out.
// out may be nil when the response body is ignored.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				// Wait refuses early when the deadline cannot be met.
				err = fmt.Errorf("%v: %w", err, context.DeadlineExceeded)
			}
			return &service.TransportError{Op: op, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "method", method, "path", u.Path, "request_id", requestID, "error", err)
		return &service.TransportError{Op: op, Err: err}
	}
	defer googleapi.CloseBody(resp)

	c.logger.Debug("request", "op", op, "method", method, "path", u.Path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", requestID)

	if err := googleapi.CheckResponse(resp); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return &service.RemoteError{Op: op, StatusCode: apiErr.Code, Body: apiErr.Body}
		}
		return &service.RemoteError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return &service.TransportError{Op: op, Err: ctx.Err()}
		}
		return &service.DecodeError{Op: op, Err: err}
	}
	return nil
}
