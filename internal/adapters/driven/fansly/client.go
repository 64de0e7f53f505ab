package fansly

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

const (
	// DefaultBaseURL is the API root.
	DefaultBaseURL = "https://apiv3.fansly.com/api/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "FanslySync/1.0.0"

	// maxBodyBytes bounds how much of a response is read.
	maxBodyBytes = 32 << 20
)

// Ensure Client implements the interface.
var _ driven.AccountAPI = (*Client)(nil)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string

	// Transport is the base RoundTripper; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client reads account state from the Fansly API.
type Client struct {
	baseURL     *url.URL
	userAgent   string
	timeout     time.Duration
	transport   http.RoundTripper
	rateLimiter *RateLimiter

	mu         sync.Mutex
	http       *http.Client
	credential string
}

// NewClient creates a new API client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", domain.ErrInvalidInput, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q is not absolute", domain.ErrInvalidInput, opts.BaseURL)
	}

	return &Client{
		baseURL:     base,
		userAgent:   opts.UserAgent,
		timeout:     opts.Timeout,
		transport:   opts.Transport,
		rateLimiter: NewRateLimiter(opts.RequestsPerSecond),
	}, nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context, credential string) (*domain.Me, error) {
	var body domain.MeResponse
	if err := c.get(ctx, credential, "get profile", "/account/me", nil, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &domain.ShapeError{Op: "get profile", Detail: "success=false"}
	}
	return &body.Response, nil
}

// Accounts looks up accounts by id.
func (c *Client) Accounts(ctx context.Context, credential string, ids []string) (*domain.AccountInfoResponse, error) {
	if len(ids) == 0 {
		return &domain.AccountInfoResponse{Success: true, Response: []domain.AccountInfo{}}, nil
	}

	query := url.Values{"ids": {strings.Join(ids, ",")}}
	var body domain.AccountInfoResponse
	if err := c.get(ctx, credential, "get accounts", "/account", query, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &domain.ShapeError{Op: "get accounts", Detail: "success=false"}
	}
	return &body, nil
}

// Followers returns one page of the account's followers.
func (c *Client) Followers(
	ctx context.Context,
	credential, accountID string,
	offset, limit int,
) ([]domain.Follower, error) {
	query := url.Values{
		"ngsw-bypass": {"true"},
		"limit":       {strconv.Itoa(limit)},
		"offset":      {strconv.Itoa(offset)},
	}
	path := "/account/" + url.PathEscape(accountID) + "/followers"

	var body domain.FollowersPage
	if err := c.get(ctx, credential, "list followers", path, query, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &domain.ShapeError{Op: "list followers", Detail: "success=false"}
	}

	logger.Debug("Got %d followers from API", len(body.Response))
	return body.Response, nil
}

// Subscribers returns one page of active and expired subscriptions.
func (c *Client) Subscribers(ctx context.Context, credential string, offset, limit int) ([]domain.Subscriber, error) {
	query := url.Values{
		"status":      {"3,4"},
		"limit":       {strconv.Itoa(limit)},
		"offset":      {strconv.Itoa(offset)},
		"ngsw-bypass": {"true"},
	}

	var body domain.SubscribersPage
	if err := c.get(ctx, credential, "list subscribers", "/subscribers", query, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &domain.ShapeError{Op: "list subscribers", Detail: "success=false"}
	}

	logger.Debug("Got %d subscriptions from API", len(body.Response.Subscriptions))
	return body.Response.Subscriptions, nil
}

// RateLimiter exposes the limiter for inspection.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// get performs a throttled, authorized GET and decodes the JSON body into out.
func (c *Client) get(
	ctx context.Context,
	credential, op, path string,
	query url.Values,
	out any,
) error {
	if credential == "" {
		return &domain.AuthError{Op: op, Err: domain.ErrMissingCredential}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return transportError(op, fmt.Errorf("rate limit wait: %w", err))
	}

	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.client(credential).Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return transportError(op, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		mapped := statusError(op, resp, body)
		if ra := domain.RetryAfter(mapped); ra > 0 {
			c.rateLimiter.Pause(ra)
		}
		return mapped
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domain.ShapeError{Op: op, Detail: "undecodable response", Err: err}
	}
	return nil
}

// client returns an HTTP client authorized with credential, building a
// new one when the credential changes.
func (c *Client) client(credential string) *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.http != nil && c.credential == credential {
		return c.http
	}

	ts := oauth2.ReuseTokenSource(nil, oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: credential},
	))
	c.http = &http.Client{
		Timeout: c.timeout,
		Transport: &authTransport{
			Source:    ts,
			UserAgent: c.userAgent,
			Base:      c.transport,
		},
	}
	c.credential = credential
	return c.http
}
