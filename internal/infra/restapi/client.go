// Package restapi implements domain.IssueGateway against the git-issue REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/runoshun/git-issue/internal/domain"
)

// Client talks to the issue server over HTTP/JSON.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter // nil means unlimited
	logger     *slog.Logger
	baseURL    string
}

// Ensure Client implements domain.IssueGateway.
var _ domain.IssueGateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit limits outgoing requests to rps per second with the given
// burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the API rooted at baseURL,
// e.g. "http://localhost:5555/api/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: domain.DefaultAPITimeout},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Method string
	Path   string
	Body   string
	Code   int
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: server returned %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: server returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// response is a raw HTTP answer.
type response struct {
	body []byte
	code int
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("request done",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return &response{code: resp.StatusCode, body: respBytes}, nil
}

func statusError(method, path string, r *response) error {
	return &StatusError{
		Method: method,
		Path:   path,
		Code:   r.code,
		Body:   strings.TrimSpace(string(r.body)),
	}
}

func decode[T any](r *response, what string) (T, error) {
	var v T
	if err := json.Unmarshal(r.body, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", what, err)
	}
	return v, nil
}

func issuePath(id string) string {
	return "/issues/" + url.PathEscape(id)
}

func pageQuery(page, limit int) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}

// FetchByID retrieves a single issue. A 404 yields domain.ErrIssueNotFound.
func (c *Client) FetchByID(ctx context.Context, id string) (*domain.IssueResult, error) {
	path := issuePath(id)
	r, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	switch r.code {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrIssueNotFound, id)
	default:
		return nil, statusError(http.MethodGet, path, r)
	}

	env, err := decode[envelope[*domain.Issue]](r, "issue")
	if err != nil {
		return nil, err
	}
	return &domain.IssueResult{CurrentUser: env.User, Issue: env.Payload}, nil
}

// FetchPage retrieves one page of issues together with the total count.
func (c *Client) FetchPage(ctx context.Context, page, limit int) (*domain.IssuePage, error) {
	r, err := c.do(ctx, http.MethodGet, "/issues", pageQuery(page, limit), nil)
	if err != nil {
		return nil, err
	}
	if r.code != http.StatusOK {
		return nil, statusError(http.MethodGet, "/issues", r)
	}

	env, err := decode[envelope[issueList]](r, "issue list")
	if err != nil {
		return nil, err
	}
	return &domain.IssuePage{
		CurrentUser: env.User,
		Issues:      env.Payload.Issues,
		TotalCount:  env.Payload.Count,
	}, nil
}

// FetchStatusIndicators returns the status names known to the server.
func (c *Client) FetchStatusIndicators(ctx context.Context) ([]string, error) {
	r, err := c.do(ctx, http.MethodGet, "/status-indicators", nil, nil)
	if err != nil {
		return nil, err
	}
	if r.code != http.StatusOK {
		return nil, statusError(http.MethodGet, "/status-indicators", r)
	}
	return decode[[]string](r, "status indicators")
}

// Create creates an issue. The server assigns the ID.
func (c *Client) Create(ctx context.Context, issue domain.Issue) (*domain.IssueResult, error) {
	r, err := c.do(ctx, http.MethodPost, "/issues", nil, issue)
	if err != nil {
		return nil, err
	}
	if r.code != http.StatusCreated && r.code != http.StatusOK {
		return nil, statusError(http.MethodPost, "/issues", r)
	}

	env, err := decode[envelope[*domain.Issue]](r, "created issue")
	if err != nil {
		return nil, err
	}
	return &domain.IssueResult{CurrentUser: env.User, Issue: env.Payload}, nil
}

// Edit stores the issue under its ID. 200 means updated, 201 means the
// server created it. An empty body yields a result without an issue.
func (c *Client) Edit(ctx context.Context, issue domain.Issue) (*domain.EditResult, error) {
	path := issuePath(issue.ID)
	r, err := c.do(ctx, http.MethodPut, path, nil, issue)
	if err != nil {
		return nil, err
	}

	res := &domain.EditResult{}
	switch r.code {
	case http.StatusOK:
		res.WasUpdate = true
	case http.StatusCreated:
		res.WasUpdate = false
	default:
		return nil, statusError(http.MethodPut, path, r)
	}
	if len(bytes.TrimSpace(r.body)) == 0 {
		return res, nil
	}

	env, err := decode[envelope[*domain.Issue]](r, "edited issue")
	if err != nil {
		return nil, err
	}
	res.CurrentUser = env.User
	res.Issue = env.Payload
	return res, nil
}

// FetchComments retrieves one page of comments for an issue.
func (c *Client) FetchComments(ctx context.Context, issueID string, page, limit int) ([]domain.Comment, error) {
	path := issuePath(issueID) + "/comments"
	r, err := c.do(ctx, http.MethodGet, path, pageQuery(page, limit), nil)
	if err != nil {
		return nil, err
	}
	switch r.code {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", domain.ErrIssueNotFound, issueID)
	default:
		return nil, statusError(http.MethodGet, path, r)
	}
	return decode[[]domain.Comment](r, "comments")
}

// AddComment adds a comment to an issue.
func (c *Client) AddComment(ctx context.Context, issueID, text string) (*domain.Comment, error) {
	path := issuePath(issueID) + "/comments"
	r, err := c.do(ctx, http.MethodPost, path, nil, commentRequest{Comment: text})
	if err != nil {
		return nil, err
	}
	switch r.code {
	case http.StatusCreated, http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrIssueNotFound, issueID)
	default:
		return nil, statusError(http.MethodPost, path, r)
	}

	comment, err := decode[domain.Comment](r, "comment")
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
