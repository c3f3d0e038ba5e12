// Package pyrus is a REST client of the Pyrus task platform.
package pyrus

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"crosstab/internal/domain/form"
	"crosstab/internal/domain/reports"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.pyrus.com/v4"

// Config configures the client.
type Config struct {
	BaseURL string
	// AuthURL defaults to BaseURL.
	AuthURL    string
	Timeout    time.Duration
	RetryCount int
}

// APIError is a non-2xx platform response.
type APIError struct {
	Status    int    `json:"-"`
	Message   string `json:"error"`
	ErrorCode string `json:"error_code"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("pyrus: %d %s: %s", e.Status, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("pyrus: %d %s", e.Status, e.Message)
}

// Client calls the platform on behalf of one bot token.
type Client struct {
	http *resty.Client
}

// New creates a client authorized with accessToken.
func New(cfg Config, accessToken string) *Client {
	c := newResty(cfg, cfg.BaseURL).
		SetAuthToken(accessToken)
	return &Client{http: c}
}

func newResty(cfg Config, baseURL string) *resty.Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryCondition)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	return c
}

// retryCondition retries reads only; comments are not idempotent.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// Authenticate exchanges bot credentials for an access token.
func Authenticate(ctx context.Context, cfg Config, login, securityKey string) (string, error) {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = cfg.BaseURL
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	resp, err := newResty(cfg, authURL).R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(map[string]string{"login": login, "security_key": securityKey}).
		SetResult(&out).
		SetError(&APIError{}).
		Post("/auth")
	if err := check(resp, err); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &APIError{Status: resp.StatusCode(), Message: "empty access token"}
	}
	return out.AccessToken, nil
}

// Task returns a task with its field values.
func (c *Client) Task(ctx context.Context, taskID int) (*form.Task, error) {
	var out struct {
		Task form.Task `json:"task"`
	}
	if err := c.get(ctx, "/tasks/"+strconv.Itoa(taskID), &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// Form returns a form template.
func (c *Client) Form(ctx context.Context, formID int) (*form.Form, error) {
	var out form.Form
	if err := c.get(ctx, "/forms/"+strconv.Itoa(formID), &out); err != nil {
		return nil, err
	}
	if out.ID == 0 {
		out.ID = formID
	}
	return &out, nil
}

// Registry returns all tasks of a form.
func (c *Client) Registry(ctx context.Context, formID int) (*form.Registry, error) {
	var out form.Registry
	if err := c.get(ctx, "/forms/"+strconv.Itoa(formID)+"/register", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Catalog returns a catalog with its items.
func (c *Client) Catalog(ctx context.Context, catalogID int) (*form.Catalog, error) {
	var out form.Catalog
	if err := c.get(ctx, "/catalogs/"+strconv.Itoa(catalogID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Contacts returns the contact directory visible to the bot.
func (c *Client) Contacts(ctx context.Context) (*form.Contacts, error) {
	var out form.Contacts
	if err := c.get(ctx, "/contacts", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommentTask posts a comment on a task.
func (c *Client) CommentTask(ctx context.Context, taskID int, comment form.Comment) error {
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetBody(comment).
		SetError(&APIError{}).
		Post("/tasks/" + strconv.Itoa(taskID) + "/comments")
	return check(resp, err)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(out).
		SetError(&APIError{}).
		Get(path)
	return check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("pyrus request: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

var _ reports.Store = (*Client)(nil)
