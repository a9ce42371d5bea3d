// Package grcapi is a client of the compliance backend REST API. It lets a wizard run
// outside the backend process.
package grcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/utils/safe"
	"github.com/secmon-lab/themis/pkg/wizard"
)

// ErrStatus is returned for responses outside 2xx
var ErrStatus = goerr.New("unexpected response status")

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

var (
	_ wizard.RiskService      = &Client{}
	_ wizard.DepartmentSource = &Client{}
	_ wizard.TaskService      = &Client{}
)

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// New creates a client of the backend served at baseURL such as "http://localhost:4000"
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid backend URL", goerr.V("url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("backend URL must be http or https", goerr.V("url", baseURL))
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do sends a request with the session's bearer token and decodes a JSON response into out.
// A nil session sends no Authorization header.
func (c *Client) do(ctx context.Context, session *auth.Session, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to marshal request", goerr.V("path", path))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create request", goerr.V("path", path))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(err, "request failed", goerr.V("method", method), goerr.V("path", path))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&errBody)
		return resp.StatusCode, goerr.Wrap(ErrStatus, "backend returned error",
			goerr.V("method", method),
			goerr.V("path", path),
			goerr.V("status", resp.StatusCode),
			goerr.V("error", errBody.Error))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, goerr.Wrap(err, "failed to decode response", goerr.V("path", path))
		}
	}
	return resp.StatusCode, nil
}

// GetAllRiskIDs returns the IDs of every risk
func (c *Client) GetAllRiskIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := c.do(ctx, auth.SessionFromContext(ctx), http.MethodGet, "/api/risks/ids", nil, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// GetRiskByID returns the risk, or nil without error when it does not exist
func (c *Client) GetRiskByID(ctx context.Context, riskID string) (*model.Risk, error) {
	var risk model.Risk
	status, err := c.do(ctx, auth.SessionFromContext(ctx), http.MethodGet, "/api/risks/"+url.PathEscape(riskID), nil, &risk)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &risk, nil
}

// SaveRisk creates or replaces the risk keyed by its risk ID
func (c *Client) SaveRisk(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	var saved model.Risk
	if _, err := c.do(ctx, auth.SessionFromContext(ctx), http.MethodPost, "/api/risks", risk, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListDepartments returns the department descriptors visible to session
func (c *Client) ListDepartments(ctx context.Context, session *auth.Session) ([]*model.Department, error) {
	var departments []*model.Department
	if _, err := c.do(ctx, session, http.MethodGet, "/api/users/departments", nil, &departments); err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []*model.Department{}
	}
	return departments, nil
}

// SaveTask creates the task
func (c *Client) SaveTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	req := struct {
		RiskID      string `json:"riskId"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Assignee    string `json:"assignee"`
		Status      string `json:"status,omitempty"`
		DueDate     string `json:"dueDate,omitempty"`
	}{
		RiskID:      task.RiskID,
		Title:       task.Title,
		Description: task.Description,
		Assignee:    task.Assignee,
		Status:      task.Status.String(),
		DueDate:     task.DueDate,
	}

	var saved model.Task
	if _, err := c.do(ctx, auth.SessionFromContext(ctx), http.MethodPost, "/api/tasks", req, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
