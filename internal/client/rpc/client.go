// Package rpc is a typed client for the CollabHub HTTP API.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/infra/httpclient"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Error is a failed call. Code is the envelope code, or the HTTP status
// when the body was not an envelope.
type Error struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"error,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Msg, e.Detail)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Msg)
}

type envelope struct {
	Code  int             `json:"code"`
	Data  json.RawMessage `json:"data"`
	Msg   string          `json:"msg"`
	Error string          `json:"error"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New takes the API root, e.g. http://localhost:4000/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := sonic.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return &Error{Code: resp.StatusCode, Msg: http.StatusText(resp.StatusCode), Detail: string(raw)}
	}
	if env.Code != 0 || resp.StatusCode >= http.StatusBadRequest {
		code := env.Code
		if code == 0 {
			code = resp.StatusCode
		}
		return &Error{Code: code, Msg: env.Msg, Detail: env.Error}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates an account and keeps the returned token for later calls.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	var out AuthResult
	in := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	return &out, c.do(ctx, http.MethodGet, "/user/me", nil, nil, &out)
}

type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func (c *Client) UpdateMe(ctx context.Context, in ProfileUpdate) (*model.User, error) {
	var out model.User
	return &out, c.do(ctx, http.MethodPatch, "/user/me", nil, in, &out)
}

func (c *Client) GetTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	return out, c.do(ctx, http.MethodGet, "/task", nil, nil, &out)
}

type TaskInput struct {
	Title       string             `json:"title"`
	Description *string            `json:"description,omitempty"`
	Status      model.TaskStatus   `json:"status,omitempty"`
	Priority    model.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*model.Task, error) {
	var out model.Task
	return &out, c.do(ctx, http.MethodPost, "/task", nil, in, &out)
}

type TaskUpdate struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Status      *model.TaskStatus   `json:"status,omitempty"`
	Priority    *model.TaskPriority `json:"priority,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, in TaskUpdate) (*model.Task, error) {
	var out model.Task
	return &out, c.do(ctx, http.MethodPut, "/task/"+id.String(), nil, in, &out)
}

func (c *Client) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status model.TaskStatus) (*model.Task, error) {
	var out model.Task
	in := map[string]model.TaskStatus{"status": status}
	return &out, c.do(ctx, http.MethodPatch, "/task/"+id.String()+"/status", nil, in, &out)
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/task/"+id.String(), nil, nil, nil)
}

func (c *Client) GetSessions(ctx context.Context) ([]model.CollaborationSession, error) {
	var out []model.CollaborationSession
	return out, c.do(ctx, http.MethodGet, "/collab/session", nil, nil, &out)
}

type SessionInput struct {
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	Language string `json:"language,omitempty"`
}

func (c *Client) CreateSession(ctx context.Context, in SessionInput) (*model.CollaborationSession, error) {
	var out model.CollaborationSession
	return &out, c.do(ctx, http.MethodPost, "/collab/session", nil, in, &out)
}

func (c *Client) JoinSession(ctx context.Context, id uuid.UUID) (*model.CollaborationSession, error) {
	var out model.CollaborationSession
	return &out, c.do(ctx, http.MethodPost, "/collab/session/"+id.String()+"/members", nil, nil, &out)
}

func (c *Client) UpdateSessionCode(ctx context.Context, id uuid.UUID, code string) (*model.CollaborationSession, error) {
	var out model.CollaborationSession
	in := map[string]string{"code": code}
	return &out, c.do(ctx, http.MethodPut, "/collab/session/"+id.String()+"/code", nil, in, &out)
}

func (c *Client) CompileCode(ctx context.Context, code, language string) (*httpclient.CompileResult, error) {
	var out httpclient.CompileResult
	in := httpclient.CompileRequest{Code: code, Language: language}
	return &out, c.do(ctx, http.MethodPost, "/collab/compile", nil, in, &out)
}

type LogsPage struct {
	Items      []model.DeploymentLog `json:"items"`
	NextCursor string                `json:"next_cursor,omitempty"`
	HasMore    bool                  `json:"has_more"`
}

// GetDeploymentLogs pages newest first unless oldestFirst is set.
func (c *Client) GetDeploymentLogs(ctx context.Context, limit int, cursor string, oldestFirst bool) (*LogsPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if oldestFirst {
		q.Set("time_desc", "false")
	}
	var out LogsPage
	return &out, c.do(ctx, http.MethodGet, "/deployment/logs", q, nil, &out)
}

func (c *Client) GetDeploymentStats(ctx context.Context) (*model.DeploymentStats, error) {
	var out model.DeploymentStats
	return &out, c.do(ctx, http.MethodGet, "/deployment/stats", nil, nil, &out)
}

func (c *Client) TriggerDeployment(ctx context.Context, environment, branch string) (*model.DeploymentLog, error) {
	var out model.DeploymentLog
	in := map[string]string{"environment": environment, "branch": branch}
	return &out, c.do(ctx, http.MethodPost, "/deployment", nil, in, &out)
}
