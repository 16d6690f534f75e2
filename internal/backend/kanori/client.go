// Package kanori implements the service.Service interface over the kanori REST API.
package kanori

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kanori/internal/config"
	"kanori/internal/credentials"
	"kanori/internal/gateway"
	"kanori/internal/service"
)

// APITimeout is the default timeout for API calls.
const APITimeout = 10 * time.Second

// ErrInvalidCredentials is returned when login or registration is rejected.
var ErrInvalidCredentials = service.ErrInvalidCredentials

// Client implements service.Service using the request gateway.
type Client struct {
	gw      *gateway.Client
	creds   *credentials.Store
	timeout time.Duration
}

// New creates a client from the config directory's credentials and settings.
// It does not require a login: commands that need one check Authenticated.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	creds, err := credentials.Load(cfg.CredentialsPath())
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	gw := gateway.New(cfg.APIBase(), creds,
		gateway.WithLogger(logger),
		gateway.WithLogoutHook(func() {
			logger.Info("session expired, stored credentials removed")
		}),
	)
	return &Client{gw: gw, creds: creds, timeout: cfg.Timeout()}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, creds *credentials.Store, httpClient *http.Client) *Client {
	gw := gateway.New(baseURL, creds, gateway.WithHTTPClient(httpClient))
	return &Client{gw: gw, creds: creds, timeout: APITimeout}
}

// Authenticated reports whether a token pair is held.
func (c *Client) Authenticated() bool {
	return c.creds.LoggedIn()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

type tokenResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *service.User `json:"user,omitempty"`
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, req service.LoginRequest) (*service.User, error) {
	return c.authenticate(ctx, gateway.PathLogin, req)
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, req service.RegisterRequest) (*service.User, error) {
	return c.authenticate(ctx, gateway.PathRegister, req)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*service.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var res tokenResponse
	if err := c.gw.Post(ctx, path, body, &res); err != nil {
		if gateway.IsStatus(err, http.StatusUnauthorized) || gateway.IsStatus(err, http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, wrapError(err)
	}
	if res.Access == "" {
		return nil, fmt.Errorf("%w: login response has no access token", gateway.ErrDecode)
	}
	if err := c.creds.Install(res.Access, res.Refresh); err != nil {
		return nil, err
	}
	return res.User, nil
}

// Refresh implements service.Service.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.creds.RefreshToken()
	if refresh == "" {
		return fmt.Errorf("%w: %w", service.ErrSessionExpired, credentials.ErrNoRefreshToken)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var res tokenResponse
	if err := c.gw.Post(ctx, gateway.PathRefresh, map[string]string{"refresh": refresh}, &res); err != nil {
		return wrapError(err)
	}
	if res.Access == "" {
		return fmt.Errorf("%w: refresh response has no access token", gateway.ErrDecode)
	}
	return c.creds.Install(res.Access, res.Refresh)
}

// Logout implements service.Service.
func (c *Client) Logout(ctx context.Context) error {
	return c.creds.Clear()
}

// Me implements service.Service.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var user service.User
	if err := c.gw.Get(ctx, gateway.PathMe, &user); err != nil {
		return service.User{}, wrapError(err)
	}
	return user, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tasks, err := gateway.List[service.Task](ctx, c.gw, gateway.PathTasks)
	if err != nil {
		return nil, wrapError(err)
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var created service.Task
	if err := c.gw.Post(ctx, gateway.PathTasks, task, &created); err != nil {
		return service.Task{}, wrapError(err)
	}
	return created, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var updated service.Task
	if err := c.gw.Patch(ctx, gateway.Detail(gateway.PathTasks, id), patch, &updated); err != nil {
		return service.Task{}, wrapError(err)
	}
	return updated, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.gw.Delete(ctx, gateway.Detail(gateway.PathTasks, id), nil); err != nil {
		return wrapError(err)
	}
	return nil
}

// ListFocusSessions implements service.Service.
func (c *Client) ListFocusSessions(ctx context.Context) ([]service.FocusSession, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	sessions, err := gateway.List[service.FocusSession](ctx, c.gw, gateway.PathFocusSessions)
	if err != nil {
		return nil, wrapError(err)
	}
	return sessions, nil
}

// CreateFocusSession implements service.Service.
func (c *Client) CreateFocusSession(ctx context.Context, s service.NewFocusSession) (service.FocusSession, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	s.StartedAt = s.StartedAt.UTC()
	var created service.FocusSession
	if err := c.gw.Post(ctx, gateway.PathFocusSessions, s, &created); err != nil {
		return service.FocusSession{}, wrapError(err)
	}
	return created, nil
}

// EndFocusSession implements service.Service.
func (c *Client) EndFocusSession(ctx context.Context, id int64, end service.FocusSessionEnd) (service.FocusSession, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	end.EndedAt = end.EndedAt.UTC()
	var updated service.FocusSession
	if err := c.gw.Patch(ctx, gateway.Detail(gateway.PathFocusSessions, id), end, &updated); err != nil {
		return service.FocusSession{}, wrapError(err)
	}
	return updated, nil
}

// ListDaySummaries implements service.Service.
func (c *Client) ListDaySummaries(ctx context.Context) ([]service.DaySummary, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	items, err := gateway.List[service.DaySummary](ctx, c.gw, gateway.PathDaySummaries)
	if err != nil {
		return nil, wrapError(err)
	}
	return items, nil
}

// CreateDaySummary implements service.Service.
func (c *Client) CreateDaySummary(ctx context.Context, date, text string) (service.DaySummary, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body := map[string]string{"date": date, "summary_text": text}
	var created service.DaySummary
	if err := c.gw.Post(ctx, gateway.PathDaySummaries, body, &created); err != nil {
		return service.DaySummary{}, wrapError(err)
	}
	return created, nil
}

// UpdateDaySummary implements service.Service.
func (c *Client) UpdateDaySummary(ctx context.Context, id int64, text string) (service.DaySummary, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body := map[string]string{"summary_text": text}
	var updated service.DaySummary
	if err := c.gw.Patch(ctx, gateway.Detail(gateway.PathDaySummaries, id), body, &updated); err != nil {
		return service.DaySummary{}, wrapError(err)
	}
	return updated, nil
}

// wrapError adds a user-facing hint while keeping the error chain intact.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("request timed out: %w", err)
	case errors.Is(err, gateway.ErrAuthExpired):
		return fmt.Errorf("%w (run: kanori login): %w", service.ErrSessionExpired, err)
	case gateway.IsStatus(err, http.StatusForbidden):
		return fmt.Errorf("permission denied: %w", err)
	case gateway.IsStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %w", service.ErrNotFound, err)
	}
	return err
}
