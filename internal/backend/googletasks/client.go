// Package googletasks reads open tasks from Google Tasks so they can be
// imported into the board.
package googletasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"kanori/internal/config"
	"kanori/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	// Scope is the read-only Google Tasks scope; importing never writes back.
	Scope = tasks.TasksReadonlyScope
)

var (
	// ErrListNotFound is returned when no list has the requested name.
	ErrListNotFound = errors.New("google tasks list not found")

	// ErrAmbiguousList is returned when several lists share the requested name.
	ErrAmbiguousList = errors.New("ambiguous google tasks list name")
)

// Item is an open Google task.
type Item struct {
	ID    string
	Title string
	Notes string
}

// NewTask converts the item into a todo card.
func (i Item) NewTask() service.NewTask {
	return service.NewTask{
		Title:       strings.TrimSpace(i.Title),
		Description: strings.TrimSpace(i.Notes),
		Status:      service.StatusTodo,
	}
}

// Client reads task lists from Google Tasks.
type Client struct {
	svc *tasks.Service
}

// OAuthConfig parses the downloaded OAuth client file.
func OAuthConfig(clientJSON []byte) (*oauth2.Config, error) {
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleClientFile, err)
	}
	return oauthConfig, nil
}

// New creates a client from the OAuth client and token files in the config dir.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.GoogleClientPath())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", config.GoogleClientFile, err)
	}
	oauthConfig, err := OAuthConfig(clientJSON)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(cfg.GoogleTokenPath())
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and, when
// endpoint is set, a custom API root (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// LoadToken reads a stored Google token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s (run: kanori google-login): %w", config.GoogleTokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleTokenFile, err)
	}
	return &token, nil
}

// SaveToken writes a Google token readable only by the owner.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, 0o600)
}

// ResolveList finds a list ID by title (case-insensitive, trimmed).
// An empty name is the default list.
func (c *Client) ResolveList(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultListID, nil
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var matches []string
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if strings.EqualFold(strings.TrimSpace(list.Title), name) {
				matches = append(matches, list.Id)
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrListNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousList, name)
	}
}

// ListOpenTasks returns every open task of a list, across all pages.
func (c *Client) ListOpenTasks(ctx context.Context, listID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []Item
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, task := range resp.Items {
				if task.Status == "completed" || strings.TrimSpace(task.Title) == "" {
					continue
				}
				result = append(result, Item{ID: task.Id, Title: task.Title, Notes: task.Notes})
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// wrapError maps API errors onto the service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("google tasks request timed out: %w", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: google token expired or revoked (run: kanori google-login): %w", service.ErrSessionExpired, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", service.ErrNotFound, err)
		}
	}
	return err
}
