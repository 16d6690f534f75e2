// Package service defines the backend-agnostic interface for board, focus and summary operations.
package service

import "context"

// Service defines the interface for backend operations.
// All REST calls go through this interface; commands never import the gateway directly.
type Service interface {
	// Login authenticates and installs the returned token pair.
	Login(ctx context.Context, req LoginRequest) (*User, error)

	// Register creates an account and installs the returned token pair.
	Register(ctx context.Context, req RegisterRequest) (*User, error)

	// Refresh exchanges the stored refresh token for a new access token.
	Refresh(ctx context.Context) error

	// Logout drops the stored token pair.
	Logout(ctx context.Context) error

	// Me returns the authenticated user.
	Me(ctx context.Context) (User, error)

	// ListTasks returns every task in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task.
	CreateTask(ctx context.Context, task NewTask) (Task, error)

	// UpdateTask applies a partial update and returns the server's task.
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error

	// ListFocusSessions returns all focus sessions.
	ListFocusSessions(ctx context.Context) ([]FocusSession, error)

	// CreateFocusSession records a session start.
	CreateFocusSession(ctx context.Context, s NewFocusSession) (FocusSession, error)

	// EndFocusSession records a session end.
	EndFocusSession(ctx context.Context, id int64, end FocusSessionEnd) (FocusSession, error)

	// ListDaySummaries returns all day summaries.
	ListDaySummaries(ctx context.Context) ([]DaySummary, error)

	// CreateDaySummary creates the summary for date.
	CreateDaySummary(ctx context.Context, date, text string) (DaySummary, error)

	// UpdateDaySummary replaces the text of a summary.
	UpdateDaySummary(ctx context.Context, id int64, text string) (DaySummary, error)

	// GetSetting returns the user's setting, or nil if none exists.
	GetSetting(ctx context.Context) (*Setting, error)

	// UpdateSetting applies a partial update, creating the setting if needed.
	UpdateSetting(ctx context.Context, patch SettingPatch) (Setting, error)
}
