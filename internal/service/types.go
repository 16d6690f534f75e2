// Package service defines the backend-agnostic interface for board, focus and summary operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lane a task belongs to.
type TaskStatus string

const (
	StatusTodo  TaskStatus = "todo"
	StatusDoing TaskStatus = "doing"
	StatusToday TaskStatus = "today"
	StatusDone  TaskStatus = "done"
)

// Statuses lists the lanes in display order.
var Statuses = []TaskStatus{StatusTodo, StatusDoing, StatusToday, StatusDone}

// ParseStatus validates a lane name (case-insensitive, trimmed).
func ParseStatus(s string) (TaskStatus, error) {
	v := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if v.Index() < 0 {
		return "", fmt.Errorf("unknown status: %s", s)
	}
	return v, nil
}

// Index returns the lane position of s, or -1 for an unknown status.
func (s TaskStatus) Index() int {
	for i, v := range Statuses {
		if v == s {
			return i
		}
	}
	return -1
}

// Task is a board card.
type Task struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           TaskStatus `json:"status"`
	Progress         int        `json:"progress"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewTask is the create payload for a task.
type NewTask struct {
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           TaskStatus `json:"status,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes,omitempty"`
}

// TaskPatch is a partial task update; nil fields are left unchanged.
type TaskPatch struct {
	Title            *string     `json:"title,omitempty"`
	Description      *string     `json:"description,omitempty"`
	Status           *TaskStatus `json:"status,omitempty"`
	Progress         *int        `json:"progress,omitempty"`
	EstimatedMinutes *int        `json:"estimated_minutes,omitempty"`
}

// FocusSession is a timed work session against a task.
// EndedAt is nil while the session is running.
type FocusSession struct {
	ID              int64      `json:"id"`
	Task            int64      `json:"task"`
	Block           *int64     `json:"block,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Success         bool       `json:"success"`
	Notes           string     `json:"notes"`
}

// Active reports whether the session has not ended.
func (s FocusSession) Active() bool {
	return s.EndedAt == nil
}

// NewFocusSession is the create payload for a focus session.
type NewFocusSession struct {
	Task      int64     `json:"task"`
	Block     *int64    `json:"block,omitempty"`
	StartedAt time.Time `json:"started_at"`
	Notes     string    `json:"notes"`
	Success   bool      `json:"success"`
}

// FocusSessionEnd is the stop payload for a focus session.
type FocusSessionEnd struct {
	EndedAt time.Time `json:"ended_at"`
	Success bool      `json:"success"`
}

// DaySummary is the free-text recap of one day.
type DaySummary struct {
	ID                  int64  `json:"id"`
	Date                string `json:"date"` // YYYY-MM-DD
	SummaryText         string `json:"summary_text"`
	TotalFocusedMinutes int    `json:"total_focused_minutes"`
}

// DayBounds are the user's wake and sleep times ("HH:MM").
type DayBounds struct {
	Wake  string `json:"wake"`
	Sleep string `json:"sleep"`
}

// Setting is the per-user settings singleton.
type Setting struct {
	ID           int64      `json:"id"`
	DayBounds    *DayBounds `json:"day_bounds,omitempty"`
	ColumnColors []string   `json:"column_colors,omitempty"`
}

// SettingPatch is a partial setting update.
type SettingPatch struct {
	DayBounds    *DayBounds `json:"day_bounds,omitempty"`
	ColumnColors []string   `json:"column_colors,omitempty"`
}

// User is the authenticated account.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// LoginRequest authenticates with a username or an email.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
