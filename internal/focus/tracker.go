// Package focus tracks the single running focus session, including the time
// spent paused, on top of the server-side session records.
package focus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kanori/internal/service"
)

var (
	// ErrSessionActive is returned when starting a session while another task's session runs.
	ErrSessionActive = errors.New("a focus session is already active")

	// ErrNotFound is returned for a session id unknown to the tracker.
	ErrNotFound = errors.New("focus session not found")

	// ErrNoActiveSession is returned when stopping with nothing running.
	ErrNoActiveSession = errors.New("no active focus session")
)

// Store persists focus sessions. service.Service satisfies it.
type Store interface {
	ListFocusSessions(ctx context.Context) ([]service.FocusSession, error)
	CreateFocusSession(ctx context.Context, s service.NewFocusSession) (service.FocusSession, error)
	EndFocusSession(ctx context.Context, id int64, end service.FocusSessionEnd) (service.FocusSession, error)
}

// Tracker owns the active session and its pause bookkeeping.
// At most one session is active at a time.
type Tracker struct {
	mu       sync.Mutex
	store    Store
	state    State
	sessions []service.FocusSession
	path     string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the tracker's logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New creates an idle tracker that keeps its state in memory.
func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open creates a tracker whose state is read from and written to path.
// An unreadable state file is logged and replaced by an idle state.
func Open(store Store, path string, opts ...Option) *Tracker {
	t := New(store, opts...)
	t.path = path
	st, err := readState(path)
	if err != nil {
		t.logger.Warn("discarding focus state", "err", err)
	}
	t.state = st
	return t
}

// save persists the state. Caller holds t.mu.
func (t *Tracker) save() error {
	if t.path == "" {
		return nil
	}
	return writeState(t.path, t.state)
}

// Load fetches all sessions. An active session that the server reports as
// ended is dropped together with its pause state.
func (t *Tracker) Load(ctx context.Context) error {
	sessions, err := t.store.ListFocusSessions(ctx)
	if err != nil {
		return fmt.Errorf("load focus sessions: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions = sessions

	if a := t.state.Active; a != nil {
		for _, s := range sessions {
			if s.ID == a.ID && !s.Active() {
				t.logger.Debug("active session ended elsewhere", "session", a.ID)
				t.state.Active = nil
				t.state.resetPause()
				return t.save()
			}
		}
	}
	return nil
}

// Sessions returns a snapshot of the loaded sessions, newest first.
func (t *Tracker) Sessions() []service.FocusSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]service.FocusSession(nil), t.sessions...)
}

// Active returns the running session.
func (t *Tracker) Active() (service.FocusSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Active == nil {
		return service.FocusSession{}, false
	}
	return *t.state.Active, true
}

// Paused reports whether the active session of taskID is paused.
func (t *Tracker) Paused(taskID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isActive(taskID) && t.state.PausedAt != nil
}

func (t *Tracker) isActive(taskID int64) bool {
	return t.state.Active != nil && t.state.Active.Task == taskID
}

// Start opens a session for taskID. Starting the task that is already running
// returns its session unchanged. The lock is held across the create call so
// two starts cannot both succeed.
func (t *Tracker) Start(ctx context.Context, taskID int64, notes string, block *int64) (service.FocusSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if a := t.state.Active; a != nil {
		if a.Task != taskID {
			return service.FocusSession{}, fmt.Errorf("%w: task %d since %s", ErrSessionActive, a.Task, a.StartedAt.Local().Format(time.Kitchen))
		}
		return *a, nil
	}

	created, err := t.store.CreateFocusSession(ctx, service.NewFocusSession{
		Task:      taskID,
		Block:     block,
		StartedAt: t.now().UTC(),
		Notes:     notes,
		Success:   false,
	})
	if err != nil {
		return service.FocusSession{}, err
	}

	t.sessions = append([]service.FocusSession{created}, t.sessions...)
	t.state.Active = &created
	t.state.resetPause()
	t.logger.Debug("focus started", "session", created.ID, "task", taskID)
	return created, t.save()
}

// Pause marks the active session of taskID as paused. It reports false
// without changes when taskID is not running or already paused.
func (t *Tracker) Pause(taskID int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isActive(taskID) || t.state.PausedAt != nil {
		return false, nil
	}
	now := t.now()
	t.state.PausedAt = &now
	return true, t.save()
}

// Resume ends the pause window of taskID's session. It reports false
// without changes when taskID is not the paused active task.
func (t *Tracker) Resume(taskID int64) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isActive(taskID) || t.state.PausedAt == nil {
		return false, nil
	}
	if window := t.now().Sub(*t.state.PausedAt); window > 0 {
		t.state.PausedMillis += window.Milliseconds()
	}
	t.state.PausedAt = nil
	return true, t.save()
}

// Elapsed is EffectiveElapsed at the tracker's current time.
func (t *Tracker) Elapsed(taskID int64) time.Duration {
	return t.EffectiveElapsed(taskID, t.now())
}

// EffectiveElapsed returns the unpaused running time of taskID's session at
// now. It is zero for a task that is not running and never negative.
func (t *Tracker) EffectiveElapsed(taskID int64, now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isActive(taskID) {
		return 0
	}
	return t.elapsed(now)
}

func (t *Tracker) elapsed(now time.Time) time.Duration {
	d := now.Sub(t.state.Active.StartedAt) - time.Duration(t.state.PausedMillis)*time.Millisecond
	if p := t.state.PausedAt; p != nil {
		if window := now.Sub(*p); window > 0 {
			d -= window
		}
	}
	return max(0, d)
}

// StopActive stops the running session.
func (t *Tracker) StopActive(ctx context.Context, success bool) (service.FocusSession, error) {
	a, ok := t.Active()
	if !ok {
		return service.FocusSession{}, ErrNoActiveSession
	}
	return t.Stop(ctx, a.ID, success)
}

// Stop ends session id on the server. Stopping the active session clears the
// pause state, and on success its unpaused time is credited to its block.
func (t *Tracker) Stop(ctx context.Context, id int64, success bool) (service.FocusSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	active := t.state.Active != nil && t.state.Active.ID == id
	if !active && t.indexOf(id) < 0 {
		return service.FocusSession{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	now := t.now()
	updated, err := t.store.EndFocusSession(ctx, id, service.FocusSessionEnd{EndedAt: now.UTC(), Success: success})
	if err != nil {
		return service.FocusSession{}, err
	}

	if i := t.indexOf(id); i >= 0 {
		t.sessions[i] = updated
	} else {
		t.sessions = append([]service.FocusSession{updated}, t.sessions...)
	}

	if active {
		if block := t.state.Active.Block; success && block != nil {
			if t.state.BlockMinutes == nil {
				t.state.BlockMinutes = make(map[int64]int)
			}
			t.state.BlockMinutes[*block] += int(t.elapsed(now) / time.Minute)
		}
		t.state.Active = nil
		t.state.resetPause()
	}
	t.logger.Debug("focus stopped", "session", id, "success", success)
	return updated, t.save()
}

func (t *Tracker) indexOf(id int64) int {
	for i, s := range t.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// BlockMinutes returns the realized focus minutes recorded for block.
func (t *Tracker) BlockMinutes(block int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.BlockMinutes[block]
}

// TotalMinutesForTask sums the recorded duration of taskID's sessions.
func (t *Tracker) TotalMinutesForTask(taskID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, s := range t.sessions {
		if s.Task == taskID {
			total += s.DurationMinutes
		}
	}
	return total
}

// TotalMinutesAll sums the recorded duration of every session.
func (t *Tracker) TotalMinutesAll() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, s := range t.sessions {
		total += s.DurationMinutes
	}
	return total
}
