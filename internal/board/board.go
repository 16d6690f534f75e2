// Package board keeps the in-memory, lane-ordered task list and applies
// moves optimistically before the backend confirms them.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"kanori/internal/service"
)

var (
	// ErrNotFound is returned when an operation names a task absent from the board.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidStatus is returned for a lane name outside service.Statuses.
	ErrInvalidStatus = errors.New("invalid status")
)

// Store persists board changes. service.Service satisfies it.
type Store interface {
	ListTasks(ctx context.Context) ([]service.Task, error)
	CreateTask(ctx context.Context, task service.NewTask) (service.Task, error)
	UpdateTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Board is the ordered task list. Slice position is display order within a lane.
//
// The lock is never held across a backend call, so an optimistic change is
// visible to readers while its persistence is in flight. Overlapping moves of
// the same task are last-write-wins.
type Board struct {
	mu     sync.RWMutex
	store  Store
	tasks  []service.Task
	logger *slog.Logger
}

// New creates an empty board backed by store.
func New(store Store, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Board{store: store, logger: logger}
}

// Load replaces the board with the server's authoritative list.
func (b *Board) Load(ctx context.Context) error {
	tasks, err := b.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()
	return nil
}

// Tasks returns a snapshot of the board.
func (b *Board) Tasks() []service.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]service.Task(nil), b.tasks...)
}

// Lane returns a snapshot of one lane.
func (b *Board) Lane(status service.TaskStatus) []service.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Lane(b.tasks, status)
}

// Find returns the task with the given id.
func (b *Board) Find(id int64) (service.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.tasks[i], true
	}
	return service.Task{}, false
}

func (b *Board) indexOf(id int64) int {
	for i, t := range b.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Create persists a new task and puts it at the front of the board.
func (b *Board) Create(ctx context.Context, task service.NewTask) (service.Task, error) {
	created, err := b.store.CreateTask(ctx, task)
	if err != nil {
		return service.Task{}, err
	}
	b.mu.Lock()
	b.tasks = append([]service.Task{created}, b.tasks...)
	b.mu.Unlock()
	return created, nil
}

// Update persists a partial update and replaces the task in place with the server's copy.
func (b *Board) Update(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	if _, ok := b.Find(id); !ok {
		return service.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	updated, err := b.store.UpdateTask(ctx, id, patch)
	if err != nil {
		return service.Task{}, err
	}
	b.replace(updated)
	return updated, nil
}

func (b *Board) replace(task service.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(task.ID); i >= 0 {
		b.tasks[i] = task
	}
}

// Remove deletes a task on the server, then from the board.
func (b *Board) Remove(ctx context.Context, id int64) error {
	if _, ok := b.Find(id); !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := b.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.tasks = append(b.tasks[:i:i], b.tasks[i+1:]...)
	}
	b.mu.Unlock()
	return nil
}

// SetProgress persists a task's progress.
func (b *Board) SetProgress(ctx context.Context, id int64, progress int) (service.Task, error) {
	return b.Update(ctx, id, service.TaskPatch{Progress: &progress})
}

// MoveTo changes a task's lane without an explicit position: it becomes the
// last member of the target lane.
func (b *Board) MoveTo(ctx context.Context, id int64, status service.TaskStatus) error {
	return b.MoveOrReorder(ctx, id, status, math.MaxInt)
}

// MoveOrReorder moves task id to lane status at lane position index.
//
// An unknown id is a no-op. A move within the same lane is local only. A lane
// change is applied locally first, then persisted; if persisting fails the
// board is reloaded from the server and the persist error is returned.
func (b *Board) MoveOrReorder(ctx context.Context, id int64, status service.TaskStatus, index int) error {
	if status.Index() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return nil
	}
	prev := b.tasks[i].Status
	b.tasks, _ = Reorder(b.tasks, id, status, index)
	b.mu.Unlock()

	if prev == status {
		b.logger.Debug("task reordered", "task", id, "status", status, "index", index)
		return nil
	}
	b.logger.Debug("task moved optimistically", "task", id, "from", prev, "to", status, "index", index)

	updated, err := b.store.UpdateTask(ctx, id, service.TaskPatch{Status: &status})
	if err != nil {
		b.logger.Debug("move rejected, reconciling", "task", id, "err", err)
		if loadErr := b.Load(ctx); loadErr != nil {
			b.logger.Warn("reconcile after failed move", "err", loadErr)
		}
		return fmt.Errorf("move task %d to %s: %w", id, status, err)
	}
	b.replace(updated)
	return nil
}
