// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"kanori/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = service.ErrNotFound

// ErrUnauthorized is returned by Login for a wrong password.
var ErrUnauthorized = service.ErrInvalidCredentials

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu        sync.RWMutex
	nextID    int64
	tasks     []service.Task
	sessions  []service.FocusSession
	summaries []service.DaySummary
	setting   *service.Setting
	loggedIn  bool

	// User is returned by Me and Login.
	User service.User

	// Password is the password Login accepts.
	Password string

	// Now stamps created and ended sessions; defaults to time.Now.
	Now func() time.Time

	// UpdateTaskCalls counts UpdateTask invocations.
	UpdateTaskCalls int

	// Error injection for testing
	LoginErr              error
	MeErr                 error
	ListTasksErr          error
	CreateTaskErr         error
	UpdateTaskErr         error
	DeleteTaskErr         error
	ListFocusSessionsErr  error
	CreateFocusSessionErr error
	EndFocusSessionErr    error
	ListDaySummariesErr   error
	SaveDaySummaryErr     error
	GetSettingErr         error
	UpdateSettingErr      error
}

// NewFakeService creates an empty, logged-in FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:   100,
		loggedIn: true,
		User:     service.User{ID: 1, Username: "tester", Email: "tester@example.com"},
		Password: "secret",
	}
}

func (f *FakeService) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *FakeService) id() int64 {
	f.nextID++
	return f.nextID
}

// AddTask appends a task to the server-side list.
func (f *FakeService) AddTask(id int64, title string, status service.TaskStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Status: status})
}

// ServerTasks returns the server-side task list.
func (f *FakeService) ServerTasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...)
}

// AddSession appends a focus session to the server-side list.
func (f *FakeService) AddSession(s service.FocusSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, s)
}

// AddSummary appends a day summary to the server-side list.
func (f *FakeService) AddSummary(s service.DaySummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, s)
}

// Setting returns the stored setting.
func (f *FakeService) Setting() *service.Setting {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.setting
}

// SetSetting replaces the stored setting.
func (f *FakeService) SetSetting(s *service.Setting) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setting = s
}

// SetAuthenticated toggles the fake session.
func (f *FakeService) SetAuthenticated(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = v
}

// Authenticated reports the fake session state.
func (f *FakeService) Authenticated() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loggedIn
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, req service.LoginRequest) (*service.User, error) {
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Password != f.Password {
		return nil, ErrUnauthorized
	}
	f.loggedIn = true
	user := f.User
	return &user, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, req service.RegisterRequest) (*service.User, error) {
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.User = service.User{ID: f.id(), Username: req.Username, Email: req.Email}
	f.Password = req.Password
	f.loggedIn = true
	user := f.User
	return &user, nil
}

// Refresh implements service.Service.
func (f *FakeService) Refresh(ctx context.Context) error {
	if !f.Authenticated() {
		return service.ErrSessionExpired
	}
	return nil
}

// Logout implements service.Service.
func (f *FakeService) Logout(ctx context.Context) error {
	f.SetAuthenticated(false)
	return nil
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.User, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.ServerTasks(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, task service.NewTask) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	status := task.Status
	if status == "" {
		status = service.StatusTodo
	}
	created := service.Task{
		ID:               f.id(),
		Title:            task.Title,
		Description:      task.Description,
		Status:           status,
		EstimatedMinutes: task.EstimatedMinutes,
		CreatedAt:        f.now(),
		UpdatedAt:        f.now(),
	}
	f.tasks = append([]service.Task{created}, f.tasks...)
	return created, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	f.UpdateTaskCalls++
	f.mu.Unlock()
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID != id {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Progress != nil {
			t.Progress = *patch.Progress
		}
		if patch.EstimatedMinutes != nil {
			t.EstimatedMinutes = *patch.EstimatedMinutes
		}
		t.UpdatedAt = f.now()
		f.tasks[i] = t
		return t, nil
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListFocusSessions implements service.Service.
func (f *FakeService) ListFocusSessions(ctx context.Context) ([]service.FocusSession, error) {
	if f.ListFocusSessionsErr != nil {
		return nil, f.ListFocusSessionsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.FocusSession(nil), f.sessions...), nil
}

// CreateFocusSession implements service.Service.
func (f *FakeService) CreateFocusSession(ctx context.Context, s service.NewFocusSession) (service.FocusSession, error) {
	if f.CreateFocusSessionErr != nil {
		return service.FocusSession{}, f.CreateFocusSessionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	created := service.FocusSession{
		ID:        f.id(),
		Task:      s.Task,
		Block:     s.Block,
		StartedAt: s.StartedAt,
		Notes:     s.Notes,
		Success:   s.Success,
	}
	f.sessions = append([]service.FocusSession{created}, f.sessions...)
	return created, nil
}

// EndFocusSession implements service.Service.
// duration_minutes is computed from the recorded timestamps, like the server does.
func (f *FakeService) EndFocusSession(ctx context.Context, id int64, end service.FocusSessionEnd) (service.FocusSession, error) {
	if f.EndFocusSessionErr != nil {
		return service.FocusSession{}, f.EndFocusSessionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.sessions {
		if s.ID != id {
			continue
		}
		ended := end.EndedAt
		s.EndedAt = &ended
		s.Success = end.Success
		if d := ended.Sub(s.StartedAt); d > 0 {
			s.DurationMinutes = int(d / time.Minute)
		}
		f.sessions[i] = s
		return s, nil
	}
	return service.FocusSession{}, ErrNotFound
}

// ListDaySummaries implements service.Service.
func (f *FakeService) ListDaySummaries(ctx context.Context) ([]service.DaySummary, error) {
	if f.ListDaySummariesErr != nil {
		return nil, f.ListDaySummariesErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.DaySummary(nil), f.summaries...), nil
}

// CreateDaySummary implements service.Service.
func (f *FakeService) CreateDaySummary(ctx context.Context, date, text string) (service.DaySummary, error) {
	if f.SaveDaySummaryErr != nil {
		return service.DaySummary{}, f.SaveDaySummaryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	created := service.DaySummary{ID: f.id(), Date: date, SummaryText: text}
	f.summaries = append([]service.DaySummary{created}, f.summaries...)
	return created, nil
}

// UpdateDaySummary implements service.Service.
func (f *FakeService) UpdateDaySummary(ctx context.Context, id int64, text string) (service.DaySummary, error) {
	if f.SaveDaySummaryErr != nil {
		return service.DaySummary{}, f.SaveDaySummaryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.summaries {
		if s.ID == id {
			f.summaries[i].SummaryText = text
			return f.summaries[i], nil
		}
	}
	return service.DaySummary{}, ErrNotFound
}

// GetSetting implements service.Service.
func (f *FakeService) GetSetting(ctx context.Context) (*service.Setting, error) {
	if f.GetSettingErr != nil {
		return nil, f.GetSettingErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.setting == nil {
		return nil, nil
	}
	s := *f.setting
	return &s, nil
}

// UpdateSetting implements service.Service.
func (f *FakeService) UpdateSetting(ctx context.Context, patch service.SettingPatch) (service.Setting, error) {
	if f.UpdateSettingErr != nil {
		return service.Setting{}, f.UpdateSettingErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setting == nil {
		f.setting = &service.Setting{ID: f.id()}
	}
	if patch.DayBounds != nil {
		b := *patch.DayBounds
		f.setting.DayBounds = &b
	}
	if patch.ColumnColors != nil {
		f.setting.ColumnColors = append([]string(nil), patch.ColumnColors...)
	}
	return *f.setting, nil
}
