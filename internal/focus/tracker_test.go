package focus_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kanori/internal/focus"
	"kanori/internal/service"
	"kanori/internal/testutil"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTracker(t *testing.T) (*focus.Tracker, *testutil.FakeService, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	svc := testutil.NewFakeService()
	svc.Now = c.Now
	return focus.New(svc, focus.WithClock(c.Now)), svc, c
}

func TestStart_PostsSession(t *testing.T) {
	tr, svc, c := newTracker(t)

	s, err := tr.Start(context.Background(), 7, "deep work", nil)
	require.NoError(t, err)
	require.Equal(t, int64(7), s.Task)
	require.Equal(t, c.Now(), s.StartedAt)
	require.False(t, s.Success)
	require.Equal(t, "deep work", s.Notes)

	active, ok := tr.Active()
	require.True(t, ok)
	require.Equal(t, s.ID, active.ID)

	server, _ := svc.ListFocusSessions(context.Background())
	require.Len(t, server, 1)
}

func TestStart_OtherTaskActiveFails(t *testing.T) {
	tr, svc, c := newTracker(t)
	ctx := context.Background()

	first, err := tr.Start(ctx, 1, "", nil)
	require.NoError(t, err)
	c.Advance(2 * time.Minute)
	_, err = tr.Pause(1)
	require.NoError(t, err)

	_, err = tr.Start(ctx, 2, "", nil)
	require.ErrorIs(t, err, focus.ErrSessionActive)

	active, _ := tr.Active()
	require.Equal(t, first.ID, active.ID)
	require.True(t, tr.Paused(1))
	require.Equal(t, 2*time.Minute, tr.Elapsed(1))

	server, _ := svc.ListFocusSessions(ctx)
	require.Len(t, server, 1)
}

func TestStart_SameTaskReturnsRunningSession(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	first, err := tr.Start(ctx, 1, "", nil)
	require.NoError(t, err)
	again, err := tr.Start(ctx, 1, "", nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Len(t, tr.Sessions(), 1)
}

func TestStart_BackendErrorLeavesIdle(t *testing.T) {
	tr, svc, _ := newTracker(t)
	svc.CreateFocusSessionErr = errors.New("offline")

	_, err := tr.Start(context.Background(), 1, "", nil)
	require.Error(t, err)
	_, ok := tr.Active()
	require.False(t, ok)
}

func TestEffectiveElapsed_PauseResume(t *testing.T) {
	tr, _, c := newTracker(t)

	_, err := tr.Start(context.Background(), 3, "", nil)
	require.NoError(t, err)

	c.Advance(10 * time.Minute)
	require.Equal(t, 10*time.Minute, tr.Elapsed(3))

	changed, err := tr.Pause(3)
	require.NoError(t, err)
	require.True(t, changed)

	c.Advance(5 * time.Minute)
	require.Equal(t, 10*time.Minute, tr.Elapsed(3), "frozen while paused")

	changed, err = tr.Pause(3)
	require.NoError(t, err)
	require.False(t, changed, "second pause is a no-op")

	changed, err = tr.Resume(3)
	require.NoError(t, err)
	require.True(t, changed)

	c.Advance(3 * time.Minute)
	require.Equal(t, 13*time.Minute, tr.Elapsed(3))

	changed, err = tr.Resume(3)
	require.NoError(t, err)
	require.False(t, changed, "resume while running is a no-op")
}

func TestEffectiveElapsed_Monotonic(t *testing.T) {
	tr, _, c := newTracker(t)
	_, err := tr.Start(context.Background(), 3, "", nil)
	require.NoError(t, err)

	var last time.Duration
	for i := range 30 {
		c.Advance(time.Duration(i%4) * 20 * time.Second)
		switch i % 7 {
		case 2:
			_, _ = tr.Pause(3)
		case 5:
			_, _ = tr.Resume(3)
		}
		got := tr.Elapsed(3)
		require.GreaterOrEqual(t, got, last)
		last = got
	}
}

func TestEffectiveElapsed_NeverNegative(t *testing.T) {
	tr, _, c := newTracker(t)
	_, err := tr.Start(context.Background(), 3, "", nil)
	require.NoError(t, err)

	require.Zero(t, tr.EffectiveElapsed(3, c.Now().Add(-time.Hour)))
	require.Zero(t, tr.EffectiveElapsed(99, c.Now().Add(time.Hour)), "not the running task")
}

func TestPauseResume_OtherTaskIsNoop(t *testing.T) {
	tr, _, _ := newTracker(t)
	_, err := tr.Start(context.Background(), 1, "", nil)
	require.NoError(t, err)

	changed, err := tr.Pause(2)
	require.NoError(t, err)
	require.False(t, changed)
	require.False(t, tr.Paused(1))

	changed, err = tr.Resume(2)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestStop_ClearsStateAndCreditsBlock(t *testing.T) {
	tr, _, c := newTracker(t)
	ctx := context.Background()
	block := int64(42)

	s, err := tr.Start(ctx, 1, "", &block)
	require.NoError(t, err)
	c.Advance(20 * time.Minute)
	_, _ = tr.Pause(1)
	c.Advance(10 * time.Minute)
	_, _ = tr.Resume(1)
	c.Advance(5 * time.Minute)

	stopped, err := tr.Stop(ctx, s.ID, true)
	require.NoError(t, err)
	require.True(t, stopped.Success)
	require.NotNil(t, stopped.EndedAt)
	require.Equal(t, 35, stopped.DurationMinutes)

	_, ok := tr.Active()
	require.False(t, ok)
	require.False(t, tr.Paused(1))
	require.Equal(t, 25, tr.BlockMinutes(block))

	_, err = tr.Start(ctx, 2, "", nil)
	require.NoError(t, err, "a new task can start after stop")
}

func TestStop_FailureDoesNotCreditBlock(t *testing.T) {
	tr, _, c := newTracker(t)
	ctx := context.Background()
	block := int64(5)

	s, err := tr.Start(ctx, 1, "", &block)
	require.NoError(t, err)
	c.Advance(15 * time.Minute)

	_, err = tr.Stop(ctx, s.ID, false)
	require.NoError(t, err)
	require.Zero(t, tr.BlockMinutes(block))
}

func TestStop_Unknown(t *testing.T) {
	tr, _, _ := newTracker(t)

	_, err := tr.Stop(context.Background(), 123, true)
	require.ErrorIs(t, err, focus.ErrNotFound)

	_, err = tr.StopActive(context.Background(), true)
	require.ErrorIs(t, err, focus.ErrNoActiveSession)
}

func TestStop_BackendErrorKeepsActive(t *testing.T) {
	tr, svc, _ := newTracker(t)
	ctx := context.Background()

	s, err := tr.Start(ctx, 1, "", nil)
	require.NoError(t, err)
	svc.EndFocusSessionErr = errors.New("offline")

	_, err = tr.Stop(ctx, s.ID, true)
	require.Error(t, err)
	active, ok := tr.Active()
	require.True(t, ok)
	require.Equal(t, s.ID, active.ID)
}

func TestTotals(t *testing.T) {
	tr, svc, _ := newTracker(t)
	svc.AddSession(service.FocusSession{ID: 1, Task: 10, DurationMinutes: 25})
	svc.AddSession(service.FocusSession{ID: 2, Task: 11, DurationMinutes: 40})
	svc.AddSession(service.FocusSession{ID: 3, Task: 10, DurationMinutes: 15})

	require.NoError(t, tr.Load(context.Background()))
	require.Equal(t, 40, tr.TotalMinutesForTask(10))
	require.Equal(t, 0, tr.TotalMinutesForTask(99))
	require.Equal(t, 80, tr.TotalMinutesAll())
}

func TestOpen_PersistsAcrossInstances(t *testing.T) {
	c := &clock{t: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	svc := testutil.NewFakeService()
	svc.Now = c.Now
	path := filepath.Join(t.TempDir(), "focus.json")
	ctx := context.Background()

	first := focus.Open(svc, path, focus.WithClock(c.Now))
	_, err := first.Start(ctx, 4, "", nil)
	require.NoError(t, err)
	c.Advance(12 * time.Minute)
	_, err = first.Pause(4)
	require.NoError(t, err)
	c.Advance(time.Hour)

	second := focus.Open(svc, path, focus.WithClock(c.Now))
	require.True(t, second.Paused(4))
	require.Equal(t, 12*time.Minute, second.Elapsed(4))

	_, err = second.Start(ctx, 5, "", nil)
	require.ErrorIs(t, err, focus.ErrSessionActive)
}

func TestOpen_CorruptStateIsIdle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tr := focus.Open(testutil.NewFakeService(), path)
	_, ok := tr.Active()
	require.False(t, ok)
}

func TestLoad_DropsSessionEndedElsewhere(t *testing.T) {
	tr, svc, c := newTracker(t)
	ctx := context.Background()

	s, err := tr.Start(ctx, 1, "", nil)
	require.NoError(t, err)
	_, err = svc.EndFocusSession(ctx, s.ID, service.FocusSessionEnd{EndedAt: c.Now().Add(time.Minute)})
	require.NoError(t, err)

	require.NoError(t, tr.Load(ctx))
	_, ok := tr.Active()
	require.False(t, ok)
}
