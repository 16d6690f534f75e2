package summary_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kanori/internal/service"
	"kanori/internal/summary"
	"kanori/internal/testutil"
)

func fixedNow() time.Time {
	return time.Date(2026, 5, 14, 12, 0, 0, 0, time.Local)
}

func TestFetchToday(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddSummary(service.DaySummary{ID: 1, Date: "2026-05-13", SummaryText: "yesterday"})
	svc.AddSummary(service.DaySummary{ID: 2, Date: "2026-05-14", SummaryText: "today"})

	s := summary.New(svc, fixedNow)
	got, err := s.FetchToday(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(2), got.ID)
	require.Len(t, s.Items(), 2)
}

func TestFetchToday_None(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddSummary(service.DaySummary{ID: 1, Date: "2026-05-13"})

	got, err := summary.New(svc, fixedNow).FetchToday(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSaveToday_Creates(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddSummary(service.DaySummary{ID: 1, Date: "2026-05-13"})
	s := summary.New(svc, fixedNow)

	created, err := s.SaveToday(context.Background(), "shipped the release")
	require.NoError(t, err)
	require.Equal(t, "2026-05-14", created.Date)
	require.Equal(t, "shipped the release", created.SummaryText)

	items := s.Items()
	require.Len(t, items, 2)
	require.Equal(t, created.ID, items[0].ID, "new summary is prepended")
}

func TestSaveToday_UpdatesExisting(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddSummary(service.DaySummary{ID: 9, Date: "2026-05-14", SummaryText: "draft"})
	s := summary.New(svc, fixedNow)

	updated, err := s.SaveToday(context.Background(), "final")
	require.NoError(t, err)
	require.Equal(t, int64(9), updated.ID)
	require.Equal(t, "final", updated.SummaryText)

	all, _ := svc.ListDaySummaries(context.Background())
	require.Len(t, all, 1)
	require.Equal(t, "final", s.Items()[0].SummaryText)
}

func TestSaveToday_Errors(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListDaySummariesErr = errors.New("offline")

	_, err := summary.New(svc, fixedNow).SaveToday(context.Background(), "x")
	require.ErrorIs(t, err, svc.ListDaySummariesErr)

	svc.ListDaySummariesErr = nil
	svc.SaveDaySummaryErr = errors.New("rejected")
	_, err = summary.New(svc, fixedNow).SaveToday(context.Background(), "x")
	require.ErrorIs(t, err, svc.SaveDaySummaryErr)
}
