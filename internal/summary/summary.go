// Package summary reads and writes the recap for the current day.
package summary

import (
	"context"
	"fmt"
	"time"

	"kanori/internal/service"
)

// DateLayout is the server's day format.
const DateLayout = "2006-01-02"

// Store persists day summaries. service.Service satisfies it.
type Store interface {
	ListDaySummaries(ctx context.Context) ([]service.DaySummary, error)
	CreateDaySummary(ctx context.Context, date, text string) (service.DaySummary, error)
	UpdateDaySummary(ctx context.Context, id int64, text string) (service.DaySummary, error)
}

// Summaries caches the day summaries of the user.
type Summaries struct {
	store Store
	items []service.DaySummary
	now   func() time.Time
}

// New creates a summary cache. now defaults to time.Now and decides the local day.
func New(store Store, now func() time.Time) *Summaries {
	if now == nil {
		now = time.Now
	}
	return &Summaries{store: store, now: now}
}

// Today returns the local date as YYYY-MM-DD.
func (s *Summaries) Today() string {
	return s.now().Local().Format(DateLayout)
}

// Items returns the cached summaries.
func (s *Summaries) Items() []service.DaySummary {
	return append([]service.DaySummary(nil), s.items...)
}

// FetchAll reloads the summaries from the server.
func (s *Summaries) FetchAll(ctx context.Context) error {
	items, err := s.store.ListDaySummaries(ctx)
	if err != nil {
		return fmt.Errorf("load day summaries: %w", err)
	}
	s.items = items
	return nil
}

// FetchToday reloads the summaries and returns today's, or nil if none exists.
func (s *Summaries) FetchToday(ctx context.Context) (*service.DaySummary, error) {
	if err := s.FetchAll(ctx); err != nil {
		return nil, err
	}
	today := s.Today()
	for i := range s.items {
		if s.items[i].Date == today {
			found := s.items[i]
			return &found, nil
		}
	}
	return nil, nil
}

// SaveToday writes text as today's summary, updating the existing one when present.
func (s *Summaries) SaveToday(ctx context.Context, text string) (service.DaySummary, error) {
	current, err := s.FetchToday(ctx)
	if err != nil {
		return service.DaySummary{}, err
	}

	if current != nil {
		updated, err := s.store.UpdateDaySummary(ctx, current.ID, text)
		if err != nil {
			return service.DaySummary{}, err
		}
		for i := range s.items {
			if s.items[i].ID == updated.ID {
				s.items[i] = updated
			}
		}
		return updated, nil
	}

	created, err := s.store.CreateDaySummary(ctx, s.Today(), text)
	if err != nil {
		return service.DaySummary{}, err
	}
	s.items = append([]service.DaySummary{created}, s.items...)
	return created, nil
}
