// Package session owns the loaded feed and the UI state of one running
// instance, and answers the questions the HTTP layer asks about them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"afisha/internal/feed"
	appLog "afisha/internal/log"
	"afisha/internal/model"
	"afisha/internal/pipeline"
	"afisha/internal/view"
)

// ErrEmptyResult reports a load that succeeded but left nothing to show,
// either because the feed was empty or because every event was in the past.
var ErrEmptyResult = errors.New("no upcoming events")

// State is the outcome of the most recent load.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateEmpty   State = "empty"
	StateFailed  State = "failed"
)

// Fetcher is the feed source. *feed.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context) ([]model.Event, error)
}

// Options configures a Session.
type Options struct {
	Location *time.Location
	// Now overrides the clock; tests pin it.
	Now func() time.Time
}

// Session is safe for concurrent use by HTTP handlers and the scheduler.
type Session struct {
	fetcher   Fetcher
	projector *view.Projector
	loc       *time.Location
	now       func() time.Time
	ready     *view.Ready
	settled   *view.Ready

	mu       sync.RWMutex
	events   []model.Event
	ui       model.UIState
	state    State
	lastErr  error
	loadedAt time.Time
}

// New creates a Session in the loading state.
func New(fetcher Fetcher, projector *view.Projector, opts Options) *Session {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if projector == nil {
		projector = view.NewProjector(nil, view.Options{})
	}
	s := &Session{
		fetcher:   fetcher,
		projector: projector,
		loc:       opts.Location,
		now:       opts.Now,
		ready:     view.NewReady(),
		settled:   view.NewReady(),
		state:     StateLoading,
	}
	s.ui = model.NewUIState(s.Now())
	return s
}

// Now returns the current time in the session's location.
func (s *Session) Now() time.Time {
	return s.now().In(s.loc)
}

// Location returns the display time zone.
func (s *Session) Location() *time.Location {
	return s.loc
}

// Projector returns the view projector used for snapshots.
func (s *Session) Projector() *view.Projector {
	return s.projector
}

// Ready is signaled after the first load that did not fail.
func (s *Session) Ready() *view.Ready {
	return s.ready
}

// Settled is signaled after the first load that finished, failed or not.
func (s *Session) Settled() *view.Ready {
	return s.settled
}

// Load fetches the feed and replaces the retained events on success.
// It returns nil (ready), ErrEmptyResult (empty) or the *feed.FetchError
// (failed). A failed load keeps the previously retained events.
func (s *Session) Load(ctx context.Context) error {
	started := time.Now()
	raw, err := s.fetcher.Fetch(ctx)
	now := s.Now()

	if err != nil && !errors.Is(err, feed.ErrEmptyPayload) {
		s.mu.Lock()
		s.state = StateFailed
		s.lastErr = err
		s.mu.Unlock()
		s.settled.Signal()
		appLog.Error("feed load failed", err, "elapsed", time.Since(started).String())
		return err
	}

	events := pipeline.Prepare(raw, now)

	s.mu.Lock()
	s.events = events
	s.loadedAt = now
	if len(events) == 0 {
		s.state = StateEmpty
		s.lastErr = ErrEmptyResult
	} else {
		s.state = StateReady
		s.lastErr = nil
	}
	state := s.state
	s.mu.Unlock()

	s.ready.Signal()
	s.settled.Signal()
	appLog.Info("feed loaded",
		"state", string(state),
		"fetched", len(raw),
		"retained", len(events),
		"elapsed", time.Since(started).String(),
	)
	if state == StateEmpty {
		return ErrEmptyResult
	}
	return nil
}

// Reload is a user-initiated Load. Each call starts a fresh retry budget.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()
	return s.Load(ctx)
}

// Status returns the state of the last load and its error, if any.
func (s *Session) Status() (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.lastErr
}

// Events returns a copy of all retained events in ranked order.
func (s *Session) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Event(nil), s.events...)
}

// UIState returns the current UI state.
func (s *Session) UIState() model.UIState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ui
}

// WorkingSet applies the current search and date selection.
func (s *Session) WorkingSet() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pipeline.SelectState(s.events, s.ui)
}

func (s *Session) update(fn func(model.UIState) model.UIState) model.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui = fn(s.ui)
	return s.ui
}

// SetSearch replaces the search query.
func (s *Session) SetSearch(q string) model.UIState {
	return s.update(func(u model.UIState) model.UIState { return u.WithSearch(q) })
}

// ToggleDate selects date, or clears the selection if it is already selected.
func (s *Session) ToggleDate(date string) model.UIState {
	return s.update(func(u model.UIState) model.UIState { return u.ToggleDate(date) })
}

// SetView switches the active view.
func (s *Session) SetView(v model.View) model.UIState {
	return s.update(func(u model.UIState) model.UIState { return u.WithView(v) })
}

// ShiftMonth moves the calendar by delta months.
func (s *Session) ShiftMonth(delta int) model.UIState {
	return s.update(func(u model.UIState) model.UIState { return u.ShiftMonth(delta) })
}

// Snapshot is the list view of one UI state.
type Snapshot struct {
	State    State             `json:"state"`
	Error    string            `json:"error,omitempty"`
	Title    string            `json:"title"`
	Count    int               `json:"count"`
	Events   []model.ViewModel `json:"events"`
	Empty    *EmptyMessage     `json:"empty,omitempty"`
	UI       model.UIState     `json:"ui"`
	LoadedAt time.Time         `json:"loaded_at,omitempty"`
}

// EmptyMessage is shown in place of an empty list.
type EmptyMessage struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Snapshot projects the session's own UI state.
func (s *Session) Snapshot() Snapshot {
	return s.SnapshotFor(s.UIState())
}

// SnapshotFor projects an arbitrary UI state against the retained events
// without touching the session's own state.
func (s *Session) SnapshotFor(ui model.UIState) Snapshot {
	s.mu.RLock()
	events := pipeline.SelectState(s.events, ui)
	state, lastErr, loadedAt := s.state, s.lastErr, s.loadedAt
	s.mu.RUnlock()

	now := s.Now()
	snap := Snapshot{
		State:    state,
		Title:    view.Title(ui, s.loc),
		Count:    len(events),
		Events:   s.projector.Project(events, now),
		UI:       ui,
		LoadedAt: loadedAt,
	}
	if lastErr != nil && state == StateFailed {
		snap.Error = lastErr.Error()
	}
	if len(events) == 0 {
		title, subtitle := view.EmptyMessage(ui)
		snap.Empty = &EmptyMessage{Title: title, Subtitle: subtitle}
	}
	return snap
}

// Calendar builds the month grid for the session's visible month, or for
// month when it is non-zero.
func (s *Session) Calendar(month time.Time) (view.Month, error) {
	s.mu.RLock()
	events := s.events
	ui := s.ui
	s.mu.RUnlock()

	if !month.IsZero() {
		ui.VisibleMonth = month
	}
	m, err := s.projector.Calendar(events, ui, s.Now())
	if err != nil {
		return view.Month{}, fmt.Errorf("session: %w", err)
	}
	return m, nil
}

// Markers groups the working set into map placemarks.
func (s *Session) Markers() []view.Marker {
	return s.projector.Markers(s.WorkingSet(), s.Now())
}
