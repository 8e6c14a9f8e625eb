package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha/internal/feed"
	"afisha/internal/model"
)

type fakeFetcher struct {
	mu     sync.Mutex
	events []model.Event
	err    error
	calls  int
}

func (f *fakeFetcher) Fetch(context.Context) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.events, f.err
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(f Fetcher) *Session {
	return New(f, nil, Options{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})
}

func sampleEvents() []model.Event {
	return []model.Event{
		{Title: "Old", Date: "2024-05-31", Time: "20:00"},
		{Title: "Jazz night", Date: "2024-06-02", Rating: 4, Place: model.Place{Name: "Клуб"}},
		{Title: "Rock fest", Date: "2024-06-01", Time: "19:00", Tags: []model.Tag{{Name: "rock"}}},
		{Title: "Organ", Date: "2024-06-02", Rating: 5, Place: model.Place{Name: "Органный зал"}},
	}
}

func titles(vms []model.ViewModel) []string {
	out := make([]string, 0, len(vms))
	for _, vm := range vms {
		out = append(out, vm.Title)
	}
	return out
}

func TestLoad_Ready(t *testing.T) {
	s := newTestSession(&fakeFetcher{events: sampleEvents()})

	state, _ := s.Status()
	assert.Equal(t, StateLoading, state)
	assert.False(t, s.Ready().IsReady())

	require.NoError(t, s.Load(context.Background()))

	state, err := s.Status()
	assert.Equal(t, StateReady, state)
	assert.NoError(t, err)
	assert.True(t, s.Ready().IsReady())

	snap := s.Snapshot()
	assert.Equal(t, []string{"Rock fest", "Organ", "Jazz night"}, titles(snap.Events))
	assert.Equal(t, 3, snap.Count)
	assert.Equal(t, "Все концерты", snap.Title)
	assert.Nil(t, snap.Empty)
}

func TestLoad_EmptyAfterFiltering(t *testing.T) {
	s := newTestSession(&fakeFetcher{events: []model.Event{{Title: "Old", Date: "2024-01-01"}}})

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyResult)

	state, _ := s.Status()
	assert.Equal(t, StateEmpty, state)
	assert.True(t, s.Ready().IsReady())

	snap := s.Snapshot()
	assert.Empty(t, snap.Events)
	require.NotNil(t, snap.Empty)
	assert.Equal(t, "Нет концертов", snap.Empty.Title)
}

func TestLoad_EmptyPayload(t *testing.T) {
	s := newTestSession(&fakeFetcher{err: &feed.FetchError{Attempts: 3, Err: feed.ErrEmptyPayload}})

	assert.ErrorIs(t, s.Load(context.Background()), ErrEmptyResult)
	state, _ := s.Status()
	assert.Equal(t, StateEmpty, state)
}

func TestLoad_FailedKeepsPreviousEvents(t *testing.T) {
	f := &fakeFetcher{events: sampleEvents()}
	s := newTestSession(f)
	require.NoError(t, s.Load(context.Background()))

	f.err = &feed.FetchError{Attempts: 3, Err: errors.New("boom")}
	err := s.Reload(context.Background())

	var fe *feed.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Attempts)

	state, lastErr := s.Status()
	assert.Equal(t, StateFailed, state)
	assert.True(t, s.Settled().IsReady())
	assert.Equal(t, err, lastErr)
	assert.Len(t, s.Events(), 3)
	assert.Equal(t, 2, f.calls)

	snap := s.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Contains(t, snap.Error, "boom")
}

func TestLoad_FirstFailureSettlesWithoutReady(t *testing.T) {
	s := newTestSession(&fakeFetcher{err: &feed.FetchError{Attempts: 3, Err: errors.New("boom")}})
	assert.False(t, s.Settled().IsReady())

	require.Error(t, s.Load(context.Background()))
	assert.True(t, s.Settled().IsReady())
	assert.False(t, s.Ready().IsReady())
}

func TestUIStateMutators(t *testing.T) {
	s := newTestSession(&fakeFetcher{events: sampleEvents()})
	require.NoError(t, s.Load(context.Background()))

	ui := s.SetSearch("  ROCK ")
	assert.Equal(t, "rock", ui.SearchQuery)
	assert.Equal(t, []string{"Rock fest"}, titles(s.Snapshot().Events))

	s.SetSearch("")
	s.ToggleDate("2024-06-02")
	snap := s.Snapshot()
	assert.Equal(t, []string{"Organ", "Jazz night"}, titles(snap.Events))
	assert.Equal(t, "Концерты 2 июня", snap.Title)

	ui = s.ToggleDate("2024-06-02")
	assert.Empty(t, ui.SelectedDate)
	assert.Len(t, s.WorkingSet(), 3)

	ui = s.SetView(model.ViewMap)
	assert.Equal(t, model.ViewMap, ui.ActiveView)

	ui = s.ShiftMonth(1)
	assert.Equal(t, time.July, ui.VisibleMonth.Month())
}

func TestSnapshotFor_DoesNotMutateSession(t *testing.T) {
	s := newTestSession(&fakeFetcher{events: sampleEvents()})
	require.NoError(t, s.Load(context.Background()))

	snap := s.SnapshotFor(s.UIState().WithSearch("zzz"))
	assert.Empty(t, snap.Events)
	require.NotNil(t, snap.Empty)
	assert.Equal(t, "Ничего не найдено", snap.Empty.Title)

	assert.Empty(t, s.UIState().SearchQuery)
}

func TestCalendarAndMarkers(t *testing.T) {
	s := newTestSession(&fakeFetcher{events: sampleEvents()})
	require.NoError(t, s.Load(context.Background()))

	m, err := s.Calendar(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2024-06", m.Month)
	assert.Equal(t, 2, m.Days[1].Count)

	m, err = s.Calendar(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-07", m.Month)

	markers := s.Markers()
	require.Len(t, markers, 3)
	assert.Equal(t, "Неизвестное место", markers[0].PlaceName)
}

func TestSchedule(t *testing.T) {
	s := newTestSession(&fakeFetcher{})

	c, err := s.Schedule(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = s.Schedule(context.Background(), "not a schedule")
	assert.Error(t, err)

	c, err = s.Schedule(context.Background(), "@every 1h")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
