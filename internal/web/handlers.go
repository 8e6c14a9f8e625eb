package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"afisha/internal/ics"
	appLog "afisha/internal/log"
	"afisha/internal/model"
	"afisha/internal/pipeline"
	"afisha/internal/session"
	"afisha/internal/view"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// failedResponse is returned with 502 when the feed could not be loaded.
type failedResponse struct {
	Error string        `json:"error"`
	State session.State `json:"state"`
}

// writeFailed answers 502 when the last load failed and reports whether it did.
func (s *Server) writeFailed(w http.ResponseWriter) bool {
	state, err := s.session.Status()
	if state != session.StateFailed {
		return false
	}
	msg := "feed unavailable"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, http.StatusBadGateway, failedResponse{Error: msg, State: state})
	return true
}

// requestState overlays the q and date query parameters on the session's UI
// state. The session itself is not modified.
func (s *Server) requestState(r *http.Request) model.UIState {
	ui := s.session.UIState()
	q := r.URL.Query()
	if q.Has("q") {
		ui = ui.WithSearch(q.Get("q"))
	}
	if q.Has("date") {
		ui.SelectedDate = strings.TrimSpace(q.Get("date"))
	}
	return ui
}

// handleEvents returns the working set as view-models.
//
// GET /api/events?q=jazz&date=2024-06-01
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.writeFailed(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.SnapshotFor(s.requestState(r)))
}

// handleEventsICS exports the working set as text/calendar.
func (s *Server) handleEventsICS(w http.ResponseWriter, r *http.Request) {
	if s.writeFailed(w) {
		return
	}
	events := pipeline.SelectState(s.session.Events(), s.requestState(r))
	body := ics.Export(events, ics.Options{
		Resolver: s.session.Projector().Resolver(),
		Location: s.session.Location(),
		Now:      s.session.Now(),
		Name:     "Афиша",
	})

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleCalendar returns the month grid.
//
// GET /api/calendar?month=2024-06 (defaults to the session's visible month)
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	var month time.Time
	if m := strings.TrimSpace(r.URL.Query().Get("month")); m != "" {
		parsed, err := view.ParseMonth(m, s.session.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		month = parsed
	}

	grid, err := s.session.Calendar(month)
	if err != nil {
		appLog.Error("calendar build failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

type mapResponse struct {
	Markers []view.Marker     `json:"markers"`
	Center  model.Coordinates `json:"center"`
}

// handleMap waits for the first load to finish, then returns the working set
// markers. A failed load answers 502 without waiting.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if s.writeFailed(w) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.mapWait)
	defer cancel()
	if err := s.session.Settled().Wait(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, failedResponse{
			Error: "feed is not loaded yet",
			State: session.StateLoading,
		})
		return
	}

	if s.writeFailed(w) {
		return
	}
	writeJSON(w, http.StatusOK, mapResponse{
		Markers: s.session.Markers(),
		Center: model.Coordinates{
			Lat: s.cfg.CityCenter.Lat,
			Lng: s.cfg.CityCenter.Lng,
		},
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.UIState())
}

// stateRequest is the body of POST /api/state. Absent fields are left alone.
type stateRequest struct {
	Search     *string `json:"search"`
	ToggleDate *string `json:"toggle_date"`
	View       *string `json:"view"`
	MonthDelta int     `json:"month_delta"`
}

func (s *Server) handlePostState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ui := s.session.UIState()
	if req.Search != nil {
		ui = s.session.SetSearch(*req.Search)
	}
	if req.ToggleDate != nil {
		ui = s.session.ToggleDate(*req.ToggleDate)
	}
	if req.View != nil {
		ui = s.session.SetView(model.ParseView(*req.View))
	}
	if req.MonthDelta != 0 {
		ui = s.session.ShiftMonth(req.MonthDelta)
	}
	writeJSON(w, http.StatusOK, ui)
}

// handleReload refetches the feed. The fetch is detached from the request so
// a disconnecting client does not abort a reload other callers share.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	err := s.session.Reload(context.WithoutCancel(r.Context()))
	if err != nil && !errors.Is(err, session.ErrEmptyResult) {
		writeJSON(w, http.StatusBadGateway, failedResponse{Error: err.Error(), State: session.StateFailed})
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}
