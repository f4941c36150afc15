package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/report"
)

var metricOrder = append(append([]model.Metric{}, model.DuPontMetrics...), model.MetricOperatingIncome)

// ErrorResponse is the JSON body of non-2xx responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	LastError string `json:"last_error,omitempty"`
}

// BankDetail is served at /v1/banks/{alias}.
type BankDetail struct {
	RunID     string                   `json:"run_id"`
	Ratios    model.BankRatios         `json:"ratios"`
	Tree      model.DuPontNode         `json:"tree"`
	Operating model.OperatingBreakdown `json:"operating"`
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/status", s.handleStatus)
		r.Get("/report", s.handleReport)
		r.Get("/banks", s.handleBanks)
		r.Get("/banks/{alias}", s.handleBank)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Status())
}

// latestOr503 returns the current build or writes 503 when none exists.
func (s *Service) latestOr503(w http.ResponseWriter, r *http.Request) *Build {
	b := s.Latest()
	if b == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, ErrorResponse{Error: "no report built yet", LastError: s.Status().LastError})
	}
	return b
}

func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	if b := s.latestOr503(w, r); b != nil {
		render.JSON(w, r, b)
	}
}

func (s *Service) handleBanks(w http.ResponseWriter, r *http.Request) {
	if b := s.latestOr503(w, r); b != nil {
		render.JSON(w, r, b.Banks)
	}
}

func (s *Service) handleBank(w http.ResponseWriter, r *http.Request) {
	b := s.latestOr503(w, r)
	if b == nil {
		return
	}

	alias := chi.URLParam(r, "alias")
	for i, br := range b.Banks {
		if br.Alias != alias {
			continue
		}
		render.JSON(w, r, BankDetail{
			RunID:     b.RunID,
			Ratios:    br,
			Tree:      report.Tree(br),
			Operating: b.Breakdown[i],
		})
		return
	}

	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, ErrorResponse{Error: fmt.Sprintf("unknown bank %q", alias)})
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	render.JSON(w, r, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the current build immediately.
	current := Event{Type: "report", Timestamp: time.Now()}
	if b := s.Latest(); b != nil {
		current.RunID = b.RunID
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
