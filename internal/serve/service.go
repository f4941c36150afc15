// Package serve provides the long-running report server: it rebuilds the
// DuPont report from the call reports on disk on a fixed interval and serves
// the latest build as JSON.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/pipeline"
	"github.com/theirongolddev/dupont/internal/report"
)

// Config controls the server runtime behavior.
type Config struct {
	// Specs resolves the bank list; it is called on every build so new
	// files in the data directory are picked up.
	Specs func() ([]pipeline.BankSpec, error)
	// Aliases selects and orders the compared banks. Empty means all.
	Aliases      []string
	Policy       callreport.Policy
	CachePath    string // parse cache database, empty disables caching
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *slog.Logger
}

// Build is one complete report computed from the files on disk.
type Build struct {
	RunID     string                     `json:"run_id"`
	At        time.Time                  `json:"at"`
	Period    string                     `json:"period,omitempty"`
	DuPont    model.Table                `json:"dupont"`
	Operating model.Table                `json:"operating"`
	Banks     []model.BankRatios         `json:"banks"`
	Breakdown []model.OperatingBreakdown `json:"breakdown"`
}

// Event is emitted whenever a build changes any bank's ratios.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Changed   []string  `json:"changed,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastBuildAt     time.Time `json:"last_build_at"`
	IntervalSec     int       `json:"interval_sec"`
	BuildCount      int64     `json:"build_count"`
	RunID           string    `json:"run_id,omitempty"`
	Banks           int       `json:"banks"`
	Period          string    `json:"period,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the server runtime and HTTP API.
type Service struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics

	mu          sync.RWMutex
	startedAt   time.Time
	lastBuildAt time.Time
	buildCount  int64
	lastError   string
	build       *Build
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8417"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		log:       cfg.Logger.With(slog.String("component", "serve")),
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and the rebuild loop until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("listening", slog.String("addr", s.cfg.Addr), slog.Duration("interval", s.cfg.Interval))

	// Seed the first build so the API is useful immediately.
	s.buildOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.buildOnce()
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

// buildOnce rebuilds the report. On failure the previous build keeps being
// served and the error is surfaced in the status.
func (s *Service) buildOnce() {
	start := time.Now()
	b, err := s.rebuild()
	elapsed := time.Since(start)
	s.metrics.observe(b, elapsed, err)

	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastBuildAt = time.Now()
		s.buildCount++
		s.mu.Unlock()
		s.log.Error("build failed", slog.String("error", err.Error()), slog.Duration("elapsed", elapsed))
		return
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.build
	s.build = b
	s.lastBuildAt = b.At
	s.buildCount++
	s.lastError = ""

	changed := diffBuilds(prev, b)
	if prev == nil || len(changed) > 0 {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "report",
			Timestamp: b.At,
			RunID:     b.RunID,
			Changed:   changed,
		}
		if prev != nil {
			ev.Type = "report_changed"
		}
		publish = true
	}
	s.mu.Unlock()

	s.log.Info("build complete",
		slog.String("run_id", b.RunID),
		slog.Int("banks", len(b.Banks)),
		slog.String("period", b.Period),
		slog.Duration("elapsed", elapsed))

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) rebuild() (*Build, error) {
	specs, err := s.cfg.Specs()
	if err != nil {
		return nil, err
	}
	reg, err := s.load(specs)
	if err != nil {
		return nil, err
	}
	banks, err := reg.WithPolicy(s.cfg.Policy).Banks(s.cfg.Aliases...)
	if err != nil {
		return nil, err
	}
	if len(banks) == 0 {
		return nil, errors.New("no banks to compare")
	}

	dupont, err := report.Compare(banks)
	if err != nil {
		return nil, err
	}
	operating, err := report.CompareOperating(banks)
	if err != nil {
		return nil, err
	}
	ratios, err := report.BuildAll(banks)
	if err != nil {
		return nil, err
	}
	breakdown := make([]model.OperatingBreakdown, 0, len(banks))
	for _, b := range banks {
		ob, err := report.BuildOperating(b)
		if err != nil {
			return nil, err
		}
		breakdown = append(breakdown, ob)
	}

	return &Build{
		RunID:     uuid.NewString(),
		At:        time.Now(),
		Period:    report.CommonPeriod(banks),
		DuPont:    dupont,
		Operating: operating,
		Banks:     ratios,
		Breakdown: breakdown,
	}, nil
}

func (s *Service) load(specs []pipeline.BankSpec) (*pipeline.Registry, error) {
	result, err := pipeline.LoadAuto(specs, s.cfg.CachePath, nil)
	if err != nil {
		return nil, err
	}
	if result.CacheErr != nil {
		s.log.Warn("cache unavailable, parsed all files", slog.String("error", result.CacheErr.Error()))
	}

	for _, f := range result.Failures {
		s.log.Warn("skipping unreadable report",
			slog.String("alias", f.Alias),
			slog.String("path", f.Path),
			slog.String("error", f.Err.Error()))
	}
	return result.Registry, nil
}

// diffBuilds returns the aliases whose ratios differ between builds,
// including banks that appeared or disappeared.
func diffBuilds(prev, curr *Build) []string {
	if prev == nil {
		return nil
	}
	before := make(map[string]model.BankRatios, len(prev.Banks))
	for _, b := range prev.Banks {
		before[b.Alias] = b
	}

	var changed []string
	for _, b := range curr.Banks {
		old, ok := before[b.Alias]
		if !ok || old != b {
			changed = append(changed, b.Alias)
		}
		delete(before, b.Alias)
	}
	for alias := range before {
		changed = append(changed, alias)
	}
	slices.Sort(changed)
	return changed
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// Latest returns the most recent successful build, or nil.
func (s *Service) Latest() *Build {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.build
}

// Status returns the current runtime status.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastBuildAt:     s.lastBuildAt,
		IntervalSec:     int(s.cfg.Interval.Seconds()),
		BuildCount:      s.buildCount,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.build != nil {
		st.RunID = s.build.RunID
		st.Banks = len(s.build.Banks)
		st.Period = s.build.Period
	}
	return st
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
