package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dupont/internal/model"
	"github.com/theirongolddev/dupont/internal/pipeline"
)

const header = `"Call Date";"Short Definition";"Value"`

func writeBank(t *testing.T, dir, name, title, netIncome string) string {
	t.Helper()
	rows := []string{
		header,
		`20221231;"Legal title of bank";"` + title + `"`,
		`20221231;"Net income (loss) attributable to bank";"` + netIncome + `"`,
		`20221231;"Total equity capital";"500"`,
		`20221231;"Total balance sheet assets";"2000"`,
		`20221231;"Total interest income";"150"`,
		`20221231;"Total interest expense";"40"`,
		`20221231;"Provision for loan and lease losses";"10"`,
		`20221231;"Total noninterest income";"100"`,
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o600))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, specs func() ([]pipeline.BankSpec, error)) (*Service, *httptest.Server) {
	t.Helper()
	s := New(Config{Specs: specs, Interval: time.Minute, Logger: quietLogger()})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestReportEndpoints(t *testing.T) {
	dir := t.TempDir()
	specs := []pipeline.BankSpec{
		{Alias: "rj", Path: writeBank(t, dir, "rj.SDF", "Raymond James Bank", "100")},
		{Alias: "bu", Path: writeBank(t, dir, "bu.SDF", "BankUnited, N.A.", "50")},
	}
	s, srv := newTestService(t, func() ([]pipeline.BankSpec, error) { return specs, nil })
	s.buildOnce()

	var b Build
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/report", &b))
	assert.NotEmpty(t, b.RunID)
	assert.Equal(t, "2022-Q4", b.Period)
	assert.Equal(t, []string{"Raymond James Bank", "BankUnited, N.A."}, b.DuPont.Columns)
	roe, ok := b.DuPont.Row(string(model.MetricReturnOnEquity))
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0.2, 0.1}, roe, 1e-12)
	assert.Equal(t, model.OperatingTitle, b.Operating.Title)

	var banks []model.BankRatios
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/banks", &banks))
	require.Len(t, banks, 2)
	assert.Equal(t, "rj", banks[0].Alias)

	var detail BankDetail
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/banks/bu", &detail))
	assert.Equal(t, "BankUnited, N.A.", detail.Ratios.Name)
	assert.Equal(t, model.MetricReturnOnEquity, detail.Tree.Metric)
	assert.Equal(t, -40.0, detail.Operating.InterestExpense)

	var errResp ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/v1/banks/nope", &errResp))
	assert.Contains(t, errResp.Error, "nope")
}

func TestReport_BeforeFirstBuild(t *testing.T) {
	_, srv := newTestService(t, func() ([]pipeline.BankSpec, error) { return nil, nil })

	var errResp ErrorResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/v1/report", &errResp))
}

func TestBuildFailureKeepsPreviousReport(t *testing.T) {
	dir := t.TempDir()
	good := []pipeline.BankSpec{{Alias: "rj", Path: writeBank(t, dir, "rj.SDF", "Raymond James Bank", "100")}}
	fail := false
	s, srv := newTestService(t, func() ([]pipeline.BankSpec, error) {
		if fail {
			return nil, errors.New("data dir gone")
		}
		return good, nil
	})

	s.buildOnce()
	first := s.Latest()
	require.NotNil(t, first)

	fail = true
	s.buildOnce()
	assert.Same(t, first, s.Latest())

	var st Status
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/status", &st))
	assert.Equal(t, int64(2), st.BuildCount)
	assert.Equal(t, "data dir gone", st.LastError)
	assert.Equal(t, first.RunID, st.RunID)
	assert.Equal(t, 1, st.Banks)
}

func TestBuild_UnknownAlias(t *testing.T) {
	dir := t.TempDir()
	specs := []pipeline.BankSpec{{Alias: "rj", Path: writeBank(t, dir, "rj.SDF", "Raymond James Bank", "100")}}
	s := New(Config{
		Specs:   func() ([]pipeline.BankSpec, error) { return specs, nil },
		Aliases: []string{"svb"},
		Logger:  quietLogger(),
	})
	s.buildOnce()
	assert.Nil(t, s.Latest())
	assert.Contains(t, s.Status().LastError, "unknown bank")
}

func TestBuild_WithCache(t *testing.T) {
	dir := t.TempDir()
	specs := []pipeline.BankSpec{{Alias: "rj", Path: writeBank(t, dir, "rj.SDF", "Raymond James Bank", "100")}}
	s := New(Config{
		Specs:     func() ([]pipeline.BankSpec, error) { return specs, nil },
		CachePath: filepath.Join(t.TempDir(), "records.db"),
		Logger:    quietLogger(),
	})
	s.buildOnce()
	s.buildOnce()
	require.NotNil(t, s.Latest())
	assert.Empty(t, s.Status().LastError)
}

func TestEventsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeBank(t, dir, "rj.SDF", "Raymond James Bank", "100")
	specs := []pipeline.BankSpec{{Alias: "rj", Path: path}}
	s, srv := newTestService(t, func() ([]pipeline.BankSpec, error) { return specs, nil })

	s.buildOnce()
	s.buildOnce() // unchanged, no event
	writeBank(t, dir, "rj.SDF", "Raymond James Bank", "200")
	s.buildOnce()

	var events []Event
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/v1/events", &events))
	require.Len(t, events, 2)
	assert.Equal(t, "report", events[0].Type)
	assert.Equal(t, "report_changed", events[1].Type)
	assert.Equal(t, []string{"rj"}, events[1].Changed)
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2, Logger: quietLogger()})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestDiffBuilds(t *testing.T) {
	a := model.BankRatios{Alias: "a", Ratios: model.Ratios{ReturnOnEquity: 0.1}}
	b := model.BankRatios{Alias: "b", Ratios: model.Ratios{ReturnOnEquity: 0.2}}
	b2 := b
	b2.ReturnOnEquity = 0.3
	c := model.BankRatios{Alias: "c"}

	assert.Nil(t, diffBuilds(nil, &Build{Banks: []model.BankRatios{a}}))
	assert.Empty(t, diffBuilds(&Build{Banks: []model.BankRatios{a, b}}, &Build{Banks: []model.BankRatios{a, b}}))
	assert.Equal(t, []string{"b", "c"}, diffBuilds(
		&Build{Banks: []model.BankRatios{a, b}},
		&Build{Banks: []model.BankRatios{a, b2, c}},
	))
	assert.Equal(t, []string{"b"}, diffBuilds(
		&Build{Banks: []model.BankRatios{a, b}},
		&Build{Banks: []model.BankRatios{a}},
	))
}

func TestHealthAndMetrics(t *testing.T) {
	dir := t.TempDir()
	specs := []pipeline.BankSpec{{Alias: "rj", Path: writeBank(t, dir, "rj.SDF", "Raymond James Bank", "100")}}
	s, srv := newTestService(t, func() ([]pipeline.BankSpec, error) { return specs, nil })
	s.buildOnce()

	resp, err := http.Get(srv.URL + "/healthz") //nolint:noctx // test
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Get(srv.URL + "/metrics") //nolint:noctx // test
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(body), "dupont_builds_total 1")
	assert.Contains(t, string(body), `dupont_ratio{alias="rj",metric="Return on Equity"} 0.2`)
}

func TestStream_SendsCurrentReport(t *testing.T) {
	dir := t.TempDir()
	specs := []pipeline.BankSpec{{Alias: "rj", Path: writeBank(t, dir, "rj.SDF", "Raymond James Bank", "100")}}
	s, srv := newTestService(t, func() ([]pipeline.BankSpec, error) { return specs, nil })
	s.buildOnce()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	sc := bufio.NewScanner(resp.Body)
	require.True(t, sc.Scan())
	assert.Equal(t, "event: report", sc.Text())
	require.True(t, sc.Scan())
	assert.Contains(t, sc.Text(), s.Latest().RunID)
}
