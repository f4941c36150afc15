package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/report"
	"github.com/theirongolddev/dupont/internal/store"
)

const testHeader = `"Call Date";"Bank RSSD Identifier";"MDRM #";"Value";"Last Update";"Short Definition";"Call Schedule";"Line Number"`

// writeBank writes a minimal call report for a bank and returns its path.
func writeBank(t *testing.T, dir, name, title, netIncome string) string {
	t.Helper()
	lines := []string{
		testHeader,
		`20221231;1;"RSSD9017";"` + title + `";"";"Legal title of bank";"POR";"1"`,
		`20221231;1;"RIAD4340";"` + netIncome + `";"";"Net income (loss) attributable to bank";"RI";"14"`,
		`20221231;1;"RCFD3210";"500";"";"Total equity capital";"RC";"28"`,
		`20221231;1;"RCFD2170";"2000";"";"Total balance sheet assets";"RC";"12"`,
		`20221231;1;"RIAD4107";"150";"";"Total interest income";"RI";"1"`,
		`20221231;1;"RIAD4073";"40";"";"Total interest expense";"RI";"2"`,
		`20221231;1;"RIADJJ33";"10";"";"Provision for loan and lease losses";"RI";"4"`,
		`20221231;1;"RIAD4079";"100";"";"Total noninterest income";"RI";"5"`,
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
	return path
}

func TestLoad_KeepsSpecOrder(t *testing.T) {
	dir := t.TempDir()
	specs := []BankSpec{
		{Alias: "svb", Path: writeBank(t, dir, "svb.SDF", "Silicon Valley Bank", "300")},
		{Alias: "bu", Path: writeBank(t, dir, "bu.SDF", "BankUnited, N.A.", "100")},
		{Alias: "rj", Path: writeBank(t, dir, "rj.SDF", "Raymond James Bank", "200")},
	}

	var mu sync.Mutex
	var calls int
	result, err := Load(specs, func(current, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		assert.Equal(t, 3, total)
		assert.LessOrEqual(t, current, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, 3, result.ParsedFiles)
	assert.Equal(t, 0, result.FileErrors)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"svb", "bu", "rj"}, result.Registry.Aliases())

	b, err := result.Registry.Get("bu")
	require.NoError(t, err)
	assert.Equal(t, "2022-Q4", b.Period)
	name, err := b.DisplayName()
	require.NoError(t, err)
	assert.Equal(t, "BankUnited, N.A.", name)
}

func TestLoad_FailuresAreCollected(t *testing.T) {
	dir := t.TempDir()
	specs := []BankSpec{
		{Alias: "ok", Path: writeBank(t, dir, "ok.SDF", "OK Bank", "1")},
		{Alias: "gone", Path: filepath.Join(dir, "missing.SDF")},
	}

	result, err := Load(specs, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ParsedFiles)
	assert.Equal(t, 1, result.FileErrors)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "gone", result.Failures[0].Alias)
	assert.ErrorIs(t, result.Failures[0], os.ErrNotExist)

	_, err = result.Registry.Get("gone")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = result.Registry.Get("never")
	assert.ErrorIs(t, err, ErrUnknownBank)
}

func TestLoad_DuplicateAlias(t *testing.T) {
	dir := t.TempDir()
	p := writeBank(t, dir, "a.SDF", "A", "1")
	_, err := Load([]BankSpec{{Alias: "a", Path: p}, {Alias: "a", Path: p}}, nil)
	assert.ErrorIs(t, err, ErrDuplicateAlias)
}

func TestLoad_Empty(t *testing.T) {
	result, err := Load(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Registry.Len())
}

func TestRegistry_Banks(t *testing.T) {
	dir := t.TempDir()
	result, err := Load([]BankSpec{
		{Alias: "a", Path: writeBank(t, dir, "a.SDF", "A", "1")},
		{Alias: "b", Path: writeBank(t, dir, "b.SDF", "B", "2")},
	}, nil)
	require.NoError(t, err)
	reg := result.Registry

	all, err := reg.Banks()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Alias)

	picked, err := reg.Banks("b", "a")
	require.NoError(t, err)
	assert.Equal(t, "b", picked[0].Alias)
	assert.Equal(t, "a", picked[1].Alias)

	_, err = reg.Banks("a", "zzz")
	assert.ErrorIs(t, err, ErrUnknownBank)
}

func TestRegistry_WithPolicy(t *testing.T) {
	reg := NewRegistry()
	rs := callreport.New("", []callreport.Record{
		{Label: "Net income", Value: "1"},
		{Label: "Net income other", Value: "2"},
	}, nil)
	require.NoError(t, reg.Add(report.NewBank("a", rs)))

	strict := reg.WithPolicy(callreport.Policy{Strict: true})
	b, err := strict.Get("a")
	require.NoError(t, err)
	_, err = b.Records.Number("Net income")
	assert.ErrorIs(t, err, callreport.ErrAmbiguous)

	// The original registry is untouched.
	b, err = reg.Get("a")
	require.NoError(t, err)
	_, err = b.Records.Number("Net income")
	assert.NoError(t, err)
}

func TestLoadWithCache(t *testing.T) {
	dir := t.TempDir()
	specs := []BankSpec{
		{Alias: "a", Path: writeBank(t, dir, "a.SDF", "A Bank", "1")},
		{Alias: "b", Path: writeBank(t, dir, "b.SDF", "B Bank", "2")},
	}
	cache, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	first, err := LoadWithCache(specs, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)
	assert.Equal(t, 2, first.Reparsed)

	second, err := LoadWithCache(specs, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, 0, second.Reparsed)
	assert.Equal(t, []string{"a", "b"}, second.Registry.Aliases())

	cached, err := second.Registry.Get("a")
	require.NoError(t, err)
	fresh, err := first.Registry.Get("a")
	require.NoError(t, err)
	assert.Equal(t, fresh.Records.Records(), cached.Records.Records())
	assert.Equal(t, fresh.Period, cached.Period)

	// Touch b with new content; only it is reparsed.
	writeBank(t, dir, "b.SDF", "B Bank", "22222")
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(specs[1].Path, future, future))

	third, err := LoadWithCache(specs, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.CacheHits)
	assert.Equal(t, 1, third.Reparsed)

	b, err := third.Registry.Get("b")
	require.NoError(t, err)
	v, err := b.Records.Number("Net income")
	require.NoError(t, err)
	assert.Equal(t, 22222.0, v)
}

func TestLoadWithCache_KeepsSkippedRows(t *testing.T) {
	dir := t.TempDir()
	path := writeBank(t, dir, "a.SDF", "A Bank", "1")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("20221231\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	specs := []BankSpec{{Alias: "a", Path: path}}
	cache, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	first, err := LoadWithCache(specs, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SkippedRows)

	second, err := LoadWithCache(specs, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.CacheHits)
	assert.Equal(t, 1, second.SkippedRows)
}

func TestLoadWithCache_PrunesRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeBank(t, dir, "a.SDF", "A Bank", "1")
	b := writeBank(t, dir, "b.SDF", "B Bank", "2")
	c := writeBank(t, dir, "c.SDF", "C Bank", "3")

	cache, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	first, err := LoadWithCache([]BankSpec{{Alias: "a", Path: a}, {Alias: "b", Path: b}, {Alias: "c", Path: c}}, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, first.CachedFiles)

	// b is deleted; c still exists but is not requested.
	require.NoError(t, os.Remove(b))
	second, err := LoadWithCache([]BankSpec{{Alias: "a", Path: a}}, cache, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Pruned)
	assert.Equal(t, 2, second.CachedFiles)

	tracked, err := cache.GetTrackedFiles()
	require.NoError(t, err)
	assert.Contains(t, tracked, a)
	assert.Contains(t, tracked, c)
	assert.NotContains(t, tracked, b)
}

func TestLoadAuto(t *testing.T) {
	dir := t.TempDir()
	specs := []BankSpec{{Alias: "a", Path: writeBank(t, dir, "a.SDF", "A Bank", "1")}}

	tests := []struct {
		name      string
		cachePath string
		cacheErr  bool
	}{
		{"no cache", "", false},
		{"cache", filepath.Join(t.TempDir(), "records.db"), false},
		{"unusable cache", filepath.Join(dir, "a.SDF", "records.db"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := LoadAuto(specs, tt.cachePath, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"a"}, res.Registry.Aliases())
			assert.Equal(t, tt.cacheErr, res.CacheErr != nil)
		})
	}
}

func TestSpecs(t *testing.T) {
	dir := t.TempDir()
	rj := writeBank(t, dir, "Call_Cert33893_123122.SDF", "Raymond James Bank", "1")
	writeBank(t, dir, "Call_Cert58979_123122.SDF", "BankUnited, N.A.", "1")
	writeBank(t, dir, "svb.SDF", "Silicon Valley Bank", "1")

	specs, err := Specs(dir, []BankSpec{
		{Alias: "rj", Path: rj},
		{Alias: "svb", Path: "/elsewhere/svb.SDF"},
	})
	require.NoError(t, err)

	var aliases []string
	for _, s := range specs {
		aliases = append(aliases, s.Alias)
	}
	assert.Equal(t, []string{"rj", "svb", "cert58979", "svb-2"}, aliases)
}

func TestSpecs_DuplicateConfigured(t *testing.T) {
	_, err := Specs("", []BankSpec{{Alias: "a", Path: "x"}, {Alias: "a", Path: "y"}})
	assert.ErrorIs(t, err, ErrDuplicateAlias)
}

func TestCachePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/dupont/records.db", CachePath())
}
