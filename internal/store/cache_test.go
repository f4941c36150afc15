package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/dupont/internal/callreport"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndLoadRecordSet(t *testing.T) {
	c := openTemp(t)

	rs := callreport.New("/data/Call_Cert33893_123121.SDF", []callreport.Record{
		{Label: "Legal title of bank", Value: "Raymond James Bank"},
		{Label: "Net income (loss) attributable to bank", Value: "100"},
		{Label: "Total equity capital", Value: "500"},
	}, []string{"20211231", "20211231"})

	require.NoError(t, c.SaveRecordSet(rs, 42, 1024))

	got, err := c.LoadRecordSet(rs.Path)
	require.NoError(t, err)
	assert.Equal(t, rs.Path, got.Path)
	assert.Equal(t, rs.Records(), got.Records())
	assert.Equal(t, rs.CallDates(), got.CallDates())

	tracked, err := c.GetTrackedFiles()
	require.NoError(t, err)
	assert.Equal(t, FileInfo{MtimeNs: 42, SizeBytes: 1024}, tracked[rs.Path])
}

func TestSaveRecordSet_Replaces(t *testing.T) {
	c := openTemp(t)
	path := "/data/a.SDF"

	require.NoError(t, c.SaveRecordSet(callreport.New(path, []callreport.Record{
		{Label: "Net income", Value: "1"},
		{Label: "Total equity", Value: "2"},
	}, []string{"20221231"}), 1, 10))
	require.NoError(t, c.SaveRecordSet(callreport.New(path, []callreport.Record{
		{Label: "Net income", Value: "3"},
	}, nil), 2, 20))

	got, err := c.LoadRecordSet(path)
	require.NoError(t, err)
	assert.Equal(t, []callreport.Record{{Label: "Net income", Value: "3"}}, got.Records())
	assert.Empty(t, got.CallDates())

	n, err := c.FileCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveRecordSet_KeepsSkippedCount(t *testing.T) {
	c := openTemp(t)
	rs := callreport.New("/data/a.SDF", []callreport.Record{{Label: "Net income", Value: "1"}}, nil).WithSkipped(3)

	require.NoError(t, c.SaveRecordSet(rs, 1, 1))

	got, err := c.LoadRecordSet(rs.Path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Skipped())
}

func TestOpen_ResetsStaleSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "records.db")

	// A cache written before skipped counts were tracked.
	old, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = old.Exec(`CREATE TABLE file_tracker (
		path TEXT PRIMARY KEY, mtime_ns INTEGER NOT NULL, size_bytes INTEGER NOT NULL,
		record_count INTEGER NOT NULL DEFAULT 0, parsed_at TEXT NOT NULL);
		INSERT INTO file_tracker VALUES ('/data/a.SDF', 1, 1, 0, 'x');`)
	require.NoError(t, err)
	require.NoError(t, old.Close())

	c, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	n, err := c.FileCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	rs := callreport.New("/data/a.SDF", nil, nil).WithSkipped(1)
	require.NoError(t, c.SaveRecordSet(rs, 1, 1))
	got, err := c.LoadRecordSet(rs.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Skipped())
}

func TestLoadRecordSet_NotCached(t *testing.T) {
	c := openTemp(t)
	_, err := c.LoadRecordSet("/nope.SDF")
	assert.ErrorIs(t, err, ErrNotCached)
}

func TestDeleteFile(t *testing.T) {
	c := openTemp(t)
	path := "/data/a.SDF"
	require.NoError(t, c.SaveRecordSet(callreport.New(path, []callreport.Record{{Label: "x", Value: "1"}}, nil), 1, 1))

	require.NoError(t, c.DeleteFile(path))

	n, err := c.FileCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var orphans int
	require.NoError(t, c.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&orphans))
	assert.Equal(t, 0, orphans)
}

func TestSaveRecordSet_RequiresPath(t *testing.T) {
	c := openTemp(t)
	assert.Error(t, c.SaveRecordSet(callreport.New("", nil, nil), 0, 0))
}

func TestFileInfo_Matches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.SDF")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o600))
	info, err := os.Stat(path)
	require.NoError(t, err)

	fi := FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
	assert.True(t, fi.Matches(info))

	fi.SizeBytes++
	assert.False(t, fi.Matches(info))
}
