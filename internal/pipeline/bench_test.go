package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/dupont/internal/callreport"
	"github.com/theirongolddev/dupont/internal/store"
)

// benchSpecs writes n synthetic reports of rows lines each.
func benchSpecs(b *testing.B, n, rows int) []BankSpec {
	b.Helper()
	dir := b.TempDir()
	var sb strings.Builder
	sb.WriteString(testHeader + "\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "20221231;1;\"RCON%04d\";\"%d\";\"2023-01-30\";\"Line item %d\";\"RC\";\"1\"\n", i, i*1000, i)
	}
	body := []byte(sb.String())

	specs := make([]BankSpec, n)
	for i := range specs {
		path := filepath.Join(dir, fmt.Sprintf("Call_Cert%d_123122.SDF", 10000+i))
		if err := os.WriteFile(path, body, 0o600); err != nil {
			b.Fatal(err)
		}
		specs[i] = BankSpec{Alias: fmt.Sprintf("bank%d", i), Path: path}
	}
	return specs
}

func BenchmarkLoad(b *testing.B) {
	specs := benchSpecs(b, 16, 2000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(specs, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoadWithCache(b *testing.B) {
	specs := benchSpecs(b, 16, 2000)
	cache, err := store.Open(filepath.Join(b.TempDir(), "records.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	// Warm the cache.
	if _, err := LoadWithCache(specs, cache, nil); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadWithCache(specs, cache, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseFile(b *testing.B) {
	specs := benchSpecs(b, 1, 20000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := callreport.ParseFile(specs[0].Path); err != nil {
			b.Fatal(err)
		}
	}
}
