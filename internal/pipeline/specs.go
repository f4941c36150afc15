package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/dupont/internal/callreport"
)

// Specs merges configured banks with the SDF files discovered under dir.
// Configured banks come first, in configuration order. Discovered files
// already configured by path are dropped; a discovered alias that clashes
// with an earlier one gets a numeric suffix.
func Specs(dir string, configured []BankSpec) ([]BankSpec, error) {
	out := make([]BankSpec, 0, len(configured))
	aliases := make(map[string]struct{})
	paths := make(map[string]struct{})

	for _, c := range configured {
		if _, ok := aliases[c.Alias]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAlias, c.Alias)
		}
		aliases[c.Alias] = struct{}{}
		paths[filepath.Clean(c.Path)] = struct{}{}
		out = append(out, c)
	}

	if dir == "" {
		return out, nil
	}
	files, err := callreport.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	for _, f := range files {
		if _, ok := paths[filepath.Clean(f.Path)]; ok {
			continue
		}
		alias := f.Alias
		for n := 2; ; n++ {
			if _, ok := aliases[alias]; !ok {
				break
			}
			alias = fmt.Sprintf("%s-%d", f.Alias, n)
		}
		aliases[alias] = struct{}{}
		out = append(out, BankSpec{Alias: alias, Path: f.Path})
	}
	return out, nil
}
