package callreport

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// FFIEC bulk download names look like Call_Cert33893_123121.SDF
// (certificate number, then the report date as MMDDYY).
var ffiecName = regexp.MustCompile(`(?i)^Call_Cert(\d+)_(\d{6})\.sdf$`)

// ScanDir walks dir and discovers all SDF files. Files following the FFIEC
// naming scheme get a "cert<N>" alias; when one certificate appears for
// several periods each alias is suffixed with its quarter ("cert33893-2021q4").
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".sdf") {
			return nil
		}
		files = append(files, Discover(path))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	disambiguate(files)
	return files, nil
}

// Discover derives alias, certificate and period end from a file name.
func Discover(path string) DiscoveredFile {
	name := filepath.Base(path)
	df := DiscoveredFile{
		Path:  path,
		Alias: strings.TrimSuffix(name, filepath.Ext(name)),
	}

	m := ffiecName.FindStringSubmatch(name)
	if m == nil {
		return df
	}
	df.Cert = m[1]
	df.Alias = "cert" + m[1]
	if t, err := time.Parse("010206", m[2]); err == nil {
		df.PeriodEnd = t
	}
	return df
}

func disambiguate(files []DiscoveredFile) {
	count := make(map[string]int)
	for _, f := range files {
		count[f.Alias]++
	}
	for i, f := range files {
		if count[f.Alias] < 2 || f.PeriodEnd.IsZero() {
			continue
		}
		p := PeriodOf(f.PeriodEnd)
		files[i].Alias = fmt.Sprintf("%s-%dq%d", f.Alias, p.Year, p.Quarter)
	}
}
