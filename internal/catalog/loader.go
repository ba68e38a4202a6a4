package catalog

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

//go:embed default_samples.csv
var defaultSamples string

// Default returns the built-in sample catalog.
func Default() []Sample {
	out, err := parse(strings.NewReader(defaultSamples))
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in samples: %v", err))
	}
	return out
}

// LoadFromDataDir loads samples.csv and the optional custom_samples.csv from
// dataDir. When neither exists it returns Default() and ok=false.
func LoadFromDataDir(dataDir string) (samples []Sample, ok bool, err error) {
	files := []string{
		filepath.Join(dataDir, "samples.csv"),
		filepath.Join(dataDir, "custom_samples.csv"),
	}

	var all []Sample
	var found bool
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		found = true
		ss, err := loadSingleCSV(f)
		if err != nil {
			return nil, false, fmt.Errorf("loading %s: %w", f, err)
		}
		all = append(all, ss...)
	}
	if !found {
		return Default(), false, nil
	}
	return all, true, nil
}

func loadSingleCSV(path string) ([]Sample, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return parse(fp)
}

func parse(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv has no header")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "image_url"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv is missing column %q", required)
		}
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Sample{}
	for _, row := range rows[1:] {
		s := Sample{
			ID:          get(row, "id"),
			Name:        get(row, "name"),
			Category:    strings.ToLower(get(row, "category")),
			ImageURL:    get(row, "image_url"),
			Description: get(row, "description"),
		}
		if s.ID == "" || s.ImageURL == "" {
			continue
		}
		if s.Name == "" {
			s.Name = s.ID
		}
		if s.Category == "" {
			s.Category = "other"
		}
		out = append(out, s)
	}
	return out, nil
}
