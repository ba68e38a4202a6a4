package catalog

import "strings"

type FilterOptions struct {
	Categories []string `json:"categories"`
	FreeWords  string   `json:"free_words"`
}

// Filter keeps samples in any of opt.Categories whose name or description
// contains every word of opt.FreeWords. Matching is case-insensitive.
func Filter(samples []Sample, opt FilterOptions) []Sample {
	out := []Sample{}
	for _, s := range samples {
		if len(opt.Categories) > 0 {
			matched := false
			for _, c := range opt.Categories {
				if strings.EqualFold(s.Category, strings.TrimSpace(c)) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if opt.FreeWords != "" {
			hay := strings.ToLower(s.Name + " " + s.Description)
			ok := true
			for _, k := range strings.Fields(opt.FreeWords) {
				if !strings.Contains(hay, strings.ToLower(k)) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func Find(samples []Sample, id string) (Sample, bool) {
	for _, s := range samples {
		if s.ID == id {
			return s, true
		}
	}
	return Sample{}, false
}
