package util

import (
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteFiles writes each payload to dir as fmt.Sprintf(pattern, index) and
// returns the written paths in order.
func WriteFiles(dir, pattern string, payloads [][]byte) ([]string, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(payloads))
	for i, b := range payloads {
		p := filepath.Join(dir, fmt.Sprintf(pattern, i))
		if err := os.WriteFile(p, b, 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
