package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes content to dir/name, creating dir when needed, and
// returns the full path.
func WriteFile(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
