// Package fsutil provides the file system helpers used to locate build files
// and write export artifacts.
package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FindFilesByExtension recursively lists the files under rootPath whose name
// ends with extension, sorted by path. Hidden directories are skipped.
func FindFilesByExtension(rootPath, extension string) ([]string, error) {
	if extension == "" {
		return nil, fmt.Errorf("find files under %s: extension must not be empty", rootPath)
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
