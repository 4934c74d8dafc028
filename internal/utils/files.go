package utils

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/conduit-lang/derivewhere/internal/compiler/schema"
)

// IsItemFile reports whether path names an item description
func IsItemFile(path string) bool {
	return strings.HasSuffix(path, schema.Extension)
}

// FindItemFiles recursively finds all item descriptions in the specified
// directory, skipping hidden directories. A path naming a single file is
// returned as is.
func FindItemFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if path == dir || IsItemFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
