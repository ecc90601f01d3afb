package main

import (
	"io/fs"
	"path/filepath"
	"strings"
)

const schemaFilename = "schema_dynamodb.yaml"

// discoverSchemas finds all schema files below root. Hidden, vendor and
// underscore-prefixed directories are skipped, like the go tool does.
func discoverSchemas(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "node_modules" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == schemaFilename {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
