// Package envfile locates and loads the nearest .env file.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Name is the file looked up in each directory
const Name = ".env"

// Find walks up from dir and returns the first .env path, or "" if none exists
func Find(dir string) string {
	for {
		path := filepath.Join(dir, Name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load loads the nearest .env above the working directory without overriding
// variables already set. It returns the loaded path, or "" when there is none.
func Load() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	path := Find(dir)
	if path == "" {
		return "", nil
	}
	if err := godotenv.Load(path); err != nil {
		return path, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return path, nil
}
