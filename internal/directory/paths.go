package directory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DeskrosterDirName is the base data directory under the user's home.
const DeskrosterDirName = ".deskroster"

// GetDeskrosterDir returns the base deskroster directory (~/.deskroster).
// DESKROSTER_DIR overrides it, mostly for tests.
func GetDeskrosterDir() (string, error) {
	if dir := os.Getenv("DESKROSTER_DIR"); dir != "" {
		return ExpandTilde(dir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DeskrosterDirName), nil
}

// GetDBPath returns the path to the roster database.
func GetDBPath() (string, error) {
	dir, err := GetDeskrosterDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "roster.db"), nil
}

// ExpandTilde expands a leading ~ to the user's home directory, with path
// traversal protection: a cleaned path escaping home is returned unexpanded.
func ExpandTilde(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		cleaned := filepath.Clean(filepath.Join(home, path[2:]))
		if strings.HasPrefix(cleaned, home) {
			return cleaned
		}
	}
	return path
}
