package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads each env file that exists, in order. Variables already in
// the environment, or set by an earlier file, win.
func LoadDotEnv(paths ...string) error {
	var present []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
		present = append(present, path)
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}
