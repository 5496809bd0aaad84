package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv reads ~/.config/aaxconv/.env and ./.env when present. Variables
// already set in the process environment win.
func loadDotEnv() error {
	candidates := make([]string, 0, 2)
	if userEnv, err := expandPath("~/.config/aaxconv/.env"); err == nil {
		candidates = append(candidates, userEnv)
	}
	if projectEnv, err := expandPath(".env"); err == nil {
		candidates = append(candidates, projectEnv)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file: %w", err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}
