package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
)

// loadDotEnv loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error and variables that are
// already set are never overwritten.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return eris.Wrapf(err, "config: stat %s", path)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return eris.Wrapf(err, "config: parse %s", path)
	}
	for k, v := range values {
		// Empty values count as unset so local files can fill them in.
		if os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return eris.Wrapf(err, "config: set %s", k)
		}
	}
	return nil
}
