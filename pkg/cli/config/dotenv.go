package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process environment.
// Variables already set are kept and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return goerr.Wrap(err, "failed to stat env file", goerr.V(ConfigPathKey, p))
		}

		if err := godotenv.Load(p); err != nil {
			return goerr.Wrap(err, "failed to load env file", goerr.V(ConfigPathKey, p))
		}
	}
	return nil
}
