package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/techinsights/pkg/cli/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, cfg *config.AppConfig)
	}{
		{
			name: "full configuration",
			content: `
[source]
sections = "technology"
query = "semiconductor"
lookback_days = 7
page_size = 20
max_pages = 2

[search]
threshold = 0.55
limit = 10
`,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Source.Sections).Equal("technology")
				gt.Value(t, cfg.Source.Query).Equal("semiconductor")
				gt.Value(t, cfg.Source.Lookback()).Equal(7 * 24 * time.Hour)
				gt.Value(t, cfg.Source.PageSize).Equal(20)
				gt.Value(t, cfg.Source.MaxPages).Equal(2)
				gt.Value(t, cfg.Search.Threshold).NotNil().Required()
				gt.Value(t, *cfg.Search.Threshold).Equal(0.55)
				gt.Value(t, cfg.Search.Limit).Equal(10)
			},
		},
		{
			name:    "empty file keeps zero values",
			content: "",
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Source.Sections).Equal("")
				gt.Value(t, cfg.Search.Threshold).Nil()
				gt.Value(t, cfg.Search.Limit).Equal(0)
			},
		},
		{
			name: "zero threshold is kept",
			content: `
[search]
threshold = 0
`,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Search.Threshold).NotNil().Required()
				gt.Value(t, *cfg.Search.Threshold).Equal(0.0)
			},
		},
		{
			name: "threshold out of range",
			content: `
[search]
threshold = 1.5
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "page size too large",
			content: `
[source]
page_size = 500
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "negative lookback",
			content: `
[source]
lookback_days = -1
`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.toml", tt.content)
			cfg, err := config.LoadAppConfiguration(path)
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			tt.check(t, cfg)
		})
	}

	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := config.LoadAppConfiguration("")
		gt.NoError(t, err).Required()
		gt.Value(t, cfg).NotNil()
		gt.Value(t, cfg.Source.LookbackDays).Equal(0)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, os.ErrNotExist)).True()
	})

	t.Run("malformed TOML", func(t *testing.T) {
		path := writeFile(t, "broken.toml", "[source\nsections = ")
		_, err := config.LoadAppConfiguration(path)
		gt.Error(t, err)
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("loads values without overriding existing ones", func(t *testing.T) {
		t.Setenv("TECHINSIGHTS_TEST_PRESET", "from-env")
		t.Setenv("TECHINSIGHTS_TEST_LOADED", "")
		os.Unsetenv("TECHINSIGHTS_TEST_LOADED")

		path := writeFile(t, ".env", "TECHINSIGHTS_TEST_PRESET=from-file\nTECHINSIGHTS_TEST_LOADED=loaded\n")
		gt.NoError(t, config.LoadDotEnv(path)).Required()
		t.Cleanup(func() { os.Unsetenv("TECHINSIGHTS_TEST_LOADED") })

		gt.Value(t, os.Getenv("TECHINSIGHTS_TEST_PRESET")).Equal("from-env")
		gt.Value(t, os.Getenv("TECHINSIGHTS_TEST_LOADED")).Equal("loaded")
	})

	t.Run("missing file is skipped", func(t *testing.T) {
		gt.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})
}
