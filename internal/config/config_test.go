package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "source.pdf", cfg.Input)
	assert.Equal(t, "chapters", cfg.OutputDir)
	assert.Equal(t, "quality-report.json", cfg.ReportPath)
	assert.Equal(t, ".md", cfg.Extension)
	assert.Equal(t, "vi", cfg.Profile)
	assert.Equal(t, 200, cfg.FrontMatterMinChars)
	assert.Equal(t, 40, cfg.SlugMaxLen)
	assert.Equal(t, 2, cfg.Title.MaxExtraLines)
	assert.Equal(t, 120, cfg.Title.MaxLineLen)
	assert.Equal(t, 60, cfg.Title.ProseMinLen)
	assert.Equal(t, 100, cfg.Quality.MinChars)
	assert.True(t, cfg.Cleanup.DetectRunningHeaders)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	content := `
input: book.txt
output_dir: out
profile: en
workers: 4
title:
  max_extra_lines: 1
cleanup:
  running_headers: ["The Long Road"]
  fuzzy_tolerance: 2
quality:
  script: japanese
  short_fraction: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "book.txt", cfg.Input)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "en", cfg.Profile)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 1, cfg.Title.MaxExtraLines)
	// 未覆盖的字段保留默认值
	assert.Equal(t, 120, cfg.Title.MaxLineLen)
	assert.Equal(t, []string{"The Long Road"}, cfg.Cleanup.RunningHeaders)
	assert.Equal(t, 2, cfg.Cleanup.FuzzyTolerance)
	assert.Equal(t, "japanese", cfg.Quality.Script)
	assert.InDelta(t, 0.5, cfg.Quality.ShortFraction, 1e-9)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	t.Setenv("CHAPTER_SPLITTER_OUTPUT_DIR", "from-env")
	t.Setenv("CHAPTER_SPLITTER_QUALITY_MIN_CHARS", "42")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OutputDir)
	assert.Equal(t, 42, cfg.Quality.MinChars)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality:\n  short_fraction: 1.5\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"extension without dot", func(c *Config) { c.Extension = "md" }, true},
		{"negative slug length", func(c *Config) { c.SlugMaxLen = -1 }, true},
		{"unknown hyphen policy", func(c *Config) { c.Cleanup.HyphenJoin = "glue" }, true},
		{"direct hyphen policy", func(c *Config) { c.Cleanup.HyphenJoin = "direct" }, false},
		{"negative min chars", func(c *Config) { c.Quality.MinChars = -5 }, true},
		{"fraction above one", func(c *Config) { c.Quality.ShortFraction = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigProfileHelpers(t *testing.T) {
	c := NewDefaultConfig()
	p, err := c.ResolveProfile()
	require.NoError(t, err)
	assert.Equal(t, "vi", p.Name)

	assert.Equal(t, "space", c.HyphenJoin(p))
	c.Cleanup.HyphenJoin = "direct"
	assert.Equal(t, "direct", c.HyphenJoin(p))

	c.Cleanup.RunningHeaders = []string{"Extra"}
	headers := c.RunningHeaders(p)
	assert.Contains(t, headers, "Đất Rừng Phương Nam")
	assert.Equal(t, "Extra", headers[len(headers)-1])

	assert.Equal(t, "vietnamese", c.ScriptName(p))
	c.Quality.Script = "japanese"
	assert.Equal(t, "japanese", c.ScriptName(p))
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "saved.yaml")

	c := NewDefaultConfig()
	c.OutputDir = "saved-out"
	c.Quality.MinChars = 77
	require.NoError(t, SaveConfig(c, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-out", loaded.OutputDir)
	assert.Equal(t, 77, loaded.Quality.MinChars)
}
