package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridnote.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMinimalConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
project: website-redesign
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "website-redesign", cfg.Project)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10, *cfg.Defaults.Rows)
	assert.Equal(t, 4, *cfg.Defaults.Columns)
	assert.Equal(t, string(sheet.ColumnTypeText), cfg.Defaults.ColumnType)
	assert.Equal(t, 120, *cfg.Defaults.ColumnWidth)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
project: website-redesign
redis:
  addr: redis.internal:6380
  password: hunter2
  db: 3
defaults:
  rows: 25
  columns: 6
  column_type: number
  column_width: 90
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 25, *cfg.Defaults.Rows)
	assert.Equal(t, 6, *cfg.Defaults.Columns)
	assert.Equal(t, "number", cfg.Defaults.ColumnType)
	assert.Equal(t, 90, *cfg.Defaults.ColumnWidth)

	opts := cfg.RedisOptions()
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, "hunter2", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "version: [unclosed")
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "wrong version",
			config:  "version: \"2.0\"\nproject: p\n",
			wantErr: "unsupported version",
		},
		{
			name:    "missing project",
			config:  "version: \"1.0\"\n",
			wantErr: "project is required",
		},
		{
			name:    "negative redis db",
			config:  "version: \"1.0\"\nproject: p\nredis:\n  db: -1\n",
			wantErr: "redis.db must be >= 0",
		},
		{
			name:    "negative rows",
			config:  "version: \"1.0\"\nproject: p\ndefaults:\n  rows: -1\n",
			wantErr: "defaults.rows must be >= 0",
		},
		{
			name:    "zero column width",
			config:  "version: \"1.0\"\nproject: p\ndefaults:\n  column_width: 0\n",
			wantErr: "defaults.column_width must be >= 1",
		},
		{
			name:    "unknown column type",
			config:  "version: \"1.0\"\nproject: p\ndefaults:\n  column_type: blob\n",
			wantErr: "defaults.column_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.config))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateAllColumnTypes(t *testing.T) {
	for _, ct := range []string{"text", "number", "date", "currency", "percentage", "formula"} {
		cfg := &GridnoteConfig{Version: "1.0", Project: "p", Defaults: &DefaultsConfig{ColumnType: ct}}
		assert.NoError(t, cfg.Validate(), ct)
	}
}
