package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "relative output dir lives under the test path",
			config:   &Config{TestPath: "/tests", OutputJSONDir: ".iltransform", OutputJSONFile: "s.json"},
			expected: "/tests/.iltransform/s.json",
		},
		{
			name:     "absolute output dir",
			config:   &Config{TestPath: "/tests", OutputJSONDir: "/var/out", OutputJSONFile: "s.json"},
			expected: "/var/out/s.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.GetOutputPath())
		})
	}
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{Processors: 9, TestPath: "/src/tests"})

	assert.Equal(t, 9, cfg.Processors)
	assert.Equal(t, "/src/tests", cfg.TestPath)

	cfg.ApplyFlags(Flags{})
	assert.Equal(t, 9, cfg.Processors, "unset flags keep the current value")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Run("defaults without a config file", func(t *testing.T) {
		cfg, err := Load(Flags{})
		require.NoError(t, err)
		assert.Equal(t, DefaultProcessors, cfg.Processors)
		assert.Equal(t, DefaultPathsToIgnore, cfg.PathsToIgnore)
		assert.Equal(t, DefaultKnownCommonNames, cfg.KnownCommonNames)
		assert.False(t, cfg.Rewrite.AddFactAttributes)
	})

	t.Run("config file, env and flags", func(t *testing.T) {
		path := filepath.Join(dir, "custom.yaml")
		content := "processors: 2\nknown_common_names: [Foo, Bar]\nrewrite:\n  add_fact_attributes: true\n  class_to_deduplicate: Program\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		t.Setenv("ILTRANSFORM_REWRITE_DRY_RUN", "true")

		cfg, err := Load(Flags{ConfigFile: path, TestPath: "/tests"})
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Processors)
		assert.Equal(t, []string{"Foo", "Bar"}, cfg.KnownCommonNames)
		assert.True(t, cfg.Rewrite.AddFactAttributes)
		assert.Equal(t, "Program", cfg.Rewrite.ClassToDeduplicate)
		assert.True(t, cfg.Rewrite.DryRun)
		assert.Equal(t, "/tests", cfg.TestPath)
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := Load(Flags{ConfigFile: filepath.Join(dir, "nope.yaml")})
		assert.Error(t, err)
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	require.NoError(t, WriteDefault(path, false))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "processors: 4")
	assert.Contains(t, string(data), "add_fact_attributes: false")

	assert.Error(t, WriteDefault(path, false))
	assert.NoError(t, WriteDefault(path, true))
}
