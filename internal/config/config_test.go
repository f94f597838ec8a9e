package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestParseAppliesValuesOverDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("encoding = \"latin1\"\nhunks = true\n"))
	require.NoError(t, err)
	assert.Equal(t, "latin1", cfg.Encoding)
	assert.True(t, cfg.Hunks)
	assert.False(t, cfg.FullName)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ".", cfg.OutputDir)
}

func TestParseEmptyFile(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown key":   "colour = \"red\"\n",
		"wrong type":    "hunks = \"yes\"\n",
		"bad log level": "log_level = \"loud\"\n",
		"empty dir":     "output_dir = \"\"\n",
	}
	for name, data := range cases {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config file")
		})
	}
}

func TestParseRejectsMalformedTOML(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("encoding = \n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "config.toml")
	_, err := Load(missing, envMap(nil))
	require.Error(t, err)

	_, err = Load("", envMap(map[string]string{EnvConfig: missing}))
	require.Error(t, err)
}

func TestLoadReadsExplicitFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("fullname = true\nlog_level = \"debug\"\n"), 0o644))

	cfg, err := Load("", envMap(map[string]string{EnvConfig: path}))
	require.NoError(t, err)
	assert.True(t, cfg.FullName)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvEncoding:  "shift_jis",
		EnvFullName:  "true",
		EnvHunks:     "1",
		EnvLogLevel:  "info",
		EnvOutputDir: "/tmp/out",
	}))
	require.NoError(t, err)
	assert.Equal(t, &Config{Encoding: "shift_jis", FullName: true, Hunks: true, LogLevel: "info", OutputDir: "/tmp/out"}, cfg)
}

func TestApplyEnvRejectsBadBool(t *testing.T) {
	t.Parallel()

	err := Default().ApplyEnv(envMap(map[string]string{EnvHunks: "sometimes"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvHunks)
}
