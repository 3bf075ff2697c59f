package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("circular29", pflag.ContinueOnError)
	RegisterFlags(fs, DefaultConfig())
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(newFlagSet(t, "--dir="+dir))
	require.NoError(t, err)

	assert.Equal(t, ModeStdio, cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, dir, cfg.InputDirectory)
	assert.Equal(t, dir, cfg.OutputDirectory, "output defaults to the input directory")
}

func TestLoad_Flags(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "circular29")

	cfg, err := Load(newFlagSet(t,
		"--dir="+dir,
		"--out="+out,
		"--workers=8",
		"--reports=false",
		"--loglevel=debug",
		"--maxfilesize=1000",
		"--mode=server",
		"--port=9090",
	))
	require.NoError(t, err)

	assert.Equal(t, out, cfg.OutputDirectory)
	assert.DirExists(t, out)
	assert.Equal(t, 8, cfg.Workers)
	assert.False(t, cfg.Reports)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(1000), cfg.MaxFileSize)
	assert.True(t, cfg.IsServerMode())
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CIRCULAR29_DIR", dir)
	t.Setenv("CIRCULAR29_WORKERS", "3")
	t.Setenv("CIRCULAR29_LOGLEVEL", "warn")
	t.Setenv("CIRCULAR29_MAXFILESIZE", "2048")

	cfg, err := Load(newFlagSet(t))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.InputDirectory)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, int64(2048), cfg.MaxFileSize)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CIRCULAR29_DIR", dir)
	t.Setenv("CIRCULAR29_WORKERS", "3")

	cfg, err := Load(newFlagSet(t, "--workers=5"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
}

func TestLoad_NilFlagSet(t *testing.T) {
	t.Setenv("CIRCULAR29_DIR", t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoad_PartialFlagSet(t *testing.T) {
	fs := pflag.NewFlagSet("partial", pflag.ContinueOnError)
	fs.String(KeyDir, "", "")
	require.NoError(t, fs.Parse([]string{"--dir=" + t.TempDir()}))

	_, err := Load(fs)
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either 'stdio' or 'server'"},
		{"invalid port", []string{"--mode=server", "--port=99999"}, "port must be between 1 and 65535"},
		{"invalid log level", []string{"--loglevel=loud"}, "invalid log level"},
		{"invalid workers", []string{"--workers=0"}, "workers must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--dir=" + t.TempDir()}, tt.args...)
			_, err := Load(newFlagSet(t, args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
