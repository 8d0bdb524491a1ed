package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"testderive/internal/config"
	"testderive/internal/pipeline"
)

const testSource = `    fn helper() {
        setup();
    }

    #[test]
    fn test_keep() {
        helper();
    }

    #[test]
    fn test_drop() {
        helper();
    }
`

const testConfig = `source_path: source.rs
output_path: derived.rs
excluded_tests: [test_drop]
`

func writeFixture(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "source.rs"), []byte(testSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testderive.yaml"), []byte(cfg), 0o644))
	return dir
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&app{logger: zap.NewNop()})
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRoot_Generates(t *testing.T) {
	dir := writeFixture(t, testConfig)

	out, err := execute(t, context.Background(), "--config", filepath.Join(dir, "testderive.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "with 1 tests (original: 2, excluded: 1)")
	assert.Contains(t, out, "expected: 1")
	assert.NotContains(t, out, "warning:")

	got, err := os.ReadFile(filepath.Join(dir, "derived.rs"))
	require.NoError(t, err)
	assert.NotContains(t, string(got), "test_drop")
	assert.Contains(t, string(got), "fn test_keep()")
}

func TestRoot_MismatchIsNotAnError(t *testing.T) {
	dir := writeFixture(t, testConfig+"excluded_helpers: [absent]\noriginal_total_count: 5\n")

	out, err := execute(t, context.Background(), "--config", filepath.Join(dir, "testderive.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning: 1 tests survived but 4 were expected")
	assert.Contains(t, out, "warning: excluded helpers not found: absent")
}

func TestRoot_FlagOverrides(t *testing.T) {
	dir := writeFixture(t, testConfig)
	out := filepath.Join(t.TempDir(), "elsewhere.rs")

	_, err := execute(t, context.Background(),
		"--config", filepath.Join(dir, "testderive.yaml"),
		"--output", out)
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.NoFileExists(t, filepath.Join(dir, "derived.rs"))
}

func TestRoot_MissingSource(t *testing.T) {
	dir := writeFixture(t, "source_path: absent.rs\n")

	_, err := execute(t, context.Background(), "--config", filepath.Join(dir, "testderive.yaml"))
	var ioErr *pipeline.IOError
	require.True(t, errors.As(err, &ioErr), "error = %v", err)
	assert.Equal(t, "read", ioErr.Op)
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := writeFixture(t, "output_path: derived.rs\n")

	_, err := execute(t, context.Background(), "--config", filepath.Join(dir, "testderive.yaml"))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestCheck(t *testing.T) {
	dir := writeFixture(t, testConfig)
	cfgPath := filepath.Join(dir, "testderive.yaml")

	out, err := execute(t, context.Background(), "check", "--config", cfgPath)
	assert.ErrorIs(t, err, ErrStale)
	assert.Contains(t, out, "(generated)")
	assert.Contains(t, out, "+    fn test_keep() {")

	_, err = execute(t, context.Background(), "--config", cfgPath)
	require.NoError(t, err)

	out, err = execute(t, context.Background(), "check", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "derived.rs"), []byte("edited\n"), 0o644))
	out, err = execute(t, context.Background(), "check", "--config", cfgPath)
	assert.ErrorIs(t, err, ErrStale)
	assert.Contains(t, out, "-edited")
}

func TestBlocks(t *testing.T) {
	dir := writeFixture(t, testConfig)

	out, err := execute(t, context.Background(), "blocks", "--config", filepath.Join(dir, "testderive.yaml"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"helper", "helper", "1-3"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"test", "test_keep", "5-8"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"test", "test_drop", "10-13"}, strings.Fields(lines[2]))
}

func TestWatch_StopsOnCancel(t *testing.T) {
	dir := writeFixture(t, testConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := execute(t, ctx, "watch", "--config", filepath.Join(dir, "testderive.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "with 1 tests")
	assert.FileExists(t, filepath.Join(dir, "derived.rs"))
}

func TestBuildLogger(t *testing.T) {
	logger, err := buildLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = buildLogger("loud", false)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
