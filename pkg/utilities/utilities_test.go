package utilities

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestIDGeneratorUnique(t *testing.T) {
	g := NewIDGenerator(7)
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.Next()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestIDGeneratorFallsBackToKSUID(t *testing.T) {
	for _, g := range []*IDGenerator{NewIDGenerator(5000), nil} {
		_, err := ksuid.Parse(g.Next())
		assert.NoError(t, err)
	}
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestInitWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "inventory.log")
	logger, err := Init(Config{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Info("hello", zap.String("k", "v"))
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"hello"`)
	assert.Contains(t, string(raw), `"k":"v"`)
}
