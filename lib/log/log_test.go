package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	require.NoError(t, SetLevel("debug"))
	require.True(t, Logger("test").Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("error"))
	require.False(t, Logger("test").Desugar().Core().Enabled(zapcore.WarnLevel))

	require.Error(t, SetLevel("loud"))
}

func TestSetFile(t *testing.T) {
	// obtained before the file is set
	l := Logger("file")

	p := filepath.Join(t.TempDir(), "wallet.log")
	SetFile(p, 1)

	l.Infow("hello", "k", 1)
	require.FileExists(t, p)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Contains(t, string(b), "hello")
}
