package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	p := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, cfg.WriteFile(p))

	require.NoError(t, cfg.Set("lock.retries", "3"))
	require.NoError(t, cfg.Set("wallet.name", "alice"))
	require.NoError(t, cfg.Set("crypto.argon2Time", "2"))
	require.NoError(t, cfg.WriteFile(p))

	loaded, err := ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
	require.Equal(t, 3, loaded.Lock.Retries)
	require.Equal(t, uint32(2), loaded.Crypto.Argon2Time)

	v, err := loaded.Get("wallet.name")
	require.NoError(t, err)
	require.Equal(t, "alice", v)

	v, err = loaded.Get("crypto.scryptN")
	require.NoError(t, err)
	require.Equal(t, 1<<18, v)

	_, err = loaded.Get("wallet.nothing")
	require.Error(t, err)
}

func TestValidators(t *testing.T) {
	cfg := NewDefaultConfig()

	require.Error(t, cfg.Set("wallet.name", "../evil"))
	require.Error(t, cfg.Set("wallet.hotkey", ".hidden"))
	require.Error(t, cfg.Set("lock.interval", "soon"))
	require.Error(t, cfg.Set("log.level", "loud"))
	require.Error(t, cfg.Set("lock.unknown", "1"))
	require.Error(t, cfg.Set("lock.retries", "-1"))
	require.Error(t, cfg.Set("lock.retries", "5000"))
	require.Error(t, cfg.Set("lock.retries", "many"))
	require.Equal(t, 20, cfg.Lock.Retries)
	require.NoError(t, cfg.Set("lock.retries", "0"))
	require.Equal(t, 0, cfg.Lock.Retries)

	require.NoError(t, cfg.Set("lock.interval", "1s"))
	require.Equal(t, "1s", cfg.Lock.Interval)
	require.NoError(t, cfg.Set("log.level", "debug"))

	// whole sections are validated key by key
	require.Error(t, cfg.Set("wallet", `{"name":"a/b"}`))
}

func TestReadFileLockRange(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	cfg := NewDefaultConfig()
	cfg.Lock.Retries = -1
	require.NoError(t, cfg.WriteFile(p))

	_, err := ReadFile(p)
	require.Error(t, err)
	require.Error(t, LockConfig{Retries: 1001}.Validate())
	require.NoError(t, LockConfig{Retries: 1000}.Validate())
}

func TestRetryInterval(t *testing.T) {
	require.Equal(t, "250ms", NewDefaultConfig().Lock.RetryInterval().String())
	require.Equal(t, "250ms", LockConfig{Interval: "junk"}.RetryInterval().String())
	require.Equal(t, "2s", LockConfig{Interval: "2s"}.RetryInterval().String())
}
