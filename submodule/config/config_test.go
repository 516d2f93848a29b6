package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	wcfg "github.com/memoio/vana-wallet/config"
	"github.com/memoio/vana-wallet/lib/repo"
)

func TestConfigModule(t *testing.T) {
	dir := t.TempDir()
	r, err := repo.NewFSRepo(dir, wcfg.NewDefaultConfig())
	require.NoError(t, err)

	cm := NewConfigModule(r)
	require.NoError(t, cm.Set("wallet.name", "alice"))

	v, err := cm.Get("wallet.name")
	require.NoError(t, err)
	require.Equal(t, "alice", v)

	// persisted
	r2, err := repo.NewFSRepo(dir, nil)
	require.NoError(t, err)
	require.Equal(t, "alice", r2.Config().Wallet.Name)

	require.Error(t, cm.Set("wallet.name", "a/b"))
	require.Error(t, cm.Set("crypto.saltLen", "2"))
	require.Error(t, cm.Set("lock.retries", "-1"))
	require.Error(t, cm.Set("lock", `{"retries":5000}`))
	require.Equal(t, 20, r.Config().Lock.Retries)

	v, err = cm.Get("crypto.saltLen")
	require.NoError(t, err)
	require.EqualValues(t, 16, v)
}
