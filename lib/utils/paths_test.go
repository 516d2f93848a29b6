package utils

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

func TestGetWalletPath(t *testing.T) {
	t.Setenv(WalletPathVar, "")
	home, err := homedir.Dir()
	require.NoError(t, err)

	p, err := GetWalletPath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".vana", "wallets"), p)

	t.Setenv(WalletPathVar, "/tmp/envwallets")
	p, err = GetWalletPath("")
	require.NoError(t, err)
	require.Equal(t, "/tmp/envwallets", p)

	p, err = GetWalletPath("~/w")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "w"), p)
}

func TestGetWalletName(t *testing.T) {
	t.Setenv(WalletNameVar, "")
	require.Equal(t, "default", GetWalletName(""))

	t.Setenv(WalletNameVar, "env")
	require.Equal(t, "env", GetWalletName(""))
	require.Equal(t, "flag", GetWalletName("flag"))
}
