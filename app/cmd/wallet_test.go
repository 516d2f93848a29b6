package cmd

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/memoio/vana-wallet/config"
	"github.com/memoio/vana-wallet/lib/types"
	"github.com/memoio/vana-wallet/lib/utils"
)

func testContext(t *testing.T, flags map[string]string, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, n := range []string{"mnemonic", "seed", "json", "json_password", "key_type", FlagWalletName, FlagWalletHotkey} {
		set.String(n, "", "")
	}
	var argv []string
	for k, v := range flags {
		argv = append(argv, "--"+k, v)
	}
	require.NoError(t, set.Parse(append(argv, args...)))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestKeySource(t *testing.T) {
	cctx := testContext(t, map[string]string{"mnemonic": "test"}, "test", "junk")
	src, err := keySource(cctx)
	require.NoError(t, err)
	require.Equal(t, "test test junk", src.Mnemonic)
	require.Empty(t, src.PrivateKey)

	cctx = testContext(t, map[string]string{"seed": "0x01"})
	src, err = keySource(cctx)
	require.NoError(t, err)
	require.Empty(t, src.Mnemonic)
	require.Equal(t, "0x01", src.PrivateKey)

	cctx = testContext(t, map[string]string{"json": "/does/not/exist", "json_password": "x"})
	_, err = keySource(cctx)
	require.Error(t, err)
}

func TestPrivateRole(t *testing.T) {
	role, err := privateRole(testContext(t, map[string]string{"key_type": "hotkey"}))
	require.NoError(t, err)
	require.Equal(t, types.RoleHotkey, role)

	_, err = privateRole(testContext(t, map[string]string{"key_type": "coldkeypub"}))
	require.Error(t, err)
	_, err = privateRole(testContext(t, map[string]string{"key_type": "warm"}))
	require.Error(t, err)
}

func TestNames(t *testing.T) {
	t.Setenv(utils.WalletNameVar, "")
	cfg := config.NewDefaultConfig()
	cfg.Wallet.Name = "fromcfg"
	cfg.Wallet.Hotkey = "hk"

	require.Equal(t, "fromcfg", walletName(testContext(t, nil), cfg))
	require.Equal(t, "hk", hotkeyName(testContext(t, nil), cfg))
	require.Equal(t, "flag", walletName(testContext(t, map[string]string{FlagWalletName: "flag"}), cfg))
	require.Equal(t, "h2", hotkeyName(testContext(t, map[string]string{FlagWalletHotkey: "h2"}), cfg))

	t.Setenv(utils.WalletNameVar, "fromenv")
	require.Equal(t, "fromenv", walletName(testContext(t, nil), cfg))
}
