package utils

import (
	"os"

	"github.com/mitchellh/go-homedir"
)

// wallet path defaults
const (
	WalletPathVar     = "WALLET_PATH"
	WalletNameVar     = "WALLET_NAME"
	HotkeyMnemonicVar = "HOTKEY_MNEMONIC"

	defaultWalletDir  = "~/.vana/wallets"
	defaultWalletName = "default"
)

// GetWalletPath returns the wallets root from a potential override
// string, the WALLET_PATH environment variable and a default of
// ~/.vana/wallets.
func GetWalletPath(override string) (string, error) {
	// override is first precedence
	if override != "" {
		return homedir.Expand(override)
	}
	// Environment variable is second precedence
	envDir := os.Getenv(WalletPathVar)
	if envDir != "" {
		return homedir.Expand(envDir)
	}
	// Default is third precedence
	return homedir.Expand(defaultWalletDir)
}

// GetWalletName picks the override, then WALLET_NAME, then "default".
func GetWalletName(override string) string {
	if override != "" {
		return override
	}
	if n := os.Getenv(WalletNameVar); n != "" {
		return n
	}
	return defaultWalletName
}
