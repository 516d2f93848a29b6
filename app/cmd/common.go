package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/memoio/vana-wallet/config"
	logging "github.com/memoio/vana-wallet/lib/log"
	"github.com/memoio/vana-wallet/lib/repo"
	"github.com/memoio/vana-wallet/lib/utils"
	"github.com/memoio/vana-wallet/submodule/wallet"
)

var logger = logging.Logger("main")

const (
	FlagWalletPath   = "wallet.path"
	FlagWalletName   = "wallet.name"
	FlagWalletHotkey = "wallet.hotkey"
	FlagLogLevel     = "log.level"
	FlagMetrics      = "metrics"
)

var CommonCmd []*cli.Command

func init() {
	CommonCmd = []*cli.Command{
		WalletCmd,
		ConfigCmd,
		VersionCmd,
	}
}

// GlobalFlags are set on the app and read from every subcommand.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    FlagWalletPath,
		EnvVars: []string{utils.WalletPathVar},
		Usage:   "wallets root directory (default ~/.vana/wallets)",
	},
	&cli.StringFlag{
		Name:  FlagWalletName,
		Usage: "wallet name, falls back to WALLET_NAME and the config",
	},
	&cli.StringFlag{
		Name:  FlagWalletHotkey,
		Usage: "hotkey name, falls back to the config",
	},
	&cli.StringFlag{
		Name:  FlagLogLevel,
		Usage: "log level: debug, info, warn, error",
	},
	&cli.BoolFlag{
		Name:  FlagMetrics,
		Usage: "print operation metrics to stderr on exit",
	},
}

func openRepo(cctx *cli.Context) (*repo.FSRepo, error) {
	dir, err := utils.GetWalletPath(cctx.String(FlagWalletPath))
	if err != nil {
		return nil, err
	}

	rep, err := repo.NewFSRepo(dir, config.NewDefaultConfig())
	if err != nil {
		return nil, err
	}

	cfg := rep.Config()
	lvl := cfg.Log.Level
	if cctx.IsSet(FlagLogLevel) {
		lvl = cctx.String(FlagLogLevel)
	}
	if err := logging.SetLevel(lvl); err != nil {
		return nil, err
	}
	logging.SetFile(cfg.Log.File, cfg.Log.MaxSizeMB)

	return rep, nil
}

func openWallet(cctx *cli.Context) (*wallet.Wallet, *repo.FSRepo, error) {
	rep, err := openRepo(cctx)
	if err != nil {
		return nil, nil, err
	}
	w, err := wallet.New(rep)
	if err != nil {
		return nil, nil, err
	}
	return w, rep, nil
}

// walletName applies flag, WALLET_NAME, config, then "default".
func walletName(cctx *cli.Context, cfg *config.Config) string {
	n := cctx.String(FlagWalletName)
	if n == "" && os.Getenv(utils.WalletNameVar) == "" {
		n = cfg.Wallet.Name
	}
	return utils.GetWalletName(n)
}

func hotkeyName(cctx *cli.Context, cfg *config.Config) string {
	if n := cctx.String(FlagWalletHotkey); n != "" {
		return n
	}
	if cfg.Wallet.Hotkey != "" {
		return cfg.Wallet.Hotkey
	}
	return "default"
}
