package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/memoio/vana-wallet/app/cmd"
	"github.com/memoio/vana-wallet/build"
	"github.com/memoio/vana-wallet/submodule/metrics"
)

func main() {
	app := &cli.App{
		Name:                 "vanawallet",
		Usage:                "Vana network wallet key management",
		Version:              build.UserVersion(),
		EnableBashCompletion: true,
		Flags:                cmd.GlobalFlags,
		Commands:             cmd.CommonCmd,
		Before: func(cctx *cli.Context) error {
			if !cctx.Bool(cmd.FlagMetrics) {
				return nil
			}
			return metrics.Start(cctx.Context, build.BuildVersion, build.CurrentCommit)
		},
		After: func(cctx *cli.Context) error {
			if !cctx.Bool(cmd.FlagMetrics) {
				return nil
			}
			for _, l := range metrics.Summary() {
				fmt.Fprintln(os.Stderr, l) // nolint:errcheck
			}
			metrics.Stop()
			return nil
		},
	}

	app.Setup()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err) // nolint:errcheck
		os.Exit(1)
	}
}
