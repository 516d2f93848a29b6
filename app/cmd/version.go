package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/memoio/vana-wallet/app/minit"
)

var VersionCmd = &cli.Command{
	Name:  "version",
	Usage: "Print version",
	Action: func(_ *cli.Context) error {
		minit.PrintVersion()
		return nil
	},
}
