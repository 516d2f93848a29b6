package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/memoio/vana-wallet/submodule/config"
)

var ConfigCmd = &cli.Command{
	Name:  "config",
	Usage: "Interact with config",
	Subcommands: []*cli.Command{
		configSetCmd,
		configGetCmd,
	},
}

var configGetCmd = &cli.Command{
	Name:  "get",
	Usage: "Get config key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "key",
			Usage: "The key of the config entry (e.g. \"lock.retries\")",
			Value: "",
		},
	},
	Action: func(cctx *cli.Context) error {
		rep, err := openRepo(cctx)
		if err != nil {
			return err
		}

		key := cctx.String("key")
		if key == "" {
			return errors.New("key is nil")
		}

		res, err := rep.Config().Get(key)
		if err != nil {
			return err
		}

		return printJSON(res)
	},
}

var configSetCmd = &cli.Command{
	Name:  "set",
	Usage: "Set config key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "key",
			Usage: "The key of the config entry (e.g. \"wallet.name\")",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "value",
			Usage: "The value with which to set the config entry, as json",
			Value: "",
		},
	},
	Action: func(cctx *cli.Context) error {
		rep, err := openRepo(cctx)
		if err != nil {
			return err
		}

		key := cctx.String("key")
		if key == "" {
			return errors.New("key is nil")
		}

		value := cctx.String("value")

		cm := config.NewConfigModule(rep)
		err = cm.Set(key, value)
		if err != nil {
			logger.Errorf("Error replacing config %s", err)
			return err
		}

		res, err := cm.Get(key)
		if err != nil {
			return err
		}

		return printJSON(res)
	},
}

func printJSON(v interface{}) error {
	bs, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}

	var out bytes.Buffer
	err = json.Indent(&out, bs, "", "\t")
	if err != nil {
		return err
	}

	fmt.Printf("%v\n", out.String())
	return nil
}
