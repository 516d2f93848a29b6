package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/mgutz/ansi"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/app/minit"
	"github.com/memoio/vana-wallet/lib/address"
	"github.com/memoio/vana-wallet/lib/chain"
	"github.com/memoio/vana-wallet/lib/crypto/mnemonic"
	"github.com/memoio/vana-wallet/lib/types"
	"github.com/memoio/vana-wallet/submodule/wallet"
)

var WalletCmd = &cli.Command{
	Name:    "wallet",
	Aliases: []string{"w"},
	Usage:   "Interact with wallets",
	Subcommands: []*cli.Command{
		walletCreateCmd,
		walletNewColdkeyCmd,
		walletNewHotkeyCmd,
		walletRegenColdkeyCmd,
		walletRegenColdkeypubCmd,
		walletRegenHotkeyCmd,
		walletUpdateCmd,
		walletListCmd,
		walletAddressCmd,
		walletExportCmd,
		walletBalanceCmd,
		walletHistoryCmd,
		walletSignCmd,
	},
}

var (
	wordsFlag = &cli.IntFlag{
		Name:  "n_words",
		Usage: "number of mnemonic words: 12, 15, 18, 21 or 24",
		Value: mnemonic.DefaultWords,
	}
	passwordFlag = &cli.StringFlag{
		Name:  "password",
		Usage: "key password, prompted for when not given",
	}
	noPasswordFlag = &cli.BoolFlag{
		Name:  "no_password",
		Usage: "store the coldkey unencrypted",
	}
	usePasswordFlag = &cli.BoolFlag{
		Name:  "use_password",
		Usage: "encrypt the hotkey with a password",
	}
	overwriteColdkeyFlag = &cli.BoolFlag{
		Name:  "overwrite_coldkey",
		Usage: "replace an existing coldkey",
	}
	overwriteHotkeyFlag = &cli.BoolFlag{
		Name:  "overwrite_hotkey",
		Usage: "replace an existing hotkey",
	}
	keyTypeFlag = &cli.StringFlag{
		Name:  "key_type",
		Usage: "coldkey or hotkey",
		Value: string(types.RoleColdkey),
	}
	sourceFlags = []cli.Flag{
		&cli.StringFlag{
			Name:  "mnemonic",
			Usage: "mnemonic words, quoted or trailing",
		},
		&cli.StringFlag{
			Name:    "seed",
			Aliases: []string{"private_key"},
			Usage:   "hex private key",
		},
		&cli.StringFlag{
			Name:  "json",
			Usage: "path to a json keystore backup",
		},
		&cli.StringFlag{
			Name:  "json_password",
			Usage: "password of the json backup, prompted for when not given",
		},
	}
)

var walletCreateCmd = &cli.Command{
	Name:  "create",
	Usage: "create a new coldkey and hotkey",
	Flags: []cli.Flag{wordsFlag, passwordFlag, noPasswordFlag, overwriteColdkeyFlag, overwriteHotkeyFlag},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}
		name := walletName(cctx, rep.Config())
		hk := hotkeyName(cctx, rep.Config())

		opts, err := coldkeyOptions(cctx)
		if err != nil {
			return err
		}
		addr, m, err := w.Create(cctx.Context, name, opts)
		if err != nil {
			return err
		}
		displayMnemonic(string(m), "coldkey")
		fmt.Println("coldkey address:", ansi.Color(addr.String(), "green"))

		haddr, ok, err := w.InitHotkeyFromEnv(cctx.Context, name, hk)
		if err != nil {
			return err
		}
		if !ok {
			hopts := wallet.Options{Words: cctx.Int("n_words"), Overwrite: cctx.Bool("overwrite_hotkey")}
			haddr, m, err = w.CreateHotkey(cctx.Context, name, hk, hopts)
			if err != nil {
				return err
			}
			displayMnemonic(string(m), "hotkey")
		}
		fmt.Println("hotkey address:", ansi.Color(haddr.String(), "green"))
		return nil
	},
}

var walletNewColdkeyCmd = &cli.Command{
	Name:  "new_coldkey",
	Usage: "create a new coldkey",
	Flags: []cli.Flag{wordsFlag, passwordFlag, noPasswordFlag, overwriteColdkeyFlag},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}

		opts, err := coldkeyOptions(cctx)
		if err != nil {
			return err
		}
		addr, m, err := w.Create(cctx.Context, walletName(cctx, rep.Config()), opts)
		if err != nil {
			return err
		}
		displayMnemonic(string(m), "coldkey")
		fmt.Println("coldkey address:", ansi.Color(addr.String(), "green"))
		return nil
	},
}

var walletNewHotkeyCmd = &cli.Command{
	Name:  "new_hotkey",
	Usage: "create a new hotkey",
	Flags: []cli.Flag{wordsFlag, passwordFlag, usePasswordFlag, overwriteHotkeyFlag},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}

		opts, err := hotkeyOptions(cctx)
		if err != nil {
			return err
		}
		addr, m, err := w.CreateHotkey(cctx.Context, walletName(cctx, rep.Config()), hotkeyName(cctx, rep.Config()), opts)
		if err != nil {
			return err
		}
		displayMnemonic(string(m), "hotkey")
		fmt.Println("hotkey address:", ansi.Color(addr.String(), "green"))
		return nil
	},
}

var walletRegenColdkeyCmd = &cli.Command{
	Name:      "regen_coldkey",
	Usage:     "regenerate a coldkey from a mnemonic, private key or json backup",
	ArgsUsage: "[mnemonic words]",
	Flags:     append([]cli.Flag{passwordFlag, noPasswordFlag, overwriteColdkeyFlag}, sourceFlags...),
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}

		src, err := keySource(cctx)
		if err != nil {
			return err
		}
		opts, err := coldkeyOptions(cctx)
		if err != nil {
			return err
		}
		addr, err := w.RegenerateColdkey(cctx.Context, walletName(cctx, rep.Config()), src, opts)
		if err != nil {
			return err
		}
		fmt.Println("coldkey address:", ansi.Color(addr.String(), "green"))
		return nil
	},
}

var walletRegenColdkeypubCmd = &cli.Command{
	Name:  "regen_coldkeypub",
	Usage: "regenerate the coldkeypub from a public key or address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "public_key",
			Aliases: []string{"pubkey"},
			Usage:   "hex public key, compressed or not",
		},
		&cli.StringFlag{
			Name:    "h160_address",
			Aliases: []string{"addr"},
			Usage:   "hex address",
		},
		&cli.BoolFlag{
			Name:  "overwrite_coldkeypub",
			Usage: "replace an existing coldkeypub",
		},
	},
	Action: func(cctx *cli.Context) error {
		pub := cctx.String("public_key")
		addr := cctx.String("h160_address")
		if (pub == "") == (addr == "") {
			return xerrors.New("need exactly one of --public_key and --h160_address")
		}

		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}

		a, err := w.RegenerateColdkeypub(cctx.Context, walletName(cctx, rep.Config()), pub+addr, cctx.Bool("overwrite_coldkeypub"))
		if err != nil {
			return err
		}
		fmt.Println("coldkeypub address:", ansi.Color(a.String(), "green"))
		return nil
	},
}

var walletRegenHotkeyCmd = &cli.Command{
	Name:      "regen_hotkey",
	Usage:     "regenerate a hotkey from a mnemonic, private key or json backup",
	ArgsUsage: "[mnemonic words]",
	Flags:     append([]cli.Flag{passwordFlag, usePasswordFlag, overwriteHotkeyFlag}, sourceFlags...),
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}

		src, err := keySource(cctx)
		if err != nil {
			return err
		}
		opts, err := hotkeyOptions(cctx)
		if err != nil {
			return err
		}
		addr, err := w.RegenerateHotkey(cctx.Context, walletName(cctx, rep.Config()), hotkeyName(cctx, rep.Config()), src, opts)
		if err != nil {
			return err
		}
		fmt.Println("hotkey address:", ansi.Color(addr.String(), "green"))
		return nil
	},
}

var walletUpdateCmd = &cli.Command{
	Name:  "update",
	Usage: "re-encrypt coldkeys that are plaintext or use an older scheme",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "update every wallet",
		},
		passwordFlag,
	},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}

		names := []string{walletName(cctx, rep.Config())}
		if cctx.Bool("all") {
			names, err = w.ListWallets()
			if err != nil {
				return err
			}
		}

		for _, name := range names {
			need, err := w.NeedsUpdate(name)
			if err != nil {
				if cctx.Bool("all") && errors.Is(err, types.ErrNotFound) {
					continue
				}
				return err
			}
			if !need {
				fmt.Printf("%s: coldkey is up to date\n", name)
				continue
			}

			fmt.Printf("%s: updating coldkey encryption\n", ansi.Color(name, "green"))
			old, err := unlockPassword(cctx, w, name, types.RoleColdkey, "")
			if err != nil {
				return err
			}
			np, err := minit.NewPassWord()
			if err != nil {
				return err
			}
			if err := w.UpdateEncryption(cctx.Context, name, old, np); err != nil {
				return xerrors.Errorf("%s: %w", name, err)
			}
		}
		return nil
	},
}

var walletListCmd = &cli.Command{
	Name:  "list",
	Usage: "list wallets and their hotkeys",
	Action: func(cctx *cli.Context) error {
		w, _, err := openWallet(cctx)
		if err != nil {
			return err
		}

		names, err := w.ListWallets()
		if err != nil {
			return err
		}

		fmt.Println("Wallets")
		for i, name := range names {
			branch, indent := "├── ", "│   "
			if i == len(names)-1 {
				branch, indent = "└── ", "    "
			}
			fmt.Printf("%s%s (%s)\n", branch, ansi.Color(name, "green"), addrOrUnknown(w, name, types.RoleColdkeypub, ""))

			hks, err := w.ListHotkeys(name)
			if err != nil {
				return err
			}
			for j, hk := range hks {
				b := "├── "
				if j == len(hks)-1 {
					b = "└── "
				}
				fmt.Printf("%s%s%s (%s)\n", indent, b, hk, addrOrUnknown(w, name, types.RoleHotkey, hk))
			}
		}
		return nil
	},
}

var walletAddressCmd = &cli.Command{
	Name:  "address",
	Usage: "print the address of a key without unlocking it",
	Flags: []cli.Flag{keyTypeFlag},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}
		role, err := types.ParseKeyRole(cctx.String("key_type"))
		if err != nil {
			return err
		}
		if role == types.RoleColdkey {
			role = types.RoleColdkeypub
		}

		addr, err := w.GetAddress(walletName(cctx, rep.Config()), role, hotkeyName(cctx, rep.Config()))
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	},
}

var walletExportCmd = &cli.Command{
	Name:  "export_private_key",
	Usage: "print the private key of a coldkey or hotkey",
	Flags: []cli.Flag{keyTypeFlag, passwordFlag},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}
		role, err := privateRole(cctx)
		if err != nil {
			return err
		}
		name := walletName(cctx, rep.Config())
		hk := hotkeyName(cctx, rep.Config())

		pw, err := unlockPassword(cctx, w, name, role, hk)
		if err != nil {
			return err
		}
		sk, err := w.ExportPrivateKey(name, role, hk, pw)
		if err != nil {
			return err
		}
		displayPrivateKey(sk, string(role))
		return nil
	},
}

var walletBalanceCmd = &cli.Command{
	Name:  "balance",
	Usage: "show the coldkey balance",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "all",
			Usage: "show every wallet",
		},
	},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}

		names := []string{walletName(cctx, rep.Config())}
		if cctx.Bool("all") {
			names, err = w.ListWallets()
			if err != nil {
				return err
			}
		}

		var shown []string
		var addrs []address.Address
		for _, name := range names {
			addr, err := w.GetAddress(name, types.RoleColdkeypub, "")
			if err != nil {
				logger.Warnf("skip wallet %s: %s", name, err)
				continue
			}
			shown = append(shown, name)
			addrs = append(addrs, addr)
		}

		cfg := rep.Config()
		client := chain.NewClient(cfg.Chain.Endpoint)
		if id, err := client.ChainID(cctx.Context); err != nil {
			return err
		} else if id.Int64() != cfg.Chain.ChainID {
			logger.Warnf("endpoint %s serves chain %s, config expects %d", cfg.Chain.Endpoint, id, cfg.Chain.ChainID)
		}

		bals, err := client.Balances(cctx.Context, addrs)
		if err != nil {
			return err
		}
		for i, name := range shown {
			fmt.Printf("%s %s: %s VANA\n", ansi.Color(name, "green"), addrs[i], chain.FormatEther(bals[i]))
		}
		return nil
	},
}

var walletHistoryCmd = &cli.Command{
	Name:  "history",
	Usage: "show the latest transfers of the coldkey",
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}
		cfg := rep.Config()
		name := walletName(cctx, cfg)

		addr, err := w.GetAddress(name, types.RoleColdkeypub, "")
		if err != nil {
			return err
		}

		transfers, err := chain.NewExplorer(cfg.Chain.Explorer).History(cctx.Context, addr)
		if err != nil {
			return err
		}
		if len(transfers) == 0 {
			fmt.Printf("no transfers for %s %s\n", ansi.Color(name, "green"), addr)
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFROM\tTO\tAMOUNT (VANA)\tEXTRINSIC\tBLOCK\tURL")
		for _, t := range transfers {
			amount := t.Amount
			if wei, ok := t.Wei(); ok {
				amount = chain.FormatEther(wei)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				t.ID, t.From, t.To, amount, t.ExtrinsicID, t.BlockNumber, t.Link(cfg.Chain.Explorer))
		}
		return tw.Flush()
	},
}

var walletSignCmd = &cli.Command{
	Name:  "sign",
	Usage: "sign a message with the personal message prefix",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "message",
			Usage:    "message to sign",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "key_type",
			Usage: "coldkey or hotkey",
			Value: string(types.RoleHotkey),
		},
		passwordFlag,
	},
	Action: func(cctx *cli.Context) error {
		w, rep, err := openWallet(cctx)
		if err != nil {
			return err
		}
		role, err := privateRole(cctx)
		if err != nil {
			return err
		}
		name := walletName(cctx, rep.Config())
		hk := hotkeyName(cctx, rep.Config())

		pw, err := unlockPassword(cctx, w, name, role, hk)
		if err != nil {
			return err
		}
		s, err := w.Signer(name, role, hk, pw)
		if err != nil {
			return err
		}
		defer s.Close()

		sig, err := s.SignHash(accounts.TextHash([]byte(cctx.String("message"))))
		if err != nil {
			return err
		}
		sig[64] += 27

		fmt.Println("address:  ", s.Address())
		fmt.Println("signature:", "0x"+hex.EncodeToString(sig))
		return nil
	},
}

func coldkeyOptions(cctx *cli.Context) (wallet.Options, error) {
	opts := wallet.Options{
		Words:      cctx.Int("n_words"),
		NoPassword: cctx.Bool("no_password"),
		Overwrite:  cctx.Bool("overwrite_coldkey"),
	}
	if opts.NoPassword {
		return opts, nil
	}
	pw, err := newPassword(cctx)
	if err != nil {
		return opts, err
	}
	opts.Password = pw
	return opts, nil
}

func hotkeyOptions(cctx *cli.Context) (wallet.Options, error) {
	opts := wallet.Options{
		Words:     cctx.Int("n_words"),
		Overwrite: cctx.Bool("overwrite_hotkey"),
	}
	if !cctx.Bool("use_password") {
		return opts, nil
	}
	pw, err := newPassword(cctx)
	if err != nil {
		return opts, err
	}
	opts.Password = pw
	return opts, nil
}

func newPassword(cctx *cli.Context) (string, error) {
	if pw := cctx.String("password"); pw != "" {
		return pw, nil
	}
	return minit.NewPassWord()
}

// unlockPassword prompts only when the key is encrypted.
func unlockPassword(cctx *cli.Context, w *wallet.Wallet, name string, role types.KeyRole, hotkey string) (string, error) {
	enc, err := w.IsEncrypted(name, role, hotkey)
	if err != nil {
		return "", err
	}
	if !enc {
		return "", nil
	}
	if pw := cctx.String("password"); pw != "" {
		return pw, nil
	}
	return minit.GetPassWord()
}

func keySource(cctx *cli.Context) (wallet.Source, error) {
	words := cctx.Args().Slice()
	if m := cctx.String("mnemonic"); m != "" {
		words = append([]string{m}, words...)
	}
	src := wallet.Source{
		Mnemonic:   strings.Join(words, " "),
		PrivateKey: cctx.String("seed"),
	}

	if p := cctx.String("json"); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return src, err
		}
		src.JSON = b
		src.JSONPassword = cctx.String("json_password")
		if src.JSONPassword == "" {
			pw, err := minit.GetPassWord()
			if err != nil {
				return src, err
			}
			src.JSONPassword = pw
		}
	}
	return src, nil
}

func privateRole(cctx *cli.Context) (types.KeyRole, error) {
	role, err := types.ParseKeyRole(cctx.String("key_type"))
	if err != nil {
		return "", err
	}
	if role == types.RoleColdkeypub {
		return "", xerrors.New("coldkeypub has no private key")
	}
	return role, nil
}

func addrOrUnknown(w *wallet.Wallet, name string, role types.KeyRole, hotkey string) string {
	addr, err := w.GetAddress(name, role, hotkey)
	if err != nil {
		return "?"
	}
	return addr.String()
}

func displayMnemonic(m, keyType string) {
	fmt.Println(ansi.Color(fmt.Sprintf("Your %s mnemonic phrase:", keyType), "green+b"))
	fmt.Println()
	fmt.Println(ansi.Color(m, "yellow"))
	fmt.Println()
	fmt.Println(ansi.Color("IMPORTANT:", "red+b"), "Store this mnemonic in a secure (preferably offline) place.")
	fmt.Println("Anyone with this mnemonic can regenerate the key and access your tokens.")
	fmt.Println()
	fmt.Printf("You can use this mnemonic to recreate the %s in case it gets lost.\n", keyType)
	fmt.Println("The command to regenerate the key using this mnemonic is:")
	fmt.Println(ansi.Color(fmt.Sprintf("vanawallet w regen_%s --mnemonic %q", keyType, m), "cyan"))
	fmt.Println()
}

func displayPrivateKey(sk, keyType string) {
	fmt.Println(ansi.Color(fmt.Sprintf("Your %s private key:", keyType), "green+b"))
	fmt.Println()
	fmt.Println(ansi.Color(sk, "yellow"))
	fmt.Println()
	fmt.Println(ansi.Color("IMPORTANT:", "red+b"), "Store this private key in a secure (preferably offline) place.")
	fmt.Println("Anyone with this private key has full control over the associated account.")
	fmt.Println()
	fmt.Printf("You can use this private key to import your %s into other wallets.\n", keyType)
	fmt.Println("The command to regenerate the key using this private key is:")
	fmt.Println(ansi.Color(fmt.Sprintf("vanawallet w regen_%s --seed %s", keyType, sk), "cyan"))
	fmt.Println()
}
