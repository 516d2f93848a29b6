// Package wallet creates, regenerates and unlocks the keys of named wallets.
//
// Every mutating operation holds the wallet lock for its whole duration and
// validates all material before the first write.
package wallet

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"

	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	"github.com/memoio/vana-wallet/lib/chain"
	"github.com/memoio/vana-wallet/lib/crypto/encrypt"
	"github.com/memoio/vana-wallet/lib/crypto/mnemonic"
	sig_common "github.com/memoio/vana-wallet/lib/crypto/signature/common"
	"github.com/memoio/vana-wallet/lib/keyfile"
	logging "github.com/memoio/vana-wallet/lib/log"
	"github.com/memoio/vana-wallet/lib/repo"
	"github.com/memoio/vana-wallet/lib/types"
	"github.com/memoio/vana-wallet/lib/utils"
	"github.com/memoio/vana-wallet/submodule/metrics"
)

var logger = logging.Logger("wallet")

// ErrPasswordRequired is returned when a coldkey would be written in
// plaintext without Options.NoPassword.
var ErrPasswordRequired = errors.New("a password is required unless explicitly opted out")

// Options control how new key material is written.
type Options struct {
	// Words is the mnemonic length for generated keys, 12 when zero
	Words int
	// Password encrypts the key. Hotkeys are plaintext without one.
	Password string
	// NoPassword writes a coldkey in plaintext
	NoPassword bool
	Overwrite  bool
}

// coldPassword applies the coldkey policy: encrypted unless opted out.
func (o Options) coldPassword() (string, error) {
	if o.NoPassword {
		return "", nil
	}
	if o.Password == "" {
		return "", ErrPasswordRequired
	}
	return o.Password, nil
}

type Wallet struct {
	repo repo.Repo
	enc  *encrypt.Encryptor
}

func New(r repo.Repo) (*Wallet, error) {
	enc, err := encrypt.New(r.Config().Crypto.Params)
	if err != nil {
		return nil, xerrors.Errorf("crypto config: %w", err)
	}
	return &Wallet{
		repo: r,
		enc:  enc,
	}, nil
}

// Create generates a fresh coldkey for wallet. The mnemonic is returned once
// and never stored.
func (w *Wallet) Create(ctx context.Context, wallet string, opts Options) (addr address.Address, m mnemonic.Mnemonic, err error) {
	o := w.begin(ctx, "create", wallet)
	defer func() { err = o.finish(err) }()

	password, err := opts.coldPassword()
	if err != nil {
		return address.Undef, "", err
	}

	lk, err := w.lock(ctx, wallet)
	if err != nil {
		return address.Undef, "", err
	}
	defer lk.Close()

	if err := w.checkFree(wallet, types.RoleColdkey, "", opts.Overwrite); err != nil {
		return address.Undef, "", err
	}

	m, err = mnemonic.Generate(opts.Words)
	if err != nil {
		return address.Undef, "", err
	}
	sk, err := fromMnemonic(m)
	if err != nil {
		return address.Undef, "", err
	}
	defer sk.Zero()
	o.advance(stateMaterial)

	addr, err = w.putColdkey(o, wallet, sk, password, opts.Overwrite)
	if err != nil {
		return address.Undef, "", err
	}
	return addr, m, nil
}

// CreateHotkey generates a fresh hotkey under wallet.
func (w *Wallet) CreateHotkey(ctx context.Context, wallet, hotkey string, opts Options) (addr address.Address, m mnemonic.Mnemonic, err error) {
	o := w.begin(ctx, "create_hotkey", wallet)
	defer func() { err = o.finish(err) }()

	lk, err := w.lock(ctx, wallet)
	if err != nil {
		return address.Undef, "", err
	}
	defer lk.Close()

	if err := w.checkFree(wallet, types.RoleHotkey, hotkey, opts.Overwrite); err != nil {
		return address.Undef, "", err
	}

	m, err = mnemonic.Generate(opts.Words)
	if err != nil {
		return address.Undef, "", err
	}
	sk, err := fromMnemonic(m)
	if err != nil {
		return address.Undef, "", err
	}
	defer sk.Zero()
	o.advance(stateMaterial)

	addr, err = w.putHotkey(o, wallet, hotkey, sk, opts.Password, opts.Overwrite)
	if err != nil {
		return address.Undef, "", err
	}
	return addr, m, nil
}

// RegenerateColdkey rebuilds the coldkey from src. An existing coldkey is
// only replaced with opts.Overwrite.
func (w *Wallet) RegenerateColdkey(ctx context.Context, wallet string, src Source, opts Options) (addr address.Address, err error) {
	o := w.begin(ctx, "regen_coldkey", wallet)
	defer func() { err = o.finish(err) }()

	password, err := opts.coldPassword()
	if err != nil {
		return address.Undef, err
	}

	sk, err := src.material()
	if err != nil {
		return address.Undef, err
	}
	defer sk.Zero()
	o.advance(stateMaterial)

	lk, err := w.lock(ctx, wallet)
	if err != nil {
		return address.Undef, err
	}
	defer lk.Close()

	if err := w.checkFree(wallet, types.RoleColdkey, "", opts.Overwrite); err != nil {
		return address.Undef, err
	}

	return w.putColdkey(o, wallet, sk, password, opts.Overwrite)
}

// RegenerateColdkeypub writes the public record from a public key or a bare
// address.
func (w *Wallet) RegenerateColdkeypub(ctx context.Context, wallet, pubOrAddress string, overwrite bool) (addr address.Address, err error) {
	o := w.begin(ctx, "regen_coldkeypub", wallet)
	defer func() { err = o.finish(err) }()

	addr, pub, err := parsePubOrAddress(pubOrAddress)
	if err != nil {
		return address.Undef, err
	}
	o.advance(stateMaterial)

	pr, err := keyfile.NewPub(addr, pub)
	if err != nil {
		return address.Undef, err
	}
	o.advance(stateValidated)

	lk, err := w.lock(ctx, wallet)
	if err != nil {
		return address.Undef, err
	}
	defer lk.Close()

	if err := w.repo.PutColdkeypub(wallet, pr, overwrite); err != nil {
		return address.Undef, err
	}
	o.advance(statePersisted)
	return addr, nil
}

// RegenerateHotkey rebuilds a hotkey from src.
func (w *Wallet) RegenerateHotkey(ctx context.Context, wallet, hotkey string, src Source, opts Options) (addr address.Address, err error) {
	o := w.begin(ctx, "regen_hotkey", wallet)
	defer func() { err = o.finish(err) }()

	sk, err := src.material()
	if err != nil {
		return address.Undef, err
	}
	defer sk.Zero()
	o.advance(stateMaterial)

	lk, err := w.lock(ctx, wallet)
	if err != nil {
		return address.Undef, err
	}
	defer lk.Close()

	if err := w.checkFree(wallet, types.RoleHotkey, hotkey, opts.Overwrite); err != nil {
		return address.Undef, err
	}

	return w.putHotkey(o, wallet, hotkey, sk, opts.Password, opts.Overwrite)
}

// UpdateEncryption re-encrypts the coldkey with the current scheme under
// newPassword. A plaintext coldkey gets encrypted; oldPassword is then
// ignored.
func (w *Wallet) UpdateEncryption(ctx context.Context, wallet, oldPassword, newPassword string) (err error) {
	o := w.begin(ctx, "update", wallet)
	defer func() { err = o.finish(err) }()

	if newPassword == "" {
		return ErrPasswordRequired
	}

	lk, err := w.lock(ctx, wallet)
	if err != nil {
		return err
	}
	defer lk.Close()

	rec, err := w.repo.LoadColdkey(wallet)
	if err != nil {
		return err
	}

	// confirm the key opens and matches its address before touching the file
	sk, err := w.openKey(rec, oldPassword)
	if err != nil {
		return err
	}
	sk.Zero()
	o.advance(stateMaterial)

	var nb *encrypt.Blob
	if rec.Encrypted {
		b, err := rec.Blob()
		if err != nil {
			return err
		}
		nb, err = w.enc.Migrate(b, oldPassword, newPassword)
		if err != nil {
			return err
		}
	} else {
		raw, err := rec.Open(w.enc, "")
		if err != nil {
			return err
		}
		defer clear(raw)
		nb, err = w.enc.Encrypt(raw, newPassword)
		if err != nil {
			return err
		}
	}
	rec.Reseal(nb)
	o.advance(stateValidated)

	pub, err := w.repo.LoadColdkeypub(wallet)
	if errors.Is(err, types.ErrNotFound) {
		addr, aerr := rec.Addr()
		if aerr != nil {
			return aerr
		}
		if pub, err = keyfile.NewPub(addr, nil); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if err := w.repo.PutColdkey(wallet, rec, pub, true); err != nil {
		return err
	}
	o.advance(statePersisted)
	logger.Infow("updated coldkey encryption", "wallet", wallet, "version", rec.Version)
	return nil
}

// NeedsUpdate reports whether the coldkey is plaintext or uses an older
// scheme.
func (w *Wallet) NeedsUpdate(wallet string) (bool, error) {
	rec, err := w.repo.LoadColdkey(wallet)
	if err != nil {
		return false, err
	}
	if !rec.Encrypted {
		return true, nil
	}
	b, err := rec.Blob()
	if err != nil {
		return false, err
	}
	return !w.enc.IsCurrent(b), nil
}

func (w *Wallet) ListHotkeys(wallet string) ([]string, error) {
	return w.repo.ListHotkeys(wallet)
}

func (w *Wallet) ListWallets() ([]string, error) {
	return w.repo.ListWallets()
}

// GetAddress reads the cleartext address of a key; nothing is decrypted.
func (w *Wallet) GetAddress(wallet string, role types.KeyRole, hotkey string) (address.Address, error) {
	switch role {
	case types.RoleColdkeypub:
		pr, err := w.repo.LoadColdkeypub(wallet)
		if err != nil {
			return address.Undef, err
		}
		return pr.Addr()
	case types.RoleColdkey:
		rec, err := w.repo.LoadColdkey(wallet)
		if err != nil {
			return address.Undef, err
		}
		return rec.Addr()
	case types.RoleHotkey:
		rec, err := w.repo.LoadHotkey(wallet, hotkey)
		if err != nil {
			return address.Undef, err
		}
		return rec.Addr()
	default:
		return address.Undef, xerrors.Errorf("unknown key role %q", role)
	}
}

// IsEncrypted tells whether unlocking the key needs a password.
func (w *Wallet) IsEncrypted(wallet string, role types.KeyRole, hotkey string) (bool, error) {
	rec, err := w.loadKey(wallet, role, hotkey)
	if err != nil {
		return false, err
	}
	return rec.Encrypted, nil
}

// ExportPrivateKey returns the 0x prefixed hex key. The string cannot be
// wiped; print it and drop it.
func (w *Wallet) ExportPrivateKey(wallet string, role types.KeyRole, hotkey, password string) (s string, err error) {
	o := w.begin(context.Background(), "export_private_key", wallet)
	defer func() { err = o.finish(err) }()

	sk, err := w.unlock(wallet, role, hotkey, password)
	if err != nil {
		return "", err
	}
	defer sk.Zero()

	raw, err := sk.Raw()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// Signer unlocks a key for signing. Close the signer to wipe it.
func (w *Wallet) Signer(wallet string, role types.KeyRole, hotkey, password string) (chain.Signer, error) {
	sk, err := w.unlock(wallet, role, hotkey, password)
	if err != nil {
		return nil, err
	}
	s, err := chain.NewSigner(sk)
	if err != nil {
		sk.Zero()
		return nil, err
	}
	return s, nil
}

// InitHotkeyFromEnv writes a plaintext hotkey from HOTKEY_MNEMONIC,
// replacing any existing one. ok is false when the variable is unset.
func (w *Wallet) InitHotkeyFromEnv(ctx context.Context, wallet, hotkey string) (addr address.Address, ok bool, err error) {
	phrase := os.Getenv(utils.HotkeyMnemonicVar)
	if phrase == "" {
		return address.Undef, false, nil
	}
	logger.Infow("initializing hotkey from environment", "wallet", wallet, "hotkey", hotkey)

	addr, err = w.RegenerateHotkey(ctx, wallet, hotkey, Source{Mnemonic: phrase}, Options{Overwrite: true})
	if err != nil {
		return address.Undef, true, err
	}
	return addr, true, nil
}

func (w *Wallet) unlock(wallet string, role types.KeyRole, hotkey, password string) (sig_common.PrivKey, error) {
	rec, err := w.loadKey(wallet, role, hotkey)
	if err != nil {
		return nil, err
	}
	return w.openKey(rec, password)
}

func (w *Wallet) loadKey(wallet string, role types.KeyRole, hotkey string) (*keyfile.Record, error) {
	switch role {
	case types.RoleColdkey:
		return w.repo.LoadColdkey(wallet)
	case types.RoleHotkey:
		return w.repo.LoadHotkey(wallet, hotkey)
	default:
		return nil, xerrors.Errorf("role %q holds no private key", role)
	}
}

func (w *Wallet) putColdkey(o *op, wallet string, sk sig_common.PrivKey, password string, overwrite bool) (address.Address, error) {
	rec, pub, err := w.sealKey(sk, password)
	if err != nil {
		return address.Undef, err
	}
	o.advance(stateValidated)

	if err := w.repo.PutColdkey(wallet, rec, pub, overwrite); err != nil {
		return address.Undef, err
	}
	o.advance(statePersisted)
	return rec.Addr()
}

func (w *Wallet) putHotkey(o *op, wallet, hotkey string, sk sig_common.PrivKey, password string, overwrite bool) (address.Address, error) {
	rec, _, err := w.sealKey(sk, password)
	if err != nil {
		return address.Undef, err
	}
	o.advance(stateValidated)

	if err := w.repo.PutHotkey(wallet, hotkey, rec, overwrite); err != nil {
		return address.Undef, err
	}
	o.advance(statePersisted)
	return rec.Addr()
}

// checkFree fails early, before any kdf work, when a key is in the way.
func (w *Wallet) checkFree(wallet string, role types.KeyRole, hotkey string, overwrite bool) error {
	p, err := w.repo.ResolvePath(wallet, role, hotkey)
	if err != nil {
		return err
	}
	if !overwrite && keyfile.Exists(p) {
		return xerrors.Errorf("%s of wallet %s: %w", role, wallet, types.ErrAlreadyExists)
	}
	return nil
}

func (w *Wallet) lock(ctx context.Context, wallet string) (io.Closer, error) {
	defer metrics.Timer(ctx, metrics.LockWait)()
	return w.repo.Lock(ctx, wallet)
}
