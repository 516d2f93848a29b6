package repo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lockfile "github.com/ipfs/go-fs-lock"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/config"
	"github.com/memoio/vana-wallet/lib/keyfile"
	logging "github.com/memoio/vana-wallet/lib/log"
	"github.com/memoio/vana-wallet/lib/types"
)

const (
	configFilename = "config.json"
	lockFile       = "wallet.lock"

	coldkeyFile    = "coldkey"
	coldkeypubFile = "coldkeypub.txt"
	hotkeysDir     = "hotkeys"
)

var logger = logging.Logger("repo")

// FSRepo is a repo implementation backed by a filesystem.
type FSRepo struct {
	// Path to the wallets root directory.
	path string

	// lk protects the config file
	lk  sync.RWMutex
	cfg *config.Config
}

var _ Repo = (*FSRepo)(nil)

// NewFSRepo opens the wallets root at dir, creating it when missing. When
// the root has no config file, cfg (if any) is written there; otherwise the
// file on disk wins.
func NewFSRepo(dir string, cfg *config.Config) (*FSRepo, error) {
	repoPath, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}

	if repoPath == "" { // path contained no separator
		repoPath = "./"
	}

	if err := ensureWritableDirectory(repoPath); err != nil {
		return nil, xerrors.Errorf("no writable directory: %w", err)
	}

	r := &FSRepo{path: repoPath}

	configFile := filepath.Join(repoPath, configFilename)
	exists, err := fileExists(configFile)
	if err != nil {
		return nil, xerrors.Errorf("failed to check for wallets config: %w", err)
	}

	switch {
	case exists:
		c, err := config.ReadFile(configFile)
		if err != nil {
			return nil, xerrors.Errorf("failed to read config file at %q: %w", configFile, err)
		}
		r.cfg = c
	case cfg != nil:
		logger.Info("initializing wallets config at: ", configFile)
		if err := cfg.WriteFile(configFile); err != nil {
			return nil, xerrors.Errorf("initializing config file failed: %w", err)
		}
		r.cfg = cfg
	default:
		r.cfg = config.NewDefaultConfig()
	}

	logger.Debug("open wallets at: ", repoPath)

	return r, nil
}

// Config returns the configuration object.
func (r *FSRepo) Config() *config.Config {
	r.lk.RLock()
	defer r.lk.RUnlock()

	return r.cfg
}

// ReplaceConfig replaces the current config with the newly passed in one.
func (r *FSRepo) ReplaceConfig(cfg *config.Config) error {
	r.lk.Lock()
	defer r.lk.Unlock()

	tmp := filepath.Join(r.path, "."+configFilename+".temp")
	if err := cfg.WriteFile(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, filepath.Join(r.path, configFilename)); err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}

// Path returns the path the fsrepo is at
func (r *FSRepo) Path() string {
	return r.path
}

func (r *FSRepo) walletDir(wallet string) (string, error) {
	if err := ValidateName(wallet); err != nil {
		return "", xerrors.Errorf("wallet: %w", err)
	}
	return filepath.Join(r.path, wallet), nil
}

func (r *FSRepo) ResolvePath(wallet string, role types.KeyRole, hotkey string) (string, error) {
	dir, err := r.walletDir(wallet)
	if err != nil {
		return "", err
	}

	switch role {
	case types.RoleColdkey:
		return filepath.Join(dir, coldkeyFile), nil
	case types.RoleColdkeypub:
		return filepath.Join(dir, coldkeypubFile), nil
	case types.RoleHotkey:
		if err := ValidateName(hotkey); err != nil {
			return "", xerrors.Errorf("hotkey: %w", err)
		}
		return filepath.Join(dir, hotkeysDir, hotkey), nil
	default:
		return "", xerrors.Errorf("unknown key role %q", role)
	}
}

func (r *FSRepo) LoadColdkey(wallet string) (*keyfile.Record, error) {
	p, err := r.ResolvePath(wallet, types.RoleColdkey, "")
	if err != nil {
		return nil, err
	}
	return keyfile.Load(p)
}

func (r *FSRepo) LoadColdkeypub(wallet string) (*keyfile.PubRecord, error) {
	p, err := r.ResolvePath(wallet, types.RoleColdkeypub, "")
	if err != nil {
		return nil, err
	}
	return keyfile.LoadPub(p)
}

func (r *FSRepo) LoadHotkey(wallet, hotkey string) (*keyfile.Record, error) {
	p, err := r.ResolvePath(wallet, types.RoleHotkey, hotkey)
	if err != nil {
		return nil, err
	}
	return keyfile.Load(p)
}

func (r *FSRepo) PutColdkey(wallet string, rec *keyfile.Record, pub *keyfile.PubRecord, overwrite bool) error {
	p, err := r.ResolvePath(wallet, types.RoleColdkey, "")
	if err != nil {
		return err
	}
	if !overwrite && keyfile.Exists(p) {
		return xerrors.Errorf("coldkey of wallet %s: %w", wallet, types.ErrAlreadyExists)
	}

	if err := keyfile.Save(p, rec); err != nil {
		return xerrors.Errorf("write coldkey: %w", err)
	}
	logger.Infow("wrote coldkey", "wallet", wallet, "address", rec.Address)

	// the public record always follows its coldkey
	return r.PutColdkeypub(wallet, pub, true)
}

func (r *FSRepo) PutColdkeypub(wallet string, pub *keyfile.PubRecord, overwrite bool) error {
	p, err := r.ResolvePath(wallet, types.RoleColdkeypub, "")
	if err != nil {
		return err
	}
	if !overwrite && keyfile.Exists(p) {
		return xerrors.Errorf("coldkeypub of wallet %s: %w", wallet, types.ErrAlreadyExists)
	}

	if err := keyfile.SavePub(p, pub); err != nil {
		return xerrors.Errorf("write coldkeypub: %w", err)
	}
	logger.Infow("wrote coldkeypub", "wallet", wallet, "address", pub.Address)
	return nil
}

func (r *FSRepo) PutHotkey(wallet, hotkey string, rec *keyfile.Record, overwrite bool) error {
	p, err := r.ResolvePath(wallet, types.RoleHotkey, hotkey)
	if err != nil {
		return err
	}
	if !overwrite && keyfile.Exists(p) {
		return xerrors.Errorf("hotkey %s of wallet %s: %w", hotkey, wallet, types.ErrAlreadyExists)
	}

	if err := keyfile.Save(p, rec); err != nil {
		return xerrors.Errorf("write hotkey: %w", err)
	}
	logger.Infow("wrote hotkey", "wallet", wallet, "hotkey", hotkey, "address", rec.Address)
	return nil
}

// ListHotkeys returns hotkey names in directory order.
func (r *FSRepo) ListHotkeys(wallet string) ([]string, error) {
	dir, err := r.walletDir(wallet)
	if err != nil {
		return nil, err
	}
	if ok, err := isDir(dir); err != nil {
		return nil, err
	} else if !ok {
		return nil, xerrors.Errorf("wallet %s: %w", wallet, types.ErrNotFound)
	}

	files, err := os.ReadDir(filepath.Join(dir, hotkeysDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, fi := range files {
		if fi.IsDir() || ValidateName(fi.Name()) != nil {
			continue
		}
		names = append(names, fi.Name())
	}
	return names, nil
}

// ListWallets returns the directories under root that hold a coldkey or a
// coldkeypub.
func (r *FSRepo) ListWallets() ([]string, error) {
	files, err := os.ReadDir(r.path)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, fi := range files {
		if !fi.IsDir() || ValidateName(fi.Name()) != nil {
			continue
		}
		dir := filepath.Join(r.path, fi.Name())
		ck, _ := fileExists(filepath.Join(dir, coldkeyFile))
		pk, _ := fileExists(filepath.Join(dir, coldkeypubFile))
		if ck || pk {
			names = append(names, fi.Name())
		}
	}
	return names, nil
}

// Lock takes <wallet>/wallet.lock. A held lock is retried lock.retries
// times, lock.interval apart, before giving up with types.ErrWalletBusy.
// Any other failure is returned at once.
func (r *FSRepo) Lock(ctx context.Context, wallet string) (io.Closer, error) {
	dir, err := r.walletDir(wallet)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, xerrors.Errorf("failed to create wallet directory %s: %w", dir, err)
	}

	lc := r.Config().Lock
	interval := lc.RetryInterval()

	for i := 0; ; i++ {
		lk, err := lockfile.Lock(dir, lockFile)
		if err == nil {
			return lk, nil
		}
		if !xerrors.As(err, new(lockfile.LockedError)) {
			return nil, xerrors.Errorf("wallet %s lock: %w", wallet, err)
		}
		if i >= lc.Retries {
			return nil, xerrors.Errorf("wallet %s: %v: %w", wallet, err, types.ErrWalletBusy)
		}
		logger.Debugw("wallet lock held, retrying", "wallet", wallet, "attempt", i+1, "err", err)

		select {
		case <-ctx.Done():
			return nil, xerrors.Errorf("waiting for wallet %s lock: %w", wallet, ctx.Err())
		case <-time.After(interval):
		}
	}
}

// ValidateName accepts plain file names only: non-empty, no path separators
// and no leading dot.
func ValidateName(name string) error {
	if name == "" {
		return xerrors.New("empty name")
	}
	if strings.HasPrefix(name, ".") {
		return xerrors.Errorf("name %q starts with a dot", name)
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return xerrors.Errorf("name %q contains a path separator", name)
	}
	return nil
}

// Ensures that path points to a read/writable directory, creating it if necessary.
func ensureWritableDirectory(path string) error {
	// Attempt to create the requested directory, accepting that something might already be there.
	err := os.MkdirAll(path, 0700)
	if err != nil {
		return xerrors.Errorf("failed to create directory %s: %w", path, err)
	}

	// Inspect existing directory.
	stat, err := os.Stat(path)
	if err != nil {
		return xerrors.Errorf("failed to stat path %s: %w", path, err)
	}
	if !stat.IsDir() {
		return xerrors.Errorf("%s is not a directory", path)
	}
	if (stat.Mode() & 0600) != 0600 {
		return xerrors.Errorf("insufficient permissions for path %s, got %04o need %04o", path, stat.Mode(), 0600)
	}
	return nil
}

func fileExists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func isDir(p string) (bool, error) {
	st, err := os.Stat(p)
	if err == nil {
		return st.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
