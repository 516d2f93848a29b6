package repo

import (
	"context"
	"io"

	"github.com/memoio/vana-wallet/config"
	"github.com/memoio/vana-wallet/lib/keyfile"
	"github.com/memoio/vana-wallet/lib/types"
)

// Repo maps wallet names onto the key files below one root directory.
type Repo interface {
	Config() *config.Config

	// ReplaceConfig replaces the current config, with the newly passed in one.
	ReplaceConfig(cfg *config.Config) error

	// Path returns the wallets root.
	Path() string

	// ResolvePath returns where the key of the given role lives. hotkey is
	// only used for types.RoleHotkey.
	ResolvePath(wallet string, role types.KeyRole, hotkey string) (string, error)

	LoadColdkey(wallet string) (*keyfile.Record, error)
	LoadColdkeypub(wallet string) (*keyfile.PubRecord, error)
	LoadHotkey(wallet, hotkey string) (*keyfile.Record, error)

	// PutColdkey writes the coldkey and then its public record. Without
	// overwrite an existing coldkey is left untouched.
	PutColdkey(wallet string, rec *keyfile.Record, pub *keyfile.PubRecord, overwrite bool) error
	PutColdkeypub(wallet string, pub *keyfile.PubRecord, overwrite bool) error
	PutHotkey(wallet, hotkey string, rec *keyfile.Record, overwrite bool) error

	ListHotkeys(wallet string) ([]string, error)
	ListWallets() ([]string, error)

	// Lock takes the per wallet lock, waiting a bounded time for it.
	Lock(ctx context.Context, wallet string) (io.Closer, error)
}
