package config

import (
	"sync"

	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/repo"
)

// ConfigModule sets and reads values of the wallets root config.
type ConfigModule struct { //nolint
	repo repo.Repo
	lock sync.Mutex
}

// NewConfigModule returns a new ConfigModule.
func NewConfigModule(repo repo.Repo) *ConfigModule {
	return &ConfigModule{repo: repo}
}

// Set sets a value in config. Nothing is written unless the whole config
// still validates.
func (s *ConfigModule) Set(dottedKey string, jsonString string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	cfg := *s.repo.Config()
	if err := cfg.Set(dottedKey, jsonString); err != nil {
		return err
	}
	if err := cfg.Crypto.Validate(); err != nil {
		return xerrors.Errorf("%s: %w", dottedKey, err)
	}
	if err := cfg.Lock.Validate(); err != nil {
		return xerrors.Errorf("%s: %w", dottedKey, err)
	}

	return s.repo.ReplaceConfig(&cfg)
}

// Get gets a value from config
func (s *ConfigModule) Get(dottedKey string) (interface{}, error) {
	return s.repo.Config().Get(dottedKey)
}
