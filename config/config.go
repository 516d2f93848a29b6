package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/memoio/vana-wallet/lib/crypto/encrypt"
)

// Validators hold the list of validation functions for each configuration
// property. Validators must take a key and json string respectively as
// arguments, and must return either an error or nil depending on whether or not
// the given key and value are valid. Validators will only be run if a property
// being set matches the name given in this map.
var Validators = map[string]func(string, string) error{
	"wallet.name":   validateName,
	"wallet.hotkey": validateName,
	"lock.retries":  validateRetries,
	"lock.interval": validateDuration,
	"log.level":     validateLevel,
}

// Config is an in memory representation of the wallet configuration file
type Config struct {
	Wallet WalletConfig `json:"wallet"`
	Crypto CryptoConfig `json:"crypto"`
	Lock   LockConfig   `json:"lock"`
	Log    LogConfig    `json:"log"`
	Chain  ChainConfig  `json:"chain"`
}

type WalletConfig struct {
	// Path is the wallets root; empty means the default
	Path   string `json:"path,omitempty"`
	Name   string `json:"name"`
	Hotkey string `json:"hotkey"`
}

func newDefaultWalletConfig() WalletConfig {
	return WalletConfig{
		Name:   "default",
		Hotkey: "default",
	}
}

// CryptoConfig holds the kdf work factors for newly written key files.
// Existing files always carry their own.
type CryptoConfig struct {
	encrypt.Params
}

func newDefaultCryptoConfig() CryptoConfig {
	return CryptoConfig{encrypt.DefaultParams()}
}

type LockConfig struct {
	Retries  int    `json:"retries"`
	Interval string `json:"interval"`
}

func newDefaultLockConfig() LockConfig {
	return LockConfig{
		Retries:  20,
		Interval: "250ms",
	}
}

const maxLockRetries = 1000

func (lc LockConfig) Validate() error {
	if lc.Retries < 0 || lc.Retries > maxLockRetries {
		return errors.Errorf("retries %d out of range 0..%d", lc.Retries, maxLockRetries)
	}
	return nil
}

// RetryInterval falls back to the default on a bad value.
func (lc LockConfig) RetryInterval() time.Duration {
	d, err := time.ParseDuration(lc.Interval)
	if err != nil || d <= 0 {
		return 250 * time.Millisecond
	}
	return d
}

type LogConfig struct {
	Level string `json:"level"`
	// File, when set, receives a rotated copy of the log
	File      string `json:"file,omitempty"`
	MaxSizeMB int    `json:"maxSizeMB"`
}

func newDefaultLogConfig() LogConfig {
	return LogConfig{
		Level:     "info",
		MaxSizeMB: 16,
	}
}

type ChainConfig struct {
	Endpoint string `json:"endpoint"`
	ChainID  int64  `json:"chainID"`
	// Explorer serves the transfer index used by wallet history
	Explorer string `json:"explorer"`
}

// moksha testnet
func newDefaultChainConfig() ChainConfig {
	return ChainConfig{
		Endpoint: "http://rpc.moksha.vana.com",
		ChainID:  14800,
		Explorer: "https://satori.vanascan.io",
	}
}

// NewDefaultConfig returns a config object with all the fields filled out to
// their default values
func NewDefaultConfig() *Config {
	return &Config{
		Wallet: newDefaultWalletConfig(),
		Crypto: newDefaultCryptoConfig(),
		Lock:   newDefaultLockConfig(),
		Log:    newDefaultLogConfig(),
		Chain:  newDefaultChainConfig(),
	}
}

// WriteFile writes the config to the given filepath.
func (cfg *Config) WriteFile(file string) error {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close() // nolint: errcheck

	configString, err := json.MarshalIndent(*cfg, "", "\t")
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(f, string(configString))
	return err
}

// ReadFile reads a config file from disk.
func ReadFile(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint: errcheck

	cfg := NewDefaultConfig()
	rawConfig, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(rawConfig) == 0 {
		return cfg, nil
	}

	err = json.Unmarshal(rawConfig, &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Crypto.Validate(); err != nil {
		return nil, errors.Wrap(err, "crypto")
	}
	if err := cfg.Lock.Validate(); err != nil {
		return nil, errors.Wrap(err, "lock")
	}

	return cfg, nil
}

// Set sets the config sub-struct referenced by `key`, e.g. 'lock.retries'
// or 'wallet' to the json key value pair encoded in jsonVal.
func (cfg *Config) Set(dottedKey string, jsonString string) error {
	if !json.Valid([]byte(jsonString)) {
		jsonBytes, _ := json.Marshal(jsonString)
		jsonString = string(jsonBytes)
	}

	if err := validate(dottedKey, jsonString); err != nil {
		return err
	}

	keys := strings.Split(dottedKey, ".")
	for i := len(keys) - 1; i >= 0; i-- {
		jsonString = fmt.Sprintf(`{ "%s": %s }`, keys[i], jsonString)
	}

	decoder := json.NewDecoder(strings.NewReader(jsonString))
	decoder.DisallowUnknownFields()

	return decoder.Decode(&cfg)
}

// Get gets the config sub-struct referenced by `key`, e.g. 'lock.retries'
func (cfg *Config) Get(key string) (interface{}, error) {
	v := reflect.Indirect(reflect.ValueOf(cfg))
	keyTags := strings.Split(key, ".")
OUTER:
	for j, keyTag := range keyTags {
		if v.Type().Kind() == reflect.Struct {
			if f, ok := findField(v, keyTag); ok {
				v = f
				if j == len(keyTags)-1 {
					return v.Interface(), nil
				}
				v = reflect.Indirect(v) // only attempt one dereference
				continue OUTER
			}
		}

		return nil, fmt.Errorf("key: %s invalid for config", key)
	}
	// Cannot get here as len(strings.Split(s, sep)) >= 1 with non-empty sep
	return nil, fmt.Errorf("empty key is invalid")
}

// findField matches json tags, descending into embedded structs.
func findField(v reflect.Value, tag string) (reflect.Value, bool) {
	for i := 0; i < v.NumField(); i++ {
		sf := v.Type().Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			if f, ok := findField(v.Field(i), tag); ok {
				return f, true
			}
			continue
		}
		if strings.Split(sf.Tag.Get("json"), ",")[0] == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// validate runs validations on a given key and json string. validate uses the
// validators map defined at the top of this file to determine which validations
// to use for each key.
func validate(dottedKey string, jsonString string) error {
	var obj interface{}
	if err := json.Unmarshal([]byte(jsonString), &obj); err != nil {
		return err
	}
	// recursively validate sub-keys by partially unmarshalling
	if reflect.ValueOf(obj).Kind() == reflect.Map {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(jsonString), &obj); err != nil {
			return err
		}
		for key := range obj {
			if err := validate(dottedKey+"."+key, string(obj[key])); err != nil {
				return err
			}
		}
		return nil
	}

	if validationFunc, present := Validators[dottedKey]; present {
		return validationFunc(dottedKey, jsonString)
	}

	return nil
}

// validateName accepts wallet and hotkey names: no separators, no leading dot.
func validateName(key string, value string) error {
	if match, _ := regexp.MatchString(`^"[A-Za-z0-9_\-][A-Za-z0-9_.\-]*"$`, value); !match {
		return errors.Errorf(`"%s" must be a plain file name`, key)
	}
	return nil
}

func validateDuration(key string, value string) error {
	var s string
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	if d, err := time.ParseDuration(s); err != nil || d <= 0 {
		return errors.Errorf(`"%s" must be a positive duration like 250ms`, key)
	}
	return nil
}

func validateRetries(key string, value string) error {
	var n int
	if err := json.Unmarshal([]byte(value), &n); err != nil {
		return errors.Wrapf(err, "%s", key)
	}
	if n < 0 || n > maxLockRetries {
		return errors.Errorf(`"%s" must be between 0 and %d`, key, maxLockRetries)
	}
	return nil
}

func validateLevel(key string, value string) error {
	switch value {
	case `"debug"`, `"info"`, `"warn"`, `"error"`:
		return nil
	}
	return errors.Errorf(`"%s" must be one of debug, info, warn, error`, key)
}
