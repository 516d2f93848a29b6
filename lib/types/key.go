package types

import (
	"errors"
	"fmt"
)

type KeyType = byte

const (
	// RSA is an enum for the supported RSA key type
	RSA KeyType = iota
	// Secp256k1 is an enum for the supported Secp256k1 key type
	Secp256k1
)

// KeyRole names the place a key file occupies inside a wallet directory.
type KeyRole string

const (
	RoleColdkey    KeyRole = "coldkey"
	RoleColdkeypub KeyRole = "coldkeypub"
	RoleHotkey     KeyRole = "hotkey"
)

func ParseKeyRole(s string) (KeyRole, error) {
	switch KeyRole(s) {
	case RoleColdkey, RoleColdkeypub, RoleHotkey:
		return KeyRole(s), nil
	default:
		return "", fmt.Errorf("unknown key role %q, expect coldkey, coldkeypub or hotkey", s)
	}
}

// Errors surfaced by the key management core. Callers match them with
// errors.Is; every returned error wraps exactly one of these when the cause
// is one of the listed conditions.
var (
	ErrInvalidMnemonic    = errors.New("invalid mnemonic")
	ErrInvalidKeyMaterial = errors.New("invalid key material")
	ErrAuthentication     = errors.New("could not decrypt key with given password")
	ErrUnsupportedScheme  = errors.New("unsupported key file scheme")
	ErrCorruptKeyFile     = errors.New("key file is corrupt")
	ErrAlreadyExists      = errors.New("key already exists")
	ErrWalletBusy         = errors.New("wallet is locked by another process")
	ErrNotFound           = errors.New("not found")
)
