// Package encrypt seals secret key material under a password.
//
// Every blob records the version of the scheme that produced it. New blobs
// are always written with the current scheme; older versions stay readable
// so existing wallets keep working and can be migrated.
package encrypt

import (
	"crypto/rand"
	"io"

	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/types"
)

const (
	VersionLegacy  = 1
	VersionCurrent = 2
)

// Blob is an encrypted secret together with everything needed to open it
// except the password.
type Blob struct {
	Version   int
	Cipher    string
	KDF       string
	KDFParams map[string]int
	Salt      []byte
	Nonce     []byte
	Payload   []byte
	// MAC authenticates Payload; every scheme sets it.
	MAC []byte
}

// Scheme is one encryption format generation.
type Scheme interface {
	Version() int
	Cipher() string
	KDF() string
	Seal(secret, password []byte) (*Blob, error)
	Open(b *Blob, password []byte) ([]byte, error)
}

type Params struct {
	Argon2Time    uint32 `json:"argon2Time"`
	Argon2Memory  uint32 `json:"argon2Memory"` // KiB
	Argon2Threads uint8  `json:"argon2Threads"`
	SaltLen       int    `json:"saltLen"`

	ScryptN int `json:"scryptN"`
	ScryptR int `json:"scryptR"`
	ScryptP int `json:"scryptP"`
}

func DefaultParams() Params {
	return Params{
		Argon2Time:    3,
		Argon2Memory:  64 * 1024,
		Argon2Threads: 4,
		SaltLen:       16,

		ScryptN: 1 << 18,
		ScryptR: 8,
		ScryptP: 1,
	}
}

// LightParams keeps tests fast; never use it for real wallets.
func LightParams() Params {
	return Params{
		Argon2Time:    1,
		Argon2Memory:  1024,
		Argon2Threads: 1,
		SaltLen:       16,

		ScryptN: 1 << 10,
		ScryptR: 8,
		ScryptP: 1,
	}
}

func (p Params) Validate() error {
	if p.Argon2Time == 0 || p.Argon2Time > maxArgon2Time || p.Argon2Threads == 0 ||
		p.Argon2Memory < 8*uint32(p.Argon2Threads) || p.Argon2Memory > maxArgon2Memory {
		return xerrors.Errorf("argon2 params t=%d m=%d p=%d are out of range", p.Argon2Time, p.Argon2Memory, p.Argon2Threads)
	}
	if p.SaltLen < 8 {
		return xerrors.Errorf("salt of %d bytes is too short", p.SaltLen)
	}
	if p.ScryptN <= 1 || p.ScryptN > maxScryptN || p.ScryptN&(p.ScryptN-1) != 0 ||
		p.ScryptR <= 0 || p.ScryptR > maxScryptR || p.ScryptP <= 0 || p.ScryptP > maxScryptP {
		return xerrors.Errorf("scrypt params n=%d r=%d p=%d are out of range", p.ScryptN, p.ScryptR, p.ScryptP)
	}
	return nil
}

// Encryptor dispatches on the stored version. It holds no key material and
// derives a fresh key on every call.
type Encryptor struct {
	current Scheme
	schemes map[int]Scheme
}

func New(p Params) (*Encryptor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cur := NewCurrent(p)
	leg := NewLegacy(p)
	return &Encryptor{
		current: cur,
		schemes: map[int]Scheme{
			leg.Version(): leg,
			cur.Version(): cur,
		},
	}, nil
}

// Encrypt always seals with the current scheme.
func (e *Encryptor) Encrypt(secret []byte, password string) (*Blob, error) {
	pw := []byte(password)
	defer clear(pw)

	return e.current.Seal(secret, pw)
}

// Decrypt opens a blob of any supported version. On failure no bytes are
// returned.
func (e *Encryptor) Decrypt(b *Blob, password string) ([]byte, error) {
	s, err := e.scheme(b)
	if err != nil {
		return nil, err
	}

	pw := []byte(password)
	defer clear(pw)

	return s.Open(b, pw)
}

// Migrate opens b with oldPassword and seals the secret again with the
// current scheme under newPassword.
func (e *Encryptor) Migrate(b *Blob, oldPassword, newPassword string) (*Blob, error) {
	secret, err := e.Decrypt(b, oldPassword)
	if err != nil {
		return nil, err
	}
	defer clear(secret)

	return e.Encrypt(secret, newPassword)
}

// IsCurrent reports whether b was written by the current scheme.
func (e *Encryptor) IsCurrent(b *Blob) bool {
	return b != nil && b.Version == e.current.Version() && b.Cipher == e.current.Cipher()
}

func (e *Encryptor) scheme(b *Blob) (Scheme, error) {
	if b == nil {
		return nil, xerrors.Errorf("nil blob: %w", types.ErrUnsupportedScheme)
	}
	s, ok := e.schemes[b.Version]
	if !ok {
		return nil, xerrors.Errorf("version %d: %w", b.Version, types.ErrUnsupportedScheme)
	}
	if b.Cipher != s.Cipher() || b.KDF != s.KDF() {
		return nil, xerrors.Errorf("version %d with cipher %q kdf %q: %w", b.Version, b.Cipher, b.KDF, types.ErrUnsupportedScheme)
	}
	return s, nil
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return nil, xerrors.Errorf("reading from crypto/rand failed: %w", err)
	}
	return buf, nil
}

func param(b *Blob, name string) (int, error) {
	v, ok := b.KDFParams[name]
	if !ok {
		return 0, xerrors.Errorf("kdf param %q missing: %w", name, types.ErrCorruptKeyFile)
	}
	return v, nil
}
