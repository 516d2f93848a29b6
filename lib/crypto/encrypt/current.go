package encrypt

import (
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/types"
)

const (
	currentCipher = "xsalsa20-poly1305"
	currentKDF    = "argon2id"

	argon2KeyLen = 32
	nonceLen     = 24

	maxArgon2Memory = 1024 * 1024 // KiB
	maxArgon2Time   = 64
)

// Current derives a key with argon2id and seals with NaCl secretbox. The
// poly1305 tag is stored as the blob MAC.
type Current struct {
	time    uint32
	memory  uint32
	threads uint8
	saltLen int
}

func NewCurrent(p Params) *Current {
	return &Current{
		time:    p.Argon2Time,
		memory:  p.Argon2Memory,
		threads: p.Argon2Threads,
		saltLen: p.SaltLen,
	}
}

func (c *Current) Version() int   { return VersionCurrent }
func (c *Current) Cipher() string { return currentCipher }
func (c *Current) KDF() string    { return currentKDF }

func (c *Current) Seal(secret, password []byte) (*Blob, error) {
	salt, err := randomBytes(c.saltLen)
	if err != nil {
		return nil, err
	}
	nonce, err := randomBytes(nonceLen)
	if err != nil {
		return nil, err
	}

	key := argonKey(password, salt, c.time, c.memory, c.threads)
	defer clear(key[:])

	var n [nonceLen]byte
	copy(n[:], nonce)

	// secretbox output is tag || ciphertext
	sealed := secretbox.Seal(nil, secret, &n, key)

	return &Blob{
		Version: VersionCurrent,
		Cipher:  currentCipher,
		KDF:     currentKDF,
		KDFParams: map[string]int{
			"t":      int(c.time),
			"m":      int(c.memory),
			"p":      int(c.threads),
			"keylen": argon2KeyLen,
		},
		Salt:    salt,
		Nonce:   nonce,
		Payload: sealed[secretbox.Overhead:],
		MAC:     sealed[:secretbox.Overhead],
	}, nil
}

func (c *Current) Open(b *Blob, password []byte) ([]byte, error) {
	t, err := param(b, "t")
	if err != nil {
		return nil, err
	}
	m, err := param(b, "m")
	if err != nil {
		return nil, err
	}
	p, err := param(b, "p")
	if err != nil {
		return nil, err
	}
	keyLen, err := param(b, "keylen")
	if err != nil {
		return nil, err
	}
	if keyLen != argon2KeyLen || t <= 0 || t > maxArgon2Time || p <= 0 || p > 255 || m < 8*p || m > maxArgon2Memory {
		return nil, xerrors.Errorf("argon2 params t=%d m=%d p=%d keylen=%d: %w", t, m, p, keyLen, types.ErrCorruptKeyFile)
	}
	if len(b.Nonce) != nonceLen || len(b.Salt) < 8 || len(b.MAC) != secretbox.Overhead {
		return nil, xerrors.Errorf("current blob field lengths: %w", types.ErrCorruptKeyFile)
	}

	key := argonKey(password, b.Salt, uint32(t), uint32(m), uint8(p))
	defer clear(key[:])

	var n [nonceLen]byte
	copy(n[:], b.Nonce)

	box := make([]byte, 0, len(b.MAC)+len(b.Payload))
	box = append(box, b.MAC...)
	box = append(box, b.Payload...)

	secret, ok := secretbox.Open(nil, box, &n, key)
	if !ok {
		return nil, xerrors.Errorf("secretbox open: %w", types.ErrAuthentication)
	}
	return secret, nil
}

func argonKey(password, salt []byte, t, m uint32, p uint8) *[argon2KeyLen]byte {
	raw := argon2.IDKey(password, salt, t, m, p, argon2KeyLen)
	defer clear(raw)

	var key [argon2KeyLen]byte
	copy(key[:], raw)
	return &key
}
