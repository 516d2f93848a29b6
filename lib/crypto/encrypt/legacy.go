package encrypt

import (
	"crypto/subtle"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/crypto/aes"
	"github.com/memoio/vana-wallet/lib/types"
)

const (
	legacyCipher = "aes-128-ctr"
	legacyKDF    = "scrypt"

	scryptDKLen = 32

	// scrypt needs 128*n*r bytes and p passes; a stored file must not ask for
	// more than 4 GiB or hours of work
	maxScryptN = 1 << 20
	maxScryptR = 32
	maxScryptP = 16
)

// Legacy is the Web3 Secret Storage v3 layout: scrypt, aes-128-ctr and a
// keccak256 mac over the second half of the derived key and the ciphertext.
type Legacy struct {
	n, r, p int
	saltLen int
}

func NewLegacy(p Params) *Legacy {
	return &Legacy{n: p.ScryptN, r: p.ScryptR, p: p.ScryptP, saltLen: 32}
}

func (l *Legacy) Version() int   { return VersionLegacy }
func (l *Legacy) Cipher() string { return legacyCipher }
func (l *Legacy) KDF() string    { return legacyKDF }

// Seal writes the legacy format. Wallets never do so any more; it exists to
// produce fixtures for the read path.
func (l *Legacy) Seal(secret, password []byte) (*Blob, error) {
	salt, err := randomBytes(l.saltLen)
	if err != nil {
		return nil, err
	}
	derivedKey, err := scrypt.Key(password, salt, l.n, l.r, l.p, scryptDKLen)
	if err != nil {
		return nil, err
	}
	defer clear(derivedKey)

	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return nil, err
	}
	cipherText, err := aes.CTRXOR(derivedKey[:16], secret, iv)
	if err != nil {
		return nil, err
	}

	return &Blob{
		Version: VersionLegacy,
		Cipher:  legacyCipher,
		KDF:     legacyKDF,
		KDFParams: map[string]int{
			"n":     l.n,
			"r":     l.r,
			"p":     l.p,
			"dklen": scryptDKLen,
		},
		Salt:    salt,
		Nonce:   iv,
		Payload: cipherText,
		MAC:     crypto.Keccak256(derivedKey[16:32], cipherText),
	}, nil
}

func (l *Legacy) Open(b *Blob, password []byte) ([]byte, error) {
	n, err := param(b, "n")
	if err != nil {
		return nil, err
	}
	r, err := param(b, "r")
	if err != nil {
		return nil, err
	}
	p, err := param(b, "p")
	if err != nil {
		return nil, err
	}
	dkLen, err := param(b, "dklen")
	if err != nil {
		return nil, err
	}
	if dkLen != scryptDKLen || n <= 1 || n > maxScryptN || n&(n-1) != 0 || r <= 0 || r > maxScryptR || p <= 0 || p > maxScryptP {
		return nil, xerrors.Errorf("scrypt params n=%d r=%d p=%d dklen=%d: %w", n, r, p, dkLen, types.ErrCorruptKeyFile)
	}
	if len(b.Nonce) != aes.BlockSize || len(b.MAC) != 32 || len(b.Salt) == 0 {
		return nil, xerrors.Errorf("legacy blob field lengths: %w", types.ErrCorruptKeyFile)
	}

	derivedKey, err := scrypt.Key(password, b.Salt, n, r, p, dkLen)
	if err != nil {
		return nil, xerrors.Errorf("scrypt: %w", types.ErrCorruptKeyFile)
	}
	defer clear(derivedKey)

	mac := crypto.Keccak256(derivedKey[16:32], b.Payload)
	if subtle.ConstantTimeCompare(mac, b.MAC) != 1 {
		return nil, xerrors.Errorf("mac mismatch: %w", types.ErrAuthentication)
	}

	return aes.CTRXOR(derivedKey[:16], b.Payload, b.Nonce)
}
