// Package mnemonic encodes recovery phrases (BIP-39, English wordlist) and
// turns them into seed bytes.
package mnemonic

import (
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/types"
)

// DefaultWords is the phrase length used when none is requested.
const DefaultWords = 12

// entropy bits per supported phrase length
var wordsToEntropy = map[int]int{
	12: 128,
	15: 160,
	18: 192,
	21: 224,
	24: 256,
}

// Mnemonic is a normalised, space separated phrase.
type Mnemonic string

func (m Mnemonic) String() string {
	return string(m)
}

func (m Mnemonic) Words() []string {
	return strings.Fields(string(m))
}

// Normalize trims, lowercases and collapses whitespace. It never drops or
// reorders words.
func Normalize(s string) Mnemonic {
	return Mnemonic(strings.Join(strings.Fields(strings.ToLower(s)), " "))
}

// Generate draws fresh entropy from crypto/rand and encodes it.
func Generate(words int) (Mnemonic, error) {
	if words == 0 {
		words = DefaultWords
	}
	bits, ok := wordsToEntropy[words]
	if !ok {
		return "", xerrors.Errorf("%d words is not a supported length: %w", words, types.ErrInvalidMnemonic)
	}

	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", xerrors.Errorf("generate entropy: %w", err)
	}
	defer clear(entropy)

	m, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", xerrors.Errorf("generate mnemonic: %w", err)
	}
	return Mnemonic(m), nil
}

// Validate checks word count, wordlist membership and the checksum, in that
// order, and names the first failure.
func Validate(m Mnemonic) error {
	words := m.Words()
	if _, ok := wordsToEntropy[len(words)]; !ok {
		return xerrors.Errorf("mnemonic has %d words, expect 12, 15, 18, 21 or 24: %w", len(words), types.ErrInvalidMnemonic)
	}

	for i, w := range words {
		if _, ok := bip39.GetWordIndex(w); !ok {
			return xerrors.Errorf("word %d is not in the wordlist: %w", i+1, types.ErrInvalidMnemonic)
		}
	}

	if _, err := bip39.EntropyFromMnemonic(string(m)); err != nil {
		return xerrors.Errorf("checksum mismatch: %w", types.ErrInvalidMnemonic)
	}

	return nil
}

// ToSeed validates m and returns its 64 byte BIP-39 seed (empty passphrase).
// The caller owns the seed and should clear it.
func ToSeed(m Mnemonic) ([]byte, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	return bip39.NewSeed(string(m), ""), nil
}
