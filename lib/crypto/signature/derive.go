package signature

import (
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"golang.org/x/xerrors"

	sig_common "github.com/memoio/vana-wallet/lib/crypto/signature/common"
	"github.com/memoio/vana-wallet/lib/types"
)

// DerivationPath is the BIP-44 path every wallet key is derived at:
// m/44'/60'/0'/0/0, the first external Ethereum account. Changing it changes
// every address regenerated from an existing mnemonic.
var DerivationPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// FromSeed derives the secp256k1 key at DerivationPath from a BIP-39 seed.
// It is pure: the same seed always yields the same key.
func FromSeed(seed []byte) (sig_common.PrivKey, error) {
	// the network params only select extended key version bytes, which never
	// reach the derived scalar
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, xerrors.Errorf("master key from %d byte seed: %w", len(seed), types.ErrInvalidKeyMaterial)
	}
	defer master.Zero()

	child := master
	for _, idx := range DerivationPath {
		next, err := child.Derive(idx)
		if err != nil {
			return nil, xerrors.Errorf("derive child %d: %w", idx, err)
		}
		if child != master {
			child.Zero()
		}
		child = next
	}
	defer child.Zero()

	ecKey, err := child.ECPrivKey()
	if err != nil {
		return nil, xerrors.Errorf("child private key: %w", err)
	}
	defer ecKey.Zero()

	raw := ecKey.Serialize()
	defer clear(raw)

	return ParsePrivateKey(raw, types.Secp256k1)
}
