// Package chain is the boundary between wallet keys and the network. Only
// Client performs network I/O.
package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	"github.com/memoio/vana-wallet/lib/crypto/signature"
	sig_common "github.com/memoio/vana-wallet/lib/crypto/signature/common"
)

// Signer signs on behalf of one unlocked key. Close wipes the key.
type Signer interface {
	Address() address.Address
	SignHash(hash []byte) ([]byte, error)
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
	Close() error
}

type keySigner struct {
	sk   sig_common.PrivKey
	addr address.Address
}

var _ Signer = (*keySigner)(nil)

// NewSigner takes ownership of sk.
func NewSigner(sk sig_common.PrivKey) (Signer, error) {
	addr, err := signature.GetAddressFromPubkey(sk.GetPublic())
	if err != nil {
		return nil, err
	}
	return &keySigner{sk: sk, addr: addr}, nil
}

func (s *keySigner) Address() address.Address {
	return s.addr
}

// SignHash returns [R || S || V] with V in {0, 1}.
func (s *keySigner) SignHash(hash []byte) ([]byte, error) {
	return s.sk.Sign(hash)
}

func (s *keySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, xerrors.Errorf("chain id %v is not positive", chainID)
	}

	signer := types.LatestSignerForChainID(chainID)
	h := signer.Hash(tx)
	sig, err := s.sk.Sign(h[:])
	if err != nil {
		return nil, err
	}
	return tx.WithSignature(signer, sig)
}

func (s *keySigner) Close() error {
	s.sk.Zero()
	return nil
}
