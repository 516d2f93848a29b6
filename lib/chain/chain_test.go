package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/memoio/vana-wallet/lib/crypto/signature"
)

func TestSigner(t *testing.T) {
	sk, err := signature.ParsePrivateKeyHex("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)

	s, err := NewSigner(sk)
	require.NoError(t, err)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", s.Address().String())

	hash := crypto.Keccak256([]byte("hello"))
	sig, err := s.SignHash(hash)
	require.NoError(t, err)
	pub, err := crypto.SigToPub(hash, sig)
	require.NoError(t, err)
	require.Equal(t, s.Address().Common(), crypto.PubkeyToAddress(*pub))

	chainID := big.NewInt(14800)
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     1,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(10),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	})
	signed, err := s.SignTx(tx, chainID)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	require.Equal(t, s.Address().Common(), from)

	_, err = s.SignTx(tx, big.NewInt(0))
	require.Error(t, err)

	require.NoError(t, s.Close())
	_, err = s.SignHash(hash)
	require.Error(t, err)
}

func TestFormatEther(t *testing.T) {
	require.Equal(t, "1.500000", FormatEther(big.NewInt(1_500_000_000_000_000_000)))
	require.Equal(t, "0.000000", FormatEther(big.NewInt(0)))
	require.Equal(t, "0", FormatEther(nil))
}
