package signature

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	sig_common "github.com/memoio/vana-wallet/lib/crypto/signature/common"
	"github.com/memoio/vana-wallet/lib/crypto/signature/secp256k1"
	"github.com/memoio/vana-wallet/lib/types"
)

func GenerateKey(typ types.KeyType) (sig_common.PrivKey, error) {
	switch typ {
	case types.Secp256k1:
		sk, _, err := secp256k1.GenerateKey()
		return sk, err
	default:
		return nil, sig_common.ErrBadKeyType
	}
}

// ParsePrivateKey validates length and curve membership of a raw scalar.
// Failures wrap types.ErrInvalidKeyMaterial.
func ParsePrivateKey(privatekey []byte, typ types.KeyType) (sig_common.PrivKey, error) {
	var privkey sig_common.PrivKey
	switch typ {
	case types.Secp256k1:
		privkey = &secp256k1.PrivateKey{}
		err := privkey.Deserialize(privatekey)
		if err != nil {
			return nil, xerrors.Errorf("%d byte secp256k1 scalar: %w", len(privatekey), types.ErrInvalidKeyMaterial)
		}
	default:
		return nil, xerrors.Errorf("%s: %w", errors.Wrap(sig_common.ErrBadKeyType, strconv.Itoa(int(typ))), types.ErrInvalidKeyMaterial)
	}
	return privkey, nil
}

// ParsePrivateKeyHex parses a hex encoded secp256k1 scalar, 0x prefix optional.
func ParsePrivateKeyHex(s string) (sig_common.PrivKey, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, xerrors.Errorf("private key is not hex: %w", types.ErrInvalidKeyMaterial)
	}
	defer clear(b)

	return ParsePrivateKey(b, types.Secp256k1)
}

// ParsePubByte accepts 33, 64 and 65 byte secp256k1 encodings.
func ParsePubByte(pubbyte []byte) (sig_common.PubKey, error) {
	pubKey := &secp256k1.PublicKey{}
	err := pubKey.Deserialize(pubbyte)
	if err != nil {
		return nil, xerrors.Errorf("%d byte public key: %w", len(pubbyte), types.ErrInvalidKeyMaterial)
	}
	return pubKey, nil
}

func ParsePubHex(s string) (sig_common.PubKey, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, xerrors.Errorf("public key is not hex: %w", types.ErrInvalidKeyMaterial)
	}
	return ParsePubByte(b)
}

func GetAddressFromPubkey(pubkey sig_common.PubKey) (address.Address, error) {
	if pubkey == nil {
		return address.Undef, sig_common.ErrBadPublickKey
	}
	switch pubkey.Type() {
	case types.Secp256k1:
		pubBytes, err := pubkey.Raw()
		if err != nil {
			return address.Undef, err
		}
		return address.NewFromPubkey(pubBytes)
	default:
		return address.Undef, sig_common.ErrBadKeyType
	}
}

// Verify checks sig over a 32 byte digest. pubBytes is either a public key or
// a 20 byte address, in which case the signer is recovered.
func Verify(pubBytes []byte, data, sig []byte) (bool, error) {
	switch len(pubBytes) {
	case address.AddressLength:
		if len(sig) != secp256k1.SignatureSize {
			return false, sig_common.ErrBadSign
		}
		rePub := &secp256k1.PublicKey{}
		recovered, err := secp256k1.EcRecover(data, sig)
		if err != nil {
			return false, err
		}
		if err := rePub.Deserialize(recovered); err != nil {
			return false, err
		}
		eaddr, err := GetAddressFromPubkey(rePub)
		if err != nil {
			return false, err
		}
		ok, err := rePub.Verify(data, sig)
		if err != nil || !ok {
			return false, err
		}
		return string(eaddr.Bytes()) == string(pubBytes), nil
	default:
		pk, err := ParsePubByte(pubBytes)
		if err != nil {
			return false, err
		}

		return pk.Verify(data, sig)
	}
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
