package secp256k1

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/subtle"

	"github.com/ethereum/go-ethereum/crypto"

	sig_common "github.com/memoio/vana-wallet/lib/crypto/signature/common"
)

const (
	SecretKeySize           = 32
	PublicKeySize           = 65
	PublicKeyRawSize        = 64
	PublicKeyCompressedSize = 33
	SignatureSize           = 65
)

var _ sig_common.PrivKey = (*PrivateKey)(nil)
var _ sig_common.PubKey = (*PublicKey)(nil)

type PrivateKey struct {
	*PublicKey
	secretKey []byte
}

type PublicKey struct {
	pubKey []byte
}

// GenerateKey generates a new Secp256k1 private and public key pair
func GenerateKey() (sig_common.PrivKey, sig_common.PubKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	defer key.D.SetInt64(0)

	pub := &PublicKey{pubKey: crypto.FromECDSAPub(&key.PublicKey)}
	priv := &PrivateKey{
		PublicKey: pub,
		secretKey: crypto.FromECDSA(key),
	}

	return priv, pub, nil
}

// Equals compares two private keys
func (k *PrivateKey) Equals(o sig_common.Key) bool {
	if o.Type() != sig_common.Secp256k1 {
		return false
	}

	a, err := k.Raw()
	if err != nil {
		return false
	}
	b, err := o.Raw()
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Type returns the private key type
func (k *PrivateKey) Type() sig_common.KeyType {
	return sig_common.Secp256k1
}

// Raw returns the bytes of the key
func (k *PrivateKey) Raw() ([]byte, error) {
	if len(k.secretKey) != SecretKeySize {
		return nil, sig_common.ErrBadPrivateKey
	}
	return k.secretKey, nil
}

// Sign returns a recoverable [R || S || V] signature over a 32 byte digest.
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	if len(msg) != sig_common.MsgBytes {
		return nil, sig_common.ErrBadMsg
	}

	ek, err := k.ECDSA()
	if err != nil {
		return nil, err
	}
	defer ek.D.SetInt64(0)

	return crypto.Sign(msg, ek)
}

// ECDSA returns a fresh ecdsa view of the key; callers zero its D when done.
func (k *PrivateKey) ECDSA() (*ecdsa.PrivateKey, error) {
	sk, err := k.Raw()
	if err != nil {
		return nil, err
	}
	return crypto.ToECDSA(sk)
}

// GetPublic returns a public key
func (k *PrivateKey) GetPublic() sig_common.PubKey {
	if k.PublicKey != nil {
		return k.PublicKey
	}

	ek, err := k.ECDSA()
	if err != nil {
		return nil
	}
	defer ek.D.SetInt64(0)

	k.PublicKey = &PublicKey{crypto.FromECDSAPub(&ek.PublicKey)}
	return k.PublicKey
}

// Deserialize sets the key from a 32 byte scalar. The scalar must be non-zero
// and below the curve order. data is copied.
func (k *PrivateKey) Deserialize(data []byte) error {
	if len(data) != SecretKeySize {
		return sig_common.ErrBadPrivateKey
	}

	ek, err := crypto.ToECDSA(data)
	if err != nil {
		return sig_common.ErrBadPrivateKey
	}
	defer ek.D.SetInt64(0)

	k.secretKey = bytes.Clone(data)
	k.PublicKey = &PublicKey{crypto.FromECDSAPub(&ek.PublicKey)}

	return nil
}

func (k *PrivateKey) Zero() {
	clear(k.secretKey)
	k.secretKey = nil
}

// Equals compares two public keys
func (k *PublicKey) Equals(o sig_common.Key) bool {
	if o.Type() != sig_common.Secp256k1 {
		return false
	}

	a, err := k.Raw()
	if err != nil {
		return false
	}
	b, err := o.Raw()
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Type returns the public key type
func (k *PublicKey) Type() sig_common.KeyType {
	return sig_common.Secp256k1
}

// Raw returns the uncompressed 65 byte encoding, 0x04 prefixed.
func (k *PublicKey) Raw() ([]byte, error) {
	if len(k.pubKey) != PublicKeySize {
		return nil, sig_common.ErrBadPublickKey
	}

	return k.pubKey, nil
}

func (k *PublicKey) CompressedByte() ([]byte, error) {
	key, err := crypto.UnmarshalPubkey(k.pubKey)
	if err != nil {
		return nil, err
	}
	return crypto.CompressPubkey(key), nil
}

// Deserialize accepts uncompressed (65), raw (64, no prefix) and compressed
// (33) encodings and checks that the point is on the curve.
func (k *PublicKey) Deserialize(data []byte) error {
	switch len(data) {
	case PublicKeySize:
		if _, err := crypto.UnmarshalPubkey(data); err != nil {
			return sig_common.ErrBadPublickKey
		}
		k.pubKey = bytes.Clone(data)
	case PublicKeyRawSize:
		full := append([]byte{0x04}, data...)
		if _, err := crypto.UnmarshalPubkey(full); err != nil {
			return sig_common.ErrBadPublickKey
		}
		k.pubKey = full
	case PublicKeyCompressedSize:
		key, err := crypto.DecompressPubkey(data)
		if err != nil {
			return sig_common.ErrBadPublickKey
		}
		k.pubKey = crypto.FromECDSAPub(key)
	default:
		return sig_common.ErrBadPublickKey
	}

	return nil
}

// Verify checks a [R || S || V] signature over a 32 byte digest.
func (k *PublicKey) Verify(msg, sig []byte) (bool, error) {
	if len(sig) != SignatureSize {
		return false, sig_common.ErrBadSign
	}
	if len(msg) != sig_common.MsgBytes {
		return false, sig_common.ErrBadMsg
	}

	pubBytes, err := k.Raw()
	if err != nil {
		return false, err
	}

	rePub, err := crypto.Ecrecover(msg, sig)
	if err != nil {
		return false, err
	}

	if bytes.Equal(pubBytes, rePub) {
		return crypto.VerifySignature(pubBytes, msg, sig[:64]), nil
	}
	return false, nil
}

// EcRecover recovers the uncompressed public key from a digest, signature pair.
func EcRecover(msg, sig []byte) ([]byte, error) {
	if len(sig) != SignatureSize {
		return nil, sig_common.ErrBadSign
	}
	return crypto.Ecrecover(msg, sig)
}
