package wallet

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	"github.com/memoio/vana-wallet/lib/crypto/mnemonic"
	"github.com/memoio/vana-wallet/lib/crypto/signature"
	sig_common "github.com/memoio/vana-wallet/lib/crypto/signature/common"
	"github.com/memoio/vana-wallet/lib/keyfile"
	"github.com/memoio/vana-wallet/lib/types"
)

// Source is where regenerated key material comes from. Exactly one of
// Mnemonic, PrivateKey and JSON is set.
type Source struct {
	Mnemonic string
	// PrivateKey is hex, 0x prefix optional
	PrivateKey string
	// JSON is a Web3 Secret Storage backup opened with JSONPassword
	JSON         []byte
	JSONPassword string
}

func (s Source) kind() string {
	n := 0
	k := ""
	if s.Mnemonic != "" {
		n++
		k = "mnemonic"
	}
	if s.PrivateKey != "" {
		n++
		k = "private key"
	}
	if len(s.JSON) > 0 {
		n++
		k = "json"
	}
	if n != 1 {
		return ""
	}
	return k
}

// material turns a source into a private key. The caller zeroes it.
func (s Source) material() (sig_common.PrivKey, error) {
	switch s.kind() {
	case "mnemonic":
		return fromMnemonic(mnemonic.Normalize(s.Mnemonic))
	case "private key":
		return signature.ParsePrivateKeyHex(s.PrivateKey)
	case "json":
		return fromJSON(s.JSON, s.JSONPassword)
	default:
		return nil, xerrors.Errorf("need exactly one of mnemonic, private key or json backup: %w", types.ErrInvalidKeyMaterial)
	}
}

func fromMnemonic(m mnemonic.Mnemonic) (sig_common.PrivKey, error) {
	seed, err := mnemonic.ToSeed(m)
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	return signature.FromSeed(seed)
}

func fromJSON(keyjson []byte, password string) (sig_common.PrivKey, error) {
	key, err := keystore.DecryptKey(keyjson, password)
	if err != nil {
		if errors.Is(err, keystore.ErrDecrypt) {
			return nil, xerrors.Errorf("json backup: %w", types.ErrAuthentication)
		}
		return nil, xerrors.Errorf("json backup: %s: %w", err, types.ErrInvalidKeyMaterial)
	}
	defer key.PrivateKey.D.SetInt64(0)

	raw := crypto.FromECDSA(key.PrivateKey)
	defer clear(raw)

	return signature.ParsePrivateKey(raw, types.Secp256k1)
}

// sealKey builds the key record and the public record for sk. An empty
// password leaves the record in plaintext.
func (w *Wallet) sealKey(sk sig_common.PrivKey, password string) (*keyfile.Record, *keyfile.PubRecord, error) {
	pub, err := sk.GetPublic().Raw()
	if err != nil {
		return nil, nil, err
	}
	addr, err := address.NewFromPubkey(pub)
	if err != nil {
		return nil, nil, err
	}
	raw, err := sk.Raw()
	if err != nil {
		return nil, nil, err
	}

	rec, err := keyfile.Seal(w.enc, raw, addr, password)
	if err != nil {
		return nil, nil, err
	}
	pr, err := keyfile.NewPub(addr, pub)
	if err != nil {
		return nil, nil, err
	}
	return rec, pr, nil
}

// openKey decrypts rec and checks the key against its recorded address.
func (w *Wallet) openKey(rec *keyfile.Record, password string) (sig_common.PrivKey, error) {
	raw, err := rec.Open(w.enc, password)
	if err != nil {
		return nil, err
	}
	defer clear(raw)

	sk, err := signature.ParsePrivateKey(raw, rec.Type)
	if err != nil {
		return nil, xerrors.Errorf("stored key: %s: %w", err, types.ErrCorruptKeyFile)
	}

	want, err := rec.Addr()
	if err != nil {
		sk.Zero()
		return nil, err
	}
	got, err := signature.GetAddressFromPubkey(sk.GetPublic())
	if err != nil || got != want {
		sk.Zero()
		return nil, xerrors.Errorf("key does not match address %s: %w", want, types.ErrCorruptKeyFile)
	}
	return sk, nil
}

// parsePubOrAddress accepts a 20 byte address or a 64/65 byte public key,
// both hex. The public key is nil for an address.
func parsePubOrAddress(s string) (address.Address, []byte, error) {
	s = strings.TrimSpace(s)
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	if len(h) == 2*address.AddressLength {
		a, err := address.NewFromString("0x" + h)
		if err != nil {
			return address.Undef, nil, xerrors.Errorf("address %q: %s: %w", s, err, types.ErrInvalidKeyMaterial)
		}
		return a, nil, nil
	}

	pk, err := signature.ParsePubHex(h)
	if err != nil {
		return address.Undef, nil, err
	}
	a, err := signature.GetAddressFromPubkey(pk)
	if err != nil {
		return address.Undef, nil, err
	}
	raw, err := pk.Raw()
	if err != nil {
		return address.Undef, nil, err
	}
	return a, raw, nil
}
