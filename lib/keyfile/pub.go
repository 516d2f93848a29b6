package keyfile

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"

	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	"github.com/memoio/vana-wallet/lib/crypto/signature"
	"github.com/memoio/vana-wallet/lib/types"
)

const pubVersion = 1

// PubRecord is the cleartext coldkeypub file.
type PubRecord struct {
	Version   int    `json:"version"`
	Address   string `json:"address"`
	PublicKey string `json:"public_key,omitempty"`
}

// NewPub builds a record from an address and an optional 65 byte public key.
// When pub is given it must hash to addr.
func NewPub(addr address.Address, pub []byte) (*PubRecord, error) {
	r := &PubRecord{
		Version: pubVersion,
		Address: addr.String(),
	}
	if len(pub) > 0 {
		pk, err := signature.ParsePubByte(pub)
		if err != nil {
			return nil, err
		}
		got, err := signature.GetAddressFromPubkey(pk)
		if err != nil {
			return nil, err
		}
		if got != addr {
			return nil, xerrors.Errorf("public key is for %s, not %s: %w", got, addr, types.ErrInvalidKeyMaterial)
		}
		raw, err := pk.Raw()
		if err != nil {
			return nil, err
		}
		r.PublicKey = "0x" + hex.EncodeToString(raw)
	}
	return r, nil
}

func (r *PubRecord) Addr() (address.Address, error) {
	a, err := address.NewFromString(r.Address)
	if err != nil {
		return address.Undef, xerrors.Errorf("address %q: %w", r.Address, types.ErrCorruptKeyFile)
	}
	return a, nil
}

func LoadPub(path string) (*PubRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("%s: %w", path, types.ErrNotFound)
		}
		return nil, err
	}

	r := new(PubRecord)
	if err := json.Unmarshal(data, r); err != nil {
		return nil, xerrors.Errorf("%s: %s: %w", path, err, types.ErrCorruptKeyFile)
	}
	if r.Version != pubVersion {
		return nil, xerrors.Errorf("%s: version %d: %w", path, r.Version, types.ErrCorruptKeyFile)
	}
	addr, err := r.Addr()
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	if r.PublicKey != "" {
		pub, err := hex.DecodeString(strings.TrimPrefix(r.PublicKey, "0x"))
		if err != nil || len(pub) == 0 {
			return nil, xerrors.Errorf("%s: public key is not hex: %w", path, types.ErrCorruptKeyFile)
		}
		if _, err := NewPub(addr, pub); err != nil {
			return nil, xerrors.Errorf("%s: public key does not match address: %w", path, types.ErrCorruptKeyFile)
		}
	}
	return r, nil
}

func SavePub(path string, r *PubRecord) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}
