package address

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrInvalidPayload is returned when encountering an invalid address payload.
	ErrInvalidPayload = errors.New("invalid address payload")
	// ErrInvalidLength is returned when encountering an address of invalid length.
	ErrInvalidLength = errors.New("invalid address length")
	// ErrInvalidChecksum is returned when a mixed case address fails EIP-55.
	ErrInvalidChecksum = errors.New("invalid address checksum")
)

// UndefAddressString is the string used to represent an empty address when encoded to a string.
var UndefAddressString = "<empty>"

// AddressLength is the byte length of an address (h160).
const AddressLength = common.AddressLength

// Address is the last 20 bytes of keccak256 over an uncompressed secp256k1
// public key without its 0x04 prefix. It renders as EIP-55 checksummed hex.
type Address struct{ a common.Address }

// Undef is the type that represents an undefined address.
var Undef = Address{}

// Bytes returns the address as bytes.
func (a Address) Bytes() []byte {
	return a.a.Bytes()
}

// String returns an address encoded as a string.
func (a Address) String() string {
	if a.Empty() {
		return UndefAddressString
	}
	return a.a.Hex()
}

// Common converts to the go-ethereum representation.
func (a Address) Common() common.Address {
	return a.a
}

// Empty returns true if the address is empty, false otherwise.
func (a Address) Empty() bool {
	return a == Undef
}

// UnmarshalJSON implements the json unmarshal interface.
func (a *Address) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	addr, err := NewFromString(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// MarshalJSON implements the json marshal interface.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// ToEthAddress returns an address using the SECP256K1 protocol.
// pubkey is 65 bytes
func ToEthAddress(pubkey []byte) ([]byte, error) {
	if len(pubkey) != 65 {
		return nil, ErrInvalidLength
	}

	d := sha3.NewLegacyKeccak256()
	d.Write(pubkey[1:])
	payload := d.Sum(nil)
	return payload[12:], nil
}

// NewAddress wraps a 20 byte payload.
func NewAddress(payload []byte) (Address, error) {
	if len(payload) != AddressLength {
		return Undef, ErrInvalidLength
	}
	return Address{common.BytesToAddress(payload)}, nil
}

// NewFromPubkey derives the address of an uncompressed public key.
func NewFromPubkey(pubkey []byte) (Address, error) {
	payload, err := ToEthAddress(pubkey)
	if err != nil {
		return Undef, err
	}
	return NewAddress(payload)
}

// NewFromString parses 0x prefixed hex. All lower or all upper case input is
// accepted as is; mixed case input must carry a valid EIP-55 checksum.
func NewFromString(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || s == UndefAddressString {
		return Undef, ErrInvalidLength
	}
	if !common.IsHexAddress(s) {
		if len(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")) != 2*AddressLength {
			return Undef, ErrInvalidLength
		}
		return Undef, ErrInvalidPayload
	}

	addr := common.HexToAddress(s)

	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if addr.Hex()[2:] != body {
			return Undef, ErrInvalidChecksum
		}
	}

	return Address{addr}, nil
}
