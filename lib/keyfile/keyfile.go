// Package keyfile reads and writes single key records.
package keyfile

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	"github.com/memoio/vana-wallet/lib/crypto/encrypt"
	"github.com/memoio/vana-wallet/lib/types"
)

// VersionPlain marks a record whose payload is the raw key.
const VersionPlain = 0

const (
	plainCipher = "none"
	keySize     = 32
)

// Record is the on-disk form of one key.
type Record struct {
	Version   int            `json:"version"`
	Encrypted bool           `json:"encrypted"`
	Cipher    string         `json:"cipher_name"`
	KDF       string         `json:"kdf,omitempty"`
	KDFParams map[string]int `json:"kdf_params,omitempty"`
	Salt      string         `json:"salt,omitempty"`
	Nonce     string         `json:"nonce,omitempty"`
	Payload   string         `json:"payload"`
	MAC       string         `json:"mac,omitempty"`
	Checksum  string         `json:"checksum"`
	Address   string         `json:"address"`
	Id        string         `json:"id"`
	Type      types.KeyType  `json:"type"`
}

// Seal builds a record for secret. An empty password leaves the payload in
// plaintext, the only way a record is ever written unencrypted.
func Seal(e *encrypt.Encryptor, secret []byte, addr address.Address, password string) (*Record, error) {
	if len(secret) != keySize {
		return nil, xerrors.Errorf("%d byte key: %w", len(secret), types.ErrInvalidKeyMaterial)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	r := &Record{
		Address: addr.String(),
		Id:      id.String(),
		Type:    types.Secp256k1,
	}

	if password == "" {
		r.Version = VersionPlain
		r.Cipher = plainCipher
		r.Payload = hex.EncodeToString(secret)
	} else {
		b, err := e.Encrypt(secret, password)
		if err != nil {
			return nil, err
		}
		r.setBlob(b)
	}

	r.Checksum = r.digest()
	return r, nil
}

// Open returns the raw key. The password is ignored for plaintext records.
func (r *Record) Open(e *encrypt.Encryptor, password string) ([]byte, error) {
	if !r.Encrypted {
		secret, err := hex.DecodeString(r.Payload)
		if err != nil || len(secret) != keySize {
			clear(secret)
			return nil, xerrors.Errorf("plaintext payload: %w", types.ErrCorruptKeyFile)
		}
		return secret, nil
	}

	b, err := r.Blob()
	if err != nil {
		return nil, err
	}
	secret, err := e.Decrypt(b, password)
	if err != nil {
		return nil, err
	}
	if len(secret) != keySize {
		clear(secret)
		return nil, xerrors.Errorf("decrypted %d bytes: %w", len(secret), types.ErrCorruptKeyFile)
	}
	return secret, nil
}

// Reseal replaces the sealed content, keeping address, id and type.
func (r *Record) Reseal(b *encrypt.Blob) {
	r.setBlob(b)
	r.Checksum = r.digest()
}

func (r *Record) setBlob(b *encrypt.Blob) {
	r.Version = b.Version
	r.Encrypted = true
	r.Cipher = b.Cipher
	r.KDF = b.KDF
	r.KDFParams = b.KDFParams
	r.Salt = hex.EncodeToString(b.Salt)
	r.Nonce = hex.EncodeToString(b.Nonce)
	r.Payload = hex.EncodeToString(b.Payload)
	r.MAC = hex.EncodeToString(b.MAC)
}

// Blob decodes the encrypted part of the record.
func (r *Record) Blob() (*encrypt.Blob, error) {
	if !r.Encrypted {
		return nil, xerrors.Errorf("record is not encrypted: %w", types.ErrUnsupportedScheme)
	}

	b := &encrypt.Blob{
		Version:   r.Version,
		Cipher:    r.Cipher,
		KDF:       r.KDF,
		KDFParams: r.KDFParams,
	}
	var err error
	for _, f := range []struct {
		name string
		in   string
		out  *[]byte
	}{
		{"salt", r.Salt, &b.Salt},
		{"nonce", r.Nonce, &b.Nonce},
		{"payload", r.Payload, &b.Payload},
		{"mac", r.MAC, &b.MAC},
	} {
		*f.out, err = hex.DecodeString(f.in)
		if err != nil {
			return nil, xerrors.Errorf("%s is not hex: %w", f.name, types.ErrCorruptKeyFile)
		}
	}
	return b, nil
}

// Addr parses the cleartext address.
func (r *Record) Addr() (address.Address, error) {
	a, err := address.NewFromString(r.Address)
	if err != nil {
		return address.Undef, xerrors.Errorf("address %q: %w", r.Address, types.ErrCorruptKeyFile)
	}
	return a, nil
}

// digest covers every field except the checksum itself.
func (r *Record) digest() string {
	c := *r
	c.Checksum = ""
	buf, _ := json.Marshal(&c)
	sum := blake3.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

func (r *Record) validate() error {
	if r.Checksum == "" || r.Payload == "" || r.Address == "" || r.Id == "" || r.Cipher == "" {
		return xerrors.Errorf("missing field: %w", types.ErrCorruptKeyFile)
	}
	if r.Checksum != r.digest() {
		return xerrors.Errorf("checksum mismatch: %w", types.ErrCorruptKeyFile)
	}
	if r.Encrypted == (r.Version == VersionPlain) {
		return xerrors.Errorf("version %d with encrypted=%t: %w", r.Version, r.Encrypted, types.ErrCorruptKeyFile)
	}
	if r.Encrypted == (r.MAC == "") {
		return xerrors.Errorf("mac present=%t with encrypted=%t: %w", r.MAC != "", r.Encrypted, types.ErrCorruptKeyFile)
	}
	if _, err := uuid.Parse(r.Id); err != nil {
		return xerrors.Errorf("id: %w", types.ErrCorruptKeyFile)
	}
	if _, err := r.Addr(); err != nil {
		return err
	}
	if r.Encrypted {
		// unknown schemes are left to the encryptor
		_, err := r.Blob()
		return err
	}

	payload, err := hex.DecodeString(r.Payload)
	defer clear(payload)
	if err != nil || len(payload) != keySize || r.Cipher != plainCipher {
		return xerrors.Errorf("plaintext payload: %w", types.ErrCorruptKeyFile)
	}
	return nil
}

// Load reads and checks a record; it does not decrypt.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Errorf("%s: %w", path, types.ErrNotFound)
		}
		return nil, err
	}
	defer clear(data)

	r := new(Record)
	d := json.NewDecoder(bytes.NewReader(data))
	if err := d.Decode(r); err != nil {
		return nil, xerrors.Errorf("%s: %s: %w", path, err, types.ErrCorruptKeyFile)
	}
	if err := r.validate(); err != nil {
		return nil, xerrors.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Save writes r atomically with owner-only permissions.
func Save(path string, r *Record) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	defer clear(data)

	return WriteFileAtomic(path, data)
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileAtomic writes a hidden temp file next to path, syncs it and
// renames it into place. Readers see the old or the new content, never a mix.
func WriteFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// CreateTemp assigns mode 0600
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Sync(); err != nil && !syncUnsupported(err) {
		return err
	}
	return nil
}

// some filesystems refuse fsync on directories
func syncUnsupported(err error) bool {
	return xerrors.Is(err, syscall.EINVAL)
}
