package keyfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/memoio/vana-wallet/lib/address"
	"github.com/memoio/vana-wallet/lib/crypto/encrypt"
	"github.com/memoio/vana-wallet/lib/crypto/signature"
	"github.com/memoio/vana-wallet/lib/types"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func testMaterial(t *testing.T) ([]byte, []byte) {
	sk, err := signature.ParsePrivateKeyHex(testKey)
	require.NoError(t, err)
	raw, err := sk.Raw()
	require.NoError(t, err)
	pub, err := sk.GetPublic().Raw()
	require.NoError(t, err)
	return raw, pub
}

func newEncryptor(t *testing.T) *encrypt.Encryptor {
	e, err := encrypt.New(encrypt.LightParams())
	require.NoError(t, err)
	return e
}

func TestSaveLoadEncrypted(t *testing.T) {
	e := newEncryptor(t)
	raw, pub := testMaterial(t)
	addr := mustAddr(t, pub)

	r, err := Seal(e, raw, addr, "pw")
	require.NoError(t, err)
	require.True(t, r.Encrypted)
	require.Equal(t, encrypt.VersionCurrent, r.Version)

	p := filepath.Join(t.TempDir(), "coldkey")
	require.False(t, Exists(p))
	require.NoError(t, Save(p, r))
	require.True(t, Exists(p))

	fi, err := os.Stat(p)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), fi.Mode().Perm())

	loaded, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, r, loaded)

	got, err := loaded.Open(e, "pw")
	require.NoError(t, err)
	require.Equal(t, raw, got)

	_, err = loaded.Open(e, "nope")
	require.ErrorIs(t, err, types.ErrAuthentication)

	a, err := loaded.Addr()
	require.NoError(t, err)
	require.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", a.String())

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPlaintextChecksum(t *testing.T) {
	e := newEncryptor(t)
	raw, pub := testMaterial(t)

	r, err := Seal(e, raw, mustAddr(t, pub), "")
	require.NoError(t, err)
	require.False(t, r.Encrypted)
	require.Equal(t, VersionPlain, r.Version)

	p := filepath.Join(t.TempDir(), "hk")
	require.NoError(t, Save(p, r))

	loaded, err := Load(p)
	require.NoError(t, err)
	got, err := loaded.Open(e, "")
	require.NoError(t, err)
	require.Equal(t, raw, got)

	// flip one payload nibble, keep the old checksum
	r.Payload = "bc" + r.Payload[2:]
	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0600))

	_, err = Load(p)
	require.ErrorIs(t, err, types.ErrCorruptKeyFile)
}

func TestMACTamper(t *testing.T) {
	e := newEncryptor(t)
	raw, pub := testMaterial(t)

	r, err := Seal(e, raw, mustAddr(t, pub), "pw")
	require.NoError(t, err)
	require.Len(t, r.MAC, 2*16)

	p := filepath.Join(t.TempDir(), "coldkey")
	require.NoError(t, Save(p, r))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	var onDisk map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.NotEmpty(t, onDisk["mac"])

	flip := func(h string) string {
		if h[0] == '0' {
			return "1" + h[1:]
		}
		return "0" + h[1:]
	}

	// stale checksum
	bad := *r
	bad.MAC = flip(r.MAC)
	data, err = json.Marshal(&bad)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0600))
	_, err = Load(p)
	require.ErrorIs(t, err, types.ErrCorruptKeyFile)

	// consistent checksum, tag no longer verifies
	bad.Checksum = bad.digest()
	data, err = json.Marshal(&bad)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0600))
	loaded, err := Load(p)
	require.NoError(t, err)
	got, err := loaded.Open(e, "pw")
	require.ErrorIs(t, err, types.ErrAuthentication)
	require.Nil(t, got)

	// encrypted record without a mac
	bad.MAC = ""
	bad.Checksum = bad.digest()
	data, err = json.Marshal(&bad)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p, data, 0600))
	_, err = Load(p)
	require.ErrorIs(t, err, types.ErrCorruptKeyFile)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, types.ErrNotFound)

	cases := map[string]string{
		"garbage":  "not json",
		"empty":    "{}",
		"no check": `{"version":0,"encrypted":false,"cipher_name":"none","payload":"00","address":"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266","id":"x"}`,
	}
	for name, body := range cases {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0600))
		_, err := Load(p)
		require.ErrorIs(t, err, types.ErrCorruptKeyFile, name)
	}
}

func TestReseal(t *testing.T) {
	e := newEncryptor(t)
	raw, pub := testMaterial(t)

	r, err := Seal(e, raw, mustAddr(t, pub), "old")
	require.NoError(t, err)
	id := r.Id

	b, err := r.Blob()
	require.NoError(t, err)
	nb, err := e.Migrate(b, "old", "new")
	require.NoError(t, err)
	r.Reseal(nb)
	require.Equal(t, id, r.Id)

	p := filepath.Join(t.TempDir(), "coldkey")
	require.NoError(t, Save(p, r))
	loaded, err := Load(p)
	require.NoError(t, err)

	got, err := loaded.Open(e, "new")
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestPub(t *testing.T) {
	_, pub := testMaterial(t)
	addr := mustAddr(t, pub)

	r, err := NewPub(addr, pub)
	require.NoError(t, err)

	p := filepath.Join(t.TempDir(), "coldkeypub.txt")
	require.NoError(t, SavePub(p, r))
	loaded, err := LoadPub(p)
	require.NoError(t, err)
	require.Equal(t, r, loaded)

	bare, err := NewPub(addr, nil)
	require.NoError(t, err)
	require.Empty(t, bare.PublicKey)

	other, err := signature.GenerateKey(types.Secp256k1)
	require.NoError(t, err)
	otherPub, err := other.GetPublic().Raw()
	require.NoError(t, err)
	_, err = NewPub(addr, otherPub)
	require.ErrorIs(t, err, types.ErrInvalidKeyMaterial)
}

func mustAddr(t *testing.T, pub []byte) address.Address {
	a, err := address.NewFromPubkey(pub)
	require.NoError(t, err)
	return a
}

func TestSyncUnsupported(t *testing.T) {
	require.True(t, syncUnsupported(&os.PathError{Op: "sync", Path: "/x", Err: syscall.EINVAL}))
	require.True(t, syncUnsupported(xerrors.Errorf("wrapped: %w", syscall.EINVAL)))
	require.False(t, syncUnsupported(&os.PathError{Op: "sync", Path: "/x", Err: syscall.EIO}))
	require.False(t, syncUnsupported(xerrors.New("invalid argument")))
	require.NoError(t, syncDir(t.TempDir()))
}
