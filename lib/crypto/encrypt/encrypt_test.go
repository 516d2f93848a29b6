package encrypt

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/stretchr/testify/require"

	"github.com/memoio/vana-wallet/lib/types"
)

var secret = bytes.Repeat([]byte{0xab}, 32)

func newTestEncryptor(t *testing.T) *Encryptor {
	e, err := New(LightParams())
	require.NoError(t, err)
	return e
}

func TestRoundTrip(t *testing.T) {
	e := newTestEncryptor(t)

	b, err := e.Encrypt(secret, "hunter2")
	require.NoError(t, err)
	require.Equal(t, VersionCurrent, b.Version)
	require.Equal(t, "argon2id", b.KDF)
	require.True(t, e.IsCurrent(b))
	require.Len(t, b.MAC, 16)
	require.Len(t, b.Payload, len(secret))
	require.NotContains(t, string(b.Payload), string(secret))

	got, err := e.Decrypt(b, "hunter2")
	require.NoError(t, err)
	require.Equal(t, secret, got)

	// fresh salt and nonce on every call
	b2, err := e.Encrypt(secret, "hunter2")
	require.NoError(t, err)
	require.NotEqual(t, b.Salt, b2.Salt)
	require.NotEqual(t, b.Nonce, b2.Nonce)
	require.NotEqual(t, b.Payload, b2.Payload)
}

func TestWrongPassword(t *testing.T) {
	e := newTestEncryptor(t)

	b, err := e.Encrypt(secret, "right")
	require.NoError(t, err)

	got, err := e.Decrypt(b, "wrong")
	require.ErrorIs(t, err, types.ErrAuthentication)
	require.Nil(t, got)

	legacy, err := NewLegacy(LightParams()).Seal(secret, []byte("right"))
	require.NoError(t, err)
	got, err = e.Decrypt(legacy, "wrong")
	require.ErrorIs(t, err, types.ErrAuthentication)
	require.Nil(t, got)
}

func TestTamper(t *testing.T) {
	e := newTestEncryptor(t)

	b, err := e.Encrypt(secret, "pw")
	require.NoError(t, err)
	b.Payload[0] ^= 0x01
	_, err = e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrAuthentication)

	b, err = e.Encrypt(secret, "pw")
	require.NoError(t, err)
	b.MAC[0] ^= 0x01
	got, err := e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrAuthentication)
	require.Nil(t, got)

	b.MAC = b.MAC[:15]
	_, err = e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrCorruptKeyFile)
	b.MAC = nil
	_, err = e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrCorruptKeyFile)

	legacy, err := NewLegacy(LightParams()).Seal(secret, []byte("pw"))
	require.NoError(t, err)
	legacy.MAC[3] ^= 0x80
	_, err = e.Decrypt(legacy, "pw")
	require.ErrorIs(t, err, types.ErrAuthentication)
}

func TestUnsupported(t *testing.T) {
	e := newTestEncryptor(t)

	b, err := e.Encrypt(secret, "pw")
	require.NoError(t, err)

	b.Version = 99
	_, err = e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrUnsupportedScheme)

	b.Version = VersionCurrent
	b.Cipher = "rot13"
	_, err = e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrUnsupportedScheme)

	_, err = e.Decrypt(nil, "pw")
	require.ErrorIs(t, err, types.ErrUnsupportedScheme)
}

func TestMalformedParams(t *testing.T) {
	e := newTestEncryptor(t)

	b, err := e.Encrypt(secret, "pw")
	require.NoError(t, err)
	b.KDFParams["m"] = 1 << 30
	_, err = e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrCorruptKeyFile)

	delete(b.KDFParams, "t")
	_, err = e.Decrypt(b, "pw")
	require.ErrorIs(t, err, types.ErrCorruptKeyFile)

	// scrypt work is bounded by r and p too, not only n
	for _, kv := range []struct {
		k string
		v int
	}{{"r", 1 << 16}, {"p", 1 << 10}, {"n", 1 << 21}} {
		legacy, err := NewLegacy(LightParams()).Seal(secret, []byte("pw"))
		require.NoError(t, err)
		legacy.KDFParams[kv.k] = kv.v
		_, err = e.Decrypt(legacy, "pw")
		require.ErrorIs(t, err, types.ErrCorruptKeyFile, kv.k)
	}
}

func TestMigrate(t *testing.T) {
	e := newTestEncryptor(t)

	legacy, err := NewLegacy(LightParams()).Seal(secret, []byte("old"))
	require.NoError(t, err)
	require.False(t, e.IsCurrent(legacy))

	_, err = e.Migrate(legacy, "bad", "new")
	require.ErrorIs(t, err, types.ErrAuthentication)

	b, err := e.Migrate(legacy, "old", "new")
	require.NoError(t, err)
	require.True(t, e.IsCurrent(b))

	_, err = e.Decrypt(b, "old")
	require.ErrorIs(t, err, types.ErrAuthentication)

	got, err := e.Decrypt(b, "new")
	require.NoError(t, err)
	require.Equal(t, secret, got)
}

// a v3 crypto section written by go-ethereum opens with the legacy scheme
func TestLegacyInterop(t *testing.T) {
	e := newTestEncryptor(t)

	cj, err := keystore.EncryptDataV3(secret, []byte("geth"), 1<<10, 1)
	require.NoError(t, err)

	b := &Blob{
		Version:   VersionLegacy,
		Cipher:    cj.Cipher,
		KDF:       cj.KDF,
		KDFParams: map[string]int{},
	}
	for _, k := range []string{"n", "r", "p", "dklen"} {
		b.KDFParams[k] = cj.KDFParams[k].(int)
	}
	b.Salt, err = hex.DecodeString(cj.KDFParams["salt"].(string))
	require.NoError(t, err)
	b.Nonce, err = hex.DecodeString(cj.CipherParams.IV)
	require.NoError(t, err)
	b.Payload, err = hex.DecodeString(cj.CipherText)
	require.NoError(t, err)
	b.MAC, err = hex.DecodeString(cj.MAC)
	require.NoError(t, err)

	got, err := e.Decrypt(b, "geth")
	require.NoError(t, err)
	require.Equal(t, secret, got)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := LightParams()
	p.ScryptN = 1000
	require.Error(t, p.Validate())

	p = LightParams()
	p.Argon2Threads = 0
	_, err := New(p)
	require.Error(t, err)

	p = LightParams()
	p.Argon2Memory = 2 * 1024 * 1024
	require.Error(t, p.Validate())

	p = LightParams()
	p.ScryptR = 64
	require.Error(t, p.Validate())

	p = LightParams()
	p.ScryptP = 17
	require.Error(t, p.Validate())
}
