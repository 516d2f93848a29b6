package address

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromString(t *testing.T) {
	assert := assert.New(t)

	const checksummed = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	addr, err := NewFromString(checksummed)
	assert.NoError(err)
	assert.Equal(checksummed, addr.String())

	lower, err := NewFromString("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.NoError(err)
	assert.Equal(addr, lower)

	_, err = NewFromString("0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	assert.ErrorIs(err, ErrInvalidChecksum)

	_, err = NewFromString("0x5aaeb6053f3e94c9b9a09f33669435e7ef1bea")
	assert.ErrorIs(err, ErrInvalidLength)

	_, err = NewFromString("0xzzaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.ErrorIs(err, ErrInvalidPayload)

	_, err = NewFromString("")
	assert.ErrorIs(err, ErrInvalidLength)
}

func TestAddressJSON(t *testing.T) {
	addr, err := NewFromString("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)

	b, err := json.Marshal(addr)
	require.NoError(t, err)
	require.Equal(t, `"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"`, string(b))

	var back Address
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, addr, back)
	require.False(t, back.Empty())
	require.True(t, Undef.Empty())
	require.Equal(t, UndefAddressString, Undef.String())
}

func TestNewAddressLength(t *testing.T) {
	_, err := NewAddress(make([]byte, 19))
	require.ErrorIs(t, err, ErrInvalidLength)

	_, err = ToEthAddress(make([]byte, 64))
	require.ErrorIs(t, err, ErrInvalidLength)
}
