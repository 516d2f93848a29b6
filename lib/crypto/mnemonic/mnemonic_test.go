package mnemonic

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/memoio/vana-wallet/lib/types"
)

const abandon = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerate(t *testing.T) {
	for _, n := range []int{0, 12, 15, 18, 21, 24} {
		m, err := Generate(n)
		require.NoError(t, err)

		want := n
		if n == 0 {
			want = DefaultWords
		}
		require.Len(t, m.Words(), want)
		require.NoError(t, Validate(m))
	}

	_, err := Generate(13)
	require.ErrorIs(t, err, types.ErrInvalidMnemonic)
}

func TestGenerateFresh(t *testing.T) {
	a, err := Generate(12)
	require.NoError(t, err)
	b, err := Generate(12)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestToSeedVector(t *testing.T) {
	seed, err := ToSeed(abandon)
	require.NoError(t, err)
	require.Equal(t,
		"5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
		hex.EncodeToString(seed))

	again, err := ToSeed(Normalize("  ABANDON abandon abandon abandon abandon abandon\tabandon abandon abandon abandon abandon about \n"))
	require.NoError(t, err)
	require.Equal(t, seed, again)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		phrase string
		reason string
	}{
		{"short", "abandon abandon abandon", "words"},
		{"unknown word", strings.Replace(abandon, "about", "aboutt", 1), "wordlist"},
		{"checksum", strings.Replace(abandon, "about", "abandon", 1), "checksum"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(Normalize(c.phrase))
			require.ErrorIs(t, err, types.ErrInvalidMnemonic)
			require.Contains(t, err.Error(), c.reason)

			_, err = ToSeed(Normalize(c.phrase))
			require.ErrorIs(t, err, types.ErrInvalidMnemonic)
		})
	}
}
