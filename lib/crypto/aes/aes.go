package aes

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

const (
	KeySize   = 16 // aes-128
	BlockSize = aes.BlockSize
)

var (
	ErrKeySize = errors.New("keysize must be 16")
	ErrIVSize  = errors.New("iv must be one block")
)

// CTRXOR runs aes-ctr over in; encryption and decryption are the same call.
// The result is a fresh slice.
func CTRXOR(key, in, iv []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	if len(iv) != BlockSize {
		return nil, ErrIVSize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	stream := cipher.NewCTR(block, iv)
	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return out, nil
}
