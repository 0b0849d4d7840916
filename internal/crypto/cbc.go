package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/sigil-io/agent/internal/models"
)

// EncryptCBC encrypts plaintext with AES-256-CBC and PKCS#7 padding. The
// key must be 32 bytes and the iv one AES block.
func EncryptCBC(key, iv, plaintext []byte) ([]byte, error) {
	block, err := newBlockCipher(key, iv)
	if err != nil {
		return nil, models.NewCryptoError("encrypt", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// DecryptCBC reverses EncryptCBC. Broken padding is reported as an error,
// never returned as plaintext.
func DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := newBlockCipher(key, iv)
	if err != nil {
		return nil, models.NewCryptoError("decrypt", err)
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, models.NewCryptoError("decrypt",
			fmt.Errorf("ciphertext length %d is not a positive multiple of the block size", len(ciphertext)))
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, models.NewCryptoError("decrypt", err)
	}
	return plaintext, nil
}

func newBlockCipher(key, iv []byte) (cipher.Block, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("key is %d bytes, AES-256 needs 32", len(key))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("iv is %d bytes, need %d", len(iv), aes.BlockSize)
	}
	return aes.NewCipher(key)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("padded data length %d is invalid", len(data))
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("invalid padding byte %d", padding)
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padding], nil
}
