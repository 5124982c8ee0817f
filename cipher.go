package noise

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEADCipher is the capability set an AEAD cipher exposes.
// Implementations build their own 96-bit nonce from the 64-bit counter;
// the byte layout differs between ChaChaPoly and AESGCM and must match the
// Noise specification exactly.
type AEADCipher interface {
	// Encrypt appends ciphertext||tag to dst and returns the result.
	Encrypt(dst []byte, n uint64, ad, plaintext []byte) []byte
	// Decrypt verifies and decrypts, appending plaintext to dst. Fails
	// with ErrMACFailure on tag mismatch.
	Decrypt(dst []byte, n uint64, ad, ciphertext []byte) ([]byte, error)
}

func cipherByID(id CipherID, key [32]byte) (AEADCipher, error) {
	switch id {
	case CipherChaChaPoly:
		aead, err := chacha20poly1305.New(key[:])
		if err != nil {
			return nil, newErr(ErrInvalidPrivateKey, "cipherByID", err)
		}
		return &chachaPolyCipher{aead: aead}, nil
	case CipherAESGCM:
		block, err := aes.NewCipher(key[:])
		if err != nil {
			return nil, newErr(ErrInvalidPrivateKey, "cipherByID", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, newErr(ErrInvalidPrivateKey, "cipherByID", err)
		}
		return &aesGCMCipher{aead: aead}, nil
	default:
		return nil, newErr(ErrUnknownID, "cipherByID", nil)
	}
}

// chachaPolyCipher lays the 96-bit nonce out as 4 zero bytes followed by the
// 64-bit counter little-endian, matching the AEAD suite table's
// ChaCha20-Poly1305 entry.
type chachaPolyCipher struct {
	aead cipher.AEAD
}

func (c *chachaPolyCipher) nonce(n uint64) []byte {
	var nonce [12]byte
	binary.LittleEndian.PutUint64(nonce[4:], n)
	return nonce[:]
}

func (c *chachaPolyCipher) Encrypt(dst []byte, n uint64, ad, plaintext []byte) []byte {
	return c.aead.Seal(dst, c.nonce(n), plaintext, ad)
}

func (c *chachaPolyCipher) Decrypt(dst []byte, n uint64, ad, ciphertext []byte) ([]byte, error) {
	out, err := c.aead.Open(dst, c.nonce(n), ciphertext, ad)
	if err != nil {
		return nil, newErr(ErrMACFailure, "chachaPolyCipher.Decrypt", err)
	}
	return out, nil
}

// aesGCMCipher lays the 96-bit nonce out as 4 zero bytes followed by the
// 64-bit counter big-endian, matching the AEAD suite table's
// AES-256-GCM entry.
type aesGCMCipher struct {
	aead cipher.AEAD
}

func (c *aesGCMCipher) nonce(n uint64) []byte {
	var nonce [12]byte
	binary.BigEndian.PutUint64(nonce[4:], n)
	return nonce[:]
}

func (c *aesGCMCipher) Encrypt(dst []byte, n uint64, ad, plaintext []byte) []byte {
	return c.aead.Seal(dst, c.nonce(n), plaintext, ad)
}

func (c *aesGCMCipher) Decrypt(dst []byte, n uint64, ad, ciphertext []byte) ([]byte, error) {
	out, err := c.aead.Open(dst, c.nonce(n), ciphertext, ad)
	if err != nil {
		return nil, newErr(ErrMACFailure, "aesGCMCipher.Decrypt", err)
	}
	return out, nil
}
