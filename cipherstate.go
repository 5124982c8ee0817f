package noise

// maxNonce is the reserved nonce value that must never be used for an
// actual encrypt/decrypt operation.
const maxNonce uint64 = ^uint64(0)

// CipherState is an AEAD cipher keyed (or not) with a strictly increasing
// 64-bit nonce. The zero value is a valid, unkeyed CipherState:
// EncryptWithAd/DecryptWithAd then pass data through unchanged.
type CipherState struct {
	cipherID CipherID
	cipher   AEADCipher
	k        [32]byte
	n        uint64
	hasKey   bool
	invalid  bool
}

// initializeKey keys (or rekeys) the CipherState and resets n to 0 (used by
// SymmetricState.MixKey/MixKeyAndHash).
func (cs *CipherState) initializeKey(cipherID CipherID, key [32]byte) error {
	c, err := cipherByID(cipherID, key)
	if err != nil {
		return newErr(err.(*Error).Code, "CipherState.initializeKey", err)
	}
	cs.cipherID = cipherID
	cs.cipher = c
	cs.k = key
	cs.n = 0
	cs.hasKey = true
	return nil
}

// HasKey reports whether the CipherState is keyed.
func (cs *CipherState) HasKey() bool { return cs.hasKey }

// EncryptWithAd encrypts plaintext with associated data ad. If
// unkeyed, it returns plaintext unchanged and ad is ignored. Fails with
// ErrMaxNonce if n already equals 2^64-1.
func (cs *CipherState) EncryptWithAd(ad, plaintext []byte) ([]byte, error) {
	const op = "CipherState.EncryptWithAd"
	if cs.invalid {
		return nil, newErr(ErrInvalidState, op, nil)
	}
	if !cs.hasKey {
		return append([]byte(nil), plaintext...), nil
	}
	if cs.n == maxNonce {
		return nil, newErr(ErrMaxNonce, op, nil)
	}
	out := cs.cipher.Encrypt(nil, cs.n, ad, plaintext)
	cs.n++
	return out, nil
}

// DecryptWithAd verifies and decrypts ciphertext with associated data ad.
// On AEAD tag mismatch, n is NOT incremented. Fails with ErrMaxNonce if n
// already equals 2^64-1.
func (cs *CipherState) DecryptWithAd(ad, ciphertext []byte) ([]byte, error) {
	const op = "CipherState.DecryptWithAd"
	if cs.invalid {
		return nil, newErr(ErrInvalidState, op, nil)
	}
	if !cs.hasKey {
		return append([]byte(nil), ciphertext...), nil
	}
	if cs.n == maxNonce {
		return nil, newErr(ErrMaxNonce, op, nil)
	}
	out, err := cs.cipher.Decrypt(nil, cs.n, ad, ciphertext)
	if err != nil {
		return nil, newErr(ErrMACFailure, op, err)
	}
	cs.n++
	return out, nil
}

// Rekey replaces k with the first 32 bytes produced by encrypting a
// zero-filled 32-byte block under nonce 2^64-1 with an empty ad; n is left
// unchanged.
func (cs *CipherState) Rekey() error {
	const op = "CipherState.Rekey"
	if cs.invalid {
		return newErr(ErrInvalidState, op, nil)
	}
	if !cs.hasKey {
		return newErr(ErrNotApplicable, op, nil)
	}
	zeroBlock := make([]byte, 32)
	out := cs.cipher.Encrypt(nil, maxNonce, nil, zeroBlock)
	var newKey [32]byte
	copy(newKey[:], out[:32])
	zero(out)

	c, err := cipherByID(cs.cipherID, newKey)
	if err != nil {
		return newErr(err.(*Error).Code, op, err)
	}
	cs.cipher = c
	cs.k = newKey
	return nil
}

// Nonce returns the current nonce counter, for tests and diagnostics.
func (cs *CipherState) Nonce() uint64 { return cs.n }

// Free zeroes the key material and marks the CipherState unusable.
func (cs *CipherState) Free() {
	zero(cs.k[:])
	cs.hasKey = false
	cs.invalid = true
	cs.cipher = nil
}
