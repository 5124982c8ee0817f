package noise

// SymmetricState hosts the running handshake hash h and chaining key ck,
// plus an inner CipherState that starts unkeyed.
type SymmetricState struct {
	hashFunc HashFunc
	cipherID CipherID

	h  []byte
	ck []byte
	cs CipherState
}

// initializeSymmetric sets h and ck from the protocol name:
// zero-padded if the name fits in hash_len, else hashed.
func (ss *SymmetricState) initializeSymmetric(h HashFunc, cipherID CipherID, protocolName []byte) {
	ss.hashFunc = h
	ss.cipherID = cipherID
	hl := h.HashLen()
	if len(protocolName) <= hl {
		ss.h = make([]byte, hl)
		copy(ss.h, protocolName)
	} else {
		ss.h = h.Hash(protocolName)
	}
	ss.ck = append([]byte(nil), ss.h...)
}

// MixKey absorbs DH or PSK input into the chaining key and (re)keys the
// inner cipher.
func (ss *SymmetricState) MixKey(inputKeyMaterial []byte) error {
	outputs := hkdf(ss.hashFunc, ss.ck, inputKeyMaterial, 2)
	ss.ck = outputs[0]
	var tempK [32]byte
	copy(tempK[:], truncate32(outputs[1]))
	err := ss.cs.initializeKey(ss.cipherID, tempK)
	zero(outputs[1])
	if err != nil {
		return newErr(err.(*Error).Code, "SymmetricState.MixKey", err)
	}
	return nil
}

// MixHash folds data into the running handshake hash.
func (ss *SymmetricState) MixHash(data []byte) {
	ss.h = ss.hashFunc.Hash(append(append([]byte(nil), ss.h...), data...))
}

// MixKeyAndHash absorbs the PSK: splits into three HKDF outputs, mixes the
// middle one into h, and the last (truncated) into the cipher key.
func (ss *SymmetricState) MixKeyAndHash(inputKeyMaterial []byte) error {
	outputs := hkdf(ss.hashFunc, ss.ck, inputKeyMaterial, 3)
	ss.ck = outputs[0]
	ss.MixHash(outputs[1])
	var tempK [32]byte
	copy(tempK[:], truncate32(outputs[2]))
	err := ss.cs.initializeKey(ss.cipherID, tempK)
	zero(outputs[1])
	zero(outputs[2])
	if err != nil {
		return newErr(err.(*Error).Code, "SymmetricState.MixKeyAndHash", err)
	}
	return nil
}

// EncryptAndHash encrypts (if keyed) under AD=h, then mixes the ciphertext
// — never the plaintext — into h. The ordering is essential.
func (ss *SymmetricState) EncryptAndHash(plaintext []byte) ([]byte, error) {
	ct, err := ss.cs.EncryptWithAd(ss.h, plaintext)
	if err != nil {
		return nil, newErr(err.(*Error).Code, "SymmetricState.EncryptAndHash", err)
	}
	ss.MixHash(ct)
	return ct, nil
}

// DecryptAndHash decrypts (if keyed) under AD=h, then mixes the ciphertext
// into h.
func (ss *SymmetricState) DecryptAndHash(ciphertext []byte) ([]byte, error) {
	pt, err := ss.cs.DecryptWithAd(ss.h, ciphertext)
	if err != nil {
		return nil, newErr(err.(*Error).Code, "SymmetricState.DecryptAndHash", err)
	}
	ss.MixHash(ciphertext)
	return pt, nil
}

// Split derives two transport CipherStates from ck. The
// SymmetricState is conceptually consumed by this call: ck and h are
// zeroed afterward.
func (ss *SymmetricState) Split() (c1, c2 *CipherState, err error) {
	outputs := hkdf(ss.hashFunc, ss.ck, nil, 2)
	var k1, k2 [32]byte
	copy(k1[:], truncate32(outputs[0]))
	copy(k2[:], truncate32(outputs[1]))

	c1 = &CipherState{}
	c2 = &CipherState{}
	if err := c1.initializeKey(ss.cipherID, k1); err != nil {
		return nil, nil, newErr(err.(*Error).Code, "SymmetricState.Split", err)
	}
	if err := c2.initializeKey(ss.cipherID, k2); err != nil {
		return nil, nil, newErr(err.(*Error).Code, "SymmetricState.Split", err)
	}
	zero(outputs[0])
	zero(outputs[1])
	ss.free()
	return c1, c2, nil
}

// HandshakeHash returns a copy of the current handshake hash h. Split zeroes
// h, so a channel-binding value must be read before Split is called.
func (ss *SymmetricState) HandshakeHash() []byte {
	return append([]byte(nil), ss.h...)
}

func (ss *SymmetricState) free() {
	zero(ss.h)
	zero(ss.ck)
	ss.cs.Free()
}

func truncate32(b []byte) []byte {
	if len(b) < 32 {
		out := make([]byte, 32)
		copy(out, b)
		return out
	}
	return b[:32]
}
