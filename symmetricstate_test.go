package noise

import (
	"bytes"
	"testing"
)

func newTestSymmetricState(name string) *SymmetricState {
	ss := &SymmetricState{}
	ss.initializeSymmetric(sha256Hash{}, CipherChaChaPoly, []byte(name))
	return ss
}

func TestSymmetricStateInitializePadsShortName(t *testing.T) {
	ss := newTestSymmetricState("short")
	if len(ss.h) != 32 {
		t.Fatalf("h should be hash_len bytes, got %d", len(ss.h))
	}
	if !bytes.Equal(ss.ck, ss.h) {
		t.Fatalf("ck should start equal to h")
	}
}

func TestSymmetricStateInitializeHashesLongName(t *testing.T) {
	longName := "Noise_XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX_25519_ChaChaPoly_SHA256"
	ss := newTestSymmetricState(longName)
	expect := sha256Hash{}.Hash([]byte(longName))
	if !bytes.Equal(ss.h, expect) {
		t.Fatalf("h should be hash(name) when name exceeds hash_len")
	}
}

func TestSymmetricStateEncryptAndHashMixesCiphertext(t *testing.T) {
	ss := newTestSymmetricState("Noise_N_25519_ChaChaPoly_SHA256")
	ss.MixKey([]byte("shared secret material"))

	before := append([]byte(nil), ss.h...)
	ct, err := ss.EncryptAndHash([]byte("payload"))
	if err != nil {
		t.Fatalf("EncryptAndHash: %v", err)
	}
	after := ss.h

	expect := sha256Hash{}.Hash(append(append([]byte(nil), before...), ct...))
	if !bytes.Equal(after, expect) {
		t.Fatalf("h must be mixed with the ciphertext, not the plaintext")
	}
}

func TestSymmetricStateEncryptDecryptAndHashRoundTrip(t *testing.T) {
	ssA := newTestSymmetricState("Noise_N_25519_ChaChaPoly_SHA256")
	ssB := newTestSymmetricState("Noise_N_25519_ChaChaPoly_SHA256")
	ssA.MixKey([]byte("ikm"))
	ssB.MixKey([]byte("ikm"))

	ct, err := ssA.EncryptAndHash([]byte("hello"))
	if err != nil {
		t.Fatalf("EncryptAndHash: %v", err)
	}
	pt, err := ssB.DecryptAndHash(ct)
	if err != nil {
		t.Fatalf("DecryptAndHash: %v", err)
	}
	if string(pt) != "hello" {
		t.Fatalf("got %q want %q", pt, "hello")
	}
	if !bytes.Equal(ssA.h, ssB.h) {
		t.Fatalf("both sides should converge on the same handshake hash")
	}
}

func TestSymmetricStateSplitProducesDistinctCiphers(t *testing.T) {
	ss := newTestSymmetricState("Noise_N_25519_ChaChaPoly_SHA256")
	ss.MixKey([]byte("ikm"))

	c1, c2, err := ss.Split()
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if c1.k == c2.k {
		t.Fatalf("the two transport ciphers must have distinct keys")
	}
	for _, b := range ss.h {
		if b != 0 {
			t.Fatal("h should be zeroed after Split")
		}
	}
}
