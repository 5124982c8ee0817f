package noise

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
)

// HashFunc is the capability set a hash function exposes: the
// plain hash, plus HMAC and the Noise-HKDF built on top of it.
type HashFunc interface {
	HashLen() int
	BlockLen() int
	New() hash.Hash
	Hash(data []byte) []byte
}

func hashByID(id HashID) (HashFunc, error) {
	switch id {
	case HashSHA256:
		return sha256Hash{}, nil
	case HashSHA512:
		return sha512Hash{}, nil
	case HashBLAKE2s:
		return blake2sHash{}, nil
	case HashBLAKE2b:
		return blake2bHash{}, nil
	default:
		return nil, newErr(ErrUnknownID, "hashByID", nil)
	}
}

type sha256Hash struct{}

func (sha256Hash) HashLen() int     { return 32 }
func (sha256Hash) BlockLen() int    { return 64 }
func (sha256Hash) New() hash.Hash   { return sha256.New() }
func (h sha256Hash) Hash(d []byte) []byte {
	sum := sha256.Sum256(d)
	return sum[:]
}

type sha512Hash struct{}

func (sha512Hash) HashLen() int   { return 64 }
func (sha512Hash) BlockLen() int  { return 128 }
func (sha512Hash) New() hash.Hash { return sha512.New() }
func (h sha512Hash) Hash(d []byte) []byte {
	sum := sha512.Sum512(d)
	return sum[:]
}

// blake2sHash is grounded on golang.org/x/crypto/blake2s, part of the
// golang.org/x/crypto module the daemon already depends on, not previously
// imported by the daemon.
type blake2sHash struct{}

func (blake2sHash) HashLen() int  { return 32 }
func (blake2sHash) BlockLen() int { return 64 }
func (blake2sHash) New() hash.Hash {
	h, _ := blake2s.New256(nil)
	return h
}
func (h blake2sHash) Hash(d []byte) []byte {
	sum := blake2s.Sum256(d)
	return sum[:]
}

// blake2bHash is grounded on golang.org/x/crypto/blake2b, likewise already
// reachable through the golang.org/x/crypto dependency.
type blake2bHash struct{}

func (blake2bHash) HashLen() int  { return 64 }
func (blake2bHash) BlockLen() int { return 128 }
func (blake2bHash) New() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}
func (h blake2bHash) Hash(d []byte) []byte {
	sum := blake2b.Sum512(d)
	return sum[:]
}

// hmacHash computes HMAC-Hash(key, data).
func hmacHash(h HashFunc, key, data []byte) []byte {
	mac := hmac.New(h.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// hkdf implements Noise-HKDF: domain-separated chained HMACs, producing 2
// or 3 outputs from a chaining key and input keying material.
// This is written directly over crypto/hmac rather than golang.org/x/crypto/hkdf
// because Noise's HKDF interleaves a byte-0x01/0x02/0x03 tag into the chain
// in a way the generic RFC 5869 Expand step does not expose; see DESIGN.md.
func hkdf(h HashFunc, chainingKey, ikm []byte, numOutputs int) [][]byte {
	tempKey := hmacHash(h, chainingKey, ikm)
	output1 := hmacHash(h, tempKey, []byte{0x01})
	if numOutputs == 1 {
		return [][]byte{output1}
	}
	output2 := hmacHash(h, tempKey, append(append([]byte(nil), output1...), 0x02))
	if numOutputs == 2 {
		return [][]byte{output1, output2}
	}
	output3 := hmacHash(h, tempKey, append(append([]byte(nil), output2...), 0x03))
	return [][]byte{output1, output2, output3}
}
