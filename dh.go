package noise

import "crypto/rand"

// DHGroup is the capability set a Diffie-Hellman group exposes to the rest
// of the core. Implementations are selected once, at handshake
// construction, and the inner loop never branches on which group is in use.
type DHGroup interface {
	// GenerateKeypair returns a fresh private/public keypair read from rng.
	// If rng is nil, crypto/rand is used.
	GenerateKeypair(rng interface{ Read([]byte) (int, error) }) (priv, pub []byte, err error)
	// DerivePublic computes the public key for a private key.
	DerivePublic(priv []byte) (pub []byte, err error)
	// DH computes the shared secret. An all-zero result is returned as-is;
	// Noise does not reject small-order/invalid outputs at this layer.
	DH(priv, pub []byte) (shared []byte, err error)
	// DHLen is the fixed length, in bytes, of private keys, public keys,
	// and DH outputs for this group.
	DHLen() int
	// ClampPrivate applies the group's private-key clamp in place.
	ClampPrivate(priv []byte)
}

func dhGroupByID(id DHID) (DHGroup, error) {
	switch id {
	case DH25519:
		return curve25519Group{}, nil
	case DH448:
		return curve448Group{}, nil
	default:
		return nil, newErr(ErrUnknownID, "dhGroupByID", nil)
	}
}

func randReader(rng interface{ Read([]byte) (int, error) }) interface{ Read([]byte) (int, error) } {
	if rng != nil {
		return rng
	}
	return rand.Reader
}
