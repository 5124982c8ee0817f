package noise

import (
	"io"

	"golang.org/x/crypto/curve25519"
)

// curve25519Group is the Curve25519 DHGroup, grounded on the use
// of golang.org/x/crypto/curve25519 in crypto/keyexchange.go and
// crypto/noise.go.
type curve25519Group struct{}

func (curve25519Group) DHLen() int { return 32 }

func (g curve25519Group) GenerateKeypair(rng interface{ Read([]byte) (int, error) }) ([]byte, []byte, error) {
	r := randReader(rng).(io.Reader)
	priv := make([]byte, 32)
	if _, err := io.ReadFull(r, priv); err != nil {
		return nil, nil, newErr(ErrNoMemory, "curve25519.GenerateKeypair", err)
	}
	g.ClampPrivate(priv)
	pub, err := g.DerivePublic(priv)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

func (curve25519Group) DerivePublic(priv []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, newErr(ErrInvalidPrivateKey, "curve25519.DerivePublic", nil)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, newErr(ErrInvalidPrivateKey, "curve25519.DerivePublic", err)
	}
	return pub, nil
}

func (curve25519Group) DH(priv, pub []byte) ([]byte, error) {
	if len(priv) != 32 {
		return nil, newErr(ErrInvalidPrivateKey, "curve25519.DH", nil)
	}
	if len(pub) != 32 {
		return nil, newErr(ErrInvalidPublicKey, "curve25519.DH", nil)
	}
	// curve25519.X25519 wraps crypto/ecdh, which fails a low-order public
	// key outright rather than returning the all-zero shared secret; Noise
	// requires the latter, so the DH itself is done with the deprecated
	// ScalarMult entry point, which never rejects a point.
	var dst, in, base [32]byte
	copy(in[:], priv)
	copy(base[:], pub)
	curve25519.ScalarMult(&dst, &in, &base)
	return dst[:], nil
}

// ClampPrivate applies the Curve25519 private-key clamp in place, per the
// DH group rules. curve25519.X25519 re-clamps internally, so this
// is idempotent; it exists so install-time clamping is explicit
// rather than hidden inside the library call.
func (curve25519Group) ClampPrivate(priv []byte) {
	if len(priv) != 32 {
		return
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64
}
