package noise

import (
	"io"
	"math/big"
)

// curve448Group is the Curve448 (X448, RFC 7748) DHGroup. No library in the
// retrieved pack provides X448 — golang.org/x/crypto ships only Curve25519 —
// so this is implemented directly over math/big rather than bit-twiddled
// fixed-width arithmetic; see DESIGN.md for why this is the one
// standard-library-only primitive in the registry.
type curve448Group struct{}

func (curve448Group) DHLen() int { return 56 }

var x448Prime = func() *big.Int {
	// p = 2^448 - 2^224 - 1
	p := new(big.Int).Lsh(big.NewInt(1), 448)
	p.Sub(p, new(big.Int).Lsh(big.NewInt(1), 224))
	p.Sub(p, big.NewInt(1))
	return p
}()

const x448A24 = 39081 // (156326 - 2) / 4

func (curve448Group) ClampPrivate(priv []byte) {
	if len(priv) != 56 {
		return
	}
	priv[0] &= 252
	priv[55] |= 128
}

func (g curve448Group) GenerateKeypair(rng interface{ Read([]byte) (int, error) }) ([]byte, []byte, error) {
	r := randReader(rng).(io.Reader)
	priv := make([]byte, 56)
	if _, err := io.ReadFull(r, priv); err != nil {
		return nil, nil, newErr(ErrNoMemory, "curve448.GenerateKeypair", err)
	}
	g.ClampPrivate(priv)
	pub, err := g.DerivePublic(priv)
	if err != nil {
		return nil, nil, err
	}
	return priv, pub, nil
}

func (curve448Group) DerivePublic(priv []byte) ([]byte, error) {
	if len(priv) != 56 {
		return nil, newErr(ErrInvalidPrivateKey, "curve448.DerivePublic", nil)
	}
	return x448ScalarMult(priv, x448BasePoint()), nil
}

func (curve448Group) DH(priv, pub []byte) ([]byte, error) {
	if len(priv) != 56 {
		return nil, newErr(ErrInvalidPrivateKey, "curve448.DH", nil)
	}
	if len(pub) != 56 {
		return nil, newErr(ErrInvalidPublicKey, "curve448.DH", nil)
	}
	return x448ScalarMult(priv, decodeLE(pub)), nil
}

func x448BasePoint() *big.Int {
	u := make([]byte, 56)
	u[0] = 5
	return decodeLE(u)
}

func decodeLE(b []byte) *big.Int {
	buf := make([]byte, len(b))
	for i, v := range b {
		buf[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(buf)
}

func encodeLE(n *big.Int, size int) []byte {
	be := n.Bytes()
	out := make([]byte, size)
	for i, v := range be {
		j := len(be) - 1 - i
		if j >= size {
			continue
		}
		out[j] = v
	}
	return out
}

func x448ScalarMult(scalar []byte, u *big.Int) []byte {
	p := x448Prime
	x1 := new(big.Int).Mod(u, p)
	x2 := big.NewInt(1)
	z2 := big.NewInt(0)
	x3 := new(big.Int).Set(x1)
	z3 := big.NewInt(1)
	swap := 0

	a24 := big.NewInt(x448A24)

	k := append([]byte(nil), scalar...)
	// Montgomery ladder, MSB to LSB over the 448-bit clamped scalar.
	for bitPos := 447; bitPos >= 0; bitPos-- {
		byteIdx := bitPos / 8
		bit := int((k[byteIdx] >> uint(bitPos%8)) & 1)
		swap ^= bit
		condSwapBig(swap, x2, x3)
		condSwapBig(swap, z2, z3)
		swap = bit

		a := modAdd(x2, z2, p)
		aa := modMul(a, a, p)
		b := modSub(x2, z2, p)
		bb := modMul(b, b, p)
		e := modSub(aa, bb, p)
		c := modAdd(x3, z3, p)
		d := modSub(x3, z3, p)
		da := modMul(d, a, p)
		cb := modMul(c, b, p)

		x3n := modMul(modAdd(da, cb, p), modAdd(da, cb, p), p)
		z3n := modMul(x1, modMul(modSub(da, cb, p), modSub(da, cb, p), p), p)
		x2n := modMul(aa, bb, p)
		z2n := modMul(e, modAdd(aa, modMul(a24, e, p), p), p)

		x2, z2, x3, z3 = x2n, z2n, x3n, z3n
	}
	condSwapBig(swap, x2, x3)
	condSwapBig(swap, z2, z3)

	zInv := new(big.Int).ModInverse(z2, p)
	if zInv == nil {
		zInv = big.NewInt(0)
	}
	result := modMul(x2, zInv, p)
	return encodeLE(result, 56)
}

func modAdd(a, b, p *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Add(a, b), p)
}
func modSub(a, b, p *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Sub(a, b), p)
}
func modMul(a, b, p *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Mul(a, b), p)
}

// condSwapBig swaps a and b in place when swap == 1. This is not
// constant-time (math/big is not a constant-time arithmetic library);
// side-channel hardening beyond constant-time primitive *choice* is out of
// scope, and Curve448 has no constant-time library in the retrieved pack
// to choose instead.
func condSwapBig(swap int, a, b *big.Int) {
	if swap == 1 {
		*a, *b = *b, *a
	}
}
