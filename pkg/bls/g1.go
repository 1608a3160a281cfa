package bls

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// G1Infinity is the compressed encoding of the G1 identity.
var G1Infinity = [PublicKeyLen]byte{0xc0}

// G1Add sums compressed G1 points. Unlike public keys, the identity is a
// valid operand.
func G1Add(points ...[]byte) ([PublicKeyLen]byte, error) {
	var acc bls12381.G1Jac
	acc.FromAffine(&bls12381.G1Affine{})
	for _, b := range points {
		if len(b) != PublicKeyLen {
			return [PublicKeyLen]byte{}, ErrInvalidPublicKey
		}
		var p bls12381.G1Affine
		if _, err := p.SetBytes(b); err != nil {
			return [PublicKeyLen]byte{}, ErrInvalidPublicKey
		}
		if !p.IsInfinity() && !p.IsInSubGroup() {
			return [PublicKeyLen]byte{}, ErrInvalidPublicKey
		}
		acc.AddMixed(&p)
	}
	var sum bls12381.G1Affine
	sum.FromJacobian(&acc)
	return sum.Bytes(), nil
}

// G1Exp returns e·G1, e taken modulo the group order.
func G1Exp(e *big.Int) [PublicKeyLen]byte {
	k := new(big.Int).Mod(e, fr.Modulus())
	if k.Sign() == 0 {
		return G1Infinity
	}
	_, _, g1, _ := bls12381.Generators()
	var p bls12381.G1Affine
	p.ScalarMultiplication(&g1, k)
	return p.Bytes()
}
