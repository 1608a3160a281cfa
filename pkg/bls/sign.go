package bls

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// AugSchemeDST is the hash-to-curve domain separation tag of the augmented
// scheme, which signs pk || message.
var AugSchemeDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_")

var ErrNoSignatures = errors.New("bls: nothing to aggregate")

// Signature is a compressed G2 point.
type Signature [SignatureLen]byte

func (s Signature) String() string { return fmt.Sprintf("%x", s[:]) }

// SignatureFromBytes parses a compressed G2 point with a subgroup check.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureLen {
		return sig, ErrInvalidSignature
	}
	copy(sig[:], b)
	if _, err := sig.point(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

func (s Signature) point() (*bls12381.G2Affine, error) {
	var p bls12381.G2Affine
	if _, err := p.SetBytes(s[:]); err != nil {
		return nil, ErrInvalidSignature
	}
	if !p.IsInSubGroup() {
		return nil, ErrInvalidSignature
	}
	return &p, nil
}

func augHash(pk PublicKey, msg []byte) (bls12381.G2Affine, error) {
	buf := make([]byte, 0, PublicKeyLen+len(msg))
	buf = append(buf, pk[:]...)
	buf = append(buf, msg...)
	return bls12381.HashToG2(buf, AugSchemeDST)
}

// Sign produces sk·H(pk || msg).
func Sign(sk *SecretKey, msg []byte) (Signature, error) {
	if sk == nil || sk.zeroed {
		return Signature{}, ErrKeyZeroed
	}
	h, err := augHash(sk.PublicKey(), msg)
	if err != nil {
		return Signature{}, fmt.Errorf("bls: Sign: %w", err)
	}
	k := sk.scalar()
	defer clearBig(k)
	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&h, k)
	return Signature(sig.Bytes()), nil
}

// Verify checks a single augmented-scheme signature.
func Verify(pk PublicKey, msg []byte, sig Signature) bool {
	return AggregateVerify([]PublicKey{pk}, [][]byte{msg}, sig)
}

// Aggregate adds signatures in G2. The result does not depend on order.
func Aggregate(sigs ...Signature) (Signature, error) {
	if len(sigs) == 0 {
		return Signature{}, ErrNoSignatures
	}
	var acc bls12381.G2Jac
	for i, s := range sigs {
		p, err := s.point()
		if err != nil {
			return Signature{}, err
		}
		if i == 0 {
			acc.FromAffine(p)
		} else {
			acc.AddMixed(p)
		}
	}
	var sum bls12381.G2Affine
	sum.FromJacobian(&acc)
	return Signature(sum.Bytes()), nil
}

// AggregateVerify checks that sig aggregates one signature per (pks[i], msgs[i])
// pair, by testing e(-G1, sig) · Π e(pk_i, H(pk_i || msg_i)) == 1.
func AggregateVerify(pks []PublicKey, msgs [][]byte, sig Signature) bool {
	if len(pks) == 0 || len(pks) != len(msgs) {
		return false
	}
	s, err := sig.point()
	if err != nil {
		return false
	}
	_, _, g1, _ := bls12381.Generators()
	var negG1 bls12381.G1Affine
	negG1.Neg(&g1)

	ps := make([]bls12381.G1Affine, 0, len(pks)+1)
	qs := make([]bls12381.G2Affine, 0, len(pks)+1)
	ps = append(ps, negG1)
	qs = append(qs, *s)
	for i, pk := range pks {
		p, err := pk.point()
		if err != nil {
			return false
		}
		h, err := augHash(pk, msgs[i])
		if err != nil {
			return false
		}
		ps = append(ps, *p)
		qs = append(qs, h)
	}
	ok, err := bls12381.PairingCheck(ps, qs)
	return err == nil && ok
}
