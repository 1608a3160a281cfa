package bls

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/hkdf"
)

const (
	SecretKeyLen = 32 // bytes: big-endian scalar mod r
	PublicKeyLen = 48 // bytes: compressed G1 point
	SignatureLen = 96 // bytes: compressed G2 point
	minSeedLen   = 32
	okmLen       = 48 // ceil((3 * ceil(log2(r))) / 16)
)

var (
	ErrSeedTooShort     = errors.New("bls: seed must be at least 32 bytes")
	ErrInvalidSecretKey = errors.New("bls: invalid secret key")
	ErrInvalidPublicKey = errors.New("bls: invalid public key")
	ErrInvalidSignature = errors.New("bls: invalid signature")
	ErrKeyZeroed        = errors.New("bls: secret key has been zeroed")
)

var keygenSalt = []byte("BLS-SIG-KEYGEN-SALT-")

// SecretKey is a BLS12-381 scalar. Call Zero when done with it.
type SecretKey struct {
	s      fr.Element
	zeroed bool
}

// PublicKey is a compressed G1 point.
type PublicKey [PublicKeyLen]byte

func (pk PublicKey) String() string { return fmt.Sprintf("%x", pk[:]) }

// KeyGen derives a secret key from seed material the way Chia's blspy does:
// HKDF-SHA256 with the unhashed "BLS-SIG-KEYGEN-SALT-" salt and a single
// extract and expand (draft-irtf-cfrg-bls-signature-03). Later drafts hash
// the salt and retry on a zero key; their keys differ from Chia's.
func KeyGen(seed []byte) (*SecretKey, error) {
	if len(seed) < minSeedLen {
		return nil, ErrSeedTooShort
	}
	ikm := make([]byte, len(seed)+1)
	copy(ikm, seed)
	defer clear(ikm) // clear seed copy for security.

	info := []byte{0, okmLen} // key_info is empty; I2OSP(L, 2)
	okm := make([]byte, okmLen)
	defer clear(okm)
	prk := hkdf.Extract(sha256.New, ikm, keygenSalt)
	defer clear(prk)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, info), okm); err != nil {
		return nil, fmt.Errorf("bls: KeyGen: %w", err)
	}
	k := new(big.Int).SetBytes(okm)
	defer clearBig(k)
	k.Mod(k, fr.Modulus())
	if k.Sign() == 0 {
		return nil, ErrInvalidSecretKey
	}
	sk := &SecretKey{}
	sk.s.SetBigInt(k)
	return sk, nil
}

// SecretKeyFromBytes parses a 32-byte big-endian scalar in [1, r).
func SecretKeyFromBytes(b []byte) (*SecretKey, error) {
	if len(b) != SecretKeyLen {
		return nil, ErrInvalidSecretKey
	}
	k := new(big.Int).SetBytes(b)
	defer clearBig(k)
	if k.Sign() == 0 || k.Cmp(fr.Modulus()) >= 0 {
		return nil, ErrInvalidSecretKey
	}
	sk := &SecretKey{}
	sk.s.SetBigInt(k)
	return sk, nil
}

func (sk *SecretKey) Bytes() [SecretKeyLen]byte {
	return sk.s.Bytes()
}

// PublicKey returns sk·G1.
func (sk *SecretKey) PublicKey() PublicKey {
	_, _, g1, _ := bls12381.Generators()
	k := sk.scalar()
	defer clearBig(k)
	var p bls12381.G1Affine
	p.ScalarMultiplication(&g1, k)
	return PublicKey(p.Bytes())
}

// Zero wipes the scalar. The key is unusable afterwards.
func (sk *SecretKey) Zero() {
	sk.s.SetZero()
	sk.zeroed = true
}

func (sk *SecretKey) IsZeroed() bool {
	return sk.zeroed
}

func (sk *SecretKey) scalar() *big.Int {
	return sk.s.BigInt(new(big.Int))
}

func clearBig(k *big.Int) {
	words := k.Bits()
	for i := range words {
		words[i] = 0
	}
	k.SetInt64(0)
}

// PublicKeyFromBytes parses a compressed G1 point, rejecting points off the
// curve, outside the prime-order subgroup, and the identity.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeyLen {
		return pk, ErrInvalidPublicKey
	}
	copy(pk[:], b)
	if _, err := pk.point(); err != nil {
		return PublicKey{}, err
	}
	return pk, nil
}

func (pk PublicKey) point() (*bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(pk[:]); err != nil {
		return nil, ErrInvalidPublicKey
	}
	if p.IsInfinity() || !p.IsInSubGroup() {
		return nil, ErrInvalidPublicKey
	}
	return &p, nil
}

// AggregatePublicKeys sums public keys in G1.
func AggregatePublicKeys(pks ...PublicKey) (PublicKey, error) {
	if len(pks) == 0 {
		return PublicKey{}, ErrInvalidPublicKey
	}
	var acc bls12381.G1Jac
	for i, pk := range pks {
		p, err := pk.point()
		if err != nil {
			return PublicKey{}, err
		}
		if i == 0 {
			acc.FromAffine(p)
		} else {
			acc.AddMixed(p)
		}
	}
	var sum bls12381.G1Affine
	sum.FromJacobian(&acc)
	return PublicKey(sum.Bytes()), nil
}
