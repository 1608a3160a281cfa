package clvm

import (
	"errors"
	"math/big"
)

var ErrNotUint64 = errors.New("clvm: atom is not an unsigned 64-bit integer")

// IntBytes encodes v as a CLVM integer atom: minimal big-endian two's complement,
// zero being the empty atom.
func IntBytes(v *big.Int) []byte {
	switch v.Sign() {
	case 0:
		return nil
	case 1:
		buf := make([]byte, v.BitLen()/8+1)
		v.FillBytes(buf)
		return trimInt(buf)
	}
	// negative: encode v + 2^(8*size)
	mag := new(big.Int).Neg(v)
	mag.Sub(mag, big.NewInt(1))
	size := mag.BitLen()/8 + 1
	two := new(big.Int).Lsh(big.NewInt(1), uint(size*8))
	two.Add(two, v)
	buf := make([]byte, size)
	two.FillBytes(buf)
	return trimInt(buf)
}

// trimInt drops redundant sign-extension bytes.
func trimInt(buf []byte) []byte {
	for len(buf) > 1 {
		if buf[0] == 0x00 && buf[1]&0x80 == 0 {
			buf = buf[1:]
		} else if buf[0] == 0xff && buf[1]&0x80 != 0 {
			buf = buf[1:]
		} else {
			break
		}
	}
	return buf
}

// BigInt decodes a CLVM integer atom.
func BigInt(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return v
}

func Uint64Bytes(v uint64) []byte {
	return IntBytes(new(big.Int).SetUint64(v))
}

func Int(v int64) *Node {
	return Atom(IntBytes(big.NewInt(v)))
}

func Uint64(v uint64) *Node {
	return Atom(Uint64Bytes(v))
}

// AsUint64 reads an atom as a non-negative integer that fits in 64 bits.
func (n *Node) AsUint64() (uint64, error) {
	if n.IsPair() {
		return 0, ErrNotUint64
	}
	v := BigInt(n.atom)
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, ErrNotUint64
	}
	return v.Uint64(), nil
}
