package clvm

import (
	"crypto/sha256"
	"math/big"

	"github.com/blinkmojo/blink/pkg/bls"
)

func (m *machine) opPointAdd(args []*Node) (*Node, error) {
	atoms, err := atomsOf("point_add", args)
	if err != nil {
		return nil, err
	}
	cost := uint64(costPointAddBase)
	for range atoms {
		cost += costPointAddPerArg
		if cost > m.maxCost {
			return nil, ErrCostExceeded
		}
	}
	sum, err := bls.G1Add(atoms...)
	if err != nil {
		return nil, evalErr("point_add expects blob of 48 bytes", List(args...))
	}
	return m.newAtom(cost, sum[:])
}

func (m *machine) opPubkeyForExp(args []*Node) (*Node, error) {
	if len(args) != 1 {
		return nil, evalErr("pubkey_for_exp takes exactly 1 argument", List(args...))
	}
	atoms, err := atomsOf("pubkey_for_exp", args)
	if err != nil {
		return nil, err
	}
	pk := bls.G1Exp(BigInt(atoms[0]))
	return m.newAtom(costPubkeyBase+uint64(len(atoms[0]))*costPubkeyPerByte, pk[:])
}

// opSoftfork charges the declared cost and yields nil; the guarded program
// is not run.
func (m *machine) opSoftfork(args []*Node) (*Node, error) {
	if len(args) < 1 || args[0].IsPair() {
		return nil, evalErr("softfork takes at least 1 argument", List(args...))
	}
	cost := BigInt(args[0].atom)
	if cost.Sign() <= 0 {
		return nil, evalErr("cost must be > 0", args[0])
	}
	if !cost.IsUint64() {
		return nil, ErrCostExceeded
	}
	if err := m.charge(cost.Uint64()); err != nil {
		return nil, err
	}
	return Nil, nil
}

func (m *machine) opCoinID(args []*Node) (*Node, error) {
	if len(args) != 3 {
		return nil, evalErr("coinid takes exactly 3 arguments", List(args...))
	}
	atoms, err := atomsOf("coinid", args)
	if err != nil {
		return nil, err
	}
	if len(atoms[0]) != 32 || len(atoms[1]) != 32 {
		return nil, evalErr("coinid: invalid coin id or puzzle hash", List(args...))
	}
	amt := atoms[2]
	switch {
	case len(amt) > 0 && amt[0]&0x80 != 0:
		return nil, evalErr("coinid: invalid amount (may not be negative)", args[2])
	case len(amt) > 0 && amt[0] == 0 && (len(amt) == 1 || amt[1]&0x80 == 0):
		return nil, evalErr("coinid: invalid amount (may not have redundant leading zero)", args[2])
	case len(amt) > 9:
		return nil, evalErr("coinid: invalid amount (may not exceed max coin amount)", args[2])
	}
	h := sha256.New()
	h.Write(atoms[0])
	h.Write(atoms[1])
	h.Write(amt)
	if err := m.charge(costCoinID); err != nil {
		return nil, err
	}
	return Atom(h.Sum(nil)), nil
}

// opUnknown handles operators outside the table. The last byte of the
// operator selects a cost class from its top two bits and the preceding
// bytes scale it; the result is always nil. Under StrictOps they fail.
func (m *machine) opUnknown(op *Node, args []*Node) (*Node, error) {
	o := op.atom
	if m.flags&StrictOps != 0 {
		return nil, evalErr("unimplemented operator", op)
	}
	if len(o) == 0 || (len(o) >= 2 && o[0] == 0xff && o[1] == 0xff) {
		return nil, evalErr("reserved operator", op)
	}
	if len(o) > 5 {
		return nil, evalErr("invalid operator", op)
	}
	atoms, err := atomsOf("unknown op", args)
	if err != nil {
		return nil, err
	}
	var cost uint64
	switch o[len(o)-1] >> 6 {
	case 0:
		cost = 1
	case 1:
		cost = costArithBase
		for _, a := range atoms {
			cost += costArithPerArg + uint64(len(a))*costArithPerByte
		}
	case 2:
		cost = costMulBase
		var l0 uint64
		for i, a := range atoms {
			l1 := uint64(len(a))
			if i == 0 {
				l0 = l1
				continue
			}
			cost += costMulPerOp + (l0+l1)*costMulLinearPerByte + (l0*l1)/costMulSquareDivider
			l0 += l1
		}
	case 3:
		cost = costConcatBase
		var n uint64
		for _, a := range atoms {
			cost += costConcatPerArg
			n += uint64(len(a))
		}
		cost += n * costConcatPerByte
	}
	multiplier := new(big.Int).SetBytes(o[:len(o)-1]).Uint64() + 1
	cost *= multiplier
	if cost >= 1<<32 {
		return nil, evalErr("invalid operator", op)
	}
	if err := m.charge(cost); err != nil {
		return nil, err
	}
	return Nil, nil
}
