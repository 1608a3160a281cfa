package clvm

import (
	"bytes"
	"math/big"
)

// Integer division in CLVM floors toward negative infinity.
func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return q, r
}

// int32Of reads a shift amount or substr index.
func int32Of(name string, n *Node) (int64, error) {
	if n.IsPair() {
		return 0, evalErr(name+" requires int32 args", n)
	}
	v := BigInt(n.atom)
	if !v.IsInt64() || v.Int64() < -1<<31 || v.Int64() >= 1<<31 {
		return 0, evalErr(name+" requires int32 args", n)
	}
	return v.Int64(), nil
}

func (m *machine) newAtom(cost uint64, v []byte) (*Node, error) {
	if err := m.charge(cost + uint64(len(v))*costMallocPerByte); err != nil {
		return nil, err
	}
	return Atom(v), nil
}

func (m *machine) opGrs(args []*Node) (*Node, error) {
	if len(args) != 2 {
		return nil, evalErr(">s takes exactly 2 arguments", List(args...))
	}
	atoms, err := atomsOf(">s", args)
	if err != nil {
		return nil, err
	}
	if err := m.charge(costGrsBase + uint64(len(atoms[0])+len(atoms[1]))*costGrsPerByte); err != nil {
		return nil, err
	}
	return boolNode(bytes.Compare(atoms[0], atoms[1]) > 0), nil
}

func (m *machine) opSubstr(args []*Node) (*Node, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, evalErr("substr takes exactly 2 or 3 arguments", List(args...))
	}
	if args[0].IsPair() {
		return nil, evalErr("substr on list", args[0])
	}
	s := args[0].atom
	start, err := int32Of("substr", args[1])
	if err != nil {
		return nil, err
	}
	end := int64(len(s))
	if len(args) == 3 {
		if end, err = int32Of("substr", args[2]); err != nil {
			return nil, err
		}
	}
	if start < 0 || end > int64(len(s)) || end < start {
		return nil, evalErr("invalid indices for substr", List(args...))
	}
	if err := m.charge(costSubstr); err != nil {
		return nil, err
	}
	return Atom(s[start:end]), nil
}

func (m *machine) opMul(args []*Node) (*Node, error) {
	atoms, err := atomsOf("*", args)
	if err != nil {
		return nil, err
	}
	cost := uint64(costMulBase)
	total := big.NewInt(1)
	var l0 uint64
	for i, a := range atoms {
		l1 := uint64(len(a))
		if i == 0 {
			total = BigInt(a)
			l0 = l1
			continue
		}
		cost += costMulPerOp + (l0+l1)*costMulLinearPerByte + (l0*l1)/costMulSquareDivider
		if cost > m.maxCost {
			return nil, ErrCostExceeded
		}
		total.Mul(total, BigInt(a))
		l0 = uint64(len(IntBytes(total)))
	}
	return m.newAtom(cost, IntBytes(total))
}

func (m *machine) opDiv(args []*Node) (*Node, error) {
	if len(args) != 2 {
		return nil, evalErr("/ takes exactly 2 arguments", List(args...))
	}
	atoms, err := atomsOf("/", args)
	if err != nil {
		return nil, err
	}
	d := BigInt(atoms[1])
	if d.Sign() == 0 {
		return nil, evalErr("div with 0", args[0])
	}
	q, _ := floorDivMod(BigInt(atoms[0]), d)
	return m.newAtom(costDivBase+uint64(len(atoms[0])+len(atoms[1]))*costDivPerByte, IntBytes(q))
}

func (m *machine) opDivmod(args []*Node) (*Node, error) {
	if len(args) != 2 {
		return nil, evalErr("divmod takes exactly 2 arguments", List(args...))
	}
	atoms, err := atomsOf("divmod", args)
	if err != nil {
		return nil, err
	}
	d := BigInt(atoms[1])
	if d.Sign() == 0 {
		return nil, evalErr("divmod with 0", args[0])
	}
	q, r := floorDivMod(BigInt(atoms[0]), d)
	qb, rb := IntBytes(q), IntBytes(r)
	cost := costDivmodBase + uint64(len(atoms[0])+len(atoms[1]))*costDivmodPerByte
	if err := m.charge(cost + uint64(len(qb)+len(rb))*costMallocPerByte); err != nil {
		return nil, err
	}
	return Cons(Atom(qb), Atom(rb)), nil
}

// opShift implements ash, which shifts a signed value, and lsh, which treats
// its operand as unsigned. Positive amounts shift left.
func (m *machine) opShift(op byte, args []*Node) (*Node, error) {
	name := "ash"
	if op == OpLsh {
		name = "lsh"
	}
	if len(args) != 2 {
		return nil, evalErr(name+" takes exactly 2 arguments", List(args...))
	}
	if args[0].IsPair() {
		return nil, evalErr(name+" requires int args", args[0])
	}
	n, err := int32Of(name, args[1])
	if err != nil {
		return nil, err
	}
	if n < -65535 || n > 65535 {
		return nil, evalErr("shift too large", args[1])
	}
	a := args[0].atom
	v := BigInt(a)
	base, perByte := uint64(costAshBase), uint64(costAshPerByte)
	if op == OpLsh {
		v = new(big.Int).SetBytes(a)
		base, perByte = costLshBase, costLshPerByte
	}
	if n > 0 {
		v.Lsh(v, uint(n))
	} else {
		v.Rsh(v, uint(-n))
	}
	res := IntBytes(v)
	return m.newAtom(base+uint64(len(a)+len(res))*perByte, res)
}

func (m *machine) opLogic(op byte, args []*Node) (*Node, error) {
	atoms, err := atomsOf("logic", args)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	if op == OpLogand {
		total.SetInt64(-1)
	}
	cost := uint64(costLogBase)
	for _, a := range atoms {
		cost += costLogPerArg + uint64(len(a))*costLogPerByte
		v := BigInt(a)
		switch op {
		case OpLogand:
			total.And(total, v)
		case OpLogior:
			total.Or(total, v)
		default:
			total.Xor(total, v)
		}
	}
	return m.newAtom(cost, IntBytes(total))
}

func (m *machine) opLognot(args []*Node) (*Node, error) {
	if len(args) != 1 {
		return nil, evalErr("lognot takes exactly 1 argument", List(args...))
	}
	atoms, err := atomsOf("lognot", args)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).Not(BigInt(atoms[0]))
	return m.newAtom(costLognotBase+uint64(len(atoms[0]))*costLognotPerByte, IntBytes(v))
}
