package clvm

import (
	"crypto/sha256"
	"math/big"
)

const (
	costQuote         = 20
	costApply         = 90
	costIf            = 33
	costCons          = 50
	costFirst         = 30
	costRest          = 30
	costListp         = 19
	costEqBase        = 117
	costEqPerByte     = 1
	costSha256Base    = 87
	costSha256PerArg  = 134
	costSha256PerByte = 2
	costStrlenBase    = 173
	costStrlenPerByte = 1
	costConcatBase    = 142
	costConcatPerArg  = 135
	costConcatPerByte = 3
	costArithBase     = 99
	costArithPerArg   = 320
	costArithPerByte  = 3
	costGrBase        = 498
	costGrPerByte     = 2
	costBoolBase      = 200
	costBoolPerArg    = 300
	costMallocPerByte = 10
	costPathBase      = 40
	costPathPerLeg    = 4

	costGrsBase          = 117
	costGrsPerByte       = 1
	costSubstr           = 1
	costMulBase          = 92
	costMulPerOp         = 885
	costMulLinearPerByte = 6
	costMulSquareDivider = 128
	costDivBase          = 988
	costDivPerByte       = 4
	costDivmodBase       = 1116
	costDivmodPerByte    = 6
	costAshBase          = 596
	costAshPerByte       = 3
	costLshBase          = 277
	costLshPerByte       = 3
	costLogBase          = 100
	costLogPerArg        = 264
	costLogPerByte       = 3
	costLognotBase       = 331
	costLognotPerByte    = 3
	costPointAddBase     = 101094
	costPointAddPerArg   = 1343980
	costPubkeyBase       = 1325730
	costPubkeyPerByte    = 38
	costCoinID           = 800
)

var one = Atom([]byte{1})

func (m *machine) apply(op *Node, args []*Node) (*Node, error) {
	if len(op.atom) != 1 {
		return m.opUnknown(op, args)
	}
	switch op.atom[0] {
	case OpIf:
		if len(args) != 3 {
			return nil, evalErr("i takes exactly 3 arguments", List(args...))
		}
		if err := m.charge(costIf); err != nil {
			return nil, err
		}
		if args[0].IsNil() {
			return args[2], nil
		}
		return args[1], nil
	case OpCons:
		if len(args) != 2 {
			return nil, evalErr("c takes exactly 2 arguments", List(args...))
		}
		if err := m.charge(costCons); err != nil {
			return nil, err
		}
		return Cons(args[0], args[1]), nil
	case OpFirst, OpRest:
		if len(args) != 1 || args[0].IsAtom() {
			return nil, evalErr("f/r take exactly one pair", List(args...))
		}
		if op.atom[0] == OpFirst {
			return args[0].left, m.charge(costFirst)
		}
		return args[0].right, m.charge(costRest)
	case OpListp:
		if len(args) != 1 {
			return nil, evalErr("l takes exactly 1 argument", List(args...))
		}
		if err := m.charge(costListp); err != nil {
			return nil, err
		}
		return boolNode(args[0].IsPair()), nil
	case OpRaise:
		return nil, evalErr("raise", List(args...))
	case OpEq:
		return m.opEq(args)
	case OpSha256:
		return m.opSha256(args)
	case OpStrlen:
		return m.opStrlen(args)
	case OpConcat:
		return m.opConcat(args)
	case OpAdd, OpSub:
		return m.opArith(op.atom[0], args)
	case OpGr:
		return m.opGr(args)
	case OpNot, OpAny, OpAll:
		return m.opBool(op.atom[0], args)
	case OpGrs:
		return m.opGrs(args)
	case OpSubstr:
		return m.opSubstr(args)
	case OpMul:
		return m.opMul(args)
	case OpDiv:
		return m.opDiv(args)
	case OpDivmod:
		return m.opDivmod(args)
	case OpAsh, OpLsh:
		return m.opShift(op.atom[0], args)
	case OpLogand, OpLogior, OpLogxor:
		return m.opLogic(op.atom[0], args)
	case OpLognot:
		return m.opLognot(args)
	case OpPointAdd:
		return m.opPointAdd(args)
	case OpPubkeyForExp:
		return m.opPubkeyForExp(args)
	case OpSoftfork:
		return m.opSoftfork(args)
	case OpCoinID:
		return m.opCoinID(args)
	}
	return m.opUnknown(op, args)
}

func boolNode(b bool) *Node {
	if b {
		return one
	}
	return Nil
}

func atomsOf(name string, args []*Node) ([][]byte, error) {
	out := make([][]byte, len(args))
	for i, a := range args {
		if a.IsPair() {
			return nil, evalErr(name+" requires atom arguments", a)
		}
		out[i] = a.atom
	}
	return out, nil
}

func (m *machine) opEq(args []*Node) (*Node, error) {
	if len(args) != 2 {
		return nil, evalErr("= takes exactly 2 arguments", List(args...))
	}
	atoms, err := atomsOf("=", args)
	if err != nil {
		return nil, err
	}
	if err := m.charge(costEqBase + uint64(len(atoms[0])+len(atoms[1]))*costEqPerByte); err != nil {
		return nil, err
	}
	return boolNode(string(atoms[0]) == string(atoms[1])), nil
}

func (m *machine) opSha256(args []*Node) (*Node, error) {
	atoms, err := atomsOf("sha256", args)
	if err != nil {
		return nil, err
	}
	cost := uint64(costSha256Base)
	h := sha256.New()
	for _, a := range atoms {
		cost += costSha256PerArg + uint64(len(a))*costSha256PerByte
		h.Write(a)
	}
	if err := m.charge(cost + 32*costMallocPerByte); err != nil {
		return nil, err
	}
	return Atom(h.Sum(nil)), nil
}

func (m *machine) opStrlen(args []*Node) (*Node, error) {
	if len(args) != 1 {
		return nil, evalErr("strlen takes exactly 1 argument", List(args...))
	}
	atoms, err := atomsOf("strlen", args)
	if err != nil {
		return nil, err
	}
	res := Int(int64(len(atoms[0])))
	if err := m.charge(costStrlenBase + uint64(len(atoms[0]))*costStrlenPerByte + uint64(len(res.atom))*costMallocPerByte); err != nil {
		return nil, err
	}
	return res, nil
}

func (m *machine) opConcat(args []*Node) (*Node, error) {
	atoms, err := atomsOf("concat", args)
	if err != nil {
		return nil, err
	}
	cost := uint64(costConcatBase)
	var buf []byte
	for _, a := range atoms {
		cost += costConcatPerArg
		buf = append(buf, a...)
	}
	cost += uint64(len(buf)) * (costConcatPerByte + costMallocPerByte)
	if err := m.charge(cost); err != nil {
		return nil, err
	}
	return Atom(buf), nil
}

func (m *machine) opArith(op byte, args []*Node) (*Node, error) {
	atoms, err := atomsOf("arithmetic", args)
	if err != nil {
		return nil, err
	}
	cost := uint64(costArithBase)
	total := new(big.Int)
	for i, a := range atoms {
		cost += costArithPerArg + uint64(len(a))*costArithPerByte
		v := BigInt(a)
		if op == OpSub && i > 0 {
			total.Sub(total, v)
		} else {
			total.Add(total, v)
		}
	}
	res := IntBytes(total)
	if err := m.charge(cost + uint64(len(res))*costMallocPerByte); err != nil {
		return nil, err
	}
	return Atom(res), nil
}

func (m *machine) opGr(args []*Node) (*Node, error) {
	if len(args) != 2 {
		return nil, evalErr("> takes exactly 2 arguments", List(args...))
	}
	atoms, err := atomsOf(">", args)
	if err != nil {
		return nil, err
	}
	if err := m.charge(costGrBase + uint64(len(atoms[0])+len(atoms[1]))*costGrPerByte); err != nil {
		return nil, err
	}
	return boolNode(BigInt(atoms[0]).Cmp(BigInt(atoms[1])) > 0), nil
}

func (m *machine) opBool(op byte, args []*Node) (*Node, error) {
	if op == OpNot && len(args) != 1 {
		return nil, evalErr("not takes exactly 1 argument", List(args...))
	}
	if err := m.charge(costBoolBase + uint64(len(args))*costBoolPerArg); err != nil {
		return nil, err
	}
	switch op {
	case OpNot:
		return boolNode(args[0].IsNil()), nil
	case OpAny:
		for _, a := range args {
			if !a.IsNil() {
				return one, nil
			}
		}
		return Nil, nil
	default:
		for _, a := range args {
			if a.IsNil() {
				return Nil, nil
			}
		}
		return one, nil
	}
}
