package clvm

import (
	"errors"
	"fmt"
	"math/big"
)

// Operator opcodes understood by Run.
const (
	OpQuote  = 1
	OpApply  = 2
	OpIf     = 3
	OpCons   = 4
	OpFirst  = 5
	OpRest   = 6
	OpListp  = 7
	OpRaise  = 8
	OpEq     = 9
	OpGrs    = 10
	OpSha256 = 11
	OpSubstr = 12
	OpStrlen = 13
	OpConcat = 14
	OpAdd    = 16
	OpSub    = 17
	OpMul    = 18
	OpDiv    = 19
	OpDivmod = 20
	OpGr     = 21
	OpAsh    = 22
	OpLsh    = 23
	OpLogand = 24
	OpLogior = 25
	OpLogxor = 26
	OpLognot = 27

	OpPointAdd     = 29
	OpPubkeyForExp = 30

	OpNot      = 32
	OpAny      = 33
	OpAll      = 34
	OpSoftfork = 36
	OpCoinID   = 48
)

// Flags adjust interpreter behaviour.
type Flags uint32

const (
	// StrictOps rejects operators outside the table above. Without it an
	// unknown operator is charged by its encoded cost class and yields nil.
	StrictOps Flags = 1 << iota
)

// DefaultMaxCost is the cost ceiling used for diagnostic runs.
const DefaultMaxCost uint64 = 11_000_000_000

var ErrCostExceeded = errors.New("clvm: cost exceeded")

// EvalError is a program failure: raise, bad operator or bad operands.
type EvalError struct {
	Reason string
	Node   *Node
}

func (e *EvalError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("clvm: %s: %x", e.Reason, Serialize(e.Node))
	}
	return "clvm: " + e.Reason
}

func evalErr(reason string, n *Node) error {
	return &EvalError{Reason: reason, Node: n}
}

type machine struct {
	cost    uint64
	maxCost uint64
	flags   Flags
}

// Run evaluates program against args. It returns the cost consumed and the
// result; exceeding maxCost fails with ErrCostExceeded.
func Run(program, args *Node, maxCost uint64) (uint64, *Node, error) {
	return RunWithFlags(program, args, maxCost, 0)
}

// RunWithFlags is Run with interpreter flags.
func RunWithFlags(program, args *Node, maxCost uint64, flags Flags) (uint64, *Node, error) {
	m := &machine{maxCost: maxCost, flags: flags}
	res, err := m.eval(program, args, 0)
	if err != nil {
		return m.cost, nil, err
	}
	return m.cost, res, nil
}

func (m *machine) charge(cost uint64) error {
	m.cost += cost
	if m.cost > m.maxCost {
		return ErrCostExceeded
	}
	return nil
}

func (m *machine) eval(prog, env *Node, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, evalErr("recursion too deep", nil)
	}
	if prog.IsAtom() {
		return m.traverse(prog.atom, env)
	}
	op := prog.left
	if op.IsPair() {
		return nil, evalErr("operator must be an atom", op)
	}
	if isOp(op, OpQuote) {
		if err := m.charge(costQuote); err != nil {
			return nil, err
		}
		return prog.right, nil
	}
	var args []*Node
	for cur := prog.right; !cur.IsNil(); cur = cur.right {
		if cur.IsAtom() {
			return nil, evalErr("arguments must be a proper list", prog)
		}
		v, err := m.eval(cur.left, env, depth+1)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if isOp(op, OpApply) {
		if len(args) != 2 {
			return nil, evalErr("a takes exactly 2 arguments", prog)
		}
		if err := m.charge(costApply); err != nil {
			return nil, err
		}
		return m.eval(args[0], args[1], depth+1)
	}
	return m.apply(op, args)
}

// traverse follows a path atom through env: reading bits from the least
// significant end, 0 takes the first element and 1 the rest, stopping at the
// most significant set bit.
func (m *machine) traverse(path []byte, env *Node) (*Node, error) {
	if len(path) == 0 {
		return Nil, nil
	}
	v := new(big.Int).SetBytes(path)
	bits := v.BitLen() - 1
	if err := m.charge(costPathBase + uint64(bits)*costPathPerLeg); err != nil {
		return nil, err
	}
	cur := env
	for i := 0; i < bits; i++ {
		if cur.IsAtom() {
			return nil, evalErr("path into atom", cur)
		}
		if v.Bit(i) == 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return cur, nil
}
