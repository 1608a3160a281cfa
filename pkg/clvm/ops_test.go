package clvm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blinkmojo/blink/pkg/bls"
)

func quoted(n *Node) *Node { return Cons(Atom([]byte{OpQuote}), n) }

func call(op []byte, args ...*Node) *Node {
	qs := make([]*Node, len(args))
	for i, a := range args {
		qs[i] = quoted(a)
	}
	return Cons(Atom(op), List(qs...))
}

func runOp(t *testing.T, op byte, args ...*Node) *Node {
	t.Helper()
	_, res, err := Run(call([]byte{op}, args...), Nil, DefaultMaxCost)
	if err != nil {
		t.Fatalf("op %d: %v", op, err)
	}
	return res
}

func failOp(t *testing.T, op byte, args ...*Node) {
	t.Helper()
	_, _, err := Run(call([]byte{op}, args...), Nil, DefaultMaxCost)
	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("op %d: expected EvalError, got %v", op, err)
	}
}

func intOf(n *Node) int64 { return BigInt(n.Bytes()).Int64() }

func str(s string) *Node { return Atom([]byte(s)) }

func TestMultiply(t *testing.T) {
	cost, res, err := Run(call([]byte{OpMul}, Int(2), Int(3)), Nil, DefaultMaxCost)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if intOf(res) != 6 {
		t.Fatalf("2*3 = %d", intOf(res))
	}
	// two quotes, base, one extra operand and a one byte result
	if cost != 2*costQuote+costMulBase+costMulPerOp+2*costMulLinearPerByte+costMallocPerByte {
		t.Fatalf("unexpected cost %d", cost)
	}
	if got := intOf(runOp(t, OpMul, Int(-2), Int(3), Int(7))); got != -42 {
		t.Fatalf("-2*3*7 = %d", got)
	}
	if got := intOf(runOp(t, OpMul)); got != 1 {
		t.Fatalf("empty product = %d", got)
	}
}

func TestDivide(t *testing.T) {
	cases := []struct{ a, b, q, r int64 }{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
		{6, 3, 2, 0},
	}
	for _, c := range cases {
		if got := intOf(runOp(t, OpDiv, Int(c.a), Int(c.b))); got != c.q {
			t.Errorf("%d / %d = %d, want %d", c.a, c.b, got, c.q)
		}
		res := runOp(t, OpDivmod, Int(c.a), Int(c.b))
		if res.IsAtom() || intOf(res.First()) != c.q || intOf(res.Rest()) != c.r {
			t.Errorf("divmod %d %d = %x", c.a, c.b, Serialize(res))
		}
	}
	failOp(t, OpDiv, Int(1), Nil)
	failOp(t, OpDivmod, Int(1), Nil)
}

func TestSubstr(t *testing.T) {
	if got := runOp(t, OpSubstr, str("abc"), Int(1)); string(got.Bytes()) != "bc" {
		t.Fatalf("substr abc 1 = %q", got.Bytes())
	}
	if got := runOp(t, OpSubstr, str("abc"), Int(1), Int(2)); string(got.Bytes()) != "b" {
		t.Fatalf("substr abc 1 2 = %q", got.Bytes())
	}
	if got := runOp(t, OpSubstr, str("abc"), Int(3)); !got.IsNil() {
		t.Fatalf("substr abc 3 = %q", got.Bytes())
	}
	failOp(t, OpSubstr, str("abc"), Int(2), Int(1))
	failOp(t, OpSubstr, str("abc"), Int(4))
	failOp(t, OpSubstr, str("abc"), Int(-1))
}

func TestGreaterBytes(t *testing.T) {
	if runOp(t, OpGrs, str("b"), str("a")).IsNil() {
		t.Fatal(`"b" >s "a" should be true`)
	}
	if !runOp(t, OpGrs, str("a"), str("ab")).IsNil() {
		t.Fatal(`"a" >s "ab" should be false`)
	}
	// bytewise, unlike >
	if runOp(t, OpGrs, Int(-1), Int(1)).IsNil() {
		t.Fatal("0xff >s 0x01 should be true")
	}
}

func TestShifts(t *testing.T) {
	cases := []struct {
		op        byte
		v, n, out int64
	}{
		{OpAsh, 1, 4, 16},
		{OpAsh, -16, -2, -4},
		{OpAsh, -1, -1, -1},
		{OpLsh, 1, 8, 256},
		{OpLsh, -1, -4, 15},
		{OpLsh, -1, 1, 510},
	}
	for _, c := range cases {
		if got := intOf(runOp(t, c.op, Int(c.v), Int(c.n))); got != c.out {
			t.Errorf("op %d %d by %d = %d, want %d", c.op, c.v, c.n, got, c.out)
		}
	}
	failOp(t, OpAsh, Int(1), Int(65536))
}

func TestLogic(t *testing.T) {
	if got := intOf(runOp(t, OpLogand, Int(12), Int(10))); got != 8 {
		t.Errorf("logand = %d", got)
	}
	if got := intOf(runOp(t, OpLogior, Int(12), Int(10))); got != 14 {
		t.Errorf("logior = %d", got)
	}
	if got := intOf(runOp(t, OpLogxor, Int(12), Int(10))); got != 6 {
		t.Errorf("logxor = %d", got)
	}
	if got := intOf(runOp(t, OpLogand)); got != -1 {
		t.Errorf("empty logand = %d", got)
	}
	if got := intOf(runOp(t, OpLognot, Int(0))); got != -1 {
		t.Errorf("lognot 0 = %d", got)
	}
	if got := intOf(runOp(t, OpLognot, Int(5))); got != -6 {
		t.Errorf("lognot 5 = %d", got)
	}
}

func TestPointOps(t *testing.T) {
	g1, _ := hex.DecodeString("97f1d3a73197d7942695638c4fa9ac0fc3688c4f9774b905a14e3a3f171bac586c55e83ff97a1aeffb3af00adb22c6bb")
	if got := runOp(t, OpPubkeyForExp, Int(1)); !bytes.Equal(got.Bytes(), g1) {
		t.Fatalf("pubkey_for_exp 1 = %x", got.Bytes())
	}
	two := runOp(t, OpPubkeyForExp, Int(2))
	if got := runOp(t, OpPointAdd, Atom(g1), Atom(g1)); !bytes.Equal(got.Bytes(), two.Bytes()) {
		t.Fatal("G + G != 2G")
	}
	if got := runOp(t, OpPointAdd); !bytes.Equal(got.Bytes(), bls.G1Infinity[:]) {
		t.Fatalf("empty point_add = %x", got.Bytes())
	}
	// -1 wraps to r-1, and (r-1)G + G is the identity
	neg := runOp(t, OpPubkeyForExp, Int(-1))
	if got := runOp(t, OpPointAdd, neg, Atom(g1)); !bytes.Equal(got.Bytes(), bls.G1Infinity[:]) {
		t.Fatalf("-G + G = %x", got.Bytes())
	}

	sk, err := bls.KeyGen(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("KeyGen: %v", err)
	}
	pk := sk.PublicKey()
	skb := sk.Bytes()
	if got := runOp(t, OpPubkeyForExp, Atom(append([]byte{0}, skb[:]...))); !bytes.Equal(got.Bytes(), pk[:]) {
		t.Fatal("pubkey_for_exp disagrees with the secret key's public key")
	}
	failOp(t, OpPointAdd, str("not a point"))
}

func TestSoftfork(t *testing.T) {
	cost, res, err := Run(call([]byte{OpSoftfork}, Int(1000)), Nil, DefaultMaxCost)
	if err != nil || !res.IsNil() {
		t.Fatalf("softfork: %v %x", err, Serialize(res))
	}
	if cost != costQuote+1000 {
		t.Fatalf("softfork cost %d", cost)
	}
	failOp(t, OpSoftfork, Int(0))
}

func TestCoinIDOp(t *testing.T) {
	parent := bytes.Repeat([]byte{1}, 32)
	ph := bytes.Repeat([]byte{2}, 32)
	amt := Uint64Bytes(1000)
	want := sha256.Sum256(append(append(append([]byte{}, parent...), ph...), amt...))
	if got := runOp(t, OpCoinID, Atom(parent), Atom(ph), Atom(amt)); !bytes.Equal(got.Bytes(), want[:]) {
		t.Fatalf("coinid = %x", got.Bytes())
	}
	failOp(t, OpCoinID, Atom(parent), Atom(ph), Int(-1))
	failOp(t, OpCoinID, Atom(parent), Atom(ph), Atom([]byte{0, 1}))
	failOp(t, OpCoinID, Atom(parent[:31]), Atom(ph), Atom(amt))
}

func TestUnknownOperators(t *testing.T) {
	// cost class 0: flat cost of one
	cost, res, err := Run(call([]byte{0x3f}), Nil, DefaultMaxCost)
	if err != nil || !res.IsNil() || cost != 1 {
		t.Fatalf("0x3f: cost %d err %v", cost, err)
	}
	// cost class 1 with a multiplier of two
	cost, res, err = Run(call([]byte{0x01, 0x7f}, str("ab")), Nil, DefaultMaxCost)
	if err != nil || !res.IsNil() {
		t.Fatalf("0x017f: %v", err)
	}
	if want := uint64(costQuote + 2*(costArithBase+costArithPerArg+2*costArithPerByte)); cost != want {
		t.Fatalf("0x017f cost %d, want %d", cost, want)
	}
	for _, op := range [][]byte{{0xff, 0xff, 0x00}, {1, 2, 3, 4, 5, 6}} {
		if _, _, err := Run(call(op), Nil, DefaultMaxCost); err == nil {
			t.Fatalf("operator %x should be rejected", op)
		}
	}
	if _, _, err := Run(Cons(Nil, List(quoted(Int(1)))), Nil, DefaultMaxCost); err == nil {
		t.Fatal("nil operator should be rejected")
	}
	if _, _, err := RunWithFlags(call([]byte{0x3f}), Nil, DefaultMaxCost, StrictOps); err == nil {
		t.Fatal("strict mode should reject 0x3f")
	}
}
