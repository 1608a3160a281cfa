package clvm

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
)

func hx2b(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("bad hex in test")
	}
	return b
}

const decoyHex = "ff04ffff04ffff0132ffff04ff02ffff04ff05ff80808080ff8080"

func TestSerializeRoundTrip(t *testing.T) {
	for _, h := range []string{
		"80",
		"01",
		"8200ff",
		decoyHex,
		"ff04ffff04ffff0132ffff04ff02ffff04ff0bff80808080ffff04ffff04ffff0147ffff04ff05ff808080ff808080",
	} {
		n, err := Deserialize(hx2b(h))
		if err != nil {
			t.Fatalf("Deserialize %s: %v", h, err)
		}
		if got := hex.EncodeToString(Serialize(n)); got != h {
			t.Errorf("round trip %s gave %s", h, got)
		}
	}
}

func TestDeserializeRejects(t *testing.T) {
	for _, h := range []string{
		"",     // empty
		"ff01", // pair missing right
		"8201", // atom runs past end
		"0101", // trailing byte
		"fe01", // back reference
		"c0",   // truncated length prefix
	} {
		_, err := Deserialize(hx2b(h))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Deserialize %q: expected ParseError, got %v", h, err)
		}
	}
}

func TestLongList(t *testing.T) {
	const n = 20000
	ser := append(bytes.Repeat([]byte{0xff, 0x01}, n), 0x80)
	list, err := Deserialize(ser)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	items, err := list.Items()
	if err != nil || len(items) != n {
		t.Fatalf("Items: %d %v", len(items), err)
	}
	if !bytes.Equal(Serialize(list), ser) {
		t.Fatal("long list did not round trip")
	}
	if l, err := SerializedLength(append(ser, 0x01)); err != nil || l != len(ser) {
		t.Fatalf("SerializedLength = %d %v", l, err)
	}

	deep := append(bytes.Repeat([]byte{0xff}, maxDepth+2), 0x80)
	deep = append(deep, bytes.Repeat([]byte{0x80}, maxDepth+2)...)
	var pe *ParseError
	if _, err := Deserialize(deep); !errors.As(err, &pe) {
		t.Fatalf("deep left nesting: expected ParseError, got %v", err)
	}
}

func TestLongAtom(t *testing.T) {
	atom := bytes.Repeat([]byte{0xab}, 300)
	ser := Serialize(Atom(atom))
	if ser[0] != 0xc1 || ser[1] != 0x2c {
		t.Fatalf("unexpected prefix %x", ser[:2])
	}
	n, err := Deserialize(ser)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !bytes.Equal(n.Bytes(), atom) {
		t.Fatal("long atom mismatch")
	}
}

func TestIntEncoding(t *testing.T) {
	cases := []struct {
		v   int64
		enc string
	}{
		{0, ""},
		{1, "01"},
		{127, "7f"},
		{128, "0080"},
		{255, "00ff"},
		{256, "0100"},
		{-1, "ff"},
		{-128, "80"},
		{-129, "ff7f"},
		{1000, "03e8"},
	}
	for _, c := range cases {
		got := hex.EncodeToString(IntBytes(big.NewInt(c.v)))
		if got != c.enc {
			t.Errorf("IntBytes(%d) = %s, want %s", c.v, got, c.enc)
		}
		if back := BigInt(hx2b(c.enc)).Int64(); back != c.v {
			t.Errorf("BigInt(%s) = %d, want %d", c.enc, back, c.v)
		}
	}
	if v, err := Uint64(1_000_000_000_000).AsUint64(); err != nil || v != 1_000_000_000_000 {
		t.Fatalf("AsUint64 = %d, %v", v, err)
	}
	if _, err := Int(-5).AsUint64(); !errors.Is(err, ErrNotUint64) {
		t.Fatalf("negative AsUint64: %v", err)
	}
}

func TestTreeHash(t *testing.T) {
	nilHash := TreeHash(Nil)
	if hex.EncodeToString(nilHash[:]) != "4bf5122f344554c53bde2ebb8cd2b7e3d1600ad631c385a5d7cce23c7785459a" {
		t.Fatalf("nil tree hash %x", nilHash)
	}
	prog, _ := Deserialize(hx2b(decoyHex))
	h := TreeHash(prog)
	if hex.EncodeToString(h[:]) != "558b049f015f3ea45bdcf7bd293c6c000b1671e38c7094be45beaa8008c99ea2" {
		t.Fatalf("decoy tree hash %x", h)
	}
}

func TestCurryHashAgrees(t *testing.T) {
	mod, _ := Deserialize(hx2b(decoyHex))
	pk := Atom(bytes.Repeat([]byte{7}, 48))
	amt := Uint64(500)
	curried := Curry(mod, pk, amt)
	want := TreeHash(curried)
	got := CurryTreeHash(TreeHash(mod), TreeHash(pk), TreeHash(amt))
	if want != got {
		t.Fatalf("CurryTreeHash %x != TreeHash %x", got, want)
	}
	other := CurryTreeHash(TreeHash(mod), TreeHash(pk), TreeHash(Uint64(501)))
	if other == got {
		t.Fatal("different commitments gave the same hash")
	}

	m2, args, ok := Uncurry(curried)
	if !ok || !Equal(m2, mod) || len(args) != 2 || !Equal(args[0], pk) || !Equal(args[1], amt) {
		t.Fatal("Uncurry did not reverse Curry")
	}
	if _, _, ok := Uncurry(mod); ok {
		t.Fatal("Uncurry accepted an uncurried program")
	}
}

func TestRunCurriedPuzzle(t *testing.T) {
	mod, _ := Deserialize(hx2b(decoyHex))
	pk := Atom(bytes.Repeat([]byte{7}, 48))
	msg := Atom([]byte("hello"))
	cost, res, err := Run(Curry(mod, pk), List(msg), DefaultMaxCost)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cost == 0 {
		t.Fatal("expected a non-zero cost")
	}
	conds, err := ParseConditions(res)
	if err != nil {
		t.Fatalf("ParseConditions: %v", err)
	}
	if len(conds) != 1 || conds[0].Opcode != AggSigMe {
		t.Fatalf("unexpected conditions %v", conds)
	}
	pairs, err := AggSigMePairs(conds)
	if err != nil || len(pairs) != 1 {
		t.Fatalf("AggSigMePairs: %v", err)
	}
	if !bytes.Equal(pairs[0].PubKey, pk.Bytes()) || string(pairs[0].Message) != "hello" {
		t.Fatalf("unexpected pair %x %q", pairs[0].PubKey, pairs[0].Message)
	}
}

func TestRunOperators(t *testing.T) {
	q := func(n *Node) *Node { return Cons(Atom([]byte{OpQuote}), n) }
	op := func(o byte, args ...*Node) *Node { return Cons(Atom([]byte{o}), List(args...)) }

	run := func(prog *Node) *Node {
		t.Helper()
		_, res, err := Run(prog, Nil, DefaultMaxCost)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return res
	}
	if v, _ := run(op(OpAdd, q(Int(2)), q(Int(3)))).AsUint64(); v != 5 {
		t.Errorf("2+3 = %d", v)
	}
	if got := BigInt(run(op(OpSub, q(Int(2)), q(Int(3)))).Bytes()).Int64(); got != -1 {
		t.Errorf("2-3 = %d", got)
	}
	if !run(op(OpGr, q(Int(2)), q(Int(3)))).IsNil() {
		t.Error("2 > 3 should be false")
	}
	if run(op(OpEq, q(Atom([]byte("a"))), q(Atom([]byte("a"))))).IsNil() {
		t.Error("a = a should be true")
	}
	if got := run(op(OpIf, q(Nil), q(Int(1)), q(Int(2)))); !Equal(got, Int(2)) {
		t.Error("if nil should take the else branch")
	}
	if got := run(op(OpConcat, q(Atom([]byte("ab"))), q(Atom([]byte("cd"))))); string(got.Bytes()) != "abcd" {
		t.Errorf("concat = %q", got.Bytes())
	}
	if v, _ := run(op(OpStrlen, q(Atom([]byte("abcd"))))).AsUint64(); v != 4 {
		t.Errorf("strlen = %d", v)
	}
	if !run(op(OpAll, q(Int(1)), q(Nil))).IsNil() {
		t.Error("all with nil should be false")
	}
	if run(op(OpAny, q(Nil), q(Int(1)))).IsNil() {
		t.Error("any with 1 should be true")
	}
	if run(op(OpNot, q(Nil))).IsNil() {
		t.Error("not nil should be true")
	}
	if got := run(op(OpFirst, q(List(Int(9), Int(8))))); !Equal(got, Int(9)) {
		t.Error("f failed")
	}
	if got := run(op(OpSha256, q(Atom([]byte{1})))); len(got.Bytes()) != 32 {
		t.Error("sha256 result must be 32 bytes")
	}

	_, _, err := Run(op(OpRaise, q(Int(1))), Nil, DefaultMaxCost)
	var ee *EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("raise: expected EvalError, got %v", err)
	}
	_, _, err = RunWithFlags(op(0x7f), Nil, DefaultMaxCost, StrictOps)
	if !errors.As(err, &ee) {
		t.Fatalf("strict unknown op: expected EvalError, got %v", err)
	}
}

func TestPathLookup(t *testing.T) {
	env := List(Int(10), Int(20), Int(30))
	for path, want := range map[int64]int64{2: 10, 5: 20, 11: 30} {
		_, res, err := Run(Int(path), env, DefaultMaxCost)
		if err != nil {
			t.Fatalf("path %d: %v", path, err)
		}
		if !Equal(res, Int(want)) {
			t.Errorf("path %d gave %x", path, Serialize(res))
		}
	}
	if _, res, _ := Run(Int(1), env, DefaultMaxCost); !Equal(res, env) {
		t.Error("path 1 must return the whole environment")
	}
}

func TestCostExceeded(t *testing.T) {
	mod, _ := Deserialize(hx2b(decoyHex))
	_, _, err := Run(Curry(mod, Atom(make([]byte, 48))), List(Atom([]byte("m"))), 100)
	if !errors.Is(err, ErrCostExceeded) {
		t.Fatalf("expected ErrCostExceeded, got %v", err)
	}
}
