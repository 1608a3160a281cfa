package puzzles

import (
	"fmt"

	"github.com/blinkmojo/blink/pkg/clvm"
)

// Kind is the encoding a curried parameter must have.
type Kind int

const (
	KindPubKey  Kind = iota // 48-byte G1 public key
	KindBytes32             // 32-byte hash: puzzle hash or coin id
	KindAmount              // canonical CLVM integer fitting in a uint64
)

func (k Kind) String() string {
	switch k {
	case KindPubKey:
		return "pubkey"
	case KindBytes32:
		return "bytes32"
	case KindAmount:
		return "amount"
	}
	return "unknown"
}

type Param struct {
	Name string
	Kind Kind
}

var roleParams = map[Role][]Param{
	RoleFaucet:       {{"SYNTHETIC_PUBKEY", KindPubKey}, {"LINEAGE_ID", KindBytes32}},
	RoleNeedsPrivacy: {{"SYNTHETIC_PUBKEY", KindPubKey}, {"DESTINATION", KindBytes32}, {"AMOUNT", KindAmount}},
	RoleDecoy:        {{"SYNTHETIC_PUBKEY", KindPubKey}},
	RoleDecoyValue:   {{"SYNTHETIC_PUBKEY", KindPubKey}, {"DESTINATION", KindBytes32}, {"AMOUNT", KindAmount}},
}

// CurryError reports commitments that do not match a template's parameters.
type CurryError struct {
	Puzzle string
	Reason string
}

func (e *CurryError) Error() string {
	return fmt.Sprintf("cannot curry %s: %s", e.Puzzle, e.Reason)
}

// Binding is a template with its commitments curried in, ready to spend.
type Binding struct {
	Role       Role
	Reveal     *clvm.Node
	PuzzleHash [32]byte
	Solution   *clvm.Node
}

func PubKeyArg(pk [48]byte) *clvm.Node   { return clvm.Atom(pk[:]) }
func Bytes32Arg(b [32]byte) *clvm.Node   { return clvm.Atom(b[:]) }
func AmountArg(amount uint64) *clvm.Node { return clvm.Uint64(amount) }

// Bind curries args into tmpl and builds the solution carrying message,
// which the puzzle echoes into its AGG_SIG_ME condition.
func Bind(tmpl *Template, message []byte, args ...*clvm.Node) (*Binding, error) {
	if len(args) != len(tmpl.Params) {
		return nil, &CurryError{Puzzle: tmpl.Name, Reason: fmt.Sprintf("expected %d arguments, got %d", len(tmpl.Params), len(args))}
	}
	hashes := make([][32]byte, len(args))
	for i, p := range tmpl.Params {
		if err := checkArg(p, args[i]); err != nil {
			return nil, &CurryError{Puzzle: tmpl.Name, Reason: err.Error()}
		}
		hashes[i] = clvm.TreeHash(args[i])
	}
	return &Binding{
		Role:       tmpl.Role,
		Reveal:     clvm.Curry(tmpl.mod, args...),
		PuzzleHash: clvm.CurryTreeHash(tmpl.modHash, hashes...),
		Solution:   clvm.List(clvm.Atom(message)),
	}, nil
}

// PuzzleHash computes the curried puzzle hash without building the reveal.
func PuzzleHash(tmpl *Template, args ...*clvm.Node) ([32]byte, error) {
	b, err := Bind(tmpl, nil, args...)
	if err != nil {
		return [32]byte{}, err
	}
	return b.PuzzleHash, nil
}

func checkArg(p Param, arg *clvm.Node) error {
	if arg == nil || arg.IsPair() {
		return fmt.Errorf("%s must be an atom", p.Name)
	}
	size := len(arg.Bytes())
	switch p.Kind {
	case KindPubKey:
		if size != 48 {
			return fmt.Errorf("%s must be 48 bytes, got %d", p.Name, size)
		}
	case KindBytes32:
		if size != 32 {
			return fmt.Errorf("%s must be 32 bytes, got %d", p.Name, size)
		}
	case KindAmount:
		v, err := arg.AsUint64()
		if err != nil {
			return fmt.Errorf("%s: %v", p.Name, err)
		}
		if !clvm.Equal(clvm.Uint64(v), arg) {
			return fmt.Errorf("%s is not a canonical integer", p.Name)
		}
	}
	return nil
}
