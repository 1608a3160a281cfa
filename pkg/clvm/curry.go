package clvm

// Operator atoms used when building curried programs.
var (
	opQuote = []byte{OpQuote}
	opApply = []byte{OpApply}
	opCons  = []byte{OpCons}
	envAtom = []byte{1} // path 1: the whole environment
)

// Curry binds args into mod, yielding
//
//	(a (q . mod) (c (q . arg1) (c (q . arg2) ... 1)))
//
// When run, the curried arguments are prepended to the caller's solution, so
// mod sees (arg1 arg2 ... . solution) as its environment.
func Curry(mod *Node, args ...*Node) *Node {
	env := Atom(envAtom)
	for i := len(args) - 1; i >= 0; i-- {
		env = List(Atom(opCons), Cons(Atom(opQuote), args[i]), env)
	}
	return List(Atom(opApply), Cons(Atom(opQuote), mod), env)
}

// Uncurry reverses Curry. ok is false if prog does not have the curried shape.
func Uncurry(prog *Node) (mod *Node, args []*Node, ok bool) {
	items, err := prog.Items()
	if err != nil || len(items) != 3 || !isOp(items[0], OpApply) {
		return nil, nil, false
	}
	quoted := items[1]
	if !quoted.IsPair() || !isOp(quoted.left, OpQuote) {
		return nil, nil, false
	}
	mod = quoted.right
	env := items[2]
	for env.IsPair() {
		parts, err := env.Items()
		if err != nil || len(parts) != 3 || !isOp(parts[0], OpCons) {
			return nil, nil, false
		}
		if !parts[1].IsPair() || !isOp(parts[1].left, OpQuote) {
			return nil, nil, false
		}
		args = append(args, parts[1].right)
		env = parts[2]
	}
	if env.IsPair() || len(env.atom) != 1 || env.atom[0] != 1 {
		return nil, nil, false
	}
	return mod, args, true
}

func isOp(n *Node, op byte) bool {
	return n.IsAtom() && len(n.atom) == 1 && n.atom[0] == op
}

// CurryTreeHash computes TreeHash(Curry(mod, args...)) from the hashes alone,
// so a puzzle hash can be derived without holding the whole tree.
func CurryTreeHash(modHash [32]byte, argHashes ...[32]byte) [32]byte {
	quoteHash := AtomHash(opQuote)
	consHash := AtomHash(opCons)
	nilHash := AtomHash(nil)

	env := AtomHash(envAtom)
	for i := len(argHashes) - 1; i >= 0; i-- {
		quotedArg := pairHash(quoteHash, argHashes[i])
		// (c (q . arg) env)
		env = pairHash(consHash, pairHash(quotedArg, pairHash(env, nilHash)))
	}
	quotedMod := pairHash(quoteHash, modHash)
	// (a (q . mod) env)
	return pairHash(AtomHash(opApply), pairHash(quotedMod, pairHash(env, nilHash)))
}
