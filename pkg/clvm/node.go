package clvm

import (
	"bytes"
	"errors"
)

// Node is an immutable CLVM value: either an atom (a byte string) or a
// pair of two nodes. Nodes are shared freely, nothing ever mutates them.
type Node struct {
	atom  []byte
	left  *Node
	right *Node
}

// Nil is the empty atom, also used as the empty list and as false.
var Nil = &Node{}

var errNotList = errors.New("clvm: not a proper list")

func Atom(b []byte) *Node {
	if len(b) == 0 {
		return Nil
	}
	return &Node{atom: bytes.Clone(b)}
}

func Cons(left, right *Node) *Node {
	return &Node{left: left, right: right}
}

// List builds a proper (nil-terminated) list from items.
func List(items ...*Node) *Node {
	res := Nil
	for i := len(items) - 1; i >= 0; i-- {
		res = Cons(items[i], res)
	}
	return res
}

func (n *Node) IsPair() bool {
	return n.left != nil
}

func (n *Node) IsAtom() bool {
	return n.left == nil
}

func (n *Node) IsNil() bool {
	return n.left == nil && len(n.atom) == 0
}

// Bytes returns the atom's bytes (nil for a pair). The result must not be modified.
func (n *Node) Bytes() []byte {
	return n.atom
}

func (n *Node) First() *Node {
	return n.left
}

func (n *Node) Rest() *Node {
	return n.right
}

// Items returns the elements of a proper list.
func (n *Node) Items() ([]*Node, error) {
	var items []*Node
	for cur := n; ; cur = cur.right {
		if cur.IsAtom() {
			if !cur.IsNil() {
				return nil, errNotList
			}
			return items, nil
		}
		items = append(items, cur.left)
	}
}

// Equal compares two trees structurally.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a.IsPair() != b.IsPair() {
		return false
	}
	if a.IsAtom() {
		return bytes.Equal(a.atom, b.atom)
	}
	return Equal(a.left, b.left) && Equal(a.right, b.right)
}
