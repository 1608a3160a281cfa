package clvm

import "crypto/sha256"

// TreeHash is the sha256tree commitment of a program: atoms hash as
// sha256(0x01 || atom), pairs as sha256(0x02 || left || right).
// This is the value a coin's puzzle hash commits to.
func TreeHash(n *Node) [32]byte {
	if n.IsPair() {
		left := TreeHash(n.left)
		right := TreeHash(n.right)
		return pairHash(left, right)
	}
	return AtomHash(n.atom)
}

func AtomHash(atom []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{1})
	h.Write(atom)
	var out [32]byte
	h.Sum(out[:0])
	return out
}

func pairHash(left, right [32]byte) [32]byte {
	var buf [65]byte
	buf[0] = 2
	copy(buf[1:33], left[:])
	copy(buf[33:], right[:])
	return sha256.Sum256(buf[:])
}
