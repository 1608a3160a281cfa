package clvm

import (
	"fmt"
)

const (
	consBox  = 0xff
	nilAtom  = 0x80
	maxDepth = 10000
)

// ParseError reports malformed serialized CLVM.
type ParseError struct {
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("clvm: malformed program at byte %d: %s", e.Offset, e.Reason)
}

// stream is a bounds-checked cursor over serialized bytes.
type stream struct {
	b []byte
	p int
}

func (s *stream) fail(reason string) error {
	return &ParseError{Offset: s.p, Reason: reason}
}

func (s *stream) byte() (byte, error) {
	if s.p >= len(s.b) {
		return 0, s.fail("unexpected end of input")
	}
	c := s.b[s.p]
	s.p++
	return c, nil
}

func (s *stream) bytes(num int) ([]byte, error) {
	if num > len(s.b)-s.p {
		return nil, s.fail("atom runs past end of input")
	}
	p := s.p
	s.p += num
	return s.b[p:s.p], nil
}

// Deserialize parses a complete serialized program. Trailing bytes are an error.
func Deserialize(b []byte) (*Node, error) {
	s := &stream{b: b}
	n, err := s.node(0)
	if err != nil {
		return nil, err
	}
	if s.p != len(s.b) {
		return nil, s.fail("trailing bytes after program")
	}
	return n, nil
}

// node parses one node. Only left descent counts toward maxDepth: the right
// spine of a pair is read in a loop, so long lists parse at any length.
func (s *stream) node(depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, s.fail("tree too deep")
	}
	c, err := s.byte()
	if err != nil {
		return nil, err
	}
	switch {
	case c == consBox:
		var lefts []*Node
		for {
			left, err := s.node(depth + 1)
			if err != nil {
				return nil, err
			}
			lefts = append(lefts, left)
			if s.p < len(s.b) && s.b[s.p] == consBox {
				s.p++
				continue
			}
			break
		}
		tail, err := s.node(depth)
		if err != nil {
			return nil, err
		}
		for i := len(lefts) - 1; i >= 0; i-- {
			tail = Cons(lefts[i], tail)
		}
		return tail, nil
	case c == nilAtom:
		return Nil, nil
	case c < 0x80:
		return &Node{atom: []byte{c}}, nil
	case c == 0xfe:
		return nil, s.fail("back references are not supported")
	}
	size, err := s.atomSize(c)
	if err != nil {
		return nil, err
	}
	data, err := s.bytes(size)
	if err != nil {
		return nil, err
	}
	return Atom(data), nil
}

// atomSize decodes the length prefix: the count of leading one bits in the
// first byte gives the prefix width, the remaining bits the length.
func (s *stream) atomSize(first byte) (int, error) {
	mask := byte(0x80)
	width := 0
	for first&mask != 0 {
		first &^= mask
		mask >>= 1
		width++
	}
	if width > 5 {
		return 0, s.fail("invalid atom length prefix")
	}
	size := uint64(first)
	for i := 1; i < width; i++ {
		c, err := s.byte()
		if err != nil {
			return 0, err
		}
		size = size<<8 | uint64(c)
	}
	if size >= 0x400000000 {
		return 0, s.fail("atom too large")
	}
	return int(size), nil
}

// Serialize writes the canonical serialization of n.
func Serialize(n *Node) []byte {
	return appendNode(nil, n)
}

func appendNode(buf []byte, n *Node) []byte {
	if n.IsPair() {
		buf = append(buf, consBox)
		buf = appendNode(buf, n.left)
		return appendNode(buf, n.right)
	}
	return appendAtom(buf, n.atom)
}

func appendAtom(buf []byte, atom []byte) []byte {
	size := len(atom)
	switch {
	case size == 0:
		return append(buf, nilAtom)
	case size == 1 && atom[0] < 0x80:
		return append(buf, atom[0])
	case size < 0x40:
		buf = append(buf, 0x80|byte(size))
	case size < 0x2000:
		buf = append(buf, 0xc0|byte(size>>8), byte(size))
	case size < 0x100000:
		buf = append(buf, 0xe0|byte(size>>16), byte(size>>8), byte(size))
	case size < 0x8000000:
		buf = append(buf, 0xf0|byte(size>>24), byte(size>>16), byte(size>>8), byte(size))
	default:
		buf = append(buf, 0xf8|byte(size>>32), byte(size>>24), byte(size>>16), byte(size>>8), byte(size))
	}
	return append(buf, atom...)
}

// SerializedLength returns the length of the program serialized at the start
// of b, for reading programs embedded in a larger stream.
func SerializedLength(b []byte) (int, error) {
	s := &stream{b: b}
	if _, err := s.node(0); err != nil {
		return 0, err
	}
	return s.p, nil
}
