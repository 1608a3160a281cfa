package blink

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blinkmojo/blink/pkg/clvm"
)

// Bytes32 is a 32-byte hash: coin id, puzzle hash or genesis challenge.
type Bytes32 [32]byte

func (b Bytes32) String() string {
	return hex.EncodeToString(b[:])
}

// ParseBytes32 accepts 64 hex digits with an optional 0x prefix.
func ParseBytes32(s string) (Bytes32, error) {
	var b Bytes32
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return b, NewErr(DecodeError, "invalid hex: %v", err)
	}
	if len(raw) != len(b) {
		return b, NewErr(DecodeError, "expected 32 bytes, got %d", len(raw))
	}
	copy(b[:], raw)
	return b, nil
}

func MustBytes32(s string) Bytes32 {
	b, err := ParseBytes32(s)
	if err != nil {
		panic(fmt.Sprintf("MustBytes32(%q): %v", s, err))
	}
	return b
}

func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + b.String())
}

func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseBytes32(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Coin is an unspent coin as reported by the chain. It is a value: the
// settlement engine never modifies one.
type Coin struct {
	ParentCoinInfo Bytes32 `json:"parent_coin_info"`
	PuzzleHash     Bytes32 `json:"puzzle_hash"`
	Amount         uint64  `json:"amount"`
}

// ID is sha256(parent || puzzle_hash || amount), the amount being encoded
// as a minimal CLVM integer.
func (c Coin) ID() Bytes32 {
	h := sha256.New()
	h.Write(c.ParentCoinInfo[:])
	h.Write(c.PuzzleHash[:])
	h.Write(clvm.Uint64Bytes(c.Amount))
	var id Bytes32
	h.Sum(id[:0])
	return id
}

func (c Coin) String() string {
	return fmt.Sprintf("coin %s (%s XCH)", c.ID(), MojosToXCH(c.Amount).String())
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
