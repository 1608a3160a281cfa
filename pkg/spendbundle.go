package blink

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/blinkmojo/blink/pkg/bls"
	"github.com/blinkmojo/blink/pkg/clvm"
)

// Program is a serialized CLVM program, hex-encoded in JSON.
type Program []byte

func (p Program) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(p))
}

func (p *Program) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return NewErr(DecodeError, "invalid program hex: %v", err)
	}
	if _, err := clvm.Deserialize(raw); err != nil {
		return WrapErr(DecodeError, err, "invalid program")
	}
	*p = raw
	return nil
}

func (p Program) Node() (*clvm.Node, error) {
	return clvm.Deserialize(p)
}

type CoinSpend struct {
	Coin         Coin    `json:"coin"`
	PuzzleReveal Program `json:"puzzle_reveal"`
	Solution     Program `json:"solution"`
}

// SpendBundle is the output of a settlement: four coin spends in role order
// and one aggregated signature. The ledger accepts or rejects it whole.
type SpendBundle struct {
	CoinSpends          []CoinSpend   `json:"coin_spends"`
	AggregatedSignature bls.Signature `json:"-"`
}

type spendBundleJSON struct {
	CoinSpends          []CoinSpend `json:"coin_spends"`
	AggregatedSignature string      `json:"aggregated_signature"`
}

func (sb SpendBundle) MarshalJSON() ([]byte, error) {
	return json.Marshal(spendBundleJSON{
		CoinSpends:          sb.CoinSpends,
		AggregatedSignature: "0x" + hex.EncodeToString(sb.AggregatedSignature[:]),
	})
}

func (sb *SpendBundle) UnmarshalJSON(data []byte) error {
	var w spendBundleJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(w.AggregatedSignature, "0x"))
	if err != nil || len(raw) != bls.SignatureLen {
		return NewErr(DecodeError, "invalid aggregated_signature")
	}
	sb.CoinSpends = w.CoinSpends
	copy(sb.AggregatedSignature[:], raw)
	return nil
}

// Serialize writes the streamable binary form: u32 spend count, then per
// spend the coin (parent, puzzle hash, u64 amount) followed by the raw
// reveal and solution, then the 96-byte signature. Integers are big-endian.
func (sb SpendBundle) Serialize() []byte {
	buf := binary.BigEndian.AppendUint32(nil, uint32(len(sb.CoinSpends)))
	for _, cs := range sb.CoinSpends {
		buf = append(buf, cs.Coin.ParentCoinInfo[:]...)
		buf = append(buf, cs.Coin.PuzzleHash[:]...)
		buf = binary.BigEndian.AppendUint64(buf, cs.Coin.Amount)
		buf = append(buf, cs.PuzzleReveal...)
		buf = append(buf, cs.Solution...)
	}
	return append(buf, sb.AggregatedSignature[:]...)
}

// Name is the bundle id: sha256 of its binary form.
func (sb SpendBundle) Name() Bytes32 {
	return sha256.Sum256(sb.Serialize())
}

type bundleStream struct {
	b []byte
	p int
}

func (s *bundleStream) bytes(num int) ([]byte, error) {
	if num > len(s.b)-s.p {
		return nil, NewErr(DecodeError, "spend bundle truncated at byte %d", s.p)
	}
	p := s.p
	s.p += num
	return s.b[p:s.p], nil
}

func (s *bundleStream) program() (Program, error) {
	n, err := clvm.SerializedLength(s.b[s.p:])
	if err != nil {
		return nil, WrapErr(DecodeError, err, "invalid program at byte %d", s.p)
	}
	raw, _ := s.bytes(n)
	return Program(append([]byte(nil), raw...)), nil
}

// ParseSpendBundle reads the binary form written by Serialize.
func ParseSpendBundle(b []byte) (SpendBundle, error) {
	s := &bundleStream{b: b}
	head, err := s.bytes(4)
	if err != nil {
		return SpendBundle{}, err
	}
	count := binary.BigEndian.Uint32(head)
	if uint64(count) > uint64(len(b))/74 {
		return SpendBundle{}, NewErr(DecodeError, "spend bundle claims %d spends", count)
	}
	sb := SpendBundle{CoinSpends: make([]CoinSpend, 0, count)}
	for i := uint32(0); i < count; i++ {
		var cs CoinSpend
		coin, err := s.bytes(72)
		if err != nil {
			return SpendBundle{}, err
		}
		copy(cs.Coin.ParentCoinInfo[:], coin[:32])
		copy(cs.Coin.PuzzleHash[:], coin[32:64])
		cs.Coin.Amount = binary.BigEndian.Uint64(coin[64:])
		if cs.PuzzleReveal, err = s.program(); err != nil {
			return SpendBundle{}, err
		}
		if cs.Solution, err = s.program(); err != nil {
			return SpendBundle{}, err
		}
		sb.CoinSpends = append(sb.CoinSpends, cs)
	}
	sig, err := s.bytes(bls.SignatureLen)
	if err != nil {
		return SpendBundle{}, err
	}
	copy(sb.AggregatedSignature[:], sig)
	if s.p != len(b) {
		return SpendBundle{}, NewErr(DecodeError, "trailing bytes after spend bundle")
	}
	return sb, nil
}
