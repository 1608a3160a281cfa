package clvm

import "fmt"

// Condition opcodes emitted by puzzles.
const (
	AggSigMe         = 50
	CreateCoin       = 51
	AssertMyCoinID   = 70
	AssertMyParentID = 71
	AssertMyAmount   = 73
)

// Condition is one (opcode arg...) entry of a puzzle's output.
type Condition struct {
	Opcode int
	Args   []*Node
}

func (c Condition) String() string {
	return fmt.Sprintf("(%d %x)", c.Opcode, Serialize(List(c.Args...)))
}

// ParseConditions reads a puzzle result as a list of conditions.
func ParseConditions(result *Node) ([]Condition, error) {
	items, err := result.Items()
	if err != nil {
		return nil, evalErr("conditions must be a list", result)
	}
	conds := make([]Condition, 0, len(items))
	for _, it := range items {
		parts, err := it.Items()
		if err != nil || len(parts) == 0 {
			return nil, evalErr("malformed condition", it)
		}
		op, err := parts[0].AsUint64()
		if err != nil || op > 0xff {
			return nil, evalErr("bad condition opcode", parts[0])
		}
		conds = append(conds, Condition{Opcode: int(op), Args: parts[1:]})
	}
	return conds, nil
}

// AggSigPair is the (public key, message) a AGG_SIG_ME condition demands.
type AggSigPair struct {
	PubKey  []byte
	Message []byte
}

// AggSigMePairs extracts the AGG_SIG_ME requirements from conds.
func AggSigMePairs(conds []Condition) ([]AggSigPair, error) {
	var out []AggSigPair
	for _, c := range conds {
		if c.Opcode != AggSigMe {
			continue
		}
		if len(c.Args) < 2 || c.Args[0].IsPair() || c.Args[1].IsPair() {
			return nil, evalErr("AGG_SIG_ME takes a public key and a message", List(c.Args...))
		}
		out = append(out, AggSigPair{PubKey: c.Args[0].Bytes(), Message: c.Args[1].Bytes()})
	}
	return out, nil
}
