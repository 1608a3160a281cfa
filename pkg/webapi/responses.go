package webapi

import (
	"encoding/hex"

	"github.com/blinkmojo/blink/pkg/clvm"
)

func NewRunPuzzleResponse(name string, cost uint64, result *clvm.Node, conds []clvm.Condition) RunPuzzleResponse {
	res := RunPuzzleResponse{
		Puzzle:     name,
		Cost:       cost,
		Result:     "0x" + hex.EncodeToString(clvm.Serialize(result)),
		Conditions: []string{},
	}
	for _, c := range conds {
		res.Conditions = append(res.Conditions, c.String())
	}
	return res
}
