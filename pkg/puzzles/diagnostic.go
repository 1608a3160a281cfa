package puzzles

import (
	"fmt"

	"github.com/blinkmojo/blink/pkg/clvm"
)

var sampleMessage = []byte("test message")

// Diagnostic is the outcome of running a puzzle against a sample argument.
type Diagnostic struct {
	Puzzle     string
	Cost       uint64
	Result     *clvm.Node
	Conditions []clvm.Condition
}

// SampleArg is the default diagnostic argument for tmpl: a zero value for
// each parameter followed by the message "test message".
func SampleArg(tmpl *Template) *clvm.Node {
	items := make([]*clvm.Node, 0, len(tmpl.Params)+1)
	for _, p := range tmpl.Params {
		switch p.Kind {
		case KindPubKey:
			items = append(items, clvm.Atom(make([]byte, 48)))
		case KindBytes32:
			items = append(items, clvm.Atom(make([]byte, 32)))
		default:
			items = append(items, clvm.Nil)
		}
	}
	items = append(items, clvm.Atom(sampleMessage))
	return clvm.List(items...)
}

// RunDiagnostic runs the named uncurried puzzle against arg (SampleArg when
// nil). It is a verification aid and plays no part in building bundles.
func (s *PuzzleSet) RunDiagnostic(name string, arg *clvm.Node, maxCost uint64) (*Diagnostic, error) {
	tmpl, ok := s.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown puzzle %q", name)
	}
	if arg == nil {
		arg = SampleArg(tmpl)
	}
	return RunProgram(tmpl.Name, tmpl.mod, arg, maxCost)
}

// RunProgram runs any program against arg and parses its conditions when
// the result is a condition list.
func RunProgram(name string, prog, arg *clvm.Node, maxCost uint64) (*Diagnostic, error) {
	cost, res, err := clvm.Run(prog, arg, maxCost)
	if err != nil {
		return nil, err
	}
	d := &Diagnostic{Puzzle: name, Cost: cost, Result: res}
	if conds, err := clvm.ParseConditions(res); err == nil {
		d.Conditions = conds
	}
	return d, nil
}
