package puzzles

import (
	"bytes"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/blinkmojo/blink/pkg/clvm"
)

//go:embed hex/*.clvm.hex
var embedded embed.FS

// Role identifies which part a puzzle plays in a mix.
type Role int

const (
	RoleFaucet Role = iota
	RoleNeedsPrivacy
	RoleDecoy
	RoleDecoyValue
)

// Roles lists every role in settlement order.
var Roles = [4]Role{RoleFaucet, RoleNeedsPrivacy, RoleDecoy, RoleDecoyValue}

var roleNames = map[Role]string{
	RoleFaucet:       "faucet",
	RoleNeedsPrivacy: "needs_privacy",
	RoleDecoy:        "decoy",
	RoleDecoyValue:   "decoy_value",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Resource load order, matching the bundled files.
var loadOrder = []Role{RoleFaucet, RoleDecoyValue, RoleNeedsPrivacy, RoleDecoy}

// Template is a compiled, uncurried puzzle.
type Template struct {
	Role    Role
	Name    string
	Program []byte // serialized CLVM
	Params  []Param
	mod     *clvm.Node
	modHash [32]byte
}

// Mod is the parsed program. It is shared and must not be modified.
func (t *Template) Mod() *clvm.Node { return t.mod }

// ModHash is the tree hash of the uncurried program.
func (t *Template) ModHash() [32]byte { return t.modHash }

// PuzzleSet holds the four role templates. Once loaded it is never modified
// and may be read from any number of goroutines.
type PuzzleSet struct {
	byRole [4]*Template
}

// DecodeError reports a bundled puzzle that is not valid hex or not a valid
// CLVM serialization.
type DecodeError struct {
	Puzzle string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("puzzle %s: %v", e.Puzzle, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load decodes the bundled puzzles. Either all four load or none do.
func Load() (*PuzzleSet, error) {
	return load(embedded)
}

func load(fsys fs.FS) (*PuzzleSet, error) {
	set := &PuzzleSet{}
	for _, role := range loadOrder {
		name := role.String()
		raw, err := fs.ReadFile(fsys, "hex/"+name+".clvm.hex")
		if err != nil {
			return nil, &DecodeError{Puzzle: name, Err: err}
		}
		prog, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, &DecodeError{Puzzle: name, Err: err}
		}
		mod, err := Deserialize(prog)
		if err != nil {
			return nil, &DecodeError{Puzzle: name, Err: err}
		}
		if !bytes.Equal(clvm.Serialize(mod), prog) {
			return nil, &DecodeError{Puzzle: name, Err: fmt.Errorf("non-canonical serialization")}
		}
		set.byRole[role] = &Template{
			Role:    role,
			Name:    name,
			Program: prog,
			Params:  roleParams[role],
			mod:     mod,
			modHash: clvm.TreeHash(mod),
		}
	}
	return set, nil
}

var (
	sharedOnce sync.Once
	sharedSet  *PuzzleSet
	sharedErr  error
)

// Shared returns the process-wide PuzzleSet, loading it on first use.
func Shared() (*PuzzleSet, error) {
	sharedOnce.Do(func() {
		sharedSet, sharedErr = Load()
	})
	return sharedSet, sharedErr
}

// Deserialize parses serialized CLVM.
func Deserialize(raw []byte) (*clvm.Node, error) {
	return clvm.Deserialize(raw)
}

func (s *PuzzleSet) Template(role Role) (*Template, error) {
	if role < 0 || int(role) >= len(s.byRole) {
		return nil, fmt.Errorf("unknown puzzle role %v", role)
	}
	return s.byRole[role], nil
}

func (s *PuzzleSet) ByName(name string) (*Template, bool) {
	for _, t := range s.byRole {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Templates returns the templates in settlement order.
func (s *PuzzleSet) Templates() []*Template {
	out := make([]*Template, 0, len(Roles))
	for _, role := range Roles {
		out = append(out, s.byRole[role])
	}
	return out
}
