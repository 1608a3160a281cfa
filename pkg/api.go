package blink

import (
	"log"
	"time"

	"github.com/blinkmojo/blink/pkg/bls"
	"github.com/blinkmojo/blink/pkg/clvm"
	"github.com/blinkmojo/blink/pkg/puzzles"
)

// API is the operation surface shared by the web API and the CLI.
type API struct {
	Store   Store
	Bus     *MessageBus // optional
	Puzzles *puzzles.PuzzleSet
	Network Network
	MaxCost uint64
}

func NewAPI(store Store, bus *MessageBus, set *puzzles.PuzzleSet, conf Config) (API, error) {
	network, err := conf.Network()
	if err != nil {
		return API{}, err
	}
	return API{Store: store, Bus: bus, Puzzles: set, Network: network, MaxCost: conf.Blink.MaxCost}, nil
}

func (a API) send(t EventType, msg interface{}) {
	if a.Bus == nil {
		return
	}
	if err := a.Bus.Send(t, msg); err != nil {
		log.Printf("bus: failed to send %s event: %v", t.Type(), err)
	}
}

// PuzzleInfo describes one loaded template.
type PuzzleInfo struct {
	Role    string   `json:"role"`
	Name    string   `json:"name"`
	ModHash Bytes32  `json:"mod_hash"`
	Program Program  `json:"program"`
	Params  []string `json:"params"`
}

func (a API) ListPuzzles() []PuzzleInfo {
	var out []PuzzleInfo
	for _, t := range a.Puzzles.Templates() {
		params := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			params = append(params, p.Name+":"+p.Kind.String())
		}
		out = append(out, PuzzleInfo{
			Role:    t.Role.String(),
			Name:    t.Name,
			ModHash: t.ModHash(),
			Program: t.Program,
			Params:  params,
		})
	}
	return out
}

func (a API) ValidateMix(plan MixPlan) error {
	err := plan.Validate()
	ev := MixEvent{DecoyValueAmount: plan.DecoyValueAmount, NeedsPrivacyValue: plan.NeedsPrivacyValue}
	if err != nil {
		ev.Error, ev.Code = err.Error(), CodeOf(err)
		a.send(MIX_REJECTED, ev)
		return err
	}
	a.send(MIX_VALIDATED, ev)
	return nil
}

// SignerRequest carries one signer's secret key and message, hex-encoded.
type SignerRequest struct {
	SecretKey string `json:"secret_key"`
	Message   string `json:"message"`
}

// SettlementRequest is a plan plus the four signers in role order.
type SettlementRequest struct {
	Plan    MixPlan          `json:"plan"`
	Signers [4]SignerRequest `json:"signers"`
}

// LockRequest asks which puzzle hashes the coins of Plan must be locked to
// for the four signers' public keys (hex, role order).
type LockRequest struct {
	Plan       MixPlan   `json:"plan"`
	PublicKeys [4]string `json:"public_keys"`
}

// PuzzleHashes answers a LockRequest. Coins must be created with these
// puzzle hashes before a settlement can spend them.
func (a API) PuzzleHashes(req LockRequest) ([4]Bytes32, error) {
	var pks [4]bls.PublicKey
	for i, h := range req.PublicKeys {
		raw, err := decodeHex(h)
		if err != nil {
			return [4]Bytes32{}, NewErr(BadRequest, "public key %d: %v", i, err)
		}
		if pks[i], err = bls.PublicKeyFromBytes(raw); err != nil {
			return [4]Bytes32{}, WrapErr(SigningError, err, "public key %d", i)
		}
	}
	return PuzzleHashes(req.Plan, a.Puzzles, pks)
}

// BuildSettlement builds, verifies and stores a spend bundle.
func (a API) BuildSettlement(req SettlementRequest) (BundleRecord, error) {
	signers, err := decodeSigners(req.Signers)
	if err != nil {
		return BundleRecord{}, err
	}
	bundle, err := a.build(req.Plan, signers)
	if err != nil {
		ev := BundleEvent{Network: a.Network.Name, Coins: coinIDs(req.Plan), Error: err.Error(), Code: CodeOf(err)}
		a.send(SETTLE_FAILED, ev)
		return BundleRecord{}, err
	}
	rec := BundleRecord{Name: bundle.Name(), Network: a.Network.Name, Bundle: bundle, Created: time.Now().UTC()}
	if a.Store != nil {
		if err := a.Store.StoreSpendBundle(rec); err != nil {
			return BundleRecord{}, err
		}
	}
	a.send(SETTLE_BUILT, BundleEvent{Name: rec.Name, Network: rec.Network, Coins: coinIDs(req.Plan), Bundle: &rec.Bundle})
	return rec, nil
}

func (a API) build(plan MixPlan, signers [4]SignerInput) (SpendBundle, error) {
	defer func() {
		for _, s := range signers {
			if s.Secret != nil {
				s.Secret.Zero()
			}
		}
	}()
	if err := a.ValidateMix(plan); err != nil {
		return SpendBundle{}, err
	}
	s, err := NewSettlement(plan, a.Puzzles, a.Network, signers)
	if err != nil {
		return SpendBundle{}, err
	}
	bundle, err := s.BuildSpendBundle()
	if err != nil {
		return SpendBundle{}, err
	}
	if err := VerifyBundle(bundle, a.Network, a.MaxCost); err != nil {
		return SpendBundle{}, err
	}
	return bundle, nil
}

func decodeSigners(reqs [4]SignerRequest) ([4]SignerInput, error) {
	var out [4]SignerInput
	for i, r := range reqs {
		raw, err := decodeHex(r.SecretKey)
		if err != nil {
			zeroSigners(out)
			return out, NewErr(BadRequest, "signer %d: secret_key: %v", i, err)
		}
		sk, err := bls.SecretKeyFromBytes(raw)
		clear(raw)
		if err != nil {
			zeroSigners(out)
			return out, WrapErr(SigningError, err, "signer %d", i)
		}
		msg, err := decodeHex(r.Message)
		if err != nil {
			sk.Zero()
			zeroSigners(out)
			return out, NewErr(BadRequest, "signer %d: message: %v", i, err)
		}
		out[i] = SignerInput{Secret: sk, Message: msg}
	}
	return out, nil
}

func zeroSigners(signers [4]SignerInput) {
	for _, s := range signers {
		if s.Secret != nil {
			s.Secret.Zero()
		}
	}
}

func coinIDs(plan MixPlan) []Bytes32 {
	var ids []Bytes32
	for _, c := range plan.Coins() {
		ids = append(ids, c.ID())
	}
	return ids
}

func (a API) GetSpendBundle(name Bytes32) (BundleRecord, error) {
	if a.Store == nil {
		return BundleRecord{}, NewErr(NotFound, "no store configured")
	}
	return a.Store.GetSpendBundle(name)
}

// RunPuzzle runs a named template, or the program given as hex, against arg
// (a serialized CLVM argument, hex; empty for the default sample).
func (a API) RunPuzzle(name string, programHex string, argHex string) (*puzzles.Diagnostic, error) {
	var arg *clvm.Node
	if argHex != "" {
		raw, err := decodeHex(argHex)
		if err != nil {
			return nil, NewErr(BadRequest, "argument: %v", err)
		}
		if arg, err = clvm.Deserialize(raw); err != nil {
			return nil, WrapErr(DecodeError, err, "argument")
		}
	}
	if programHex == "" {
		if _, ok := a.Puzzles.ByName(name); !ok {
			return nil, NewErr(NotFound, "unknown puzzle %q", name)
		}
		d, err := a.Puzzles.RunDiagnostic(name, arg, a.MaxCost)
		if err != nil {
			return nil, WrapErr(CodeOf(err), err, "running %s", name)
		}
		return d, nil
	}
	raw, err := decodeHex(programHex)
	if err != nil {
		return nil, NewErr(BadRequest, "program: %v", err)
	}
	prog, err := puzzles.Deserialize(raw)
	if err != nil {
		return nil, WrapErr(DecodeError, err, "program")
	}
	if arg == nil {
		arg = clvm.Nil
	}
	d, err := puzzles.RunProgram(name, prog, arg, a.MaxCost)
	if err != nil {
		return nil, WrapErr(CodeOf(err), err, "running %s", name)
	}
	return d, nil
}
