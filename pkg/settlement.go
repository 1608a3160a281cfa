package blink

import (
	"bytes"
	"fmt"

	"github.com/blinkmojo/blink/pkg/bls"
	"github.com/blinkmojo/blink/pkg/clvm"
	"github.com/blinkmojo/blink/pkg/puzzles"
)

var roleOrder = puzzles.Roles

// SignerInput is the secret key controlling one coin and the message its
// owner wants bound into the spend.
type SignerInput struct {
	Secret  *bls.SecretKey
	Message []byte
}

// Settlement builds one spend bundle from a MixPlan. It takes ownership of
// the four secret keys and zeroes them once BuildSpendBundle returns.
type Settlement struct {
	plan    MixPlan
	puzzles *puzzles.PuzzleSet
	network Network
	signers [4]SignerInput // in role order
	pubkeys [4]bls.PublicKey
	built   bool
}

// NewSettlement validates plan and takes the signers, which must be given
// in role order: faucet, needs_privacy, decoy, decoy_value.
func NewSettlement(plan MixPlan, set *puzzles.PuzzleSet, network Network, signers [4]SignerInput) (*Settlement, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := plan.CheckCoins(); err != nil {
		return nil, err
	}
	if set == nil {
		return nil, NewErr(PuzzleLoadError, "no puzzle set")
	}
	s := &Settlement{plan: plan, puzzles: set, network: network}
	for i, in := range signers {
		if in.Secret == nil || in.Secret.IsZeroed() {
			return nil, NewErr(SigningError, "missing secret key for %s", roleOrder[i])
		}
		s.signers[i] = SignerInput{Secret: in.Secret, Message: append([]byte(nil), in.Message...)}
		s.pubkeys[i] = in.Secret.PublicKey()
	}
	return s, nil
}

// NewSettlementShared is NewSettlement using the process-wide PuzzleSet.
func NewSettlementShared(plan MixPlan, network Network, signers [4]SignerInput) (*Settlement, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	set, err := puzzles.Shared()
	if err != nil {
		return nil, WrapErr(PuzzleLoadError, err, "cannot load puzzles")
	}
	return NewSettlement(plan, set, network, signers)
}

func (s *Settlement) Plan() MixPlan { return s.plan }

// PublicKeys returns the signers' public keys in role order.
func (s *Settlement) PublicKeys() [4]bls.PublicKey { return s.pubkeys }

// SignedMessages returns, in role order, what each signer signs:
// message || coin id || genesis challenge.
func (s *Settlement) SignedMessages() [4][]byte {
	var out [4][]byte
	for i, coin := range s.plan.Coins() {
		out[i] = SpendMessage(s.signers[i].Message, coin, s.network)
	}
	return out
}

// SpendMessage appends the coin id and the network's genesis challenge to
// msg. The coin id stops a signature being reused for another coin, the
// challenge stops it being replayed on another network.
func SpendMessage(msg []byte, coin Coin, network Network) []byte {
	id := coin.ID()
	out := make([]byte, 0, len(msg)+64)
	out = append(out, msg...)
	out = append(out, id[:]...)
	return append(out, network.GenesisChallenge[:]...)
}

// roleCommitments are the curried arguments of role's puzzle.
func roleCommitments(p MixPlan, role puzzles.Role, pubkey bls.PublicKey) []*clvm.Node {
	pk := puzzles.PubKeyArg(pubkey)
	switch role {
	case puzzles.RoleFaucet:
		return []*clvm.Node{pk, puzzles.Bytes32Arg(p.FaucetParentID)}
	case puzzles.RoleNeedsPrivacy:
		return []*clvm.Node{pk, puzzles.Bytes32Arg(p.NeedsPrivacyDestination), puzzles.AmountArg(p.NeedsPrivacyValue)}
	case puzzles.RoleDecoyValue:
		return []*clvm.Node{pk, puzzles.Bytes32Arg(p.DecoyValueDestination), puzzles.AmountArg(p.DecoyValueAmount)}
	}
	return []*clvm.Node{pk}
}

// PuzzleHashes returns, in role order, the puzzle hash each coin of plan
// must carry for the signers' public keys. A coin locked to any other hash
// cannot be spent by the settlement.
func PuzzleHashes(plan MixPlan, set *puzzles.PuzzleSet, pubkeys [4]bls.PublicKey) ([4]Bytes32, error) {
	var out [4]Bytes32
	if set == nil {
		return out, NewErr(PuzzleLoadError, "no puzzle set")
	}
	for i, role := range roleOrder {
		tmpl, err := set.Template(role)
		if err != nil {
			return out, WrapErr(PuzzleLoadError, err, "no %s puzzle", role)
		}
		ph, err := puzzles.PuzzleHash(tmpl, roleCommitments(plan, role, pubkeys[i])...)
		if err != nil {
			return out, WrapErr(CurryError, err, "binding %s", role)
		}
		out[i] = ph
	}
	return out, nil
}

// BuildSpendBundle binds, signs and aggregates the four spends. It can be
// called once: afterwards the secrets are gone, whether or not it succeeded.
// No partial bundle is ever returned.
func (s *Settlement) BuildSpendBundle() (SpendBundle, error) {
	if s.built {
		return SpendBundle{}, NewErr(AlreadyBuilt, "settlement has already been built")
	}
	s.built = true
	defer s.zero()

	coins := s.plan.Coins()
	messages := s.SignedMessages()
	spends := make([]CoinSpend, 0, len(roleOrder))
	sigs := make([]bls.Signature, 0, len(roleOrder))
	for i, role := range roleOrder {
		tmpl, err := s.puzzles.Template(role)
		if err != nil {
			return SpendBundle{}, WrapErr(PuzzleLoadError, err, "no %s puzzle", role)
		}
		b, err := puzzles.Bind(tmpl, s.signers[i].Message, roleCommitments(s.plan, role, s.pubkeys[i])...)
		if err != nil {
			return SpendBundle{}, WrapErr(CurryError, err, "binding %s", role)
		}
		if Bytes32(b.PuzzleHash) != coins[i].PuzzleHash {
			return SpendBundle{}, NewErr(CurryError, "%s puzzle hash %s does not match coin puzzle hash %s",
				role, Bytes32(b.PuzzleHash), coins[i].PuzzleHash)
		}
		spends = append(spends, CoinSpend{
			Coin:         coins[i],
			PuzzleReveal: clvm.Serialize(b.Reveal),
			Solution:     clvm.Serialize(b.Solution),
		})
		sig, err := bls.Sign(s.signers[i].Secret, messages[i])
		if err != nil {
			return SpendBundle{}, WrapErr(SigningError, err, "signing %s", role)
		}
		sigs = append(sigs, sig)
	}
	agg, err := bls.Aggregate(sigs...)
	if err != nil {
		return SpendBundle{}, WrapErr(SigningError, err, "aggregating signatures")
	}
	return SpendBundle{CoinSpends: spends, AggregatedSignature: agg}, nil
}

func (s *Settlement) zero() {
	for i := range s.signers {
		s.signers[i].Secret.Zero()
		s.signers[i].Secret = nil
	}
}

// VerifyBundle checks a bundle the way the ledger would: every reveal must
// hash to its coin's puzzle hash and run without unknown operators, every
// ASSERT_MY_* condition must hold for its coin, and the aggregated signature
// must cover every AGG_SIG_ME pair.
func VerifyBundle(bundle SpendBundle, network Network, maxCost uint64) error {
	var pks []bls.PublicKey
	var msgs [][]byte
	for i, cs := range bundle.CoinSpends {
		reveal, err := cs.PuzzleReveal.Node()
		if err != nil {
			return WrapErr(DecodeError, err, "spend %d puzzle reveal", i)
		}
		if Bytes32(clvm.TreeHash(reveal)) != cs.Coin.PuzzleHash {
			return NewErr(CurryError, "spend %d: puzzle reveal does not hash to coin puzzle hash %s", i, cs.Coin.PuzzleHash)
		}
		solution, err := cs.Solution.Node()
		if err != nil {
			return WrapErr(DecodeError, err, "spend %d solution", i)
		}
		cost, result, err := clvm.RunWithFlags(reveal, solution, maxCost, clvm.StrictOps)
		if err != nil {
			return WrapErr(CodeOf(err), err, "running spend %d", i)
		}
		maxCost -= cost
		conds, err := clvm.ParseConditions(result)
		if err != nil {
			return WrapErr(EvalError, err, "spend %d conditions", i)
		}
		if err := checkAssertions(conds, cs.Coin); err != nil {
			return WrapErr(InvalidMix, err, "spend %d", i)
		}
		pairs, err := clvm.AggSigMePairs(conds)
		if err != nil {
			return WrapErr(EvalError, err, "spend %d conditions", i)
		}
		for _, pair := range pairs {
			pk, err := bls.PublicKeyFromBytes(pair.PubKey)
			if err != nil {
				return WrapErr(SigningError, err, "spend %d", i)
			}
			pks = append(pks, pk)
			msgs = append(msgs, SpendMessage(pair.Message, cs.Coin, network))
		}
	}
	if len(pks) == 0 {
		return NewErr(SigningError, "bundle demands no signatures")
	}
	if !bls.AggregateVerify(pks, msgs, bundle.AggregatedSignature) {
		return NewErr(SigningError, "aggregated signature does not verify")
	}
	return nil
}

// checkAssertions fails on the first ASSERT_MY_* condition coin does not meet.
func checkAssertions(conds []clvm.Condition, coin Coin) error {
	for _, c := range conds {
		var want []byte
		switch c.Opcode {
		case clvm.AssertMyCoinID:
			id := coin.ID()
			want = id[:]
		case clvm.AssertMyParentID:
			want = coin.ParentCoinInfo[:]
		case clvm.AssertMyAmount:
			want = clvm.Uint64Bytes(coin.Amount)
		default:
			continue
		}
		if len(c.Args) == 0 || c.Args[0].IsPair() || !bytes.Equal(c.Args[0].Bytes(), want) {
			return fmt.Errorf("condition %s fails for coin %s", c, coin.ID())
		}
	}
	return nil
}
