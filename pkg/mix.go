package blink

// MixPlan describes one mix: which four coins take part, what the private
// payment is, and where the value decoy goes.
type MixPlan struct {
	FaucetCoin     Coin    `json:"faucet_coin"`
	FaucetParentID Bytes32 `json:"faucet_parent_id"` // lineage the faucet asserts as its parent

	NeedsPrivacyCoin        Coin    `json:"needs_privacy_coin"`
	NeedsPrivacyValue       uint64  `json:"needs_privacy_value"`
	NeedsPrivacyDestination Bytes32 `json:"needs_privacy_destination"`

	DecoyCoin Coin `json:"decoy_coin"`

	DecoyValueCoin        Coin    `json:"decoy_value_coin"`
	DecoyValueAmount      uint64  `json:"decoy_value_amount"`
	DecoyValueDestination Bytes32 `json:"decoy_value_destination"`
}

// Validate checks that the decoy value masks the private payment. An
// observer who sees amounts but not which output is genuine must not be
// able to single out the payment by elimination.
func (p MixPlan) Validate() error {
	if p.DecoyValueAmount < p.NeedsPrivacyValue {
		return &PrivacyViolation{DecoyValueAmount: p.DecoyValueAmount, NeedsPrivacyValue: p.NeedsPrivacyValue}
	}
	return nil
}

// Coins returns the participating coins in settlement order: faucet,
// needs_privacy, decoy, decoy_value.
func (p MixPlan) Coins() [4]Coin {
	return [4]Coin{p.FaucetCoin, p.NeedsPrivacyCoin, p.DecoyCoin, p.DecoyValueCoin}
}

// CheckCoins rejects a plan that spends the same coin twice, or whose
// faucet lineage is not the faucet coin's parent (the faucet puzzle asserts
// it with ASSERT_MY_PARENT_ID).
func (p MixPlan) CheckCoins() error {
	if p.FaucetParentID != p.FaucetCoin.ParentCoinInfo {
		return NewErr(InvalidMix, "faucet lineage %s is not the faucet coin's parent %s", p.FaucetParentID, p.FaucetCoin.ParentCoinInfo)
	}
	seen := make(map[Bytes32]int, 4)
	for i, c := range p.Coins() {
		id := c.ID()
		if j, ok := seen[id]; ok {
			return NewErr(InvalidMix, "coin %s appears as both %s and %s", id, roleOrder[j], roleOrder[i])
		}
		seen[id] = i
	}
	return nil
}
