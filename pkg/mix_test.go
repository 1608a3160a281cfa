package blink

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func coin(parent byte, amount uint64) Coin {
	return Coin{ParentCoinInfo: Bytes32{parent}, PuzzleHash: Bytes32{0xee, parent}, Amount: amount}
}

// the scenario: faucet 1000, private payment 500 to A, decoy 10, value decoy 500 to B
func scenarioPlan() MixPlan {
	return MixPlan{
		FaucetCoin:              coin(1, 1000),
		FaucetParentID:          Bytes32{1},
		NeedsPrivacyCoin:        coin(2, 500),
		NeedsPrivacyValue:       500,
		NeedsPrivacyDestination: Bytes32{0xaa},
		DecoyCoin:               coin(3, 10),
		DecoyValueCoin:          coin(4, 500),
		DecoyValueAmount:        500,
		DecoyValueDestination:   Bytes32{0xbb},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		v, d uint64
		ok   bool
	}{
		{500, 500, true},
		{500, 499, false},
		{500, 501, true},
		{0, 0, true},
		{1, 0, false},
		{^uint64(0), ^uint64(0) - 1, false},
	}
	for _, c := range cases {
		p := scenarioPlan()
		p.NeedsPrivacyValue, p.DecoyValueAmount = c.v, c.d
		err := p.Validate()
		if c.ok {
			if err != nil {
				t.Errorf("v=%d d=%d: unexpected %v", c.v, c.d, err)
			}
			continue
		}
		var pv *PrivacyViolation
		if !errors.As(err, &pv) {
			t.Fatalf("v=%d d=%d: expected PrivacyViolation, got %v", c.v, c.d, err)
		}
		if pv.DecoyValueAmount != c.d || pv.NeedsPrivacyValue != c.v {
			t.Errorf("violation carries (%d, %d), want (%d, %d)", pv.DecoyValueAmount, pv.NeedsPrivacyValue, c.d, c.v)
		}
		if !IsError(err, PrivacyViolated) {
			t.Errorf("code %q", CodeOf(err))
		}
	}
}

func TestViolationMessage(t *testing.T) {
	p := scenarioPlan()
	p.DecoyValueAmount = 499
	err := p.Validate()
	if err == nil || !strings.Contains(err.Error(), "raise decoy_value_amount to at least 500") {
		t.Fatalf("message lacks remediation: %v", err)
	}
}

func TestCheckCoins(t *testing.T) {
	p := scenarioPlan()
	if err := p.CheckCoins(); err != nil {
		t.Fatalf("CheckCoins: %v", err)
	}
	p.DecoyValueCoin = p.DecoyCoin
	if err := p.CheckCoins(); !IsError(err, InvalidMix) {
		t.Fatalf("duplicate coin: %v", err)
	}

	// the faucet puzzle asserts its coin's parent
	p = scenarioPlan()
	p.FaucetParentID = Bytes32{0x11}
	if err := p.CheckCoins(); !IsError(err, InvalidMix) {
		t.Fatalf("foreign faucet lineage: %v", err)
	}
}

func TestCoinID(t *testing.T) {
	c := coin(1, 1000)
	if c.ID() == coin(1, 1001).ID() {
		t.Fatal("amount does not move the coin id")
	}
	if c.ID() == coin(2, 1000).ID() {
		t.Fatal("parent does not move the coin id")
	}
	// amount 0 encodes as the empty atom, 128 needs a sign byte
	zero := Coin{Amount: 0}
	if zero.ID() != Bytes32(sha256Sum(make([]byte, 64))) {
		t.Fatal("zero amount must add no bytes")
	}
	c128 := Coin{Amount: 128}
	if c128.ID() != Bytes32(sha256Sum(append(make([]byte, 64), 0x00, 0x80))) {
		t.Fatal("amount 128 must encode as 0x0080")
	}
}

func TestAmounts(t *testing.T) {
	if MojosToXCH(1_500_000_000_000).String() != "1.5" {
		t.Fatalf("MojosToXCH = %s", MojosToXCH(1_500_000_000_000))
	}
	m, err := XCHToMojos(MojosToXCH(123))
	if err != nil || m != 123 {
		t.Fatalf("XCHToMojos = %d, %v", m, err)
	}
	if _, err := XCHToMojos(decimal.RequireFromString("0.0000000000001")); err == nil {
		t.Fatal("sub-mojo amount accepted")
	}
}
