package blink

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	OneXCH = uint64(1_000_000_000_000) // in mojos
)

var OneXCHDec = decimal.NewFromInt(int64(OneXCH))

func MojosToXCH(mojos uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(mojos), 0).Div(OneXCHDec)
}

// XCHToMojos converts a decimal XCH amount, rejecting negative values and
// fractions of a mojo.
func XCHToMojos(xch decimal.Decimal) (uint64, error) {
	if xch.IsNegative() {
		return 0, NewErr(BadRequest, "invalid amount: negative values are not allowed: %v", xch)
	}
	mojos := xch.Mul(OneXCHDec)
	if !mojos.Equal(mojos.Truncate(0)) {
		return 0, NewErr(BadRequest, "invalid amount: smaller than one mojo: %v", xch)
	}
	bi := mojos.BigInt()
	if !bi.IsUint64() {
		return 0, NewErr(BadRequest, "invalid amount: too large: %v", xch)
	}
	return bi.Uint64(), nil
}
