// Package address converts puzzle hashes to and from bech32m addresses
// (xch1.., txch1..).
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

var (
	ErrNotBech32m   = errors.New("address is not bech32m")
	ErrWrongLength  = errors.New("address does not encode 32 bytes")
	ErrWrongNetwork = errors.New("address prefix does not match network")
)

// Encode returns the bech32m address of puzzleHash under prefix.
func Encode(puzzleHash [32]byte, prefix string) (string, error) {
	data, err := bech32.ConvertBits(puzzleHash[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(prefix, data)
}

// Decode returns the prefix and puzzle hash of a bech32m address.
func Decode(addr string) (prefix string, puzzleHash [32]byte, err error) {
	hrp, data, version, err := bech32.DecodeGeneric(addr)
	if err != nil {
		return "", puzzleHash, err
	}
	if version != bech32.VersionM {
		return "", puzzleHash, ErrNotBech32m
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", puzzleHash, err
	}
	if len(raw) != 32 {
		return "", puzzleHash, ErrWrongLength
	}
	copy(puzzleHash[:], raw)
	return hrp, puzzleHash, nil
}

// DecodeFor decodes addr and checks it carries the expected prefix.
func DecodeFor(addr string, prefix string) ([32]byte, error) {
	hrp, ph, err := Decode(addr)
	if err != nil {
		return ph, err
	}
	if hrp != strings.ToLower(prefix) {
		return [32]byte{}, fmt.Errorf("%w: %s, want %s", ErrWrongNetwork, hrp, prefix)
	}
	return ph, nil
}
