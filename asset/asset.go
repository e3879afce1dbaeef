// Package asset models the fungible and non-fungible assets a lot registry
// tracks, and the registries used to resolve tickers to them.
package asset

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Asset identifies one tradable instrument: a token, an NFT, or a fiat
// currency. Decimals is the number of fractional digits its smallest unit
// supports; a non-fungible asset always has Decimals == 0.
type Asset struct {
	Name     string
	Ticker   string
	Fungible bool
	Decimals int32
}

// New constructs an Asset, forcing Decimals to zero for non-fungible assets
// the way the source's __post_init__ does.
func New(name, ticker string, fungible bool, decimals int32) Asset {
	if !fungible {
		decimals = 0
	}
	return Asset{Name: name, Ticker: ticker, Fungible: fungible, Decimals: decimals}
}

// SmallestUnit returns the quantum of this asset: 10^-Decimals.
func (a Asset) SmallestUnit() decimal.Decimal {
	return decimal.New(1, -a.Decimals)
}

// IsFiat reports whether this asset's ticker is a member of the given fiat set.
func (a Asset) IsFiat(fiat FiatSet) bool {
	return fiat.Contains(a.Ticker)
}

// Key returns the case-insensitive lookup key for this asset (its ticker).
func (a Asset) Key() string {
	return strings.ToUpper(a.Ticker)
}
