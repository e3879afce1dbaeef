// Package txn models the one-sided transaction (half-order) that the lot
// engine actually consumes: one side of a trade, already resolved to a
// single asset.
package txn

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/asset"
)

// Side distinguishes a buy leg from a sell leg.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// SideFromString parses "buy"/"b"/"sell"/"s" (case-insensitively), matching
// the source's TransactionType.from_str.
func SideFromString(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "b", "buy":
		return Buy, nil
	case "s", "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unrecognized transaction side %q", s)
	}
}

// Transaction is one side of a trade: a single asset moving in or out at a
// known fiat spot, with an optional fee denominated in a possibly different
// asset.
type Transaction struct {
	Date          time.Time
	Asset         asset.Asset
	Side          Side
	Amount        decimal.Decimal
	SpotFiat      decimal.Decimal
	Fee           decimal.Decimal
	FeeAsset      asset.Asset
	FeeSpotFiat   decimal.Decimal
}

// AmountFiat is Amount valued at SpotFiat.
func (t Transaction) AmountFiat() decimal.Decimal {
	return t.Amount.Mul(t.SpotFiat)
}

// FeeFiat is Fee valued at FeeSpotFiat.
func (t Transaction) FeeFiat() decimal.Decimal {
	return t.Fee.Mul(t.FeeSpotFiat)
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s", t.Date.Format("2006/01/02"), t.Asset.Ticker, t.Side, t.Amount, t.SpotFiat)
}
