package lot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/errs"
	"github.com/gocryptotax/taxlots/txn"
)

// Strategy selects which open lot a sell transaction consumes first.
type Strategy int

const (
	FIFO Strategy = iota
	LIFO
)

// StrategyFromString parses "FIFO"/"LIFO" case-insensitively.
func StrategyFromString(s string) (Strategy, error) {
	switch strings.ToUpper(s) {
	case "FIFO":
		return FIFO, nil
	case "LIFO":
		return LIFO, nil
	default:
		return 0, fmt.Errorf("unrecognized ordering strategy %q", s)
	}
}

func (s Strategy) String() string {
	if s == LIFO {
		return "LIFO"
	}
	return "FIFO"
}

// dustFraction and dustAbsoluteFiat are the §4.6 dust-rounding thresholds:
// a residual below 1% of the traded amount AND below 1 fiat unit is
// treated as exactly zero.
var (
	dustFraction     = decimal.New(1, -2) // 0.01
	dustAbsoluteFiat = decimal.NewFromInt(1)
)

// MatchSell consumes one sell transaction against reg's open lots of the
// sold asset, closing (and, if necessary, splitting) lots per §4.6.
func MatchSell(reg *Registry, sellTxn txn.Transaction, strategy Strategy) error {
	candidates := reg.OpenForAsset(sellTxn.Asset.Ticker)
	if len(candidates) == 0 {
		return errs.NewNoMatchingPool(sellTxn.Asset.Ticker)
	}
	orderCandidates(candidates, strategy)

	matched := candidates[0]
	amount := sellTxn.Amount
	delta := amount.Sub(matched.Amount)

	if isDust(delta, amount, sellTxn.SpotFiat) {
		amount = matched.Amount
		delta = decimal.Zero
	}

	switch {
	case delta.IsZero():
		return closeExact(reg, matched, sellTxn, amount)
	case delta.IsNegative():
		return closeWithLotSurplus(reg, matched, sellTxn, amount)
	default:
		return closeWithLotInsufficient(reg, matched, sellTxn, amount, delta, strategy)
	}
}

func orderCandidates(candidates []*Lot, strategy Strategy) {
	ascending := strategy == FIFO
	sort.SliceStable(candidates, func(i, j int) bool {
		if ascending {
			return candidates[i].PurchaseDate.Before(candidates[j].PurchaseDate)
		}
		return candidates[i].PurchaseDate.After(candidates[j].PurchaseDate)
	})
}

// isDust reports whether delta is negligible relative to amount and spot,
// per the §4.6 dust-rounding policy.
func isDust(delta, amount, spot decimal.Decimal) bool {
	if delta.IsZero() || amount.IsZero() {
		return delta.IsZero()
	}
	abs := delta.Abs()
	fracOK := abs.Div(amount).LessThan(dustFraction)
	absFiatOK := abs.Mul(spot).Abs().LessThan(dustAbsoluteFiat)
	return fracOK && absFiatOK
}

// closeExact handles Δ == 0: the matched lot's full amount is sold.
func closeExact(reg *Registry, matched *Lot, sellTxn txn.Transaction, amount decimal.Decimal) error {
	closed := matched.clone()
	closed.Close(sellTxn.Date, sellTxn.AmountFiat(), sellTxn.FeeFiat())
	reg.Replace(matched.ID, closed)
	return nil
}

// closeWithLotSurplus handles Δ < 0: the matched lot has more than the
// sell needs. It is split into a closed retained portion (matching the
// sell amount) and a still-open fragment.
func closeWithLotSurplus(reg *Registry, matched *Lot, sellTxn txn.Transaction, amount decimal.Decimal) error {
	retainFraction := amount.Div(matched.Amount)
	if retainFraction.GreaterThan(decimal.NewFromInt(1)) || retainFraction.IsNegative() {
		return errs.NewInvariantViolation("sell-matcher retain fraction out of range")
	}
	retained, fragment := matched.split(retainFraction)
	retained.Close(sellTxn.Date, sellTxn.AmountFiat(), sellTxn.FeeFiat())

	if fragment.Amount.LessThanOrEqual(decimal.Zero) {
		return errs.NewInvariantViolation("split produced non-positive fragment amount")
	}
	reg.Replace(matched.ID, retained, fragment)
	return nil
}

// closeWithLotInsufficient handles Δ > 0: the matched lot cannot cover the
// whole sell. It closes entirely (receiving the full sell fee, by
// convention) and the remainder recurses against the next candidate.
func closeWithLotInsufficient(reg *Registry, matched *Lot, sellTxn txn.Transaction, amount, delta decimal.Decimal, strategy Strategy) error {
	// Multiply before dividing so the matched share of the sale value is
	// exact whenever it can be (6000 * 5 / 6 == 5000).
	matchedValue := sellTxn.AmountFiat().Mul(matched.Amount).Div(amount)

	closed := matched.clone()
	closed.Close(sellTxn.Date, matchedValue, sellTxn.FeeFiat())
	reg.Replace(matched.ID, closed)

	remaining := txn.Transaction{
		Date:     sellTxn.Date,
		Asset:    sellTxn.Asset,
		Side:     txn.Sell,
		Amount:   delta,
		SpotFiat: sellTxn.SpotFiat,
		Fee:      decimal.Zero,
	}
	return MatchSell(reg, remaining, strategy)
}
