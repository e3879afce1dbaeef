// Package order models the raw two-asset trade as ingested (Order) and the
// splitter that decomposes it into a buy leg and a sell leg (txn.Transaction
// values) for the lot engine.
package order

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/asset"
	"github.com/gocryptotax/taxlots/errs"
	"github.com/gocryptotax/taxlots/txn"
)

// Order is a single two-asset trade exactly as it appears in an exchange
// export: Price is the price of one unit of Market1 denominated in Market2
// units (Kind == Buy means "bought Market1 using Market2").
type Order struct {
	Date        time.Time
	Market1     asset.Asset
	Market2     asset.Asset
	Kind        txn.Side
	Price       decimal.Decimal
	Amount      decimal.Decimal // in Market1 units
	Fee         decimal.Decimal
	FeeAsset    asset.Asset
	Spot1Fiat   decimal.Decimal
	Spot2Fiat   decimal.Decimal
	FeeSpotFiat decimal.Decimal
}

// RoundedAmount truncates Amount down to Market1's smallest unit.
func (o Order) RoundedAmount() decimal.Decimal {
	return roundToUnit(o.Amount, o.Market1.SmallestUnit())
}

// Total is the Market2-denominated value of the trade, truncated to
// Market2's smallest unit.
func (o Order) Total() decimal.Decimal {
	t := o.RoundedAmount().Mul(o.Price)
	return roundToUnit(t, o.Market2.SmallestUnit())
}

func roundToUnit(amount, unit decimal.Decimal) decimal.Decimal {
	if unit.IsZero() {
		return amount
	}
	units := amount.Div(unit).Truncate(0)
	return units.Mul(unit)
}

// FeeFiat is Fee valued at FeeSpotFiat.
func (o Order) FeeFiat() decimal.Decimal {
	return o.Fee.Mul(o.FeeSpotFiat)
}

// Market returns the "M1-M2" pair string.
func (o Order) Market() string {
	return fmt.Sprintf("%s-%s", o.Market1.Ticker, o.Market2.Ticker)
}

// Split decomposes the order into its buy leg and sell leg per §4.3: the
// fee is attached only to the leg whose asset the order's Kind names as
// the traded (non-fiat, by convention) side. fiat classifies which assets
// are cash rather than tracked positions, so Split can reject a
// fiat-for-fiat pair.
func (o Order) Split(fiat asset.FiatSet) (buy, sell txn.Transaction, err error) {
	if o.Market1.IsFiat(fiat) && o.Market2.IsFiat(fiat) {
		return txn.Transaction{}, txn.Transaction{}, errs.NewInvariantViolation("order has no non-fiat side: " + o.Market())
	}
	switch o.Kind {
	case txn.Buy:
		buy = txn.Transaction{
			Date: o.Date, Asset: o.Market1, Side: txn.Buy,
			Amount: o.RoundedAmount(), SpotFiat: o.Spot1Fiat,
			Fee: o.Fee, FeeAsset: o.FeeAsset, FeeSpotFiat: o.FeeSpotFiat,
		}
		sell = txn.Transaction{
			Date: o.Date, Asset: o.Market2, Side: txn.Sell,
			Amount: o.Total(), SpotFiat: o.Spot2Fiat,
		}
	case txn.Sell:
		buy = txn.Transaction{
			Date: o.Date, Asset: o.Market2, Side: txn.Buy,
			Amount: o.Total(), SpotFiat: o.Spot2Fiat,
		}
		sell = txn.Transaction{
			Date: o.Date, Asset: o.Market1, Side: txn.Sell,
			Amount: o.RoundedAmount(), SpotFiat: o.Spot1Fiat,
			Fee: o.Fee, FeeAsset: o.FeeAsset, FeeSpotFiat: o.FeeSpotFiat,
		}
	default:
		return txn.Transaction{}, txn.Transaction{}, fmt.Errorf("order kind must be BUY or SELL")
	}
	return buy, sell, nil
}

// Book is an ordered collection of Orders.
type Book struct {
	Orders []Order
}

// Sort returns a new Book sorted ascending by date, with (market, side)
// lexicographic order breaking ties, per §4.5/§5.
func (b Book) Sort() Book {
	out := make([]Order, len(b.Orders))
	copy(out, b.Orders)
	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if !a.Date.Equal(c.Date) {
			return a.Date.Before(c.Date)
		}
		if a.Market() != c.Market() {
			return a.Market() < c.Market()
		}
		return a.Kind.String() < c.Kind.String()
	})
	return Book{Orders: out}
}
