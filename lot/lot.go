// Package lot implements the tax-lot engine: the Lot and Wash types, the
// Registry that holds and filters them, the sell matcher, the wash-sale
// fixed-point resolver, reporting projections, and consolidation.
package lot

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/asset"
)

// longTermThreshold is the holding period at which a gain becomes long-term.
const longTermThreshold = 366 * 24 * time.Hour

// VariousDatesNanos is the sentinel nanosecond value a time.Time carries
// when it stands for "Various Dates" rather than a real instant, the way
// the source's pool.py used a reserved microsecond value on Python
// datetimes. time.Time has no direct microsecond field in Go, so the
// marker lives in Nanosecond scaled up by 1000.
const VariousDatesNanos = 123456000

// VariousDates returns the sentinel time value standing in for a
// collapsed date range.
func VariousDates() time.Time {
	return time.Date(1, 1, 1, 0, 0, 0, VariousDatesNanos, time.UTC)
}

// IsVariousDates reports whether t is the "Various Dates" sentinel.
func IsVariousDates(t time.Time) bool {
	return t.Nanosecond() == VariousDatesNanos
}

// Wash holds the wash-sale cross-reference metadata for a lot. The zero
// value means the lot is not involved in any wash pairing.
type Wash struct {
	// TriggeredByID is the id of the replacement purchase that disallowed
	// this lot's loss. Set only on the seller (loss) side.
	TriggeredByID uuid.NullUUID
	// TriggersID is the id of the loss lot this lot's purchase absorbed.
	// Set only on the buyer (replacement) side.
	TriggersID uuid.NullUUID
	// AdditionToCostFiat is the disallowed loss rolled into this lot's cost
	// basis. Buyer side only.
	AdditionToCostFiat decimal.Decimal
	// DisallowedLossFiat is the magnitude of this lot's loss that was
	// disallowed. Seller side only.
	DisallowedLossFiat decimal.Decimal
	// HoldingPeriodModifier is added to this lot's computed holding period.
	HoldingPeriodModifier time.Duration
}

func (w Wash) copy() Wash { return w }

// Lot is an open or closed tax lot: a parcel of an asset acquired in one
// purchase, tracked until sold (possibly across multiple partial sales via
// splitting).
type Lot struct {
	ID    uuid.UUID
	Asset asset.Asset

	Amount            decimal.Decimal
	PurchaseDate      time.Time
	PurchaseCostFiat  decimal.Decimal
	PurchaseFeeFiat   decimal.Decimal

	// sale fields are zero-valued/unset until the lot is closed.
	closed          bool
	SaleDate        time.Time
	SaleValueFiat   decimal.Decimal
	SaleFeeFiat     decimal.Decimal

	Wash Wash
}

// NewOpen creates a fresh open lot with a new id.
func NewOpen(a asset.Asset, amount, purchaseCostFiat, purchaseFeeFiat decimal.Decimal, purchaseDate time.Time) *Lot {
	return &Lot{
		ID:               uuid.New(),
		Asset:            a,
		Amount:           amount,
		PurchaseDate:     purchaseDate,
		PurchaseCostFiat: purchaseCostFiat,
		PurchaseFeeFiat:  purchaseFeeFiat,
	}
}

// Closed reports whether the lot has been sold.
func (l *Lot) Closed() bool { return l.closed }

// Open reports whether the lot is still unsold.
func (l *Lot) Open() bool { return !l.closed }

// Close records the sale side of the lot.
func (l *Lot) Close(saleDate time.Time, saleValueFiat, saleFeeFiat decimal.Decimal) {
	l.closed = true
	l.SaleDate = saleDate
	l.SaleValueFiat = saleValueFiat
	l.SaleFeeFiat = saleFeeFiat
}

// CostBasis is the lot's total cost: purchase cost + purchase fee + any
// disallowed loss rolled in from a wash pairing.
func (l *Lot) CostBasis() decimal.Decimal {
	return l.PurchaseCostFiat.Add(l.PurchaseFeeFiat).Add(l.Wash.AdditionToCostFiat)
}

// Proceeds is sale value net of sale fee. Zero for an open lot.
func (l *Lot) Proceeds() decimal.Decimal {
	if !l.closed {
		return decimal.Zero
	}
	return l.SaleValueFiat.Sub(l.SaleFeeFiat)
}

// HoldingPeriod is the time the position was held, including any wash
// carry-over. Zero for an open lot.
func (l *Lot) HoldingPeriod() time.Duration {
	if !l.closed {
		return 0
	}
	return l.SaleDate.Sub(l.PurchaseDate) + l.Wash.HoldingPeriodModifier
}

// LongTerm reports whether the holding period qualifies for long-term
// capital-gains treatment.
func (l *Lot) LongTerm() bool {
	return l.closed && l.HoldingPeriod() >= longTermThreshold
}

// NetGain is proceeds minus cost basis, with any disallowed loss added
// back (since a disallowed loss is not realized). Zero for an open lot.
func (l *Lot) NetGain() decimal.Decimal {
	if !l.closed {
		return decimal.Zero
	}
	return l.Proceeds().Sub(l.CostBasis()).Add(l.Wash.DisallowedLossFiat)
}

// IsWash reports whether this lot is the seller side of an executed wash
// pairing.
func (l *Lot) IsWash() bool {
	return l.Wash.TriggeredByID.Valid
}

// TriggersWash reports whether this lot is the buyer (replacement) side of
// an executed wash pairing.
func (l *Lot) TriggersWash() bool {
	return l.Wash.TriggersID.Valid
}

// PotentialWash reports whether this closed lot is a not-yet-resolved
// candidate for wash-sale matching: a fungible asset sold at a loss that
// has not already been paired.
func (l *Lot) PotentialWash() bool {
	return l.closed && l.Asset.Fungible && l.NetGain().IsNegative() && !l.Wash.TriggeredByID.Valid
}

// WithinWashWindow reports whether this lot's purchase date is within the
// ±31-day wash-sale window of the given sale date and not earlier than it,
// per the Design Notes' resolved Open Question 1.
func (l *Lot) WithinWashWindow(saleDate time.Time) bool {
	const washWindow = 31 * 24 * time.Hour
	delta := l.PurchaseDate.Sub(saleDate)
	if delta < 0 {
		delta = -delta
	}
	return delta < washWindow && !l.PurchaseDate.Before(saleDate)
}

// clone returns a deep-enough copy of the lot (new pointer, same id) for
// in-place registry mutation via replacement.
func (l *Lot) clone() *Lot {
	c := *l
	c.Wash = l.Wash.copy()
	return &c
}

// split divides the lot into a retained portion of the given fraction and
// a fragment of the remainder. The retained portion keeps l's identity;
// the fragment receives a fresh id. Both portions' fiat fields scale
// proportionally to amount, so they sum back to the original within
// rounding. split never mutates l; it returns two new lots.
func (l *Lot) split(retainedFraction decimal.Decimal) (retained, fragment *Lot) {
	fragmentFraction := decimal.NewFromInt(1).Sub(retainedFraction)

	retained = l.clone()
	retained.Amount = l.Amount.Mul(retainedFraction)
	retained.PurchaseCostFiat = l.PurchaseCostFiat.Mul(retainedFraction)
	retained.PurchaseFeeFiat = l.PurchaseFeeFiat.Mul(retainedFraction)
	retained.Wash.AdditionToCostFiat = l.Wash.AdditionToCostFiat.Mul(retainedFraction)
	retained.Wash.DisallowedLossFiat = l.Wash.DisallowedLossFiat.Mul(retainedFraction)
	if l.closed {
		retained.SaleValueFiat = l.SaleValueFiat.Mul(retainedFraction)
		retained.SaleFeeFiat = l.SaleFeeFiat.Mul(retainedFraction)
	}

	fragment = l.clone()
	fragment.ID = uuid.New()
	fragment.Amount = l.Amount.Mul(fragmentFraction)
	fragment.PurchaseCostFiat = l.PurchaseCostFiat.Mul(fragmentFraction)
	fragment.PurchaseFeeFiat = l.PurchaseFeeFiat.Mul(fragmentFraction)
	fragment.Wash.AdditionToCostFiat = l.Wash.AdditionToCostFiat.Mul(fragmentFraction)
	fragment.Wash.DisallowedLossFiat = l.Wash.DisallowedLossFiat.Mul(fragmentFraction)
	if l.closed {
		fragment.SaleValueFiat = l.SaleValueFiat.Mul(fragmentFraction)
		fragment.SaleFeeFiat = l.SaleFeeFiat.Mul(fragmentFraction)
	}

	return retained, fragment
}
