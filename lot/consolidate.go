package lot

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/errs"
)

// consolidateKey groups closed lots for §4.9 consolidation: same asset,
// same sale-date day, same wash/non-wash classification, same short/long
// classification.
type consolidateKey struct {
	ticker   string
	saleDay  string
	isWash   bool
	longTerm bool
}

// Consolidate groups reg's closed lots by (asset, sale-date day,
// wash/non-wash, short/long) into one synthetic lot per group, summing
// amounts and fiat fields. A group's purchase date collapses to the
// "Various Dates" sentinel if its members span more than one day. Open
// lots pass through unconsolidated.
//
// The pre- and post-consolidation aggregate net gain, proceeds, and
// disallowed loss must match within rounding; a divergence is a bug and
// is reported as an InvariantViolation rather than silently accepted.
func Consolidate(reg *Registry) (*Registry, error) {
	beforeNetGain := reg.NetGain()
	beforeProceeds := reg.Proceeds()
	beforeDisallowed := reg.DisallowedLoss()

	groups := make(map[consolidateKey][]*Lot)
	var order []consolidateKey
	for _, l := range reg.ClosedLots() {
		key := consolidateKey{
			ticker:   l.Asset.Ticker,
			saleDay:  l.SaleDate.Format("2006-01-02"),
			isWash:   l.IsWash(),
			longTerm: l.LongTerm(),
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], l)
	}

	open := reg.Open()
	for i, l := range open {
		open[i] = l.clone()
	}
	out := NewRegistry(open...)
	for _, key := range order {
		out.Add(consolidateGroup(groups[key]))
	}

	afterNetGain := out.NetGain()
	afterProceeds := out.Proceeds()
	afterDisallowed := out.DisallowedLoss()
	if !afterNetGain.Equal(beforeNetGain) {
		return nil, errs.NewInvariantViolation(fmt.Sprintf("consolidation changed net gain: %s -> %s", beforeNetGain, afterNetGain))
	}
	if !afterProceeds.Equal(beforeProceeds) {
		return nil, errs.NewInvariantViolation(fmt.Sprintf("consolidation changed proceeds: %s -> %s", beforeProceeds, afterProceeds))
	}
	if !afterDisallowed.Equal(beforeDisallowed) {
		return nil, errs.NewInvariantViolation(fmt.Sprintf("consolidation changed disallowed loss: %s -> %s", beforeDisallowed, afterDisallowed))
	}

	return out, nil
}

func consolidateGroup(group []*Lot) *Lot {
	first := group[0]

	amount := decimal.Zero
	purchaseCost := decimal.Zero
	purchaseFee := decimal.Zero
	saleValue := decimal.Zero
	saleFee := decimal.Zero
	additionToCost := decimal.Zero
	disallowedLoss := decimal.Zero

	multiDay := false
	for _, l := range group {
		amount = amount.Add(l.Amount)
		purchaseCost = purchaseCost.Add(l.PurchaseCostFiat)
		purchaseFee = purchaseFee.Add(l.PurchaseFeeFiat)
		saleValue = saleValue.Add(l.SaleValueFiat)
		saleFee = saleFee.Add(l.SaleFeeFiat)
		additionToCost = additionToCost.Add(l.Wash.AdditionToCostFiat)
		disallowedLoss = disallowedLoss.Add(l.Wash.DisallowedLossFiat)
		if l.PurchaseDate.Format("2006-01-02") != first.PurchaseDate.Format("2006-01-02") {
			multiDay = true
		}
	}

	purchaseDate := first.PurchaseDate
	if multiDay {
		purchaseDate = VariousDates()
	}

	out := &Lot{
		ID:               first.ID,
		Asset:            first.Asset,
		Amount:           amount,
		PurchaseDate:     purchaseDate,
		PurchaseCostFiat: purchaseCost,
		PurchaseFeeFiat:  purchaseFee,
	}
	out.Close(first.SaleDate, saleValue, saleFee)
	out.Wash.AdditionToCostFiat = additionToCost
	out.Wash.DisallowedLossFiat = disallowedLoss
	if first.IsWash() {
		out.Wash.TriggeredByID = first.Wash.TriggeredByID
	}
	if first.TriggersWash() {
		out.Wash.TriggersID = first.Wash.TriggersID
	}
	return out
}
