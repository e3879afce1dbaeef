package lot

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/errs"
)

// ExecuteWashes runs the §4.7 fixed-point wash-sale resolution pass over
// reg until no potential wash has a qualifying replacement purchase.
func ExecuteWashes(reg *Registry) error {
	for {
		potential := reg.PotentialWashes()
		if len(potential) == 0 {
			return nil
		}
		sort.SliceStable(potential, func(i, j int) bool {
			return potential[i].SaleDate.Before(potential[j].SaleDate)
		})

		matchedAny := false
		for _, lossLot := range potential {
			trigger := findWashMatch(reg, lossLot)
			if trigger == nil {
				continue
			}
			if err := executeWash(reg, lossLot, trigger); err != nil {
				return err
			}
			matchedAny = true
			break // restart the outer loop against the freshly mutated registry
		}
		if !matchedAny {
			return nil
		}
	}
}

// findWashMatch locates the first lot of the same asset whose purchase is
// within the wash window of lossLot's sale, on or after the sale date,
// and not already paired as a replacement.
func findWashMatch(reg *Registry, lossLot *Lot) *Lot {
	candidates := reg.ForAsset(lossLot.Asset.Ticker)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].PurchaseDate.Before(candidates[j].PurchaseDate)
	})
	for _, c := range candidates {
		if c.ID == lossLot.ID {
			continue
		}
		if c.Wash.TriggersID.Valid {
			continue
		}
		if !c.WithinWashWindow(lossLot.SaleDate) {
			continue
		}
		return c
	}
	return nil
}

// executeWash pairs lossLot (the seller side, a realized loss) with
// trigger (the buyer side, the replacement purchase), splitting whichever
// side is larger so the pairing is 1:1 at lot granularity, then sets the
// cross-reference wash metadata on both sides.
func executeWash(reg *Registry, lossLot, trigger *Lot) error {
	lossAmount := lossLot.Amount
	triggerAmount := trigger.Amount
	delta := triggerAmount.Sub(lossAmount)

	if isDust(delta, lossAmount, lossLot.saleSpot()) {
		delta = decimal.Zero
	}

	var pairedLoss, pairedTrigger *Lot

	switch {
	case delta.IsZero():
		pairedLoss = lossLot.clone()
		pairedTrigger = trigger.clone()

	case delta.IsPositive():
		// Replacement purchase is larger than the loss: split the
		// replacement, keep the matching-sized portion paired.
		retainFraction := lossAmount.Div(triggerAmount)
		retained, fragment := trigger.split(retainFraction)
		if fragment.Amount.LessThanOrEqual(decimal.Zero) {
			return errs.NewInvariantViolation("wash split produced non-positive fragment amount")
		}
		reg.Replace(trigger.ID, retained, fragment)
		pairedLoss = lossLot.clone()
		pairedTrigger = retained

	default:
		// Loss is larger than the replacement: split the loss lot, keep
		// the matching-sized portion paired; the remainder re-enters the
		// fixed point and may pair with a further replacement.
		retainFraction := triggerAmount.Div(lossAmount)
		retained, fragment := lossLot.split(retainFraction)
		if fragment.Amount.LessThanOrEqual(decimal.Zero) {
			return errs.NewInvariantViolation("wash split produced non-positive fragment amount")
		}
		reg.Replace(lossLot.ID, retained, fragment)
		pairedLoss = retained
		pairedTrigger = trigger.clone()
	}

	lossMagnitude := pairedLoss.NetGain().Abs()
	pairedLoss.Wash.TriggeredByID.UUID = pairedTrigger.ID
	pairedLoss.Wash.TriggeredByID.Valid = true
	pairedLoss.Wash.DisallowedLossFiat = lossMagnitude

	pairedTrigger.Wash.TriggersID.UUID = pairedLoss.ID
	pairedTrigger.Wash.TriggersID.Valid = true
	pairedTrigger.Wash.AdditionToCostFiat = pairedTrigger.Wash.AdditionToCostFiat.Add(lossMagnitude)
	pairedTrigger.Wash.HoldingPeriodModifier += pairedLoss.HoldingPeriod()

	if !pairedLoss.NetGain().Round(2).IsZero() {
		return errs.NewInvariantViolation("wash pairing failed to zero seller net gain")
	}

	reg.Replace(pairedLoss.ID, pairedLoss)
	reg.Replace(pairedTrigger.ID, pairedTrigger)
	return nil
}

// saleSpot returns the per-unit fiat value implied by the sale, used only
// for the wash dust-rounding check.
func (l *Lot) saleSpot() decimal.Decimal {
	if l.Amount.IsZero() {
		return decimal.Zero
	}
	return l.SaleValueFiat.Div(l.Amount)
}
