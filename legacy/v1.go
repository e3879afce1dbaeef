// Package legacy imports the v1 purchase/sale-pool format: separate
// tables with integer pool IDs and a precomputed disallowed-loss column,
// predating the opaque-UUID lot model.
package legacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/asset"
	"github.com/gocryptotax/taxlots/errs"
	"github.com/gocryptotax/taxlots/lot"
)

// V1PurchaseRow is one row of the legacy "EOY Purchase Pools" table.
type V1PurchaseRow struct {
	PoolID           int
	Asset            string
	Amount           decimal.Decimal
	PurchaseDate     time.Time
	AssetSpotPrice   decimal.Decimal
	FeeUSD           decimal.Decimal
	InitiatesWash    int // 0 means none; otherwise the triggered loss pool's legacy ID
	CostBasis        decimal.Decimal
	ModifiedCostBasis decimal.Decimal
}

// V1SaleRow is one row of the legacy "EOY Sale Pools" table.
type V1SaleRow struct {
	PoolID         int
	AssetSold      string
	Amount         decimal.Decimal
	PurchaseDate   time.Time
	CostBasis      decimal.Decimal
	SaleDate       time.Time
	Proceeds       decimal.Decimal
	FeeUSD         decimal.Decimal
	WashPoolID     int // 0 means none; otherwise the legacy ID of the replacement purchase
	DisallowedLoss decimal.Decimal
	HoldingPeriod  time.Duration // the *total* holding period, not yet a modifier
}

// idMap assigns a fresh UUID to each distinct legacy integer pool id, the
// way the source's clean_uuid/convert_v1_ids pass does, so cross
// references between the purchase and sale tables keep resolving after
// conversion.
type idMap map[int]uuid.UUID

func (m idMap) get(legacyID int) uuid.UUID {
	if legacyID == 0 {
		return uuid.Nil
	}
	if id, ok := m[legacyID]; ok {
		return id
	}
	id := uuid.New()
	m[legacyID] = id
	return id
}

// Import converts the legacy v1 tables into a lot.Registry, resolving
// assets against registry. Every purchase row is imported as an open lot
// and every sale row (which carries both purchase and sale information) as
// a closed lot, mirroring the source's load_from_v1_pools.
func Import(purchases []V1PurchaseRow, sales []V1SaleRow, registry asset.Registry) (*lot.Registry, error) {
	ids := make(idMap)

	reg := lot.NewRegistry()

	for _, p := range purchases {
		a, err := registry.Lookup(p.Asset)
		if err != nil {
			return nil, err
		}
		l := lot.NewOpen(a, p.Amount, p.AssetSpotPrice.Mul(p.Amount), p.FeeUSD, p.PurchaseDate)
		l.ID = ids.get(p.PoolID)
		if p.InitiatesWash != 0 {
			l.Wash.TriggersID = uuid.NullUUID{UUID: ids.get(p.InitiatesWash), Valid: true}
			l.Wash.AdditionToCostFiat = p.ModifiedCostBasis.Sub(p.CostBasis)
		}
		reg.Add(l)
	}

	for _, s := range sales {
		a, err := registry.Lookup(s.AssetSold)
		if err != nil {
			return nil, err
		}
		l := lot.NewOpen(a, s.Amount, s.CostBasis, decimal.Zero, s.PurchaseDate)
		l.ID = ids.get(s.PoolID)
		l.Close(s.SaleDate, s.Proceeds.Add(s.FeeUSD), s.FeeUSD)

		if s.WashPoolID != 0 {
			l.Wash.TriggeredByID = uuid.NullUUID{UUID: ids.get(s.WashPoolID), Valid: true}
			l.Wash.DisallowedLossFiat = s.DisallowedLoss
			// v1's HoldingPeriod is the *total* holding period; convert to
			// a modifier by subtracting the lot's own nominal duration,
			// exactly as the source's post-import correction loop does.
			l.Wash.HoldingPeriodModifier = s.HoldingPeriod - s.SaleDate.Sub(s.PurchaseDate)
		}
		reg.Add(l)
	}

	if reg.IndexOf(uuid.Nil) >= 0 {
		return nil, errs.NewInvariantViolation("legacy import produced a nil lot id")
	}
	return reg, nil
}
