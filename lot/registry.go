package lot

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// SortKey selects which date field Registry.Sort orders by.
type SortKey int

const (
	ByPurchaseDate SortKey = iota
	BySaleDate
	ByAsset
)

// Registry is an indexable, filterable collection of lots. Mutation
// proceeds by whole-slice replacement; no lot is ever shared between two
// registries.
type Registry struct {
	lots []*Lot
}

// NewRegistry builds a Registry from the given lots, in order.
func NewRegistry(lots ...*Lot) *Registry {
	return &Registry{lots: append([]*Lot{}, lots...)}
}

// Len returns the number of lots in the registry.
func (r *Registry) Len() int { return len(r.lots) }

// All returns the lots in registry order. The returned slice is owned by
// the registry; callers must not retain it across a mutation.
func (r *Registry) All() []*Lot { return r.lots }

// Add appends lots to the registry.
func (r *Registry) Add(lots ...*Lot) {
	r.lots = append(r.lots, lots...)
}

// IndexOf returns the index of the lot with the given id, or -1.
func (r *Registry) IndexOf(id uuid.UUID) int {
	for i, l := range r.lots {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the lot with the given id, or nil.
func (r *Registry) Get(id uuid.UUID) *Lot {
	if i := r.IndexOf(id); i >= 0 {
		return r.lots[i]
	}
	return nil
}

// Replace swaps out the lot with oldID for the given replacement lots
// (1 for a close-in-place, 2 for a split).
func (r *Registry) Replace(oldID uuid.UUID, replacements ...*Lot) {
	i := r.IndexOf(oldID)
	if i < 0 {
		return
	}
	tail := append([]*Lot{}, r.lots[i+1:]...)
	r.lots = append(r.lots[:i], replacements...)
	r.lots = append(r.lots, tail...)
}

// Open returns the open lots, preserving order.
func (r *Registry) Open() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Open() })
}

// ClosedLots returns the closed lots, preserving order.
func (r *Registry) ClosedLots() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Closed() })
}

// ForAsset returns lots of the given asset ticker.
func (r *Registry) ForAsset(ticker string) []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Asset.Ticker == ticker })
}

// OpenForAsset returns open lots of the given asset ticker.
func (r *Registry) OpenForAsset(ticker string) []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Open() && l.Asset.Ticker == ticker })
}

// Shorts returns closed short-term lots.
func (r *Registry) Shorts() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Closed() && !l.LongTerm() })
}

// Longs returns closed long-term lots.
func (r *Registry) Longs() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Closed() && l.LongTerm() })
}

// Washes returns closed lots that are the seller side of an executed wash.
func (r *Registry) Washes() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.IsWash() })
}

// NotWashes returns closed lots that are not the seller side of a wash.
func (r *Registry) NotWashes() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Closed() && !l.IsWash() })
}

// PotentialWashes returns closed lots eligible for wash-sale matching.
func (r *Registry) PotentialWashes() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.PotentialWash() })
}

// NFTs returns lots of non-fungible assets.
func (r *Registry) NFTs() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return !l.Asset.Fungible })
}

// Tokens returns lots of fungible assets.
func (r *Registry) Tokens() []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Asset.Fungible })
}

// ByYear returns closed lots whose sale date falls in the given year.
func (r *Registry) ByYear(year int) []*Lot {
	return lo.Filter(r.lots, func(l *Lot, _ int) bool { return l.Closed() && l.SaleDate.Year() == year })
}

// Tickers returns the distinct asset tickers present, in first-seen order.
func (r *Registry) Tickers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, l := range r.lots {
		if !seen[l.Asset.Ticker] {
			seen[l.Asset.Ticker] = true
			out = append(out, l.Asset.Ticker)
		}
	}
	return out
}

// Proceeds sums Proceeds() across closed lots, rounded to 2 decimals.
func (r *Registry) Proceeds() decimal.Decimal { return sumRounded(r.ClosedLots(), (*Lot).Proceeds) }

// CostBasis sums CostBasis() across closed lots, rounded to 2 decimals.
func (r *Registry) CostBasis() decimal.Decimal {
	return sumRounded(r.ClosedLots(), func(l *Lot) decimal.Decimal { return l.CostBasis() })
}

// DisallowedLoss sums DisallowedLossFiat across closed lots, rounded to 2 decimals.
func (r *Registry) DisallowedLoss() decimal.Decimal {
	return sumRounded(r.ClosedLots(), func(l *Lot) decimal.Decimal { return l.Wash.DisallowedLossFiat })
}

// NetGain sums NetGain() across closed lots, rounded to 2 decimals.
func (r *Registry) NetGain() decimal.Decimal { return sumRounded(r.ClosedLots(), (*Lot).NetGain) }

func sumRounded(lots []*Lot, f func(*Lot) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(f(l))
	}
	return total.Round(2)
}

// IsEmpty reports whether the registry holds no lots.
func (r *Registry) IsEmpty() bool { return len(r.lots) == 0 }

// Sort returns a new Registry with lots ordered by the given key. Sorting
// by sale date places open lots after closed ones when ascending (open
// lots have no sale date to order by).
func (r *Registry) Sort(key SortKey, ascending bool) *Registry {
	out := make([]*Lot, len(r.lots))
	for i, l := range r.lots {
		out[i] = l.clone()
	}
	less := func(i, j int) bool {
		a, b := out[i], out[j]
		switch key {
		case ByPurchaseDate:
			return dateBefore(a.PurchaseDate, b.PurchaseDate, ascending)
		case BySaleDate:
			if a.Open() != b.Open() {
				return b.Open() // closed sorts before open
			}
			if a.Open() && b.Open() {
				return false
			}
			return dateBefore(a.SaleDate, b.SaleDate, ascending)
		case ByAsset:
			if ascending {
				return a.Asset.Ticker < b.Asset.Ticker
			}
			return a.Asset.Ticker > b.Asset.Ticker
		default:
			return false
		}
	}
	sort.SliceStable(out, less)
	return &Registry{lots: out}
}

func dateBefore(a, b time.Time, ascending bool) bool {
	if ascending {
		return a.Before(b)
	}
	return a.After(b)
}
