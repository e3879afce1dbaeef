package asset

import (
	"strings"

	"github.com/gocryptotax/taxlots/errs"
	"github.com/samber/lo"
)

// Registry is an insertion-ordered collection of assets, keyed case
// insensitively by both ticker and name. On a duplicate ticker the oldest
// entry wins, matching the source's registry-concatenation semantics.
type Registry struct {
	assets []Asset
	byKey  map[string]int // ticker/name (upper) -> index into assets
}

// NewRegistry builds a Registry from the given assets, in order.
func NewRegistry(assets ...Asset) Registry {
	r := Registry{byKey: make(map[string]int, len(assets)*2)}
	for _, a := range assets {
		r.add(a)
	}
	return r
}

func (r *Registry) add(a Asset) {
	tKey := strings.ToUpper(a.Ticker)
	nKey := strings.ToUpper(a.Name)
	if _, exists := r.byKey[tKey]; exists {
		return // oldest entry wins
	}
	idx := len(r.assets)
	r.assets = append(r.assets, a)
	r.byKey[tKey] = idx
	if nKey != tKey {
		if _, exists := r.byKey[nKey]; !exists {
			r.byKey[nKey] = idx
		}
	}
}

// Len returns the number of distinct assets in the registry.
func (r Registry) Len() int { return len(r.assets) }

// All returns the assets in insertion order.
func (r Registry) All() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Concat returns a new registry with other's assets appended after r's,
// preserving order; duplicate tickers keep r's entry.
func (r Registry) Concat(other Registry) Registry {
	out := NewRegistry(r.assets...)
	for _, a := range other.assets {
		out.add(a)
	}
	return out
}

// Lookup resolves a ticker or name (case-insensitively) to its Asset.
func (r Registry) Lookup(key string) (Asset, error) {
	idx, ok := r.byKey[strings.ToUpper(key)]
	if !ok {
		return Asset{}, errs.NewAssetNotFound(key)
	}
	return r.assets[idx], nil
}

// Tickers returns the set of tickers the registry holds, in insertion order.
func (r Registry) Tickers() []string {
	return lo.Map(r.assets, func(a Asset, _ int) string { return a.Ticker })
}

// NFTs returns the subset of non-fungible assets.
func (r Registry) NFTs() []Asset {
	return lo.Filter(r.assets, func(a Asset, _ int) bool { return !a.Fungible })
}

// Fungible returns the subset of fungible assets.
func (r Registry) Fungible() []Asset {
	return lo.Filter(r.assets, func(a Asset, _ int) bool { return a.Fungible })
}

// Fiat returns the subset of assets whose ticker is in the given fiat set.
func (r Registry) Fiat(fiat FiatSet) []Asset {
	return lo.Filter(r.assets, func(a Asset, _ int) bool { return a.IsFiat(fiat) })
}

// FiatSet is a case-insensitive set of fiat tickers (USD, EUR, GBP, ...).
type FiatSet map[string]struct{}

// NewFiatSet builds a FiatSet from a list of tickers.
func NewFiatSet(tickers ...string) FiatSet {
	s := make(FiatSet, len(tickers))
	for _, t := range tickers {
		s[strings.ToUpper(t)] = struct{}{}
	}
	return s
}

// Contains reports whether ticker (case-insensitively) is a fiat currency.
func (s FiatSet) Contains(ticker string) bool {
	_, ok := s[strings.ToUpper(ticker)]
	return ok
}
