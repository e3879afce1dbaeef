package order

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/asset"
	"github.com/gocryptotax/taxlots/errs"
	"github.com/gocryptotax/taxlots/txn"
)

// csvHeader is the column order LoadCSV expects, one row per order.
var csvHeader = []string{
	"date", "market", "type", "price", "amount", "fee", "fee_asset",
	"spot_1_fiat", "spot_2_fiat", "fee_spot_fiat",
}

// LoadCSV reads a §6.1 orderbook CSV from path, resolving assets against
// registry. A bare ticker in the market column is paired with defaultFiat.
// Spot prices are never back-filled from a live price feed (Non-goals,
// §1): a blank spot column fails with IncorrectPoolFormat.
func LoadCSV(path string, registry asset.Registry, defaultFiat string) (Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return Book{}, fmt.Errorf("opening orderbook %s: %w", path, err)
	}
	defer f.Close()
	return parseCSV(f, registry, defaultFiat)
}

func parseCSV(r io.Reader, registry asset.Registry, defaultFiat string) (Book, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return Book{}, errs.NewIncorrectPoolFormat("malformed CSV: " + err.Error())
	}
	if len(rows) == 0 {
		return Book{}, nil
	}
	header := rows[0]
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, want := range csvHeader {
		if _, ok := col[want]; !ok {
			return Book{}, errs.NewIncorrectPoolFormat("missing column " + want)
		}
	}

	var orders []Order
	for _, row := range rows[1:] {
		o, err := parseRow(row, col, registry, defaultFiat)
		if err != nil {
			return Book{}, err
		}
		orders = append(orders, o)
	}
	return Book{Orders: orders}, nil
}

func parseRow(row []string, col map[string]int, registry asset.Registry, defaultFiat string) (Order, error) {
	get := func(name string) string { return strings.TrimSpace(row[col[name]]) }

	date, err := time.Parse("2006-01-02T15:04:05Z", get("date"))
	if err != nil {
		date, err = time.Parse("2006-01-02", get("date"))
	}
	if err != nil {
		return Order{}, errs.NewIncorrectPoolFormat("unparsable date: " + get("date"))
	}
	date = date.UTC()

	m1tick, m2tick := splitMarket(get("market"), defaultFiat)
	m1, err := registry.Lookup(m1tick)
	if err != nil {
		return Order{}, err
	}
	m2, err := registry.Lookup(m2tick)
	if err != nil {
		return Order{}, err
	}

	kind, err := txn.SideFromString(get("type"))
	if err != nil {
		return Order{}, errs.NewIncorrectPoolFormat(err.Error())
	}

	price, err := parseDecimal(get("price"))
	if err != nil {
		return Order{}, err
	}
	amount, err := parseDecimal(get("amount"))
	if err != nil {
		return Order{}, err
	}
	fee, err := parseDecimal(get("fee"))
	if err != nil {
		return Order{}, err
	}
	spot1, err := parseDecimal(get("spot_1_fiat"))
	if err != nil {
		return Order{}, err
	}
	spot2, err := parseDecimal(get("spot_2_fiat"))
	if err != nil {
		return Order{}, err
	}
	feeSpot, err := parseDecimal(get("fee_spot_fiat"))
	if err != nil {
		return Order{}, err
	}

	feeAssetTick := get("fee_asset")
	if feeAssetTick == "" {
		feeAssetTick = defaultFiat
	}
	feeAsset, err := registry.Lookup(feeAssetTick)
	if err != nil {
		return Order{}, err
	}

	return Order{
		Date: date, Market1: m1, Market2: m2, Kind: kind,
		Price: price, Amount: amount, Fee: fee, FeeAsset: feeAsset,
		Spot1Fiat: spot1, Spot2Fiat: spot2, FeeSpotFiat: feeSpot,
	}, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, errs.NewIncorrectPoolFormat("missing required numeric field")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errs.NewIncorrectPoolFormat("unparsable number: " + s)
	}
	return d, nil
}

// splitMarket splits "A-B" into ("A","B"), or treats a bare "A" as "A-<defaultFiat>".
func splitMarket(market, defaultFiat string) (string, string) {
	if i := strings.IndexByte(market, '-'); i >= 0 {
		return market[:i], market[i+1:]
	}
	return market, defaultFiat
}

// aggregateKey groups orders for same-day/same-market/same-side/same-fee-asset merging.
type aggregateKey struct {
	day      string
	market   string
	kind     txn.Side
	feeAsset string
}

// Aggregate merges same-day, same-market, same-side, same-fee-asset orders:
// amounts and fees sum; price and spots become amount-weighted averages.
// This satisfies the §6.1 ingest precondition the core assumes has already
// been applied.
func (b Book) Aggregate() Book {
	groups := make(map[aggregateKey][]Order)
	var order []aggregateKey
	for _, o := range b.Orders {
		key := aggregateKey{
			day:      o.Date.Format("2006-01-02"),
			market:   o.Market(),
			kind:     o.Kind,
			feeAsset: o.FeeAsset.Ticker,
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], o)
	}

	merged := make([]Order, 0, len(order))
	for _, key := range order {
		merged = append(merged, mergeGroup(groups[key]))
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return Book{Orders: merged}
}

func mergeGroup(group []Order) Order {
	if len(group) == 1 {
		return group[0]
	}
	totalAmount := decimal.Zero
	totalFee := decimal.Zero
	weightedPrice := decimal.Zero
	weightedSpot1 := decimal.Zero
	weightedSpot2 := decimal.Zero
	weightedFeeSpot := decimal.Zero
	for _, o := range group {
		totalAmount = totalAmount.Add(o.Amount)
		totalFee = totalFee.Add(o.Fee)
		weightedPrice = weightedPrice.Add(o.Price.Mul(o.Amount))
		weightedSpot1 = weightedSpot1.Add(o.Spot1Fiat.Mul(o.Amount))
		weightedSpot2 = weightedSpot2.Add(o.Spot2Fiat.Mul(o.Amount))
		weightedFeeSpot = weightedFeeSpot.Add(o.FeeSpotFiat.Mul(o.Amount))
	}
	out := group[0]
	out.Amount = totalAmount
	out.Fee = totalFee
	if !totalAmount.IsZero() {
		out.Price = weightedPrice.Div(totalAmount)
		out.Spot1Fiat = weightedSpot1.Div(totalAmount)
		out.Spot2Fiat = weightedSpot2.Div(totalAmount)
		out.FeeSpotFiat = weightedFeeSpot.Div(totalAmount)
	}
	return out
}
