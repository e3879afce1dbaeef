package lot

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// formatDate formats a date with layout, or returns "Various Dates" for the
// consolidation sentinel.
func formatDate(t time.Time, layout string) string {
	if IsVariousDates(t) {
		return "Various Dates"
	}
	return t.Format(layout)
}

// SalesReportRow is one row of the internal sales-report projection.
type SalesReportRow struct {
	Ticker         string
	PurchaseDate   string
	SaleDate       string
	Amount         decimal.Decimal
	Proceeds       decimal.Decimal
	CostBasis      decimal.Decimal
	HoldingDays    int64
	Term           string
	Wash           string
	DisallowedLoss decimal.Decimal
	NetGain        decimal.Decimal
}

// SalesReport projects the registry's closed lots to sales-report rows,
// sorted by sale date ascending.
func SalesReport(reg *Registry) []SalesReportRow {
	closed := append([]*Lot{}, reg.ClosedLots()...)
	sortBySaleDate(closed)

	rows := make([]SalesReportRow, 0, len(closed))
	for _, l := range closed {
		term := "SHORT"
		if l.LongTerm() {
			term = "LONG"
		}
		wash := ""
		if l.IsWash() {
			wash = "W"
		}
		rows = append(rows, SalesReportRow{
			Ticker:         l.Asset.Ticker,
			PurchaseDate:   formatDate(l.PurchaseDate, "2006/01/02"),
			SaleDate:       formatDate(l.SaleDate, "2006/01/02"),
			Amount:         l.Amount,
			Proceeds:       l.Proceeds().Round(2),
			CostBasis:      l.CostBasis().Round(2),
			HoldingDays:    int64(l.HoldingPeriod() / (24 * time.Hour)),
			Term:           term,
			Wash:           wash,
			DisallowedLoss: l.Wash.DisallowedLossFiat.Round(2),
			NetGain:        l.NetGain().Round(2),
		})
	}
	return rows
}

// WriteSalesReportCSV writes rows to w in the sales-report CSV schema.
func WriteSalesReportCSV(w io.Writer, rows []SalesReportRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	header := []string{
		"Ticker", "Purchase Date", "Sale Date", "Amount", "Proceeds",
		"Cost Basis", "Holding Days", "Term", "Wash", "Disallowed Loss", "Net Gain",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Ticker, r.PurchaseDate, r.SaleDate, r.Amount.String(),
			r.Proceeds.String(), r.CostBasis.String(),
			decimal.NewFromInt(r.HoldingDays).String(), r.Term, r.Wash,
			r.DisallowedLoss.String(), r.NetGain.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Form8949Row is one row of the IRS Form 8949 projection.
type Form8949Row struct {
	Description    string
	Amount         decimal.Decimal
	Acquired       string
	Sold           string
	Proceeds       decimal.Decimal
	CostBasis      decimal.Decimal
	AdjustmentCode string
	Adjustment     decimal.Decimal
	Gain           decimal.Decimal
}

// Form8949 projects the registry's closed lots to Form 8949 rows, sorted
// by sale date ascending. Dates use the MM/DD/YYYY layout the form requires.
func Form8949(reg *Registry) []Form8949Row {
	closed := append([]*Lot{}, reg.ClosedLots()...)
	sortBySaleDate(closed)

	rows := make([]Form8949Row, 0, len(closed))
	for _, l := range closed {
		code := ""
		adjustment := decimal.Zero
		if l.IsWash() {
			code = "W"
			adjustment = l.Wash.DisallowedLossFiat.Round(2)
		}
		rows = append(rows, Form8949Row{
			Description:    l.Amount.String() + " " + l.Asset.Ticker,
			Amount:         l.Amount,
			Acquired:       formatDate(l.PurchaseDate, "01/02/2006"),
			Sold:           formatDate(l.SaleDate, "01/02/2006"),
			Proceeds:       l.Proceeds().Round(2),
			CostBasis:      l.CostBasis().Round(2),
			AdjustmentCode: code,
			Adjustment:     adjustment,
			Gain:           l.NetGain().Round(2),
		})
	}
	return rows
}

// WriteForm8949CSV writes rows to w in the Form 8949 CSV schema.
func WriteForm8949CSV(w io.Writer, rows []Form8949Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	header := []string{
		"Description", "Amount", "Date Acquired (Mo., day, yr.)",
		"Date Sold (Mo., day, yr.)", "Proceeds", "Cost Basis",
		"Code", "Adjustment", "Gain or (Loss)",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Description, r.Amount.String(), r.Acquired, r.Sold,
			r.Proceeds.String(), r.CostBasis.String(), r.AdjustmentCode,
			r.Adjustment.String(), r.Gain.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// YearSummary is the short/long gain total for one filing year, ported
// from the teacher's PrintTaxableGains per-year breakdown.
type YearSummary struct {
	Year           int
	ShortTermGain  decimal.Decimal
	LongTermGain   decimal.Decimal
}

// YearSummaries groups closed lots by sale year and sums short/long gain.
func YearSummaries(reg *Registry) []YearSummary {
	byYear := make(map[int]*YearSummary)
	var years []int
	for _, l := range reg.ClosedLots() {
		y := l.SaleDate.Year()
		s, ok := byYear[y]
		if !ok {
			s = &YearSummary{Year: y}
			byYear[y] = s
			years = append(years, y)
		}
		if l.LongTerm() {
			s.LongTermGain = s.LongTermGain.Add(l.NetGain())
		} else {
			s.ShortTermGain = s.ShortTermGain.Add(l.NetGain())
		}
	}
	sortInts(years)
	out := make([]YearSummary, 0, len(years))
	for _, y := range years {
		s := byYear[y]
		s.ShortTermGain = s.ShortTermGain.Round(2)
		s.LongTermGain = s.LongTermGain.Round(2)
		out = append(out, *s)
	}
	return out
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func sortBySaleDate(lots []*Lot) {
	for i := 1; i < len(lots); i++ {
		for j := i; j > 0 && lots[j-1].SaleDate.After(lots[j].SaleDate); j-- {
			lots[j-1], lots[j] = lots[j], lots[j-1]
		}
	}
}
