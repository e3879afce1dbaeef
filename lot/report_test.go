package lot_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/lot"
)

func TestSalesReportAndForm8949(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(buyLot(dec("5"), dec("5000"), d("2022-01-01")))
	g.Expect(lot.MatchSell(reg, sell(d("2022-02-01"), dec("5"), dec("1100")), lot.FIFO)).To(Succeed())

	rows := lot.SalesReport(reg)
	g.Expect(rows).To(HaveLen(1))
	g.Expect(rows[0].PurchaseDate).To(Equal("2022/01/01"))
	g.Expect(rows[0].SaleDate).To(Equal("2022/02/01"))
	g.Expect(rows[0].NetGain.String()).To(Equal("500"))
	g.Expect(rows[0].Wash).To(Equal(""))

	var buf bytes.Buffer
	g.Expect(lot.WriteSalesReportCSV(&buf, rows)).To(Succeed())
	g.Expect(buf.String()).To(ContainSubstring("Ticker,Purchase Date"))
	g.Expect(strings.Count(buf.String(), "\n")).To(Equal(2))

	form8949 := lot.Form8949(reg)
	g.Expect(form8949).To(HaveLen(1))
	g.Expect(form8949[0].Acquired).To(Equal("01/01/2022"))
	g.Expect(form8949[0].Sold).To(Equal("02/01/2022"))

	var buf2 bytes.Buffer
	g.Expect(lot.WriteForm8949CSV(&buf2, form8949)).To(Succeed())
	g.Expect(buf2.String()).To(ContainSubstring("Date Acquired"))
}

func TestVariousDatesSentinel(t *testing.T) {
	g := NewWithT(t)

	vd := lot.VariousDates()
	g.Expect(lot.IsVariousDates(vd)).To(BeTrue())
	g.Expect(vd.Format("2006/01/02")).NotTo(Equal("Various Dates")) // raw format doesn't special-case

	rows := lot.SalesReport(lot.NewRegistry(func() *lot.Lot {
		l := buyLot(dec("1"), dec("100"), vd)
		l.Close(d("2022-01-01"), decimal.NewFromInt(110), decimal.Zero)
		return l
	}()))
	g.Expect(rows[0].PurchaseDate).To(Equal("Various Dates"))
}

func TestYearSummaries(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(buyLot(dec("5"), dec("5000"), d("2021-01-01")))
	g.Expect(lot.MatchSell(reg, sell(d("2021-06-01"), dec("5"), dec("1100")), lot.FIFO)).To(Succeed())

	summaries := lot.YearSummaries(reg)
	g.Expect(summaries).To(HaveLen(1))
	g.Expect(summaries[0].Year).To(Equal(2021))
	g.Expect(summaries[0].ShortTermGain.String()).To(Equal("500"))
}
