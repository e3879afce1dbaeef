package lot_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/gocryptotax/taxlots/lot"
)

func TestConsolidatePreservesAggregates(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(
		buyLot(dec("2"), dec("2000"), d("2022-01-01")),
		buyLot(dec("3"), dec("3000"), d("2022-01-02")),
	)
	g.Expect(lot.MatchSell(reg, sell(d("2022-02-01"), dec("2"), dec("1100")), lot.FIFO)).To(Succeed())
	g.Expect(lot.MatchSell(reg, sell(d("2022-02-01"), dec("3"), dec("1100")), lot.FIFO)).To(Succeed())

	beforeNetGain := reg.NetGain()
	beforeProceeds := reg.Proceeds()

	consolidated, err := lot.Consolidate(reg)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(consolidated.ClosedLots()).To(HaveLen(1), "same asset/day/classification should merge into one row")
	g.Expect(consolidated.NetGain().String()).To(Equal(beforeNetGain.String()))
	g.Expect(consolidated.Proceeds().String()).To(Equal(beforeProceeds.String()))
	g.Expect(consolidated.ClosedLots()[0].Amount.String()).To(Equal("5"))
	g.Expect(lot.IsVariousDates(consolidated.ClosedLots()[0].PurchaseDate)).To(BeTrue(), "the two lots purchased on different days should collapse to the sentinel")
}

func TestConsolidateSingleDayKeepsRealDate(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(
		buyLot(dec("2"), dec("2000"), d("2022-01-01")),
		buyLot(dec("3"), dec("3000"), d("2022-01-01")),
	)
	g.Expect(lot.MatchSell(reg, sell(d("2022-02-01"), dec("2"), dec("1100")), lot.FIFO)).To(Succeed())
	g.Expect(lot.MatchSell(reg, sell(d("2022-02-01"), dec("3"), dec("1100")), lot.FIFO)).To(Succeed())

	consolidated, err := lot.Consolidate(reg)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(lot.IsVariousDates(consolidated.ClosedLots()[0].PurchaseDate)).To(BeFalse())
}
