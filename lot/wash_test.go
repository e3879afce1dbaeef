package lot_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/gocryptotax/taxlots/lot"
)

func buyLot(amount, cost decimal.Decimal, date time.Time) *lot.Lot {
	return lot.NewOpen(eth(), amount, cost, decimal.Zero, date)
}

// Scenario S3 — simple wash: a loss sale fully absorbed by a larger
// replacement purchase within the window, leaving a residual gain slice.
func TestExecuteWashesScenarioS3Simple(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(buyLot(dec("5"), dec("5000"), d("2022-01-01")))
	g.Expect(lot.MatchSell(reg, sell(d("2022-01-10"), dec("5"), dec("900")), lot.FIFO)).To(Succeed())
	// loss lot: proceeds 4500, cost 5000, net_gain -500.

	reg.Add(buyLot(dec("6"), dec("6000"), d("2022-01-15"))) // within 31 days, after the sale.
	g.Expect(lot.ExecuteWashes(reg)).To(Succeed())

	washSeller := firstWash(reg)
	g.Expect(washSeller).NotTo(BeNil())
	g.Expect(washSeller.NetGain().Round(2).String()).To(Equal("0"))
	g.Expect(washSeller.Wash.DisallowedLossFiat.String()).To(Equal("500"))
	g.Expect(washSeller.IsWash()).To(BeTrue())

	trigger := reg.Get(washSeller.Wash.TriggeredByID.UUID)
	g.Expect(trigger).NotTo(BeNil())
	g.Expect(trigger.Wash.AdditionToCostFiat.String()).To(Equal("500"))
	g.Expect(trigger.TriggersWash()).To(BeTrue())

	g.Expect(lot.MatchSell(reg, sell(d("2022-02-01"), dec("6"), dec("1100")), lot.FIFO)).To(Succeed())
	// 0 (washed loss) + 0 (5-ETH wash-paired slice) + 100 (1-ETH surplus slice).
	g.Expect(reg.NetGain().String()).To(Equal("100"))
}

// Scenario S5 — same-day wash: the replacement purchase happens the same
// day as the loss sale, and the pairing still applies.
func TestExecuteWashesScenarioS5SameDay(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(buyLot(dec("5"), dec("5000"), d("2022-01-01")))
	g.Expect(lot.MatchSell(reg, sell(d("2022-01-10"), dec("5"), dec("900")), lot.FIFO)).To(Succeed())

	reg.Add(buyLot(dec("5"), dec("5000"), d("2022-01-10")))
	g.Expect(lot.ExecuteWashes(reg)).To(Succeed())

	g.Expect(lot.MatchSell(reg, sell(d("2022-02-01"), dec("5"), dec("1100")), lot.FIFO)).To(Succeed())
	g.Expect(reg.NetGain().Round(2).String()).To(Equal("0"))
}

// Scenario S7 — no double wash: a single replacement purchase can only
// pair with one loss lot. The earlier-dated loss (sold 2022-01-05) wins;
// the later one (sold 2022-01-06) is left unwashed since the replacement
// is already spoken for.
func TestExecuteWashesScenarioS7NoDoubleWash(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(buyLot(dec("5"), dec("5000"), d("2022-01-01")))
	g.Expect(lot.MatchSell(reg, sell(d("2022-01-05"), dec("3"), dec("900")), lot.FIFO)).To(Succeed())
	g.Expect(lot.MatchSell(reg, sell(d("2022-01-06"), dec("2"), dec("900")), lot.FIFO)).To(Succeed())

	reg.Add(buyLot(dec("3"), dec("3000"), d("2022-01-10")))
	g.Expect(lot.ExecuteWashes(reg)).To(Succeed())

	washSellers := reg.Washes()
	g.Expect(washSellers).To(HaveLen(1), "only the earlier loss should find the single replacement")
	g.Expect(washSellers[0].SaleDate).To(Equal(d("2022-01-05")))
	g.Expect(washSellers[0].NetGain().Round(2).String()).To(Equal("0"))

	notWashed := reg.PotentialWashes()
	g.Expect(notWashed).To(HaveLen(1), "the second loss remains a potential wash with no qualifying replacement left")
}

// Scenario S4 — chain wash: three successive buy/sell cycles where each
// loss is absorbed by the next cycle's replacement purchase, except the
// last, which has no further replacement and carries the residue.
func TestExecuteWashesScenarioS4Chain(t *testing.T) {
	g := NewWithT(t)

	reg := lot.NewRegistry(buyLot(dec("5"), dec("5000"), d("2022-01-01")))
	g.Expect(lot.MatchSell(reg, sell(d("2022-01-05"), dec("5"), dec("900")), lot.FIFO)).To(Succeed())

	reg.Add(buyLot(dec("5"), dec("5000"), d("2022-01-10")))
	g.Expect(lot.MatchSell(reg, sell(d("2022-01-15"), dec("5"), dec("1000")), lot.FIFO)).To(Succeed())

	reg.Add(buyLot(dec("5"), dec("5000"), d("2022-01-20")))
	g.Expect(lot.MatchSell(reg, sell(d("2022-01-25"), dec("5"), dec("1000")), lot.FIFO)).To(Succeed())

	g.Expect(lot.ExecuteWashes(reg)).To(Succeed())

	closed := reg.ClosedLots()
	g.Expect(closed).To(HaveLen(3))

	washes := reg.Washes()
	g.Expect(washes).To(HaveLen(2), "the first two losses are each transferred forward exactly once")

	g.Expect(reg.PotentialWashes()).To(HaveLen(1), "the final sale has no further replacement and stays a real loss")
	g.Expect(reg.NetGain().String()).To(Equal("-500"), "each wash zeroes its seller, leaving only the last cycle's loss")
}

func firstWash(reg *lot.Registry) *lot.Lot {
	for _, l := range reg.ClosedLots() {
		if l.IsWash() {
			return l
		}
	}
	return nil
}
