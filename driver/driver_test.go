package driver_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/gocryptotax/taxlots/asset"
	"github.com/gocryptotax/taxlots/config"
	"github.com/gocryptotax/taxlots/driver"
	"github.com/gocryptotax/taxlots/order"
	"github.com/gocryptotax/taxlots/txn"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRunSimpleOrderbook(t *testing.T) {
	g := NewWithT(t)

	eth := asset.New("Ethereum", "ETH", true, 18)
	usd := asset.New("US Dollar", "USD", true, 2)
	fiat := asset.NewFiatSet("USD")

	book := order.Book{Orders: []order.Order{
		{
			Date: d("2022-01-29"), Market1: eth, Market2: usd, Kind: txn.Buy,
			Price: decimal.NewFromInt(1000), Amount: decimal.NewFromInt(5),
			Spot1Fiat: decimal.NewFromInt(1000), Spot2Fiat: decimal.NewFromInt(1), FeeSpotFiat: decimal.NewFromInt(1),
			FeeAsset: usd,
		},
		{
			Date: d("2022-02-08"), Market1: eth, Market2: usd, Kind: txn.Sell,
			Price: decimal.NewFromInt(1100), Amount: decimal.NewFromInt(5),
			Spot1Fiat: decimal.NewFromInt(1100), Spot2Fiat: decimal.NewFromInt(1), FeeSpotFiat: decimal.NewFromInt(1),
			FeeAsset: usd,
		},
	}}

	cfg := config.Config{OrderingStrategy: 0, WashRule: false, DefaultFiat: "USD"}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	reg, err := driver.Run(cfg, fiat, book, log)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(reg.ClosedLots()).To(HaveLen(1))
	g.Expect(reg.NetGain().String()).To(Equal("500"))
}
