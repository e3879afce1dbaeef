// Package driver wires the asset registry, configuration, order splitter,
// sell matcher, and wash resolver into the single entrypoint the CLI
// calls: execute an entire orderbook into a finished lot registry.
package driver

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gocryptotax/taxlots/asset"
	"github.com/gocryptotax/taxlots/config"
	"github.com/gocryptotax/taxlots/lot"
	"github.com/gocryptotax/taxlots/order"
)

// Run executes every order in the given book in date order through the
// order splitter and sell matcher, then — if the configuration enables
// wash-sale rules — runs the wash-sale fixed point. It generalizes the
// original execute_orderbook driver by also owning date-range filtering
// and wash execution rather than leaving those to separate manual calls.
// fiat classifies which assets in the registry are cash rather than
// tracked positions (typically loaded from fiat_registry.yaml).
func Run(cfg config.Config, fiat asset.FiatSet, book order.Book, log *logrus.Logger) (*lot.Registry, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	sorted := book.Sort()
	filtered := filterByDateRange(sorted, cfg)
	log.WithFields(logrus.Fields{"orders": len(filtered.Orders), "strategy": cfg.OrderingStrategy}).Info("executing orderbook")

	reg := lot.NewRegistry()
	for _, o := range filtered.Orders {
		buyTxn, sellTxn, err := o.Split(fiat)
		if err != nil {
			return nil, fmt.Errorf("splitting order on %s: %w", o.Date.Format("2006-01-02"), err)
		}

		if !sellTxn.Asset.IsFiat(fiat) && sellTxn.Amount.IsPositive() {
			if err := lot.MatchSell(reg, sellTxn, cfg.OrderingStrategy); err != nil {
				return nil, fmt.Errorf("matching sell on %s: %w", o.Date.Format("2006-01-02"), err)
			}
		}
		if !buyTxn.Asset.IsFiat(fiat) && buyTxn.Amount.IsPositive() {
			reg.Add(lot.NewOpen(buyTxn.Asset, buyTxn.Amount, buyTxn.AmountFiat(), buyTxn.FeeFiat(), buyTxn.Date))
		}
	}

	if cfg.WashRule {
		log.Info("resolving wash sales")
		if err := lot.ExecuteWashes(reg); err != nil {
			return nil, fmt.Errorf("executing wash-sale pass: %w", err)
		}
	}

	log.WithFields(logrus.Fields{"lots": reg.Len(), "net_gain": reg.NetGain()}).Info("execution complete")
	return reg, nil
}

func filterByDateRange(book order.Book, cfg config.Config) order.Book {
	if cfg.StartDate == nil && cfg.EndDate == nil {
		return book
	}
	var out []order.Order
	for _, o := range book.Orders {
		if cfg.StartDate != nil && o.Date.Before(*cfg.StartDate) {
			continue
		}
		if cfg.EndDate != nil && o.Date.After(*cfg.EndDate) {
			continue
		}
		out = append(out, o)
	}
	return order.Book{Orders: out}
}
