// Command taxlots computes capital-gains tax lots for a cryptocurrency
// orderbook, including wash-sale adjustments, and exports a sales report.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gocryptotax/taxlots/asset"
	"github.com/gocryptotax/taxlots/config"
	"github.com/gocryptotax/taxlots/driver"
	"github.com/gocryptotax/taxlots/lot"
	"github.com/gocryptotax/taxlots/order"
)

var log = logrus.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taxlots",
		Short: "Compute capital-gains tax lots with wash-sale adjustments",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		configPath    string
		tokenRegistry string
		nftRegistry   string
		fiatRegistry  string
		orderbookPath string
		outputPath    string
		reportKind    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an orderbook into closed tax lots and export a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExecute(configPath, tokenRegistry, nftRegistry, fiatRegistry, orderbookPath, outputPath, reportKind)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to §6.3 configuration YAML")
	cmd.Flags().StringVar(&tokenRegistry, "token-registry", "token_registry.yaml", "path to token asset registry YAML")
	cmd.Flags().StringVar(&nftRegistry, "nft-registry", "", "path to NFT asset registry YAML (optional)")
	cmd.Flags().StringVar(&fiatRegistry, "fiat-registry", "fiat_registry.yaml", "path to fiat asset registry YAML")
	cmd.Flags().StringVar(&orderbookPath, "orderbook", "orderbook.csv", "path to orderbook CSV")
	cmd.Flags().StringVar(&outputPath, "out", "sales_report.csv", "path to write the report CSV")
	cmd.Flags().StringVar(&reportKind, "report", "sales_report", `report schema: "sales_report" or "8949"`)

	return cmd
}

func runExecute(configPath, tokenRegistry, nftRegistry, fiatRegistry, orderbookPath, outputPath, reportKind string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	tokens, err := asset.LoadRegistryYAML(tokenRegistry)
	if err != nil {
		return err
	}
	assets := tokens
	if nftRegistry != "" {
		nfts, err := asset.LoadRegistryYAML(nftRegistry)
		if err != nil {
			return err
		}
		assets = assets.Concat(nfts)
	}
	fiats, err := asset.LoadRegistryYAML(fiatRegistry)
	if err != nil {
		return err
	}
	assets = assets.Concat(fiats)
	fiatSet := asset.NewFiatSet(fiats.Tickers()...)

	book, err := order.LoadCSV(orderbookPath, assets, cfg.DefaultFiat)
	if err != nil {
		return err
	}
	book = book.Aggregate()

	reg, err := driver.Run(cfg, fiatSet, book, log)
	if err != nil {
		log.WithError(err).Error("orderbook execution failed")
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", outputPath, err)
	}
	defer out.Close()

	switch reportKind {
	case "sales_report":
		return lot.WriteSalesReportCSV(out, lot.SalesReport(reg))
	case "8949":
		return lot.WriteForm8949CSV(out, lot.Form8949(reg))
	default:
		return fmt.Errorf("unrecognized report kind %q", reportKind)
	}
}
