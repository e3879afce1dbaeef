package asset_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/gocryptotax/taxlots/asset"
)

func TestAssetNonFungibleForcesZeroDecimals(t *testing.T) {
	g := NewWithT(t)

	a := asset.New("Bored Ape #1", "BAYC1", false, 8)
	g.Expect(a.Decimals).To(BeEquivalentTo(0))
	g.Expect(a.SmallestUnit().String()).To(Equal("1"))
}

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	g := NewWithT(t)

	reg := asset.NewRegistry(
		asset.New("Ethereum", "ETH", true, 18),
		asset.New("US Dollar", "USD", true, 2),
	)

	got, err := reg.Lookup("eth")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got.Name).To(Equal("Ethereum"))

	_, err = reg.Lookup("DOGE")
	g.Expect(err).To(HaveOccurred())
}

func TestRegistryConcatOldestWins(t *testing.T) {
	g := NewWithT(t)

	older := asset.NewRegistry(asset.New("Ethereum Classic Conflict", "ETH", true, 18))
	newer := asset.NewRegistry(asset.New("Ethereum", "ETH", true, 18))

	combined := older.Concat(newer)
	got, err := combined.Lookup("ETH")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(got.Name).To(Equal("Ethereum Classic Conflict"))
}

func TestRegistryFiatFilter(t *testing.T) {
	g := NewWithT(t)

	fiat := asset.NewFiatSet("USD", "EUR")
	reg := asset.NewRegistry(
		asset.New("Ethereum", "ETH", true, 18),
		asset.New("US Dollar", "USD", true, 2),
	)

	fiats := reg.Fiat(fiat)
	g.Expect(fiats).To(HaveLen(1))
	g.Expect(fiats[0].Ticker).To(Equal("USD"))
}

func TestLoadRegistryYAML(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "token_registry.yaml")
	content := []byte(`ETH:
  name: Ethereum
  ticker: ETH
  fungible: true
  decimals: 18
ADA:
  name: Cardano
  ticker: ADA
  decimals: 6
`)
	g.Expect(os.WriteFile(path, content, 0o644)).To(Succeed())

	reg, err := asset.LoadRegistryYAML(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(reg.Len()).To(Equal(2))

	ada, err := reg.Lookup("ADA")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ada.Fungible).To(BeTrue(), "fungible should default true when omitted")
}
