package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/gocryptotax/taxlots/config"
	"github.com/gocryptotax/taxlots/lot"
)

func TestLoadDefaults(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	g.Expect(os.WriteFile(path, []byte("default_fiat: USD\n"), 0o644)).To(Succeed())

	cfg, err := config.Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.OrderingStrategy).To(Equal(lot.FIFO))
	g.Expect(cfg.WashRule).To(BeTrue())
}

func TestLoadExplicitValues(t *testing.T) {
	g := NewWithT(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `ordering_strategy: LIFO
wash_rule: false
start_date: 2022/01/01
end_date: 2022/12/31
filing_years: [2022]
default_fiat: EUR
`
	g.Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

	cfg, err := config.Load(path)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.OrderingStrategy).To(Equal(lot.LIFO))
	g.Expect(cfg.WashRule).To(BeFalse())
	g.Expect(cfg.DefaultFiat).To(Equal("EUR"))
	g.Expect(cfg.FilingYears).To(Equal([]int{2022}))
	g.Expect(cfg.StartDate).NotTo(BeNil())
	g.Expect(cfg.EndDate).NotTo(BeNil())
}
