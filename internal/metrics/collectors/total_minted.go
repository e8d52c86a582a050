package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

type TotalMintedCollector struct {
	src         StatsSource
	totalMinted *prometheus.Desc
}

func NewTotalMintedCollector(src StatsSource) *TotalMintedCollector {
	return &TotalMintedCollector{
		src: src,
		totalMinted: prometheus.NewDesc(
			prometheus.BuildFQName("toyledger", "supply", "minted_total"),
			"Sum of all amounts introduced by transactions without a sender",
			nil,
			nil,
		),
	}
}

func (c *TotalMintedCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalMinted
}

func (c *TotalMintedCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.totalMinted, prometheus.GaugeValue, c.src.Stats().TotalMinted)
}

func init() {
	RegisterCollectorFactory(func(src StatsSource) (prometheus.Collector, error) {
		return NewTotalMintedCollector(src), nil
	})
}
