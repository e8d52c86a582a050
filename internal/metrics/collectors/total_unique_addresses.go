package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TotalUniqueAddressesCollector counts the distinct senders and recipients seen on the chain
type TotalUniqueAddressesCollector struct {
	src                  StatsSource
	totalUniqueAddresses *prometheus.Desc
}

func NewTotalUniqueAddressesCollector(src StatsSource) *TotalUniqueAddressesCollector {
	return &TotalUniqueAddressesCollector{
		src: src,
		totalUniqueAddresses: prometheus.NewDesc(
			prometheus.BuildFQName("toyledger", "addresses", "unique_count"),
			"Total unique addresses",
			nil,
			nil,
		),
	}
}

func (c *TotalUniqueAddressesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalUniqueAddresses
}

func (c *TotalUniqueAddressesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.totalUniqueAddresses, prometheus.GaugeValue, float64(c.src.Stats().UniqueAddresses))
}

func init() {
	RegisterCollectorFactory(func(src StatsSource) (prometheus.Collector, error) {
		return NewTotalUniqueAddressesCollector(src), nil
	})
}
