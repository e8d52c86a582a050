package collectors

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TotalTransactionCountCollector reports the number of blocks and of
// transactions. The genesis block is a block but not a transaction.
type TotalTransactionCountCollector struct {
	src          StatsSource
	blockCount   *prometheus.Desc
	totalTxCount *prometheus.Desc
}

func NewTotalTransactionCountCollector(src StatsSource) *TotalTransactionCountCollector {
	return &TotalTransactionCountCollector{
		src: src,
		blockCount: prometheus.NewDesc(
			prometheus.BuildFQName("toyledger", "chain", "block_count"),
			"Number of blocks in the chain, genesis included",
			nil,
			nil,
		),
		totalTxCount: prometheus.NewDesc(
			prometheus.BuildFQName("toyledger", "transactions", "total_count"),
			"Total transaction count",
			nil,
			nil,
		),
	}
}

func (c *TotalTransactionCountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.blockCount
	ch <- c.totalTxCount
}

func (c *TotalTransactionCountCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.blockCount, prometheus.GaugeValue, float64(stats.Blocks))
	ch <- prometheus.MustNewConstMetric(c.totalTxCount, prometheus.CounterValue, float64(stats.Transactions))
}

func init() {
	RegisterCollectorFactory(func(src StatsSource) (prometheus.Collector, error) {
		return NewTotalTransactionCountCollector(src), nil
	})
}
