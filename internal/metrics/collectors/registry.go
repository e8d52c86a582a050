package collectors

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/manifest-network/toyledger/internal/ledger"
)

// StatsSource is anything that can summarize a chain, usually a *ledger.Ledger.
type StatsSource interface {
	Stats() ledger.Stats
}

// CollectorFactory is a function type that creates a collector over a stats source
type CollectorFactory func(src StatsSource) (prometheus.Collector, error)

type Registry struct {
	factories []CollectorFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make([]CollectorFactory, 0),
	}
}

func (r *Registry) Register(factory CollectorFactory) {
	r.factories = append(r.factories, factory)
}

// CreateCollectors instantiates all registered collectors
func (r *Registry) CreateCollectors(src StatsSource) ([]prometheus.Collector, error) {
	if src == nil {
		return nil, errors.New("stats source is nil")
	}

	collectors := make([]prometheus.Collector, 0, len(r.factories))
	for _, factory := range r.factories {
		collector, err := factory(src)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, collector)
	}
	return collectors, nil
}

var DefaultRegistry = NewRegistry()

func RegisterCollectorFactory(factory CollectorFactory) {
	DefaultRegistry.Register(factory)
}
