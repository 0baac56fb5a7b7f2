package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Trigger outcome labels.
const (
	TriggerOutcomeSuccess = "success"
	TriggerOutcomeFailure = "failure"
)

type VaultMetrics struct {
	positionsOpened prometheus.Counter
	adapterRebinds  *prometheus.CounterVec
	triggers        *prometheus.CounterVec
}

var (
	vaultOnce     sync.Once
	vaultRegistry *VaultMetrics
)

func Vault() *VaultMetrics {
	vaultOnce.Do(func() {
		vaultRegistry = &VaultMetrics{
			positionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "vault_positions_opened_total",
				Help: "Count of positions opened.",
			}),
			adapterRebinds: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_adapter_rebinds_total",
				Help: "Count of adapter binding replacements by adapter name.",
			}, []string{"adapter"}),
			triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "vault_triggers_total",
				Help: "Count of liquidation triggers by outcome and failure kind.",
			}, []string{"outcome", "kind"}),
		}
		prometheus.MustRegister(
			vaultRegistry.positionsOpened,
			vaultRegistry.adapterRebinds,
			vaultRegistry.triggers,
		)
	})
	return vaultRegistry
}

func (m *VaultMetrics) ObservePositionOpened() {
	if m == nil {
		return
	}
	m.positionsOpened.Inc()
}

func (m *VaultMetrics) ObserveAdapterRebind(adapter string) {
	if m == nil {
		return
	}
	if adapter == "" {
		adapter = "unknown"
	}
	m.adapterRebinds.WithLabelValues(adapter).Inc()
}

func (m *VaultMetrics) ObserveTrigger(outcome, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.triggers.WithLabelValues(outcome, kind).Inc()
}
