// internal/infra/metrics/mint.go
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appmint "github.com/Spaceman-Collective/kyogen-mint/internal/application/mint"
	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// MintMetrics は Orchestrator の RunObserver 実装です。
type MintMetrics struct {
	phaseEntered *prometheus.CounterVec
	runsFinished *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	pollAttempts prometheus.Histogram
	assetFetches *prometheus.CounterVec
	inFlight     *prometheus.GaugeVec
}

var _ appmint.RunObserver = (*MintMetrics)(nil)

var (
	mintOnce     sync.Once
	mintRegistry *MintMetrics
)

// Mint はプロセス共通の MintMetrics を返します（初回にデフォルトレジストリへ登録）。
func Mint() *MintMetrics {
	mintOnce.Do(func() {
		mintRegistry = NewMintMetrics()
		prometheus.MustRegister(mintRegistry.Collectors()...)
	})
	return mintRegistry
}

// NewMintMetrics は未登録のコレクタ一式を生成します（テストでは独自レジストリに登録する）。
func NewMintMetrics() *MintMetrics {
	return &MintMetrics{
		phaseEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kyogen_mint_phase_entered_total",
			Help: "Count of mint phase transitions by label and phase.",
		}, []string{"label", "phase"}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kyogen_mint_runs_total",
			Help: "Count of finished mint runs by label and result kind.",
		}, []string{"label", "kind"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kyogen_mint_run_duration_seconds",
			Help:    "Wall time of a mint run from lock acquire to done.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90},
		}, []string{"label"}),
		pollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kyogen_mint_poll_attempts",
			Help:    "getTransaction lookups per tracked signature.",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 30},
		}),
		assetFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kyogen_mint_asset_fetch_total",
			Help: "Post-mint metadata fetches by result.",
		}, []string{"result"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kyogen_mint_in_flight",
			Help: "1 while a mint run holds the label lock.",
		}, []string{"label"}),
	}
}

// Collectors は登録対象のコレクタを返します。
func (m *MintMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.phaseEntered, m.runsFinished, m.runDuration, m.pollAttempts, m.assetFetches, m.inFlight}
}

func (m *MintMetrics) PhaseEntered(label string, phase mintdom.Phase) {
	if m == nil {
		return
	}
	m.phaseEntered.WithLabelValues(label, string(phase)).Inc()
	if phase.InFlight() {
		m.inFlight.WithLabelValues(label).Set(1)
	} else {
		m.inFlight.WithLabelValues(label).Set(0)
	}
}

func (m *MintMetrics) RunFinished(label string, kind mintdom.Kind, d time.Duration) {
	if m == nil {
		return
	}
	k := string(kind)
	if k == "" {
		k = "none"
	}
	m.runsFinished.WithLabelValues(label, k).Inc()
	m.runDuration.WithLabelValues(label).Observe(d.Seconds())
}

func (m *MintMetrics) PollAttempts(n int) {
	if m == nil {
		return
	}
	m.pollAttempts.Observe(float64(n))
}

func (m *MintMetrics) AssetFetched(ok bool) {
	if m == nil {
		return
	}
	m.assetFetches.WithLabelValues(strconv.FormatBool(ok)).Inc()
}
