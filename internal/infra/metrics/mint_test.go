package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

func TestMintMetrics_Observe(t *testing.T) {
	m := NewMintMetrics()
	reg := prometheus.NewRegistry()
	for _, c := range m.Collectors() {
		require.NoError(t, reg.Register(c))
	}

	m.PhaseEntered("OG", mintdom.PhaseSigning)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phaseEntered.WithLabelValues("OG", string(mintdom.PhaseSigning))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight.WithLabelValues("OG")))

	m.PhaseEntered("OG", mintdom.PhaseDone)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight.WithLabelValues("OG")))

	m.RunFinished("OG", "", 3*time.Second)
	m.RunFinished("OG", mintdom.KindRecoverable, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsFinished.WithLabelValues("OG", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsFinished.WithLabelValues("OG", string(mintdom.KindRecoverable))))

	m.AssetFetched(true)
	m.AssetFetched(false)
	m.AssetFetched(true)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.assetFetches.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assetFetches.WithLabelValues("false")))

	m.PollAttempts(4)
	assert.Equal(t, 1, testutil.CollectAndCount(m.pollAttempts))
}

func TestMintMetrics_NilSafe(t *testing.T) {
	var m *MintMetrics
	assert.NotPanics(t, func() {
		m.PhaseEntered("OG", mintdom.PhaseSigning)
		m.RunFinished("OG", "", time.Second)
		m.PollAttempts(1)
		m.AssetFetched(true)
	})
}

func TestMint_Singleton(t *testing.T) {
	assert.Same(t, Mint(), Mint())
}
