package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/polish/consensus"
	"github.com/grailbio/polish/consensus/consensustest"
)

func TestPolishConvergesToTarget(t *testing.T) {
	// Start one base off from a target every read agrees on; Polish
	// should converge in one iteration.
	ai := consensus.NewIntegrator("ACGA", consensus.DefaultIntegratorConfig())
	ai.AddRead(consensustest.New("ACGA", "ACGT", "r1", consensus.Forward))
	ai.AddRead(consensustest.New("ACGA", "ACGT", "r2", consensus.Forward))

	cfg := consensus.PolishConfig{MaxIters: 10, MutSeparation: 1, MutNeighborhood: 4}
	result := consensus.Polish(ai, cfg)

	assert.True(t, result.Converged)
	assert.Equal(t, "ACGT", ai.AsString())
	assert.True(t, result.MutationsApplied >= 1)
}

func TestPolishStopsAtMaxIters(t *testing.T) {
	ai := consensus.NewIntegrator("AAAA", consensus.DefaultIntegratorConfig())
	ai.AddRead(consensustest.New("AAAA", "TTTT", "r1", consensus.Forward))

	cfg := consensus.PolishConfig{MaxIters: 1, MutSeparation: 1, MutNeighborhood: 4}
	result := consensus.Polish(ai, cfg)

	// Converging fully from AAAA to TTTT takes more than one round of
	// non-overlapping best-mutation selection; a 1-iteration budget must
	// stop without claiming convergence, or leave less work than a full
	// run would.
	fullCfg := consensus.PolishConfig{MaxIters: 20, MutSeparation: 1, MutNeighborhood: 4}
	full := consensus.NewIntegrator("AAAA", consensus.DefaultIntegratorConfig())
	full.AddRead(consensustest.New("AAAA", "TTTT", "r1", consensus.Forward))
	fullResult := consensus.Polish(full, fullCfg)

	assert.True(t, fullResult.Converged)
	if !result.Converged {
		assert.True(t, result.MutationsApplied <= fullResult.MutationsApplied)
	}
}

func TestPolishRestartsOnInvalidation(t *testing.T) {
	ai := consensus.NewIntegrator("ACGA", consensus.DefaultIntegratorConfig())
	flaky := consensustest.New("ACGA", "ACGT", "flaky", consensus.Forward)
	flaky.FailAfter = 2
	stable := consensustest.New("ACGA", "ACGT", "stable", consensus.Forward)
	ai.AddRead(flaky)
	ai.AddRead(stable)

	cfg := consensus.PolishConfig{MaxIters: 10, MutSeparation: 1, MutNeighborhood: 4}
	result := consensus.Polish(ai, cfg)

	// Even after flaky invalidates partway through scoring, the stable
	// evaluator's signal is still enough to converge.
	assert.True(t, result.Converged)
	assert.Equal(t, "ACGT", ai.AsString())
}

func TestPolishRepeatsConverges(t *testing.T) {
	ai := consensus.NewIntegrator("ACACAC", consensus.DefaultIntegratorConfig())
	ai.AddRead(consensustest.New("ACACAC", "ACACACAC", "r1", consensus.Forward))

	cfg := consensus.RepeatConfig{MaxRepeatSize: 2, MinElementCount: 2, MaxIters: 5}
	result := consensus.PolishRepeats(ai, cfg)

	require.True(t, result.Converged)
	assert.Equal(t, "ACACACAC", ai.AsString())
}
