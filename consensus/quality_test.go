package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/polish/consensus"
	"github.com/grailbio/polish/consensus/consensustest"
)

func TestProbabilityToQVBounds(t *testing.T) {
	_, err := consensus.ProbabilityToQV(-0.1)
	require.Error(t, err)
	_, err = consensus.ProbabilityToQV(1.1)
	require.Error(t, err)
}

func TestProbabilityToQVMonotonicallyDecreasesWithProbability(t *testing.T) {
	low, err := consensus.ProbabilityToQV(0.5)
	require.NoError(t, err)
	high, err := consensus.ProbabilityToQV(0.001)
	require.NoError(t, err)
	assert.True(t, high > low, "smaller error probability should yield a higher QV")
}

func TestProbabilityToQVClampsZero(t *testing.T) {
	qv, err := consensus.ProbabilityToQV(0)
	require.NoError(t, err)
	assert.True(t, qv > 0)
}

func TestConsensusQualitiesLengthMatchesTemplate(t *testing.T) {
	ai := consensus.NewIntegrator("ACGT", consensus.DefaultIntegratorConfig())
	ai.AddRead(consensustest.New("ACGT", "ACGT", "r1", consensus.Forward))
	ai.AddRead(consensustest.New("ACGT", "ACGT", "r2", consensus.Forward))

	quals := consensus.ConsensusQualities(ai)
	assert.Len(t, quals, ai.TemplateLength())
	for _, q := range quals {
		assert.True(t, q >= 0)
	}
}

func TestConsensusQVsAllVectorsSameLength(t *testing.T) {
	ai := consensus.NewIntegrator("ACGT", consensus.DefaultIntegratorConfig())
	ai.AddRead(consensustest.New("ACGT", "ACGT", "r1", consensus.Forward))

	qvs := consensus.ConsensusQVs(ai)
	n := ai.TemplateLength()
	assert.Len(t, qvs.QV, n)
	assert.Len(t, qvs.DelQV, n)
	assert.Len(t, qvs.InsQV, n)
	assert.Len(t, qvs.SubQV, n)
}
