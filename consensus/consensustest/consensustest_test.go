package consensustest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/polish/consensus"
	"github.com/grailbio/polish/consensus/consensustest"
)

func TestEvaluatorScoresByNegativeEditDistance(t *testing.T) {
	eval := consensustest.New("ACGT", "ACGT", "r1", consensus.Forward)
	ll, err := eval.LL()
	require.NoError(t, err)
	assert.Equal(t, 0.0, ll)

	eval2 := consensustest.New("ACGA", "ACGT", "r2", consensus.Forward)
	ll2, err := eval2.LL()
	require.NoError(t, err)
	assert.Equal(t, -1.0, ll2)
}

func TestEvaluatorApplyMutationTracksTemplate(t *testing.T) {
	eval := consensustest.New("ACGA", "ACGT", "r1", consensus.Forward)
	eval.ApplyMutation(consensus.NewSubstitution(3, "T"))
	assert.Equal(t, "ACGT", eval.Template())
	ll, err := eval.LL()
	require.NoError(t, err)
	assert.Equal(t, 0.0, ll)
}

func TestEvaluatorFailAfterScriptedInvalidation(t *testing.T) {
	eval := consensustest.New("ACGT", "ACGT", "r1", consensus.Forward)
	eval.FailAfter = 1
	_, err := eval.LL()
	require.Error(t, err)
}

func TestEvaluatorInvalidateTransitionsState(t *testing.T) {
	eval := consensustest.New("ACGT", "ACGT", "r1", consensus.Forward)
	assert.Equal(t, consensus.Valid, eval.State())
	eval.Invalidate("scripted")
	assert.Equal(t, consensus.Invalid, eval.State())
	_, err := eval.LL()
	assert.Error(t, err)
}
