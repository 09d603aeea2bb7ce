package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/polish/consensus"
)

func TestMutationsHomopolymerSuppression(t *testing.T) {
	ai := consensus.NewIntegrator("AAAA", consensus.DefaultIntegratorConfig())
	muts := consensus.MutationsFull(ai, false)

	// Only the first base of the run may be deleted.
	deletions := 0
	for _, m := range muts {
		if m.IsDeletion() {
			deletions++
			assert.Equal(t, 0, m.Start)
		}
	}
	assert.Equal(t, 1, deletions)

	// Interior and trailing insertions of 'A' are suppressed (they'd
	// extend the run), but position 0 has no preceding base to check
	// against, so an insertion of 'A' there is still emitted.
	for _, m := range muts {
		if m.IsInsertion() && m.Bases == "A" {
			assert.Equal(t, 0, m.Start)
		}
	}
}

func TestMutationsOnNonRepetitiveTemplate(t *testing.T) {
	ai := consensus.NewIntegrator("ACGT", consensus.DefaultIntegratorConfig())
	muts := consensus.MutationsFull(ai, false)

	var insertions, deletions, substitutions int
	for _, m := range muts {
		switch m.Kind {
		case consensus.Insertion:
			insertions++
		case consensus.Deletion:
			deletions++
		case consensus.Substitution:
			substitutions++
		}
	}
	// 4 deletions (one per site, none suppressed since ACGT has no
	// homopolymer runs), 3 substitutions per site (excludes the current
	// base) = 12, and insertions at every boundary (5 positions) except
	// where it would duplicate the preceding base.
	assert.Equal(t, 4, deletions)
	assert.Equal(t, 12, substitutions)
	assert.True(t, insertions > 0)
}

func TestBestMutationsRejectsZeroSeparation(t *testing.T) {
	_, err := consensus.BestMutations(nil, 0)
	require.Error(t, err)
}

func TestBestMutationsGreedyNonOverlapping(t *testing.T) {
	scored := []consensus.ScoredMutation{
		consensus.NewSubstitution(0, "T").WithScore(10),
		consensus.NewSubstitution(1, "T").WithScore(5),
		consensus.NewSubstitution(10, "T").WithScore(8),
	}
	got, err := consensus.BestMutations(scored, 2)
	require.NoError(t, err)

	// The best mutation at 0 excludes the one at 1 (within separation 2),
	// but the one at 10 is far enough away to survive.
	assert.Len(t, got, 2)
	starts := map[int]bool{}
	for _, m := range got {
		starts[m.Start] = true
	}
	assert.True(t, starts[0])
	assert.True(t, starts[10])
	assert.False(t, starts[1])
}

func TestRepeatMutationsDetectsTandemRepeat(t *testing.T) {
	ai := consensus.NewIntegrator("ACACACAC", consensus.DefaultIntegratorConfig())
	cfg := consensus.RepeatConfig{MaxRepeatSize: 2, MinElementCount: 3, MaxIters: 1}
	muts := consensus.RepeatMutationsFull(ai, cfg)
	require.NotEmpty(t, muts)
	for _, m := range muts {
		assert.True(t, m.IsInsertion() || m.IsDeletion())
	}
}

func TestNearbyMutationsEmptyCentersReturnsNil(t *testing.T) {
	ai := consensus.NewIntegrator("ACGT", consensus.DefaultIntegratorConfig())
	got := consensus.NearbyMutations(nil, nil, ai, 2, false)
	assert.Nil(t, got)
}
