package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationConstructorsPanicOnInvalidArgs(t *testing.T) {
	assert.Panics(t, func() { NewDeletion(0, 0) })
	assert.Panics(t, func() { NewInsertion(0, "") })
	assert.Panics(t, func() { NewSubstitution(0, "") })
}

func TestMutationEndAndLengthDelta(t *testing.T) {
	ins := NewInsertion(3, "CC")
	assert.Equal(t, 3, ins.End())
	assert.Equal(t, 2, ins.LengthDelta())

	del := NewDeletion(3, 2)
	assert.Equal(t, 5, del.End())
	assert.Equal(t, -2, del.LengthDelta())

	sub := NewSubstitution(3, "T")
	assert.Equal(t, 4, sub.End())
	assert.Equal(t, 0, sub.LengthDelta())
}

func TestTranslateDeletionWithinWindow(t *testing.T) {
	// window [2, 6) against a deletion of length 2 starting at 3.
	mut := NewDeletion(3, 2)
	got, ok := Translate(mut, 2, 4)
	require.True(t, ok)
	assert.Equal(t, NewDeletion(1, 2), got)
}

func TestTranslateInsertionOutsideWindow(t *testing.T) {
	// window [5, 10) against an insertion at 3: End()==3 < start==5, so it
	// falls entirely outside.
	mut := NewInsertion(3, "CC")
	_, ok := Translate(mut, 5, 5)
	assert.False(t, ok)
}

func TestApplyMutationsOrderIndependent(t *testing.T) {
	muts := []Mutation{
		NewSubstitution(1, "T"),
		NewInsertion(3, "A"),
		NewDeletion(0, 1),
	}
	got := ApplyMutations("ACGT", append([]Mutation(nil), muts...))
	assert.Equal(t, "TGAT", got)

	// Shuffled input order must produce the same result, since
	// ApplyMutations sorts before applying.
	reordered := []Mutation{muts[2], muts[0], muts[1]}
	got2 := ApplyMutations("ACGT", reordered)
	assert.Equal(t, got, got2)
}

func TestApplyMutationsEmptyInputsAreNoOps(t *testing.T) {
	assert.Equal(t, "ACGT", ApplyMutations("ACGT", nil))
	assert.Equal(t, "", ApplyMutations("", []Mutation{NewInsertion(0, "A")}))
}

func TestSiteComparerOrdersByStartThenEndThenKind(t *testing.T) {
	a := NewInsertion(1, "A")
	b := NewDeletion(1, 1)
	assert.True(t, SiteComparer(a, b))
	assert.False(t, SiteComparer(b, a))
}

func TestScoredMutationWithScore(t *testing.T) {
	m := NewSubstitution(0, "A")
	scored := m.WithScore(12.5)
	assert.Equal(t, 12.5, scored.Score)
	assert.Equal(t, m, scored.Mutation)
}

func TestMutationPValue(t *testing.T) {
	m := NewSubstitution(0, "R")
	assert.False(t, m.HasPValue())
	m2 := m.WithPValue(0.001)
	assert.True(t, m2.HasPValue())
	assert.Equal(t, 0.001, m2.PValue)
}
