package consensus

import (
	"fmt"
	"sort"
)

// MutationKind identifies the algebraic class of a Mutation.
type MutationKind int

const (
	// Insertion inserts Bases before the template position Start. It has
	// zero Length and End() == Start().
	Insertion MutationKind = iota
	// Deletion removes Length template bases starting at Start.
	Deletion
	// Substitution replaces Length template bases starting at Start with
	// Bases.
	Substitution
)

var mutationKindNames = [...]string{"Insertion", "Deletion", "Substitution"}

func (k MutationKind) String() string {
	if int(k) < 0 || int(k) >= len(mutationKindNames) {
		return fmt.Sprintf("MutationKind(%d)", int(k))
	}
	return mutationKindNames[k]
}

// Mutation is a single tagged edit to a template: an insertion, deletion,
// or substitution.
type Mutation struct {
	Kind  MutationKind
	Start int
	// Length is the number of template bases consumed: 0 for an
	// insertion, >=1 for a deletion or substitution.
	Length int
	// Bases is the replacement/inserted payload; empty for a deletion.
	Bases string
	// PValue is set only for diploid mutations that passed the binomial
	// significance test; zero otherwise.
	PValue float64
	hasP   bool
}

// NewDeletion constructs a Deletion of length bases starting at start.
// length must be >= 1.
func NewDeletion(start, length int) Mutation {
	if length < 1 {
		panic("consensus: deletion length must be >= 1")
	}
	return Mutation{Kind: Deletion, Start: start, Length: length}
}

// NewInsertion constructs an Insertion of bases before template position
// start. bases must be non-empty.
func NewInsertion(start int, bases string) Mutation {
	if len(bases) == 0 {
		panic("consensus: insertion bases must be non-empty")
	}
	return Mutation{Kind: Insertion, Start: start, Length: 0, Bases: bases}
}

// NewSubstitution constructs a Substitution of len(bases) template bases
// starting at start. bases must be non-empty.
func NewSubstitution(start int, bases string) Mutation {
	if len(bases) == 0 {
		panic("consensus: substitution bases must be non-empty")
	}
	return Mutation{Kind: Substitution, Start: start, Length: len(bases), Bases: bases}
}

// End returns the exclusive end of the template window this mutation
// consumes: Start for an insertion, Start+Length otherwise.
func (m Mutation) End() int { return m.Start + m.Length }

// IsInsertion reports whether m is an Insertion.
func (m Mutation) IsInsertion() bool { return m.Kind == Insertion }

// IsDeletion reports whether m is a Deletion.
func (m Mutation) IsDeletion() bool { return m.Kind == Deletion }

// IsSubstitution reports whether m is a Substitution.
func (m Mutation) IsSubstitution() bool { return m.Kind == Substitution }

// LengthDelta returns the net change in template length this mutation
// causes if applied: +len(Bases) for an insertion, -Length for a
// deletion, 0 for a substitution.
func (m Mutation) LengthDelta() int {
	switch m.Kind {
	case Insertion:
		return len(m.Bases)
	case Deletion:
		return -m.Length
	default:
		return 0
	}
}

// WithScore returns a ScoredMutation wrapping m with the given score.
func (m Mutation) WithScore(score float64) ScoredMutation {
	return ScoredMutation{Mutation: m, Score: score}
}

// WithPValue returns a copy of m carrying the given diploid p-value.
func (m Mutation) WithPValue(p float64) Mutation {
	m.PValue = p
	m.hasP = true
	return m
}

// HasPValue reports whether m carries a diploid p-value.
func (m Mutation) HasPValue() bool { return m.hasP }

func (m Mutation) String() string {
	switch m.Kind {
	case Deletion:
		return fmt.Sprintf("Deletion(%d, %d)", m.Start, m.Length)
	case Insertion:
		return fmt.Sprintf("Insertion(%d, %q)", m.Start, m.Bases)
	default:
		return fmt.Sprintf("Substitution(%d, %q)", m.Start, m.Bases)
	}
}

// ScoredMutation is a Mutation augmented with a log-likelihood score.
type ScoredMutation struct {
	Mutation
	Score float64
}

func (s ScoredMutation) String() string {
	return fmt.Sprintf("ScoredMutation(%s, %v)", s.Mutation, s.Score)
}

// SiteComparer orders mutations by Start, then End, then Kind. Ties within
// the same (Start, End, Kind) are left in encounter order by callers that
// sort with sort.SliceStable (ApplyMutations, RepeatMutations).
func SiteComparer(a, b Mutation) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End() != b.End() {
		return a.End() < b.End()
	}
	return a.Kind < b.Kind
}

// ScoreComparer orders ScoredMutations by ascending Score.
func ScoreComparer(a, b ScoredMutation) bool {
	return a.Score < b.Score
}

func sortBySite(muts []Mutation) {
	sort.SliceStable(muts, func(i, j int) bool { return SiteComparer(muts[i], muts[j]) })
}

// Translate re-expresses mut relative to a substring window
// [start, start+length) of some parent coordinate system, returning
// (zero, false) if mut lies strictly outside the window.
func Translate(mut Mutation, start, length int) (Mutation, bool) {
	insertionAdjust := 0
	if mut.IsInsertion() {
		insertionAdjust = 1
	}
	if mut.End()+insertionAdjust < start || (start+length+insertionAdjust) <= mut.Start {
		return Mutation{}, false
	}

	newStart := mut.Start
	if start > newStart {
		newStart = start
	}
	windowEnd := start + length
	mutEnd := mut.End()
	minEnd := mutEnd
	if windowEnd < minEnd {
		minEnd = windowEnd
	}
	newLen := minEnd - newStart

	if mut.IsInsertion() {
		return NewInsertion(newStart-start, mut.Bases), true
	}
	if newLen <= 0 {
		return Mutation{}, false
	}
	if mut.IsDeletion() {
		return NewDeletion(newStart-start, newLen), true
	}
	return NewSubstitution(newStart-start, mut.Bases[newStart-mut.Start:newStart-mut.Start+newLen]), true
}

// ApplyMutations applies muts to oldTpl and returns the resulting string.
// muts is sorted in place by SiteComparer and applied right-to-left so
// that earlier indices remain valid throughout. Input order of muts never
// affects the result.
func ApplyMutations(oldTpl string, muts []Mutation) string {
	if len(muts) == 0 || len(oldTpl) == 0 {
		return oldTpl
	}
	sortBySite(muts)

	newTpl := oldTpl
	for i := len(muts) - 1; i >= 0; i-- {
		m := muts[i]
		if m.IsInsertion() {
			newTpl = newTpl[:m.Start] + m.Bases + newTpl[m.Start:]
		} else {
			newTpl = newTpl[:m.Start] + m.Bases + newTpl[m.Start+m.Length:]
		}
	}
	return newTpl
}
