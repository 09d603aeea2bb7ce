package consensus

import (
	"sort"

	farm "github.com/dgryski/go-farm"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/grailbio/polish/consensus/iupac"
)

// Diploid significance-test constants.
const (
	minCoverage       = 10
	majorityFraction  = 0.75
	diploidErrorRate  = 0.08
	significanceLevel = 0.005
	minFractionMinor  = 0.25
)

// DiploidTest runs the diploid significance test for a candidate site
// (start, kind). hist must be sorted descending by
// count, as returned by Integrator.BestMutationHistogram. On success it
// returns the mutation with the sentinel payload replaced by the IUPAC
// ambiguity code encoding the major and minor alleles, along with the
// binomial p-value; ok is false if any filter rejects the site.
func DiploidTest(hist [4]BaseCount, start int, kind MutationKind) (mut Mutation, pValue float64, ok bool) {
	coverage := 0
	for _, h := range hist {
		coverage += h.Count
	}
	if coverage < minCoverage {
		return Mutation{}, 0, false
	}
	if hist[0].Count+hist[1].Count < int(float64(coverage)*majorityFraction) {
		return Mutation{}, 0, false
	}

	binom := distuv.Binomial{N: float64(coverage), P: 1 - diploidErrorRate}
	p := binom.CDF(float64(hist[0].Count))
	if p > significanceLevel {
		return Mutation{}, 0, false
	}

	if float64(hist[1].Count) < float64(coverage)*minFractionMinor {
		return Mutation{}, 0, false
	}

	ambiguous := iupac.Encode(hist[0].Base, hist[1].Base)
	if kind == Insertion {
		mut = NewInsertion(start, string(ambiguous))
	} else {
		mut = NewSubstitution(start, string(ambiguous))
	}
	return mut, p, true
}

// MutationTracker accumulates accepted diploid edits across polish
// iterations, against an ever-changing "current" template, so that the
// final set of diploid sites can be reported back in the coordinates of
// the original input template.
//
// Every accepted mutation is recorded against the template length it was
// applied to, and its position in that template is walked back through
// the effect of the mutations applied before it, most recent first.
type MutationTracker struct {
	originalLength int
	// records are kept in application order; each entry captures the
	// mutation and the forward-template length just before it was
	// applied.
	records []trackedMutation
}

type trackedMutation struct {
	mut          Mutation
	lengthBefore int
}

// NewMutationTracker creates a tracker seeded with the length of the
// original (pre-polish) template.
func NewMutationTracker(originalTemplate string) *MutationTracker {
	return &MutationTracker{originalLength: len(originalTemplate)}
}

// AddSortedMutations records muts (already sorted by SiteComparer, as the
// polish loop's selection step produces) as having just been applied to a
// template of the given length.
func (t *MutationTracker) AddSortedMutations(muts []Mutation, lengthBeforeApply int) {
	for _, m := range muts {
		t.records = append(t.records, trackedMutation{mut: m, lengthBefore: lengthBeforeApply})
	}
}

// DiploidSite describes one mutation recorded by a MutationTracker, mapped
// back to the original template's coordinates.
type DiploidSite struct {
	// OriginalPosition is the position in the original (pre-polish)
	// template this site corresponds to.
	OriginalPosition int
	// Mutation is the recorded edit, in the coordinates of the template
	// it was applied to. A diploid edit carries its IUPAC ambiguity
	// payload and p-value.
	Mutation Mutation
}

// MappingToOriginalTpl returns, for every recorded mutation, the position
// in the original input template it corresponds to, sorted by that
// position. Each position is walked backward through the effect of every
// mutation applied before it (an earlier insertion before a site shifts
// it left by the insertion's length when mapping back; an earlier
// deletion before a site shifts it right by the deletion's length), most
// recently applied first.
func (t *MutationTracker) MappingToOriginalTpl() []DiploidSite {
	var sites []DiploidSite
	for idx, rec := range t.records {
		pos := rec.mut.Start
		// Walk every mutation applied strictly before rec back out of
		// pos's coordinate, most-recently-applied first.
		for i := idx - 1; i >= 0; i-- {
			earlier := t.records[i]
			if earlier.mut.Start > pos {
				continue
			}
			if earlier.mut.Start == pos && earlier.mut.IsInsertion() {
				continue
			}
			pos -= earlier.mut.LengthDelta()
		}
		sites = append(sites, DiploidSite{OriginalPosition: pos, Mutation: rec.mut})
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].OriginalPosition < sites[j].OriginalPosition })
	return sites
}

// stableHash64 returns a stable 64-bit hash of s, used by the polish loop
// to detect a cyclic template trajectory.
func stableHash64(s string) uint64 {
	return farm.Hash64WithSeed([]byte(s), 0)
}
