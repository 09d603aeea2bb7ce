package consensus

import (
	"errors"
	"sort"

	grailerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/grailbio/polish/consensus/iupac"
)

// Integrator owns a draft template and the bag of evaluators (one per
// read) aligned to it. It is single-threaded cooperative: concurrent use
// of one Integrator from multiple goroutines is not supported; run one
// Integrator per genomic region.
type Integrator struct {
	cfg IntegratorConfig

	forward string
	reverse string

	evals []Evaluator
}

// NewIntegrator creates an Integrator over the given draft template.
func NewIntegrator(tpl string, cfg IntegratorConfig) *Integrator {
	return &Integrator{
		cfg:     cfg,
		forward: tpl,
		reverse: iupac.ReverseComplement(tpl),
	}
}

// TemplateLength returns the length of the current forward template.
func (ai *Integrator) TemplateLength() int { return len(ai.forward) }

// CharAt returns the forward template base at position i.
func (ai *Integrator) CharAt(i int) byte { return ai.forward[i] }

// AsString returns the current forward template.
func (ai *Integrator) AsString() string { return ai.forward }

// AddRead registers eval, an already-constructed Evaluator whose internal
// template the caller has built to match the Integrator's current
// template (reverse-complemented if eval.Strand() == Reverse). Building an
// evaluator from a mapped read happens upstream of the Integrator, which
// treats eval as opaque from the moment it is handed over. Returns eval's
// initial state.
func (ai *Integrator) AddRead(eval Evaluator) EvaluatorState {
	ai.evals = append(ai.evals, eval)
	return eval.State()
}

// reverseComplementMutation translates mut, expressed in forward-template
// coordinates, into the equivalent mutation against the reverse-strand
// template: the payload is reverse-complemented (not just
// base-complemented) and Start is reflected through the template length,
// since the reverse template is itself the full reverse complement of the
// forward template.
func reverseComplementMutation(mut Mutation, templateLength int) Mutation {
	newStart := templateLength - mut.End()
	switch mut.Kind {
	case Insertion:
		return NewInsertion(newStart, iupac.ReverseComplement(mut.Bases))
	case Deletion:
		return NewDeletion(newStart, mut.Length)
	default:
		return NewSubstitution(newStart, iupac.ReverseComplement(mut.Bases))
	}
}

// orient re-expresses mut, given in forward-template coordinates computed
// against a forward template of length templateLength, for eval's strand.
// templateLength must be the forward template's length before mut is
// applied, since mut's Start/End are expressed in those coordinates.
func orient(eval Evaluator, mut Mutation, templateLength int) Mutation {
	if eval.Strand() == Reverse {
		return reverseComplementMutation(mut, templateLength)
	}
	return mut
}

// ApplyMutation applies a single mutation to the forward and reverse
// templates and broadcasts it, orientation-adjusted, to every evaluator.
func (ai *Integrator) ApplyMutation(mut Mutation) {
	ai.ApplyMutations([]Mutation{mut})
}

// ApplyMutations applies muts to the forward and reverse templates and
// broadcasts them, orientation-adjusted, to every evaluator. Orientation is
// computed against the pre-mutation template length, since muts' Start/End
// fields are expressed in those coordinates.
func (ai *Integrator) ApplyMutations(muts []Mutation) {
	if len(muts) == 0 {
		return
	}
	preLength := ai.TemplateLength()

	oriented := make([][]Mutation, len(ai.evals))
	for e, eval := range ai.evals {
		oriented[e] = make([]Mutation, len(muts))
		for i, m := range muts {
			oriented[e][i] = orient(eval, m, preLength)
		}
	}

	ai.forward = ApplyMutations(ai.forward, muts)
	ai.reverse = iupac.ReverseComplement(ai.forward)

	for e, eval := range ai.evals {
		eval.ApplyMutations(oriented[e])
	}
}

// LL returns the sum of LL() over every Valid evaluator.
func (ai *Integrator) LL() float64 {
	var sum float64
	for _, eval := range ai.evals {
		if eval.State() != Valid {
			continue
		}
		ll, err := eval.LL()
		if err != nil {
			// A read-only diagnostic query invalidating mid-flight is
			// surprising but not actionable here; fold it into the sum
			// as a no-op contribution and let the next mutating call
			// surface the failure through the usual path.
			continue
		}
		sum += ll
	}
	return sum
}

// LLMutation returns the sum over every Valid evaluator of its hypothetical
// likelihood under mut. If any evaluator's query fails, that evaluator is
// transitioned to Invalid and an *InvalidEvaluatorError is returned; the
// caller must retry its whole scoring pass, since the set of valid
// evaluators just shrank.
func (ai *Integrator) LLMutation(mut Mutation) (float64, error) {
	var sum float64
	for i, eval := range ai.evals {
		if eval.State() != Valid {
			continue
		}
		ll, err := eval.LLHypothetical(orient(eval, mut, ai.TemplateLength()))
		if err != nil {
			return 0, ai.invalidate(i, eval, err)
		}
		sum += ll
	}
	return sum, nil
}

// LLs returns the per-evaluator hypothetical LL under mut, one entry per
// currently Valid evaluator (Invalid/Disabled evaluators are omitted).
// Invalidation semantics match LLMutation.
func (ai *Integrator) LLs(mut Mutation) ([]float64, error) {
	lls := make([]float64, 0, len(ai.evals))
	for i, eval := range ai.evals {
		if eval.State() != Valid {
			continue
		}
		ll, err := eval.LLHypothetical(orient(eval, mut, ai.TemplateLength()))
		if err != nil {
			return nil, ai.invalidate(i, eval, err)
		}
		lls = append(lls, ll)
	}
	return lls, nil
}

func (ai *Integrator) invalidate(idx int, eval Evaluator, err error) error {
	reason := err.Error()
	var ive *InvalidEvaluatorError
	if errors.As(err, &ive) {
		reason = ive.Reason
	}
	eval.Invalidate(reason)
	log.Info.Printf("consensus: evaluator %d (%s) invalidated: %s", idx, eval.ReadName(), reason)
	return &InvalidEvaluatorError{Index: idx, ReadName: eval.ReadName(), Reason: reason}
}

// BaseCount is one entry of a BestMutationHistogram result.
type BaseCount struct {
	Base  byte
	Count int
}

var bases = [4]byte{'A', 'C', 'G', 'T'}

// BestMutationHistogram returns, for each of A/C/G/T, the number of Valid
// evaluators for which substituting (or inserting, per kind) that base at
// start yields the largest hypothetical LL among the four; ties go to the
// lexicographically smallest base. The result is sorted descending by
// count, ties broken by ascending base. kind must be Insertion or
// Substitution.
func (ai *Integrator) BestMutationHistogram(start int, kind MutationKind) ([4]BaseCount, error) {
	var counts [4]BaseCount
	for i, b := range bases {
		counts[i] = BaseCount{Base: b}
	}

	for idx, eval := range ai.evals {
		if eval.State() != Valid {
			continue
		}
		bestBase := -1
		var bestLL float64
		for i, b := range bases {
			mut := mutationOfKind(kind, start, b)
			ll, err := eval.LLHypothetical(orient(eval, mut, ai.TemplateLength()))
			if err != nil {
				return counts, ai.invalidate(idx, eval, err)
			}
			if bestBase == -1 || ll > bestLL {
				bestBase = i
				bestLL = ll
			}
		}
		counts[bestBase].Count++
	}

	sort.SliceStable(counts[:], func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Base < counts[j].Base
	})
	return counts, nil
}

func mutationOfKind(kind MutationKind, start int, base byte) Mutation {
	if kind == Insertion {
		return NewInsertion(start, string(base))
	}
	return NewSubstitution(start, string(base))
}

// MaskIntervals masks template windows of width 1+2*radius around each
// evaluator's read wherever the empirical error rate exceeds maxErrRate.
func (ai *Integrator) MaskIntervals(radius int, maxErrRate float64) {
	for _, eval := range ai.evals {
		eval.MaskIntervals(radius, maxErrRate)
	}
}

// AvgZScore returns the mean z-score across all evaluators.
func (ai *Integrator) AvgZScore() float64 {
	if len(ai.evals) == 0 {
		return 0
	}
	var sum float64
	for _, eval := range ai.evals {
		sum += eval.ZScore()
	}
	return sum / float64(len(ai.evals))
}

// ZScores returns the z-score of every evaluator.
func (ai *Integrator) ZScores() []float64 {
	out := make([]float64, len(ai.evals))
	for i, eval := range ai.evals {
		out[i] = eval.ZScore()
	}
	return out
}

// NormalParameters returns the (mean, stddev) pair of every evaluator.
func (ai *Integrator) NormalParameters() []struct{ Mean, StdDev float64 } {
	out := make([]struct{ Mean, StdDev float64 }, len(ai.evals))
	for i, eval := range ai.evals {
		out[i].Mean, out[i].StdDev = eval.NormalParameters()
	}
	return out
}

// NumFlipFlops returns the flip-flop count of every evaluator.
func (ai *Integrator) NumFlipFlops() []int {
	out := make([]int, len(ai.evals))
	for i, eval := range ai.evals {
		out[i] = eval.NumFlipFlops()
	}
	return out
}

// MaxNumFlipFlops returns the maximum flip-flop count across evaluators.
func (ai *Integrator) MaxNumFlipFlops() int {
	var max int
	for i, eval := range ai.evals {
		if n := eval.NumFlipFlops(); i == 0 || n > max {
			max = n
		}
	}
	return max
}

// MaxAlphaPopulated returns the maximum alpha-matrix-populated fraction
// across evaluators.
func (ai *Integrator) MaxAlphaPopulated() float64 {
	var max float64
	for i, eval := range ai.evals {
		if v := eval.AlphaPopulated(); i == 0 || v > max {
			max = v
		}
	}
	return max
}

// MaxBetaPopulated returns the maximum beta-matrix-populated fraction
// across evaluators.
func (ai *Integrator) MaxBetaPopulated() float64 {
	var max float64
	for i, eval := range ai.evals {
		if v := eval.BetaPopulated(); i == 0 || v > max {
			max = v
		}
	}
	return max
}

// States returns the lifecycle state of every evaluator.
func (ai *Integrator) States() []EvaluatorState {
	out := make([]EvaluatorState, len(ai.evals))
	for i, eval := range ai.evals {
		out[i] = eval.State()
	}
	return out
}

// StrandTypes returns the strand of every evaluator.
func (ai *Integrator) StrandTypes() []Strand {
	out := make([]Strand, len(ai.evals))
	for i, eval := range ai.evals {
		out[i] = eval.Strand()
	}
	return out
}

// ReadNames returns the read name of every evaluator.
func (ai *Integrator) ReadNames() []string {
	out := make([]string, len(ai.evals))
	for i, eval := range ai.evals {
		out[i] = eval.ReadName()
	}
	return out
}

// GetEvaluator returns read-only access to evaluator idx.
func (ai *Integrator) GetEvaluator(idx int) Evaluator { return ai.evals[idx] }

// NumEvaluators returns the number of evaluators currently registered,
// regardless of state.
func (ai *Integrator) NumEvaluators() int { return len(ai.evals) }

// newInvalidArgument builds the InvalidArgument-kind error the rest of the
// package raises for programmer errors.
func newInvalidArgument(args ...interface{}) error {
	return grailerrors.E(append([]interface{}{grailerrors.Invalid}, args...)...)
}
