package consensus

import "fmt"

// EvaluatorState is the lifecycle state of an Evaluator.
type EvaluatorState int

const (
	// Valid means the evaluator's likelihood can be trusted and
	// contributes to the Integrator's aggregate LL.
	Valid EvaluatorState = iota
	// Invalid means a numerical failure occurred during HMM evaluation;
	// the evaluator no longer contributes to LL.
	Invalid
	// Disabled means the evaluator was explicitly excluded (e.g. masked
	// out by MaskIntervals) and never contributes to LL.
	Disabled
)

func (s EvaluatorState) String() string {
	switch s {
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	case Disabled:
		return "Disabled"
	default:
		return fmt.Sprintf("EvaluatorState(%d)", int(s))
	}
}

// Strand identifies which strand of the template an Evaluator's read
// aligns to.
type Strand int

const (
	// Forward means the read aligns to the template as given.
	Forward Strand = iota
	// Reverse means the read aligns to the template's reverse
	// complement.
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "Reverse"
	}
	return "Forward"
}

// InvalidEvaluatorError reports that an Evaluator could not compute a
// likelihood. It is non-fatal: callers (the polish loop, the QV routines)
// recover by dropping the offending evaluator and retrying the rest of the
// batch.
type InvalidEvaluatorError struct {
	// Index is the offending evaluator's position in the Integrator's
	// evaluator list at the time of failure.
	Index int
	// ReadName identifies the read the evaluator was built from, when
	// known.
	ReadName string
	// Reason is a human-readable description of the numerical failure.
	Reason string
}

func (e *InvalidEvaluatorError) Error() string {
	if e.ReadName != "" {
		return fmt.Sprintf("consensus: evaluator %d (read %q) invalidated: %s", e.Index, e.ReadName, e.Reason)
	}
	return fmt.Sprintf("consensus: evaluator %d invalidated: %s", e.Index, e.Reason)
}

// Evaluator is the opaque per-read HMM object the Integrator coordinates.
// Production code plugs in a real forward/backward HMM evaluator; tests
// use consensustest.Evaluator.
type Evaluator interface {
	// LL returns the current per-read likelihood. It may return an
	// *InvalidEvaluatorError.
	LL() (float64, error)
	// LLHypothetical returns the likelihood under mut without mutating
	// the evaluator's internal template. It may return an
	// *InvalidEvaluatorError.
	LLHypothetical(mut Mutation) (float64, error)
	// ApplyMutation commits mut to the evaluator's internal template.
	ApplyMutation(mut Mutation)
	// ApplyMutations commits muts to the evaluator's internal template.
	ApplyMutations(muts []Mutation)

	// State returns the evaluator's current lifecycle state.
	State() EvaluatorState
	// Invalidate transitions the evaluator to Invalid with the given
	// reason. It is idempotent.
	Invalidate(reason string)

	// Strand returns which template strand this evaluator's read
	// aligns to.
	Strand() Strand
	// ReadName identifies the read this evaluator was built from.
	ReadName() string

	// NumFlipFlops returns the number of HMM re-estimation oscillation
	// events observed for this read.
	NumFlipFlops() int
	// AlphaPopulated returns the fraction, in [0,1], of the forward
	// (alpha) matrix that is populated.
	AlphaPopulated() float64
	// BetaPopulated returns the fraction, in [0,1], of the backward
	// (beta) matrix that is populated.
	BetaPopulated() float64
	// ZScore returns this evaluator's current z-score.
	ZScore() float64
	// NormalParameters returns the (mean, stddev) of the normal
	// approximation used to compute ZScore.
	NormalParameters() (mean, stddev float64)

	// MaskIntervals masks template windows of width 1+2*radius around
	// this evaluator's read wherever the empirical error rate exceeds
	// maxErrRate.
	MaskIntervals(radius int, maxErrRate float64)
}
