// Package consensustest provides a scripted, in-memory consensus.Evaluator
// double for exercising the Integrator and polish loop without a real HMM
// engine.
package consensustest

import (
	"fmt"

	"github.com/grailbio/polish/consensus"
)

// Evaluator is a scripted consensus.Evaluator. Its likelihood is the
// negative edit distance between its current template and a fixed Target
// sequence, so mutations that move the template closer to Target always
// score higher — enough signal to drive Polish to a known fixed point in
// tests without a real HMM.
//
// FailAfter, when positive, makes the Nth call to LL or LLHypothetical (1
// indexed, counting both together) and every later call return an
// *consensus.InvalidEvaluatorError instead of a score, to exercise the
// restart-on-invalidation path.
type Evaluator struct {
	Target    string
	ReadN     string
	StrandV   consensus.Strand
	FailAfter int

	tpl       string
	state     consensus.EvaluatorState
	calls     int
	flipFlops int
	alphaFrac float64
	betaFrac  float64
	zscore    float64
	mean      float64
	stddev    float64
}

// New creates a scripted Evaluator whose internal template starts as tpl
// (already oriented to match strand) and whose likelihood is scored against
// target.
func New(tpl, target, readName string, strand consensus.Strand) *Evaluator {
	return &Evaluator{
		Target:  target,
		ReadN:   readName,
		StrandV: strand,
		tpl:     tpl,
		state:   consensus.Valid,
		stddev:  1,
	}
}

// Template returns the evaluator's current internal template, for test
// assertions.
func (e *Evaluator) Template() string { return e.tpl }

func (e *Evaluator) score(tpl string) (float64, error) {
	e.calls++
	if e.FailAfter > 0 && e.calls >= e.FailAfter {
		return 0, &consensus.InvalidEvaluatorError{ReadName: e.ReadN, Reason: "scripted failure"}
	}
	return -float64(editDistance(tpl, e.Target)), nil
}

// LL implements consensus.Evaluator.
func (e *Evaluator) LL() (float64, error) {
	if e.state != consensus.Valid {
		return 0, &consensus.InvalidEvaluatorError{ReadName: e.ReadN, Reason: "not valid"}
	}
	return e.score(e.tpl)
}

// LLHypothetical implements consensus.Evaluator.
func (e *Evaluator) LLHypothetical(mut consensus.Mutation) (float64, error) {
	if e.state != consensus.Valid {
		return 0, &consensus.InvalidEvaluatorError{ReadName: e.ReadN, Reason: "not valid"}
	}
	hypothetical := consensus.ApplyMutations(e.tpl, []consensus.Mutation{mut})
	return e.score(hypothetical)
}

// ApplyMutation implements consensus.Evaluator.
func (e *Evaluator) ApplyMutation(mut consensus.Mutation) {
	e.ApplyMutations([]consensus.Mutation{mut})
}

// ApplyMutations implements consensus.Evaluator.
func (e *Evaluator) ApplyMutations(muts []consensus.Mutation) {
	before := e.tpl
	e.tpl = consensus.ApplyMutations(e.tpl, muts)
	if e.tpl != before {
		e.flipFlops++
	}
}

// State implements consensus.Evaluator.
func (e *Evaluator) State() consensus.EvaluatorState { return e.state }

// Invalidate implements consensus.Evaluator.
func (e *Evaluator) Invalidate(reason string) {
	e.state = consensus.Invalid
}

// Strand implements consensus.Evaluator.
func (e *Evaluator) Strand() consensus.Strand { return e.StrandV }

// ReadName implements consensus.Evaluator.
func (e *Evaluator) ReadName() string { return e.ReadN }

// NumFlipFlops implements consensus.Evaluator. It counts the number of
// ApplyMutation(s) calls that actually changed the template, a stand-in
// for the real HMM's re-estimation oscillation count.
func (e *Evaluator) NumFlipFlops() int { return e.flipFlops }

// AlphaPopulated implements consensus.Evaluator.
func (e *Evaluator) AlphaPopulated() float64 { return e.alphaFrac }

// BetaPopulated implements consensus.Evaluator.
func (e *Evaluator) BetaPopulated() float64 { return e.betaFrac }

// ZScore implements consensus.Evaluator.
func (e *Evaluator) ZScore() float64 { return e.zscore }

// SetZScore lets a test script a specific z-score for MaskIntervals /
// diagnostics assertions.
func (e *Evaluator) SetZScore(z float64) { e.zscore = z }

// NormalParameters implements consensus.Evaluator.
func (e *Evaluator) NormalParameters() (mean, stddev float64) { return e.mean, e.stddev }

// MaskIntervals implements consensus.Evaluator. The double has no
// per-interval error model, so it records that the call happened by
// disabling itself when maxErrRate is exactly 0, which is enough signal
// for tests that just want to confirm the Integrator broadcasts the call.
func (e *Evaluator) MaskIntervals(radius int, maxErrRate float64) {
	if maxErrRate == 0 {
		e.state = consensus.Disabled
	}
}

func (e *Evaluator) String() string {
	return fmt.Sprintf("consensustest.Evaluator{read:%s strand:%s tpl:%s}", e.ReadN, e.StrandV, e.tpl)
}

// editDistance is the standard Levenshtein distance, used only to give the
// scripted Evaluator a smooth scoring landscape.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
