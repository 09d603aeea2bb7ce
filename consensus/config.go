package consensus

// IntegratorConfig carries user-provided filtering information for the
// evaluators an Integrator owns.
type IntegratorConfig struct {
	// MinZScore is the minimum acceptable per-read z-score.
	MinZScore float64
	// ScoreDiff is the minimum acceptable score gap used by callers that
	// filter borderline reads before adding them.
	ScoreDiff float64
}

// DefaultIntegratorConfig returns the documented default thresholds.
func DefaultIntegratorConfig() IntegratorConfig {
	return IntegratorConfig{MinZScore: -3.4, ScoreDiff: 25.0}
}

// PolishConfig configures Polish.
type PolishConfig struct {
	// MaxIters bounds the number of polish iterations.
	MaxIters int
	// MutSeparation is the minimum gap enforced between selected
	// mutations in a single round. Must be >= 1.
	MutSeparation int
	// MutNeighborhood is the radius, in template bases, searched around
	// each applied mutation for the next iteration's candidates.
	MutNeighborhood int
	// Diploid enables the two-allele test for non-deletion mutations.
	Diploid bool
}

// RepeatConfig configures PolishRepeats.
type RepeatConfig struct {
	// MaxRepeatSize is the largest tandem-repeat unit size considered.
	// Must be >= 2 to emit anything.
	MaxRepeatSize int
	// MinElementCount is the minimum number of tandem copies required
	// before a repeat expansion/contraction is emitted. Must be > 0.
	MinElementCount int
	// MaxIters bounds the number of repeat-polish iterations.
	MaxIters int
}
