package consensus

import (
	"math"

	"github.com/grailbio/base/log"
)

// QualityValues holds four equal-length per-position quality vectors:
// overall, and split by edit class.
type QualityValues struct {
	QV    []int
	DelQV []int
	InsQV []int
	SubQV []int
}

// ProbabilityToQV converts an error probability into a rounded Phred-style
// quality value, clamping 0 to the smallest positive normal float64
// before taking its log to avoid -Inf. probability must be within [0,1].
func ProbabilityToQV(probability float64) (int, error) {
	if probability < 0.0 || probability > 1.0 {
		return 0, newInvalidArgument("invalid value: probability not in [0,1]")
	}
	if probability == 0.0 {
		probability = 0x1p-1022 // smallest positive normal float64
	}
	return int(math.Round(-10.0 * math.Log10(probability))), nil
}

func scoreSumToQV(scoreSum float64) int {
	qv, err := ProbabilityToQV(1.0 - 1.0/(1.0+scoreSum))
	if err != nil {
		// 1 - 1/(1+scoreSum) is always in [0,1) for scoreSum >= 0, so
		// this is unreachable; keep the panic close to the impossible
		// condition rather than threading an error through every caller.
		panic(err)
	}
	return qv
}

// ConsensusQualities returns the overall per-position QV vector for the
// current template held by ai.
func ConsensusQualities(ai *Integrator) []int {
	quals := make([]int, 0, ai.TemplateLength())
	ll := ai.LL()
	for i := 0; i < ai.TemplateLength(); i++ {
		var scoreSum float64
		for _, m := range Mutations(ai, i, i+1, false) {
			if m.Start > i {
				continue // trailing insertion at the right edge
			}
			score, err := ai.LLMutation(m)
			if err != nil {
				log.Error.Printf("consensus.ConsensusQualities: %v", err)
				continue
			}
			score -= ll
			if score < 0 {
				scoreSum += math.Exp(score)
			}
		}
		quals = append(quals, scoreSumToQV(scoreSum))
	}
	return quals
}

// ConsensusQVs returns the overall QV vector plus per-edit-class (del,
// ins, sub) QV vectors for the current template held by ai.
func ConsensusQVs(ai *Integrator) QualityValues {
	n := ai.TemplateLength()
	quals := make([]int, 0, n)
	delQVs := make([]int, 0, n)
	insQVs := make([]int, 0, n)
	subQVs := make([]int, 0, n)

	ll := ai.LL()
	for i := 0; i < n; i++ {
		var qualSum, delSum, insSum, subSum float64
		for _, m := range Mutations(ai, i, i+1, false) {
			if m.Start > i {
				continue // trailing insertion at the right edge
			}
			score, err := ai.LLMutation(m)
			if err != nil {
				log.Error.Printf("consensus.ConsensusQVs: %v", err)
				continue
			}
			score -= ll
			if score >= 0.0 {
				continue // should never happen; ignore defensively
			}
			expScore := math.Exp(score)
			qualSum += expScore
			switch {
			case m.IsDeletion():
				delSum += expScore
			case m.Start == m.End():
				insSum += expScore
			default:
				subSum += expScore
			}
		}
		quals = append(quals, scoreSumToQV(qualSum))
		delQVs = append(delQVs, scoreSumToQV(delSum))
		insQVs = append(insQVs, scoreSumToQV(insSum))
		subQVs = append(subQVs, scoreSumToQV(subSum))
	}

	return QualityValues{QV: quals, DelQV: delQVs, InsQV: insQVs, SubQV: subQVs}
}
