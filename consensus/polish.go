package consensus

import (
	"github.com/grailbio/base/log"
)

// PolishResult reports the outcome of a Polish or PolishRepeats run.
type PolishResult struct {
	Converged         bool
	MutationsTested   int
	MutationsApplied  int
	MaxAlphaPopulated []float64
	MaxBetaPopulated  []float64
	MaxNumFlipFlops   []int
	// DiploidSites is populated only by Polish with cfg.Diploid set, once
	// convergence is reached. It lists the applied edits that carry a
	// diploid p-value.
	DiploidSites []DiploidSite
}

func recordDiagnostics(result *PolishResult, ai *Integrator) {
	result.MaxAlphaPopulated = append(result.MaxAlphaPopulated, ai.MaxAlphaPopulated())
	result.MaxBetaPopulated = append(result.MaxBetaPopulated, ai.MaxBetaPopulated())
	result.MaxNumFlipFlops = append(result.MaxNumFlipFlops, ai.MaxNumFlipFlops())
}

// scoreMutations runs one scoring pass over muts against ai, restarting
// from scratch every time an evaluator invalidates mid-pass. It returns
// the scored mutations found by a pass that completed without any
// invalidation: every candidate that improves on the current LL, plus, in
// diploid mode, every sentinel candidate that passed DiploidTest, scored
// whether or not it improves.
func scoreMutations(ai *Integrator, muts []Mutation, diploid bool) (scored []ScoredMutation, tested int) {
	for {
		ll := ai.LL()
		scored = scored[:0]
		tested = 0
		restart := false

		for _, mut := range muts {
			tested++

			if diploid && !mut.IsDeletion() {
				if mut.Bases == diploidSentinel {
					hist, err := ai.BestMutationHistogram(mut.Start, mut.Kind)
					if err != nil {
						log.Info.Printf("consensus: %v", err)
						restart = true
						break
					}
					newMut, p, ok := DiploidTest(hist, mut.Start, mut.Kind)
					if !ok {
						continue
					}
					ll2, err := ai.LLMutation(newMut)
					if err != nil {
						log.Info.Printf("consensus: %v", err)
						restart = true
						break
					}
					scored = append(scored, newMut.WithPValue(p).WithScore(ll2))
					continue
				}

				// Concrete diploid insertion/substitution candidate
				// already resolved by an earlier pass.
				ll2, err := ai.LLMutation(mut)
				if err != nil {
					log.Info.Printf("consensus: %v", err)
					restart = true
					break
				}
				if ll2 > ll {
					scored = append(scored, mut.WithScore(ll2))
				}
				continue
			}

			// Haploid, or a deletion candidate in diploid mode.
			ll2, err := ai.LLMutation(mut)
			if err != nil {
				log.Info.Printf("consensus: %v", err)
				restart = true
				break
			}
			if ll2 > ll {
				scored = append(scored, mut.WithScore(ll2))
			}
		}

		if !restart {
			return scored, tested
		}
	}
}

// Polish iteratively mutates ai's template to improve the joint
// likelihood of its reads. It mutates ai in place and returns diagnostics
// about the run.
func Polish(ai *Integrator, cfg PolishConfig) PolishResult {
	muts := MutationsFull(ai, cfg.Diploid)
	history := map[uint64]bool{stableHash64(ai.AsString()): true}

	var result PolishResult
	tracker := NewMutationTracker(ai.AsString())

	for iter := 0; iter < cfg.MaxIters; iter++ {
		scored, tested := scoreMutations(ai, muts, cfg.Diploid)
		result.MutationsTested += tested

		selection, err := BestMutations(scored, cfg.MutSeparation)
		if err != nil {
			// separation==0 is a programmer error caught at the call
			// boundary; propagating a zero-value result here would hide
			// it, so surface it the same way the original throws.
			panic(err)
		}

		if len(selection) == 0 {
			result.Converged = true
			if cfg.Diploid {
				for _, site := range tracker.MappingToOriginalTpl() {
					if site.Mutation.HasPValue() {
						result.DiploidSites = append(result.DiploidSites, site)
					}
				}
			}
			return result
		}

		lengthBeforeApply := ai.TemplateLength()
		newTplHash := stableHash64(ApplyMutations(ai.AsString(), append([]Mutation(nil), selection...)))

		cycle := history[newTplHash]
		if cfg.Diploid {
			recorded := selection
			if cycle {
				recorded = selection[:1]
			}
			sorted := append([]Mutation(nil), recorded...)
			sortBySite(sorted)
			tracker.AddSortedMutations(sorted, lengthBeforeApply)
		}

		if cycle {
			// Cyclic template trajectory: applying the single best
			// mutation instead of the whole selection breaks the cycle.
			ai.ApplyMutation(selection[0])
			result.MutationsApplied++
			recordDiagnostics(&result, ai)

			applied := []Mutation{selection[0]}
			muts = NearbyMutations(applied, selection, ai, cfg.MutNeighborhood, cfg.Diploid)
		} else {
			ai.ApplyMutations(selection)
			result.MutationsApplied += len(selection)
			recordDiagnostics(&result, ai)

			muts = NearbyMutations(selection, selection, ai, cfg.MutNeighborhood, cfg.Diploid)
		}

		history[stableHash64(ai.AsString())] = true
	}

	return result
}

// PolishRepeats runs the same iterative search as Polish, restricted to
// tandem-repeat expansion/contraction mutations, selecting only the
// single globally best improving mutation per iteration.
func PolishRepeats(ai *Integrator, cfg RepeatConfig) PolishResult {
	var result PolishResult

	for iter := 0; iter < cfg.MaxIters; iter++ {
		muts := RepeatMutationsFull(ai, cfg)

		var best *ScoredMutation
		var tested int

		for {
			ll := ai.LL()
			best = nil
			tested = 0
			restart := false

			for _, mut := range muts {
				tested++
				ll2, err := ai.LLMutation(mut)
				if err != nil {
					log.Info.Printf("consensus: %v", err)
					restart = true
					break
				}
				if ll2 > ll && (best == nil || ll2 > best.Score) {
					sm := mut.WithScore(ll2)
					best = &sm
				}
			}

			if !restart {
				break
			}
		}

		result.MutationsTested += tested

		if best == nil {
			result.Converged = true
			break
		}

		ai.ApplyMutations([]Mutation{best.Mutation})
		result.MutationsApplied++
		recordDiagnostics(&result, ai)
	}

	return result
}
