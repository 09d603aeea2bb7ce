package consensus

// diploidSentinel is the placeholder base standing in for "run the
// statistical test at this site and decide" in diploid mode. It is never
// a committed base; the polish loop's scoring phase replaces it with a
// concrete IUPAC ambiguity code or drops the candidate.
const diploidSentinel = "Z"

// candidateBases returns the alphabet Mutations should iterate over: the
// four canonical bases in haploid mode, or the single diploid sentinel in
// diploid mode.
func candidateBases(diploid bool) []byte {
	if diploid {
		return []byte(diploidSentinel)
	}
	return []byte{'A', 'C', 'G', 'T'}
}

// AppendMutations appends to muts every site-local mutation the candidate
// generator emits for the half-open template window [start, end),
// including the homopolymer-aware suppression of extension-insertions and
// non-leading-run deletions.
func AppendMutations(muts []Mutation, ai *Integrator, start, end int, diploid bool) []Mutation {
	if start == end {
		return muts
	}
	bases := candidateBases(diploid)

	var last byte
	if start > 0 {
		last = ai.CharAt(start - 1)
	}

	for i := start; i < end; i++ {
		curr := ai.CharAt(i)

		// Insertions at site i precede deletion/substitution at i in
		// emission order; their End() is i, less than i+1.
		for _, b := range bases {
			if b != last {
				muts = append(muts, NewInsertion(i, string(b)))
			}
		}

		// Only the first base of a homopolymer run may be deleted.
		if curr != last {
			muts = append(muts, NewDeletion(i, 1))
		}

		for _, b := range bases {
			if b != curr {
				muts = append(muts, NewSubstitution(i, string(b)))
			}
		}

		last = curr
	}

	// Trailing insertions at end, suppressing a homopolymer extension of
	// the last emitted base.
	for _, b := range bases {
		if b != last {
			muts = append(muts, NewInsertion(end, string(b)))
		}
	}

	return muts
}

// Mutations returns every site-local mutation for [start, end).
func Mutations(ai *Integrator, start, end int, diploid bool) []Mutation {
	return AppendMutations(nil, ai, start, end, diploid)
}

// MutationsFull returns every site-local mutation across the whole
// template.
func MutationsFull(ai *Integrator, diploid bool) []Mutation {
	return Mutations(ai, 0, ai.TemplateLength(), diploid)
}

// AppendRepeatMutations appends to muts, for each repeat unit size in
// [2, cfg.MaxRepeatSize] and each position in [start, end), an insertion
// of one extra tandem copy and a deletion of one tandem copy, wherever a
// maximal run of identical length-repeatSize copies has at least
// cfg.MinElementCount elements, including the skip-past-the-run advance.
// Returns muts sorted by SiteComparer.
func AppendRepeatMutations(muts []Mutation, ai *Integrator, cfg RepeatConfig, start, end int) []Mutation {
	if cfg.MaxRepeatSize < 2 || cfg.MinElementCount <= 0 {
		return muts
	}
	tpl := ai.AsString()

	for repeatSize := 2; repeatSize <= cfg.MaxRepeatSize; repeatSize++ {
		for i := start; i+repeatSize <= end; {
			nElem := 1
			for j := i + repeatSize; j+repeatSize <= end; j += repeatSize {
				if tpl[j:j+repeatSize] == tpl[i:i+repeatSize] {
					nElem++
				} else {
					break
				}
			}

			if nElem >= cfg.MinElementCount {
				muts = append(muts, NewInsertion(i, tpl[i:i+repeatSize]))
				muts = append(muts, NewDeletion(i, repeatSize))
			}

			if nElem > 1 {
				i += repeatSize*(nElem-1) + 1
			} else {
				i++
			}
		}
	}

	sortBySite(muts)
	return muts
}

// RepeatMutations returns every tandem-repeat mutation for [start, end).
func RepeatMutations(ai *Integrator, cfg RepeatConfig, start, end int) []Mutation {
	return AppendRepeatMutations(nil, ai, cfg, start, end)
}

// RepeatMutationsFull returns every tandem-repeat mutation across the
// whole template.
func RepeatMutationsFull(ai *Integrator, cfg RepeatConfig) []Mutation {
	return RepeatMutations(ai, cfg, 0, ai.TemplateLength())
}

// BestMutations greedily selects a maximal set of non-overlapping
// mutations from scored: repeatedly pick the highest-scoring remaining
// mutation, then discard every other mutation whose [Start, End] span
// touches the picked one's [Start-separation, End+separation) window,
// until none remain. separation must be >= 1; separation == 0 is rejected
// rather than treated as "no suppression".
func BestMutations(scored []ScoredMutation, separation int) ([]Mutation, error) {
	if separation == 0 {
		return nil, newInvalidArgument("nonzero separation required")
	}

	remaining := append([]ScoredMutation(nil), scored...)
	var result []Mutation

	for len(remaining) > 0 {
		bestIdx := 0
		for i := 1; i < len(remaining); i++ {
			if ScoreComparer(remaining[bestIdx], remaining[i]) {
				bestIdx = i
			}
		}
		best := remaining[bestIdx]
		result = append(result, best.Mutation)

		windowStart := 0
		if best.Start > separation {
			windowStart = best.Start - separation
		}
		windowEnd := best.End() + separation

		kept := remaining[:0]
		for _, m := range remaining {
			if windowStart <= m.End() && m.Start < windowEnd {
				continue // overlaps the picked mutation's exclusion window
			}
			kept = append(kept, m)
		}
		remaining = kept
	}

	return result, nil
}

// NearbyMutations computes the site mutations in the neighborhood of
// centers, after centers' coordinates have been translated through the
// cumulative length delta of every applied mutation that precedes them.
// Overlapping neighborhoods are merged before generating mutations, so a
// site is never enumerated twice.
func NearbyMutations(applied, centers []Mutation, ai *Integrator, neighborhood int, diploid bool) []Mutation {
	if len(centers) == 0 {
		return nil
	}

	tplLen := ai.TemplateLength()
	clamp := func(i int) int {
		if i < 0 {
			return 0
		}
		if i > tplLen {
			return tplLen
		}
		return i
	}

	appliedSorted := append([]Mutation(nil), applied...)
	centersSorted := append([]Mutation(nil), centers...)
	sortBySite(appliedSorted)
	sortBySite(centersSorted)

	mutRange := func(m Mutation, diff int) (int, int) {
		return clamp(diff + m.Start - neighborhood), clamp(diff + m.End() + neighborhood)
	}

	type window struct{ start, end int }
	var windows []window

	appliedIdx := 0
	lengthDiff := 0
	for appliedIdx < len(appliedSorted) && appliedSorted[appliedIdx].End() <= centersSorted[0].Start {
		lengthDiff += appliedSorted[appliedIdx].LengthDelta()
		appliedIdx++
	}
	start0, end0 := mutRange(centersSorted[0], lengthDiff)
	windows = append(windows, window{start0, end0})

	for ci := 1; ci < len(centersSorted); ci++ {
		for appliedIdx < len(appliedSorted) && appliedSorted[appliedIdx].End() <= centersSorted[ci].Start {
			lengthDiff += appliedSorted[appliedIdx].LengthDelta()
			appliedIdx++
		}
		nextStart, nextEnd := mutRange(centersSorted[ci], lengthDiff)

		last := &windows[len(windows)-1]
		if nextStart <= last.end {
			last.end = nextEnd
		} else {
			windows = append(windows, window{nextStart, nextEnd})
		}
	}

	var result []Mutation
	for _, w := range windows {
		result = AppendMutations(result, ai, w.start, w.end, diploid)
	}
	return result
}
