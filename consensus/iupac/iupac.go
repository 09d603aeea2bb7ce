// Package iupac implements the fixed IUPAC ambiguity-code table used to
// encode diploid sites, and the base-complement table used to keep an
// Integrator's reverse-strand template in lockstep with its forward
// template.
package iupac

// pairKey packs two bases into a lookup key. Order doesn't matter to the
// caller, so both orderings are populated in the table below.
type pairKey [2]byte

// ambiguityCode maps an unordered pair of canonical bases to the single
// IUPAC letter representing "one of these two". Only the six two-base
// codes are populated; three- and four-base ambiguity codes have no
// caller here.
var ambiguityCode = map[pairKey]byte{
	{'A', 'C'}: 'M',
	{'C', 'A'}: 'M',
	{'A', 'G'}: 'R',
	{'G', 'A'}: 'R',
	{'A', 'T'}: 'W',
	{'T', 'A'}: 'W',
	{'C', 'G'}: 'S',
	{'G', 'C'}: 'S',
	{'C', 'T'}: 'Y',
	{'T', 'C'}: 'Y',
	{'G', 'T'}: 'K',
	{'T', 'G'}: 'K',
}

// ambiguityBases is the inverse of ambiguityCode: which two bases a given
// ambiguity letter stands for.
var ambiguityBases = map[byte][2]byte{
	'M': {'A', 'C'},
	'R': {'A', 'G'},
	'W': {'A', 'T'},
	'S': {'C', 'G'},
	'Y': {'C', 'T'},
	'K': {'G', 'T'},
}

// Encode returns the IUPAC ambiguity code standing for the unordered pair
// {a, b}. It panics if a == b or the pair isn't one of the six two-base
// ambiguity codes; callers are expected to only ever pass distinct
// A/C/G/T bases, since a diploid site's major and minor base are never
// equal.
func Encode(a, b byte) byte {
	code, ok := ambiguityCode[pairKey{a, b}]
	if !ok {
		panic("iupac: no two-base ambiguity code for " + string([]byte{a, b}))
	}
	return code
}

// Decode returns the two bases an ambiguity code stands for, and whether
// code is a recognized two-base ambiguity code at all.
func Decode(code byte) (a, b byte, ok bool) {
	pair, ok := ambiguityBases[code]
	if !ok {
		return 0, 0, false
	}
	return pair[0], pair[1], true
}

// complementTable is a 256-entry lookup table mapping every byte that can
// legally appear in a template (canonical bases, IUPAC ambiguity codes,
// and 'N') to its complement, extended past plain A/C/G/T/N to the full
// two-base ambiguity alphabet, since a polished template may itself carry
// ambiguity bases at diploid sites. Anything else maps to 'N'.
var complementTable = buildComplementTable()

func buildComplementTable() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 'N'
	}
	set := func(a, b byte) {
		t[a] = b
		t[b] = a
	}
	set('A', 'T')
	set('C', 'G')
	// Self-complementary bases.
	t['N'] = 'N'
	t['S'] = 'S' // {C,G}
	t['W'] = 'W' // {A,T}
	// Two-base ambiguity codes complement to the code of their complemented
	// pair: R={A,G} <-> Y={C,T}, M={A,C} <-> K={G,T}.
	set('R', 'Y')
	set('M', 'K')
	return t
}

// Complement returns the complement of a single base or ambiguity code.
func Complement(b byte) byte {
	return complementTable[b]
}

// ReverseComplement returns the reverse complement of s. It never mutates
// s.
func ReverseComplement(s string) string {
	n := len(s)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = complementTable[s[i]]
	}
	return string(out)
}
