// Package diagnostics writes gzip-compressed JSON snapshots of a polish
// run, for offline inspection of convergence behavior and per-read health.
package diagnostics

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"

	"blainsmith.com/go/seahash"
	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/polish/consensus"
)

// Snapshot is the serialized form of one polish run, combining the
// aggregate PolishResult with a per-read breakdown pulled from the
// Integrator at the time of the call.
type Snapshot struct {
	Result PolishResult `json:"result"`
	Reads  []ReadStatus `json:"reads"`
}

// PolishResult mirrors consensus.PolishResult for JSON encoding; it's a
// separate type rather than an embedded one so that adding JSON tags never
// has to touch the polish loop's own struct.
type PolishResult struct {
	Converged         bool      `json:"converged"`
	MutationsTested   int       `json:"mutations_tested"`
	MutationsApplied  int       `json:"mutations_applied"`
	MaxAlphaPopulated []float64 `json:"max_alpha_populated"`
	MaxBetaPopulated  []float64 `json:"max_beta_populated"`
	MaxNumFlipFlops   []int     `json:"max_num_flip_flops"`
}

// ReadStatus is one evaluator's diagnostic state.
type ReadStatus struct {
	ReadName     string  `json:"read_name"`
	Strand       string  `json:"strand"`
	State        string  `json:"state"`
	NumFlipFlops int     `json:"num_flip_flops"`
	ZScore       float64 `json:"z_score"`
}

// BuildSnapshot reads ai's current per-evaluator diagnostics into a
// Snapshot alongside result.
func BuildSnapshot(ai *consensus.Integrator, result consensus.PolishResult) Snapshot {
	names := ai.ReadNames()
	strands := ai.StrandTypes()
	states := ai.States()
	flipFlops := ai.NumFlipFlops()
	zscores := ai.ZScores()

	reads := make([]ReadStatus, ai.NumEvaluators())
	for i := range reads {
		reads[i] = ReadStatus{
			ReadName:     names[i],
			Strand:       strands[i].String(),
			State:        states[i].String(),
			NumFlipFlops: flipFlops[i],
			ZScore:       zscores[i],
		}
	}

	return Snapshot{
		Result: PolishResult{
			Converged:         result.Converged,
			MutationsTested:   result.MutationsTested,
			MutationsApplied:  result.MutationsApplied,
			MaxAlphaPopulated: result.MaxAlphaPopulated,
			MaxBetaPopulated:  result.MaxBetaPopulated,
			MaxNumFlipFlops:   result.MaxNumFlipFlops,
		},
		Reads: reads,
	}
}

// WriteGZIP writes snap to w as gzip-compressed JSON; the JSON is followed,
// inside the same gzip stream, by an 8-byte trailer holding a seahash
// checksum of the uncompressed JSON payload. The
// trailer guards against a truncated or bit-flipped diagnostics dump going
// unnoticed.
func WriteGZIP(w io.Writer, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	h := seahash.New()
	h.Write(payload)

	gz := gzip.NewWriter(w)
	if _, err := gz.Write(payload); err != nil {
		gz.Close()
		return err
	}
	var trailer [8]byte
	binary.LittleEndian.PutUint64(trailer[:], h.Sum64())
	if _, err := gz.Write(trailer[:]); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// ReadGZIP reads back a Snapshot written by WriteGZIP, verifying its
// checksum trailer.
func ReadGZIP(r io.Reader) (Snapshot, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return Snapshot{}, err
	}
	defer gz.Close()

	all, err := ioutil.ReadAll(gz)
	if err != nil {
		return Snapshot{}, err
	}
	if len(all) < 8 {
		return Snapshot{}, fmt.Errorf("diagnostics: snapshot too short to contain a checksum trailer")
	}
	payload, trailer := all[:len(all)-8], all[len(all)-8:]

	h := seahash.New()
	h.Write(payload)
	if h.Sum64() != binary.LittleEndian.Uint64(trailer) {
		return Snapshot{}, fmt.Errorf("diagnostics: checksum mismatch, snapshot is corrupt")
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
