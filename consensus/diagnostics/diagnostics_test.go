package diagnostics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/polish/consensus"
	"github.com/grailbio/polish/consensus/consensustest"
	"github.com/grailbio/polish/consensus/diagnostics"
)

func TestWriteReadGZIPRoundTrip(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	ai := consensus.NewIntegrator("ACGT", consensus.DefaultIntegratorConfig())
	ai.AddRead(consensustest.New("ACGT", "ACGT", "r1", consensus.Forward))
	result := consensus.Polish(ai, consensus.PolishConfig{MaxIters: 5, MutSeparation: 1, MutNeighborhood: 4})
	snap := diagnostics.BuildSnapshot(ai, result)

	path := filepath.Join(tempDir, "snapshot.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, diagnostics.WriteGZIP(f, snap))
	require.NoError(t, f.Close())

	f2, err := os.Open(path)
	require.NoError(t, err)
	defer f2.Close()

	got, err := diagnostics.ReadGZIP(f2)
	require.NoError(t, err)
	assert.Equal(t, snap.Result.Converged, got.Result.Converged)
	require.Len(t, got.Reads, 1)
	assert.Equal(t, "r1", got.Reads[0].ReadName)
	assert.Equal(t, "Forward", got.Reads[0].Strand)
}
