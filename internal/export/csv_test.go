package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

func sampleResult() *scoring.Result {
	return &scoring.Result{Entries: []scoring.Entry{
		{Strategy: "Absorption", Score: 0.25},
		{Strategy: "Preservation, full", Score: 0.75},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult(), ""))
	assert.Equal(t, "Strategy,Final Score\nAbsorption,0.25\n\"Preservation, full\",0.75\n", buf.String())
}

func TestWriteCSVScoreHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &scoring.Result{}, HeaderScore))
	assert.Equal(t, "Strategy,Score\n", buf.String())
}

func TestFileSinkWrite(t *testing.T) {
	dir := t.TempDir()
	sink := NewFileSink(dir, HeaderFinalScore)

	path, err := sink.Write("ERP / CRM", sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ERP___CRM", ResultsFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Absorption,0.25")

	// A second export replaces the first and leaves no temp files behind.
	_, err = sink.Write("ERP / CRM", &scoring.Result{Entries: []scoring.Entry{{Strategy: "Only", Score: 1}}})
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Strategy,Final Score\nOnly,1\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"ERP-CRM":   "ERP-CRM",
		"  ":        "default",
		"..":        "default",
		"a/b\\c":    "a_b_c",
		"SAP_v2.1":  "SAP_v2.1",
		"Zürich HQ": "Z_rich_HQ",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeName(in), "SafeName(%q)", in)
	}
}
