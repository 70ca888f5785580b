package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calkit/nbstage/pkg/domain"
)

func TestFilterUnderRoot_ExcludesOutsideRoot(t *testing.T) {
	got := FilterUnderRoot("/proj", []string{
		"/tmp/scratch.txt",
		"/other/place/data.csv",
		"data/in.csv",
		"/proj/data/raw.csv",
	})
	assert.Equal(t, []string{"data/in.csv", "data/raw.csv"}, got)
}

func TestFilterUnderRoot_Denylist(t *testing.T) {
	got := FilterUnderRoot("/proj", []string{
		"data/in.csv",
		".ipynb_checkpoints/nb-checkpoint.txt",
		"src/__pycache__/mod.cpython-312.pyc",
		".git/objects/ab",
		".dvc/cache/x",
		".calkit/state.json",
		"env/lib/site-packages/pkg/data.txt",
		"env/lib/dist-packages/pkg/data.txt",
		"analysis.ipynb",
		"mod.pyc",
	})
	assert.Equal(t, []string{"data/in.csv"}, got)
}

func TestFilterUnderRoot_DedupAndSort(t *testing.T) {
	got := FilterUnderRoot("/proj", []string{"b.csv", "a.csv", "b.csv", "./a.csv"})
	assert.Equal(t, []string{"a.csv", "b.csv"}, got)
}

func TestFilterUnderRoot_RootItselfExcluded(t *testing.T) {
	assert.Empty(t, FilterUnderRoot("/proj", []string{"/proj", "."}))
}

func TestNormalize(t *testing.T) {
	res := Normalize(&domain.TraceResult{
		Inputs:  []string{"data/in.csv", "/tmp/scratch.txt"},
		Outputs: []string{"/proj/results/out.csv", "/elsewhere/out.csv"},
	}, "/proj")
	require.NotNil(t, res)
	assert.Equal(t, []string{"data/in.csv"}, res.Inputs)
	assert.Equal(t, []string{"results/out.csv"}, res.Outputs)

	assert.Nil(t, Normalize(nil, "/proj"))
}

func TestClassifyMode(t *testing.T) {
	cases := []struct {
		mode          string
		input, output bool
	}{
		{"r", true, false},
		{"rb", true, false},
		{"rt", true, false},
		{"w", false, true},
		{"wb", false, true},
		{"a", false, true},
		{"x", false, true},
		{"r+", false, true},
		{"w+", false, true},
		{"rb+", false, true},
		{"", false, false},
	}
	for _, tc := range cases {
		t.Run("mode "+tc.mode, func(t *testing.T) {
			in, out := ClassifyMode(tc.mode)
			assert.Equal(t, tc.input, in, "input for %q", tc.mode)
			assert.Equal(t, tc.output, out, "output for %q", tc.mode)
		})
	}
}
