package staleness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStale_StaleStagesMapping(t *testing.T) {
	status := map[string]any{
		"stale_stages": map[string]any{"build": true, "plot": false},
	}
	assert.True(t, IsStale("build", status))
	// Key presence alone marks stale, regardless of value.
	assert.True(t, IsStale("plot", status))
	assert.False(t, IsStale("absent", status))
}

func TestIsStale_NestedStageRecord(t *testing.T) {
	cases := map[string]map[string]any{
		"is_stale":    {"is_stale": true},
		"is_outdated": {"is_outdated": true},
		"outdated":    {"outdated": true},
		"needs_run":   {"needs_run": true},
		"string flag": {"is_stale": "true"},
		"number flag": {"needs_run": float64(1)},
	}
	for name, flags := range cases {
		t.Run(name, func(t *testing.T) {
			status := map[string]any{
				"pipeline": map[string]any{
					"stages": map[string]any{"process": flags},
				},
			}
			assert.True(t, IsStale("process", status))
		})
	}
}

func TestIsStale_NestedRecordFalsy(t *testing.T) {
	status := map[string]any{
		"pipeline": map[string]any{
			"stages": map[string]any{
				"process": map[string]any{
					"is_stale":  false,
					"needs_run": "false",
					"outdated":  float64(0),
				},
			},
		},
	}
	assert.False(t, IsStale("process", status))
	assert.False(t, IsStale("other", status))
}

func TestIsStale_PrecedenceIsDeterministic(t *testing.T) {
	// stale_stages wins even when the nested shape disagrees.
	status := map[string]any{
		"stale_stages": map[string]any{"build": true},
		"pipeline": map[string]any{
			"stages": map[string]any{
				"build": map[string]any{"is_stale": false},
				"plot":  map[string]any{"is_stale": true},
			},
		},
	}
	assert.True(t, IsStale("build", status))
	// And a stage absent from stale_stages is not stale, even though the
	// nested record claims it is: the first shape is authoritative.
	assert.False(t, IsStale("plot", status))
}

func TestIsStale_AbsentShapes(t *testing.T) {
	assert.False(t, IsStale("build", nil))
	assert.False(t, IsStale("build", map[string]any{}))
	assert.False(t, IsStale("build", map[string]any{"unrelated": 1}))
}
