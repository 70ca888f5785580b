// Package staleness normalizes the backend's heterogeneous "is this stage
// out of date" signals into one deterministic boolean per stage.
//
// The pipeline/status response shape has changed across backend versions,
// and this package is the single place that knows about all of them. UI
// call-sites must go through IsStale and never read the raw document.
package staleness

import (
	"github.com/mitchellh/mapstructure"
)

// statusDoc captures the two known response shapes. Decoding is lenient:
// unknown fields are ignored so new backend versions do not break old
// clients.
type statusDoc struct {
	StaleStages map[string]any `mapstructure:"stale_stages"`
	Pipeline    struct {
		Stages map[string]stageFlags `mapstructure:"stages"`
	} `mapstructure:"pipeline"`
}

// stageFlags are the per-stage staleness markers observed across backend
// versions. Fields are `any` because the backend has emitted booleans,
// numbers, and strings for them over time.
type stageFlags struct {
	IsStale    any `mapstructure:"is_stale"`
	IsOutdated any `mapstructure:"is_outdated"`
	Outdated   any `mapstructure:"outdated"`
	NeedsRun   any `mapstructure:"needs_run"`
}

// IsStale derives staleness for one stage from a raw pipeline-status
// document. Precedence, first match wins:
//
//  1. An explicit stale_stages mapping: key presence alone marks the stage
//     stale, regardless of the value.
//  2. A nested pipeline.stages[name] record: the OR of whichever of
//     is_stale, is_outdated, outdated, needs_run are present and truthy.
//  3. Neither shape present: not stale.
//
// The precedence is deterministic: when stale_stages exists, the nested
// shape is never consulted, even if both are present.
func IsStale(stageName string, status map[string]any) bool {
	if status == nil {
		return false
	}

	var doc statusDoc
	if err := mapstructure.Decode(status, &doc); err != nil {
		return false
	}

	if doc.StaleStages != nil {
		_, present := doc.StaleStages[stageName]
		return present
	}

	if flags, ok := doc.Pipeline.Stages[stageName]; ok {
		return truthy(flags.IsStale) ||
			truthy(flags.IsOutdated) ||
			truthy(flags.Outdated) ||
			truthy(flags.NeedsRun)
	}

	return false
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
