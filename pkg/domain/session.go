package domain

import "encoding/json"

// RunSessionPlan is the backend-issued snapshot returned when a run session
// opens. The three lock fields are opaque to the client: they are carried as
// raw JSON and passed back byte-for-byte at finalize time, never recomputed.
//
// A plan is consumed exactly once. A plan whose run aborted is abandoned; the
// backend owns cleanup of dangling sessions.
type RunSessionPlan struct {
	DVCStage json.RawMessage `json:"dvc_stage"`
	LockDeps json.RawMessage `json:"lock_deps"`
	LockOuts json.RawMessage `json:"lock_outs"`
}
