package runner

// runPhase labels the controller's position in the run sequence, for logs
// and abort messages.
type runPhase string

const (
	phaseSaving         runPhase = "saving"
	phaseSessionOpening runPhase = "session-opening"
	phaseExecuting      runPhase = "executing"
	phaseVerifying      runPhase = "verifying"
	phaseFinalizing     runPhase = "finalizing"
)
