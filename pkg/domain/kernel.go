package domain

// KernelStatus is the observed execution state of an interpreter process.
// Transitions are driven by the interpreter itself; the client only observes.
type KernelStatus string

const (
	KernelUnknown    KernelStatus = "unknown"
	KernelIdle       KernelStatus = "idle"
	KernelBusy       KernelStatus = "busy"
	KernelRestarting KernelStatus = "restarting"
	KernelDead       KernelStatus = "dead"
)

// CellError is an error-type output recorded on an executed cell.
type CellError struct {
	Name    string `json:"ename"`
	Message string `json:"evalue"`
}

// CellResult is the outcome of executing a single notebook cell.
type CellResult struct {
	Index int
	Error *CellError
}

// ExecuteResult is the outcome of evaluating a single code fragment on a
// kernel, outside any notebook cell. Data maps MIME types to rendered
// payloads, mirroring a Jupyter execute_result bundle.
type ExecuteResult struct {
	Data  map[string]string
	Error *CellError
}

// Text returns the plain-text rendering of the result, or "".
func (r *ExecuteResult) Text() string {
	if r == nil {
		return ""
	}
	return r.Data["text/plain"]
}

// JSON returns the application/json rendering of the result, or "".
func (r *ExecuteResult) JSON() string {
	if r == nil {
		return ""
	}
	return r.Data["application/json"]
}
