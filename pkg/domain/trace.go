package domain

// TraceResult holds the path sets discovered by one detection pass over a
// live interpreter. Paths are project-root-relative with forward slashes.
// A path opened for both reading and writing during the session appears in
// both sets.
type TraceResult struct {
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// Empty reports whether the detection found nothing.
func (t *TraceResult) Empty() bool {
	return t == nil || (len(t.Inputs) == 0 && len(t.Outputs) == 0)
}
