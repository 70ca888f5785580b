package domain

// StageKind identifies the executable type of a stage. Only notebooks are
// runnable through this client; the backend knows more kinds.
type StageKind string

const (
	StageKindNotebook StageKind = "jupyter-notebook"
)

// StorageClass declares how a stage output is versioned.
type StorageClass string

const (
	StorageGit  StorageClass = "git"
	StorageDVC  StorageClass = "dvc"
	StorageNone StorageClass = "none"
)

// OutputSpec is a declared stage output path plus its storage class.
type OutputSpec struct {
	Path    string       `json:"path"`
	Storage StorageClass `json:"storage"`
}

// StageDefinition describes a named pipeline stage owned by the backend
// project document. The name is unique within a project's pipeline.
type StageDefinition struct {
	Name        string       `json:"name"`
	Kind        StageKind    `json:"kind"`
	Environment string       `json:"environment"`
	Inputs      []string     `json:"inputs"`
	Outputs     []OutputSpec `json:"outputs"`

	// Storage classes for run artifacts the backend may keep alongside the
	// declared outputs. Empty means backend default.
	ExecutedNotebookStorage StorageClass `json:"executed_ipynb_storage,omitempty"`
	HTMLStorage             StorageClass `json:"html_storage,omitempty"`
}

// Validate checks the pre-flight requirements for running or declaring the
// stage. It does not touch the backend.
func (s *StageDefinition) Validate() error {
	if s.Name == "" {
		return ErrMissingStageName
	}
	if s.Environment == "" {
		return ErrMissingEnvironment
	}
	return nil
}

// HasInput reports whether path is already declared as an input.
func (s *StageDefinition) HasInput(path string) bool {
	for _, p := range s.Inputs {
		if p == path {
			return true
		}
	}
	return false
}

// HasOutput reports whether path is already declared as an output.
func (s *StageDefinition) HasOutput(path string) bool {
	for _, o := range s.Outputs {
		if o.Path == path {
			return true
		}
	}
	return false
}

// MergeTrace copies a detection result into the definition. Existing entries
// are kept; new outputs default to DVC storage. Order is stable: existing
// declarations first, then detected paths in their reported order.
func (s *StageDefinition) MergeTrace(res *TraceResult) {
	if res == nil {
		return
	}
	for _, p := range res.Inputs {
		if !s.HasInput(p) {
			s.Inputs = append(s.Inputs, p)
		}
	}
	for _, p := range res.Outputs {
		if !s.HasOutput(p) {
			s.Outputs = append(s.Outputs, OutputSpec{Path: p, Storage: StorageDVC})
		}
	}
}
