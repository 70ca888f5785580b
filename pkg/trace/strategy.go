package trace

import (
	"strings"
)

// Denylist contains path fragments that are never tracked, matched as
// substrings of the absolute path. Shared by every language binding and the
// Go-side filter.
var Denylist = []string{
	".ipynb_checkpoints",
	"__pycache__",
	".git/",
	".dvc/",
	".calkit/",
	"site-packages/",
	"dist-packages/",
	"/tmp/",
	".pyc",
	".ipynb",
}

// Strategy produces the instrumentation fragments for one interpreter
// language. Fragments are evaluated verbatim on the kernel; each must be
// self-contained and idempotent (re-running start must not double-wrap).
type Strategy interface {
	// Language is the canonical lowercase language name.
	Language() string

	// StartCode returns the fragment that installs the file-open wrapper,
	// captures the working directory as the project root, and enables
	// tracking with empty path sets.
	StartCode() string

	// CollectCode returns the fragment whose evaluated value is a JSON
	// document {"inputs": [...], "outputs": [...]}.
	CollectCode() string

	// StopCode returns the fragment that restores the original open
	// primitive and disables tracking.
	StopCode() string
}

// ForLanguage resolves a Strategy from a kernel language name. Names are
// matched loosely ("python3", "IR", "julia-1.11" all resolve). The second
// return is false for unsupported languages; callers degrade to no
// detection.
func ForLanguage(lang string) (Strategy, bool) {
	l := strings.ToLower(strings.TrimSpace(lang))
	switch {
	case strings.HasPrefix(l, "python"):
		return pythonStrategy{}, true
	case l == "r" || l == "ir" || strings.HasPrefix(l, "r-"):
		return rStrategy{}, true
	case strings.HasPrefix(l, "julia"):
		return juliaStrategy{}, true
	}
	return nil, false
}

// quoteList renders the denylist as a comma-separated list of double-quoted
// strings, the literal list syntax shared by all three target languages.
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ", ")
}
