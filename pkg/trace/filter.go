package trace

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/calkit/nbstage/pkg/domain"
)

// FilterUnderRoot normalizes a list of paths against a project root:
// relative paths are resolved against the root, anything outside the root or
// matching the denylist is dropped, and survivors come back root-relative
// with forward slashes, deduplicated and sorted.
//
// The interpreter fragments apply the same rules in-process; this re-applies
// them on the Go side so server-reported detections and hand-edited results
// pass through an identical gate.
func FilterUnderRoot(root string, paths []string) []string {
	root = filepath.Clean(root)
	seen := make(map[string]struct{})
	var kept []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, abs)
		}
		abs = filepath.Clean(abs)
		if !strings.HasPrefix(abs, root+string(filepath.Separator)) {
			continue
		}
		if denied(filepath.ToSlash(abs)) {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		kept = append(kept, rel)
	}
	sort.Strings(kept)
	return kept
}

// Normalize applies FilterUnderRoot to both sets of a raw trace result.
// A nil input stays nil.
func Normalize(res *domain.TraceResult, root string) *domain.TraceResult {
	if res == nil {
		return nil
	}
	return &domain.TraceResult{
		Inputs:  FilterUnderRoot(root, res.Inputs),
		Outputs: FilterUnderRoot(root, res.Outputs),
	}
}

func denied(slashPath string) bool {
	for _, frag := range Denylist {
		if strings.Contains(slashPath, frag) {
			return true
		}
	}
	return false
}

// ClassifyMode buckets an open-mode string: any of w, a, x, + marks an
// output; otherwise a mode containing r marks an input. Shared with tests as
// the reference for what the fragments embed.
func ClassifyMode(mode string) (input, output bool) {
	if strings.ContainsAny(mode, "wax+") {
		return false, true
	}
	return strings.Contains(mode, "r"), false
}
