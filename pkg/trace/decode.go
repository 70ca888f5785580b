package trace

import (
	"encoding/json"
	"strings"

	"github.com/calkit/nbstage/pkg/domain"
)

// ParseDetection decodes the result of evaluating a collect fragment. It
// accepts an application/json payload or a text/plain rendering of the JSON
// document, possibly wrapped in one level of interpreter repr quoting (a
// Python str repr, an R character vector echo, a Julia string literal).
//
// Any result that is not valid JSON decodes to nil. Errors never propagate:
// detection degrades, it does not fail.
func ParseDetection(res *domain.ExecuteResult) *domain.TraceResult {
	if res == nil || res.Error != nil {
		return nil
	}
	if payload := res.JSON(); payload != "" {
		return decodeJSON(payload)
	}
	txt := strings.TrimSpace(res.Text())
	if txt == "" {
		return nil
	}
	// R echoes scalars as a one-element vector: [1] "..."
	if strings.HasPrefix(txt, "[1]") {
		txt = strings.TrimSpace(strings.TrimPrefix(txt, "[1]"))
	}
	if unquoted, ok := unquote(txt); ok {
		txt = unquoted
	}
	return decodeJSON(txt)
}

func decodeJSON(payload string) *domain.TraceResult {
	var out struct {
		Inputs  []string `json:"inputs"`
		Outputs []string `json:"outputs"`
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil
	}
	return &domain.TraceResult{Inputs: out.Inputs, Outputs: out.Outputs}
}

// unquote strips one level of single- or double-quote wrapping and undoes
// backslash escapes for the quote character and backslash itself. This is a
// literal-unwrapping step, not an eval: the content is still parsed as JSON
// afterwards.
func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return "", false
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			next := body[i+1]
			if next == q || next == '\\' {
				b.WriteByte(next)
				i++
				continue
			}
		}
		// A bare closing quote inside the body means the wrapping was not a
		// single literal after all.
		if c == q {
			return "", false
		}
		b.WriteByte(c)
	}
	return b.String(), true
}
