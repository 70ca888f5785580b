package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calkit/nbstage/pkg/domain"
)

func textResult(s string) *domain.ExecuteResult {
	return &domain.ExecuteResult{Data: map[string]string{"text/plain": s}}
}

func TestParseDetection_RawJSON(t *testing.T) {
	res := textResult(`{"inputs": ["data/in.csv"], "outputs": ["data/out.csv"]}`)
	got := ParseDetection(res)
	require.NotNil(t, got)
	assert.Equal(t, []string{"data/in.csv"}, got.Inputs)
	assert.Equal(t, []string{"data/out.csv"}, got.Outputs)
}

func TestParseDetection_PythonRepr(t *testing.T) {
	// A Python collect fragment returns a str, echoed as a single-quoted
	// repr in text/plain.
	res := textResult(`'{"inputs": ["data/in.csv"], "outputs": []}'`)
	got := ParseDetection(res)
	require.NotNil(t, got)
	assert.Equal(t, []string{"data/in.csv"}, got.Inputs)
	assert.Empty(t, got.Outputs)
}

func TestParseDetection_RVectorEcho(t *testing.T) {
	// IRkernel echoes a character scalar as [1] "..." with escaped quotes.
	res := textResult(`[1] "{\"inputs\":[],\"outputs\":[\"results/fig.png\"]}"`)
	got := ParseDetection(res)
	require.NotNil(t, got)
	assert.Empty(t, got.Inputs)
	assert.Equal(t, []string{"results/fig.png"}, got.Outputs)
}

func TestParseDetection_JuliaStringEcho(t *testing.T) {
	res := textResult(`"{\"inputs\":[\"data/in.csv\"],\"outputs\":[]}"`)
	got := ParseDetection(res)
	require.NotNil(t, got)
	assert.Equal(t, []string{"data/in.csv"}, got.Inputs)
}

func TestParseDetection_JSONMimePreferred(t *testing.T) {
	res := &domain.ExecuteResult{Data: map[string]string{
		"application/json": `{"inputs": ["a.csv"], "outputs": []}`,
		"text/plain":       `not json at all`,
	}}
	got := ParseDetection(res)
	require.NotNil(t, got)
	assert.Equal(t, []string{"a.csv"}, got.Inputs)
}

func TestParseDetection_DegradesToNil(t *testing.T) {
	cases := map[string]*domain.ExecuteResult{
		"nil result":     nil,
		"error result":   {Error: &domain.CellError{Name: "NameError", Message: "boom"}},
		"empty text":     textResult(""),
		"not json":       textResult("hello world"),
		"repr not json":  textResult(`'hello world'`),
		"half a literal": textResult(`'{"inputs": ['`),
		"quote mismatch": textResult(`'{"inputs": []}"`),
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, ParseDetection(res))
		})
	}
}

func TestUnquote_RejectsEmbeddedBareQuote(t *testing.T) {
	// A bare inner quote means the text was not one wrapped literal.
	_, ok := unquote(`'a' + 'b'`)
	assert.False(t, ok)
}
