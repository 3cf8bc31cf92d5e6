package tsparser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	for _, src := range []string{
		``,
		`var x = 1;`,
		"function f(a, b) {\n  return a + b;\n}\n",
		`var o = { get x() { return 1; }, set x(v) {} };`,
		`outer: for (var i in o) { continue outer; }`,
	} {
		assert.NoError(t, ParseBytes(context.Background(), "ok.js", []byte(src)), "source: %q", src)
	}
}

func TestParseInvalid(t *testing.T) {
	assert := assert.New(t)

	err := ParseReader(context.Background(), "bad.js", strings.NewReader("var a = 1;\nvar = ;\n"))
	require.Error(t, err)

	var serr *SyntaxError
	require.True(t, errors.As(err, &serr))
	assert.Equal("bad.js", serr.Path)
	assert.Equal(2, serr.Line)
	assert.Contains(err.Error(), "bad.js:2:")
}
