package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorSelector(t *testing.T) {
	assert.Equal(t, `[id="_sg_path_field"]`, ID("_sg_path_field").Selector())
	assert.Equal(t, `[id="a\"b"]`, ID(`a"b`).Selector())
	assert.Equal(t, "#content p", CSS("#content p").Selector())
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "id:_sg_path_field", ID("_sg_path_field").String())
	assert.Equal(t, "css:div.title", CSS("div.title").String())
}

func TestCallExpression(t *testing.T) {
	expr, err := CallExpression("function(src, n) { return n; }", []any{"https://x/y.js", 3})
	require.NoError(t, err)
	assert.Equal(t, `(function(src, n) { return n; })("https://x/y.js", 3)`, expr)

	expr, err = CallExpression("\n() => 1\n", nil)
	require.NoError(t, err)
	assert.Equal(t, "(() => 1)()", expr)
}

func TestCallExpressionRejectsUnencodableArgs(t *testing.T) {
	_, err := CallExpression("function(f) {}", []any{func() {}})
	assert.Error(t, err)
}

func TestElementRef(t *testing.T) {
	assert.Equal(t, int64(42), NewElement(42).Ref())
}
