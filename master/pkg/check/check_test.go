package check

import (
	"testing"

	"gotest.tools/assert"
)

func TestChecks(t *testing.T) {
	assert.NilError(t, NotEmpty("x"))
	assert.ErrorContains(t, NotEmpty("", "name"), "name: expected a non-empty value")
	assert.NilError(t, GreaterThanOrEqualTo(1, 0))
	assert.ErrorContains(t, GreaterThanOrEqualTo(-1, 0, "cpu"), "cpu: -1 is not greater than")
	assert.ErrorContains(t, LessThanOrEqualTo(3, 2), "3 is not less than or equal to 2")
	assert.ErrorContains(t, False(true, "flag %s", "x"), "flag x: expected false, got true")
	assert.NilError(t, In("b", []string{"a", "b"}))
	assert.ErrorContains(t, In("c", []string{"a", "b"}, "operator"), "operator: c not in [a b]")
}
