package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_PassesWhenAboveThresholds(t *testing.T) {
	eval := Evaluate("indoor", 350, 0.5, DefaultThresholds("indoor"))
	assert.Equal(t, "PASS", eval.Status)
	assert.Empty(t, eval.FailedChecks)
}

func TestEvaluate_FlagsLowMinLuxAndUniformity(t *testing.T) {
	eval := Evaluate("indoor", 100, 0.1, DefaultThresholds("indoor"))
	assert.Equal(t, "FAIL", eval.Status)
	assert.Contains(t, eval.FailedChecks, "min_lux_ok")
	assert.Contains(t, eval.FailedChecks, "uniformity_ok")
	assert.Len(t, eval.Explanations, 2)
}

func TestDefaultThresholds_VaryByDomain(t *testing.T) {
	assert.Greater(t, DefaultThresholds("indoor").MinLux, DefaultThresholds("roadway").MinLux)
	assert.Equal(t, 0.0, DefaultThresholds("emergency").MinUniformity)
}
