// Package compliance evaluates a job's worst-case summary against a
// domain's minimum-illuminance and uniformity thresholds (spec §4.16
// step 4's compliance guardrail, summary.json's compliance field).
package compliance

import "fmt"

// Thresholds are the minimums a domain's profile requires.
type Thresholds struct {
	MinLux        float64 `json:"min_lux"`
	MinUniformity float64 `json:"min_uniformity"`
}

// DefaultThresholds mirrors EN 12464-style office defaults for indoor
// work, with lower bars for roadway and emergency egress domains (no
// luminance/UGR solver is modeled yet, so these are illuminance-only
// proxies; see DESIGN.md).
func DefaultThresholds(domain string) Thresholds {
	switch domain {
	case "roadway":
		return Thresholds{MinLux: 10, MinUniformity: 0.4}
	case "emergency":
		return Thresholds{MinLux: 1, MinUniformity: 0}
	default:
		return Thresholds{MinLux: 300, MinUniformity: 0.4}
	}
}

// Evaluation is what summary.json's "compliance" field carries.
type Evaluation struct {
	Domain       string     `json:"domain"`
	Status       string     `json:"status"` // "PASS" or "FAIL"
	FailedChecks []string   `json:"failed_checks"`
	Explanations []string   `json:"explanations"`
	WorstMin     float64    `json:"worst_min"`
	WorstUniformity float64 `json:"worst_uniformity"`
	Thresholds   Thresholds `json:"thresholds"`
}

// Evaluate checks a job's worst-case min illuminance and uniformity
// against domain's thresholds. Unlike the original's generic
// dict-of-booleans evaluation (which walks whatever *_ok keys a
// profile happens to carry), this checks the two fixed metrics
// internal/runner's GlobalSummary always produces.
func Evaluate(domain string, worstMin, worstUniformity float64, thresholds Thresholds) Evaluation {
	var failed []string
	var explanations []string
	if worstMin < thresholds.MinLux {
		failed = append(failed, "min_lux_ok")
		explanations = append(explanations, fmt.Sprintf("min_lux_ok failed: actual=%.3f, threshold >= %.3f.", worstMin, thresholds.MinLux))
	}
	if thresholds.MinUniformity > 0 && worstUniformity < thresholds.MinUniformity {
		failed = append(failed, "uniformity_ok")
		explanations = append(explanations, fmt.Sprintf("uniformity_ok failed: actual=%.3f, threshold >= %.3f.", worstUniformity, thresholds.MinUniformity))
	}
	status := "PASS"
	if len(failed) > 0 {
		status = "FAIL"
	}
	return Evaluation{
		Domain: domain, Status: status, FailedChecks: failed, Explanations: explanations,
		WorstMin: worstMin, WorstUniformity: worstUniformity, Thresholds: thresholds,
	}
}
