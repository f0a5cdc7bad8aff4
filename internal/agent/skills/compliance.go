package skills

import (
	"luxera/internal/project"
	"luxera/internal/runner"
)

// ComplianceResult is the compliance keyword's outcome: whether the
// turn may actually claim compliance, plus the outcome to merge into
// the turn's manifest/warnings/actions.
type ComplianceResult struct {
	Outcome  Outcome
	Claimed  bool
}

// CheckCompliance enforces the guardrail: a turn may only claim
// compliance when a job has actually been run and its cached result
// carries a populated compliance evaluation. Never inferred from
// geometry or assumed from a target alone.
func CheckCompliance(resultsRoot string, p *project.Project) ComplianceResult {
	if len(p.Results) == 0 {
		out := Outcome{Warnings: []string{"Compliance cannot be declared without running jobs."}}
		if len(p.Jobs) > 0 {
			out.Actions = []Action{{Kind: "run_job", RequiresApproval: true, Payload: map[string]any{"job_id": p.Jobs[0].ID, "reason": "compliance_assistant"}}}
		}
		return ComplianceResult{Outcome: out}
	}
	latest := p.Results[len(p.Results)-1]
	doc, err := runner.LoadResult(resultsRoot, latest.JobHash)
	if err != nil {
		return ComplianceResult{Outcome: Outcome{Warnings: []string{err.Error()}}}
	}
	if doc.Summary.Compliance == nil {
		return ComplianceResult{Outcome: Outcome{
			Manifest: map[string]any{"compliance_source_job": latest.JobID},
			Warnings: []string{"Latest result has no compliance evaluation populated."},
		}}
	}
	out := Outcome{Manifest: map[string]any{
		"compliance_source_job": latest.JobID,
		"compliance_summary":    doc.Summary.Compliance,
	}}
	if doc.Summary.Compliance.Status == "FAIL" {
		out.Warnings = append(out.Warnings, "Latest result is non-compliant.")
	}
	return ComplianceResult{Outcome: out, Claimed: doc.Summary.Compliance.Status != ""}
}
