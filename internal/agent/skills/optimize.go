package skills

import (
	"path/filepath"

	"luxera/internal/optimize"
	"luxera/internal/project"
)

// RunOptimizer drives internal/optimize's full candidate sweep (a
// wider search than ProposeLayout's quick pass) and proposes its best
// candidate's diff for approval.
func RunOptimizer(p *project.Project, resultsRoot, jobID string, targetLux float64) (Action, Outcome) {
	action := Action{Kind: "apply_diff", RequiresApproval: true, Payload: map[string]any{"target_lux": targetLux, "mode": "optimizer"}}
	outDir := filepath.Join(p.RootDir, ".luxera", "optimizer")
	artifacts, err := optimize.Run(p, jobID, 12, optimize.Constraints{TargetLux: targetLux, UniformityMin: 0.4}, resultsRoot, outDir)
	if err != nil {
		return action, Outcome{Warnings: []string{err.Error()}}
	}
	action.Payload["best_diff_json"] = artifacts.BestDiffJSON
	return action, Outcome{
		Produced: []string{artifacts.CandidatesCSV, artifacts.TopKCSV, artifacts.BestDiffJSON, artifacts.ManifestJSON},
		Manifest: map[string]any{"optimizer_best_diff_json": artifacts.BestDiffJSON},
	}
}
