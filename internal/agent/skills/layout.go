package skills

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"luxera/internal/optimize"
	"luxera/internal/project"
)

// ParseTargetLux pulls a numeric token out of a place/layout/"hit X
// lux" intent, falling back to a remembered preference or 500 lux.
func ParseTargetLux(lintent string, preferred float64) float64 {
	target := preferred
	if target == 0 {
		target = 500
	}
	for _, tok := range strings.Fields(strings.ReplaceAll(lintent, "/", " ")) {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			target = f
		}
	}
	return target
}

// ProposeLayout asks internal/optimize's deterministic grid search for
// its best candidate against jobID and returns the resulting
// candidate's diff ops as an apply_diff action, plus the search
// artifacts. There is no separate placement heuristic here: the
// original's agent-layer "place"/"layout"/"hit X lux" keywords and its
// "optimize"/"optimizer" keyword both ultimately score candidates the
// same way, so this skill reuses RunOptimizer's search rather than
// re-deriving a second one.
func ProposeLayout(p *project.Project, resultsRoot, jobID string, targetLux float64) (Action, Outcome) {
	action := Action{Kind: "apply_diff", RequiresApproval: true, Payload: map[string]any{"target_lux": targetLux, "mode": "layout"}}
	outDir := filepath.Join(p.RootDir, ".luxera", "optimizer")
	artifacts, err := optimize.Run(p, jobID, 8, optimize.Constraints{TargetLux: targetLux, UniformityMin: 0.4}, resultsRoot, outDir)
	if err != nil {
		return action, Outcome{Warnings: []string{err.Error()}}
	}
	return action, Outcome{
		Produced: []string{artifacts.CandidatesCSV, artifacts.TopKCSV, artifacts.BestDiffJSON, artifacts.ManifestJSON},
		Manifest: map[string]any{"layout_best_diff_json": artifacts.BestDiffJSON},
	}
}

// LoadDiffOps reads the ops array out of a best_diff.json artifact
// (internal/optimize.Run's output) for replay through internal/delta.
func LoadDiffOps(path string) ([]project.DiffOp, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Ops []project.DiffOp `json:"ops"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc.Ops, nil
}
