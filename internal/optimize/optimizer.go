// Package optimize implements the deterministic layout-candidate search
// the agent runtime's optimize/optimizer keyword drives (spec §4.16):
// a bounded grid search over fixture count, spacing, mounting height,
// and dimming, each candidate scored by running the job through
// internal/runner against an in-memory project clone.
package optimize

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"luxera/internal/project"
	"luxera/internal/runner"
)

// Constraints bounds what counts as a feasible candidate.
type Constraints struct {
	TargetLux     float64
	UniformityMin float64
}

// DefaultConstraints mirrors the teacher's own defaults.
func DefaultConstraints() Constraints {
	return Constraints{TargetLux: 500, UniformityMin: 0.4}
}

// Candidate is one evaluated point in the search grid.
type Candidate struct {
	Index          int     `json:"index"`
	NX             int     `json:"nx"`
	NY             int     `json:"ny"`
	SpacingScale   float64 `json:"spacing_scale"`
	MountingHeight float64 `json:"mounting_height"`
	Dimming        float64 `json:"dimming"`
	FixtureCount   int     `json:"fixture_count"`
	MeanLux        float64 `json:"mean_lux"`
	Uniformity     float64 `json:"uniformity_ratio"`
	Feasible       bool    `json:"feasible"`
	Objective      float64 `json:"objective"`
}

// Artifacts are the file paths Run writes.
type Artifacts struct {
	CandidatesCSV string `json:"candidates_csv"`
	TopKCSV       string `json:"topk_csv"`
	BestDiffJSON  string `json:"best_diff_json"`
	ManifestJSON  string `json:"optimizer_manifest_json"`
}

var nxValues = []int{2, 3, 4}
var nyValues = []int{2, 3, 4}
var spacingScales = []float64{0.8, 1.0}
var dimmingValues = []float64{0.7, 0.85, 1.0}

func objective(meanLux, uniformity float64, fixtureCount int, dimming float64, c Constraints) (bool, float64) {
	target := c.TargetLux
	if target <= 0 {
		target = 500
	}
	umin := c.UniformityMin
	feasible := meanLux >= target && uniformity >= umin
	penalty := 0.0
	if meanLux < target {
		penalty += (target - meanLux) / maxFloat(target, 1e-9) * 100.0
	}
	if uniformity < umin {
		penalty += (umin - uniformity) * 100.0
	}
	return feasible, float64(fixtureCount)*dimming + penalty
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func roomBounds(r project.Project) (minX, minY, maxX, maxY, roomHeight float64, ok bool) {
	if len(r.Geometry.Rooms) == 0 {
		return 0, 0, 0, 0, 0, false
	}
	room := r.Geometry.Rooms[0]
	if len(room.BoundaryPolygon) == 0 {
		return 0, 0, 0, 0, 0, false
	}
	minX, minY = room.BoundaryPolygon[0].X, room.BoundaryPolygon[0].Y
	maxX, maxY = minX, minY
	for _, v := range room.BoundaryPolygon[1:] {
		if v.X < minX {
			minX = v.X
		}
		if v.X > maxX {
			maxX = v.X
		}
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	return minX, minY, maxX, maxY, room.Height, true
}

// placeArrayRect places an nx*ny rectangular array of luminaires inset
// by (marginX, marginY) from the room bounding box, aimed straight down
// at elevation z.
func placeArrayRect(minX, minY, maxX, maxY float64, nx, ny int, marginX, marginY, z float64, photometryAssetID string) []project.LuminaireInstance {
	out := make([]project.LuminaireInstance, 0, nx*ny)
	x0, x1 := minX+marginX, maxX-marginX
	y0, y1 := minY+marginY, maxY-marginY
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			u, v := 0.0, 0.0
			if nx > 1 {
				u = float64(i) / float64(nx-1)
			}
			if ny > 1 {
				v = float64(j) / float64(ny-1)
			}
			out = append(out, project.LuminaireInstance{
				ID:                fmt.Sprintf("opt-%d-%d", i, j),
				PhotometryAssetID: photometryAssetID,
				Transform: project.PlacementTransform{
					Position: [3]float64{x0 + u*(x1-x0), y0 + v*(y1-y0), z},
					Rotation: project.Rotation{Type: project.RotationEuler, EulerDeg: &[3]float64{0, 0, 0}},
				},
				MaintenanceFactor: 1,
				FluxMultiplier:    1,
			})
		}
	}
	return out
}

func meanOf(objects []runner.ObjectStats) float64 {
	if len(objects) == 0 {
		return 0
	}
	sum := 0.0
	n := 0
	for _, o := range objects {
		if o.Count == 0 {
			continue
		}
		sum += o.Mean
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Run searches up to candidateLimit layout candidates, scores each by
// running jobID against a cloned project through runner.RunJob (each
// run's result directory is written under resultsRoot and read back
// with runner.LoadResult), and writes
// candidates.csv, topk.csv, best_diff.json, optimizer_manifest.json
// under outDir (spec §4.16's optimize/optimizer keyword).
func Run(base *project.Project, jobID string, candidateLimit int, constraints Constraints, resultsRoot, outDir string) (Artifacts, error) {
	if len(base.Geometry.Rooms) == 0 {
		return Artifacts{}, fmt.Errorf("optimize: project has no rooms to place an array into")
	}
	if len(base.PhotometryAssets) == 0 {
		return Artifacts{}, fmt.Errorf("optimize: project has no photometry assets")
	}
	minX, minY, maxX, maxY, roomHeight, ok := roomBounds(*base)
	if !ok {
		return Artifacts{}, fmt.Errorf("optimize: first room has no boundary polygon")
	}
	assetID := base.PhotometryAssets[0].ID
	mountHeights := []float64{roomHeight * 0.8, roomHeight * 0.9}

	var candidates []Candidate
	idx := 0
outer:
	for _, nx := range nxValues {
		for _, ny := range nyValues {
			for _, scale := range spacingScales {
				for _, mh := range mountHeights {
					for _, dim := range dimmingValues {
						if idx >= candidateLimit {
							break outer
						}
						idx++
						margin := 0.6 * scale
						cand, err := project.Clone(base)
						if err != nil {
							return Artifacts{}, fmt.Errorf("optimize: clone candidate %d: %w", idx, err)
						}
						arr := placeArrayRect(minX, minY, maxX, maxY, nx, ny, margin, margin, mh, assetID)
						for i := range arr {
							arr[i].FluxMultiplier = dim
						}
						cand.Luminaires = arr
						cand.Results = nil

						ref, err := runner.RunJob(nil, cand, jobID, resultsRoot)
						if err != nil {
							return Artifacts{}, fmt.Errorf("optimize: run candidate %d: %w", idx, err)
						}
						doc, err := runner.LoadResult(resultsRoot, ref.JobHash)
						if err != nil {
							return Artifacts{}, fmt.Errorf("optimize: load candidate %d result: %w", idx, err)
						}
						meanLux := meanOf(doc.Summary.Objects)
						feasible, obj := objective(meanLux, doc.Summary.WorstUniformity, len(arr), dim, constraints)
						candidates = append(candidates, Candidate{
							Index: idx, NX: nx, NY: ny, SpacingScale: scale,
							MountingHeight: mh, Dimming: dim, FixtureCount: len(arr),
							MeanLux: meanLux, Uniformity: doc.Summary.WorstUniformity,
							Feasible: feasible, Objective: obj,
						})
					}
				}
			}
		}
	}
	if len(candidates) == 0 {
		return Artifacts{}, fmt.Errorf("optimize: no candidates evaluated")
	}

	ranked := append([]Candidate(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Feasible != ranked[j].Feasible {
			return ranked[i].Feasible
		}
		return ranked[i].Objective < ranked[j].Objective
	})
	topN := 5
	if topN > len(ranked) {
		topN = len(ranked)
	}
	topk := ranked[:topN]
	best := topk[0]

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("optimize: make out dir: %w", err)
	}
	candidatesCSV := filepath.Join(outDir, "candidates.csv")
	topkCSV := filepath.Join(outDir, "topk.csv")
	bestDiffJSON := filepath.Join(outDir, "best_diff.json")
	manifestJSON := filepath.Join(outDir, "optimizer_manifest.json")

	if err := writeCandidatesCSV(candidatesCSV, candidates); err != nil {
		return Artifacts{}, err
	}
	if err := writeCandidatesCSV(topkCSV, topk); err != nil {
		return Artifacts{}, err
	}

	bestLayout := placeArrayRect(minX, minY, maxX, maxY, best.NX, best.NY, 0.6*best.SpacingScale, 0.6*best.SpacingScale, best.MountingHeight, assetID)
	for i := range bestLayout {
		bestLayout[i].FluxMultiplier = best.Dimming
	}
	var ops []project.DiffOp
	for _, l := range base.Luminaires {
		ops = append(ops, project.DiffOp{Op: "remove", Kind: "luminaire", ID: l.ID})
	}
	for _, l := range bestLayout {
		payload, err := json.Marshal(l)
		if err != nil {
			return Artifacts{}, err
		}
		ops = append(ops, project.DiffOp{Op: "add", Kind: "luminaire", ID: l.ID, Payload: payload})
	}
	if err := writeJSON(bestDiffJSON, map[string]any{"ops": ops}); err != nil {
		return Artifacts{}, err
	}

	artifacts := Artifacts{CandidatesCSV: candidatesCSV, TopKCSV: topkCSV, BestDiffJSON: bestDiffJSON, ManifestJSON: manifestJSON}
	manifest := map[string]any{
		"job_id":          jobID,
		"constraints":     constraints,
		"candidate_limit": candidateLimit,
		"best":            best,
		"artifacts":       artifacts,
	}
	if err := writeJSON(manifestJSON, manifest); err != nil {
		return Artifacts{}, err
	}
	return artifacts, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCandidatesCSV(path string, rows []Candidate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := []string{"index", "nx", "ny", "spacing_scale", "mounting_height", "dimming", "fixture_count", "mean_lux", "uniformity_ratio", "feasible", "objective"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.Index), strconv.Itoa(r.NX), strconv.Itoa(r.NY),
			strconv.FormatFloat(r.SpacingScale, 'g', -1, 64),
			strconv.FormatFloat(r.MountingHeight, 'g', -1, 64),
			strconv.FormatFloat(r.Dimming, 'g', -1, 64),
			strconv.Itoa(r.FixtureCount),
			strconv.FormatFloat(r.MeanLux, 'g', -1, 64),
			strconv.FormatFloat(r.Uniformity, 'g', -1, 64),
			strconv.FormatBool(r.Feasible),
			strconv.FormatFloat(r.Objective, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
