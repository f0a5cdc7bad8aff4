package runner

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"luxera/internal/compliance"
	"luxera/internal/geom"
	"luxera/internal/project"
)

// ResultDocument mirrors result.json (spec §4.14 step 4): the envelope
// a cached run is loaded back into, and the payload JobResultRef points
// at on disk.
type ResultDocument struct {
	Job                 project.JobSpec   `json:"job"`
	Summary             GlobalSummary     `json:"summary"`
	Assets              map[string]string `json:"assets"`
	Solver              string            `json:"solver"`
	Backend             string            `json:"backend"`
	Units               string            `json:"units"`
	CoordinateConvention string           `json:"coordinate_convention"`
	Assumptions         []string          `json:"assumptions"`
	UnsupportedFeatures []string          `json:"unsupported_features"`
}

// ManifestDocument mirrors manifest.json.
type ManifestDocument struct {
	JobHash        string `json:"job_hash"`
	Seed           int64  `json:"seed"`
	SolverVersion  string `json:"solver_version"`
	PhotometryHashes map[string]string `json:"photometry_hashes"`
	Settings       map[string]any `json:"settings"`
	CoordinateConvention string `json:"coordinate_convention"`
}

// HealReport mirrors geometry_heal_report.json (spec §4.14 step 4). It
// is written for every run that reaches artifact materialization,
// before the other artifacts; a run whose backend fails or is
// cancelled writes no result directory and so no heal report.
type HealReport struct {
	Report geom.MeshHealthReport `json:"report"`
}

const coordinateConvention = "right_handed_z_up"

// writeResultDir materializes every canonical artifact for one
// executed job into dir (already resolved from the job hash), writing
// geometry_heal_report.json first so it lands even if a later write
// fails midway through a re-run of the same hash.
func writeResultDir(dir string, job project.JobSpec, assets map[string]string, out Output, healReport geom.MeshHealthReport) (ResultDocument, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ResultDocument{}, fmt.Errorf("runner: create result dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, "geometry_heal_report.json"), HealReport{Report: healReport}); err != nil {
		return ResultDocument{}, err
	}

	summary := summarize(out.Objects)
	if len(summary.Objects) > 0 {
		thresholds := complianceThresholds(job)
		eval := compliance.Evaluate(job.Kind, summary.WorstMin, summary.WorstUniformity, thresholds)
		summary.Compliance = &eval
	}
	doc := ResultDocument{
		Job:                  job,
		Summary:              summary,
		Assets:               assets,
		Solver:                out.Solver,
		Backend:              out.Backend,
		Units:                "SI",
		CoordinateConvention: coordinateConvention,
		Assumptions:          out.Assumptions,
		UnsupportedFeatures:  out.UnsupportedFeatures,
	}

	if err := writeJSON(filepath.Join(dir, "result.json"), doc); err != nil {
		return ResultDocument{}, err
	}
	if err := writeJSON(filepath.Join(dir, "summary.json"), summary); err != nil {
		return ResultDocument{}, err
	}
	if err := writeJSON(filepath.Join(dir, "tables.json"), buildTables(out.Objects)); err != nil {
		return ResultDocument{}, err
	}

	seed := int64(0)
	if s, ok := job.Params["seed"].(float64); ok {
		seed = int64(s)
	}
	manifest := ManifestDocument{
		JobHash:              filepath.Base(dir),
		Seed:                 seed,
		SolverVersion:        job.SolverVersion,
		PhotometryHashes:     assets,
		Settings:             job.Params,
		CoordinateConvention: coordinateConvention,
	}
	if err := writeJSON(filepath.Join(dir, "manifest.json"), manifest); err != nil {
		return ResultDocument{}, err
	}

	for _, obj := range out.Objects {
		if err := writeObjectCSV(dir, obj); err != nil {
			return ResultDocument{}, err
		}
	}

	return doc, nil
}

// complianceThresholds applies job.Params overrides ("target_lux",
// "min_uniformity") over a domain's defaults.
func complianceThresholds(job project.JobSpec) compliance.Thresholds {
	t := compliance.DefaultThresholds(job.Kind)
	if job.Params == nil {
		return t
	}
	if v, ok := job.Params["target_lux"].(float64); ok {
		t.MinLux = v
	}
	if v, ok := job.Params["min_uniformity"].(float64); ok {
		t.MinUniformity = v
	}
	return t
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("runner: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("runner: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// objectCSVName picks the per-object-kind artifact filename spec
// §4.14 step 4 names (grid_<id>.csv, vplane_<id>.csv, points_<id>.csv);
// line grids get the same points_ convention since they are, on disk,
// just another ordered point list with an E_lux column.
func objectCSVName(o ObjectSamples) string {
	switch o.Kind {
	case "grid":
		return fmt.Sprintf("grid_%s.csv", o.ID)
	case "vertical_plane":
		return fmt.Sprintf("vplane_%s.csv", o.ID)
	default:
		return fmt.Sprintf("points_%s.csv", o.ID)
	}
}

func writeObjectCSV(dir string, o ObjectSamples) error {
	f, err := os.Create(filepath.Join(dir, objectCSVName(o)))
	if err != nil {
		return fmt.Errorf("runner: create %s artifact: %w", o.Kind, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"x", "y", "z", "E_lux"}); err != nil {
		return err
	}
	for i, pt := range o.Points {
		lux := 0.0
		if i < len(o.Lux) {
			lux = o.Lux[i]
		}
		row := []string{
			strconv.FormatFloat(pt[0], 'f', 6, 64),
			strconv.FormatFloat(pt[1], 'f', 6, 64),
			strconv.FormatFloat(pt[2], 'f', 6, 64),
			strconv.FormatFloat(lux, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// objectTable is one row of tables.json's per-kind table.
type objectTable struct {
	ID    string        `json:"id"`
	Stats ObjectStats   `json:"stats"`
}

func buildTables(objects []ObjectSamples) map[string][]objectTable {
	out := map[string][]objectTable{}
	for _, o := range objects {
		out[o.Kind] = append(out[o.Kind], objectTable{ID: o.ID, Stats: statsForObject(o)})
	}
	return out
}
