// Package runner implements the deterministic calculation runner (spec
// §4.14): content-addressed job execution, pluggable backends, and
// canonical result-directory materialization.
package runner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"luxera/internal/ids"
	"luxera/internal/project"
)

// HashProjectView is the subset of a project's state that enters the job
// hash: the fields listed below. Jobs, results and agent_history are
// left out, since they would make every run's hash depend on its own
// prior runs; the project name, variants, active variant id, root dir
// and asset bundle path are left out as well.
type HashProjectView struct {
	SchemaVersion     int                      `json:"schema_version"`
	Param             any                      `json:"param"`
	Geometry          any                      `json:"geometry"`
	Materials         any                      `json:"materials"`
	PhotometryAssets  []hashedPhotometryAsset  `json:"photometry_assets"`
	LuminaireFamilies any                      `json:"luminaire_families"`
	Luminaires        any                      `json:"luminaires"`
	Grids             any                      `json:"grids"`
	Workplanes        any                      `json:"workplanes"`
	VerticalPlanes    any                      `json:"vertical_planes"`
	PointSets         any                      `json:"point_sets"`
	LineGrids         any                      `json:"line_grids"`
}

// hashedPhotometryAsset is a PhotometryAsset with its Path and stale
// ContentHash field dropped — the job hash must depend on what the
// referenced file actually contains right now (photometryHashes),
// never on where it lives on disk or a possibly-out-of-date recorded
// hash (spec §4.14 step 2).
type hashedPhotometryAsset struct {
	ID           string  `json:"id"`
	Format       string  `json:"format"`
	Manufacturer string  `json:"manufacturer,omitempty"`
	Catalog      string  `json:"catalog,omitempty"`
	CCT          float64 `json:"cct,omitempty"`
	CRI          float64 `json:"cri,omitempty"`
	BeamDeg      float64 `json:"beam_deg,omitempty"`
	Lumens       float64 `json:"lumens,omitempty"`
}

func redactPhotometryAssets(assets []project.PhotometryAsset) []hashedPhotometryAsset {
	out := make([]hashedPhotometryAsset, len(assets))
	for i, a := range assets {
		out[i] = hashedPhotometryAsset{
			ID: a.ID, Format: a.Format, Manufacturer: a.Manufacturer, Catalog: a.Catalog,
			CCT: a.CCT, CRI: a.CRI, BeamDeg: a.BeamDeg, Lumens: a.Lumens,
		}
	}
	return out
}

func projectView(p *project.Project) HashProjectView {
	return HashProjectView{
		SchemaVersion:     p.SchemaVersion,
		Param:             p.Param,
		Geometry:          p.Geometry,
		Materials:         p.Materials,
		PhotometryAssets:  redactPhotometryAssets(p.PhotometryAssets),
		LuminaireFamilies: p.LuminaireFamilies,
		Luminaires:        p.Luminaires,
		Grids:             p.Grids,
		Workplanes:        p.Workplanes,
		VerticalPlanes:    p.VerticalPlanes,
		PointSets:         p.PointSets,
		LineGrids:         p.LineGrids,
	}
}

// HashPhotometryAssetFile reads path and returns the hex SHA-256 of its
// contents — the file's bytes, not its path, enter the job hash.
func HashPhotometryAssetFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("runner: hash photometry asset %q: %w", path, err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// photometryHashes hashes every referenced photometry asset file,
// keyed by asset id, in sorted id order so the hash composition is
// reproducible regardless of map iteration.
func photometryHashes(p *project.Project) (map[string]string, error) {
	out := make(map[string]string, len(p.PhotometryAssets))
	for _, a := range p.PhotometryAssets {
		h, err := HashPhotometryAssetFile(a.Path)
		if err != nil {
			return nil, err
		}
		out[a.ID] = h
	}
	return out, nil
}

// jobHashPayload is the exact composition hashed for job_hash (spec
// §4.14 step 2).
type jobHashPayload struct {
	Job               project.JobSpec   `json:"job"`
	Project           HashProjectView   `json:"project_without_results_and_audit"`
	PhotometryHashes  map[string]string `json:"photometry_asset_contents_hashed"`
	SolverVersion     string            `json:"solver_version"`
	BackendVersion    string            `json:"backend_version"`
}

// ComputeJobHash derives the content-addressed hash identifying one job
// run against one project state. Equal inputs, including every
// referenced photometry asset's file contents, always yield equal
// output; any edit to a HashProjectView field, the job, solver, or
// backend version changes it.
func ComputeJobHash(p *project.Project, job project.JobSpec, backendVersion string) (string, error) {
	photo, err := photometryHashes(p)
	if err != nil {
		return "", err
	}
	job.GridIDs = sortedGridIDs(job.GridIDs)
	payload := jobHashPayload{
		Job:              job,
		Project:          projectView(p),
		PhotometryHashes: photo,
		SolverVersion:    job.SolverVersion,
		BackendVersion:   backendVersion,
	}
	return ids.HashPayload(payload)
}

func sortedGridIDs(gridIDs []string) []string {
	out := append([]string(nil), gridIDs...)
	sort.Strings(out)
	return out
}
