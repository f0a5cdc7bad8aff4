// Package variant implements run-for-variants comparison (spec §4.15):
// cloning a project per named variant, applying luminaire overrides and
// a typed diff, running the deterministic job through internal/runner
// (results written under the results root and read back), and tabulating
// every numeric summary metric against a baseline.
package variant

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"luxera/internal/delta"
	"luxera/internal/project"
	"luxera/internal/runner"
)

// Apply clones base and returns the project a variant describes: its
// luminaire overrides and dimming factors applied, then its diff_ops
// replayed through delta.Apply (spec §4.15 step 1).
func Apply(base *project.Project, v project.Variant) (*project.Project, error) {
	p, err := project.Clone(base)
	if err != nil {
		return nil, fmt.Errorf("variant: clone base project: %w", err)
	}

	applyLuminaireOverrides(p, v.LuminaireOverrides)
	applyDimmingSchemes(p, v.DimmingSchemes)

	if len(v.DiffOps) > 0 {
		if err := delta.Apply(p, diffOpsToDelta(v.DiffOps)); err != nil {
			return nil, fmt.Errorf("variant: apply diff_ops: %w", err)
		}
	}
	return p, nil
}

func applyLuminaireOverrides(p *project.Project, overrides map[string]project.LuminaireOverride) {
	if len(overrides) == 0 {
		return
	}
	for i := range p.Luminaires {
		lum := &p.Luminaires[i]
		o, ok := overrides[lum.ID]
		if !ok {
			continue
		}
		if o.FluxMultiplier != nil {
			lum.FluxMultiplier = *o.FluxMultiplier
		}
		if o.MaintenanceFactor != nil {
			lum.MaintenanceFactor = *o.MaintenanceFactor
		}
		if o.TiltDeg != nil {
			lum.TiltDeg = *o.TiltDeg
		}
	}
}

func applyDimmingSchemes(p *project.Project, dimming map[string]float64) {
	if len(dimming) == 0 {
		return
	}
	for i := range p.Luminaires {
		lum := &p.Luminaires[i]
		if factor, ok := dimming[lum.ID]; ok {
			lum.FluxMultiplier *= factor
		}
	}
}

// diffOpsToDelta sorts a variant's diff_ops into the Created/Updated/
// Deleted buckets delta.Apply expects — "add" and "update" both carry
// their after-payload as an upsert, matching the teacher diff's own
// add/update symmetry (both hit the same upsert path on a collection).
func diffOpsToDelta(ops []project.DiffOp) delta.Delta {
	var d delta.Delta
	for _, op := range ops {
		item := delta.Item{Kind: op.Kind, ID: op.ID, After: op.Payload}
		switch op.Op {
		case "add":
			d.Created = append(d.Created, item)
		case "update":
			d.Updated = append(d.Updated, item)
		case "remove":
			d.Deleted = append(d.Deleted, item)
		}
	}
	return d
}

// Row is one variant's comparison line: its summary metrics flattened
// to a flat name->value map, plus every metric's delta against the
// baseline variant (spec §4.15 step 3).
type Row struct {
	VariantID   string             `json:"variant_id"`
	VariantName string             `json:"variant_name"`
	JobHash     string             `json:"job_hash"`
	ResultDir   string             `json:"result_dir"`
	Metrics     map[string]float64 `json:"metrics"`
	Deltas      map[string]float64 `json:"deltas"`
}

// CompareResult is what RunJobForVariants returns and what
// variants_compare.json/.csv are derived from.
type CompareResult struct {
	JobID             string   `json:"job_id"`
	VariantIDs        []string `json:"variant_ids"`
	BaselineVariantID string   `json:"baseline_variant_id"`
	MetricKeys        []string `json:"metrics"`
	Rows              []Row    `json:"rows"`
	OutDir            string   `json:"-"`
}

// flattenSummary reduces a runner.GlobalSummary to the flat numeric
// metric set a delta table operates over: the two worst-case
// aggregates plus every per-object statistic, keyed
// "<kind>.<id>.<stat>" so metrics never collide across objects.
func flattenSummary(s runner.GlobalSummary) map[string]float64 {
	out := map[string]float64{
		"worst_min":        s.WorstMin,
		"worst_uniformity": s.WorstUniformity,
	}
	for _, o := range s.Objects {
		prefix := o.Kind + "." + o.ID + "."
		out[prefix+"min"] = o.Min
		out[prefix+"mean"] = o.Mean
		out[prefix+"max"] = o.Max
		out[prefix+"uniformity"] = o.Uniformity
	}
	return out
}

func variantsToken(jobID string, variantIDs []string) string {
	sum := sha256.Sum256([]byte(jobID + "|" + strings.Join(variantIDs, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// RunJobForVariants runs jobID once per variant (in the given order,
// each against its own in-memory clone of base), then tabulates every
// numeric summary metric against baselineVariantID (defaulting to the
// first variant when empty), per spec §4.15.
func RunJobForVariants(ctx runner.CancellationToken, base *project.Project, jobID string, variantIDs []string, baselineVariantID, resultsRoot string) (CompareResult, error) {
	variantByID := make(map[string]project.Variant, len(base.Variants))
	for _, v := range base.Variants {
		variantByID[v.ID] = v
	}
	var missing []string
	for _, vid := range variantIDs {
		if _, ok := variantByID[vid]; !ok {
			missing = append(missing, vid)
		}
	}
	if len(missing) > 0 {
		return CompareResult{}, fmt.Errorf("variant: unknown variant ids: %s", strings.Join(missing, ", "))
	}
	if baselineVariantID != "" {
		found := false
		for _, vid := range variantIDs {
			if vid == baselineVariantID {
				found = true
				break
			}
		}
		if !found {
			return CompareResult{}, fmt.Errorf("variant: baseline_variant_id must be one of variant_ids")
		}
	} else if len(variantIDs) > 0 {
		baselineVariantID = variantIDs[0]
	}

	rows := make([]Row, 0, len(variantIDs))
	metricSet := map[string]struct{}{}
	for _, vid := range variantIDs {
		v := variantByID[vid]
		vp, err := Apply(base, v)
		if err != nil {
			return CompareResult{}, err
		}
		ref, err := runner.RunJob(ctx, vp, jobID, resultsRoot)
		if err != nil {
			return CompareResult{}, fmt.Errorf("variant: run job for variant %s: %w", vid, err)
		}
		doc, err := runner.LoadResult(resultsRoot, ref.JobHash)
		if err != nil {
			return CompareResult{}, fmt.Errorf("variant: load result for variant %s: %w", vid, err)
		}
		metrics := flattenSummary(doc.Summary)
		for k := range metrics {
			metricSet[k] = struct{}{}
		}
		rows = append(rows, Row{
			VariantID:   v.ID,
			VariantName: v.Name,
			JobHash:     ref.JobHash,
			ResultDir:   ref.ResultDir,
			Metrics:     metrics,
		})
	}

	metricKeys := make([]string, 0, len(metricSet))
	for k := range metricSet {
		metricKeys = append(metricKeys, k)
	}
	sort.Strings(metricKeys)

	var baselineMetrics map[string]float64
	for _, r := range rows {
		if r.VariantID == baselineVariantID {
			baselineMetrics = r.Metrics
			break
		}
	}
	for i := range rows {
		rows[i].Deltas = make(map[string]float64, len(metricKeys))
		for _, k := range metricKeys {
			if bv, ok := baselineMetrics[k]; ok {
				if v, ok := rows[i].Metrics[k]; ok {
					rows[i].Deltas[k] = v - bv
				}
			}
		}
	}

	return CompareResult{
		JobID:             jobID,
		VariantIDs:        variantIDs,
		BaselineVariantID: baselineVariantID,
		MetricKeys:        metricKeys,
		Rows:              rows,
		OutDir:            variantsToken(jobID, variantIDs),
	}, nil
}

// WriteArtifacts writes variants_compare.json and variants_compare.csv
// into resultsRoot/variants/<token>, where <token> is result.OutDir. Each CSV row
// is a variant; columns are variant_id, variant_name, job_hash, then one
// column per metric and one per delta_<metric>, matching the teacher's
// encoding/csv writer pattern (internal/runner's per-object CSVs).
func WriteArtifacts(resultsRoot string, result CompareResult) (string, error) {
	dir := filepath.Join(resultsRoot, "variants", result.OutDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("variant: make output dir: %w", err)
	}

	jsonPath := filepath.Join(dir, "variants_compare.json")
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("variant: marshal variants_compare.json: %w", err)
	}
	if err := os.WriteFile(jsonPath, b, 0o644); err != nil {
		return "", fmt.Errorf("variant: write variants_compare.json: %w", err)
	}

	csvPath := filepath.Join(dir, "variants_compare.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return "", fmt.Errorf("variant: create variants_compare.csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"variant_id", "variant_name", "job_hash"}
	for _, k := range result.MetricKeys {
		header = append(header, k)
	}
	for _, k := range result.MetricKeys {
		header = append(header, "delta_"+k)
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("variant: write csv header: %w", err)
	}
	for _, r := range result.Rows {
		row := []string{r.VariantID, r.VariantName, r.JobHash}
		for _, k := range result.MetricKeys {
			row = append(row, strconv.FormatFloat(r.Metrics[k], 'g', -1, 64))
		}
		for _, k := range result.MetricKeys {
			row = append(row, strconv.FormatFloat(r.Deltas[k], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("variant: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return dir, nil
}
