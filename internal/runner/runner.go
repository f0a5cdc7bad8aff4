package runner

import (
	"fmt"
	"time"

	"luxera/internal/geom"
	"luxera/internal/project"
)

// BackendVersion is stamped into every job hash and manifest; bump it
// whenever a backend's computation changes in a way that should
// invalidate existing cached results.
const BackendVersion = "1.0.0"

// Backends is the registry RunJob dispatches job.BackendID against.
// Radiosity is the default for an unset BackendID.
var Backends = map[string]Backend{
	"radiosity": RadiosityBackend{},
	"daylight":  DaylightBackend{},
	"emergency": EmergencyBackend{},
}

// LookupJob returns the job with the given id from the project's job
// list, or an error if no such job is authored.
func LookupJob(p *project.Project, jobID string) (project.JobSpec, error) {
	for _, j := range p.Jobs {
		if j.ID == jobID {
			return j, nil
		}
	}
	return project.JobSpec{}, fmt.Errorf("runner: unknown job %q", jobID)
}

func backendFor(job project.JobSpec) (Backend, error) {
	id := job.BackendID
	if id == "" {
		id = "radiosity"
	}
	b, ok := Backends[id]
	if !ok {
		return nil, fmt.Errorf("runner: unknown backend %q", id)
	}
	return b, nil
}

// ValidateJob checks the preconditions spec §4.14 step 1 names: every
// referenced grid exists, and every referenced photometry asset's file
// is readable.
func ValidateJob(p *project.Project, job project.JobSpec) error {
	gridIDs := make(map[string]bool, len(p.Grids))
	for _, g := range p.Grids {
		gridIDs[g.ID] = true
	}
	for _, id := range job.GridIDs {
		if !gridIDs[id] {
			return fmt.Errorf("runner: job %s references unknown grid %q", job.ID, id)
		}
	}
	if _, err := backendFor(job); err != nil {
		return err
	}
	for _, a := range p.PhotometryAssets {
		if _, err := HashPhotometryAssetFile(a.Path); err != nil {
			return fmt.Errorf("runner: photometry asset %s unreadable: %w", a.ID, err)
		}
	}
	return nil
}

// RunJob executes spec §4.14's five-step algorithm: locate and validate
// the job, compute its content-addressed hash, reuse a cached result
// when one already exists for that hash, otherwise execute the backend
// and materialize artifacts, then append a JobResultRef to the
// project's results.
func RunJob(ctx CancellationToken, p *project.Project, jobID, resultsRoot string) (project.JobResultRef, error) {
	job, err := LookupJob(p, jobID)
	if err != nil {
		return project.JobResultRef{}, err
	}

	if err := ValidateJob(p, job); err != nil {
		return project.JobResultRef{}, err
	}

	jobHash, err := ComputeJobHash(p, job, BackendVersion)
	if err != nil {
		return project.JobResultRef{}, fmt.Errorf("runner: compute job hash: %w", err)
	}

	dir := ResultDir(resultsRoot, jobHash)
	if CacheHit(resultsRoot, jobHash) {
		ref := project.JobResultRef{JobID: job.ID, JobHash: jobHash, ResultDir: dir, CreatedAt: nowRFC3339()}
		appendResultRef(p, ref)
		return ref, nil
	}

	backend, err := backendFor(job)
	if err != nil {
		return project.JobResultRef{}, err
	}
	out, err := backend.Run(ctx, Input{Job: job, Project: p})
	if err != nil {
		return project.JobResultRef{}, fmt.Errorf("runner: backend %s: %w", backend.Name(), err)
	}

	assets, err := photometryHashes(p)
	if err != nil {
		return project.JobResultRef{}, err
	}

	healReport := geom.AnalyzeMesh(surfacesToTriangles(p.Geometry.Surfaces))

	if _, err := writeResultDir(dir, job, assets, out, healReport); err != nil {
		return project.JobResultRef{}, err
	}

	ref := project.JobResultRef{JobID: job.ID, JobHash: jobHash, ResultDir: dir, CreatedAt: nowRFC3339()}
	appendResultRef(p, ref)
	return ref, nil
}

func appendResultRef(p *project.Project, ref project.JobResultRef) {
	for _, existing := range p.Results {
		if existing.JobID == ref.JobID && existing.JobHash == ref.JobHash {
			return
		}
	}
	p.Results = append(p.Results, ref)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
