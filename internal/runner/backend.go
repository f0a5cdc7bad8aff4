package runner

import (
	"context"

	"luxera/internal/project"
)

// CancellationToken lets a caller cooperatively cancel a long-running
// job between samples without leaving partial artifacts or cache
// entries behind (spec §5 Cancellation).
type CancellationToken = context.Context

// ObjectSamples carries the computed illuminance value at every sample
// of one calc object, in the object's authored sample order.
type ObjectSamples struct {
	Kind   string    // "grid", "vertical_plane", "point_set", "line_grid"
	ID     string
	Points [][3]float64
	Lux    []float64
}

// Output is what a Backend produces for one job run, before artifact
// materialization.
type Output struct {
	Solver             string
	Backend            string
	Assumptions        []string
	UnsupportedFeatures []string
	Objects            []ObjectSamples
}

// Input is everything a Backend needs to execute one job, already
// resolved from the project (spec §4.14 run_job step 1: validated
// assets/grids/rooms).
type Input struct {
	Job     project.JobSpec
	Project *project.Project
}

// Backend computes illuminance samples for one job. Implementations
// must be deterministic: no wall-clock reads, no dependence on map
// iteration order, and any PRNG seeded from Job.Params["seed"] (spec
// §4.14 Determinism requirements). The concrete optical model a backend
// uses (radiosity, daylight factor, emergency egress) is this package's
// pluggable concern, not the wire contract's.
type Backend interface {
	Name() string
	Run(ctx CancellationToken, in Input) (Output, error)
}
