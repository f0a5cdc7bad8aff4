package geom

// Planar and positional epsilons from spec §3/Glossary.
const (
	EPSPlane = 1e-6
	EPSPos   = 1e-9
)

// Point2 is a 2D point in a wall-local UV frame or other planar space.
type Point2 struct{ U, V float64 }
