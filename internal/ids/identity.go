package ids

import "fmt"

// Derived-surface identity helpers (grounded on original_source
// luxera/geometry/param/identity.py). Surface ids are always computed from
// (parent param id, derivation kind) so re-deriving the same inputs yields
// the same id (spec invariant 1).

// SurfaceIDForWallSide returns the derived surface id for one side of a wall.
func SurfaceIDForWallSide(wallID string, side string) (string, error) {
	switch side {
	case "A", "B":
	default:
		return "", fmt.Errorf("ids: side must be 'A' or 'B', got %q", side)
	}
	return DerivedID(wallID, "surface.wall.side", map[string]any{"side": side})
}

// SurfaceIDForFloor returns the derived floor surface id for a room.
func SurfaceIDForFloor(roomID string) (string, error) {
	return DerivedID(roomID, "surface.floor", map[string]any{})
}

// SurfaceIDForCeiling returns the derived ceiling surface id for a room.
func SurfaceIDForCeiling(roomID string) (string, error) {
	return DerivedID(roomID, "surface.ceiling", map[string]any{})
}

// SurfaceIDForSharedWall returns the derived surface id for a shared wall.
func SurfaceIDForSharedWall(sharedWallID string) (string, error) {
	return DerivedID(sharedWallID, "surface.shared_wall", map[string]any{})
}

// SurfaceIDForWallPart returns the id of the k-th disjoint solid part
// produced by opening subtraction on a wall (spec §4.5 step 3,
// "<wall_id>:part<k>").
func SurfaceIDForWallPart(wallSurfaceID string, k int) string {
	return fmt.Sprintf("%s:part%d", wallSurfaceID, k)
}

// SurfaceIDForWallTriangle returns the id of the k-th triangle emitted when a
// wall-with-holes polygon is triangulated ("<wall_id>:tri<k>").
func SurfaceIDForWallTriangle(wallSurfaceID string, k int) string {
	return fmt.Sprintf("%s:tri%d", wallSurfaceID, k)
}
