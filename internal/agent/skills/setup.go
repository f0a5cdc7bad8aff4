package skills

import (
	"strconv"
	"strings"

	"luxera/internal/calcbuild"
	"luxera/internal/ops"
	"luxera/internal/project"
)

// Import recognizes an "import <path>" intent. Deferred: turning a bare
// file path into importpipeline.Run's RawDocument input requires a
// source-format parser, which is out of scope for this build.
func Import(intent string) Outcome {
	tokens := strings.Fields(intent)
	path := ""
	for i, t := range tokens {
		if strings.EqualFold(t, "import") && i+1 < len(tokens) {
			path = tokens[i+1]
		}
	}
	return Outcome{
		Warnings: []string{"Geometry import is recognized but deferred in this build: no source-format parser is wired to produce a RawDocument from a file path."},
		Manifest: map[string]any{"import_requested_path": path},
	}
}

// Clean recognizes "clean geometry" / "detect rooms". Deferred: once
// rooms are resolved the project model keeps no raw mesh to re-heal.
func Clean() Outcome {
	return Outcome{
		Warnings: []string{"Geometry cleanup/room detection is recognized but deferred in this build: the project model keeps no raw mesh once rooms are resolved."},
	}
}

// ParseGridArgs pulls an elevation and spacing out of a grid intent,
// falling back to spec-reasonable indoor-office defaults when absent.
func ParseGridArgs(lintent string) (elevation, spacing float64) {
	elevation, spacing = 0.8, 0.25
	sawElevation := false
	for _, tok := range strings.Fields(lintent) {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if !sawElevation {
			elevation, sawElevation = f, true
			continue
		}
		spacing = f
	}
	return elevation, spacing
}

// AddGrid proposes an add_grid action and, once approved, adds a calc
// grid over the project's first authored room via
// internal/calcbuild.CreateCalcGridFromRoom, gated through
// internal/ops.ExecuteOp the way every other project mutation is.
func AddGrid(p *project.Project, elevation, spacing float64, approved bool) (Action, Outcome) {
	action := Action{Kind: "add_grid", RequiresApproval: true, Payload: map[string]any{"elevation": elevation, "spacing": spacing}}
	if !approved {
		return action, Outcome{}
	}
	if len(p.Param.Rooms) == 0 {
		return action, Outcome{Warnings: []string{"agent: no rooms to place a grid in"}}
	}
	roomID := p.Param.Rooms[0].ID
	octx := &ops.Context{Source: ops.SourceAgent, RequireApproval: true, Approved: true, User: "agent"}
	grid, err := ops.ExecuteOp(p, "agent.grid.add", map[string]any{"room_id": roomID, "elevation": elevation, "spacing": spacing}, octx, nil,
		func() (project.CalcGrid, error) {
			return calcbuild.CreateCalcGridFromRoom(p, calcbuild.CalcGridFromRoomArgs{
				GridID:    "grid-" + roomID,
				RoomID:    roomID,
				Elevation: elevation,
				Spacing:   spacing,
			})
		})
	if err != nil {
		return action, Outcome{Warnings: []string{err.Error()}}
	}
	return action, Outcome{Manifest: map[string]any{"grid": grid}}
}
