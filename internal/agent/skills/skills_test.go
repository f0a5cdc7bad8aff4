package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luxera/internal/project"
)

func TestParseGridArgs_ReadsElevationThenSpacing(t *testing.T) {
	elevation, spacing := ParseGridArgs("add a grid at 0.9 spacing 0.3")
	assert.Equal(t, 0.9, elevation)
	assert.Equal(t, 0.3, spacing)
}

func TestParseGridArgs_DefaultsWhenNoNumbersPresent(t *testing.T) {
	elevation, spacing := ParseGridArgs("add a grid")
	assert.Equal(t, 0.8, elevation)
	assert.Equal(t, 0.25, spacing)
}

func TestParseTargetLux_PrefersExplicitNumberOverMemory(t *testing.T) {
	got := ParseTargetLux("hit 750 lux", 500)
	assert.Equal(t, 750.0, got)
}

func TestParseTargetLux_FallsBackToPreferred(t *testing.T) {
	got := ParseTargetLux("place luminaires", 650)
	assert.Equal(t, 650.0, got)
}

func TestImport_WarnsDeferredAndCapturesPath(t *testing.T) {
	out := Import("please import fixtures.ifc now")
	assert.NotEmpty(t, out.Warnings)
	assert.Equal(t, "fixtures.ifc", out.Manifest["import_requested_path"])
}

func TestDeferredExportWarnings_FlagsKnownKeywords(t *testing.T) {
	warnings := DeferredExportWarnings("export a client report and an audit bundle")
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "client")
	assert.Contains(t, warnings[0], "audit")
}

func TestDeferredExportWarnings_EmptyWhenNoneMatch(t *testing.T) {
	assert.Empty(t, DeferredExportWarnings("run the job"))
}

func TestDaylightIntent_FindsMatchingJob(t *testing.T) {
	jobs := []project.JobSpec{{ID: "j1", BackendID: "radiosity"}, {ID: "j2", BackendID: "daylight"}}
	out := DaylightIntent(jobs)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, "j2", out.Manifest["daylight_job_id"])
}

func TestDaylightIntent_WarnsWhenNoneConfigured(t *testing.T) {
	out := DaylightIntent([]project.JobSpec{{ID: "j1", BackendID: "radiosity"}})
	assert.NotEmpty(t, out.Warnings)
}

func TestAddGrid_DoesNotMutateWithoutApproval(t *testing.T) {
	p := project.New("demo")
	p.Param.Rooms = nil
	action, outcome := AddGrid(p, 0.8, 0.5, false)
	assert.Equal(t, "add_grid", action.Kind)
	assert.True(t, action.RequiresApproval)
	assert.Empty(t, outcome.Warnings)
	assert.Empty(t, p.Grids)
}
