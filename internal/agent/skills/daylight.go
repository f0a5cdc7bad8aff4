package skills

import "luxera/internal/project"

// DaylightIntent recognizes a "daylight" keyword. Authoring a new
// daylight job from intent text is deferred: internal/ops has no
// add-job operation yet, so this skill only reports the id of the first
// already authored daylight-backend job in the turn's manifest
// (daylight_job_id); the run keyword does not read that entry.
func DaylightIntent(jobs []project.JobSpec) Outcome {
	for _, j := range jobs {
		if j.BackendID == "daylight" {
			return Outcome{Manifest: map[string]any{"daylight_job_id": j.ID}}
		}
	}
	return Outcome{Warnings: []string{"No daylight-backend job is configured; authoring one from intent text is not implemented in this build."}}
}
