package skills

import "luxera/internal/project"

// EmergencyIntent recognizes an "emergency" or "escape route" keyword,
// the same way DaylightIntent handles "daylight": it points at an
// already authored emergency-backend job rather than authoring one,
// since geom.escape_route.add and job.emergency.add have no wired
// mutation path in this build (no escape-route geometry type and no
// add-job operation exist in internal/ops yet).
func EmergencyIntent(jobs []project.JobSpec) Outcome {
	for _, j := range jobs {
		if j.BackendID == "emergency" {
			return Outcome{Manifest: map[string]any{"emergency_job_id": j.ID}}
		}
	}
	return Outcome{Warnings: []string{"No emergency-backend job is configured; authoring one from intent text is not implemented in this build."}}
}
