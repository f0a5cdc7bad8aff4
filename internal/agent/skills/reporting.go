package skills

import (
	"strings"

	"luxera/internal/project"
	"luxera/internal/runner"
)

// Summarize loads the latest cached result and surfaces its summary.
// "report" shares this skill rather than getting its own PDF/HTML
// renderer: report.pdf/roadway.html/bundle.client/bundle.audit all
// call into export machinery (internal/reportsupport/svgpreview and a
// bundling step) that is not part of this build, so any report-style
// keyword gets the same typed summary plus a warning about what it
// cannot produce yet.
func Summarize(resultsRoot string, p *project.Project) Outcome {
	if len(p.Results) == 0 {
		return Outcome{Warnings: []string{"Cannot summarize: no job results available."}}
	}
	latest := p.Results[len(p.Results)-1]
	doc, err := runner.LoadResult(resultsRoot, latest.JobHash)
	if err != nil {
		return Outcome{Warnings: []string{err.Error()}}
	}
	return Outcome{Manifest: map[string]any{"latest_summary": doc.Summary, "latest_job_id": latest.JobID}}
}

// deferredReportKeywords are export/bundle keywords recognized but not
// backed by an implementation in this build.
var deferredReportKeywords = []string{"client", "audit", "debug", "roadway", "heatmap"}

// DeferredExportWarnings flags any export-style keyword in lintent
// that this build recognizes but cannot act on.
func DeferredExportWarnings(lintent string) []string {
	var found []string
	for _, kw := range deferredReportKeywords {
		if strings.Contains(lintent, kw) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return []string{"keywords recognized but not yet implemented in this build: " + strings.Join(found, ", ")}
}
