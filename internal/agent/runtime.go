// Package agent implements the stateless agent-turn handler (spec
// §4.16): parse an intent string into recognized actions, propose a
// diff per action through the tool registry and internal/agent/skills,
// gate mutating actions on caller approval, enforce the compliance
// guardrail, and persist a session artifact for the turn.
package agent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"luxera/internal/agent/skills"
	"luxera/internal/delta"
	"luxera/internal/project"
	"luxera/internal/toolregistry"
)

// Action is one recognized, proposed step of a turn.
type Action struct {
	Kind             string         `json:"kind"`
	RequiresApproval bool           `json:"requires_approval"`
	Payload          map[string]any `json:"payload,omitempty"`
}

// Response is Execute's return value (spec §4.16).
type Response struct {
	RuntimeID         string           `json:"runtime_id"`
	Plan              string           `json:"plan"`
	RunManifest       map[string]any   `json:"run_manifest"`
	Actions           []Action         `json:"actions"`
	ProducedArtifacts []string         `json:"produced_artifacts"`
	Warnings          []string         `json:"warnings"`
	ComplianceClaimed bool             `json:"compliance_claimed"`
	ToolCalls         []map[string]any `json:"tool_calls"`
}

// sessionArtifact mirrors .luxera/agent_sessions/<runtime_id>.json
// (spec §4.16 step 5, §6 Session artifacts).
type sessionArtifact struct {
	RuntimeID string           `json:"runtime_id"`
	Intent    string           `json:"intent"`
	Plan      string           `json:"plan"`
	ToolCalls []map[string]any `json:"tool_calls"`
	Actions   []Action         `json:"actions"`
	Warnings  []string         `json:"warnings"`
}

// Runtime executes agent turns. It owns a tool_call_depth counter that
// withToolCall raises for the duration of a call; toolFileRead and
// toolFileWrite refuse to run while it is 0. The memory file, the
// session artifact and project.Save go through these helpers.
// project.Load, registry tool calls, and the skills that read cached
// results or write optimizer artifacts do their file I/O directly,
// without consulting the counter.
type Runtime struct {
	ResultsRoot   string
	toolCallDepth int
	tools         *toolregistry.Registry
}

// New returns a Runtime whose run artifacts are written under
// resultsRoot (ordinarily "<project_dir>/.luxera/results").
func New(resultsRoot string) *Runtime {
	r := &Runtime{ResultsRoot: resultsRoot}
	r.tools = buildToolRegistry(r)
	return r
}

func (rt *Runtime) withToolCall(fn func() error) error {
	rt.toolCallDepth++
	defer func() { rt.toolCallDepth-- }()
	return fn()
}

func (rt *Runtime) toolFileRead(path string) ([]byte, error) {
	if rt.toolCallDepth <= 0 {
		return nil, fmt.Errorf("agent: file read outside a tool call: %s", path)
	}
	return os.ReadFile(path)
}

func (rt *Runtime) toolFileWrite(path string, data []byte) error {
	if rt.toolCallDepth <= 0 {
		return fmt.Errorf("agent: file write outside a tool call: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func deterministicID(projectName, intent string) string {
	h := sha256.Sum256([]byte(projectName + "\n" + strings.ToLower(strings.TrimSpace(intent))))
	return hex.EncodeToString(h[:])[:16]
}

func luxeraDir(p *project.Project) string {
	return filepath.Join(p.RootDir, ".luxera")
}

func (rt *Runtime) loadMemory(p *project.Project) (map[string]any, error) {
	memory := map[string]any{}
	err := rt.withToolCall(func() error {
		b, err := rt.toolFileRead(filepath.Join(luxeraDir(p), "agent_memory.json"))
		if err != nil {
			return nil // no memory file yet is not an error
		}
		return json.Unmarshal(b, &memory)
	})
	return memory, err
}

func (rt *Runtime) saveMemory(p *project.Project, memory map[string]any) error {
	return rt.withToolCall(func() error {
		b, err := json.MarshalIndent(memory, "", "  ")
		if err != nil {
			return err
		}
		return rt.toolFileWrite(filepath.Join(luxeraDir(p), "agent_memory.json"), b)
	})
}

func (rt *Runtime) writeSessionArtifact(p *project.Project, art sessionArtifact) error {
	return rt.withToolCall(func() error {
		b, err := json.MarshalIndent(art, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(luxeraDir(p), "agent_sessions", art.RuntimeID+".json")
		return rt.toolFileWrite(path, b)
	})
}

// Approvals carries per-action approval flags plus an optional subset
// of diff op keys to apply (spec §4.16 step 3's
// "optionally filtered by approvals.selected_diff_ops").
type Approvals struct {
	Flags           map[string]bool
	SelectedDiffOps map[string]bool
}

func (a Approvals) approved(kind string) bool {
	if a.Flags == nil {
		return false
	}
	return a.Flags[kind]
}

// turn accumulates one Execute call's state as skills are consulted.
type turn struct {
	warnings  []string
	produced  []string
	actions   []Action
	toolCalls []map[string]any
	manifest  map[string]any
	claimed   bool
}

func (t *turn) recordTool(tool string, extra map[string]any) {
	call := map[string]any{"tool": tool}
	for k, v := range extra {
		call[k] = v
	}
	t.toolCalls = append(t.toolCalls, call)
}

func (t *turn) merge(o skills.Outcome) {
	t.warnings = append(t.warnings, o.Warnings...)
	t.produced = append(t.produced, o.Produced...)
	for _, a := range o.Actions {
		t.actions = append(t.actions, Action{Kind: a.Kind, RequiresApproval: a.RequiresApproval, Payload: a.Payload})
	}
	for k, v := range o.Manifest {
		t.manifest[k] = v
	}
}

// Execute runs one agent turn: loads the project, parses intent,
// proposes and conditionally applies actions, writes the session
// artifact, and appends an audit line to the project's history.
func (rt *Runtime) Execute(projectPath, intent string, approvals Approvals) (Response, error) {
	p, err := project.Load(projectPath)
	if err != nil {
		return Response{}, fmt.Errorf("agent: open project: %w", err)
	}
	memory, err := rt.loadMemory(p)
	if err != nil {
		return Response{}, fmt.Errorf("agent: load memory: %w", err)
	}

	lintent := strings.ToLower(strings.TrimSpace(intent))
	runtimeID := deterministicID(p.Name, intent)
	plan := "Interpret intent, propose a diff if needed, require approval before apply/run, and produce artifacts."

	t := &turn{manifest: map[string]any{"runtime_id": runtimeID, "intent": intent, "project": p.Name}}

	if strings.Contains(lintent, "import") {
		t.recordTool("import_geometry", nil)
		t.merge(skills.Import(intent))
	}
	if strings.Contains(lintent, "clean geometry") || strings.Contains(lintent, "detect rooms") {
		t.recordTool("clean_geometry", nil)
		t.merge(skills.Clean())
	}

	if strings.Contains(lintent, "daylight") {
		t.recordTool("daylight_intent", nil)
		t.merge(skills.DaylightIntent(p.Jobs))
	}
	if strings.Contains(lintent, "emergency") || strings.Contains(lintent, "escape route") {
		t.recordTool("emergency_intent", nil)
		t.merge(skills.EmergencyIntent(p.Jobs))
	}

	if strings.Contains(lintent, "grid") {
		elevation, spacing := skills.ParseGridArgs(lintent)
		approved := approvals.approved("add_grid")
		if approved {
			_, err := rt.tools.Call("project.grid.add", map[string]any{
				"project": p, "elevation": elevation, "spacing": spacing, "approved": true,
			})
			t.recordTool("add_grid", map[string]any{"elevation": elevation, "spacing": spacing})
			t.actions = append(t.actions, Action{Kind: "add_grid", RequiresApproval: true, Payload: map[string]any{"elevation": elevation, "spacing": spacing}})
			if err != nil {
				t.warnings = append(t.warnings, err.Error())
			}
		} else {
			t.actions = append(t.actions, Action{Kind: "add_grid", RequiresApproval: true, Payload: map[string]any{"elevation": elevation, "spacing": spacing}})
		}
	}

	if containsAny(lintent, "place", "layout", "target") || (strings.Contains(lintent, "hit") && strings.Contains(lintent, "lux")) {
		preferred, _ := memory["preferred_target_lux"].(float64)
		target := skills.ParseTargetLux(lintent, preferred)
		memory["preferred_target_lux"] = target
		jobID := firstJobID(p)
		if jobID == "" {
			t.warnings = append(t.warnings, "No job available to evaluate layout candidates against.")
			t.actions = append(t.actions, Action{Kind: "apply_diff", RequiresApproval: true, Payload: map[string]any{"target_lux": target, "mode": "layout"}})
		} else {
			action, outcome := skills.ProposeLayout(p, rt.ResultsRoot, jobID, target)
			t.recordTool("propose_layout_diff", map[string]any{"target_lux": target, "job_id": jobID})
			t.actions = append(t.actions, Action{Kind: action.Kind, RequiresApproval: action.RequiresApproval, Payload: action.Payload})
			t.merge(outcome)
			if approvals.approved("apply_diff") {
				if bestDiff, ok := outcome.Manifest["layout_best_diff_json"].(string); ok {
					rt.applyBestDiff(p, bestDiff, approvals, t)
				}
			}
		}
	}

	if strings.Contains(lintent, "run") {
		jobID := firstJobID(p)
		tokens := strings.Fields(lintent)
		for i, tok := range tokens {
			if tok == "job" && i+1 < len(tokens) {
				jobID = tokens[i+1]
			}
		}
		if jobID == "" {
			t.warnings = append(t.warnings, "No job found to run.")
		} else {
			t.actions = append(t.actions, Action{Kind: "run_job", RequiresApproval: true, Payload: map[string]any{"job_id": jobID}})
			if approvals.approved("run_job") {
				res, err := rt.tools.Call("job.run", map[string]any{"project": p, "job_id": jobID, "approved": true})
				t.recordTool("run_job", map[string]any{"job_id": jobID, "approved": true})
				if err != nil {
					t.warnings = append(t.warnings, err.Error())
				} else {
					ref := res.(project.JobResultRef)
					t.manifest["run_result"] = map[string]any{"job_hash": ref.JobHash, "result_dir": ref.ResultDir}
					t.produced = append(t.produced, ref.ResultDir)
				}
			}
		}
	}

	if containsAny(lintent, "summarize", "summary", "report") {
		t.recordTool("summarize_results", nil)
		t.merge(skills.Summarize(rt.ResultsRoot, p))
	}

	if strings.Contains(lintent, "optimize") || strings.Contains(lintent, "optimizer") {
		jobID := firstJobID(p)
		if jobID == "" {
			t.warnings = append(t.warnings, "No job available for the optimizer.")
		} else {
			preferred, _ := memory["preferred_target_lux"].(float64)
			target := preferred
			if target == 0 {
				target = 500
			}
			action, outcome := skills.RunOptimizer(p, rt.ResultsRoot, jobID, target)
			t.recordTool("optimize_layout_search", map[string]any{"job_id": jobID, "target_lux": target})
			t.actions = append(t.actions, Action{Kind: action.Kind, RequiresApproval: action.RequiresApproval, Payload: action.Payload})
			t.merge(outcome)
			if approvals.approved("apply_diff") {
				if bestDiff, ok := outcome.Manifest["optimizer_best_diff_json"].(string); ok {
					rt.applyBestDiff(p, bestDiff, approvals, t)
				}
			}
		}
	}

	if strings.Contains(lintent, "compliance") {
		t.recordTool("compliance_check", nil)
		result := skills.CheckCompliance(rt.ResultsRoot, p)
		t.merge(result.Outcome)
		t.claimed = result.Claimed
	}

	t.warnings = append(t.warnings, skills.DeferredExportWarnings(lintent)...)

	p.AgentHistory = append(p.AgentHistory, fmt.Sprintf(
		"agent.runtime.execute runtime_id=%s intent=%q warnings=%d actions=%d",
		runtimeID, intent, len(t.warnings), len(t.actions),
	))

	if err := rt.withToolCall(func() error { return project.Save(p, projectPath) }); err != nil {
		return Response{}, fmt.Errorf("agent: save project: %w", err)
	}
	if err := rt.saveMemory(p, memory); err != nil {
		return Response{}, err
	}

	art := sessionArtifact{RuntimeID: runtimeID, Intent: intent, Plan: plan, ToolCalls: t.toolCalls, Actions: t.actions, Warnings: t.warnings}
	if err := rt.writeSessionArtifact(p, art); err != nil {
		return Response{}, err
	}

	return Response{
		RuntimeID: runtimeID, Plan: plan, RunManifest: t.manifest, Actions: t.actions,
		ProducedArtifacts: t.produced, Warnings: t.warnings, ComplianceClaimed: t.claimed, ToolCalls: t.toolCalls,
	}, nil
}

// applyBestDiff replays a best_diff.json produced by internal/optimize
// through internal/delta, filtered by the caller's selected_diff_ops.
func (rt *Runtime) applyBestDiff(p *project.Project, bestDiffPath string, approvals Approvals, t *turn) {
	ops, err := skills.LoadDiffOps(bestDiffPath)
	if err != nil {
		t.warnings = append(t.warnings, err.Error())
		return
	}
	filtered := filterDiffOps(ops, approvals.SelectedDiffOps)
	if err := delta.Apply(p, diffOpsToDelta(filtered)); err != nil {
		t.warnings = append(t.warnings, err.Error())
		return
	}
	t.recordTool("apply_diff", map[string]any{"approved": true, "selected_ops": len(filtered)})
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func firstJobID(p *project.Project) string {
	if len(p.Jobs) == 0 {
		return ""
	}
	return p.Jobs[0].ID
}

func diffOpKey(index int, op project.DiffOp) string {
	return fmt.Sprintf("%d:%s:%s:%s", index, op.Op, op.Kind, op.ID)
}

func filterDiffOps(ops []project.DiffOp, selected map[string]bool) []project.DiffOp {
	if selected == nil {
		return ops
	}
	var out []project.DiffOp
	for i, op := range ops {
		if selected[diffOpKey(i, op)] {
			out = append(out, op)
		}
	}
	return out
}

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
