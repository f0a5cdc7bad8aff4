package agent

import (
	"context"
	"fmt"

	"luxera/internal/agent/skills"
	"luxera/internal/ops"
	"luxera/internal/project"
	"luxera/internal/runner"
	"luxera/internal/toolregistry"
)

// buildToolRegistry wires the concrete tool set backing the keyword
// actions in Execute. The job.run tool closes over rt so it can reach
// the results root for run artifacts.
func buildToolRegistry(rt *Runtime) *toolregistry.Registry {
	r := toolregistry.New()

	r.Register(toolregistry.Spec{
		Name: "project.grid.add",
		Params: []toolregistry.ParamSpec{
			{Name: "room_id", Type: "string"},
			{Name: "elevation", Type: "number", Default: 0.8},
			{Name: "spacing", Type: "number", Default: 0.5},
			{Name: "approved", Type: "boolean", Default: false},
		},
		PermissionTag: toolregistry.PermissionProjectEdit,
		Fn: func(args map[string]any) (any, error) {
			p, ok := args["project"].(*project.Project)
			if !ok {
				return nil, fmt.Errorf("agent: project.grid.add requires a project")
			}
			elevation, _ := args["elevation"].(float64)
			if elevation == 0 {
				elevation = 0.8
			}
			spacing, _ := args["spacing"].(float64)
			if spacing == 0 {
				spacing = 0.5
			}
			approved, _ := args["approved"].(bool)

			_, outcome := skills.AddGrid(p, elevation, spacing, approved)
			if len(outcome.Warnings) > 0 {
				return nil, fmt.Errorf("%s", outcome.Warnings[0])
			}
			return outcome.Manifest["grid"], nil
		},
	})

	r.Register(toolregistry.Spec{
		Name: "job.run",
		Params: []toolregistry.ParamSpec{
			{Name: "job_id", Type: "string", Required: true},
			{Name: "approved", Type: "boolean", Default: false},
		},
		PermissionTag: toolregistry.PermissionRunJob,
		Fn: func(args map[string]any) (any, error) {
			p, ok := args["project"].(*project.Project)
			if !ok {
				return nil, fmt.Errorf("agent: job.run requires a project")
			}
			jobID, _ := args["job_id"].(string)
			approved, _ := args["approved"].(bool)
			if !approved {
				return nil, &ops.ApprovalError{OpName: "agent.job.run"}
			}
			ref, err := runner.RunJob(context.Background(), p, jobID, rt.ResultsRoot)
			if err != nil {
				return nil, err
			}
			p.Results = append(p.Results, ref)
			return ref, nil
		},
	})

	return r
}
