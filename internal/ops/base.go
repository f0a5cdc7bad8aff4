// Package ops is the operations facade: every mutating entry point into
// a project runs through ExecuteOp, which wraps the mutation in a
// transaction, records an audit event, and rolls back on error (spec
// §4.10 Operations).
package ops

import (
	"fmt"
	"sort"

	"luxera/internal/txn"
	"luxera/internal/project"
)

// Source names who is driving an operation.
type Source string

const (
	SourceGUI   Source = "gui"
	SourceAgent Source = "agent"
	SourceCLI   Source = "cli"
)

// Context carries the caller identity and approval state for an
// operation. Agent-sourced operations that set RequireApproval must also
// set Approved, or ExecuteOp refuses to run.
type Context struct {
	User            string
	Source          Source
	RequireApproval bool
	Approved        bool
	RunID           string
}

// DefaultContext is used when a caller passes a nil *Context.
func DefaultContext() Context {
	return Context{User: "system", Source: SourceGUI, Approved: true}
}

// Regenerated is implemented by mutate() results that carry rebuild
// remap metadata, so ExecuteOp can fold it into the transaction record
// without every operation repeating that plumbing.
type Regenerated interface {
	RegenSummary() (stableIDMap map[string][]string, attachmentRemap map[string]string, regeneratedIDs []string)
}

// ApprovalError is returned when an agent-sourced operation requiring
// approval was not pre-approved by the caller.
type ApprovalError struct {
	OpName string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("ops: operation %q requires approval", e.OpName)
}

// ExecuteOp runs mutate inside a transaction against p: it hashes the
// project before and after, commits the delta, appends an audit entry
// to p.AgentHistory, and rolls back the transaction if mutate or
// validate returns an error.
func ExecuteOp[T any](p *project.Project, opName string, args map[string]any, ctx *Context, validate func() error, mutate func() (T, error)) (T, error) {
	var zero T
	c := DefaultContext()
	if ctx != nil {
		c = *ctx
	}
	if c.Source == SourceAgent && c.RequireApproval && !c.Approved {
		return zero, &ApprovalError{OpName: opName}
	}
	if validate != nil {
		if err := validate(); err != nil {
			return zero, err
		}
	}

	beforeHash, err := p.Hash()
	if err != nil {
		return zero, fmt.Errorf("ops: hash before %s: %w", opName, err)
	}
	mgr := txn.ManagerFor(p)
	if err := mgr.Begin(opName, args); err != nil {
		return zero, fmt.Errorf("ops: begin %s: %w", opName, err)
	}

	result, mutateErr := mutate()
	if mutateErr != nil {
		_ = mgr.Rollback()
		return zero, mutateErr
	}

	opts := txn.CommitOpts{}
	if rg, ok := any(result).(Regenerated); ok {
		stable, attach, regen := rg.RegenSummary()
		sorted := append([]string(nil), regen...)
		sort.Strings(sorted)
		opts.StableIDMap = stable
		opts.AttachmentRemap = attach
		opts.DerivedRegenSummary = map[string]any{
			"regenerated_ids": sorted,
			"count":           len(sorted),
		}
	}

	afterHash, err := p.Hash()
	if err != nil {
		_ = mgr.Rollback()
		return zero, fmt.Errorf("ops: hash after %s: %w", opName, err)
	}
	opts.BeforeHash = beforeHash
	opts.AfterHash = afterHash

	rec, err := mgr.Commit(opts)
	if err != nil {
		return zero, fmt.Errorf("ops: commit %s: %w", opName, err)
	}

	p.AgentHistory = append(p.AgentHistory, formatEvent(opName, c, rec, beforeHash, afterHash))

	return result, nil
}

func formatEvent(opName string, c Context, rec txn.Record, beforeHash, afterHash string) string {
	return fmt.Sprintf(
		"ops.%s source=%s user=%s before=%s after=%s created=%d updated=%d deleted=%d",
		opName, c.Source, c.User, beforeHash, afterHash,
		len(rec.Delta.Created), len(rec.Delta.Updated), len(rec.Delta.Deleted),
	)
}
