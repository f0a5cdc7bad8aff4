// Package txn implements the undo/redo transaction manager that wraps
// every mutating operation against a project, producing an auditable
// TransactionRecord per commit (spec §4.8 Transactions).
package txn

import (
	"fmt"
	"sort"
	"sync"

	"luxera/internal/delta"
	"luxera/internal/project"
)

// Record is the committed result of one operation (or one grouped batch
// of operations), carrying the delta that reproduces it and the project
// hashes bracketing it.
type Record struct {
	OpName      string         `json:"op_name"`
	Args        map[string]any `json:"args,omitempty"`
	Delta       delta.Delta    `json:"delta"`
	BeforeHash  string         `json:"before_hash"`
	AfterHash   string         `json:"after_hash"`
	GroupID     string         `json:"group_id,omitempty"`
	GroupedOps  []string       `json:"grouped_ops,omitempty"`
}

type active struct {
	opName string
	args   map[string]any
	before *project.Project
}

type group struct {
	groupID string
	args    map[string]any
	before  *project.Project
	records []Record
}

// Manager is the per-project undo/redo stack and in-flight transaction
// state. It is not safe for concurrent use from multiple goroutines
// without external synchronization, matching the single-writer
// assumption the rest of this package makes about project mutation.
type Manager struct {
	project *project.Project
	active  *active
	group   *group
	undo    []Record
	redo    []Record
}

// New returns a transaction manager bound to p.
func New(p *project.Project) *Manager {
	return &Manager{project: p}
}

// Begin opens a transaction. Only one transaction may be active at a
// time (nesting is expressed via BeginGroup/EndGroup instead).
func (m *Manager) Begin(opName string, args map[string]any) error {
	if m.active != nil {
		return fmt.Errorf("txn: transaction already active")
	}
	before, err := project.Clone(m.project)
	if err != nil {
		return fmt.Errorf("txn: snapshot project: %w", err)
	}
	m.active = &active{opName: opName, args: args, before: before}
	return nil
}

// BeginGroup opens a transaction group that accumulates Commit records
// until EndGroup merges them into a single Record.
func (m *Manager) BeginGroup(groupID string, args map[string]any) error {
	if m.group != nil {
		return fmt.Errorf("txn: transaction group already active")
	}
	before, err := project.Clone(m.project)
	if err != nil {
		return fmt.Errorf("txn: snapshot project: %w", err)
	}
	m.group = &group{groupID: groupID, args: args, before: before}
	return nil
}

// EndGroup closes the active group, diffing the group's before-snapshot
// against the current project and merging the grouped records' remap
// metadata into a single Record. Returns (Record{}, false) if the group
// had no committed operations.
func (m *Manager) EndGroup(beforeHash, afterHash string) (Record, bool, error) {
	if m.group == nil {
		return Record{}, false, fmt.Errorf("txn: no active transaction group")
	}
	grp := m.group
	m.group = nil
	if len(grp.records) == 0 {
		return Record{}, false, nil
	}

	base, err := delta.Diff(grp.before, m.project)
	if err != nil {
		return Record{}, false, fmt.Errorf("txn: diff group: %w", err)
	}

	stable := make(map[string][]string)
	attach := make(map[string]string)
	regenSet := make(map[string]struct{})
	groupedOps := make([]string, 0, len(grp.records))
	for _, r := range grp.records {
		for k, v := range r.Delta.StableIDMap {
			stable[k] = v
		}
		for k, v := range r.Delta.AttachmentRemap {
			attach[k] = v
		}
		if ids, ok := r.Delta.DerivedRegenSummary["regenerated_ids"].([]string); ok {
			for _, id := range ids {
				regenSet[id] = struct{}{}
			}
		}
		groupedOps = append(groupedOps, r.OpName)
	}
	regenIDs := make([]string, 0, len(regenSet))
	for id := range regenSet {
		regenIDs = append(regenIDs, id)
	}
	sort.Strings(regenIDs)

	merged := delta.Delta{
		Created:      base.Created,
		Updated:      base.Updated,
		Deleted:      base.Deleted,
		ParamChanges: base.ParamChanges,
		DerivedRegenSummary: map[string]any{
			"regenerated_ids": regenIDs,
			"count":           len(regenIDs),
			"group_id":        grp.groupID,
		},
		StableIDMap:     stable,
		AttachmentRemap: attach,
	}

	rec := Record{
		OpName:     grp.groupID,
		Args:       grp.args,
		Delta:      merged,
		BeforeHash: beforeHash,
		AfterHash:  afterHash,
		GroupID:    grp.groupID,
		GroupedOps: groupedOps,
	}
	m.undo = append(m.undo, rec)
	m.redo = nil
	return rec, true, nil
}

// CommitOpts lets a caller override the derived delta's remap metadata
// when the operation computed it directly (e.g. internal/rebuild already
// knows the stable-id map a param edit produced, cheaper than
// re-deriving it from a diff).
type CommitOpts struct {
	BeforeHash          string
	AfterHash           string
	StableIDMap         map[string][]string
	AttachmentRemap     map[string]string
	DerivedRegenSummary map[string]any
}

// Commit closes the active transaction, diffs before/after, and pushes a
// Record onto the undo stack (or onto the active group, if one is open).
func (m *Manager) Commit(opts CommitOpts) (Record, error) {
	if m.active == nil {
		return Record{}, fmt.Errorf("txn: no active transaction")
	}
	act := m.active
	m.active = nil

	base, err := delta.Diff(act.before, m.project)
	if err != nil {
		return Record{}, fmt.Errorf("txn: diff transaction: %w", err)
	}
	d := base
	if opts.StableIDMap != nil {
		d.StableIDMap = opts.StableIDMap
	}
	if opts.AttachmentRemap != nil {
		d.AttachmentRemap = opts.AttachmentRemap
	}
	if opts.DerivedRegenSummary != nil {
		d.DerivedRegenSummary = opts.DerivedRegenSummary
	}

	rec := Record{
		OpName:     act.opName,
		Args:       act.args,
		Delta:      d,
		BeforeHash: opts.BeforeHash,
		AfterHash:  opts.AfterHash,
	}
	if m.group != nil {
		m.group.records = append(m.group.records, rec)
	} else {
		m.undo = append(m.undo, rec)
		m.redo = nil
	}
	return rec, nil
}

// Rollback discards the active transaction's changes by restoring the
// project to its pre-Begin snapshot.
func (m *Manager) Rollback() error {
	if m.active == nil {
		return fmt.Errorf("txn: no active transaction")
	}
	act := m.active
	m.active = nil
	project.Restore(m.project, act.before)
	return nil
}

// Undo pops the most recent Record and applies its inverse delta.
// Reports false if there is nothing to undo.
func (m *Manager) Undo() (bool, error) {
	if len(m.undo) == 0 {
		return false, nil
	}
	rec := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	if err := delta.Apply(m.project, delta.Invert(rec.Delta)); err != nil {
		return false, fmt.Errorf("txn: undo: %w", err)
	}
	m.redo = append(m.redo, rec)
	return true, nil
}

// Redo re-applies the most recently undone Record's delta. Reports
// false if there is nothing to redo.
func (m *Manager) Redo() (bool, error) {
	if len(m.redo) == 0 {
		return false, nil
	}
	rec := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	if err := delta.Apply(m.project, rec.Delta); err != nil {
		return false, fmt.Errorf("txn: redo: %w", err)
	}
	m.undo = append(m.undo, rec)
	return true, nil
}

func (m *Manager) UndoDepth() int  { return len(m.undo) }
func (m *Manager) RedoDepth() int  { return len(m.redo) }
func (m *Manager) Active() bool    { return m.active != nil }
func (m *Manager) GroupActive() bool { return m.group != nil }

var (
	registryMu sync.Mutex
	registry   = map[*project.Project]*Manager{}
)

// ManagerFor returns the manager bound to p, creating and registering
// one on first access so repeated calls for the same project return the
// same manager instance.
func ManagerFor(p *project.Project) *Manager {
	registryMu.Lock()
	defer registryMu.Unlock()
	if mgr, ok := registry[p]; ok {
		return mgr
	}
	mgr := New(p)
	registry[p] = mgr
	return mgr
}
