// Package delta implements typed before/after change records over a
// project's collections, diffing, inversion, and ordered application
// (spec §4.9 Delta & Diff).
package delta

import (
	"encoding/json"
	"sort"

	"luxera/internal/calcbuild"
	"luxera/internal/project"
	"luxera/internal/rebuild"
)

// Item is one created/updated/deleted record within a Delta.
type Item struct {
	Kind   string          `json:"kind"`
	ID     string          `json:"id"`
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
}

// Delta is the full set of changes between two project states, plus the
// remap metadata a rebuild pass produced along the way.
type Delta struct {
	Created               []Item              `json:"created"`
	Updated               []Item              `json:"updated"`
	Deleted               []Item              `json:"deleted"`
	ParamChanges          map[string][]string `json:"param_changes,omitempty"`
	DerivedRegenSummary   map[string]any      `json:"derived_regen_summary,omitempty"`
	StableIDMap           map[string][]string `json:"stable_id_map,omitempty"`
	AttachmentRemap       map[string]string   `json:"attachment_remap,omitempty"`
}

// IsEmpty reports whether the delta carries no collection changes.
func (d Delta) IsEmpty() bool {
	return len(d.Created) == 0 && len(d.Updated) == 0 && len(d.Deleted) == 0
}

// Invert swaps created<->deleted, before<->after, and reverses the
// stable-id/attachment remap tables, producing the delta that undoes d
// (spec §4.9: "undo applies the inverse delta").
func Invert(d Delta) Delta {
	invStable := make(map[string][]string)
	for parent, children := range d.StableIDMap {
		for _, child := range children {
			invStable[child] = append(invStable[child], parent)
		}
	}
	for k := range invStable {
		sort.Strings(invStable[k])
	}
	invAttach := make(map[string]string, len(d.AttachmentRemap))
	for k, v := range d.AttachmentRemap {
		invAttach[v] = k
	}
	swap := func(items []Item) []Item {
		out := make([]Item, len(items))
		for i, it := range items {
			out[i] = Item{Kind: it.Kind, ID: it.ID, Before: it.After, After: it.Before}
		}
		return out
	}
	return Delta{
		Created:             swap(d.Deleted),
		Updated:             swap(d.Updated),
		Deleted:             swap(d.Created),
		ParamChanges:        d.ParamChanges,
		DerivedRegenSummary: d.DerivedRegenSummary,
		StableIDMap:         invStable,
		AttachmentRemap:     invAttach,
	}
}

// paramNamespace maps a param delta kind to its depgraph namespace prefix,
// used to trigger a rebuild after applying param edits.
var paramNamespace = map[string]string{
	KindParamFootprint:  "footprint",
	KindParamRoom:       "room",
	KindParamWall:       "wall",
	KindParamSharedWall: "shared_wall",
	KindParamOpening:    "opening",
	KindParamZone:       "zone",
	KindParamSlab:       "slab",
}

// Apply applies a delta to p in the stable order deletes -> updates ->
// creates, then replays the incremental rebuild over every edited param
// entity (spec §4.9).
func Apply(p *project.Project, d Delta) error {
	for _, it := range d.Deleted {
		if err := deleteItem(p, it.Kind, it.ID); err != nil {
			return err
		}
	}
	for _, it := range d.Updated {
		if it.After == nil {
			continue
		}
		if err := upsertItem(p, it.Kind, it.ID, it.After, false); err != nil {
			return err
		}
	}
	for _, it := range d.Created {
		if it.After == nil {
			continue
		}
		if err := upsertItem(p, it.Kind, it.ID, it.After, true); err != nil {
			return err
		}
	}

	editedSet := make(map[string]struct{})
	for _, items := range [][]Item{d.Created, d.Updated, d.Deleted} {
		for _, it := range items {
			if ns, ok := paramNamespace[it.Kind]; ok {
				editedSet[ns+":"+it.ID] = struct{}{}
			}
		}
	}
	if len(editedSet) == 0 {
		return nil
	}
	edited := make([]string, 0, len(editedSet))
	for id := range editedSet {
		edited = append(edited, id)
	}
	sort.Strings(edited)
	res, err := rebuild.Rebuild(p, edited)
	if err != nil {
		return err
	}
	for _, roomID := range res.RegeneratedRoomIDs {
		calcbuild.ReclipGridsForRoom(p, roomID)
	}
	return nil
}
