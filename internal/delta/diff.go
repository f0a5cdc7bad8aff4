package delta

import (
	"bytes"
	"encoding/json"
	"sort"

	"luxera/internal/project"
)

type pathSpec struct {
	kind string
	path []string
}

// collectionSpecs names every collection diff_project walks, in the same
// order as the original implementation's path table. Kinds with no
// matching field on the current Project (workplanes, variants, layers,
// selection sets, etc.) are skipped by pathAt returning nil/nil, so the
// table can be extended in one place as those components land.
var collectionSpecs = []pathSpec{
	{KindRoom, []string{"geometry", "rooms"}},
	{KindSurface, []string{"geometry", "surfaces"}},
	{KindOpening, []string{"geometry", "openings"}},
	{KindMaterial, []string{"materials"}},
	{KindGrid, []string{"grids"}},
	{KindLuminaire, []string{"luminaires"}},
	{KindParamFootprint, []string{"param", "footprints"}},
	{KindParamRoom, []string{"param", "rooms"}},
	{KindParamWall, []string{"param", "walls"}},
	{KindParamSharedWall, []string{"param", "shared_walls"}},
	{KindParamOpening, []string{"param", "openings"}},
	{KindParamSlab, []string{"param", "slabs"}},
	{KindParamZone, []string{"param", "zones"}},
}

func toMap(p *project.Project) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func pathAt(doc map[string]any, path []string) []any {
	var cur any = doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	list, ok := cur.([]any)
	if !ok {
		return nil
	}
	return list
}

func indexByID(items []any) map[string]any {
	out := make(map[string]any, len(items))
	for _, raw := range items {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, ok := m["id"].(string)
		if !ok {
			continue
		}
		out[id] = m
	}
	return out
}

func jsonEqual(a, b any) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return bytes.Equal(ab, bb)
}

func rawOf(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func diffCollection(before, after map[string]any, kind string, path []string) []Item {
	bIdx := indexByID(pathAt(before, path))
	aIdx := indexByID(pathAt(after, path))

	var out []Item
	var createdIDs, deletedIDs, updatedIDs []string
	for id := range aIdx {
		if _, ok := bIdx[id]; !ok {
			createdIDs = append(createdIDs, id)
		}
	}
	for id := range bIdx {
		if _, ok := aIdx[id]; !ok {
			deletedIDs = append(deletedIDs, id)
		}
	}
	for id := range aIdx {
		if bv, ok := bIdx[id]; ok && !jsonEqual(bv, aIdx[id]) {
			updatedIDs = append(updatedIDs, id)
		}
	}
	sort.Strings(createdIDs)
	sort.Strings(deletedIDs)
	sort.Strings(updatedIDs)

	for _, id := range createdIDs {
		out = append(out, Item{Kind: kind, ID: id, After: rawOf(aIdx[id])})
	}
	for _, id := range deletedIDs {
		out = append(out, Item{Kind: kind, ID: id, Before: rawOf(bIdx[id])})
	}
	for _, id := range updatedIDs {
		out = append(out, Item{Kind: kind, ID: id, Before: rawOf(bIdx[id]), After: rawOf(aIdx[id])})
	}
	return out
}

// Diff computes the delta between two project snapshots by walking every
// registered collection and indexing by id, matching spec §4.9's
// diff_project contract: created/updated/deleted are computed per
// collection and merged, plus a param_changes summary of just the
// param_* kinds.
func Diff(before, after *project.Project) (Delta, error) {
	bMap, err := toMap(before)
	if err != nil {
		return Delta{}, err
	}
	aMap, err := toMap(after)
	if err != nil {
		return Delta{}, err
	}

	var created, updated, deleted []Item
	for _, spec := range collectionSpecs {
		items := diffCollection(bMap, aMap, spec.kind, spec.path)
		for _, it := range items {
			switch {
			case it.Before == nil && it.After != nil:
				created = append(created, it)
			case it.Before != nil && it.After == nil:
				deleted = append(deleted, it)
			default:
				updated = append(updated, it)
			}
		}
	}

	paramChanges := map[string][]string{"created": {}, "updated": {}, "deleted": {}}
	collectParam := func(bucket string, items []Item) {
		for _, it := range items {
			if len(it.Kind) > 6 && it.Kind[:6] == "param_" {
				paramChanges[bucket] = append(paramChanges[bucket], it.ID)
			}
		}
	}
	collectParam("created", created)
	collectParam("updated", updated)
	collectParam("deleted", deleted)

	return Delta{Created: created, Updated: updated, Deleted: deleted, ParamChanges: paramChanges}, nil
}
