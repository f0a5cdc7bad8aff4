// Package selection implements query-backed and explicit selection sets
// over a project's derived surfaces (spec §4.12 Selection Sets).
package selection

import (
	"sort"
	"strings"

	"luxera/internal/project"
)

// Set is a named collection of surface ids, either authored directly via
// ObjectIDs or derived from Query every time RefreshAll runs.
type Set struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Query     string   `json:"query,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	ObjectIDs []string `json:"object_ids"`
}

func queryWallsInRoom(p *project.Project, roomID string) []string {
	var out []string
	for _, s := range p.Geometry.Surfaces {
		if string(s.Kind) == "wall" && s.RoomID == roomID {
			out = append(out, s.ID)
		}
	}
	return out
}

func queryCeilingsInStorey(p *project.Project, levelID string) []string {
	roomIDs := map[string]struct{}{}
	for _, r := range p.Param.Rooms {
		if r.LevelID == levelID {
			roomIDs[r.ID] = struct{}{}
		}
	}
	var out []string
	for _, s := range p.Geometry.Surfaces {
		if string(s.Kind) != "ceiling" {
			continue
		}
		if _, ok := roomIDs[s.RoomID]; ok {
			out = append(out, s.ID)
		}
	}
	return out
}

func queryByMaterial(p *project.Project, materialID string) []string {
	var out []string
	for _, s := range p.Geometry.Surfaces {
		if s.MaterialID == materialID {
			out = append(out, s.ID)
		}
	}
	return out
}

func queryByTag(p *project.Project, tag string) []string {
	var out []string
	for _, s := range p.Geometry.Surfaces {
		for _, t := range s.Tags {
			if t == tag {
				out = append(out, s.ID)
				break
			}
		}
	}
	return out
}

func queryByLayer(p *project.Project, layerID string) []string {
	var out []string
	for _, s := range p.Geometry.Surfaces {
		if s.Layer == layerID {
			out = append(out, s.ID)
		}
	}
	return out
}

// Evaluate resolves a query string against p, returning the matching
// surface ids. Unknown prefixes resolve to an empty set, matching the
// original implementation's permissive no-match behavior.
func Evaluate(p *project.Project, query string) []string {
	q := strings.TrimSpace(query)
	switch {
	case q == "":
		return nil
	case strings.HasPrefix(q, "walls_in_room:"):
		return queryWallsInRoom(p, strings.TrimPrefix(q, "walls_in_room:"))
	case strings.HasPrefix(q, "ceilings_in_storey:"):
		return queryCeilingsInStorey(p, strings.TrimPrefix(q, "ceilings_in_storey:"))
	case strings.HasPrefix(q, "material:"):
		return queryByMaterial(p, strings.TrimPrefix(q, "material:"))
	case strings.HasPrefix(q, "tag:"):
		return queryByTag(p, strings.TrimPrefix(q, "tag:"))
	case strings.HasPrefix(q, "layer:"):
		return queryByLayer(p, strings.TrimPrefix(q, "layer:"))
	default:
		return nil
	}
}

func dedupSorted(ids []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// RefreshAll re-evaluates every query-backed set in sets against p,
// replacing its ObjectIDs in place.
func RefreshAll(p *project.Project, sets []Set) {
	for i := range sets {
		if sets[i].Query != "" {
			sets[i].ObjectIDs = dedupSorted(Evaluate(p, sets[i].Query))
		}
	}
}

// Find returns the set with this id, or false if none matches.
func Find(sets []Set, id string) (*Set, bool) {
	for i := range sets {
		if sets[i].ID == id {
			return &sets[i], true
		}
	}
	return nil, false
}

// Upsert inserts or replaces the set matching spec.ID, re-evaluating its
// query if it has one, and returns the updated slice of sets.
func Upsert(p *project.Project, sets []Set, spec Set) []Set {
	if cur, ok := Find(sets, spec.ID); ok {
		cur.Name = spec.Name
		cur.Query = spec.Query
		cur.Tags = append([]string(nil), spec.Tags...)
		cur.ObjectIDs = append([]string(nil), spec.ObjectIDs...)
		if cur.Query != "" {
			cur.ObjectIDs = dedupSorted(Evaluate(p, cur.Query))
		}
		return sets
	}
	if spec.Query != "" {
		spec.ObjectIDs = dedupSorted(Evaluate(p, spec.Query))
	}
	return append(sets, spec)
}

// Remap substitutes every object id through stableIDMap (parent -> split
// children) or, failing that, attachmentRemap's reverse mapping (child ->
// parent), then re-evaluates query-backed sets. This is what keeps a
// selection coherent across an internal/rebuild pass that split or
// renamed surfaces.
func Remap(p *project.Project, sets []Set, stableIDMap map[string][]string, attachmentRemap map[string]string) {
	reverseParent := map[string][]string{}
	for child, parent := range attachmentRemap {
		reverseParent[parent] = append(reverseParent[parent], child)
	}

	for i := range sets {
		remapped := map[string]struct{}{}
		for _, id := range sets[i].ObjectIDs {
			if children, ok := stableIDMap[id]; ok && len(children) > 0 {
				for _, c := range children {
					remapped[c] = struct{}{}
				}
				continue
			}
			if children, ok := reverseParent[id]; ok && len(children) > 0 {
				for _, c := range children {
					remapped[c] = struct{}{}
				}
				continue
			}
			remapped[id] = struct{}{}
		}
		ids := make([]string, 0, len(remapped))
		for id := range remapped {
			ids = append(ids, id)
		}
		sets[i].ObjectIDs = dedupSorted(ids)
	}
	RefreshAll(p, sets)
}
