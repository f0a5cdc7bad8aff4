package calcbuild

import (
	"fmt"

	"luxera/internal/project"
)

// CreatePointSet validates and appends an explicitly authored set of
// calc points (spec §4.13 create_point_set).
func CreatePointSet(p *project.Project, ps project.PointSet) (project.PointSet, error) {
	if len(ps.Points) == 0 {
		return project.PointSet{}, fmt.Errorf("calcbuild: point set requires at least one point")
	}
	p.PointSets = append(p.PointSets, ps)
	return ps, nil
}
