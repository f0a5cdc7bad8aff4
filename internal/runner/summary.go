package runner

import (
	"gonum.org/v1/gonum/stat"

	"luxera/internal/compliance"
)

// ObjectStats is the per-object statistic block spec §4.14 step 4
// summary.json describes: min, mean, max, uniformity (min/mean, the
// conventional lighting-design uniformity ratio).
type ObjectStats struct {
	Kind        string  `json:"kind"`
	ID          string  `json:"id"`
	Count       int     `json:"count"`
	Min         float64 `json:"min"`
	Mean        float64 `json:"mean"`
	Max         float64 `json:"max"`
	Uniformity  float64 `json:"uniformity"`
}

// GlobalSummary aggregates every object's statistics into the
// worst-case figures a compliance check or report header needs.
type GlobalSummary struct {
	Objects       []ObjectStats `json:"objects"`
	WorstMin      float64       `json:"worst_min"`
	WorstUniformity float64     `json:"worst_uniformity"`
	Compliance    *compliance.Evaluation `json:"compliance,omitempty"`
}

func statsForObject(o ObjectSamples) ObjectStats {
	s := ObjectStats{Kind: o.Kind, ID: o.ID, Count: len(o.Lux)}
	if len(o.Lux) == 0 {
		return s
	}
	s.Min = floatsMin(o.Lux)
	s.Max = floatsMax(o.Lux)
	s.Mean = stat.Mean(o.Lux, nil)
	if s.Mean > 0 {
		s.Uniformity = s.Min / s.Mean
	}
	return s
}

func floatsMin(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func floatsMax(v []float64) float64 {
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// summarize computes the full GlobalSummary for a backend's output, in
// object-authoring order so summary.json is stable across runs.
func summarize(objects []ObjectSamples) GlobalSummary {
	g := GlobalSummary{Objects: make([]ObjectStats, 0, len(objects))}
	worstMinSet := false
	worstUniformSet := false
	for _, o := range objects {
		st := statsForObject(o)
		g.Objects = append(g.Objects, st)
		if st.Count == 0 {
			continue
		}
		if !worstMinSet || st.Min < g.WorstMin {
			g.WorstMin = st.Min
			worstMinSet = true
		}
		if !worstUniformSet || st.Uniformity < g.WorstUniformity {
			g.WorstUniformity = st.Uniformity
			worstUniformSet = true
		}
	}
	return g
}
