package routing

import (
	"github.com/paulmach/osm"

	"osmgraph/pkg/roadgraph"
)

// MatrixCell is one (source, target) distance/time entry. Found is
// false for an unreachable pair; the diagonal is always found with
// cost 0.
type MatrixCell struct {
	Cost  float64
	Found bool
}

// Matrix computes an NxM cost matrix, running one ShortestToAny call per
// source node so every row halts as soon as all of that row's targets
// are finalised.
func Matrix(g *roadgraph.Graph, sources, targets []osm.NodeID, cost CostFn) map[osm.NodeID]map[osm.NodeID]MatrixCell {
	out := make(map[osm.NodeID]map[osm.NodeID]MatrixCell, len(sources))
	for _, src := range sources {
		row := make(map[osm.NodeID]MatrixCell, len(targets))
		results := ShortestToAny(g, src, targets, cost)
		for _, dst := range targets {
			r := results[dst]
			row[dst] = MatrixCell{Cost: r.Path.Cost, Found: r.Found}
		}
		out[src] = row
	}
	return out
}
