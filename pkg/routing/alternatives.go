package routing

import (
	"github.com/paulmach/osm"

	"osmgraph/pkg/roadgraph"
)

const (
	alternativesPenaltyFactor  = 2.0
	alternativesOverlapReject  = 0.8
)

// Alternatives finds up to k distinct routes from source to target by
// iteratively penalising the edges of each accepted path (so the next
// Dijkstra run prefers unused road segments), rejecting candidates that
// overlap more than 80% with an already-accepted route. A rejection
// doubles the penalty on the overlapping edges and triggers another
// attempt. The loop runs at most 2k iterations total, after which it
// returns whatever has been found so far.
func Alternatives(g *roadgraph.Graph, source, target osm.NodeID, k int, cost CostFn) []Path {
	if k <= 0 {
		return nil
	}
	penalties := make(PenaltyMap)
	var accepted []Path
	maxIterations := 2 * k

	for iter := 0; iter < maxIterations && len(accepted) < k; iter++ {
		p, ok := Shortest(g, source, target, cost, penalties)
		if !ok {
			break
		}

		if overlapsTooMuch(p, accepted) {
			// Double the penalty only on the edges the rejected candidate
			// shares with an already-accepted route.
			for i := 0; i < len(p.Nodes)-1; i++ {
				key := [2]osm.NodeID{p.Nodes[i], p.Nodes[i+1]}
				for _, a := range accepted {
					if edgeSet(a)[key] {
						penalties[key] = penalties.multiplier(key[0], key[1]) * alternativesPenaltyFactor
						break
					}
				}
			}
			continue
		}

		accepted = append(accepted, p)
		penalizeEdges(penalties, p, alternativesPenaltyFactor)
	}

	return accepted
}

func overlapsTooMuch(candidate Path, accepted []Path) bool {
	if len(candidate.Nodes) < 2 {
		return false
	}
	candEdges := edgeSet(candidate)
	for _, a := range accepted {
		aEdges := edgeSet(a)
		shared := 0
		for e := range candEdges {
			if aEdges[e] {
				shared++
			}
		}
		frac := float64(shared) / float64(len(candEdges))
		if frac > alternativesOverlapReject {
			return true
		}
	}
	return false
}

func edgeSet(p Path) map[[2]osm.NodeID]bool {
	set := make(map[[2]osm.NodeID]bool, len(p.Nodes))
	for i := 0; i < len(p.Nodes)-1; i++ {
		set[[2]osm.NodeID{p.Nodes[i], p.Nodes[i+1]}] = true
	}
	return set
}

func penalizeEdges(penalties PenaltyMap, p Path, factor float64) {
	for i := 0; i < len(p.Nodes)-1; i++ {
		key := [2]osm.NodeID{p.Nodes[i], p.Nodes[i+1]}
		penalties[key] = penalties.multiplier(p.Nodes[i], p.Nodes[i+1]) * factor
	}
}

// Waypoints concatenates Dijkstra runs over each consecutive pair of
// waypoints. A failure on any leg fails the whole query (returns ok=false).
func Waypoints(g *roadgraph.Graph, waypoints []osm.NodeID, cost CostFn) (Path, bool) {
	if len(waypoints) < 2 {
		return Path{}, false
	}
	var nodes []osm.NodeID
	total := 0.0
	for i := 0; i < len(waypoints)-1; i++ {
		leg, ok := Shortest(g, waypoints[i], waypoints[i+1], cost, nil)
		if !ok {
			return Path{}, false
		}
		if i > 0 {
			leg.Nodes = leg.Nodes[1:] // drop duplicated junction node
		}
		nodes = append(nodes, leg.Nodes...)
		total += leg.Cost
	}
	return Path{Nodes: nodes, Cost: total}, true
}
