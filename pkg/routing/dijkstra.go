// Package routing implements the shortest-path engine (binary-heap
// Dijkstra with an arbitrary edge-cost function and an optional
// per-edge penalty map) and the path analytics built on top of it:
// turn-by-turn directions, k-alternatives, multi-waypoint routes, and
// distance matrices.
package routing

import (
	"errors"
	"sync"

	"github.com/paulmach/osm"

	"osmgraph/pkg/roadgraph"
)

// ErrNoRoute is returned by nothing: per §7, an unreachable target is a
// successful "no route" result, not an error. It exists as a sentinel
// only for callers that want to map "no path" to a distinguishable case
// via errors.Is without inspecting a bool.
var ErrNoRoute = errors.New("routing: no route")

// CostFn extracts the scalar cost of traversing an edge.
type CostFn func(roadgraph.EdgeAttrs) float64

// ByDistance and ByTime are the two cost functions §4.6/§6 name.
func ByDistance(e roadgraph.EdgeAttrs) float64 { return e.DistanceM }
func ByTime(e roadgraph.EdgeAttrs) float64     { return e.TravelTimeS }

// PenaltyMap multiplies the cost of specific directed edges, used by
// the k-alternatives search to discourage reusing already-found routes.
// A missing entry is an implicit 1.0. Starts empty and only grows.
type PenaltyMap map[[2]osm.NodeID]float64

func (p PenaltyMap) multiplier(u, v osm.NodeID) float64 {
	if p == nil {
		return 1.0
	}
	if m, ok := p[[2]osm.NodeID{u, v}]; ok {
		return m
	}
	return 1.0
}

// Path is a successful routing result.
type Path struct {
	Nodes []osm.NodeID
	Cost  float64
}

// queryState is the reusable scratch memory for one Dijkstra run:
// distance and predecessor maps plus the heap. Pooled across queries
// against the same frozen graph so repeated lookups don't re-allocate.
type queryState struct {
	dist map[osm.NodeID]float64
	pred map[osm.NodeID]osm.NodeID
	seen map[osm.NodeID]bool
	heap minHeap
}

var statePool = sync.Pool{
	New: func() any {
		return &queryState{
			dist: make(map[osm.NodeID]float64),
			pred: make(map[osm.NodeID]osm.NodeID),
			seen: make(map[osm.NodeID]bool),
		}
	},
}

func acquireState() *queryState {
	return statePool.Get().(*queryState)
}

func releaseState(qs *queryState) {
	for k := range qs.dist {
		delete(qs.dist, k)
	}
	for k := range qs.pred {
		delete(qs.pred, k)
	}
	for k := range qs.seen {
		delete(qs.seen, k)
	}
	qs.heap.items = qs.heap.items[:0]
	qs.heap.next = 0
	statePool.Put(qs)
}

// Shortest runs Dijkstra from source to target. For source == target it
// returns ([source], 0, true) without touching the graph. For an
// unreachable target it returns (nil, 0, false) — a normal, successful
// "no route" outcome, never an error. penalties may be nil.
func Shortest(g *roadgraph.Graph, source, target osm.NodeID, cost CostFn, penalties PenaltyMap) (Path, bool) {
	if source == target {
		return Path{Nodes: []osm.NodeID{source}, Cost: 0}, true
	}

	qs := acquireState()
	defer releaseState(qs)

	qs.dist[source] = 0
	qs.heap.push(source, 0)

	for qs.heap.Len() > 0 {
		top := qs.heap.pop()
		if qs.seen[top.node] {
			continue
		}
		qs.seen[top.node] = true

		if top.node == target {
			return Path{Nodes: reconstructPath(qs.pred, source, target), Cost: top.cost}, true
		}

		for _, e := range g.Adj[top.node] {
			if qs.seen[e.To] {
				continue
			}
			w := cost(e.Attrs) * penalties.multiplier(top.node, e.To)
			next := top.cost + w
			if cur, ok := qs.dist[e.To]; !ok || next < cur {
				qs.dist[e.To] = next
				qs.pred[e.To] = top.node
				qs.heap.push(e.To, next)
			}
		}
	}

	return Path{}, false
}

// TargetResult is one entry of a ShortestToAny result set.
type TargetResult struct {
	Path  Path
	Found bool
}

// ShortestToAny runs a single Dijkstra from source and halts as soon as
// every node in targets has been finalised (or the heap empties),
// giving early termination for distance-matrix use instead of running
// Dijkstra to exhaustion for every row.
func ShortestToAny(g *roadgraph.Graph, source osm.NodeID, targets []osm.NodeID, cost CostFn) map[osm.NodeID]TargetResult {
	results := make(map[osm.NodeID]TargetResult, len(targets))
	remaining := make(map[osm.NodeID]bool, len(targets))
	for _, t := range targets {
		if t == source {
			results[t] = TargetResult{Path: Path{Nodes: []osm.NodeID{source}, Cost: 0}, Found: true}
			continue
		}
		remaining[t] = true
	}
	if len(remaining) == 0 {
		return results
	}

	qs := acquireState()
	defer releaseState(qs)

	qs.dist[source] = 0
	qs.heap.push(source, 0)

	for qs.heap.Len() > 0 && len(remaining) > 0 {
		top := qs.heap.pop()
		if qs.seen[top.node] {
			continue
		}
		qs.seen[top.node] = true

		if remaining[top.node] {
			results[top.node] = TargetResult{Path: Path{Nodes: reconstructPath(qs.pred, source, top.node), Cost: top.cost}, Found: true}
			delete(remaining, top.node)
		}

		for _, e := range g.Adj[top.node] {
			if qs.seen[e.To] {
				continue
			}
			next := top.cost + cost(e.Attrs)
			if cur, ok := qs.dist[e.To]; !ok || next < cur {
				qs.dist[e.To] = next
				qs.pred[e.To] = top.node
				qs.heap.push(e.To, next)
			}
		}
	}

	for t := range remaining {
		results[t] = TargetResult{Found: false}
	}
	return results
}

func reconstructPath(pred map[osm.NodeID]osm.NodeID, source, target osm.NodeID) []osm.NodeID {
	path := []osm.NodeID{target}
	cur := target
	for cur != source {
		p, ok := pred[cur]
		if !ok {
			break
		}
		path = append(path, p)
		cur = p
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
