// Package topology implements network-wide analytics over a routing
// graph viewed as undirected: connected components, bridges,
// articulation points, approximate betweenness centrality, and detour
// factor.
package topology

import (
	"math/rand"
	"sort"

	"github.com/paulmach/osm"

	"osmgraph/pkg/geo"
	"osmgraph/pkg/osmxml"
	"osmgraph/pkg/roadgraph"
)

// undirected is an adjacency map built once from a roadgraph.Graph and
// reused by every analysis in this package, since all of them operate
// on the undirected view regardless of the underlying directed edges.
// The value is the edge's distance in metres; parallel edges between
// the same pair of nodes collapse to the cheapest one, same as a
// weighted Dijkstra relaxation would pick anyway.
type undirected map[osm.NodeID]map[osm.NodeID]float64

func buildUndirected(g *roadgraph.Graph) undirected {
	u := make(undirected, len(g.Adj))
	ensure := func(n osm.NodeID) {
		if u[n] == nil {
			u[n] = make(map[osm.NodeID]float64)
		}
	}
	relax := func(a, b osm.NodeID, dist float64) {
		if cur, ok := u[a][b]; !ok || dist < cur {
			u[a][b] = dist
		}
	}
	for from, edges := range g.Adj {
		ensure(from)
		for _, e := range edges {
			ensure(e.To)
			relax(from, e.To, e.Attrs.DistanceM)
			relax(e.To, from, e.Attrs.DistanceM)
		}
	}
	return u
}

func (u undirected) nodes() []osm.NodeID {
	out := make([]osm.NodeID, 0, len(u))
	for n := range u {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Components groups the undirected view into connected components with
// a union-find pass and returns them sorted by descending size.
func Components(g *roadgraph.Graph) [][]osm.NodeID {
	u := buildUndirected(g)
	return components(u)
}

// unionFind is a disjoint-set structure with path halving and union by
// rank, keyed on osm.NodeID rather than a dense uint32 range since the
// undirected view is built from a sparse, externally-assigned id space.
type unionFind struct {
	parent map[osm.NodeID]osm.NodeID
	rank   map[osm.NodeID]byte
	size   map[osm.NodeID]int
}

func newUnionFind(nodes []osm.NodeID) *unionFind {
	uf := &unionFind{
		parent: make(map[osm.NodeID]osm.NodeID, len(nodes)),
		rank:   make(map[osm.NodeID]byte, len(nodes)),
		size:   make(map[osm.NodeID]int, len(nodes)),
	}
	for _, n := range nodes {
		uf.parent[n] = n
		uf.size[n] = 1
	}
	return uf
}

func (uf *unionFind) find(x osm.NodeID) osm.NodeID {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y osm.NodeID) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// components groups u's nodes by connectivity using a union-find pass
// over every edge, then buckets nodes by their set representative. The
// result is sorted by descending component size.
func components(u undirected) [][]osm.NodeID {
	nodes := u.nodes()
	uf := newUnionFind(nodes)
	for _, a := range nodes {
		for b := range u[a] {
			uf.union(a, b)
		}
	}

	byRoot := make(map[osm.NodeID][]osm.NodeID, len(nodes))
	for _, n := range nodes {
		root := uf.find(n)
		byRoot[root] = append(byRoot[root], n)
	}

	comps := make([][]osm.NodeID, 0, len(byRoot))
	for _, comp := range byRoot {
		comps = append(comps, comp)
	}
	sort.Slice(comps, func(i, j int) bool {
		if len(comps[i]) != len(comps[j]) {
			return len(comps[i]) > len(comps[j])
		}
		return comps[i][0] < comps[j][0]
	})
	return comps
}

func countComponents(u undirected) int { return len(components(u)) }

// Bridges returns every undirected edge whose removal increases the
// component count, found by brute-force removal and recount:
// O(E * (V+E)), acceptable at city/suburb scale.
func Bridges(g *roadgraph.Graph) [][2]osm.NodeID {
	u := buildUndirected(g)
	baseline := countComponents(u)

	seen := make(map[[2]osm.NodeID]bool)
	var bridges [][2]osm.NodeID
	for _, a := range u.nodes() {
		for b := range u[a] {
			key := edgeKey(a, b)
			if seen[key] {
				continue
			}
			seen[key] = true

			weight := removeEdge(u, a, b)
			if countComponents(u) > baseline {
				bridges = append(bridges, key)
			}
			addEdge(u, a, b, weight)
		}
	}
	return bridges
}

// ArticulationPoints returns every node whose removal increases the
// component count among its former neighbours, by the analogous
// brute-force node-removal diff: O(V * (V+E)).
func ArticulationPoints(g *roadgraph.Graph) []osm.NodeID {
	u := buildUndirected(g)
	baseline := countComponents(u)

	var points []osm.NodeID
	for _, n := range u.nodes() {
		if len(u[n]) < 2 {
			continue // a degree <2 node's removal can't split anything
		}
		neighbors := removeNode(u, n)
		// Removing n always drops n's own component count by one; a real
		// cut point splits that component into more than one piece, so the
		// total rises back above (not just to) the original baseline.
		if countComponents(u) > baseline {
			points = append(points, n)
		}
		restoreNode(u, n, neighbors)
	}
	return points
}

func edgeKey(a, b osm.NodeID) [2]osm.NodeID {
	if a < b {
		return [2]osm.NodeID{a, b}
	}
	return [2]osm.NodeID{b, a}
}

func removeEdge(u undirected, a, b osm.NodeID) float64 {
	weight := u[a][b]
	delete(u[a], b)
	delete(u[b], a)
	return weight
}

func addEdge(u undirected, a, b osm.NodeID, weight float64) {
	u[a][b] = weight
	u[b][a] = weight
}

func removeNode(u undirected, n osm.NodeID) map[osm.NodeID]float64 {
	neighbors := u[n]
	for nb := range neighbors {
		delete(u[nb], n)
	}
	delete(u, n)
	return neighbors
}

func restoreNode(u undirected, n osm.NodeID, neighbors map[osm.NodeID]float64) {
	u[n] = neighbors
	for nb := range neighbors {
		u[nb][n] = neighbors[nb]
	}
}

// CentralityResult is one node's approximate betweenness score.
type CentralityResult struct {
	Node           osm.NodeID
	Score          float64
	Degree         int
	IsIntersection bool // degree >= 3
}

// Centrality samples up to sampleSize source nodes (uniformly, via rng)
// and runs a modified Dijkstra from each that records every equal-cost
// shortest path, crediting each intermediate node on each such path with
// 1/|paths|. The result is normalised by 2/((V-1)(V-2)) and scaled by
// V/S, then returned ranked descending by score.
//
// To avoid the path-set blow-up the source material warns about on
// grid-like graphs, the number of distinct shortest paths tracked per
// (source, target) pair is capped at maxPathsPerTarget; equal-cost paths
// beyond the cap are dropped, and the 1/|paths| credit share is computed
// over the retained paths only.
func Centrality(g *roadgraph.Graph, sampleSize int, rng *rand.Rand) []CentralityResult {
	u := buildUndirected(g)
	nodes := u.nodes()
	n := len(nodes)
	if n == 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	sample := sampleNodes(nodes, sampleSize, rng)
	credit := make(map[osm.NodeID]float64, n)

	for _, src := range sample {
		dist, paths := dijkstraAllPaths(u, src)
		for _, target := range nodes {
			if target == src {
				continue
			}
			allPaths, ok := paths[target]
			if !ok || len(allPaths) == 0 {
				continue
			}
			_ = dist
			share := 1.0 / float64(len(allPaths))
			for _, p := range allPaths {
				for _, mid := range p[1 : len(p)-1] {
					credit[mid] += share
				}
			}
		}
	}

	if n > 2 {
		scale := 2.0 / float64((n-1)*(n-2)) * (float64(n) / float64(len(sample)))
		for k := range credit {
			credit[k] *= scale
		}
	}

	results := make([]CentralityResult, 0, n)
	for _, nd := range nodes {
		deg := len(u[nd])
		results = append(results, CentralityResult{
			Node:           nd,
			Score:          credit[nd],
			Degree:         deg,
			IsIntersection: deg >= 3,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Node < results[j].Node
	})
	return results
}

const maxPathsPerTarget = 64

// dijkstraAllPaths runs Dijkstra from src over the undirected view,
// tracking every equal-cost shortest path to each node (capped at
// maxPathsPerTarget per node to bound memory on grid-like graphs).
func dijkstraAllPaths(u undirected, src osm.NodeID) (map[osm.NodeID]float64, map[osm.NodeID][][]osm.NodeID) {
	dist := map[osm.NodeID]float64{src: 0}
	paths := map[osm.NodeID][][]osm.NodeID{src: {{src}}}

	type item struct {
		node osm.NodeID
		cost float64
	}
	// A plain slice-backed priority queue kept simple since this runs at
	// most `sample` times per query, not in the routing hot path.
	pq := []item{{src, 0}}
	visited := make(map[osm.NodeID]bool)

	for len(pq) > 0 {
		sort.Slice(pq, func(i, j int) bool { return pq[i].cost < pq[j].cost })
		cur := pq[0]
		pq = pq[1:]
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true

		for nb, w := range u[cur.node] {
			if visited[nb] {
				continue
			}
			next := cur.cost + w
			if d, ok := dist[nb]; !ok || next < d {
				dist[nb] = next
				extended := extendPaths(paths[cur.node], nb)
				paths[nb] = capPaths(extended)
				pq = append(pq, item{nb, next})
			} else if ok && next == d {
				extended := extendPaths(paths[cur.node], nb)
				paths[nb] = capPaths(append(paths[nb], extended...))
			}
		}
	}
	return dist, paths
}

func extendPaths(from [][]osm.NodeID, to osm.NodeID) [][]osm.NodeID {
	out := make([][]osm.NodeID, len(from))
	for i, p := range from {
		np := make([]osm.NodeID, len(p)+1)
		copy(np, p)
		np[len(p)] = to
		out[i] = np
	}
	return out
}

func capPaths(paths [][]osm.NodeID) [][]osm.NodeID {
	if len(paths) > maxPathsPerTarget {
		return paths[:maxPathsPerTarget]
	}
	return paths
}

func sampleNodes(nodes []osm.NodeID, sampleSize int, rng *rand.Rand) []osm.NodeID {
	if sampleSize >= len(nodes) {
		out := make([]osm.NodeID, len(nodes))
		copy(out, nodes)
		return out
	}
	shuffled := make([]osm.NodeID, len(nodes))
	copy(shuffled, nodes)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:sampleSize]
}

// DetourStats summarises the network-distance / haversine ratio over a
// random sample of node pairs drawn from the largest component.
type DetourStats struct {
	Samples int
	Mean, Median, Min, Max, P10, P90 float64
}

// DetourFactor restricts sampling to the largest connected component,
// draws random node pairs whose straight-line distance exceeds 100m,
// and reports statistics over network_distance / haversine for up to
// sampleSize such pairs. At most 10*sampleSize draws are attempted, so
// DetourStats.Samples can be smaller than sampleSize.
func DetourFactor(g *roadgraph.Graph, coords *osmxml.CoordCache, sampleSize int, rng *rand.Rand) DetourStats {
	u := buildUndirected(g)
	comps := components(u)
	if len(comps) == 0 {
		return DetourStats{}
	}
	largest := comps[0]
	if len(largest) < 2 {
		return DetourStats{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	var factors []float64
	maxAttempts := sampleSize * 10
	for attempts := 0; len(factors) < sampleSize && attempts < maxAttempts; attempts++ {
		a := largest[rng.Intn(len(largest))]
		b := largest[rng.Intn(len(largest))]
		if a == b {
			continue
		}
		alon, alat, aok := coords.Lookup(a)
		blon, blat, bok := coords.Lookup(b)
		if !aok || !bok {
			continue
		}
		straight := geo.Haversine(alon, alat, blon, blat)
		if straight < 100 {
			continue
		}
		network, ok := weightedDistance(u, a, b)
		if !ok {
			continue
		}
		factors = append(factors, network/straight)
	}

	return summarize(factors)
}

// weightedDistance runs a plain Dijkstra over the undirected, distance-
// weighted view and returns the network distance in metres between src
// and dst, matching network_distance / haversine (not hop count).
func weightedDistance(u undirected, src, dst osm.NodeID) (float64, bool) {
	if src == dst {
		return 0, true
	}
	dist := map[osm.NodeID]float64{src: 0}
	visited := make(map[osm.NodeID]bool)

	type item struct {
		node osm.NodeID
		cost float64
	}
	pq := []item{{src, 0}}
	for len(pq) > 0 {
		sort.Slice(pq, func(i, j int) bool { return pq[i].cost < pq[j].cost })
		cur := pq[0]
		pq = pq[1:]
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == dst {
			return cur.cost, true
		}
		for nb, w := range u[cur.node] {
			if visited[nb] {
				continue
			}
			next := cur.cost + w
			if d, ok := dist[nb]; !ok || next < d {
				dist[nb] = next
				pq = append(pq, item{nb, next})
			}
		}
	}
	return 0, false
}

func summarize(vals []float64) DetourStats {
	if len(vals) == 0 {
		return DetourStats{}
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	pct := func(p float64) float64 {
		idx := int(float64(len(sorted)) * p)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}

	return DetourStats{
		Samples: len(sorted),
		Mean:    sum / float64(len(sorted)),
		Median:  sorted[len(sorted)/2],
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		P10:     pct(0.1),
		P90:     pct(0.9),
	}
}

// DeadEnds returns nodes with exactly one undirected neighbor.
func DeadEnds(g *roadgraph.Graph) []osm.NodeID {
	u := buildUndirected(g)
	var out []osm.NodeID
	for _, n := range u.nodes() {
		if len(u[n]) == 1 {
			out = append(out, n)
		}
	}
	return out
}
