package topology

import (
	"math/rand"
	"testing"

	"github.com/paulmach/osm"

	"osmgraph/pkg/geo"
	"osmgraph/pkg/osmxml"
	"osmgraph/pkg/roadgraph"
)

func undirectedGraph(edges [][2]int) *roadgraph.Graph {
	g := &roadgraph.Graph{Adj: make(map[osm.NodeID][]roadgraph.Edge)}
	for _, e := range edges {
		u, v := osm.NodeID(e[0]), osm.NodeID(e[1])
		g.Adj[u] = append(g.Adj[u], roadgraph.Edge{To: v, Attrs: roadgraph.EdgeAttrs{DistanceM: 1}})
		g.Adj[v] = append(g.Adj[v], roadgraph.Edge{To: u, Attrs: roadgraph.EdgeAttrs{DistanceM: 1}})
	}
	return g
}

// linearGraph returns a path 1-2-3-...-n; every edge on it is a bridge.
func linearGraph(n int) *roadgraph.Graph {
	var edges [][2]int
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return undirectedGraph(edges)
}

// cycleGraph returns a ring 1-2-...-n-1; it has zero bridges.
func cycleGraph(n int) *roadgraph.Graph {
	var edges [][2]int
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	edges = append(edges, [2]int{n, 1})
	return undirectedGraph(edges)
}

// grid3x3 returns a 3x3 grid graph, nodes numbered 1..9 row-major; node
// 5 is the geometric and structural center.
func grid3x3() *roadgraph.Graph {
	var edges [][2]int
	idx := func(r, c int) int { return r*3 + c + 1 }
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if c < 2 {
				edges = append(edges, [2]int{idx(r, c), idx(r, c+1)})
			}
			if r < 2 {
				edges = append(edges, [2]int{idx(r, c), idx(r + 1, c)})
			}
		}
	}
	return undirectedGraph(edges)
}

// starGraph returns a hub (node 1) connected to n leaves.
func starGraph(n int) *roadgraph.Graph {
	var edges [][2]int
	for i := 2; i <= n+1; i++ {
		edges = append(edges, [2]int{1, i})
	}
	return undirectedGraph(edges)
}

func TestComponentsDisconnectedNetwork(t *testing.T) {
	// Two disjoint 2-node components: [1,2] and [3,4].
	g := undirectedGraph([][2]int{{1, 2}, {3, 4}})
	comps := Components(g)
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d", len(comps))
	}
	for _, c := range comps {
		if len(c) != 2 {
			t.Errorf("component sizes = %v, want [2,2]", sizesOf(comps))
		}
	}
}

func sizesOf(comps [][]osm.NodeID) []int {
	var out []int
	for _, c := range comps {
		out = append(out, len(c))
	}
	return out
}

func TestBridgesOnLinearGraph(t *testing.T) {
	g := linearGraph(5)
	bridges := Bridges(g)
	if len(bridges) != 4 {
		t.Fatalf("linear graph of 5 nodes should have 4 bridges, got %d: %v", len(bridges), bridges)
	}
}

func TestBridgesOnCycleGraph(t *testing.T) {
	g := cycleGraph(5)
	bridges := Bridges(g)
	if len(bridges) != 0 {
		t.Fatalf("cycle graph should have zero bridges, got %d: %v", len(bridges), bridges)
	}
}

func TestArticulationPointOnLinearGraph(t *testing.T) {
	g := linearGraph(5)
	points := ArticulationPoints(g)
	// interior nodes 2,3,4 are cut points; endpoints 1,5 are not.
	found := map[osm.NodeID]bool{}
	for _, p := range points {
		found[p] = true
	}
	for _, want := range []osm.NodeID{2, 3, 4} {
		if !found[want] {
			t.Errorf("expected node %d to be an articulation point, got set %v", want, points)
		}
	}
	if found[1] || found[5] {
		t.Errorf("endpoints should not be articulation points, got %v", points)
	}
}

func TestCentralityOnGrid3x3CenterRanksFirst(t *testing.T) {
	g := grid3x3()
	results := Centrality(g, 9, rand.New(rand.NewSource(42)))
	if len(results) == 0 {
		t.Fatal("expected centrality results")
	}
	if results[0].Node != 5 {
		t.Errorf("center node 5 should rank first in a 3x3 grid, got node %d with score %f (full: %+v)",
			results[0].Node, results[0].Score, results)
	}
}

func TestCentralityOnStarGraphHubRanksFirst(t *testing.T) {
	g := starGraph(6)
	results := Centrality(g, 7, rand.New(rand.NewSource(7)))
	if len(results) == 0 {
		t.Fatal("expected centrality results")
	}
	if results[0].Node != 1 {
		t.Errorf("hub node 1 should rank first in a star graph, got node %d (full: %+v)", results[0].Node, results)
	}
}

func TestDeadEnds(t *testing.T) {
	g := linearGraph(4)
	ends := DeadEnds(g)
	if len(ends) != 2 {
		t.Fatalf("expected 2 dead ends on a line graph, got %v", ends)
	}
}

func TestDetourFactorOnGrid(t *testing.T) {
	g := grid3x3()
	coords := osmxml.NewCoordCache()
	// Lay the grid out on a real lon/lat grid with 0.003 degree spacing
	// (roughly 330m near the equator) so straight-line distances clear
	// the 100m sampling threshold.
	idx := func(r, c int) osm.NodeID { return osm.NodeID(r*3 + c + 1) }
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			coords.Set(idx(r, c), float64(r)*0.003, float64(c)*0.003)
		}
	}
	// Give every edge its real length so network distances and
	// straight-line distances are measured in the same metres.
	for from, edges := range g.Adj {
		flon, flat, _ := coords.Lookup(from)
		for i, e := range edges {
			tlon, tlat, _ := coords.Lookup(e.To)
			edges[i].Attrs.DistanceM = geo.Haversine(flon, flat, tlon, tlat)
		}
	}
	stats := DetourFactor(g, coords, 20, rand.New(rand.NewSource(3)))
	if stats.Samples == 0 {
		t.Fatal("expected at least one sampled pair")
	}
	if stats.Mean < 1.0 {
		t.Errorf("detour factor should be >= 1 (grid routes are never shorter than straight line), got %f", stats.Mean)
	}
}
