package roadgraph

import (
	"testing"

	"github.com/paulmach/osm"

	"osmgraph/pkg/osmxml"
)

func fixtureCoords(pts map[osm.NodeID][2]float64) *osmxml.CoordCache {
	cc := osmxml.NewCoordCache()
	for id, lonlat := range pts {
		cc.Set(id, lonlat[1], lonlat[0])
	}
	return cc
}

// TestOnewayRegression is §8 scenario 1: a single way n1->n2 tagged
// highway=primary, oneway=-1 must yield only the reverse edge.
func TestOnewayRegression(t *testing.T) {
	coords := fixtureCoords(map[osm.NodeID][2]float64{1: {0, 0}, 2: {0, 1}})
	way := osmxml.Way{
		ID:       10,
		NodeRefs: []osm.NodeID{1, 2},
		Tags: osm.Tags{
			{Key: "highway", Value: "primary"},
			{Key: "oneway", Value: "-1"},
		},
	}

	g := Build([]osmxml.Way{way}, coords, Drive)

	if hasEdge(g, 1, 2) {
		t.Fatal("oneway=-1 must not produce a forward edge n1->n2")
	}
	if !hasEdge(g, 2, 1) {
		t.Fatal("oneway=-1 must produce exactly the reverse edge n2->n1")
	}

	walkG := Build([]osmxml.Way{way}, coords, Walk)
	if !hasEdge(walkG, 1, 2) || !hasEdge(walkG, 2, 1) {
		t.Fatal("walk mode must ignore oneway and be bidirectional")
	}
}

func TestOnewayYesForwardOnly(t *testing.T) {
	coords := fixtureCoords(map[osm.NodeID][2]float64{1: {0, 0}, 2: {0, 1}})
	way := osmxml.Way{
		ID:       10,
		NodeRefs: []osm.NodeID{1, 2},
		Tags: osm.Tags{
			{Key: "highway", Value: "primary"},
			{Key: "oneway", Value: "yes"},
		},
	}
	g := Build([]osmxml.Way{way}, coords, Drive)
	if !hasEdge(g, 1, 2) {
		t.Error("oneway=yes should allow forward edge")
	}
	if hasEdge(g, 2, 1) {
		t.Error("oneway=yes should not allow reverse edge")
	}
}

func TestDisallowedHighwaySkipped(t *testing.T) {
	coords := fixtureCoords(map[osm.NodeID][2]float64{1: {0, 0}, 2: {0, 1}})
	way := osmxml.Way{ID: 10, NodeRefs: []osm.NodeID{1, 2}, Tags: osm.Tags{{Key: "highway", Value: "motorway"}}}
	g := Build([]osmxml.Way{way}, coords, Walk)
	if hasEdge(g, 1, 2) || hasEdge(g, 2, 1) {
		t.Error("motorway should not be walkable")
	}
}

func TestMissingCoordDropsSegment(t *testing.T) {
	coords := fixtureCoords(map[osm.NodeID][2]float64{1: {0, 0}})
	way := osmxml.Way{ID: 10, NodeRefs: []osm.NodeID{1, 2}, Tags: osm.Tags{{Key: "highway", Value: "residential"}}}
	g := Build([]osmxml.Way{way}, coords, Drive)
	if len(g.Adj[1]) != 0 {
		t.Error("segment with a missing endpoint coordinate should be dropped")
	}
}

func TestMaxspeedParsing(t *testing.T) {
	tests := []struct {
		raw     string
		wantKPH float64
		wantOK  bool
	}{
		{"50", 50, true},
		{"30 mph", 30 * 1.60934, true},
		{"none", 0, false},
		{"signals", 0, false},
		{"walk", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMaxspeed(tt.raw)
		if ok != tt.wantOK {
			t.Errorf("parseMaxspeed(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			continue
		}
		if ok && (got < tt.wantKPH-0.01 || got > tt.wantKPH+0.01) {
			t.Errorf("parseMaxspeed(%q) = %f, want %f", tt.raw, got, tt.wantKPH)
		}
	}
}

func hasEdge(g *Graph, from, to osm.NodeID) bool {
	for _, e := range g.Adj[from] {
		if e.To == to {
			return true
		}
	}
	return false
}
