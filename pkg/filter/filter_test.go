package filter

import (
	"testing"

	"github.com/paulmach/osm"
	"osmgraph/pkg/osmxml"
)

func mkWay(id int64, highway string, refs ...osm.NodeID) osmxml.Way {
	return osmxml.Way{
		ID:       osm.WayID(id),
		NodeRefs: refs,
		Tags:     osm.Tags{{Key: "highway", Value: highway}},
	}
}

func mkNode(id int64, lon, lat float64) osmxml.Node {
	return osmxml.Node{ID: osm.NodeID(id), Lon: lon, Lat: lat, Tags: osm.Tags{{Key: "amenity", Value: "cafe"}}}
}

func mkRelation(id int64, typ string) osmxml.Relation {
	return osmxml.Relation{ID: osm.RelationID(id), Tags: osm.Tags{{Key: "type", Value: typ}}}
}

func TestTagFilterAcceptRejectPrecedence(t *testing.T) {
	tf := TagFilter{Rules: []Rule{
		{Action: Reject, Type: Ways, Key: "highway", Values: []string{"motorway"}},
		{Action: Accept, Type: Ways, Key: "highway"},
	}}
	p := Pipeline{Tag: &tf}

	ways := []osmxml.Way{
		mkWay(1, "residential", 1, 2),
		mkWay(2, "motorway", 2, 3),
		mkWay(3, "footway", 3, 4),
	}
	store := &osmxml.Store{Ways: ways}
	res := p.Apply(store)

	if len(res.Ways) != 2 {
		t.Fatalf("expected 2 ways to survive, got %d", len(res.Ways))
	}
	for _, w := range res.Ways {
		if w.ID == 2 {
			t.Errorf("motorway way should have been rejected")
		}
	}
}

func TestTagFilterNoRulesIsDontCare(t *testing.T) {
	tf := TagFilter{}
	p := Pipeline{Tag: &tf}
	ways := []osmxml.Way{mkWay(1, "residential", 1, 2)}
	res := p.Apply(&osmxml.Store{Ways: ways})
	if len(res.Ways) != 1 {
		t.Fatalf("no rules should accept everything, got %d ways", len(res.Ways))
	}
}

func TestTagFilterAcceptOnlyRejectsNonMatching(t *testing.T) {
	tf := TagFilter{Rules: []Rule{
		{Action: Accept, Type: Ways, Key: "highway", Values: []string{"residential"}},
	}}
	p := Pipeline{Tag: &tf}
	ways := []osmxml.Way{
		mkWay(1, "residential", 1, 2),
		mkWay(2, "footway", 2, 3),
	}
	res := p.Apply(&osmxml.Store{Ways: ways})
	if len(res.Ways) != 1 || res.Ways[0].ID != 1 {
		t.Fatalf("expected only the residential way to survive, got %+v", res.Ways)
	}
}

func TestBoundingBoxFilter(t *testing.T) {
	bbox := BBox{Top: 10, Left: 0, Bottom: 0, Right: 10}
	p := Pipeline{BBox: &bbox}
	nodes := []osmxml.Node{
		mkNode(1, 5, 5),
		mkNode(2, 50, 50),
	}
	res := p.Apply(&osmxml.Store{Nodes: nodes})
	if len(res.Nodes) != 1 || res.Nodes[0].ID != 1 {
		t.Fatalf("expected only node 1 inside bbox, got %+v", res.Nodes)
	}
}

func TestUsedNodeTrackerAppliesAfterWayFiltering(t *testing.T) {
	tf := TagFilter{Rules: []Rule{
		{Action: Accept, Type: Ways, Key: "highway", Values: []string{"residential"}},
	}}
	p := Pipeline{Tag: &tf, UseNode: true}
	ways := []osmxml.Way{
		mkWay(1, "residential", 1, 2),
		mkWay(2, "footway", 3, 4), // rejected, so nodes 3/4 should not be kept
	}
	nodes := []osmxml.Node{
		mkNode(1, 0, 0),
		mkNode(2, 0, 0),
		mkNode(3, 0, 0),
		mkNode(4, 0, 0),
	}
	res := p.Apply(&osmxml.Store{Nodes: nodes, Ways: ways})
	if len(res.Ways) != 1 {
		t.Fatalf("expected 1 way, got %d", len(res.Ways))
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected only nodes referenced by surviving ways, got %d", len(res.Nodes))
	}
	for _, n := range res.Nodes {
		if n.ID != 1 && n.ID != 2 {
			t.Errorf("unexpected node %d survived used-node filtering", n.ID)
		}
	}
}

func TestGlobalRejection(t *testing.T) {
	p := Pipeline{Global: Global{RejectWays: true}}
	res := p.Apply(&osmxml.Store{
		Nodes: []osmxml.Node{mkNode(1, 0, 0)},
		Ways:  []osmxml.Way{mkWay(1, "residential", 1)},
	})
	if res.Ways != nil {
		t.Errorf("expected all ways rejected, got %+v", res.Ways)
	}
	if len(res.Nodes) != 1 {
		t.Errorf("node rejection should be independent of way rejection")
	}
}

func TestGlobalRejectionRelations(t *testing.T) {
	p := Pipeline{Global: Global{RejectRelations: true}}
	res := p.Apply(&osmxml.Store{
		Relations: []osmxml.Relation{mkRelation(1, "multipolygon")},
	})
	if res.Relations != nil {
		t.Errorf("expected all relations rejected, got %+v", res.Relations)
	}
}

func TestTagFilterRelations(t *testing.T) {
	tf := TagFilter{Rules: []Rule{
		{Action: Reject, Type: Relations, Key: "type", Values: []string{"route"}},
		{Action: Accept, Type: Relations, Key: "type"},
	}}
	p := Pipeline{Tag: &tf}
	relations := []osmxml.Relation{
		mkRelation(1, "multipolygon"),
		mkRelation(2, "route"),
	}
	res := p.Apply(&osmxml.Store{Relations: relations})
	if len(res.Relations) != 1 || res.Relations[0].ID != 1 {
		t.Fatalf("expected only the multipolygon relation to survive, got %+v", res.Relations)
	}
}

func TestHasActiveFilters(t *testing.T) {
	if (Pipeline{}).HasActiveFilters() {
		t.Error("zero-value pipeline should report no active filters")
	}
	bbox := BBox{}
	if !(Pipeline{BBox: &bbox}).HasActiveFilters() {
		t.Error("a bbox filter should count as active")
	}
}
