package features

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"osmgraph/pkg/osmxml"
)

func TestExtractAmenityPoint(t *testing.T) {
	nodes := []osmxml.Node{
		{ID: 1, Lat: 51.5, Lon: -0.1, Tags: osm.Tags{{Key: "amenity", Value: "cafe"}}},
		{ID: 2, Lat: 51.6, Lon: -0.2, Tags: osm.Tags{{Key: "natural", Value: "tree"}}},
	}
	set := Extract(nodes, nil, osmxml.NewCoordCache())
	if len(set.Amenities) != 1 {
		t.Fatalf("expected 1 amenity feature, got %d", len(set.Amenities))
	}
	pt, ok := set.Amenities[0].Geometry.(orb.Point)
	if !ok {
		t.Fatalf("expected Point geometry, got %T", set.Amenities[0].Geometry)
	}
	if pt[0] != -0.1 || pt[1] != 51.5 {
		t.Errorf("point = %v, want [-0.1, 51.5]", pt)
	}
	if set.Amenities[0].Properties["amenity"] != "cafe" {
		t.Errorf("properties missing amenity=cafe: %v", set.Amenities[0].Properties)
	}
}

func TestExtractHighwayLine(t *testing.T) {
	coords := osmxml.NewCoordCache()
	coords.Set(1, 0, 0)
	coords.Set(2, 0, 0.001)
	coords.Set(3, 0, 0.002)
	ways := []osmxml.Way{
		{ID: 10, NodeRefs: []osm.NodeID{1, 2, 3}, Tags: osm.Tags{{Key: "highway", Value: "residential"}}},
	}
	set := Extract(nil, ways, coords)
	if len(set.Highways) != 1 {
		t.Fatalf("expected 1 highway feature, got %d", len(set.Highways))
	}
	line, ok := set.Highways[0].Geometry.(orb.LineString)
	if !ok || len(line) != 3 {
		t.Fatalf("expected a 3-point LineString, got %T %v", set.Highways[0].Geometry, set.Highways[0].Geometry)
	}
}

func TestExtractBuildingPolygon(t *testing.T) {
	coords := osmxml.NewCoordCache()
	coords.Set(1, 0, 0)
	coords.Set(2, 0, 0.001)
	coords.Set(3, 0.001, 0.001)
	coords.Set(4, 0.001, 0)
	ways := []osmxml.Way{
		{ID: 20, NodeRefs: []osm.NodeID{1, 2, 3, 4, 1}, Tags: osm.Tags{{Key: "building", Value: "yes"}}},
	}
	set := Extract(nil, ways, coords)
	if len(set.Buildings) != 1 {
		t.Fatalf("expected 1 building feature, got %d", len(set.Buildings))
	}
	poly, ok := set.Buildings[0].Geometry.(orb.Polygon)
	if !ok || len(poly) != 1 || len(poly[0]) != 5 {
		t.Fatalf("expected a closed 5-point ring polygon, got %T %v", set.Buildings[0].Geometry, set.Buildings[0].Geometry)
	}
}

func TestExtractSkipsWaysWithoutRecognisedKeys(t *testing.T) {
	coords := osmxml.NewCoordCache()
	coords.Set(1, 0, 0)
	coords.Set(2, 0, 0.001)
	ways := []osmxml.Way{
		{ID: 30, NodeRefs: []osm.NodeID{1, 2}, Tags: osm.Tags{{Key: "source", Value: "survey"}}},
	}
	set := Extract(nil, ways, coords)
	if len(set.Highways) != 0 || len(set.Buildings) != 0 {
		t.Errorf("way without a recognised key should not produce any feature, got %+v", set)
	}
}
