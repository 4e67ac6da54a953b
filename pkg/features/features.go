// Package features extracts amenity points, highway lines, and building
// polygons from a parsed OSM store as ready-to-export GeoJSON features.
package features

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm"

	"osmgraph/pkg/osmxml"
)

// Set is the grouped output of Extract.
type Set struct {
	Amenities []*geojson.Feature
	Highways  []*geojson.Feature
	Buildings []*geojson.Feature
}

// Extract classifies every tagged node and way into one of the three
// output buckets. A node or way may be skipped entirely if it carries
// none of the recognised keys; it is never placed in more than one
// bucket.
func Extract(nodes []osmxml.Node, ways []osmxml.Way, coords *osmxml.CoordCache) Set {
	var out Set

	for _, n := range nodes {
		if v := n.Tags.Find("amenity"); v != "" {
			f := geojson.NewFeature(orb.Point{n.Lon, n.Lat})
			f.ID = int64(n.ID)
			copyTags(f, n.Tags)
			out.Amenities = append(out.Amenities, f)
		}
	}

	for _, w := range ways {
		switch {
		case w.Tags.Find("highway") != "":
			if f, ok := lineFeature(w, coords); ok {
				out.Highways = append(out.Highways, f)
			}
		case w.Tags.Find("building") != "":
			if f, ok := polygonFeature(w, coords); ok {
				out.Buildings = append(out.Buildings, f)
			}
		}
	}

	return out
}

func lineFeature(w osmxml.Way, coords *osmxml.CoordCache) (*geojson.Feature, bool) {
	line := resolveLine(w.NodeRefs, coords)
	if len(line) < 2 {
		return nil, false
	}
	f := geojson.NewFeature(line)
	f.ID = int64(w.ID)
	copyTags(f, w.Tags)
	return f, true
}

func polygonFeature(w osmxml.Way, coords *osmxml.CoordCache) (*geojson.Feature, bool) {
	ring := resolveRing(w.NodeRefs, coords)
	if len(ring) < 4 {
		return nil, false
	}
	f := geojson.NewFeature(orb.Polygon{ring})
	f.ID = int64(w.ID)
	copyTags(f, w.Tags)
	return f, true
}

func resolveLine(refs []osm.NodeID, coords *osmxml.CoordCache) orb.LineString {
	var line orb.LineString
	for _, ref := range refs {
		lon, lat, ok := coords.Lookup(ref)
		if !ok {
			continue
		}
		line = append(line, orb.Point{lon, lat})
	}
	return line
}

func resolveRing(refs []osm.NodeID, coords *osmxml.CoordCache) orb.Ring {
	var ring orb.Ring
	for _, ref := range refs {
		lon, lat, ok := coords.Lookup(ref)
		if !ok {
			continue
		}
		ring = append(ring, orb.Point{lon, lat})
	}
	return ring
}

func copyTags(f *geojson.Feature, tags osm.Tags) {
	for _, t := range tags {
		f.Properties[t.Key] = t.Value
	}
}
