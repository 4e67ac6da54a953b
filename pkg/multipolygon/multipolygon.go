// Package multipolygon assembles OSM multipolygon relations into
// closed, correctly-wound GeoJSON polygon geometries.
package multipolygon

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm"

	"osmgraph/pkg/geo"
	"osmgraph/pkg/osmxml"
)

const endpointTolerance = 1e-9

// Result is the outcome of assembling one relation.
type Result struct {
	Geometry orb.Geometry // orb.Polygon or orb.MultiPolygon; nil if nothing could be assembled
	// DiscardedWays counts ways that could never be joined into a closed
	// ring and were dropped.
	DiscardedWays int
	// DiscardedHoles counts inner rings not contained by any outer ring.
	DiscardedHoles int
}

// Assemble builds a Polygon or MultiPolygon geometry from relation's
// outer/inner way members, given access to the way store (by id) and
// the coordinate cache. Returns a nil Result.Geometry if the relation
// has no way members or no ring could be closed.
func Assemble(rel osmxml.Relation, ways map[osm.WayID]osmxml.Way, coords *osmxml.CoordCache) Result {
	var outerRefs, innerRefs []osm.WayID
	for _, m := range rel.Members {
		if m.Type != osmxml.MemberWay {
			continue
		}
		id := osm.WayID(m.Ref)
		if _, ok := ways[id]; !ok {
			continue
		}
		switch m.Role {
		case "inner":
			innerRefs = append(innerRefs, id)
		default: // "outer" or empty role defaults to outer
			outerRefs = append(outerRefs, id)
		}
	}

	var res Result
	outers, discardedOuter := buildRings(outerRefs, ways, coords)
	inners, discardedInner := buildRings(innerRefs, ways, coords)
	res.DiscardedWays = discardedOuter + discardedInner

	if len(outers) == 0 {
		return res
	}

	for i := range outers {
		outers[i] = geo.EnsureWinding(outers[i], geo.CCW)
	}
	for i := range inners {
		inners[i] = geo.EnsureWinding(inners[i], geo.CW)
	}

	holesByOuter := make([][][]geo.Point, len(outers))
	for _, inner := range inners {
		best := -1
		bestArea := 0.0
		for i, outer := range outers {
			if !geo.RingContainsRing(outer, inner) {
				continue
			}
			area := absF(geo.SignedArea(outer))
			if best == -1 || area < bestArea {
				best = i
				bestArea = area
			}
		}
		if best == -1 {
			res.DiscardedHoles++
			continue
		}
		holesByOuter[best] = append(holesByOuter[best], inner)
	}

	polys := make([]orb.Polygon, 0, len(outers))
	for i, outer := range outers {
		poly := orb.Polygon{toOrbRing(outer)}
		for _, hole := range holesByOuter[i] {
			poly = append(poly, toOrbRing(hole))
		}
		polys = append(polys, poly)
	}

	if len(polys) == 1 {
		res.Geometry = polys[0]
	} else {
		mp := make(orb.MultiPolygon, len(polys))
		copy(mp, polys)
		res.Geometry = mp
	}
	return res
}

// AssembleFeature is Assemble wrapped as a ready-to-export geojson.Feature,
// for callers that want the relation's tags carried along as properties.
func AssembleFeature(rel osmxml.Relation, ways map[osm.WayID]osmxml.Way, coords *osmxml.CoordCache) (*geojson.Feature, Result) {
	res := Assemble(rel, ways, coords)
	if res.Geometry == nil {
		return nil, res
	}
	f := geojson.NewFeature(res.Geometry)
	f.ID = int64(rel.ID)
	for _, t := range rel.Tags {
		f.Properties[t.Key] = t.Value
	}
	return f, res
}

func toOrbRing(pts []geo.Point) orb.Ring {
	r := make(orb.Ring, len(pts))
	for i, p := range pts {
		r[i] = orb.Point{p.Lon, p.Lat}
	}
	return r
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// segment is one way's node-ref list resolved to coordinates, tracked as
// still-unconsumed or spent during ring assembly.
type segment struct {
	pts      []geo.Point
	consumed bool
}

// buildRings repeatedly splices unconsumed way segments end-to-end into
// closed rings. O(R^2) in the number of rings per relation: acceptable
// at the relation sizes this targets (rarely more than a few dozen ways).
func buildRings(refs []osm.WayID, ways map[osm.WayID]osmxml.Way, coords *osmxml.CoordCache) (rings [][]geo.Point, discarded int) {
	segs := make([]*segment, 0, len(refs))
	for _, id := range refs {
		w, ok := ways[id]
		if !ok {
			continue
		}
		pts := make([]geo.Point, 0, len(w.NodeRefs))
		for _, ref := range w.NodeRefs {
			lon, lat, ok := coords.Lookup(ref)
			if !ok {
				continue
			}
			pts = append(pts, geo.Point{Lon: lon, Lat: lat})
		}
		if len(pts) < 2 {
			discarded++
			continue
		}
		segs = append(segs, &segment{pts: pts})
	}

	for _, start := range segs {
		if start.consumed {
			continue
		}
		start.consumed = true
		ring := append([]geo.Point(nil), start.pts...)
		joinedWays := 1

		for !closed(ring) {
			joined := false
			for _, cand := range segs {
				if cand.consumed {
					continue
				}
				if next, ok := tryJoin(ring, cand.pts); ok {
					ring = next
					cand.consumed = true
					joinedWays++
					joined = true
					break
				}
			}
			if !joined {
				break
			}
		}

		if closed(ring) {
			rings = append(rings, ring)
		} else {
			discarded += joinedWays
		}
	}
	return rings, discarded
}

func closed(ring []geo.Point) bool {
	if len(ring) < 4 {
		return false
	}
	return samePoint(ring[0], ring[len(ring)-1])
}

func samePoint(a, b geo.Point) bool {
	return absF(a.Lon-b.Lon) < endpointTolerance && absF(a.Lat-b.Lat) < endpointTolerance
}

// tryJoin attempts to splice cand onto ring using one of the four
// endpoint-matching cases: ring-end to cand-start, ring-end to cand-end
// (cand reversed), cand-end to ring-start, cand-start to ring-start
// (cand reversed).
func tryJoin(ring []geo.Point, cand []geo.Point) ([]geo.Point, bool) {
	ringStart, ringEnd := ring[0], ring[len(ring)-1]
	candStart, candEnd := cand[0], cand[len(cand)-1]

	switch {
	case samePoint(ringEnd, candStart):
		return append(append([]geo.Point(nil), ring...), cand[1:]...), true
	case samePoint(ringEnd, candEnd):
		rev := reversed(cand)
		return append(append([]geo.Point(nil), ring...), rev[1:]...), true
	case samePoint(candEnd, ringStart):
		return append(append([]geo.Point(nil), cand...), ring[1:]...), true
	case samePoint(candStart, ringStart):
		rev := reversed(cand)
		return append(append([]geo.Point(nil), rev...), ring[1:]...), true
	default:
		return nil, false
	}
}

func reversed(pts []geo.Point) []geo.Point {
	out := make([]geo.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
