package routing

import (
	"fmt"

	"github.com/paulmach/osm"

	"osmgraph/pkg/geo"
	"osmgraph/pkg/osmxml"
	"osmgraph/pkg/roadgraph"
)

// Maneuver describes the turn phrasing derived from a bearing delta.
type Maneuver int

const (
	Continue Maneuver = iota
	BearLeft
	BearRight
	TurnLeft
	TurnRight
	UTurn
)

func (m Maneuver) String() string {
	switch m {
	case Continue:
		return "continue"
	case BearLeft:
		return "bear left"
	case BearRight:
		return "bear right"
	case TurnLeft:
		return "turn left"
	case TurnRight:
		return "turn right"
	default:
		return "make a U-turn"
	}
}

// Instruction is one step of a turn-by-turn direction set.
type Instruction struct {
	Maneuver   Maneuver
	StreetName string
	DistanceM  float64
	BearingDeg float64
}

func (i Instruction) String() string {
	if i.StreetName == "" {
		return fmt.Sprintf("%s for %.0fm", i.Maneuver, i.DistanceM)
	}
	return fmt.Sprintf("%s onto %s for %.0fm", i.Maneuver, i.StreetName, i.DistanceM)
}

// Directions walks path, grouping consecutive edges by street name, and
// emits an instruction at each name change or whenever the bearing
// change between segments exceeds 30 degrees (after normalising the
// delta to (-180, 180]).
func Directions(g *roadgraph.Graph, path []osm.NodeID, coords *osmxml.CoordCache) []Instruction {
	if len(path) < 2 {
		return nil
	}

	type seg struct {
		from, to osm.NodeID
		attrs    roadgraph.EdgeAttrs
		bearing  float64
	}
	segs := make([]seg, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		u, v := path[i], path[i+1]
		attrs, ok := edgeAttrs(g, u, v)
		if !ok {
			continue
		}
		ulon, ulat, _ := coords.Lookup(u)
		vlon, vlat, _ := coords.Lookup(v)
		segs = append(segs, seg{from: u, to: v, attrs: attrs, bearing: geo.Bearing(ulon, ulat, vlon, vlat)})
	}
	if len(segs) == 0 {
		return nil
	}

	var out []Instruction
	cur := Instruction{Maneuver: Continue, StreetName: segs[0].attrs.Name, BearingDeg: segs[0].bearing}

	for i, s := range segs {
		if i == 0 {
			cur.DistanceM += s.attrs.DistanceM
			continue
		}
		delta := normalizeDelta(s.bearing - segs[i-1].bearing)
		nameChanged := s.attrs.Name != cur.StreetName
		if nameChanged || absF(delta) > 30 {
			out = append(out, cur)
			cur = Instruction{Maneuver: maneuverFor(delta), StreetName: s.attrs.Name, BearingDeg: s.bearing}
		}
		cur.DistanceM += s.attrs.DistanceM
	}
	out = append(out, cur)
	return out
}

// normalizeDelta folds a bearing delta into (-180, 180].
func normalizeDelta(delta float64) float64 {
	for delta <= -180 {
		delta += 360
	}
	for delta > 180 {
		delta -= 360
	}
	return delta
}

func maneuverFor(delta float64) Maneuver {
	abs := absF(delta)
	switch {
	case abs < 20:
		return Continue
	case abs < 70:
		if delta > 0 {
			return BearRight
		}
		return BearLeft
	case abs < 150:
		if delta > 0 {
			return TurnRight
		}
		return TurnLeft
	default:
		return UTurn
	}
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func edgeAttrs(g *roadgraph.Graph, u, v osm.NodeID) (roadgraph.EdgeAttrs, bool) {
	for _, e := range g.Adj[u] {
		if e.To == v {
			return e.Attrs, true
		}
	}
	return roadgraph.EdgeAttrs{}, false
}
