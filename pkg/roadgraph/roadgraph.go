// Package roadgraph builds a directed, mode-aware weighted road graph
// from parsed OSM ways, honouring per-mode highway allowlists and the
// oneway rules that apply only to the drive mode.
package roadgraph

import (
	"strconv"
	"strings"

	"github.com/paulmach/osm"

	"osmgraph/pkg/geo"
	"osmgraph/pkg/osmxml"
)

// Mode is a travel mode gating which highway classes are traversable.
type Mode int

const (
	Walk Mode = iota
	Bike
	Drive
)

// Metric selects which EdgeAttrs field a cost function should read.
type Metric int

const (
	Distance Metric = iota
	Time
)

var allowedHighways = map[Mode]map[string]bool{
	Walk: setOf("primary", "secondary", "tertiary", "residential", "living_street",
		"unclassified", "service", "pedestrian", "footway", "path", "steps", "track"),
	Bike: setOf("primary", "secondary", "tertiary", "residential", "living_street",
		"unclassified", "service", "cycleway", "path", "track"),
	Drive: setOf("motorway", "motorway_link", "trunk", "trunk_link", "primary", "primary_link",
		"secondary", "secondary_link", "tertiary", "tertiary_link", "residential",
		"living_street", "unclassified", "service", "road"),
}

func setOf(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// defaultSpeedsKPH gives the fallback speed, by mode and highway class,
// used whenever maxspeed is absent or unparseable.
var defaultSpeedsKPH = map[Mode]map[string]float64{
	Drive: {
		"motorway":       110,
		"motorway_link":  80,
		"trunk":          100,
		"trunk_link":     70,
		"primary":        70,
		"primary_link":   50,
		"secondary":      60,
		"secondary_link": 50,
		"tertiary":       50,
		"tertiary_link":  40,
		"residential":    30,
		"living_street":  15,
		"unclassified":   40,
		"service":        20,
		"road":           40,
	},
	Walk: {
		"": 5, // same value as defaultSpeed's walk fallback
		"steps": 3,
		"path":  4,
	},
	Bike: {
		"":           15, // same value as defaultSpeed's bike fallback
		"cycleway":   18,
		"residential": 15,
	},
}

func defaultSpeed(mode Mode, highway string) float64 {
	speeds := defaultSpeedsKPH[mode]
	if v, ok := speeds[highway]; ok {
		return v
	}
	switch mode {
	case Walk:
		return 5
	case Bike:
		return 15
	default:
		return 30
	}
}

// parseMaxspeed applies §6's maxspeed parse rules: a leading numeric
// token, an "mph" suffix applying the imperial conversion, and the
// tokens none/signals/variable/walk always falling back to the default.
func parseMaxspeed(raw string) (kph float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	switch strings.ToLower(raw) {
	case "none", "signals", "variable", "walk":
		return 0, false
	}

	i := 0
	for i < len(raw) && (raw[i] == '.' || (raw[i] >= '0' && raw[i] <= '9')) {
		i++
	}
	if i == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw[:i], 64)
	if err != nil {
		return 0, false
	}
	suffix := strings.ToLower(strings.TrimSpace(raw[i:]))
	if suffix == "mph" {
		v *= 1.60934
	}
	return v, true
}

// EdgeAttrs carries per-edge metadata, copied by value for locality.
type EdgeAttrs struct {
	DistanceM    float64
	TravelTimeS  float64
	Name         string
	HighwayClass string
}

// Edge is one directed adjacency entry.
type Edge struct {
	To    osm.NodeID
	Attrs EdgeAttrs
}

// Graph is the directed weighted adjacency list built from a way
// collection for one travel mode; every edge carries both its distance
// and its travel time, so one graph serves either metric. It borrows
// nothing from the element store after construction.
type Graph struct {
	Adj map[osm.NodeID][]Edge
}

// Cost returns the value cost_fn should use for this edge under metric.
func (e EdgeAttrs) Cost(metric Metric) float64 {
	if metric == Time {
		return e.TravelTimeS
	}
	return e.DistanceM
}

// Build constructs the routing graph for the given mode. Ways whose
// highway tag isn't in the mode's allowlist are skipped entirely. Nodes
// missing from coords silently drop that segment (§4.5 step 2).
func Build(ways []osmxml.Way, coords *osmxml.CoordCache, mode Mode) *Graph {
	g := &Graph{Adj: make(map[osm.NodeID][]Edge)}
	allowed := allowedHighways[mode]

	for _, w := range ways {
		highway := w.Tags.Find("highway")
		if !allowed[highway] {
			continue
		}
		name := w.Tags.Find("name")

		speedKPH := defaultSpeed(mode, highway)
		if ms := w.Tags.Find("maxspeed"); ms != "" {
			if v, ok := parseMaxspeed(ms); ok {
				speedKPH = v
			}
		}
		speedMPS := speedKPH * 1000 / 3600

		isOneway, isReverse := false, false
		if mode == Drive {
			isOneway, isReverse = onewayFlags(w.Tags.Find("oneway"))
		}

		refs := w.NodeRefs
		for i := 0; i < len(refs)-1; i++ {
			u, v := refs[i], refs[i+1]
			ulon, ulat, uok := coords.Lookup(u)
			vlon, vlat, vok := coords.Lookup(v)
			if !uok || !vok {
				continue
			}

			dist := geo.Haversine(ulon, ulat, vlon, vlat)
			var travelTime float64
			if speedMPS > 0 {
				travelTime = dist / speedMPS
			}
			attrs := EdgeAttrs{DistanceM: dist, TravelTimeS: travelTime, Name: name, HighwayClass: highway}

			switch {
			case isReverse:
				// Regression guard: oneway=-1 must emit ONLY v->u, never u->v.
				g.addEdge(v, u, attrs)
			case isOneway:
				g.addEdge(u, v, attrs)
			default:
				g.addEdge(u, v, attrs)
				g.addEdge(v, u, attrs)
			}
		}
	}
	return g
}

func (g *Graph) addEdge(from, to osm.NodeID, attrs EdgeAttrs) {
	g.Adj[from] = append(g.Adj[from], Edge{To: to, Attrs: attrs})
	if _, ok := g.Adj[to]; !ok {
		g.Adj[to] = nil // ensure the destination is a graph key even with no outgoing edges yet
	}
}

// onewayFlags reduces the raw oneway tag value to the single boolean
// split the spec mandates: (is_oneway, is_reverse). Both false means
// bidirectional.
func onewayFlags(raw string) (isOneway, isReverse bool) {
	switch raw {
	case "yes", "1", "true":
		return true, false
	case "-1":
		return true, true
	default:
		return false, false
	}
}
