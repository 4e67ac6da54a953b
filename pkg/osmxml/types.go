package osmxml

import "github.com/paulmach/osm"

// Node is a tagged OSM node. Untagged nodes never reach this type; they
// live only in a CoordCache (see Store).
type Node struct {
	ID   osm.NodeID
	Lat  float64
	Lon  float64
	Tags osm.Tags
}

// Way is an ordered sequence of node references plus tags.
type Way struct {
	ID       osm.WayID
	NodeRefs []osm.NodeID
	Tags     osm.Tags
}

// isAreaTags lists the tag keys that, combined with a closed way, make
// the way an area rather than a linear feature.
var isAreaTags = map[string]bool{
	"building": true,
	"landuse":  true,
	"natural":  true,
	"area":     true,
	"leisure":  true,
	"amenity":  true,
	"shop":     true,
	"tourism":  true,
}

// IsClosed reports whether the way's first and last node refs coincide
// and it has at least 4 node refs (a minimal closed ring).
func (w Way) IsClosed() bool {
	return len(w.NodeRefs) >= 4 && w.NodeRefs[0] == w.NodeRefs[len(w.NodeRefs)-1]
}

// IsArea reports whether the way is both closed and tagged with one of
// the area-implying keys.
func (w Way) IsArea() bool {
	if !w.IsClosed() {
		return false
	}
	for _, t := range w.Tags {
		if isAreaTags[t.Key] {
			return true
		}
	}
	return false
}

// MemberType enumerates the element types a relation member can refer to.
type MemberType int

const (
	MemberNode MemberType = iota
	MemberWay
	MemberRelation
)

// Member is one entry in a relation's ordered member list.
type Member struct {
	Type MemberType
	Ref  int64
	Role string
}

// Relation is an ordered list of typed, roled members plus tags. Only
// materialised when the caller asks for relations (ParseWithRelations).
type Relation struct {
	ID      osm.RelationID
	Members []Member
	Tags    osm.Tags
}

// CoordCache is the process-wide NodeId -> (lat, lon) map populated for
// every node seen during a scan, tagged or not. Every NodeId referenced
// by any Way.NodeRefs that was present in the source file is guaranteed
// to be in the cache; nodes referenced by a way but absent from the
// source file (a malformed or partial extract) are simply absent.
type CoordCache struct {
	lat map[osm.NodeID]float64
	lon map[osm.NodeID]float64
}

func newCoordCache(sizeHint int) *CoordCache {
	return &CoordCache{
		lat: make(map[osm.NodeID]float64, sizeHint),
		lon: make(map[osm.NodeID]float64, sizeHint),
	}
}

// NewCoordCache builds an empty CoordCache. Production code only ever
// gets one back from Parse/ParseWithRelations; this constructor exists
// for tests and other callers that synthesize a store outside a scan.
func NewCoordCache() *CoordCache {
	return newCoordCache(0)
}

// Set inserts or overwrites the coordinate for id.
func (c *CoordCache) Set(id osm.NodeID, lat, lon float64) {
	c.set(id, lat, lon)
}

// Lookup returns the (lon, lat) pair for id, in that order to match the
// geo package's coordinate convention, and whether it was present.
func (c *CoordCache) Lookup(id osm.NodeID) (lon, lat float64, ok bool) {
	la, ok1 := c.lat[id]
	lo, ok2 := c.lon[id]
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return lo, la, true
}

// Len reports the number of distinct node ids in the cache.
func (c *CoordCache) Len() int { return len(c.lat) }

func (c *CoordCache) set(id osm.NodeID, lat, lon float64) {
	c.lat[id] = lat
	c.lon[id] = lon
}

// Report carries non-fatal parse statistics. Malformed input never
// aborts a parse; it is counted here instead.
type Report struct {
	MalformedElements int
	SkippedNumericAttr int
	BytesScanned      int64
}
