package osmxml

import (
	"strconv"

	"github.com/paulmach/osm"
)

// Store is the frozen result of a single scan: the three owned element
// collections plus the process-wide coordinate cache. Nothing may mutate
// a Store after Parse/ParseWithRelations returns it; every downstream
// component only borrows from it.
type Store struct {
	Nodes     []Node
	Ways      []Way
	Relations []Relation
	Coords    *CoordCache
	Report    Report
}

// builder accumulates scan events into a Store. A single element (node,
// way, or relation) is open at a time; its tags/nd/member children are
// buffered until the matching close event finalises it.
type builder struct {
	store Store

	wayIndex map[osm.WayID]int
	relIndex map[osm.RelationID]int

	curKind string // "node", "way", "relation", or ""
	curNode Node
	curWay  Way
	curRel  Relation
}

func newBuilder(sizeHint int) *builder {
	return &builder{
		store: Store{
			Coords: newCoordCache(sizeHint),
		},
		wayIndex: make(map[osm.WayID]int),
		relIndex: make(map[osm.RelationID]int),
	}
}

func (b *builder) openNode(a map[string]string) {
	id, okID := parseInt64(a["id"])
	lat, okLat := parseFloat(a["lat"])
	lon, okLon := parseFloat(a["lon"])
	if !okID {
		b.store.Report.MalformedElements++
		b.curKind = ""
		return
	}
	if !okLat || !okLon {
		b.store.Report.SkippedNumericAttr++
		b.curKind = ""
		return
	}
	b.curKind = "node"
	b.curNode = Node{ID: osm.NodeID(id), Lat: lat, Lon: lon}
}

func (b *builder) closeNode() {
	if b.curKind != "node" {
		return
	}
	b.store.Coords.set(b.curNode.ID, b.curNode.Lat, b.curNode.Lon)
	if len(b.curNode.Tags) > 0 {
		b.store.Nodes = append(b.store.Nodes, b.curNode)
	}
	b.curKind = ""
}

func (b *builder) openWay(a map[string]string) {
	id, ok := parseInt64(a["id"])
	if !ok {
		b.store.Report.MalformedElements++
		b.curKind = ""
		return
	}
	b.curKind = "way"
	b.curWay = Way{ID: osm.WayID(id)}
}

func (b *builder) closeWay() {
	if b.curKind != "way" {
		return
	}
	if idx, dup := b.wayIndex[b.curWay.ID]; dup {
		b.store.Ways[idx] = b.curWay // last write wins on duplicate ids
	} else {
		b.wayIndex[b.curWay.ID] = len(b.store.Ways)
		b.store.Ways = append(b.store.Ways, b.curWay)
	}
	b.curKind = ""
}

func (b *builder) openRelation(a map[string]string) {
	id, ok := parseInt64(a["id"])
	if !ok {
		b.store.Report.MalformedElements++
		b.curKind = ""
		return
	}
	b.curKind = "relation"
	b.curRel = Relation{ID: osm.RelationID(id)}
}

func (b *builder) closeRelation() {
	if b.curKind != "relation" {
		return
	}
	if idx, dup := b.relIndex[b.curRel.ID]; dup {
		b.store.Relations[idx] = b.curRel
	} else {
		b.relIndex[b.curRel.ID] = len(b.store.Relations)
		b.store.Relations = append(b.store.Relations, b.curRel)
	}
	b.curKind = ""
}

func (b *builder) addTag(a map[string]string) {
	k, v := a["k"], a["v"]
	if k == "" {
		return
	}
	tag := osm.Tag{Key: k, Value: v}
	switch b.curKind {
	case "node":
		b.curNode.Tags = append(b.curNode.Tags, tag)
	case "way":
		b.curWay.Tags = append(b.curWay.Tags, tag)
	case "relation":
		b.curRel.Tags = append(b.curRel.Tags, tag)
	}
}

func (b *builder) addNd(a map[string]string) {
	if b.curKind != "way" {
		return
	}
	ref, ok := parseInt64(a["ref"])
	if !ok {
		b.store.Report.SkippedNumericAttr++
		return
	}
	b.curWay.NodeRefs = append(b.curWay.NodeRefs, osm.NodeID(ref))
}

func (b *builder) addMember(a map[string]string) {
	if b.curKind != "relation" {
		return
	}
	ref, ok := parseInt64(a["ref"])
	if !ok {
		b.store.Report.SkippedNumericAttr++
		return
	}
	var mt MemberType
	switch a["type"] {
	case "node":
		mt = MemberNode
	case "way":
		mt = MemberWay
	case "relation":
		mt = MemberRelation
	default:
		b.store.Report.MalformedElements++
		return
	}
	b.curRel.Members = append(b.curRel.Members, Member{Type: mt, Ref: ref, Role: a["role"]})
}

func parseInt64(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
