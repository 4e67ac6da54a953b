// Package filter implements the composable accept/reject/bbox/used-node
// pipeline applied to an already-parsed element store, in the spirit of
// Osmosis's filter chain.
package filter

import (
	"fmt"

	"github.com/paulmach/osm"
	"osmgraph/pkg/osmxml"
)

// Action is the verdict a TagFilter rule contributes.
type Action int

const (
	Accept Action = iota
	Reject
)

func (a Action) String() string {
	if a == Accept {
		return "accept"
	}
	return "reject"
}

// ElementType selects which element kinds a rule or sub-filter applies to.
type ElementType int

const (
	Nodes ElementType = iota
	Ways
	Relations
	Any
)

func (e ElementType) String() string {
	switch e {
	case Nodes:
		return "nodes"
	case Ways:
		return "ways"
	case Relations:
		return "relations"
	default:
		return "*"
	}
}

// Rule is one entry in a TagFilter's ordered rule list.
type Rule struct {
	Action Action
	Type   ElementType
	Key    string
	// Values, if non-empty, restricts the match to a tag whose value is
	// one of these; an empty Values list with a non-empty Key matches any
	// value for that key.
	Values []string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s[%s]", r.Action, r.Type, r.Key)
}

func (r Rule) matchesTags(tags osm.Tags) bool {
	if r.Key == "" {
		return true // a keyless rule matches every element of its Type
	}
	v := tags.Find(r.Key)
	if v == "" {
		return false
	}
	if len(r.Values) == 0 {
		return true
	}
	for _, want := range r.Values {
		if v == want {
			return true
		}
	}
	return false
}

func (r Rule) appliesTo(t ElementType) bool {
	return r.Type == Any || r.Type == t
}

// TagFilter evaluates an ordered rule list against one element's tags.
// Matching semantics: reject overrides accept. If at least one accept
// rule exists for an element's type, an element of that type with no
// matching accept rule is rejected. With no rules at all for that type,
// the filter returns "don't care" (verdictUnset) and the caller accepts
// by default.
type TagFilter struct {
	Rules []Rule
}

type verdict int

const (
	verdictUnset verdict = iota
	verdictAccept
	verdictReject
)

func (f TagFilter) evaluate(t ElementType, tags osm.Tags) verdict {
	hasAcceptRule := false
	matched := verdictUnset

	for _, r := range f.Rules {
		if !r.appliesTo(t) {
			continue
		}
		if r.Action == Accept {
			hasAcceptRule = true
		}
		if !r.matchesTags(tags) {
			continue
		}
		if r.Action == Reject {
			return verdictReject
		}
		matched = verdictAccept
	}

	if matched == verdictAccept {
		return verdictAccept
	}
	if hasAcceptRule {
		return verdictReject
	}
	return verdictUnset
}

// BBox is an inclusive geographic bounding box.
type BBox struct {
	Top, Left, Bottom, Right float64
}

func (b BBox) contains(lon, lat float64) bool {
	return lat <= b.Top && lat >= b.Bottom && lon >= b.Left && lon <= b.Right
}

// Global carries the kill-switch flags that reject whole element kinds
// outright, independent of tags.
type Global struct {
	RejectNodes     bool
	RejectWays      bool
	RejectRelations bool
}

// Pipeline composes GlobalRejection, BoundingBoxFilter, TagFilter, and
// UsedNodeTracker, applied in that fixed order: global rejection -> bbox
// -> tag -> used-node post-pass.
type Pipeline struct {
	Global  Global
	BBox    *BBox
	Tag     *TagFilter
	UseNode bool // enable the used-node post-pass
}

// HasActiveFilters reports whether any stage of the pipeline would do
// anything, so callers can skip filtering altogether on the common case
// of an unfiltered extract.
func (p Pipeline) HasActiveFilters() bool {
	return p.Global.RejectNodes || p.Global.RejectWays || p.Global.RejectRelations ||
		p.BBox != nil || (p.Tag != nil && len(p.Tag.Rules) > 0) || p.UseNode
}

// Result is the filtered view of a store. Ways is always the
// caller-facing filtered way list; Nodes already reflects the used-node
// post-pass when Pipeline.UseNode is set. Relations is empty unless the
// store it was built from materialised relations (ParseWithRelations).
type Result struct {
	Nodes     []osmxml.Node
	Ways      []osmxml.Way
	Relations []osmxml.Relation
}

// Apply runs the full pipeline over store, in fixed composition order.
func (p Pipeline) Apply(store *osmxml.Store) Result {
	ways := store.Ways
	if !p.Global.RejectWays {
		ways = p.filterWays(ways)
	} else {
		ways = nil
	}

	nodes := store.Nodes
	if p.Global.RejectNodes {
		nodes = nil
	} else {
		nodes = p.filterNodes(nodes)
	}

	relations := store.Relations
	if p.Global.RejectRelations {
		relations = nil
	} else {
		relations = p.filterRelations(relations)
	}

	if p.UseNode && !p.Global.RejectWays {
		used := make(map[osm.NodeID]struct{}, len(ways)*2)
		for _, w := range ways {
			for _, ref := range w.NodeRefs {
				used[ref] = struct{}{}
			}
		}
		filtered := nodes[:0:0]
		for _, n := range nodes {
			if _, ok := used[n.ID]; ok {
				filtered = append(filtered, n)
			}
		}
		nodes = filtered
	}

	return Result{Nodes: nodes, Ways: ways, Relations: relations}
}

func (p Pipeline) filterNodes(in []osmxml.Node) []osmxml.Node {
	out := make([]osmxml.Node, 0, len(in))
	for _, n := range in {
		if p.BBox != nil && !p.BBox.contains(n.Lon, n.Lat) {
			continue
		}
		if p.Tag != nil {
			if v := p.Tag.evaluate(Nodes, n.Tags); v == verdictReject {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func (p Pipeline) filterWays(in []osmxml.Way) []osmxml.Way {
	if p.Tag == nil {
		return in
	}
	out := make([]osmxml.Way, 0, len(in))
	for _, w := range in {
		if v := p.Tag.evaluate(Ways, w.Tags); v == verdictReject {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (p Pipeline) filterRelations(in []osmxml.Relation) []osmxml.Relation {
	if p.Tag == nil {
		return in
	}
	out := make([]osmxml.Relation, 0, len(in))
	for _, r := range in {
		if v := p.Tag.evaluate(Relations, r.Tags); v == verdictReject {
			continue
		}
		out = append(out, r)
	}
	return out
}
