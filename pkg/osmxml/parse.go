// Package osmxml implements a streaming, allocation-conscious OSM XML
// v0.6 scanner and the element store it materialises into. The scanner
// walks raw bytes directly rather than building a DOM or delegating to
// encoding/xml, since a general-purpose XML decoder pays for features
// (namespaces, arbitrary nesting, CDATA) this format never uses.
package osmxml

import (
	"fmt"
	"os"
)

// ParseOptions configures a scan. The zero value parses nodes and ways
// and skips relations.
type ParseOptions struct {
	// KeepRelations requests that relations be materialised too. Most
	// callers (routing graph construction) never need them, so by
	// default Parse skips the work of accumulating member lists.
	KeepRelations bool
}

// Parse reads path and returns tagged nodes, ways, and the coordinate
// cache. Relations are not materialised; use ParseWithRelations for
// that. A missing or unreadable file is an InputError, returned as a
// plain Go error — the only failure mode this package treats as fatal.
// Malformed XML within the file is never fatal: it is counted in the
// returned Report.
func Parse(path string) (*Store, error) {
	return parse(path, ParseOptions{})
}

// ParseWithRelations is Parse but also materialises relations, for
// callers that need multipolygon assembly.
func ParseWithRelations(path string) (*Store, error) {
	return parse(path, ParseOptions{KeepRelations: true})
}

func parse(path string, opts ParseOptions) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("osmxml: open %s: %w", path, err)
	}

	b := newBuilder(len(data) / 96) // rough nodes-per-byte heuristic for a planet-style extract
	s := newScanner(data)

	for {
		el, ok := s.next()
		if !ok {
			break
		}
		switch el.name {
		case "node":
			if el.closed {
				b.openNode(attrs(el.body))
				b.closeNode()
			} else {
				b.openNode(attrs(el.body))
			}
		case "/node":
			b.closeNode()
		case "way":
			if el.closed {
				b.openWay(attrs(el.body))
				b.closeWay()
			} else {
				b.openWay(attrs(el.body))
			}
		case "/way":
			b.closeWay()
		case "relation":
			if !opts.KeepRelations {
				b.curKind = ""
				continue
			}
			if el.closed {
				b.openRelation(attrs(el.body))
				b.closeRelation()
			} else {
				b.openRelation(attrs(el.body))
			}
		case "/relation":
			if opts.KeepRelations {
				b.closeRelation()
			}
		case "tag":
			b.addTag(attrs(el.body))
		case "nd":
			b.addNd(attrs(el.body))
		case "member":
			if opts.KeepRelations {
				b.addMember(attrs(el.body))
			}
		default:
			// "osm", "bounds", and anything unrecognised: ignored per §6
			// ("unknown child elements are skipped").
		}
	}

	b.store.Report.MalformedElements += s.malformed
	b.store.Report.BytesScanned = int64(len(data))
	return &b.store, nil
}
