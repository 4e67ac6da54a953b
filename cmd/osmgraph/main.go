// Command osmgraph is a thin CLI over the parsing, graph-building, and
// routing/topology packages: parse an OSM XML extract, build a routing
// graph for one mode, print summary statistics, and optionally run a
// single shortest-path query.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/osm"

	"osmgraph/pkg/features"
	"osmgraph/pkg/osmxml"
	"osmgraph/pkg/roadgraph"
	"osmgraph/pkg/routing"
	"osmgraph/pkg/topology"
)

func main() {
	input := flag.String("input", "", "Path to a .osm XML extract")
	mode := flag.String("mode", "drive", "Routing mode: walk, bike, or drive")
	metric := flag.String("metric", "distance", "Edge cost metric: distance or time")
	route := flag.String("route", "", "Run a single shortest-path query: srcNodeID,dstNodeID")
	analyze := flag.Bool("analyze", false, "Print component, bridge, and centrality summary statistics")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: osmgraph --input <file.osm> [--mode walk|bike|drive] [--metric distance|time] [--route src,dst] [--analyze]")
		os.Exit(1)
	}

	m, err := parseMode(*mode)
	if err != nil {
		log.Fatalf("Invalid mode: %v", err)
	}
	metricFn, err := parseMetric(*metric)
	if err != nil {
		log.Fatalf("Invalid metric: %v", err)
	}

	start := time.Now()

	log.Println("Parsing OSM XML...")
	store, err := osmxml.Parse(*input)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *input, err)
	}
	log.Printf("Parsed %d tagged nodes, %d ways, %d coordinates (%d malformed elements skipped)",
		len(store.Nodes), len(store.Ways), store.Coords.Len(), store.Report.MalformedElements)

	log.Println("Extracting amenity/highway/building features...")
	fset := features.Extract(store.Nodes, store.Ways, store.Coords)
	log.Printf("Features: %d amenities, %d highways, %d buildings", len(fset.Amenities), len(fset.Highways), len(fset.Buildings))

	log.Printf("Building %s routing graph (%s metric)...", *mode, *metric)
	g := roadgraph.Build(store.Ways, store.Coords, m)
	log.Printf("Graph: %d nodes", len(g.Adj))

	if *route != "" {
		src, dst, perr := parseRoute(*route)
		if perr != nil {
			log.Fatalf("Invalid --route: %v", perr)
		}
		runRoute(g, src, dst, metricFn)
	}

	if *analyze {
		runAnalysis(g)
	}

	log.Printf("Done in %s", time.Since(start))
}

func parseMode(s string) (roadgraph.Mode, error) {
	switch s {
	case "walk":
		return roadgraph.Walk, nil
	case "bike":
		return roadgraph.Bike, nil
	case "drive":
		return roadgraph.Drive, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want walk, bike, or drive)", s)
	}
}

func parseMetric(s string) (routing.CostFn, error) {
	switch s {
	case "distance":
		return routing.ByDistance, nil
	case "time":
		return routing.ByTime, nil
	default:
		return nil, fmt.Errorf("unknown metric %q (want distance or time)", s)
	}
}

func parseRoute(s string) (src, dst osm.NodeID, err error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected srcNodeID,dstNodeID, got %q", s)
	}
	srcID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad source node id: %w", err)
	}
	dstID, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad target node id: %w", err)
	}
	return osm.NodeID(srcID), osm.NodeID(dstID), nil
}

func runRoute(g *roadgraph.Graph, src, dst osm.NodeID, cost routing.CostFn) {
	log.Printf("Routing from %d to %d...", src, dst)
	path, ok := routing.Shortest(g, src, dst, cost, nil)
	if !ok {
		log.Printf("No route found between %d and %d", src, dst)
		return
	}
	log.Printf("Route: %d nodes, cost %.1f", len(path.Nodes), path.Cost)
}

func runAnalysis(g *roadgraph.Graph) {
	log.Println("Computing connected components...")
	comps := topology.Components(g)
	log.Printf("%d connected components; largest has %d nodes", len(comps), sizeOfLargest(comps))

	log.Println("Finding bridges and articulation points...")
	bridges := topology.Bridges(g)
	points := topology.ArticulationPoints(g)
	log.Printf("%d bridges, %d articulation points", len(bridges), len(points))

	deadEnds := topology.DeadEnds(g)
	log.Printf("%d dead-end nodes", len(deadEnds))

	log.Println("Sampling approximate betweenness centrality...")
	ranked := topology.Centrality(g, 100, nil)
	top := 5
	if len(ranked) < top {
		top = len(ranked)
	}
	for i := 0; i < top; i++ {
		r := ranked[i]
		log.Printf("  #%d node %d score=%.4f degree=%d intersection=%v", i+1, r.Node, r.Score, r.Degree, r.IsIntersection)
	}
}

func sizeOfLargest(comps [][]osm.NodeID) int {
	if len(comps) == 0 {
		return 0
	}
	return len(comps[0])
}
