// Command query loads a preprocessed artifact and answers single or
// batch point-to-point distance queries from the command line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/osm"

	"tnrch/pkg/tnr"
	"tnrch/pkg/tnrio"
)

func main() {
	artifactPath := flag.String("artifact", "artifact.tnrch", "Path to a preprocessed artifact (see cmd/preprocess)")
	format := flag.String("format", "edgelist", `Node id type the artifact was built with: "osm" or "edgelist"`)
	s := flag.Int64("s", 0, "Source node id (ignored with -batch)")
	t := flag.Int64("t", 0, "Target node id (ignored with -batch)")
	batch := flag.String("batch", "", `Path to a file of "s t" pairs, one per line, instead of a single -s/-t query`)
	flag.Parse()

	var err error
	switch *format {
	case "osm":
		err = runQueries[osm.NodeID](*artifactPath, *batch, osm.NodeID(*s), osm.NodeID(*t))
	case "edgelist":
		err = runQueries[int](*artifactPath, *batch, int(*s), int(*t))
	default:
		log.Fatalf("unknown -format %q, want \"osm\" or \"edgelist\"", *format)
	}
	if err != nil {
		log.Fatalf("query: %v", err)
	}
}

func runQueries[K comparable](artifactPath, batchPath string, s, t K) error {
	art, err := tnrio.Load[K](artifactPath)
	if err != nil {
		return fmt.Errorf("load artifact: %w", err)
	}

	if batchPath == "" {
		return answerOne(art, s, t)
	}

	f, err := os.Open(batchPath)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("line %d: want \"s t\", got %q", lineNo, line)
		}
		bs, bt, err := parsePair[K](fields[0], fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := answerOne(art, bs, bt); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func answerOne[K comparable](art *tnr.Artifact[K], s, t K) error {
	dist, err := art.Distance(s, t)
	if err != nil {
		return err
	}
	if math.IsInf(dist, 1) {
		fmt.Printf("%v\t%v\tunreachable\n", s, t)
		return nil
	}
	fmt.Printf("%v\t%v\t%.3f\n", s, t, dist)
	return nil
}

// parsePair parses two node-id strings into K, dispatching on K's
// concrete type since the artifact's K is fixed at the call site but the
// CLI only has raw strings to work with.
func parsePair[K comparable](a, b string) (K, K, error) {
	var zero K
	switch any(zero).(type) {
	case osm.NodeID:
		na, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return zero, zero, err
		}
		nb, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			return zero, zero, err
		}
		return any(osm.NodeID(na)).(K), any(osm.NodeID(nb)).(K), nil
	case int:
		na, err := strconv.Atoi(a)
		if err != nil {
			return zero, zero, err
		}
		nb, err := strconv.Atoi(b)
		if err != nil {
			return zero, zero, err
		}
		return any(na).(K), any(nb).(K), nil
	default:
		return zero, zero, fmt.Errorf("unsupported node id type %T", zero)
	}
}
