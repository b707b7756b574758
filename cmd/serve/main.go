// Command serve loads a preprocessed artifact and starts the pkg/api
// HTTP distance server. Grounded on
// azybler-map_router/cmd/server/main.go's load-then-serve structure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"tnrch/pkg/api"
	"tnrch/pkg/osmload"
	"tnrch/pkg/tnrio"

	"github.com/paulmach/osm"
)

func main() {
	artifactPath := flag.String("artifact", "artifact.tnrch", "Path to a preprocessed artifact (see cmd/preprocess)")
	osmPath := flag.String("osm", "", "Path to the .osm.pbf extract used to build the artifact, for nearest-node snapping")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	if *osmPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: serve --artifact artifact.tnrch --osm city.osm.pbf [--port 8080]")
		os.Exit(1)
	}

	start := time.Now()

	log.Printf("Loading artifact from %s...", *artifactPath)
	art, err := tnrio.Load[osm.NodeID](*artifactPath)
	if err != nil {
		log.Fatalf("Failed to load artifact: %v", err)
	}
	log.Printf("Loaded: %d transit nodes", len(art.Transit()))

	log.Printf("Rebuilding spatial index from %s...", *osmPath)
	f, err := os.Open(*osmPath)
	if err != nil {
		log.Fatalf("Failed to open OSM extract: %v", err)
	}
	osmResult, err := osmload.Load(context.Background(), f, log.Default())
	f.Close()
	if err != nil {
		log.Fatalf("Failed to rebuild spatial index: %v", err)
	}

	// Reclaim memory from init-time temporaries (artifact decode, OSM
	// re-parse for snapping). Without this, Go's heap retains peak RSS
	// from construction.
	runtime.GC()
	debug.FreeOSMemory()

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumNodes:     art.A().NumNodes(),
		NumTransit:   len(art.Transit()),
		NumShortcuts: len(art.Shortcuts().Edges()),
	}

	handlers := api.NewHandlers(art.NewDistancer(), osmResult.Index, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv, cfg.ShutdownTimeout); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
