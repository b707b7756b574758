package api

import (
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"

	"github.com/paulmach/osm"

	"tnrch/pkg/tnrquery"
)

// Distancer answers point-to-point distance queries over a loaded
// artifact. Satisfied by *tnr.Artifact[osm.NodeID] and by
// *tnrquery.Distancer[osm.NodeID] (the pooled variant NewHandlers should
// be given for a high-QPS server, per SPEC_FULL.md §5).
type Distancer interface {
	Distance(s, t osm.NodeID) (float64, error)
}

// Snapper resolves a lat/lng query point to the nearest ingested node.
// Satisfied by *osmload.Index.
type Snapper interface {
	Nearest(lat, lon float64) (osm.NodeID, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	distancer Distancer
	snapper   Snapper
	stats     StatsResponse
}

// NewHandlers creates handlers serving distance queries against
// distancer, snapping request coordinates to node ids via snapper.
func NewHandlers(distancer Distancer, snapper Snapper, stats StatsResponse) *Handlers {
	return &Handlers{distancer: distancer, snapper: snapper, stats: stats}
}

// HandleDistance handles POST /api/v1/distance.
func (h *Handlers) HandleDistance(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	var req DistanceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}

	s, err := h.snapper.Nearest(req.Start.Lat, req.Start.Lng)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "start")
		return
	}
	t, err := h.snapper.Nearest(req.End.Lat, req.End.Lng)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "end")
		return
	}

	dist, err := h.distancer.Distance(s, t)
	if err != nil {
		if errors.Is(err, tnrquery.ErrUnknownNode) {
			writeError(w, http.StatusUnprocessableEntity, "unknown_node", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if math.IsInf(dist, 1) {
		json.NewEncoder(w).Encode(DistanceResponse{Reachable: false})
		return
	}
	json.NewEncoder(w).Encode(DistanceResponse{Reachable: true, DistanceMeters: dist})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.stats)
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Field: field})
}
