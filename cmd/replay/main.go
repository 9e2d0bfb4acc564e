// Command replay feeds a GeoJSON FeatureCollection of drawn routes into a
// running planner, as if an operator had drawn each feature on the map.
//
//	replay mission.geojson [http://localhost:8080]
//
// LineString features become route lines. Polygon features are staged and then
// resolved by their "decision" property: "import" (default), "discard", or
// "insert" together with "line_id", "vertex_index" and "position".
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/missionplanner/internal/core/domain"
	"github.com/samirrijal/missionplanner/internal/pkg/config"
	"github.com/samirrijal/missionplanner/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("missionplanner-replay")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, "text")

	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <features.geojson> [api-url]", os.Args[0])
	}
	baseURL := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	if len(os.Args) > 2 {
		baseURL = os.Args[2]
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("read features: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.Fatalf("parse features: %v", err)
	}

	steps, err := plan(fc)
	if err != nil {
		log.Fatalf("plan: %v", err)
	}
	slog.Info("replaying mission", "features", len(fc.Features), "steps", len(steps), "api", baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Second}
	if err := run(ctx, client, baseURL, steps); err != nil {
		log.Fatalf("replay: %v", err)
	}
	slog.Info("replay complete")
}

// ---------------------------------------------------------------------------
// Planning
// ---------------------------------------------------------------------------

// step is one API call of the replay.
type step struct {
	feature int
	method  string
	path    string
	body    []byte
}

// plan turns every feature into the API calls an operator's clicks would make.
func plan(fc *geojson.FeatureCollection) ([]step, error) {
	var steps []step
	for i, f := range fc.Features {
		kind, _, err := domain.GestureCoordinates(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		geometry, err := geojson.NewGeometry(f.Geometry).MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("feature %d: encode geometry: %w", i, err)
		}

		steps = append(steps,
			step{feature: i, method: http.MethodPost, path: "/v1/modes/" + string(kind)},
			step{feature: i, method: http.MethodPost, path: "/v1/gestures?kind=" + string(kind), body: geometry},
		)
		if kind != domain.KindPolygon {
			continue
		}

		decision, err := decide(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		decision.feature = i
		steps = append(steps, decision)
	}
	return steps, nil
}

// decide maps a polygon feature's properties onto the staging decision call.
func decide(f *geojson.Feature) (step, error) {
	switch d := f.Properties.MustString("decision", "import"); d {
	case "import":
		return step{method: http.MethodPost, path: "/v1/staging/import"}, nil
	case "discard":
		return step{method: http.MethodDelete, path: "/v1/staging"}, nil
	case "insert":
		if _, ok := f.Properties["vertex_index"]; !ok {
			return step{}, errors.New("insert decision needs vertex_index")
		}
		pos, err := domain.ParsePosition(f.Properties.MustString("position", string(domain.After)))
		if err != nil {
			return step{}, err
		}
		body, err := json.Marshal(map[string]any{
			"vertex_index": f.Properties.MustInt("vertex_index"),
			"position":     pos,
		})
		if err != nil {
			return step{}, err
		}
		path := fmt.Sprintf("/v1/lines/%d/insert", f.Properties.MustInt("line_id", 0))
		return step{method: http.MethodPost, path: path, body: body}, nil
	default:
		return step{}, fmt.Errorf("unknown decision %q", d)
	}
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// run executes steps in order and stops at the first rejected call.
func run(ctx context.Context, client *http.Client, baseURL string, steps []step) error {
	for _, s := range steps {
		var body io.Reader
		if s.body != nil {
			body = bytes.NewReader(s.body)
		}
		req, err := http.NewRequestWithContext(ctx, s.method, baseURL+s.path, body)
		if err != nil {
			return err
		}
		if s.body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("feature %d: %s %s: %w", s.feature, s.method, s.path, err)
		}
		msg, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("feature %d: %s %s: HTTP %d: %s", s.feature, s.method, s.path, resp.StatusCode, bytes.TrimSpace(msg))
		}
		slog.Debug("step ok", "feature", s.feature, "method", s.method, "path", s.path, "status", resp.StatusCode)
	}
	return nil
}
