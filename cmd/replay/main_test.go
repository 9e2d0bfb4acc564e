package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missionFeatures = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [0, 1]]}},
    {"type": "Feature", "properties": {"decision": "insert", "line_id": 0, "vertex_index": 1, "position": "before"},
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}},
    {"type": "Feature", "properties": {"decision": "discard"},
     "geometry": {"type": "Polygon", "coordinates": [[[2, 2], [3, 2], [3, 3], [2, 2]]]}}
  ]
}`

func parse(t *testing.T, data string) *geojson.FeatureCollection {
	t.Helper()
	fc, err := geojson.UnmarshalFeatureCollection([]byte(data))
	require.NoError(t, err)
	return fc
}

func TestPlan(t *testing.T) {
	steps, err := plan(parse(t, missionFeatures))
	require.NoError(t, err)

	var calls []string
	for _, s := range steps {
		calls = append(calls, s.method+" "+s.path)
	}
	assert.Equal(t, []string{
		"POST /v1/modes/line",
		"POST /v1/gestures?kind=line",
		"POST /v1/modes/polygon",
		"POST /v1/gestures?kind=polygon",
		"POST /v1/lines/0/insert",
		"POST /v1/modes/polygon",
		"POST /v1/gestures?kind=polygon",
		"DELETE /v1/staging",
	}, calls)

	assert.JSONEq(t, `{"vertex_index":1,"position":"before"}`, string(steps[4].body))
	assert.Equal(t, 1, steps[4].feature)
}

func TestPlan_DefaultDecisionImports(t *testing.T) {
	steps, err := plan(parse(t, `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":null,"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}]}`))
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "/v1/staging/import", steps[2].path)
}

func TestPlan_Rejects(t *testing.T) {
	tests := map[string]string{
		"point geometry": `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[0,0]}}`,
		"bad decision":   `{"type":"Feature","properties":{"decision":"merge"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}`,
		"insert no index": `{"type":"Feature","properties":{"decision":"insert","line_id":0},` +
			`"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}`,
		"bad position": `{"type":"Feature","properties":{"decision":"insert","vertex_index":0,"position":"middle"},` +
			`"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[0,0]]]}}`,
	}
	for name, feature := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := plan(parse(t, `{"type":"FeatureCollection","features":[`+feature+`]}`))
			assert.Error(t, err)
		})
	}
}

func TestRun_StopsAtFirstRejection(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.RequestURI()+" "+string(body))
		mu.Unlock()
		if r.URL.Path == "/v1/lines/0/insert" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":"out_of_range"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	steps, err := plan(parse(t, missionFeatures))
	require.NoError(t, err)

	err = run(context.Background(), srv.Client(), srv.URL, steps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 422")
	assert.Contains(t, err.Error(), "out_of_range")

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 5, "steps after the rejected insert must not run")
	assert.Equal(t, `POST /v1/gestures?kind=line {"type":"LineString","coordinates":[[0,0],[0,1]]}`, seen[1])
}
