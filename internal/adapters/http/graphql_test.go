package http_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func gqlWith(t *testing.T, app *fiber.App, body string) gqlResponse {
	t.Helper()
	resp := do(t, app, "POST", "/graphql", body)
	expectStatus(t, resp, 200)

	var out gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestGraphQL_MissionQuery(t *testing.T) {
	deps := makeDeps()
	app := setupApp(deps)
	drawLine(t, app, lineGesture)

	out := gqlWith(t, app,
		`{"query":"{ mission { mode staging_open lines { id length_m rows { label distance coordinate { lon lat } } } } }"}`)
	if len(out.Errors) > 0 {
		t.Fatalf("unexpected errors: %+v", out.Errors)
	}

	var mission struct {
		Mode        string `json:"mode"`
		StagingOpen bool   `json:"staging_open"`
		Lines       []struct {
			ID      int    `json:"id"`
			LengthM string `json:"length_m"`
			Rows    []struct {
				Label      string `json:"label"`
				Distance   string `json:"distance"`
				Coordinate struct {
					Lon float64 `json:"lon"`
					Lat float64 `json:"lat"`
				} `json:"coordinate"`
			} `json:"rows"`
		} `json:"lines"`
	}
	if err := json.Unmarshal(out.Data["mission"], &mission); err != nil {
		t.Fatal(err)
	}
	if mission.Mode != "idle" || mission.StagingOpen {
		t.Errorf("unexpected mission state %+v", mission)
	}
	if len(mission.Lines) != 1 || mission.Lines[0].LengthM != "111194.93" {
		t.Fatalf("unexpected lines %+v", mission.Lines)
	}
	if r := mission.Lines[0].Rows[1]; r.Label != "01" || r.Distance != "111194.93" || r.Coordinate.Lat != 1 {
		t.Errorf("unexpected row %+v", r)
	}
}

func TestGraphQL_InsertMutation(t *testing.T) {
	deps := makeDeps()
	app := setupApp(deps)
	drawLine(t, app, lineGesture)
	stagePolygon(t, app)

	out := gqlWith(t, app,
		`{"query":"mutation { insertStagedPolygon(line_id: 0, vertex_index: 1, position: \"before\") { staging_open lines { rows { label } } } }"}`)
	if len(out.Errors) > 0 {
		t.Fatalf("unexpected errors: %+v", out.Errors)
	}
	if deps.Mission.StagingOpen() {
		t.Error("expected staging cleared after insert")
	}
	rows, err := deps.Mission.LineTable(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 6 {
		t.Errorf("expected 6 rows, got %d", len(rows))
	}
}

func TestGraphQL_MutationError(t *testing.T) {
	app := setupApp(makeDeps())

	out := gqlWith(t, app,
		`{"query":"mutation { insertStagedPolygon(line_id: 0, vertex_index: 0) { mode } }"}`)
	if len(out.Errors) == 0 {
		t.Fatal("expected an error with nothing staged")
	}
}

func TestGraphQL_LineNotFound(t *testing.T) {
	app := setupApp(makeDeps())

	out := gqlWith(t, app, `{"query":"{ line(id: 4) { id } }"}`)
	if len(out.Errors) == 0 {
		t.Fatal("expected not found error")
	}
}

func TestGraphQL_InsertNullPosition(t *testing.T) {
	deps := makeDeps()
	app := setupApp(deps)
	drawLine(t, app, lineGesture)
	stagePolygon(t, app)

	// A null position either falls back to the default or is rejected,
	// but never reaches the resolver as a non-string.
	out := gqlWith(t, app,
		`{"query":"mutation { insertStagedPolygon(line_id: 0, vertex_index: 0, position: null) { mode } }"}`)
	for _, e := range out.Errors {
		if strings.Contains(e.Message, "interface conversion") || strings.Contains(e.Message, "panic") {
			t.Errorf("resolver panicked: %q", e.Message)
		}
	}

	out = gqlWith(t, app,
		`{"query":"mutation { insertStagedPolygon(line_id: 0, vertex_index: 0, position: \"sideways\") { mode } }"}`)
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0].Message, "unknown position") {
		t.Errorf("expected unknown position error, got %+v", out.Errors)
	}
}

func TestMetricsEndpoint_MixedMethods(t *testing.T) {
	app := setupApp(makeDeps())
	expectStatus(t, do(t, app, "POST", "/v1/modes/line", ""), 200)
	expectStatus(t, do(t, app, "GET", "/v1/mission", ""), 200)
	expectStatus(t, do(t, app, "DELETE", "/v1/modes", ""), 200)
	expectStatus(t, do(t, app, "GET", "/v1/mission", ""), 200)

	resp := do(t, app, "GET", "/metrics", "")
	expectStatus(t, resp, 200)
	body := string(readBody(t, resp.Body))
	for _, want := range []string{`method="POST",path="/v1/modes/:kind"`, `method="DELETE",path="/v1/modes"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected series %s", want)
		}
	}
}
