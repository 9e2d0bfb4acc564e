package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/missionplanner/internal/core/domain"
)

// insertRequest is the body of POST /v1/lines/:id/insert.
type insertRequest struct {
	VertexIndex *int   `json:"vertex_index"`
	Position    string `json:"position"`
}

// stagingResponse is the polygon decision view.
type stagingResponse struct {
	Open bool         `json:"open"`
	Rows []domain.Row `json:"rows"`
}

// modeResponse reports the draw mode after a command.
type modeResponse struct {
	Mode domain.DrawMode `json:"mode"`
}

// MissionHandler returns the full mission snapshot.
func MissionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Mission.Snapshot())
	}
}

// ListLinesHandler returns route lines with their derived tables.
func ListLinesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lines, pg := paginate(c, deps.Mission.Snapshot().Lines, 50, 200)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: lines, Pagination: pg})
	}
}

// GetLineHandler returns one line's derived distance table.
func GetLineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "line id must be an integer")
		}
		for _, l := range deps.Mission.Snapshot().Lines {
			if l.ID == id {
				return c.JSON(l)
			}
		}
		return errNotFound(c, "line not found")
	}
}

// InsertPolygonHandler splices the staged polygon into a line.
func InsertPolygonHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "line id must be an integer")
		}

		var req insertRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.VertexIndex == nil {
			return errBadRequest(c, "vertex_index is required")
		}
		pos, err := domain.ParsePosition(req.Position)
		if err != nil {
			return errBadRequest(c, `position must be "before" or "after"`)
		}

		if err := deps.Mission.InsertStagedPolygon(c.UserContext(), id, *req.VertexIndex, pos); err != nil {
			LoggerFromCtx(c.UserContext()).Info("insert rejected", "line_id", id, "error", err)
			return errMission(c, err)
		}

		rows, err := deps.Mission.LineTable(id)
		if err != nil {
			return errMission(c, err)
		}
		return c.JSON(fiber.Map{"id": id, "rows": rows})
	}
}

// StagingHandler returns the staged polygon table.
func StagingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(stagingResponse{
			Open: deps.Mission.StagingOpen(),
			Rows: deps.Mission.StagingTable(),
		})
	}
}

// DiscardStagingHandler drops the staged polygon.
func DiscardStagingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Mission.DiscardStagedPolygon(c.UserContext())
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ImportStagingHandler turns the staged polygon into a new route line.
func ImportStagingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		line, err := deps.Mission.ImportStagedPolygon(c.UserContext())
		if err != nil {
			return errMission(c, err)
		}
		if line == nil {
			return c.JSON(fiber.Map{"imported": false})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"imported": true,
			"id":       line.ID,
			"rows":     line.Table(),
		})
	}
}

// StartModeHandler arms the line or polygon drawing interaction.
func StartModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := domain.ParseGeometryKind(c.Params("kind"))
		if err != nil {
			return errBadRequest(c, `mode must be "line" or "polygon"`)
		}

		start := deps.Mission.StartLineMode
		if kind == domain.KindPolygon {
			start = deps.Mission.StartPolygonMode
		}
		if err := start(c.UserContext()); err != nil {
			return errMission(c, err)
		}
		return c.JSON(modeResponse{Mode: deps.Mission.Mode()})
	}
}

// CancelModeHandler disarms any armed drawing interaction.
func CancelModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Mission.CancelDrawing(c.UserContext()); err != nil {
			return errMission(c, err)
		}
		return c.JSON(modeResponse{Mode: deps.Mission.Mode()})
	}
}

// GestureHandler accepts a completed gesture from the map engine as a
// GeoJSON Geometry or Feature.
func GestureHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, coords, err := domain.DecodeGesture(c.Body())
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if want := c.Query("kind"); want != "" && want != string(kind) {
			return errBadRequest(c, "geometry does not match kind "+want)
		}

		if err := deps.Mission.CompleteGesture(c.UserContext(), kind, coords); err != nil {
			return errMission(c, err)
		}
		return c.JSON(deps.Mission.Snapshot())
	}
}
