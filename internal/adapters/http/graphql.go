package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/missionplanner/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the mission service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lon": &graphql.Field{Type: graphql.Float},
			"lat": &graphql.Field{Type: graphql.Float},
		},
	})

	rowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Row",
		Fields: graphql.Fields{
			"index":       &graphql.Field{Type: graphql.Int},
			"label":       &graphql.Field{Type: graphql.String},
			"waypoint":    &graphql.Field{Type: graphql.String},
			"coordinate":  &graphql.Field{Type: coordinateType},
			"coordinates": &graphql.Field{Type: graphql.String, Description: `"lon, lat" with six decimals`},
			"distance":    &graphql.Field{Type: graphql.String, Description: `meters from the previous waypoint, or "--"`},
		},
	})

	lineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RouteLine",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"rows": &graphql.Field{Type: graphql.NewList(rowType)},
			"length_m": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.LineView).LengthM, nil
				},
			},
		},
	})

	modeField := &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return string(p.Source.(domain.Snapshot).Mode), nil
		},
	}

	missionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mission",
		Fields: graphql.Fields{
			"mode":    modeField,
			"lines":   &graphql.Field{Type: graphql.NewList(lineType)},
			"staging": &graphql.Field{Type: graphql.NewList(rowType)},
			"staging_open": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Snapshot).StagingOpen, nil
				},
			},
		},
	})

	snapshot := func(p graphql.ResolveParams) (interface{}, error) {
		return deps.Mission.Snapshot(), nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"mission": &graphql.Field{
				Type:        missionType,
				Description: "Full mission view: mode, route lines and staged polygon",
				Resolve:     snapshot,
			},
			"lines": &graphql.Field{
				Type:        graphql.NewList(lineType),
				Description: "All route lines with their derived tables",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Mission.Snapshot().Lines, nil
				},
			},
			"line": &graphql.Field{
				Type:        lineType,
				Description: "One route line by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(int)
					for _, l := range deps.Mission.Snapshot().Lines {
						if l.ID == id {
							return l, nil
						}
					}
					return nil, domain.ErrNotFound
				},
			},
			"staging": &graphql.Field{
				Type:        graphql.NewList(rowType),
				Description: "Derived table of the staged polygon ring",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Mission.StagingTable(), nil
				},
			},
			"mode": &graphql.Field{
				Type:        graphql.String,
				Description: "Current draw mode",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(deps.Mission.Mode()), nil
				},
			},
		},
	})

	// command wraps a mission command so every mutation returns the new view.
	command := func(run func(p graphql.ResolveParams) error) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			if err := run(p); err != nil {
				return nil, err
			}
			return deps.Mission.Snapshot(), nil
		}
	}

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"startLineMode": &graphql.Field{
				Type: missionType,
				Resolve: command(func(p graphql.ResolveParams) error {
					return deps.Mission.StartLineMode(p.Context)
				}),
			},
			"startPolygonMode": &graphql.Field{
				Type: missionType,
				Resolve: command(func(p graphql.ResolveParams) error {
					return deps.Mission.StartPolygonMode(p.Context)
				}),
			},
			"cancelDrawing": &graphql.Field{
				Type: missionType,
				Resolve: command(func(p graphql.ResolveParams) error {
					return deps.Mission.CancelDrawing(p.Context)
				}),
			},
			"discardStagedPolygon": &graphql.Field{
				Type: missionType,
				Resolve: command(func(p graphql.ResolveParams) error {
					deps.Mission.DiscardStagedPolygon(p.Context)
					return nil
				}),
			},
			"importStagedPolygon": &graphql.Field{
				Type: missionType,
				Resolve: command(func(p graphql.ResolveParams) error {
					_, err := deps.Mission.ImportStagedPolygon(p.Context)
					return err
				}),
			},
			"insertStagedPolygon": &graphql.Field{
				Type:        missionType,
				Description: "Splice the staged ring into a line before or after a vertex",
				Args: graphql.FieldConfigArgument{
					"line_id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"vertex_index": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"position":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "after"},
				},
				Resolve: command(func(p graphql.ResolveParams) error {
					raw, _ := p.Args["position"].(string)
					pos, err := domain.ParsePosition(raw)
					if err != nil {
						return err
					}
					return deps.Mission.InsertStagedPolygon(p.Context,
						p.Args["line_id"].(int), p.Args["vertex_index"].(int), pos)
				}),
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
