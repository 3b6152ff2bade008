package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. Object
// fields resolve through the json tags of the domain structs.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	metricsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TourMetrics",
		Fields: graphql.Fields{
			"total_distance_km":         &graphql.Field{Type: graphql.Float},
			"total_travel_time_minutes": &graphql.Field{Type: graphql.Int},
			"optimization_score":        &graphql.Field{Type: graphql.Int},
		},
	})

	deltaType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MetricsDelta",
		Fields: graphql.Fields{
			"distance_km":         &graphql.Field{Type: graphql.Float},
			"travel_time_minutes": &graphql.Field{Type: graphql.Int},
			"optimization_score":  &graphql.Field{Type: graphql.Int},
		},
	})

	stopType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stop",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.String},
			"tour_id":           &graphql.Field{Type: graphql.String},
			"venue_id":          &graphql.Field{Type: graphql.String},
			"sequence":          &graphql.Field{Type: graphql.Int},
			"date":              &graphql.Field{Type: graphql.DateTime},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					switch s := p.Source.(type) {
					case domain.Stop:
						return string(s.Status), nil
					case *domain.Stop:
						return string(s.Status), nil
					}
					return nil, nil
				},
			},
			"status_updated_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	tourType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tour",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"artist_id":       &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"start_date":      &graphql.Field{Type: graphql.DateTime},
			"end_date":        &graphql.Field{Type: graphql.DateTime},
			"stops":           &graphql.Field{Type: graphql.NewList(stopType)},
			"metrics":         &graphql.Field{Type: metricsType},
			"initial_metrics": &graphql.Field{Type: metricsType},
			"improvement": &graphql.Field{
				Type: deltaType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if t, ok := p.Source.(*domain.Tour); ok {
						return t.Improvement(), nil
					}
					return nil, nil
				},
			},
		},
	})

	gapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Gap",
		Fields: graphql.Fields{
			"id":                     &graphql.Field{Type: graphql.String},
			"tour_id":                &graphql.Field{Type: graphql.String},
			"kind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if g, ok := p.Source.(domain.Gap); ok {
						return string(g.Kind), nil
					}
					return nil, nil
				},
			},
			"previous_stop_id":       &graphql.Field{Type: graphql.String},
			"next_stop_id":           &graphql.Field{Type: graphql.String},
			"start_date":             &graphql.Field{Type: graphql.DateTime},
			"end_date":               &graphql.Field{Type: graphql.DateTime},
			"previous_location":      &graphql.Field{Type: geoPointType},
			"next_location":          &graphql.Field{Type: geoPointType},
			"idle_days":              &graphql.Field{Type: graphql.Int},
			"max_travel_distance_km": &graphql.Field{Type: graphql.Float},
		},
	})

	suggestionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GapSuggestion",
		Fields: graphql.Fields{
			"gap_id":                    &graphql.Field{Type: graphql.String},
			"venue_id":                  &graphql.Field{Type: graphql.String},
			"suggested_date":            &graphql.Field{Type: graphql.DateTime},
			"match_score":               &graphql.Field{Type: graphql.Int},
			"distance_from_previous_km": &graphql.Field{Type: graphql.Float},
			"distance_to_next_km":       &graphql.Field{Type: graphql.Float},
			"added_distance_km":         &graphql.Field{Type: graphql.Float},
		},
	})

	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NetworkEdge",
		Fields: graphql.Fields{
			"venue_a":                  &graphql.Field{Type: graphql.String},
			"venue_b":                  &graphql.Field{Type: graphql.String},
			"trust_score":              &graphql.Field{Type: graphql.Int},
			"collaboration_likelihood": &graphql.Field{Type: graphql.Float},
			"tier_distance":            &graphql.Field{Type: graphql.Int},
			"same_region":              &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"tour": &graphql.Field{
				Type:        tourType,
				Description: "Get a tour with its stops and metrics",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Tours.Get(p.Context, p.Args["id"].(string))
				},
			},
			"gaps": &graphql.Field{
				Type:        graphql.NewList(gapType),
				Description: "Unconfirmed intervals of a tour",
				Args: graphql.FieldConfigArgument{
					"tour_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Gaps.DetectGaps(p.Context, p.Args["tour_id"].(string))
				},
			},
			"suggestions": &graphql.Field{
				Type:        graphql.NewList(suggestionType),
				Description: "Ranked venues for a gap",
				Args: graphql.FieldConfigArgument{
					"tour_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"gap_id":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Gaps.Suggestions(p.Context,
						p.Args["tour_id"].(string), p.Args["gap_id"].(string), p.Args["limit"].(int))
				},
			},
			"partners": &graphql.Field{
				Type:        graphql.NewList(edgeType),
				Description: "Strongest collaborators of a venue",
				Args: graphql.FieldConfigArgument{
					"venue_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Network.Partners(p.Context, p.Args["venue_id"].(string), p.Args["limit"].(int))
				},
			},
			"venuePair": &graphql.Field{
				Type:        edgeType,
				Description: "Score two venues without storing the result",
				Args: graphql.FieldConfigArgument{
					"a": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"b": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Network.PairByID(p.Context, p.Args["a"].(string), p.Args["b"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"rescoreTour": &graphql.Field{
				Type: tourType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, err := deps.Tours.Rescore(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return res.Tour, nil
				},
			},
			"transitionStop": &graphql.Field{
				Type: stopType,
				Args: graphql.FieldConfigArgument{
					"id":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"status":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"allow_demotion": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					to, err := domain.ParseStatus(p.Args["status"].(string))
					if err != nil {
						return nil, err
					}
					opts := domain.TransitionOptions{AllowDemotion: p.Args["allow_demotion"].(bool)}
					change, err := deps.Bookings.TransitionStatus(p.Context, p.Args["id"].(string), to, opts)
					if err != nil {
						return nil, err
					}
					return change.Stop, nil
				},
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
