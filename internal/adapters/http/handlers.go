package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
)

// tourView adds the improvement against the initial snapshot to a tour.
type tourView struct {
	*domain.Tour
	Improvement *domain.MetricsDelta `json:"improvement,omitempty"`
}

// GetTourHandler returns a tour with its stops and metrics.
func GetTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "tour id is required")
		}
		tour, err := deps.Tours.Get(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err, "tour")
		}
		return c.JSON(tourView{Tour: tour, Improvement: tour.Improvement()})
	}
}

// RescoreTourHandler recomputes and stores a tour's metrics.
func RescoreTourHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "tour id is required")
		}
		res, err := deps.Tours.Rescore(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err, "tour")
		}
		return c.JSON(fiber.Map{
			"tour":         tourView{Tour: res.Tour, Improvement: res.Tour.Improvement()},
			"legs":         res.Score.Legs,
			"skipped_legs": res.Score.SkippedLegs,
		})
	}
}

// TourGapsHandler lists the gaps of a tour, paginated.
func TourGapsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "tour id is required")
		}

		gaps, err := deps.Gaps.DetectGaps(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err, "tour")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		total := len(gaps)
		page := []domain.Gap{}
		if offset < total {
			end := min(offset+limit, total)
			page = gaps[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GapSuggestionsHandler ranks candidate venues for one gap.
func GapSuggestionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, gapID := c.Params("id"), c.Params("gapId")
		if id == "" || gapID == "" {
			return errBadRequest(c, "tour id and gap id are required")
		}
		limit := c.QueryInt("limit", 0)
		if limit < 0 || limit > usecases.MaxSuggestionLimit {
			return errBadRequest(c, fmt.Sprintf("limit must be between 0 and %d (0 uses the default)", usecases.MaxSuggestionLimit))
		}

		suggestions, err := deps.Gaps.Suggestions(c.UserContext(), id, gapID, limit)
		if err != nil {
			return errFromDomain(c, err, "gap")
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(suggestions)
	}
}

type statusRequest struct {
	Status        string `json:"status"`
	AllowDemotion bool   `json:"allow_demotion"`
}

// StopStatusHandler moves a stop to a new booking status.
func StopStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "stop id is required")
		}

		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Status == "" {
			return errBadRequest(c, "status is required")
		}
		to, err := domain.ParseStatus(req.Status)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		change, err := deps.Bookings.TransitionStatus(c.UserContext(), id, to,
			domain.TransitionOptions{AllowDemotion: req.AllowDemotion})
		if err != nil {
			return errFromDomain(c, err, "stop")
		}
		return c.JSON(change)
	}
}

// StopTransitionsHandler lists the statuses a stop may move to next.
func StopTransitionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "stop id is required")
		}
		opts := domain.TransitionOptions{AllowDemotion: c.QueryBool("allow_demotion", false)}

		next, err := deps.Bookings.NextStatuses(c.UserContext(), id, opts)
		if err != nil {
			return errFromDomain(c, err, "stop")
		}
		if next == nil {
			next = []domain.BookingStatus{}
		}
		return c.JSON(fiber.Map{"stop_id": id, "next": next})
	}
}

// RebuildNetworkHandler recomputes the venue network synchronously.
func RebuildNetworkHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Network.Rebuild(c.UserContext())
		if err != nil {
			return errFromDomain(c, err, "network")
		}
		return c.JSON(res)
	}
}

// partnerView is an edge seen from one of its venues.
type partnerView struct {
	PartnerID string `json:"partner_id"`
	domain.NetworkEdge
}

// VenuePartnersHandler returns the strongest collaborators of a venue.
func VenuePartnersHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "venue id is required")
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		edges, err := deps.Network.Partners(c.UserContext(), id, limit)
		if err != nil {
			return errFromDomain(c, err, "venue")
		}

		out := make([]partnerView, 0, len(edges))
		for _, e := range edges {
			out = append(out, partnerView{PartnerID: e.Other(id), NetworkEdge: e})
		}
		return c.JSON(out)
	}
}

// VenuePairHandler scores two venues on the fly.
func VenuePairHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, b := c.Params("id"), c.Params("other")
		if a == "" || b == "" {
			return errBadRequest(c, "two venue ids are required")
		}
		edge, err := deps.Network.PairByID(c.UserContext(), a, b)
		if err != nil {
			return errFromDomain(c, err, "venue")
		}
		return c.JSON(edge)
	}
}
