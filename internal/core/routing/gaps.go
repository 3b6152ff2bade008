package routing

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

const dateLayout = "2006-01-02"

// Detector finds idle stretches of a tour between confirmed, dated stops.
type Detector struct {
	cfg   Config
	model DistanceModel
}

// NewDetector creates a Detector from cfg.
func NewDetector(cfg Config) *Detector {
	if cfg.MinIdleDays < 1 {
		cfg.MinIdleDays = 1
	}
	if cfg.DailyTravelBudgetKm <= 0 {
		cfg.DailyTravelBudgetKm = DefaultConfig().DailyTravelBudgetKm
	}
	return &Detector{cfg: cfg, model: NewDistanceModel(cfg.AverageSpeedKmh)}
}

// anchorDay groups the anchors that fall on one calendar date. first and
// last are the lowest and highest sequence on that date.
type anchorDay struct {
	date  time.Time
	first domain.Stop
	last  domain.Stop
}

// Anchors returns the confirmed, dated stops grouped per date in
// chronological order, or domain.ErrInsufficientData when there are none.
func (d *Detector) Anchors(stops []domain.Stop) ([]domain.Stop, error) {
	days := groupAnchors(stops)
	if len(days) == 0 {
		return nil, domain.ErrInsufficientData
	}
	out := make([]domain.Stop, 0, len(days))
	for _, day := range days {
		out = append(out, day.first)
	}
	return out, nil
}

// Detect returns the gaps of a tour in chronological order. Gap placement
// follows dates, not sequence numbers. A tour without anchors has no gaps.
func (d *Detector) Detect(tour domain.Tour, stops []domain.Stop, coords map[string]domain.GeoPoint) []domain.Gap {
	days := groupAnchors(stops)
	if len(days) == 0 {
		return nil
	}

	var gaps []domain.Gap

	if tour.StartDate != nil {
		start := domain.Civil(*tour.StartDate)
		first := days[0]
		if start.Before(first.date) {
			next := first.first
			gaps = append(gaps, d.newGap(tour.ID, domain.GapLeading, nil, &next,
				start, first.date.AddDate(0, 0, -1), nil, lookup(coords, next.VenueID)))
		}
	}

	for i := 1; i < len(days); i++ {
		prevDay, nextDay := days[i-1], days[i]
		idle := daysBetween(prevDay.date, nextDay.date) - 1
		if idle <= 0 {
			continue
		}
		prev, next := prevDay.last, nextDay.first
		prevLoc, nextLoc := lookup(coords, prev.VenueID), lookup(coords, next.VenueID)
		if idle < d.cfg.MinIdleDays && !d.travelLeavesIdleDays(prevLoc, nextLoc, idle) {
			continue
		}
		gaps = append(gaps, d.newGap(tour.ID, domain.GapBetween, &prev, &next,
			prevDay.date.AddDate(0, 0, 1), nextDay.date.AddDate(0, 0, -1), prevLoc, nextLoc))
	}

	if tour.EndDate != nil {
		end := domain.Civil(*tour.EndDate)
		last := days[len(days)-1]
		if end.After(last.date) {
			prev := last.last
			gaps = append(gaps, d.newGap(tour.ID, domain.GapTrailing, &prev, nil,
				last.date.AddDate(0, 0, 1), end, lookup(coords, prev.VenueID), nil))
		}
	}

	for i := range gaps {
		gaps[i].OccupiedDates = occupiedDates(stops, gaps[i].StartDate, gaps[i].EndDate)
	}
	return gaps
}

// travelLeavesIdleDays reports whether the drive between two anchors needs
// fewer days than are available, leaving at least one day free.
func (d *Detector) travelLeavesIdleDays(a, b *domain.GeoPoint, idle int) bool {
	km, err := d.model.Distance(a, b)
	if err != nil {
		return false
	}
	needed := int(math.Ceil(km / d.cfg.DailyTravelBudgetKm))
	return needed < idle
}

func (d *Detector) newGap(tourID string, kind domain.GapKind, prev, next *domain.Stop, start, end time.Time, prevLoc, nextLoc *domain.GeoPoint) domain.Gap {
	idle := daysBetween(start, end) + 1
	g := domain.Gap{
		ID:                  GapID(tourID, start, end),
		TourID:              tourID,
		Kind:                kind,
		StartDate:           start,
		EndDate:             end,
		PreviousLocation:    prevLoc,
		NextLocation:        nextLoc,
		IdleDays:            idle,
		MaxTravelDistanceKm: float64(idle) * d.cfg.DailyTravelBudgetKm,
	}
	if prev != nil {
		id := prev.ID
		g.PreviousStopID = &id
	}
	if next != nil {
		id := next.ID
		g.NextStopID = &id
	}
	return g
}

// GapID derives a stable identifier so a gap keeps its id across
// recomputations as long as its dates do not move.
func GapID(tourID string, start, end time.Time) string {
	name := "urn:venueconnect:gap:" + tourID + ":" + start.Format(dateLayout) + ":" + end.Format(dateLayout)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func groupAnchors(stops []domain.Stop) []anchorDay {
	var anchors []domain.Stop
	for _, s := range stops {
		if s.IsAnchor() {
			anchors = append(anchors, s)
		}
	}
	sort.SliceStable(anchors, func(i, j int) bool {
		di, dj := domain.Civil(*anchors[i].Date), domain.Civil(*anchors[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return anchors[i].Sequence < anchors[j].Sequence
	})

	var days []anchorDay
	for _, a := range anchors {
		date := domain.Civil(*a.Date)
		if n := len(days); n > 0 && days[n-1].date.Equal(date) {
			days[n-1].last = a
			continue
		}
		days = append(days, anchorDay{date: date, first: a, last: a})
	}
	return days
}

// occupiedDates lists dates inside [start, end] already taken by provisional
// stops, so suggestions avoid them.
func occupiedDates(stops []domain.Stop, start, end time.Time) []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, s := range stops {
		if s.Date == nil || s.IsAnchor() || s.Status == domain.StatusCancelled {
			continue
		}
		date := domain.Civil(*s.Date)
		if date.Before(start) || date.After(end) || seen[date] {
			continue
		}
		seen[date] = true
		out = append(out, date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
