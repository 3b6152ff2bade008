package routing

import (
	"errors"
	"fmt"
)

// Weights set the relative importance of the match score components.
type Weights struct {
	Distance float64 `json:"distance"`
	Slack    float64 `json:"slack"`
	Affinity float64 `json:"affinity"`
}

func (w Weights) sum() float64 { return w.Distance + w.Slack + w.Affinity }

// Config carries the tunable constants of the routing engine.
type Config struct {
	AverageSpeedKmh     float64 // assumed road speed for travel time
	MinIdleDays         int     // idle days between anchors before a gap is reported
	DailyTravelBudgetKm float64 // how far a tour can reasonably move per idle day
	SuggestionLimit     int     // default number of ranked suggestions
	Weights             Weights
}

// DefaultConfig returns the reference defaults.
func DefaultConfig() Config {
	return Config{
		AverageSpeedKmh:     50,
		MinIdleDays:         1,
		DailyTravelBudgetKm: 600,
		SuggestionLimit:     10,
		Weights:             Weights{Distance: 1, Slack: 1, Affinity: 1},
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.AverageSpeedKmh <= 0 {
		errs = append(errs, fmt.Errorf("average speed must be positive, got %v", c.AverageSpeedKmh))
	}
	if c.MinIdleDays < 1 {
		errs = append(errs, fmt.Errorf("min idle days must be at least 1, got %d", c.MinIdleDays))
	}
	if c.DailyTravelBudgetKm <= 0 {
		errs = append(errs, fmt.Errorf("daily travel budget must be positive, got %v", c.DailyTravelBudgetKm))
	}
	if c.SuggestionLimit <= 0 {
		errs = append(errs, fmt.Errorf("suggestion limit must be positive, got %d", c.SuggestionLimit))
	}
	if c.Weights.Distance < 0 || c.Weights.Slack < 0 || c.Weights.Affinity < 0 {
		errs = append(errs, errors.New("weights must not be negative"))
	} else if c.Weights.sum() == 0 {
		errs = append(errs, errors.New("at least one weight must be positive"))
	}
	return errors.Join(errs...)
}
