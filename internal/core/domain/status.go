package domain

import (
	"fmt"
	"strings"
)

// BookingStatus is the booking state of a single tour stop.
type BookingStatus string

const (
	StatusPotential   BookingStatus = "potential"
	StatusSuggested   BookingStatus = "suggested"
	StatusContacted   BookingStatus = "contacted"
	StatusNegotiating BookingStatus = "negotiating"
	StatusHold1       BookingStatus = "hold1"
	StatusHold2       BookingStatus = "hold2"
	StatusHold3       BookingStatus = "hold3"
	StatusHold4       BookingStatus = "hold4"
	StatusConfirmed   BookingStatus = "confirmed"
	StatusCancelled   BookingStatus = "cancelled"
)

// Phase groups booking statuses.
type Phase string

const (
	PhasePlanning Phase = "planning"
	PhaseContact  Phase = "contact"
	PhaseHold     Phase = "hold"
	PhaseFinal    Phase = "final"
)

// AllStatuses lists every status in forward phase order.
var AllStatuses = []BookingStatus{
	StatusPotential, StatusSuggested,
	StatusContacted, StatusNegotiating,
	StatusHold4, StatusHold3, StatusHold2, StatusHold1,
	StatusConfirmed, StatusCancelled,
}

// transitions is the complete edge set of the booking state machine, excluding
// explicit hold demotions. Terminal states have no outgoing edges.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPotential: {
		StatusSuggested, StatusContacted, StatusNegotiating,
		StatusHold4, StatusHold3, StatusHold2, StatusHold1,
		StatusConfirmed, StatusCancelled,
	},
	StatusSuggested: {
		StatusContacted, StatusNegotiating,
		StatusHold4, StatusHold3, StatusHold2, StatusHold1,
		StatusConfirmed, StatusCancelled,
	},
	StatusContacted: {
		StatusNegotiating,
		StatusHold4, StatusHold3, StatusHold2, StatusHold1,
		StatusConfirmed, StatusCancelled,
	},
	StatusNegotiating: {
		StatusHold4, StatusHold3, StatusHold2, StatusHold1,
		StatusConfirmed, StatusCancelled,
	},
	StatusHold4:     {StatusHold3, StatusHold2, StatusHold1, StatusConfirmed, StatusCancelled},
	StatusHold3:     {StatusHold2, StatusHold1, StatusConfirmed, StatusCancelled},
	StatusHold2:     {StatusHold1, StatusConfirmed, StatusCancelled},
	StatusHold1:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {},
	StatusCancelled: {},
}

// demotions are only taken when the caller asks for them explicitly.
var demotions = map[BookingStatus][]BookingStatus{
	StatusHold1: {StatusHold2, StatusHold3, StatusHold4},
	StatusHold2: {StatusHold3, StatusHold4},
	StatusHold3: {StatusHold4},
}

// legacyStatuses maps vocabularies found in older booking data.
var legacyStatuses = map[string]BookingStatus{
	"proposed":  StatusSuggested,
	"requested": StatusContacted,
	"inquiry":   StatusContacted,
	"hold":      StatusHold1,
	"booked":    StatusConfirmed,
	"canceled":  StatusCancelled,
	"declined":  StatusCancelled,
}

// ParseStatus converts a stored or user-supplied string into a BookingStatus.
func ParseStatus(s string) (BookingStatus, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	st := BookingStatus(key)
	if st.Valid() {
		return st, nil
	}
	if st, ok := legacyStatuses[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no transition may leave s.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// IsHold reports whether s is one of the priority-ordered holds.
func (s BookingStatus) IsHold() bool {
	return s.Phase() == PhaseHold
}

// Phase returns the phase s belongs to.
func (s BookingStatus) Phase() Phase {
	switch s {
	case StatusPotential, StatusSuggested:
		return PhasePlanning
	case StatusContacted, StatusNegotiating:
		return PhaseContact
	case StatusHold1, StatusHold2, StatusHold3, StatusHold4:
		return PhaseHold
	default:
		return PhaseFinal
	}
}

// HoldLevel returns 1..4 for holds and 0 otherwise.
func (s BookingStatus) HoldLevel() int {
	switch s {
	case StatusHold1:
		return 1
	case StatusHold2:
		return 2
	case StatusHold3:
		return 3
	case StatusHold4:
		return 4
	}
	return 0
}

// Priority gives a total order over statuses; higher is closer to a
// confirmed booking. hold1 outranks hold2 outranks hold3 outranks hold4.
func (s BookingStatus) Priority() int {
	switch s {
	case StatusConfirmed:
		return 9
	case StatusHold1:
		return 8
	case StatusHold2:
		return 7
	case StatusHold3:
		return 6
	case StatusHold4:
		return 5
	case StatusNegotiating:
		return 4
	case StatusContacted:
		return 3
	case StatusSuggested:
		return 2
	case StatusPotential:
		return 1
	}
	return 0
}

// TransitionOptions tunes Transition.
type TransitionOptions struct {
	// AllowDemotion permits moving a hold to a lower-priority hold.
	AllowDemotion bool
}

// Transition validates a status change and returns the new status.
func Transition(from, to BookingStatus) (BookingStatus, error) {
	return TransitionWith(from, to, TransitionOptions{})
}

// TransitionWith is Transition with options.
func TransitionWith(from, to BookingStatus, opts TransitionOptions) (BookingStatus, error) {
	if !from.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if !to.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if CanTransition(from, to, opts) {
		return to, nil
	}
	return from, &InvalidTransitionError{From: from, To: to}
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to BookingStatus, opts TransitionOptions) bool {
	if contains(transitions[from], to) {
		return true
	}
	return opts.AllowDemotion && contains(demotions[from], to)
}

// NextStatuses lists the statuses reachable from s in one step.
func NextStatuses(s BookingStatus, opts TransitionOptions) []BookingStatus {
	out := append([]BookingStatus(nil), transitions[s]...)
	if opts.AllowDemotion {
		out = append(out, demotions[s]...)
	}
	return out
}

func contains(list []BookingStatus, s BookingStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
