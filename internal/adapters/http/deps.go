package http

import (
	"github.com/nats-io/nats.go"

	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/postgres"
	"github.com/morgankhalil/VenueConnect-sub003/internal/adapters/valkey"
	"github.com/morgankhalil/VenueConnect-sub003/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Tours    *usecases.TourService
	Bookings *usecases.BookingService
	Gaps     *usecases.GapService
	Network  *usecases.NetworkService
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
