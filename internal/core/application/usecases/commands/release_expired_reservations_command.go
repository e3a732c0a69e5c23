package commands

import (
	"errors"

	"marketplace/internal/pkg/guard"
)

var ErrReleaseExpiredReservationsCommandIsNotConstructed = errors.New(
	"ReleaseExpiredReservationsCommand must be created via NewReleaseExpiredReservationsCommand constructor",
)

// ReleaseExpiredReservationsCommand triggers one sweep over stock
// reservations whose hold window has lapsed without the order being
// confirmed. Each expired reservation is closed and its quantity returned
// to available stock.
type ReleaseExpiredReservationsCommand struct {
	guard guard.ConstructorGuard
}

// NewReleaseExpiredReservationsCommand creates a new sweep trigger.
func NewReleaseExpiredReservationsCommand() ReleaseExpiredReservationsCommand {
	return ReleaseExpiredReservationsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *ReleaseExpiredReservationsCommand) Validate() error {
	return c.guard.Validate(ErrReleaseExpiredReservationsCommandIsNotConstructed)
}
