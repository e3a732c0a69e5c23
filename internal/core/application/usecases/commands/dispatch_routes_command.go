package commands

import (
	"errors"
	"time"

	"marketplace/internal/pkg/guard"
)

var ErrDispatchRoutesCommandIsNotConstructed = errors.New(
	"DispatchRoutesCommand must be created via NewDispatchRoutesCommand constructor",
)

// ErrDispatchDateIsRequired is returned when the command carries a zero date.
var ErrDispatchDateIsRequired = errors.New("dispatch date is required")

// DispatchRoutesCommand sends a day's planned routes out of the depot. Each
// route's stops are reordered for driving distance before the route is
// closed for planning.
type DispatchRoutesCommand struct {
	date time.Time

	guard guard.ConstructorGuard
}

// NewDispatchRoutesCommand creates a dispatch trigger for the given day.
func NewDispatchRoutesCommand(date time.Time) (DispatchRoutesCommand, error) {
	if date.IsZero() {
		return DispatchRoutesCommand{}, ErrDispatchDateIsRequired
	}

	return DispatchRoutesCommand{
		date:  date,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c *DispatchRoutesCommand) Validate() error {
	return c.guard.Validate(ErrDispatchRoutesCommandIsNotConstructed)
}

// Date returns the day whose routes are dispatched.
func (c DispatchRoutesCommand) Date() time.Time {
	return c.date
}
