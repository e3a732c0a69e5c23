package commands

import (
	"errors"

	"marketplace/internal/pkg/guard"
)

var ErrCompleteDeliveredOrdersCommandIsNotConstructed = errors.New(
	"CompleteDeliveredOrdersCommand must be created via NewCompleteDeliveredOrdersCommand constructor",
)

// CompleteDeliveredOrdersCommand triggers one pass that closes out orders
// which have sat in the delivered state past the dispute window.
type CompleteDeliveredOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewCompleteDeliveredOrdersCommand creates a new completion trigger.
func NewCompleteDeliveredOrdersCommand() CompleteDeliveredOrdersCommand {
	return CompleteDeliveredOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *CompleteDeliveredOrdersCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveredOrdersCommandIsNotConstructed)
}
