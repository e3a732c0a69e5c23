package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var (
	ErrModifyOrderCommandIsNotConstructed = errors.New(
		"ModifyOrderCommand must be created via NewModifyOrderCommand constructor",
	)
	ErrNoItemChanges       = errors.New("at least one item change is required")
	ErrQuantityIsNegative  = errors.New("quantity must not be negative")
	ErrItemChangeIsInvalid = errors.New("item change has an invalid item id")
)

// ItemChange adjusts one line of an order: a positive quantity replaces the
// ordered amount, zero removes the line.
type ItemChange struct {
	ItemID   kernel.UUID
	Quantity int
}

// ModifyOrderCommand represents a request to change an order's line items.
// Only draft and submitted orders accept changes; the aggregate enforces
// that when the handler applies them.
type ModifyOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actorID kernel.UUID
	changes []ItemChange

	guard guard.ConstructorGuard
}

// NewModifyOrderCommand creates a modification command with at least one
// item change.
func NewModifyOrderCommand(
	orderID kernel.UUID,
	actorID kernel.UUID,
	changes []ItemChange,
) (ModifyOrderCommand, error) {
	modifyCommand := ModifyOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		modifyCommand.setOrderID(orderID),
		modifyCommand.setActorID(actorID),
		modifyCommand.setChanges(changes),
	); err != nil {
		return ModifyOrderCommand{}, err
	}

	return modifyCommand, nil
}

// Validate ensures the command was created through the constructor.
func (c ModifyOrderCommand) Validate() error {
	return c.guard.Validate(ErrModifyOrderCommandIsNotConstructed)
}

// OrderID returns the order to modify.
func (c ModifyOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ActorID returns who requested the change.
func (c ModifyOrderCommand) ActorID() kernel.UUID {
	return c.actorID
}

// Changes returns the item adjustments to apply.
func (c ModifyOrderCommand) Changes() []ItemChange {
	return c.changes
}

func (c *ModifyOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ModifyOrderCommand) setActorID(actorID kernel.UUID) error {
	if err := actorID.Validate(); err != nil {
		return err
	}

	c.actorID = actorID
	return nil
}

func (c *ModifyOrderCommand) setChanges(changes []ItemChange) error {
	if len(changes) == 0 {
		return ErrNoItemChanges
	}
	for _, change := range changes {
		if err := change.ItemID.Validate(); err != nil {
			return errors.Join(ErrItemChangeIsInvalid, err)
		}
		if change.Quantity < 0 {
			return ErrQuantityIsNegative
		}
	}

	c.changes = changes
	return nil
}
