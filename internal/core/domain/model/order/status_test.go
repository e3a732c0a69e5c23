package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Status_TransitionTo(t *testing.T) {
	t.Run("should allow the full fulfillment path", func(t *testing.T) {
		path := []Status{
			StatusSubmitted,
			StatusConfirmed,
			StatusPreparing,
			StatusReadyForPickup,
			StatusInTransit,
			StatusDelivered,
			StatusCompleted,
		}

		current := StatusDraft
		for _, next := range path {
			moved, err := current.TransitionTo(next)
			require.NoError(t, err)
			current = moved
		}
		assert.Equal(t, StatusCompleted, current)
	})

	t.Run("should allow preparing to go straight to in_transit", func(t *testing.T) {
		next, err := StatusPreparing.TransitionTo(StatusInTransit)
		require.NoError(t, err)
		assert.Equal(t, StatusInTransit, next)
	})

	t.Run("should allow cancellation from every non terminal status", func(t *testing.T) {
		nonTerminal := []Status{
			StatusDraft,
			StatusSubmitted,
			StatusConfirmed,
			StatusPreparing,
			StatusReadyForPickup,
			StatusInTransit,
			StatusDelivered,
		}

		for _, from := range nonTerminal {
			next, err := from.TransitionTo(StatusCancelled)
			require.NoError(t, err, "from %s", from)
			assert.Equal(t, StatusCancelled, next)
		}
	})

	t.Run("should reject skipping stages", func(t *testing.T) {
		_, err := StatusDraft.TransitionTo(StatusConfirmed)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		var invalidTransitionErr *InvalidTransitionError
		require.True(t, errors.As(err, &invalidTransitionErr))
		assert.Equal(t, StatusDraft, invalidTransitionErr.From)
		assert.Equal(t, StatusConfirmed, invalidTransitionErr.To)
	})

	t.Run("should reject moving backwards", func(t *testing.T) {
		_, err := StatusDelivered.TransitionTo(StatusPreparing)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("should reject leaving a terminal status", func(t *testing.T) {
		for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
			_, err := terminal.TransitionTo(StatusSubmitted)
			assert.ErrorIs(t, err, ErrInvalidTransition, "from %s", terminal)
		}
	})
}

func Test_Status_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusInTransit.IsTerminal())
}

func Test_Status_FromString(t *testing.T) {
	t.Run("should round trip every status", func(t *testing.T) {
		statuses := []Status{
			StatusDraft, StatusSubmitted, StatusConfirmed, StatusPreparing,
			StatusReadyForPickup, StatusInTransit, StatusDelivered,
			StatusCompleted, StatusCancelled,
		}

		for _, status := range statuses {
			parsed, err := StatusFromString(status.String())
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		}
	})

	t.Run("should reject unknown values", func(t *testing.T) {
		_, err := StatusFromString("shipped")
		assert.Error(t, err)
	})
}
