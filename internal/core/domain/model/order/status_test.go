package order_test

import (
	"testing"

	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	legal := map[order.Status][]order.Status{
		order.Pending:   {order.Assigned, order.Cancelled},
		order.Assigned:  {order.PickedUp, order.Cancelled},
		order.PickedUp:  {order.Delivered, order.Cancelled},
		order.Delivered: {},
		order.Cancelled: {},
	}

	for _, from := range order.Statuses() {
		for _, to := range order.Statuses() {
			want := false
			for _, allowed := range legal[from] {
				if allowed == to {
					want = true
				}
			}
			assert.Equal(t, want, order.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, order.CanTransition("lost", order.Cancelled))
	assert.False(t, order.CanTransition(order.Pending, "lost"))
}

func TestAllowedTransitions(t *testing.T) {
	t.Run("should list reachable statuses", func(t *testing.T) {
		assert.ElementsMatch(t, []order.Status{order.PickedUp, order.Cancelled}, order.AllowedTransitions(order.Assigned))
	})

	t.Run("should be empty for terminal statuses", func(t *testing.T) {
		assert.Empty(t, order.AllowedTransitions(order.Delivered))
		assert.Empty(t, order.AllowedTransitions(order.Cancelled))
	})

	t.Run("should return a copy of the table", func(t *testing.T) {
		next := order.AllowedTransitions(order.Pending)
		next[0] = order.Delivered

		assert.Equal(t, []order.Status{order.Assigned, order.Cancelled}, order.AllowedTransitions(order.Pending))
	})
}

func TestTransition(t *testing.T) {
	t.Run("should return target for legal move", func(t *testing.T) {
		next, err := order.Transition(order.PickedUp, order.Delivered)

		require.NoError(t, err)
		assert.Equal(t, order.Delivered, next)
	})

	t.Run("should return state error for illegal move", func(t *testing.T) {
		next, err := order.Transition(order.Delivered, order.Pending)

		require.Error(t, err)
		assert.Equal(t, order.Delivered, next)
		var stateErr *errs.StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "delivered", stateErr.From)
		assert.Equal(t, "pending", stateErr.To)
		assert.Equal(t, errs.CodeState, errs.CodeOf(err))
	})
}

func TestStatus_Properties(t *testing.T) {
	t.Run("terminal", func(t *testing.T) {
		assert.True(t, order.Delivered.IsTerminal())
		assert.True(t, order.Cancelled.IsTerminal())
		assert.False(t, order.Pending.IsTerminal())
		assert.False(t, order.Status("lost").IsTerminal())
	})

	t.Run("requires courier", func(t *testing.T) {
		assert.False(t, order.Pending.RequiresCourier())
		assert.True(t, order.Assigned.RequiresCourier())
		assert.True(t, order.PickedUp.RequiresCourier())
		assert.True(t, order.Delivered.RequiresCourier())
		assert.False(t, order.Cancelled.RequiresCourier())
	})

	t.Run("parse", func(t *testing.T) {
		s, err := order.ParseStatus("picked_up")
		require.NoError(t, err)
		assert.Equal(t, order.PickedUp, s)

		_, err = order.ParseStatus("shipped")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
