package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/access"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	_, ok := r.Last()
	assert.False(t, ok)

	require.NoError(t, r.Navigate(access.Pay, map[string]interface{}{"orderId": "O1"}))
	require.NoError(t, r.Navigate(access.Notifications, nil))

	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, access.Notifications, last.Destination)
	assert.Len(t, r.Transitions(), 2)
}

func TestGuarded(t *testing.T) {
	rec := NewRecorder()
	role := "chef"
	g := NewGuarded(rec, func() string { return role })

	err := g.Navigate(access.BroadcastPage, nil)
	assert.ErrorIs(t, err, access.ErrAccessDenied)
	assert.Empty(t, rec.Transitions(), "denied transitions never reach the router")

	require.NoError(t, g.Navigate(access.OrdersPage, nil))

	role = "manager"
	require.NoError(t, g.Navigate(access.BroadcastPage, nil))
	assert.Len(t, rec.Transitions(), 2)
}
