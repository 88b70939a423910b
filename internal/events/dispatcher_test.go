package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("boom")

	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second")
		assert.Equal(t, int64(3), e.EntityID)
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), New(EventTicketCreated, 3, nil, nil))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestNewStampsIdentity(t *testing.T) {
	a := New(EventCustomerCreated, 1, nil, CustomerPayload{Email: "a@b.co"})
	b := New(EventCustomerCreated, 1, nil, nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}

func TestSubscribeAllSeesEveryTypeAfterTypedHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string

	d.SubscribeAll(func(_ context.Context, e Event) error {
		seen = append(seen, "all:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventCustomerDeleted, func(context.Context, Event) error {
		seen = append(seen, "typed")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventCustomerDeleted, 1, nil, nil)))
	require.NoError(t, d.Publish(context.Background(), New(EventTicketAssigned, 2, nil, nil)))
	assert.Equal(t, []string{"typed", "all:customer_deleted", "all:ticket_assigned"}, seen)
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	ran := false
	d.Subscribe(EventTicketUpdated, func(context.Context, Event) error {
		panic("bad handler")
	})
	d.SubscribeAll(func(context.Context, Event) error {
		ran = true
		return nil
	})

	err := d.Publish(context.Background(), New(EventTicketUpdated, 9, nil, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.True(t, ran)
}
