// internal/events/bus_test.go
package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/engine"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(zap.NewNop(), 16)
	defer bus.Shutdown(context.Background())

	got := make(chan engine.Event, 1)
	bus.SubscribeFunc(engine.EventSwapExecuted, func(_ context.Context, e engine.Event) error {
		got <- e
		return nil
	})

	bus.Emit(engine.Event{Type: engine.EventSwapExecuted, Timestamp: time.Now()})

	select {
	case e := <-got:
		assert.Equal(t, engine.EventSwapExecuted, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusFiltersByType(t *testing.T) {
	bus := NewBus(zap.NewNop(), 16)
	defer bus.Shutdown(context.Background())

	var swaps atomic.Int64
	bus.SubscribeFunc(engine.EventSwapExecuted, func(_ context.Context, e engine.Event) error {
		swaps.Add(1)
		return nil
	})

	require.NoError(t, bus.PublishSync(context.Background(),
		engine.Event{Type: engine.EventTokenMinted, Timestamp: time.Now()}))
	require.NoError(t, bus.PublishSync(context.Background(),
		engine.Event{Type: engine.EventSwapExecuted, Timestamp: time.Now()}))

	assert.Equal(t, int64(1), swaps.Load())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(zap.NewNop(), 16)
	defer bus.Shutdown(context.Background())

	var count atomic.Int64
	sub := bus.SubscribeFunc(engine.EventTokenMinted, func(_ context.Context, e engine.Event) error {
		count.Add(1)
		return nil
	})

	require.NoError(t, bus.PublishSync(context.Background(),
		engine.Event{Type: engine.EventTokenMinted, Timestamp: time.Now()}))
	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(),
		engine.Event{Type: engine.EventTokenMinted, Timestamp: time.Now()}))

	assert.Equal(t, int64(1), count.Load())
}
