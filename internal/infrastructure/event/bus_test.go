package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	err      error
	panics   bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, "test", uuid.New(), uuid.New())
}

func TestPublishDispatchesToSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	a := &recordingHandler{types: []string{"order.shipped"}}
	b := &recordingHandler{types: []string{"order.cancelled"}}
	bus.Subscribe(a)
	bus.Subscribe(b)

	evt := newTestEvent("order.shipped")
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Len(t, a.received, 1)
	assert.Equal(t, evt.EventID(), a.received[0].EventID())
	assert.Empty(t, b.received)
}

func TestPublishWildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	all := &recordingHandler{}
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("a"), newTestEvent("b")))
	assert.Len(t, all.received, 2)
}

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"x"}, err: errors.New("db down")}
	ok := &recordingHandler{types: []string{"x"}}
	bus.Subscribe(failing)
	bus.Subscribe(ok)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	assert.Len(t, ok.received, 1)
}

func TestPublishRecoversFromPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := &recordingHandler{types: []string{"x"}, panics: true}
	ok := &recordingHandler{types: []string{"x"}}
	bus.Subscribe(panicking)
	bus.Subscribe(ok)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	assert.Len(t, ok.received, 1)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := &recordingHandler{types: []string{"x"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("x")))
	assert.Empty(t, h.received)
}
