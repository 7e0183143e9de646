package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	keys     []string
	received []*Envelope
	err      error
}

func (h *recordingHandler) RoutingKeys() []string { return h.keys }

func (h *recordingHandler) Handle(_ context.Context, env *Envelope) error {
	h.received = append(h.received, env)
	return h.err
}

type testEvent struct {
	Text string `json:"text"`
}

func (testEvent) RoutingKey() string { return "capture.item.captured" }

func TestInProcessBus_DeliversToRegisteredHandler(t *testing.T) {
	bus := NewInProcessBus(nil)
	handler := &recordingHandler{keys: []string{"capture.item.captured"}}
	bus.Register(handler)

	userID := uuid.New()
	err := PublishEvent(context.Background(), bus, userID, testEvent{Text: "hello"})
	require.NoError(t, err)

	require.Len(t, handler.received, 1)
	env := handler.received[0]
	assert.Equal(t, "capture.item.captured", env.RoutingKey)
	assert.Equal(t, userID, env.UserID)
	assert.NotEqual(t, uuid.Nil, env.EventID)
	assert.WithinDuration(t, time.Now(), env.OccurredAt, time.Minute)

	var payload testEvent
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "hello", payload.Text)
}

func TestInProcessBus_UnmatchedKeyIsDropped(t *testing.T) {
	bus := NewInProcessBus(nil)
	handler := &recordingHandler{keys: []string{"capture.item.confirmed"}}
	bus.Register(handler)

	err := PublishEvent(context.Background(), bus, uuid.New(), testEvent{Text: "hello"})
	require.NoError(t, err)

	assert.Empty(t, handler.received)
}

func TestInProcessBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewInProcessBus(nil)
	handler := &recordingHandler{
		keys: []string{"capture.item.captured"},
		err:  errors.New("boom"),
	}
	bus.Register(handler)

	err := PublishEvent(context.Background(), bus, uuid.New(), testEvent{Text: "hello"})

	assert.NoError(t, err)
	assert.Len(t, handler.received, 1)
}

func TestInProcessBus_MalformedPayloadIsSkipped(t *testing.T) {
	bus := NewInProcessBus(nil)
	handler := &recordingHandler{keys: []string{"capture.item.captured"}}
	bus.Register(handler)

	err := bus.Publish(context.Background(), "capture.item.captured", []byte("{not json"))

	assert.NoError(t, err)
	assert.Empty(t, handler.received)
}

func TestRegistry_DispatchReachesAllHandlers(t *testing.T) {
	registry := NewRegistry(nil)
	failing := &recordingHandler{keys: []string{"x"}, err: errors.New("boom")}
	healthy := &recordingHandler{keys: []string{"x"}}
	registry.Register(failing)
	registry.Register(healthy)

	err := registry.Dispatch(context.Background(), &Envelope{RoutingKey: "x"})

	assert.Error(t, err)
	assert.Len(t, failing.received, 1)
	assert.Len(t, healthy.received, 1)
}

func TestRegistry_RoutingKeys(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Register(&recordingHandler{keys: []string{"a", "b"}})

	keys := registry.RoutingKeys()

	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}
