package redisbus

import (
  "context"
  "testing"

  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/logger"
)

type fakeBus struct {
  published []events.Message
  onMsg     func(m events.Message)
}

func (b *fakeBus) Publish(ctx context.Context, msg events.Message) error {
  b.published = append(b.published, msg)
  return nil
}

func (b *fakeBus) StartForwarder(ctx context.Context, onMsg func(m events.Message)) error {
  b.onMsg = onMsg
  return nil
}

func (b *fakeBus) Close() error { return nil }

func newBridgeFixture(t *testing.T) (*Bridge, *fakeBus, *events.Hub, *events.Client) {
  t.Helper()
  log, err := logger.New("test")
  if err != nil {
    t.Fatalf("logger init failed: %v", err)
  }
  hub := events.NewHub(log)
  bus := &fakeBus{}
  bridge := NewBridge(log, hub, bus)
  if sErr := bridge.Start(context.Background()); sErr != nil {
    t.Fatalf("Start returned error: %v", sErr)
  }

  client := hub.NewClient(uuid.New())
  hub.AddChannel(client, "user:abc")
  return bridge, bus, hub, client
}

func TestBridgeBroadcastsLocallyAndMirrors(t *testing.T) {
  bridge, bus, _, client := newBridgeFixture(t)

  bridge.Broadcast(events.Message{Channel: "user:abc", Event: events.EventEnrolled})

  select {
  case msg := <-client.Outbound:
    if msg.Origin != "" {
      t.Errorf("local delivery carries origin %q, want empty", msg.Origin)
    }
  default:
    t.Fatal("local subscriber did not receive the message")
  }

  if len(bus.published) != 1 {
    t.Fatalf("published %d messages to redis, want 1", len(bus.published))
  }
  if bus.published[0].Origin == "" {
    t.Error("mirrored message has no origin tag")
  }
}

func TestBridgeForwarderSkipsOwnEcho(t *testing.T) {
  bridge, bus, _, client := newBridgeFixture(t)

  bridge.Broadcast(events.Message{Channel: "user:abc", Event: events.EventEnrolled})
  <-client.Outbound

  // Echo the mirrored message back the way redis would.
  bus.onMsg(bus.published[0])

  select {
  case msg := <-client.Outbound:
    t.Fatalf("own echo was delivered: %+v", msg)
  default:
  }
}

func TestBridgeForwardsForeignMessages(t *testing.T) {
  _, bus, _, client := newBridgeFixture(t)

  bus.onMsg(events.Message{Channel: "user:abc", Event: events.EventUnenrolled, Origin: "other-instance"})

  select {
  case msg := <-client.Outbound:
    if msg.Origin != "" {
      t.Errorf("forwarded message carries origin %q, want empty", msg.Origin)
    }
    if msg.Event != events.EventUnenrolled {
      t.Errorf("event = %q, want %q", msg.Event, events.EventUnenrolled)
    }
  default:
    t.Fatal("foreign message was not delivered")
  }
}
