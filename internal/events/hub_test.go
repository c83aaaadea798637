package events

import (
  "testing"

  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/logger"
)

func newTestHub(t *testing.T) *Hub {
  t.Helper()
  log, err := logger.New("test")
  if err != nil {
    t.Fatalf("logger: %v", err)
  }
  return NewHub(log)
}

func TestBroadcastReachesSubscribedClient(t *testing.T) {
  hub := newTestHub(t)
  userID := uuid.New()
  client := hub.NewClient(userID)
  hub.AddChannel(client, UserChannel(userID))

  hub.Broadcast(Message{
    Channel: UserChannel(userID),
    Event:   EventEnrolled,
    Data:    map[string]any{"course_id": uuid.New()},
  })

  select {
  case msg := <-client.Outbound:
    if msg.Event != EventEnrolled {
      t.Errorf("event = %q, want %q", msg.Event, EventEnrolled)
    }
  default:
    t.Fatal("no message delivered to subscribed client")
  }
}

func TestBroadcastSkipsOtherChannels(t *testing.T) {
  hub := newTestHub(t)
  client := hub.NewClient(uuid.New())
  hub.AddChannel(client, UserChannel(client.UserID))

  hub.Broadcast(Message{Channel: UserChannel(uuid.New()), Event: EventEnrolled})

  select {
  case msg := <-client.Outbound:
    t.Fatalf("received message for foreign channel: %+v", msg)
  default:
  }
}

func TestBroadcastEmptyChannelIgnored(t *testing.T) {
  hub := newTestHub(t)
  client := hub.NewClient(uuid.New())
  hub.AddChannel(client, UserChannel(client.UserID))

  hub.Broadcast(Message{Event: EventEnrolled})

  select {
  case <-client.Outbound:
    t.Fatal("empty-channel broadcast delivered")
  default:
  }
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
  hub := newTestHub(t)
  userID := uuid.New()
  client := hub.NewClient(userID)
  hub.AddChannel(client, UserChannel(userID))

  // The outbound buffer holds ten; everything past that is dropped
  // rather than blocking the broadcaster.
  for i := 0; i < 15; i++ {
    hub.Broadcast(Message{Channel: UserChannel(userID), Event: EventLessonCompleted})
  }

  received := 0
drain:
  for {
    select {
    case <-client.Outbound:
      received++
    default:
      break drain
    }
  }
  if received != 10 {
    t.Errorf("delivered = %d, want 10", received)
  }
}

func TestRemoveChannelStopsDelivery(t *testing.T) {
  hub := newTestHub(t)
  userID := uuid.New()
  client := hub.NewClient(userID)
  channel := UserChannel(userID)
  hub.AddChannel(client, channel)
  hub.RemoveChannel(client, channel)

  hub.Broadcast(Message{Channel: channel, Event: EventEnrolled})

  select {
  case <-client.Outbound:
    t.Fatal("received after RemoveChannel")
  default:
  }
}

func TestCloseClientUnsubscribes(t *testing.T) {
  hub := newTestHub(t)
  userID := uuid.New()
  client := hub.NewClient(userID)
  channel := UserChannel(userID)
  hub.AddChannel(client, channel)

  hub.CloseClient(client)

  // Must not panic on a closed outbound channel.
  hub.Broadcast(Message{Channel: channel, Event: EventEnrolled})
  if len(client.Channels) != 0 {
    t.Errorf("channels = %d, want 0 after close", len(client.Channels))
  }
}

func TestUserChannelFormat(t *testing.T) {
  userID := uuid.New()
  if got, want := UserChannel(userID), "user:"+userID.String(); got != want {
    t.Errorf("UserChannel = %q, want %q", got, want)
  }
}
