package redisbus

import (
  "context"
  "time"

  "github.com/google/uuid"

  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/logger"
)

// Bridge fans broadcasts out both ways: locally through the hub and to
// redis so every other instance can deliver the message to its own
// subscribers. Mirrored messages carry this instance's id so the
// forwarder can skip its own echoes.
type Bridge struct {
  log        *logger.Logger
  hub        *events.Hub
  bus        Bus
  instanceID string
}

func NewBridge(log *logger.Logger, hub *events.Hub, bus Bus) *Bridge {
  return &Bridge{
    log:        log.With("service", "RedisEventBridge"),
    hub:        hub,
    bus:        bus,
    instanceID: uuid.NewString(),
  }
}

// Broadcast delivers locally first, then mirrors to redis. A failed
// mirror is logged and otherwise ignored; local subscribers already got
// the message.
func (br *Bridge) Broadcast(msg events.Message) {
  local := msg
  local.Origin = ""
  br.hub.Broadcast(local)

  msg.Origin = br.instanceID
  ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
  defer cancel()
  if err := br.bus.Publish(ctx, msg); err != nil {
    br.log.Warn("failed to mirror event to redis", "channel", msg.Channel, "error", err)
  }
}

// Start begins forwarding messages mirrored by other instances into the
// local hub.
func (br *Bridge) Start(ctx context.Context) error {
  return br.bus.StartForwarder(ctx, func(m events.Message) {
    if m.Origin == br.instanceID {
      return
    }
    m.Origin = ""
    br.hub.Broadcast(m)
  })
}
