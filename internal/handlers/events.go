package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/skillforge/skillforge-backend/internal/events"
  "github.com/skillforge/skillforge-backend/internal/requestdata"
)

type EventsHandler struct {
  hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
  return &EventsHandler{hub: hub}
}

// Stream subscribes the caller to their own channel and serves SSE until
// the connection drops.
func (eh *EventsHandler) Stream(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
    return
  }
  client := eh.hub.NewClient(rd.UserID)
  eh.hub.AddChannel(client, events.UserChannel(rd.UserID))
  defer eh.hub.CloseClient(client)

  eh.hub.ServeHTTP(c.Writer, c.Request, client)
}
