package realtime

type SSEEvent string

const (
	SSEEventCallStatus           SSEEvent = "CallStatus"
	SSEEventDialogTurn           SSEEvent = "DialogTurn"
	SSEEventScheduledCallUpdated SSEEvent = "ScheduledCallUpdated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
