package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventCallStatus, Data: "call CA1: answered"})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventDialogTurn, Data: "client: yes"})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventCallStatus {
		t.Fatalf("first event: want=%s got=%s", SSEEventCallStatus, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventDialogTurn {
		t.Fatalf("second event: want=%s got=%s", SSEEventDialogTurn, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventCallStatus, Data: "hangup"})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Data != "hangup" {
		t.Fatalf("reconnect data: want=hangup got=%v", got.Data)
	}
}

func TestSSEHubDropsSlowSubscriberOnly(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	channel := "owner"

	slow := hub.NewSSEClient(uuid.New())
	fast := hub.NewSSEClient(uuid.New())
	hub.AddChannel(slow, channel)
	hub.AddChannel(fast, channel)

	for i := 0; i < outboundBuffer; i++ {
		hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventCallStatus, Data: i})
		recvMessage(t, fast.Outbound, time.Second)
	}
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventCallStatus, Data: "overflow"})

	if got := recvMessage(t, fast.Outbound, time.Second); got.Data != "overflow" {
		t.Fatalf("fast subscriber: want=overflow got=%v", got.Data)
	}
	select {
	case <-slow.Done():
	default:
		t.Fatalf("slow subscriber should be stopped")
	}
	if n := hub.SubscriberCount(channel); n != 1 {
		t.Fatalf("subscribers: want=1 got=%d", n)
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()

	hub.Broadcast(SSEMessage{Channel: "c", Event: SSEEventCallStatus, Data: "call CA1: answered"})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: message") || !strings.Contains(body, "call CA1: answered") {
		t.Fatalf("stream body missing event, got=%q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type: want=text/event-stream got=%q", ct)
	}
}
