package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// drain reads every message currently buffered on ch without blocking.
func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func countEvents(msgs []string, eventType string) int {
	n := 0
	for _, m := range msgs {
		if strings.Contains(m, "event: "+eventType+"\n") {
			n++
		}
	}
	return n
}

func TestEventPayloadFormat(t *testing.T) {
	ev := Event{Type: "content.created", Data: map[string]string{"path": "a.md"}}
	raw, err := ev.payload()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := "event: content.created\ndata: {\"path\":\"a.md\"}\n\n"
	if string(raw) != want {
		t.Errorf("payload = %q, want %q", raw, want)
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	if got := b.ClientCount(); got != 0 {
		t.Fatalf("ClientCount = %d, want 0", got)
	}
	ch := b.Subscribe()
	if got := b.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}
	b.Unsubscribe(ch)
	if got := b.ClientCount(); got != 0 {
		t.Fatalf("ClientCount after unsubscribe = %d, want 0", got)
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "content.created", Data: map[string]string{"path": "a.md"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: content.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"a.md"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishContentEvent_ReloadThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Two changes in quick succession: both content events go out, but
	// only the first one is followed by a reload.
	b.PublishContentEvent("created", "a.md")
	b.PublishContentEvent("updated", "b.md")

	time.Sleep(50 * time.Millisecond)
	msgs := drain(ch)

	if got := countEvents(msgs, "reload"); got != 1 {
		t.Errorf("reload events = %d, want 1 (throttled)", got)
	}
	content := countEvents(msgs, "content.created") + countEvents(msgs, "content.updated")
	if content != 2 {
		t.Errorf("content events = %d, want 2", content)
	}
}

func TestReloadThrottleWindowReopens(t *testing.T) {
	b := NewBroker(80 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishContentEvent("created", "a.md")
	b.PublishContentEvent("updated", "b.md")
	time.Sleep(150 * time.Millisecond)
	b.PublishContentEvent("deleted", "b.md")
	time.Sleep(50 * time.Millisecond)

	if got := countEvents(drain(ch), "reload"); got != 2 {
		t.Errorf("reload events = %d, want 2 after throttle window passed", got)
	}
}

func TestPublishContentEventIgnoresUnknownKind(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishContentEvent("renamed", "a.md")

	time.Sleep(50 * time.Millisecond)
	if msgs := drain(ch); len(msgs) != 0 {
		t.Errorf("got %d events for unknown kind, want 0: %v", len(msgs), msgs)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give the handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if got := b.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1 from handler", got)
	}

	b.Publish(Event{Type: "content.updated", Data: map[string]string{"path": "x.md"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: content.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if got := b.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d after disconnect, want 0", got)
	}
}

func TestServeHTTPHeaders(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if got := w.Header().Get("X-Accel-Buffering"); got != "no" {
		t.Errorf("X-Accel-Buffering = %q, want no", got)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill the client buffer (capacity 64) and keep going; the broker
	// loop must drop instead of blocking.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if got := b.ClientCount(); got != 1 {
		t.Fatalf("ClientCount = %d, want 1", got)
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if got := b.ClientCount(); got != 0 {
		t.Fatalf("ClientCount after close = %d, want 0", got)
	}

	// Safe no-ops after close.
	b.Publish(Event{Type: "content.updated", Data: map[string]string{"path": "x.md"}})
	b.PublishContentEvent("updated", "x.md")
}

func TestSubscribeAfterClose(t *testing.T) {
	b := NewBroker(time.Second)
	b.Close()

	ch := b.Subscribe()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel from stopped broker")
		}
	case <-time.After(time.Second):
		t.Fatal("channel from stopped broker not closed")
	}
}
