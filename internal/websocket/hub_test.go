package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient creates a Client with a send channel but no connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	c1 := mockClient(hub)
	c2 := mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestNotify(t *testing.T) {
	hub := NewHub(testLogger())
	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.Notify(EntityUser, "updated", "YTH123", map[string]any{"points": float64(30)})

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "user_updated" || got.Entity != EntityUser || got.Action != "updated" {
				t.Errorf("got %+v", got)
			}
			if got.ID != "YTH123" || got.Extra["points"] != float64(30) {
				t.Errorf("got id %q extra %v", got.ID, got.Extra)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestSubscribeFiltersEntities(t *testing.T) {
	hub := NewHub(testLogger())
	c := mockClient(hub)
	c.Subscribe([]string{EntitySpin, " ", EntityUser})
	hub.Register(c)
	defer hub.Unregister(c)

	hub.Notify(EntityRedemption, "approved", "tx1", nil)
	hub.Notify(EntitySpin, "resolved", "YTH1", nil)
	if got := len(c.send); got != 1 {
		t.Fatalf("queued %d messages, want 1", got)
	}
	var got Message
	if err := json.Unmarshal(<-c.send, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Entity != EntitySpin {
		t.Errorf("got %+v", got)
	}

	c.Subscribe(nil)
	hub.Notify(EntityRedemption, "approved", "tx1", nil)
	if got := len(c.send); got != 1 {
		t.Errorf("after unsubscribe queued %d, want 1", got)
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(testLogger())
	hub.Broadcast(NewMessage(EntityState, "refreshed", "", nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(testLogger())
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize+3; i++ {
		hub.Broadcast(NewMessage(EntityState, "refreshed", "", nil))
	}
	if got := len(c.send); got != sendBufferSize {
		t.Errorf("expected %d queued messages, got %d", sendBufferSize, got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(testLogger())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Notify(EntitySpin, "resolved", "", nil)
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients, got %d", got)
	}
}

func TestHandleWebSocket(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(HandleWebSocket(hub, nil, testLogger()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	for hub.ClientCount() == 0 {
		if ctx.Err() != nil {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify(EntityRedemption, "approved", "tx1", nil)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "redemption_approved" || got.ID != "tx1" {
		t.Errorf("got %+v", got)
	}
}

func TestHandleWebSocketSubscription(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(HandleWebSocket(hub, nil, testLogger()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"?entities=spin", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	for hub.ClientCount() == 0 {
		if ctx.Err() != nil {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify(EntityState, "refreshed", "", nil)
	hub.Notify(EntitySpin, "landed", "a1", nil)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "spin_landed" {
		t.Errorf("first message = %+v, want spin_landed", got)
	}
}
