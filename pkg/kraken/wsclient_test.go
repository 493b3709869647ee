package kraken

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// go test -v --run TestWSClientSubscribeAndListen
func TestWSClientSubscribeAndListen(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subs := make(chan SubscribeRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var req SubscribeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		subs <- req

		conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"heartbeat"}`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`[1,{"c":["0.5","10"],"v":["1","2"]},"ticker","XRP/USD"]`))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client := NewWSClient(wsURL, []string{"XRP/USD"}, 50*time.Millisecond, zap.NewNop())

	received := make(chan []byte, 4)
	client.SetMessageHandler(func(msg []byte) { received <- msg })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	listenErr := make(chan error, 1)
	go func() { listenErr <- client.Listen(ctx) }()

	select {
	case req := <-subs:
		if req.Event != EventSubscribe || req.Subscription.Name != ChannelTicker {
			t.Errorf("unexpected subscription: %+v", req)
		}
		if len(req.Pair) != 1 || req.Pair[0] != "XRP/USD" {
			t.Errorf("unexpected pairs: %v", req.Pair)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for subscription")
	}

	var frames []string
	for len(frames) < 2 {
		select {
		case msg := <-received:
			frames = append(frames, string(msg))
		case <-ctx.Done():
			t.Fatalf("timed out waiting for frames, got %v", frames)
		}
	}

	msg, err := ParseMessage([]byte(frames[1]))
	if err != nil || msg.Ticker == nil {
		t.Fatalf("expected ticker frame, got %q (%v)", frames[1], err)
	}

	cancel()
	select {
	case <-listenErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

// go test -v --run TestWSClientReconnectResubscribes
func TestWSClientReconnectResubscribes(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subs := make(chan SubscribeRequest, 4)
	var conns atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := conns.Add(1)

		var req SubscribeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		subs <- req

		frame := fmt.Sprintf(`[1,{"c":["%d.5","1"],"v":["1","2"]},"ticker","XRP/USD"]`, n)
		conn.WriteMessage(websocket.TextMessage, []byte(frame))

		if n == 1 {
			return // drop the first connection after one frame
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client := NewWSClient(wsURL, []string{"XRP/USD"}, 20*time.Millisecond, zap.NewNop())

	received := make(chan []byte, 8)
	client.SetMessageHandler(func(msg []byte) { received <- msg })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	listenErr := make(chan error, 1)
	go func() { listenErr <- client.Listen(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case req := <-subs:
			if req.Event != EventSubscribe || len(req.Pair) != 1 || req.Pair[0] != "XRP/USD" {
				t.Errorf("unexpected subscription %d: %+v", i, req)
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for subscription %d", i+1)
		}
	}

	var prices []string
	for len(prices) < 2 {
		select {
		case raw := <-received:
			msg, err := ParseMessage(raw)
			if err != nil || msg.Ticker == nil {
				t.Fatalf("expected ticker frame, got %q (%v)", raw, err)
			}
			prices = append(prices, msg.Ticker.Ticker.LastTradeClosed.Price)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for frames, got %v", prices)
		}
	}
	if prices[0] != "1.5" || prices[1] != "2.5" {
		t.Errorf("expected frames from both connections, got %v", prices)
	}

	cancel()
	select {
	case <-listenErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}

	client.mu.Lock()
	open := client.conn != nil
	client.mu.Unlock()
	if open {
		t.Error("connection left open after Listen returned")
	}
}

// go test -v --run TestWSClientListenClosesReconnectedConn
func TestWSClientListenClosesReconnectedConn(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	client := NewWSClient(wsURL, []string{"XRP/USD"}, time.Millisecond, zap.NewNop())

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.Listen(ctx); err == nil {
		t.Fatal("expected context error from Listen")
	}

	client.mu.Lock()
	open := client.conn != nil
	client.mu.Unlock()
	if open {
		t.Error("connection left open after Listen returned")
	}
}
