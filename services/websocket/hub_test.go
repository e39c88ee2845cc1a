package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestClient(h *Hub, location string) *Client {
	return &Client{
		hub:      h,
		send:     make(chan []byte, 8),
		location: location,
	}
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, got %d", n, h.GetClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBroadcastSlotUpdateFiltersByLocation(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	taipei := newTestClient(hub, "台北")
	taoyuan := newTestClient(hub, "桃園")
	hub.register <- taipei
	hub.register <- taoyuan
	waitForClients(t, hub, 2)

	hub.BroadcastSlotUpdate("台北", map[string]interface{}{
		"date": "2025-12-02",
		"time": "12:00-13:00",
	})

	select {
	case raw := <-taipei.send:
		var msg SlotUpdateMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if msg.Type != "slot_update" {
			t.Fatalf("expected slot_update type, got %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatalf("taipei screen never received the update")
	}

	select {
	case raw := <-taoyuan.send:
		t.Fatalf("taoyuan screen must not receive a taipei update: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesEveryLocation(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	taipei := newTestClient(hub, "台北")
	taichung := newTestClient(hub, "台中")
	hub.register <- taipei
	hub.register <- taichung
	waitForClients(t, hub, 2)

	hub.Broadcast(map[string]interface{}{
		"type": "registry_update",
		"kind": "teacher",
	})

	for _, client := range []*Client{taipei, taichung} {
		select {
		case raw := <-client.send:
			var msg map[string]interface{}
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("invalid payload: %v", err)
			}
			if msg["type"] != "registry_update" {
				t.Fatalf("expected registry_update, got %v", msg["type"])
			}
		case <-time.After(time.Second):
			t.Fatalf("%s screen never received the broadcast", client.location)
		}
	}
}

func TestServeWSDeliversSlotUpdates(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "台北")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, 1)

	hub.BroadcastSlotUpdate("台北", map[string]interface{}{
		"date": "2025-12-02",
		"time": "12:00-13:00",
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg SlotUpdateMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if msg.Type != "slot_update" {
		t.Fatalf("expected slot_update, got %q", msg.Type)
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := newTestClient(hub, "台北")
	hub.register <- client
	waitForClients(t, hub, 1)

	hub.unregister <- client
	waitForClients(t, hub, 0)

	if _, ok := <-client.send; ok {
		t.Fatalf("send channel must be closed on unregister")
	}
}
