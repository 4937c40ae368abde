package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/Slowki/chattermouth/pkg/interaction"
)

// TestSocket_DeliversEventsAndAcks spins up a fake socket-mode server: the
// Web API answers apps.connections.open with the test server's own ws
// endpoint, which sends hello plus one events_api envelope and expects an
// ack back.
func TestSocket_DeliversEventsAndAcks(t *testing.T) {
	t.Parallel()

	acked := make(chan string, 1)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/apps.connections.open", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"url":"` + srv.URL + `/link"}`))
	})
	mux.HandleFunc("/link", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("Accept: %v", err)
			return
		}
		ctx := r.Context()

		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"type":"hello"}`))

		envelope := `{
			"envelope_id": "env-1",
			"type": "events_api",
			"payload": {"event": {"type":"message","user":"U1","ts":"1.0","channel":"C1","text":"over the wire"}}
		}`
		_ = conn.Write(ctx, websocket.MessageText, []byte(envelope))

		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Errorf("read ack: %v", err)
			return
		}
		var ack socketAck
		if err := json.Unmarshal(data, &ack); err != nil {
			t.Errorf("decode ack: %v", err)
			return
		}
		acked <- ack.EnvelopeID

		_ = conn.Close(websocket.StatusNormalClosure, "test done")
	})

	received := make(chan string, 1)
	d, err := NewDemux(DemuxConfig{
		API: newFakeAPI(),
		Callback: func(ctx context.Context) error {
			// The seed event is in the queue; surface its text.
			msg, err := interaction.Listen(ctx)
			if err != nil {
				return err
			}
			received <- msg.Content
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewDemux: %v", err)
	}

	client := NewClient("xoxb-bot", "xapp-app")
	client.baseURL = srv.URL
	socket := NewSocket(client, d, nil)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	connErr := socket.runConnection(ctx)
	if connErr == nil {
		t.Fatal("runConnection should return an error when the server closes")
	}

	select {
	case id := <-acked:
		if id != "env-1" {
			t.Errorf("acked envelope = %q, want env-1", id)
		}
	default:
		t.Error("envelope was never acked")
	}

	select {
	case content := <-received:
		if content != "over the wire" {
			t.Errorf("received %q", content)
		}
	case <-time.After(waitTimeout):
		t.Fatal("event never reached the callback")
	}
}
