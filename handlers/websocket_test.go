package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"blast-arena/server/messages"
	"blast-arena/server/models"
	"blast-arena/server/network"
	"blast-arena/server/persistence"
	"blast-arena/server/services"
)

type testServer struct {
	*httptest.Server
	matches *services.MatchManager
	clients *ClientManager
}

// newTestServer serves /ws with matches that only advance when stepped.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("new json store: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	matches := services.NewMatchManager(ctx, store, "classic", false, services.MatchConfig{
		MaxPlayers:   4,
		BombRange:    2,
		TickInterval: time.Millisecond,
	})
	clients := NewClientManager()
	matches.OnCreate(clients.WatchMatch)
	players := services.NewPlayerService(matches)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWebSocketHandler(players, clients))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, matches: matches, clients: clients}
}

func (s *testServer) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type frame struct {
	Type    messages.MessageType `json:"type"`
	Payload json.RawMessage      `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, msgType messages.MessageType, payload interface{}) {
	t.Helper()
	if err := conn.WriteJSON(messages.BaseMessage{Type: msgType, Payload: payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// expect reads frames until one of the wanted type arrives.
func expect(t *testing.T, conn *websocket.Conn, want messages.MessageType, target interface{}) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if f.Type != want {
			continue
		}
		if target != nil {
			if err := json.Unmarshal(f.Payload, target); err != nil {
				t.Fatalf("decode %s: %v", want, err)
			}
		}
		return
	}
}

func expectError(t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()
	var errMsg messages.ErrorMessage
	expect(t, conn, messages.MessageTypeError, &errMsg)
	if errMsg.Code != code {
		t.Fatalf("expected error code %s, got %s (%s)", code, errMsg.Code, errMsg.Message)
	}
}

func TestJoinMoveAndErrors(t *testing.T) {
	srv := newTestServer(t)
	conn := srv.dial(t, "")

	send(t, conn, messages.MessageTypeMove, messages.MoveMessage{Direction: "north"})
	expectError(t, conn, messages.CodeNotJoined)

	send(t, conn, messages.MessageTypeJoin, messages.JoinMessage{Username: "ada"})
	var joined messages.JoinSuccessMessage
	expect(t, conn, messages.MessageTypeJoinSuccess, &joined)
	if joined.PlayerID == "" || joined.MatchID != services.DefaultMatchID {
		t.Fatalf("unexpected join reply %+v", joined)
	}

	var update messages.UpdateMessage
	expect(t, conn, messages.MessageTypeUpdate, &update)
	if len(update.Players) != 1 || update.Players[0].ID != joined.PlayerID {
		t.Fatalf("update should list the new player, got %+v", update.Players)
	}
	if len(update.Stage) != models.MaxStageHeight {
		t.Fatalf("expected %d stage rows, got %d", models.MaxStageHeight, len(update.Stage))
	}

	send(t, conn, messages.MessageTypeJoin, messages.JoinMessage{Username: "ada"})
	expectError(t, conn, messages.CodeJoinFailed)

	send(t, conn, messages.MessageTypeMove, messages.MoveMessage{Direction: "up"})
	expectError(t, conn, messages.CodeMoveFailed)

	send(t, conn, "dance", nil)
	expectError(t, conn, messages.CodeUnknownMessageType)

	send(t, conn, messages.MessageTypeMove, messages.MoveMessage{Direction: "north"})
	send(t, conn, messages.MessageTypePlantBomb, messages.PlantBombMessage{})
	send(t, conn, messages.MessageTypePlantBomb, messages.PlantBombMessage{})
	expectError(t, conn, messages.CodePlantFailed)

	match, ok := srv.matches.GetMatch(joined.MatchID)
	if !ok {
		t.Fatal("match should exist")
	}
	if _, world := match.Snapshot(); len(world.Bombs()) != 1 {
		t.Fatalf("expected one bomb, got %d", len(world.Bombs()))
	}

	match.Step(models.DefaultBombLifetime)
	var eliminated messages.EliminatedMessage
	expect(t, conn, messages.MessageTypeEliminated, &eliminated)
	if eliminated.PlayerID != joined.PlayerID || eliminated.Username != "ada" {
		t.Fatalf("unexpected elimination %+v", eliminated)
	}
}

func TestDisconnectLeavesMatch(t *testing.T) {
	srv := newTestServer(t)
	conn := srv.dial(t, "")

	send(t, conn, messages.MessageTypeJoin, messages.JoinMessage{Username: "bob", Match: "duel"})
	var joined messages.JoinSuccessMessage
	expect(t, conn, messages.MessageTypeJoinSuccess, &joined)
	if joined.MatchID != "duel" {
		t.Fatalf("expected match duel, got %s", joined.MatchID)
	}
	conn.Close()

	match, _ := srv.matches.GetMatch("duel")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, world := match.Snapshot(); len(world.Players()) == 0 && srv.clients.Count() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("player was not removed after disconnect")
}

func TestMsgpackFrames(t *testing.T) {
	srv := newTestServer(t)
	conn := srv.dial(t, "?codec=msgpack")
	codec := network.MsgpackCodec{}

	data, err := codec.Marshal(messages.BaseMessage{
		Type:    messages.MessageTypeJoin,
		Payload: messages.JoinMessage{Username: "cy"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	frameType, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if frameType != websocket.BinaryMessage {
		t.Fatalf("expected binary frame, got %d", frameType)
	}

	var base messages.BaseMessage
	if err := codec.Unmarshal(reply, &base); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if base.Type != messages.MessageTypeJoinSuccess {
		t.Fatalf("expected join_success, got %s", base.Type)
	}
	var joined messages.JoinSuccessMessage
	if err := network.DecodePayload(codec, base.Payload, &joined); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if joined.PlayerID == "" {
		t.Fatal("missing player id")
	}
}

func TestUnknownCodecRejected(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/ws?codec=xml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
