package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-lobby/internal/proto"
)

func doRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoomsAPI(t *testing.T) {
	ts := startTestServer(t, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _ := dial(t, ctx, ts)
	send(t, ctx, conn, proto.CommandCreate, proto.CreateData{RoomName: "ops"})
	expect(t, ctx, conn, withKey(proto.StatusSuccess, "roomName", t))

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/rooms")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list rooms status: %d", resp.StatusCode)
	}
	var rooms proto.RoomsBody
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(rooms.Rooms) != 1 || rooms.Rooms[0].Name != "ops" || rooms.Rooms[0].UsersCount != 1 || rooms.Rooms[0].MaxUsers != 5 {
		t.Fatalf("unexpected rooms: %+v", rooms.Rooms)
	}

	if resp := doRequest(t, http.MethodDelete, ts.URL+"/api/rooms/0"); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("close room status: %d", resp.StatusCode)
	}
	expect(t, ctx, conn, withType(proto.StatusBroadcast, proto.TypeRoomClosed, t))

	// The evicted member is back in the lobby and can create rooms again.
	send(t, ctx, conn, proto.CommandCreate, proto.CreateData{RoomName: "ops-2"})
	entered := expect(t, ctx, conn, withKey(proto.StatusSuccess, "roomName", t))
	if entered.field(t, "roomId") != float64(1) {
		t.Fatalf("room ids must not be reused: %s", entered.Body)
	}

	if resp := doRequest(t, http.MethodDelete, ts.URL+"/api/rooms/0"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("closing a missing room: %d", resp.StatusCode)
	}
	if resp := doRequest(t, http.MethodDelete, ts.URL+"/api/rooms/abc"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("closing with a bad id: %d", resp.StatusCode)
	}
}

func TestUsersAPI(t *testing.T) {
	ts := startTestServer(t, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, id := dial(t, ctx, ts)
	send(t, ctx, conn, proto.CommandNick, proto.NickData{Nickname: "carol"})
	expect(t, ctx, conn, withKey(proto.StatusSuccess, "newNick", t))

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/users")
	var users proto.UsersBody
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users.Users) != 1 || users.Users[0].ID != id || users.Users[0].Nick != "carol" {
		t.Fatalf("unexpected users: %+v", users.Users)
	}
}
