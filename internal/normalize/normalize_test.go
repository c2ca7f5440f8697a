package normalize

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/mpower/youthopia/internal/model"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func decodeObjects(t *testing.T, s string) []map[string]any {
	t.Helper()
	var v []map[string]any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func TestIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"keyed with team", `{"U1": {"Yid": "U1", "team": [{"Yid": "U2"}]}}`, []string{"U1", "U2"}},
		{"keyed inner yid differs", `{"k": {"Yid": "U9"}}`, []string{"k", "U9"}},
		{"keyed sorted", `{"B": {}, "A": {}}`, []string{"A", "B"}},
		{"string array", `["U1", "U2", "U1"]`, []string{"U1", "U2"}},
		{"object array", `[{"_id": "m1", "Yid": "U1"}, {"id": "U2"}]`, []string{"m1", "U1", "U2"}},
		{"number", `0`, []string{}},
		{"null", `null`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IDs(decodeJSON(t, tt.raw))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IDs(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEventMembersUnion(t *testing.T) {
	registered := decodeJSON(t, `{"U1": {"Yid": "U1", "team": [{"Yid": "U2"}, {"Yid": "U3"}]}}`)
	participants := decodeJSON(t, `["U3", {"Yid": "U4"}]`)
	teams := decodeJSON(t, `[{"members": ["U5", {"_id": "U1"}]}]`)

	got := EventMembers(registered, participants, teams)
	want := []string{"U1", "U2", "U3", "U4", "U5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EventMembers = %v, want %v", got, want)
	}
}

func TestRegistrations(t *testing.T) {
	raw := decodeJSON(t, `{"U1": {"Yid": "U1", "name": "Asha", "team": [{"Yid": "U2", "name": "Ravi"}]}, "U7": {}}`)
	regs := Registrations(raw)
	if len(regs) != 2 {
		t.Fatalf("len = %d, want 2", len(regs))
	}
	if regs["U1"].Name != "Asha" || len(regs["U1"].Team) != 1 || regs["U1"].Team[0].Yid != "U2" {
		t.Errorf("U1 = %+v", regs["U1"])
	}
	if regs["U7"].Yid != "U7" {
		t.Errorf("U7 yid = %q, want key fallback", regs["U7"].Yid)
	}
	if Registrations(decodeJSON(t, `["U1"]`)) != nil {
		t.Error("expected nil for array form")
	}
}

func TestUserMapping(t *testing.T) {
	raw := decodeObjects(t, `[{
		"_id": "m1", "Yid": "Y1", "name": "Asha", "email": "asha@example.com",
		"mobile": 9876543210, "age": "19", "points": 120, "spins": 2,
		"registered": [{"_id": "e1"}, "e2"], "completed": {"e1": {}},
		"history": [{"_id": "t1", "event": "spin", "points": 30, "createdAt": "2025-12-10T10:00:00Z"}]
	}]`)

	users := Users(raw)
	if len(users) != 1 {
		t.Fatalf("len = %d", len(users))
	}
	u := users[0]
	if u.ID != "m1" || u.Yid != "Y1" {
		t.Errorf("ids = %q/%q", u.ID, u.Yid)
	}
	if u.Phone != "9876543210" {
		t.Errorf("phone = %q", u.Phone)
	}
	if u.Age != 19 {
		t.Errorf("age = %d", u.Age)
	}
	if u.SpinsAvailable != 2 {
		t.Errorf("spins = %d, want 2 from spins fallback", u.SpinsAvailable)
	}
	if u.Role != model.RoleStudent {
		t.Errorf("role = %q", u.Role)
	}
	if !reflect.DeepEqual(u.Registered, []string{"e1", "e2"}) {
		t.Errorf("registered = %v", u.Registered)
	}
	if !reflect.DeepEqual(u.Completed, []string{"e1"}) {
		t.Errorf("completed = %v", u.Completed)
	}
	if len(u.Transactions) != 1 || u.Transactions[0].Points != 30 {
		t.Errorf("transactions = %+v", u.Transactions)
	}
}

func TestSpinsPrecedence(t *testing.T) {
	raw := decodeObjects(t, `[{"_id": "a", "spinsAvailable": 0, "spins": 5}, {"_id": "b", "spin": 3}, {"_id": "c"}]`)
	users := Users(raw)
	want := []int{0, 3, 0}
	reported := []bool{true, true, false}
	for i, u := range users {
		if u.SpinsAvailable != want[i] || u.SpinsReported != reported[i] {
			t.Errorf("user %s spins = %d (reported %v), want %d (%v)", u.ID, u.SpinsAvailable, u.SpinsReported, want[i], reported[i])
		}
	}
}

func TestUsersDropsRecordsWithoutID(t *testing.T) {
	users := Users(decodeObjects(t, `[{"name": "ghost"}, {"id": "u1"}]`))
	if len(users) != 1 || users[0].ID != "u1" {
		t.Errorf("users = %+v", users)
	}
}

func TestLeaderboardUsers(t *testing.T) {
	users := LeaderboardUsers(decodeObjects(t, `[{"_id": "m1", "name": "Asha", "points": 40}]`))
	if len(users) != 1 {
		t.Fatalf("len = %d", len(users))
	}
	if users[0].Email != "missing_m1@example.com" {
		t.Errorf("email = %q", users[0].Email)
	}
	if users[0].SpinsAvailable != 0 || users[0].Points != 40 {
		t.Errorf("user = %+v", users[0])
	}
}

func TestEventMapping(t *testing.T) {
	raw := decodeObjects(t, `[{
		"_id": "e1", "name": "Debate", "location": "Hall A",
		"schedule": {"start": "2025-12-20T14:30:00.000Z"},
		"images": ["a.png"], "prizes": {"second": "300", "first": "500"},
		"registered": {"U1": {"Yid": "U1", "team": [{"Yid": "U2"}]}},
		"completed": 0
	}, {"name": "no id"}]`)

	events := Events(raw)
	if len(events) != 1 {
		t.Fatalf("len = %d", len(events))
	}
	e := events[0]
	if e.Title != "Debate" || e.Location != "Hall A" {
		t.Errorf("title/location = %q/%q", e.Title, e.Location)
	}
	if e.Date != "2025-12-20" || e.Time != "14:30" {
		t.Errorf("date/time = %q %q", e.Date, e.Time)
	}
	if e.Category != "General" {
		t.Errorf("category = %q", e.Category)
	}
	if e.Image != "a.png" {
		t.Errorf("image = %q", e.Image)
	}
	if !reflect.DeepEqual(e.Prizes, []string{"first: 500", "second: 300"}) {
		t.Errorf("prizes = %v", e.Prizes)
	}
	if !reflect.DeepEqual(e.Registered, []string{"U1", "U2"}) {
		t.Errorf("registered = %v", e.Registered)
	}
	if len(e.Completed) != 0 {
		t.Errorf("completed = %v", e.Completed)
	}
	if e.TeamOf("U2").Yid != "U1" {
		t.Errorf("TeamOf(U2) = %+v", e.TeamOf("U2"))
	}
}

func TestEventWithoutSchedule(t *testing.T) {
	e, ok := Event(map[string]any{"_id": "e1", "name": "Quiz", "category": "Engagement"})
	if !ok {
		t.Fatal("expected ok")
	}
	if e.Date != "TBD" || e.Time != "TBD" {
		t.Errorf("date/time = %q %q", e.Date, e.Time)
	}
	if e.Category != model.CategoryEngagement {
		t.Errorf("category = %q", e.Category)
	}
}

func TestRedemptions(t *testing.T) {
	raw := decodeObjects(t, `[{
		"_id": "g1", "name": "Sipper", "points": 550,
		"transactions": {
			"b": {"_id": "t2", "user": "Y2", "points": -550},
			"a": {"_id": "t1", "user": {"name": "Asha", "Yid": "Y1"}, "points": -550, "createdAt": "2025-12-10T10:00:00Z"},
			"c": "garbage",
			"d": {"user": "Y3"}
		},
		"approved": [{"_id": "t0", "user": {"_id": "m9"}, "points": 550}]
	}]`)

	items, reqs := Redemptions(raw)
	if len(items) != 1 || items[0].Cost != 550 {
		t.Fatalf("items = %+v", items)
	}
	if len(reqs) != 3 {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].ID != "t1" || reqs[0].User != "Asha" || reqs[0].UserID != "Y1" || reqs[0].Cost != 550 {
		t.Errorf("first = %+v", reqs[0])
	}
	if reqs[1].User != "Unknown User" || reqs[1].UserID != "Y2" {
		t.Errorf("second = %+v", reqs[1])
	}
	if reqs[2].Status != model.RedemptionApproved || reqs[2].UserID != "m9" || reqs[2].GoodieID != "g1" {
		t.Errorf("third = %+v", reqs[2])
	}
	if !reqs[1].Time.IsZero() {
		t.Error("expected zero time when createdAt missing")
	}
}

func TestFindUser(t *testing.T) {
	users := []model.User{{ID: "m1", Yid: "Y1", Email: "Asha@Example.com"}}
	for _, key := range []string{"m1", "Y1", "asha@example.com"} {
		if FindUser(users, key) == nil {
			t.Errorf("FindUser(%q) = nil", key)
		}
	}
	if FindUser(users, "") != nil {
		t.Error("empty key should not match")
	}
}
