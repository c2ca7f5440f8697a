package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/passcode"
)

type completion struct {
	eventID string
	yid     string
	team    []model.TeamMember
}

type fakeCompleter struct {
	mu    sync.Mutex
	calls []completion
	fail  map[string]error
	block chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, eventID string, u *model.User, team []model.TeamMember) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, completion{eventID: eventID, yid: u.Yid, team: team})
	return f.fail[u.Email]
}

func newTestConsole(c Completer) *Console {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConsole(passcode.NewGenerator(passcode.ModeLegacy, nil), c, NewLog(0), logger)
}

var testUsers = []model.User{
	{ID: "id1", Yid: "Y1", Name: "Asha", Email: "asha@x.in", Phone: "98", Institute: "Ruia", Class: "FY", Stream: "Arts"},
	{ID: "id2", Yid: "Y2", Name: "Bo", Email: "bo@x.in"},
	{ID: "id3", Yid: "Y3", Name: "Cy", Email: "cy@x.in", Completed: []string{"e1"}},
	{ID: "id4", Yid: "Y4", Name: "No Email"},
}

func testEvent() *model.Event {
	return &model.Event{
		ID:         "e1",
		Title:      "Dance",
		Registered: []string{"Y1", "bo@x.in", "id1", "id3", "Y4", "ghost"},
		Completed:  []string{"id2"},
		RawRegistered: map[string]model.Registration{
			"Y1": {Yid: "Y1", Team: []model.TeamMember{{Yid: "Y1"}, {Yid: "Y2"}}},
		},
	}
}

func TestRoster(t *testing.T) {
	feedback := []model.FeedbackItem{
		{EventID: "e2", UserEmail: "asha@x.in", Emoji: "😐"},
		{EventID: "e1", UserEmail: "asha@x.in", Emoji: "🔥"},
	}

	got := Roster(testEvent(), testUsers, feedback)
	want := []Student{
		{ID: "asha@x.in", Yid: "Y1", Name: "Asha", Phone: "98", School: "Ruia", Details: "FY - Arts", Status: StatusRegistered, Feedback: "🔥"},
		{ID: "bo@x.in", Yid: "Y2", Name: "Bo", Phone: "N/A", School: "N/A", Details: " - ", Status: StatusCompleted},
		{ID: "cy@x.in", Yid: "Y3", Name: "Cy", Phone: "N/A", School: "N/A", Details: " - ", Status: StatusCompleted},
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}

	if got := Roster(nil, testUsers, nil); len(got) != 0 {
		t.Errorf("nil event roster = %+v", got)
	}
}

func TestVisibleEvents(t *testing.T) {
	events := []model.Event{
		{ID: "e1", Title: "Dance", Category: "Cultural"},
		{ID: "e2", Title: "Quiz", Category: "Engagement"},
	}
	tests := []struct {
		name   string
		viewer *model.User
		query  string
		want   []string
	}{
		{"executive", &model.User{Role: model.RoleExecutive, EventAssigned: "Quiz"}, "", []string{"e1", "e2"}},
		{"admin all", &model.User{Role: model.RoleAdmin, EventAssigned: "all"}, "", []string{"e1", "e2"}},
		{"admin unassigned", &model.User{Role: model.RoleAdmin}, "", []string{"e1", "e2"}},
		{"admin assigned", &model.User{Role: model.RoleAdmin, EventAssigned: "Quiz"}, "", []string{"e2"}},
		{"category search", nil, "CULT", []string{"e1"}},
		{"assigned and search miss", &model.User{Role: model.RoleAdmin, EventAssigned: "Quiz"}, "dance", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, e := range VisibleEvents(tt.viewer, events, tt.query) {
				ids = append(ids, e.ID)
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("got %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	c := newTestConsole(&fakeCompleter{})

	if c.Authorize("ops@x.in", "e1", "wrong") {
		t.Fatal("wrong code accepted")
	}
	if c.Authorized("ops@x.in", "e1") {
		t.Fatal("authorized after failed attempt")
	}
	if !c.Authorize("ops@x.in", "e1", strings.ToLower(passcode.Legacy("e1"))) {
		t.Fatal("passcode rejected")
	}
	if !c.Authorize("ops@x.in", "e2", "e2") {
		t.Fatal("raw event id rejected")
	}
	if !c.Authorized("ops@x.in", "e1") || c.Authorized("other@x.in", "e1") {
		t.Error("authorization not scoped to operator")
	}

	c.Revoke("ops@x.in")
	if c.Authorized("ops@x.in", "e1") || c.Authorized("ops@x.in", "e2") {
		t.Error("revoke left events unlocked")
	}

	lines := c.Log().Lines()
	if len(lines) != 3 || !strings.HasSuffix(lines[0], "SYSTEM: Failed authorization attempt for Event ID e1") {
		t.Errorf("log = %v", lines)
	}
}

func TestGrantBonusSendsTeam(t *testing.T) {
	f := &fakeCompleter{}
	c := newTestConsole(f)
	e := testEvent()

	if err := c.GrantBonus(context.Background(), e, testUsers, "bo@x.in"); err != nil {
		t.Fatalf("GrantBonus: %v", err)
	}
	if err := c.GrantBonus(context.Background(), e, testUsers, "cy@x.in"); err != nil {
		t.Fatalf("GrantBonus: %v", err)
	}
	if len(f.calls) != 2 {
		t.Fatalf("calls = %d", len(f.calls))
	}
	if got := f.calls[0]; got.yid != "Y2" || len(got.team) != 2 || got.team[0].Yid != "Y1" {
		t.Errorf("member grant = %+v", got)
	}
	if got := f.calls[1]; got.team != nil {
		t.Errorf("solo grant team = %+v, want nil", got.team)
	}

	err := c.GrantBonus(context.Background(), e, testUsers, "nobody@x.in")
	if !errors.Is(err, ErrUnknownStudent) {
		t.Errorf("unknown student err = %v", err)
	}
}

func TestGrantBonusInFlight(t *testing.T) {
	f := &fakeCompleter{block: make(chan struct{})}
	c := newTestConsole(f)
	e := testEvent()

	done := make(chan error, 1)
	go func() { done <- c.GrantBonus(context.Background(), e, testUsers, "asha@x.in") }()

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := c.inflight.Load("e1\x00asha@x.in"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("first grant never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := c.GrantBonus(context.Background(), e, testUsers, "asha@x.in"); !errors.Is(err, ErrInFlight) {
		t.Errorf("second grant err = %v, want ErrInFlight", err)
	}
	close(f.block)
	if err := <-done; err != nil {
		t.Errorf("first grant: %v", err)
	}
	if len(f.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(f.calls))
	}
}

func TestGrantAll(t *testing.T) {
	f := &fakeCompleter{fail: map[string]error{"asha@x.in": errors.New("boom")}}
	c := newTestConsole(f)
	e := testEvent()
	e.Completed = nil
	e.Registered = append(e.Registered, "Y2")

	res := c.GrantAll(context.Background(), e, testUsers, nil)
	if !slices.Equal(res.Failed, []string{"asha@x.in"}) ||
		!slices.Equal(res.Granted, []string{"bo@x.in"}) ||
		!slices.Equal(res.Skipped, []string{"cy@x.in"}) {
		t.Errorf("result = %+v", res)
	}

	lines := c.Log().Lines()
	if !strings.HasSuffix(lines[0], "Bulk bonus grant initiated for Event e1.") {
		t.Errorf("first log line = %q", lines[0])
	}
}

func TestPasscodes(t *testing.T) {
	c := newTestConsole(&fakeCompleter{})
	codes := c.Passcodes([]model.Event{{ID: "693e7b4c47c3a159b04db138", Title: "Dance"}})
	if len(codes) != 1 || codes[0].Code != "X5JEN99X7P" {
		t.Fatalf("codes = %+v", codes)
	}
	lines := c.Log().Lines()
	if len(lines) != 3 || !strings.HasSuffix(lines[1], "SYSTEM: Dance: X5JEN99X7P") {
		t.Errorf("log = %v", lines)
	}
}

func TestLogBounded(t *testing.T) {
	l := NewLog(2)
	l.now = func() time.Time { return time.Date(2025, 1, 1, 9, 5, 0, 0, time.UTC) }
	l.Add("one")
	l.Add("two %d", 2)
	l.Add("three")

	want := []string{"[09:05:00] SYSTEM: two 2", "[09:05:00] SYSTEM: three"}
	if got := l.Lines(); !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
