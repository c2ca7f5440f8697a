package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mpower/youthopia/internal/admin"
	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/config"
	"github.com/mpower/youthopia/internal/database"
	"github.com/mpower/youthopia/internal/mirror"
	"github.com/mpower/youthopia/internal/redemption"
	"github.com/mpower/youthopia/internal/spin"
)

// festivalAPI fakes the remote API with one student registered for e1.
type festivalAPI struct {
	mu      sync.Mutex
	student map[string]any
	events  []map[string]any
	calls   map[string]int
}

func newFestivalAPI() *festivalAPI {
	return &festivalAPI{
		student: map[string]any{
			"_id": "u1", "Yid": "YTH1", "name": "Asha", "email": "asha@x.in",
			"mobile": "9876543210", "institute": "SIES Nerul", "role": "student",
			"points": 100, "spinsAvailable": 1,
		},
		events: []map[string]any{
			{"_id": "e1", "name": "Quiz", "category": "Engagement", "registered": []any{"YTH1"}, "completed": []any{}},
			{"_id": "e2", "name": "Dance", "category": "Cultural", "registered": []any{}, "completed": []any{}},
		},
		calls: make(map[string]int),
	}
}

func (f *festivalAPI) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *festivalAPI) handler() http.Handler {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}
	ok := func(w http.ResponseWriter, r *http.Request) { reply(w, map[string]any{"success": true}) }

	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) { reply(w, []any{f.student}) })
	mux.HandleFunc("GET /user/data/{yid}", func(w http.ResponseWriter, r *http.Request) { reply(w, f.student) })
	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			reply(w, map[string]any{"message": "Invalid credentials"})
			return
		}
		reply(w, map[string]any{"user": f.student})
	})
	mux.HandleFunc("POST /user/spin/{yid}", func(w http.ResponseWriter, r *http.Request) {
		var req api.SpinRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.student["spinsAvailable"] = f.student["spinsAvailable"].(int) - req.Spins
		f.student["points"] = f.student["points"].(int) + req.Points
		ok(w, r)
	})
	mux.HandleFunc("PUT /user/redeem/{yid}", ok)
	mux.HandleFunc("GET /event", func(w http.ResponseWriter, r *http.Request) { reply(w, f.events) })
	mux.HandleFunc("POST /event/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		var req api.CompleteRequest
		json.NewDecoder(r.Body).Decode(&req)
		for _, e := range f.events {
			if e["_id"] == r.PathValue("id") {
				e["completed"] = append(e["completed"].([]any), req.Yid)
			}
		}
		ok(w, r)
	})
	mux.HandleFunc("GET /redeem", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []any{
			map[string]any{"_id": "g1", "name": "Sipper", "points": 550, "transactions": map[string]any{
				"t1": map[string]any{"_id": "t1", "user": map[string]any{"name": "Bo", "Yid": "YTH2"}, "points": -550},
			}},
		})
	})
	mux.HandleFunc("POST /redeem/{id}/approve", ok)
	mux.HandleFunc("GET /feedback/event", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []any{map[string]any{"_id": "f1", "eventId": "e1", "eventName": "Quiz", "userEmail": "asha@x.in", "emoji": "🔥"}})
	})
	mux.HandleFunc("GET /feedback/spin", func(w http.ResponseWriter, r *http.Request) { reply(w, []any{}) })
	mux.HandleFunc("POST /feedback/spin", ok)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls[r.Method+" "+r.URL.Path]++
		mux.ServeHTTP(w, r)
	})
}

type testServer struct {
	api    *festivalAPI
	srv    *Server
	router http.Handler
}

func setup(t *testing.T) *testServer {
	t.Helper()
	f := newFestivalAPI()
	remote := httptest.NewServer(f.handler())
	t.Cleanup(remote.Close)

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Default()
	cfg.API.BaseURL = remote.URL
	cfg.Spin.AnimationDelay = config.Duration{}
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}

	srv, err := New(db, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return &testServer{api: f, srv: srv, router: srv.Router()}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T, identifier, password string) {
	t.Helper()
	rec := ts.do(t, "POST", "/api/login", map[string]string{"identifier": identifier, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", identifier, rec.Code, rec.Body)
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := setup(t)
	rec := ts.do(t, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[map[string]any](t, rec)["status"]; got != "ok" {
		t.Errorf("status field = %v", got)
	}
}

func TestRoutesNeedSession(t *testing.T) {
	ts := setup(t)
	for _, path := range []string{"/api/me", "/api/state", "/api/spin", "/api/stats", "/api/admin/passcodes"} {
		if rec := ts.do(t, "GET", path, nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, rec.Code)
		}
	}
}

func TestLoginRejected(t *testing.T) {
	ts := setup(t)
	rec := ts.do(t, "POST", "/api/login", map[string]string{"identifier": "9876543210", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	rec = ts.do(t, "POST", "/api/login", map[string]string{"identifier": "", "password": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty identifier status = %d, want 400", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	ts := setup(t)
	var last int
	for range 11 {
		last = ts.do(t, "POST", "/api/login", map[string]string{"identifier": "9876543210", "password": "nope"}).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("11th attempt = %d, want 429", last)
	}
}

func TestStudentSpinAndRedeem(t *testing.T) {
	ts := setup(t)
	ts.login(t, "9876543210", "secret")

	me := decode[map[string]any](t, ts.do(t, "GET", "/api/me", nil))
	if u := me["user"].(map[string]any); u["yid"] != "YTH1" {
		t.Fatalf("me = %+v", me)
	}

	rec := ts.do(t, "POST", "/api/spin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("spin status = %d: %s", rec.Code, rec.Body)
	}
	status := decode[mirror.SpinStatus](t, rec)
	if status.State != spin.StatePendingFeedback || status.Attempt == nil || status.Set == nil {
		t.Fatalf("spin status = %+v", status)
	}
	prize := status.Attempt.Prize

	rec = ts.do(t, "POST", "/api/spin/feedback", map[string]any{"answers": map[string]any{"rating": "5"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("incomplete feedback = %d, want 422", rec.Code)
	}
	if n := ts.api.count("POST /user/spin/YTH1"); n != 0 {
		t.Fatalf("spin consumed %d times before feedback", n)
	}

	answers := map[string]any{"rating": "5", "favorite_aspect": "Prizes", "would_recommend": "Yes"}
	rec = ts.do(t, "POST", "/api/spin/feedback", map[string]any{"answers": answers})
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback status = %d: %s", rec.Code, rec.Body)
	}
	if out := decode[spin.Outcome](t, rec); out.Prize != prize || !out.RedeemPrompt {
		t.Errorf("outcome = %+v, want prize %d", out, prize)
	}
	if u := ts.srv.Mirror().Session(); u.Points != 100+prize || u.SpinsAvailable != 0 {
		t.Errorf("session points %d spins %d", u.Points, u.SpinsAvailable)
	}

	rec = ts.do(t, "POST", "/api/redeem", map[string]string{"item": "Sipper"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("redeem status = %d, want 422", rec.Code)
	}
	if p := decode[redemption.Panel](t, rec); p.Status != redemption.StatusError {
		t.Errorf("panel = %+v", p)
	}
	if n := ts.api.count("PUT /user/redeem/YTH1"); n != 0 {
		t.Errorf("redeem reached the server %d times", n)
	}

	list := decode[map[string]any](t, ts.do(t, "GET", "/api/redemptions?status=pending", nil))
	if reqs := list["requests"].([]any); len(reqs) != 0 {
		t.Errorf("student sees other users' requests: %v", reqs)
	}

	if rec := ts.do(t, "GET", "/api/stats", nil); rec.Code != http.StatusForbidden {
		t.Errorf("student stats = %d, want 403", rec.Code)
	}
}

func TestAdminGrantFlow(t *testing.T) {
	ts := setup(t)
	ts.login(t, "admin@youthopia.com", "123456")

	if rec := ts.do(t, "GET", "/api/admin/events/e1/roster", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("locked roster = %d, want 403", rec.Code)
	}
	if rec := ts.do(t, "POST", "/api/admin/events/e1/authorize", map[string]string{"code": "WRONG"}); rec.Code != http.StatusForbidden {
		t.Fatalf("wrong code = %d, want 403", rec.Code)
	}
	if rec := ts.do(t, "POST", "/api/admin/events/e1/authorize", map[string]string{"code": "e1"}); rec.Code != http.StatusOK {
		t.Fatalf("authorize = %d: %s", rec.Code, rec.Body)
	}

	roster := decode[[]admin.Student](t, ts.do(t, "GET", "/api/admin/events/e1/roster", nil))
	if len(roster) != 1 || roster[0].ID != "asha@x.in" || roster[0].Status != admin.StatusRegistered || roster[0].Feedback != "🔥" {
		t.Fatalf("roster = %+v", roster)
	}

	if rec := ts.do(t, "POST", "/api/admin/events/e1/grant", map[string]string{"email": "nobody@x.in"}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown student = %d, want 404", rec.Code)
	}
	if rec := ts.do(t, "POST", "/api/admin/events/e1/grant", map[string]string{"email": "asha@x.in"}); rec.Code != http.StatusOK {
		t.Fatalf("grant = %d: %s", rec.Code, rec.Body)
	}
	if n := ts.api.count("POST /event/e1/complete"); n != 1 {
		t.Errorf("complete calls = %d, want 1", n)
	}

	res := decode[admin.GrantResult](t, ts.do(t, "POST", "/api/admin/events/e1/grant-all", nil))
	if len(res.Granted) != 0 || len(res.Skipped) != 1 {
		t.Errorf("grant-all = %+v, want the completed student skipped", res)
	}

	lines := decode[[]string](t, ts.do(t, "GET", "/api/admin/log", nil))
	if len(lines) == 0 || !strings.Contains(strings.Join(lines, "\n"), "Admin authorized access for Event ID e1") {
		t.Errorf("log = %v", lines)
	}

	if rec := ts.do(t, "GET", "/api/admin/passcodes", nil); rec.Code != http.StatusForbidden {
		t.Errorf("admin passcodes = %d, want 403", rec.Code)
	}
}

func TestExecutiveViews(t *testing.T) {
	ts := setup(t)
	ts.login(t, "executive@youthopia.com", "789")

	codes := decode[[]admin.EventCode](t, ts.do(t, "GET", "/api/admin/passcodes", nil))
	if len(codes) != 2 || codes[0].Code == "" {
		t.Fatalf("passcodes = %+v", codes)
	}

	if rec := ts.do(t, "GET", "/api/admin/events/e2/roster", nil); rec.Code != http.StatusOK {
		t.Errorf("executive roster = %d, want 200 without passcode", rec.Code)
	}

	groups := decode[[]map[string]any](t, ts.do(t, "GET", "/api/colleges", nil))
	if len(groups) != 1 || groups[0]["key"] != "sies" {
		t.Errorf("colleges = %+v", groups)
	}

	dash := decode[map[string]any](t, ts.do(t, "GET", "/api/stats", nil))
	overview := dash["overview"].(map[string]any)
	if overview["total_students"] != float64(1) || overview["total_registrations"] != float64(1) {
		t.Errorf("overview = %+v", overview)
	}

	rec := ts.do(t, "POST", "/api/redemptions/t1/approve", map[string]string{"goodie_id": "g1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve = %d: %s", rec.Code, rec.Body)
	}
	if n := ts.api.count("POST /redeem/g1/approve"); n != 1 {
		t.Errorf("approve calls = %d", n)
	}
	list := decode[map[string]any](t, ts.do(t, "GET", "/api/redemptions?status=pending", nil))
	if reqs := list["requests"].([]any); len(reqs) != 0 {
		t.Errorf("approved request still pending: %v", reqs)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	ts := setup(t)
	ts.login(t, "9876543210", "secret")
	if rec := ts.do(t, "POST", "/api/logout", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout = %d", rec.Code)
	}
	if rec := ts.do(t, "GET", "/api/me", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := setup(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestLeaderboardAndExport(t *testing.T) {
	ts := setup(t)
	ts.login(t, "9876543210", "secret")

	board := decode[map[string]any](t, ts.do(t, "GET", "/api/leaderboard?limit=5", nil))
	entries := board["entries"].([]any)
	me, _ := board["me"].(map[string]any)
	if len(entries) != 1 || me == nil || me["id"] != "YTH1" || me["rank"] != float64(1) {
		t.Errorf("leaderboard = %+v", board)
	}
	if rec := ts.do(t, "GET", "/api/leaderboard?limit=x", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", rec.Code)
	}
	if rec := ts.do(t, "GET", "/api/users/export", nil); rec.Code != http.StatusForbidden {
		t.Errorf("student export = %d, want 403", rec.Code)
	}

	ts.login(t, "executive@youthopia.com", "789")
	rec := ts.do(t, "GET", "/api/users/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	want := "ID,Name,School,Class,Stream,Bonus\nasha@x.in,Asha,SIES Nerul,,,100\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("export = %q, want %q", got, want)
	}
}
