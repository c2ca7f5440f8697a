package college

import (
	"testing"

	"github.com/mpower/youthopia/internal/model"
)

func student(id, institute string, events ...string) model.User {
	return model.User{ID: id, Yid: id, Institute: institute, Role: model.RoleStudent, Registered: events}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		rules     Rules
		institute string
		key       string
		display   string
		ok        bool
	}{
		{"keyword", DistributionRules, "K.J. Somaiya Arts", "somaiya", "Somaiya Vidyavihar", true},
		{"multi word keyword", DistributionRules, "Jai Hind", "jaihind", "Jai Hind College", true},
		{"excluded host", DistributionRules, "Birla", "", "", false},
		{"excluded misspelling", DistributionRules, "BK BCK", "", "", false},
		{"excluded generic", DistributionRules, "Sies College", "", "", false},
		{"core words", DistributionRules, "Thakur Institute of Management", "thakur", "Thakur Institute of Management", true},
		{"punctuation", DistributionRules, "Thakur-Vidya, Mandir", "thakur_vidya_mandir", "Thakur-Vidya, Mandir", true},
		{"two core words", DistributionRules, "Mahavidyalaya Pune", "mahavidyalaya_pune", "Mahavidyalaya Pune", true},
		{"only short words", DistributionRules, "XY Z", OtherKey, "XY Z", true},
		{"empty", DistributionRules, "  ", "unknown", unknownInstitute, true},
		{"host counted for events", EventRules, "B.K. Birla College", "birla", "Birla College", true},
		{"events keep generic names", EventRules, "Sies College", "sies", "SIES College", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, display, ok := tt.rules.Classify(tt.institute)
			if ok != tt.ok || key != tt.key || display != tt.display {
				t.Errorf("Classify(%q) = %q, %q, %v; want %q, %q, %v",
					tt.institute, key, display, ok, tt.key, tt.display, tt.ok)
			}
		})
	}
}

func TestClassifyTransliterates(t *testing.T) {
	key, _, ok := DistributionRules.Classify("Écôle Pâtil")
	if !ok || key != "ecole_patil" {
		t.Errorf("key = %q, ok = %v; want ecole_patil", key, ok)
	}
}

func TestDistribute(t *testing.T) {
	users := []model.User{
		student("1", "Thakur Institute", "e1"),
		student("2", "Somaiya", "e1"),
		student("3", "thakur institute", "e2"),
		student("4", "Ruia", "e1"),
		student("5", "KJ Somaiya", "e1"),
		{ID: "6", Institute: "Somaiya", Role: model.RoleAdmin},
		student("7", "Birla"),
	}

	got := DistributionRules.Distribute(users, Options{})
	want := []struct {
		key   string
		name  string
		count int
	}{
		{"thakur", "Thakur Institute", 2},
		{"somaiya", "Somaiya Vidyavihar", 2},
		{"ruia", "Ruia College", 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Key != w.key || got[i].Name != w.name || got[i].Count != w.count {
			t.Errorf("group %d = %+v, want %+v", i, got[i], w)
		}
		if got[i].Students != nil {
			t.Errorf("group %d has students without Detail", i)
		}
	}
	if got[0].Slug != "thakur-institute" {
		t.Errorf("slug = %q", got[0].Slug)
	}
}

func TestDistributeEventAndSearch(t *testing.T) {
	users := []model.User{
		student("1", "Thakur Institute", "e1"),
		student("2", "Somaiya", "e1"),
		student("3", "Somaiya", "e2"),
	}

	got := DistributionRules.Distribute(users, Options{EventID: "e1", Detail: true})
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	if len(got[0].Students) != 1 || got[0].Students[0].ID != "1" {
		t.Errorf("first group students = %+v", got[0].Students)
	}

	got = DistributionRules.Distribute(users, Options{Search: "SOMAIYA"})
	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("search = %+v", got)
	}

	got = DistributionRules.Distribute(nil, Options{})
	if got == nil || len(got) != 0 {
		t.Errorf("empty distribution = %#v, want empty slice", got)
	}
}

func TestEventDistribution(t *testing.T) {
	users := []model.User{
		student("1", "Birla College", "e2"),
		student("2", "Somaiya", "e2"),
		student("3", "Somaiya", "e2", "e1"),
		student("4", "Ruia"),
	}
	events := []model.Event{
		{ID: "e1", Title: "Debate"},
		{ID: "e2", Title: "Dance Battle"},
		{ID: "e3", Title: "Quiz"},
	}

	got := EventDistribution(users, events, "")
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].EventID != "e2" || got[0].Total != 3 {
		t.Errorf("first = %+v, want e2 with 3", got[0])
	}
	if got[0].Colleges[0].Key != "somaiya" || got[0].Colleges[1].Key != "birla" {
		t.Errorf("e2 colleges = %+v", got[0].Colleges)
	}
	if got[2].EventID != "e3" || got[2].Total != 0 {
		t.Errorf("last = %+v, want e3 with 0", got[2])
	}

	got = EventDistribution(users, events, "da")
	if len(got) != 1 || got[0].EventID != "e2" {
		t.Errorf("search = %+v", got)
	}
}
