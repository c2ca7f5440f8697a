// Package normalize converts the festival API's heterogeneous payloads into
// canonical model values. Nothing outside this package inspects raw shapes.
package normalize

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/mpower/youthopia/internal/model"
)

// idSet accumulates ids in first-seen order without duplicates.
type idSet struct {
	seen map[string]struct{}
	ids  []string
}

func newIDSet() *idSet {
	return &idSet{seen: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) list() []string {
	if s.ids == nil {
		return []string{}
	}
	return s.ids
}

// memberRef is an array element that identifies a user by any of its ids.
type memberRef struct {
	MongoID string `mapstructure:"_id"`
	ID      string `mapstructure:"id"`
	Yid     string `mapstructure:"Yid"`
	Name    string `mapstructure:"name"`
}

type registrationEntry struct {
	Yid  string      `mapstructure:"Yid"`
	Name string      `mapstructure:"name"`
	Team []memberRef `mapstructure:"team"`
}

type teamEntry struct {
	Members []any `mapstructure:"members"`
}

func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}
	return dec.Decode(input)
}

// addRef adds a string id, or every id of an object reference.
func (s *idSet) addRef(v any) {
	switch ref := v.(type) {
	case string:
		s.add(ref)
	case map[string]any:
		var m memberRef
		if decode(ref, &m) != nil {
			return
		}
		s.add(m.MongoID)
		s.add(m.ID)
		s.add(m.Yid)
	}
}

// addKeyed adds every key of a registration map plus the entry's inner Yid
// and the Yids of its team members. Keys are visited in sorted order so the
// result is stable across polls.
func (s *idSet) addKeyed(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		s.add(k)
		var entry registrationEntry
		if decode(m[k], &entry) != nil {
			continue
		}
		s.add(entry.Yid)
		for _, tm := range entry.Team {
			s.add(tm.Yid)
		}
	}
}

func (s *idSet) addAny(raw any) {
	switch v := raw.(type) {
	case map[string]any:
		s.addKeyed(v)
	case []any:
		for _, item := range v {
			s.addRef(item)
		}
	}
}

// IDs flattens a membership field that may be a keyed object or an array of
// ids / id-bearing objects into a de-duplicated id list.
func IDs(raw any) []string {
	s := newIDSet()
	s.addAny(raw)
	return s.list()
}

// EventMembers returns the union of ids found in the registration field and
// the legacy participants and teams[].members fallbacks.
func EventMembers(registered, participants, teams any) []string {
	s := newIDSet()
	s.addAny(registered)
	if list, ok := participants.([]any); ok {
		for _, p := range list {
			s.addRef(p)
		}
	}
	if list, ok := teams.([]any); ok {
		for _, t := range list {
			var team teamEntry
			if decode(t, &team) != nil {
				continue
			}
			for _, m := range team.Members {
				s.addRef(m)
			}
		}
	}
	return s.list()
}

// Registrations decodes a keyed registration map. Array forms carry no team
// data and yield nil.
func Registrations(raw any) map[string]model.Registration {
	m, ok := raw.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]model.Registration, len(m))
	for key, v := range m {
		var entry registrationEntry
		if decode(v, &entry) != nil {
			continue
		}
		reg := model.Registration{Yid: entry.Yid, Name: entry.Name}
		if reg.Yid == "" {
			reg.Yid = key
		}
		for _, tm := range entry.Team {
			reg.Team = append(reg.Team, model.TeamMember{Yid: tm.Yid, Name: tm.Name})
		}
		out[key] = reg
	}
	return out
}
