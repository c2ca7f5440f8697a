package spin

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrIncomplete is matched by *IncompleteError.
var ErrIncomplete = errors.New("feedback incomplete")

// IncompleteError lists the questions that still need an answer.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("feedback incomplete: unanswered %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

// Answers maps a question id to a string (single), a list of strings
// (multiple), or a row to column map (matrix). Decoded JSON shapes are
// accepted as well.
type Answers map[string]any

// Validate checks every question of set against its completeness rule and
// returns the answers in canonical form.
func Validate(set QuestionSet, answers Answers) (map[string]any, error) {
	out := make(map[string]any, len(set.Questions))
	var missing []string

	for _, q := range set.Questions {
		v, ok := canonical(q, answers[q.ID])
		if !ok {
			missing = append(missing, q.ID)
			continue
		}
		out[q.ID] = v
	}
	if len(missing) > 0 {
		return nil, &IncompleteError{Missing: missing}
	}
	return out, nil
}

func canonical(q Question, raw any) (any, bool) {
	switch q.Kind {
	case KindSingle:
		choices := stringList(raw)
		if len(choices) != 1 || !slices.Contains(q.Options, choices[0]) {
			return nil, false
		}
		return choices[0], true

	case KindMultiple:
		choices := stringList(raw)
		if len(choices) == 0 {
			return nil, false
		}
		seen := make(map[string]bool, len(choices))
		out := make([]string, 0, len(choices))
		for _, c := range choices {
			if !slices.Contains(q.Options, c) {
				return nil, false
			}
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
		return out, true

	case KindMatrix:
		cells := stringMap(raw)
		out := make(map[string]string, len(q.Rows))
		for _, row := range q.Rows {
			col, ok := cells[row]
			if !ok || !slices.Contains(q.Columns, col) {
				return nil, false
			}
			out[row] = col
		}
		return out, true
	}
	return nil, false
}

func stringList(raw any) []string {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}

func stringMap(raw any) map[string]string {
	switch v := raw.(type) {
	case map[string]string:
		return v
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out[k] = s
			}
		}
		return out
	}
	return nil
}
