package filter

import (
	"strconv"
	"strings"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/form"
)

type token struct {
	literal    string
	isRange    bool
	start, end int
}

// parse splits raw on commas. A token with exactly one "-" is an inclusive
// integer range whose bounds must parse.
func parse(raw string) ([]token, error) {
	parts := strings.Split(raw, ",")
	tokens := make([]token, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if strings.Count(p, "-") != 1 {
			tokens = append(tokens, token{literal: p})
			continue
		}
		lo, hi, _ := strings.Cut(p, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, apperror.NewInvalidFilter(raw, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, apperror.NewInvalidFilter(raw, err)
		}
		tokens = append(tokens, token{literal: p, isRange: true, start: start, end: end})
	}
	return tokens, nil
}

func (t token) match(value string) bool {
	if !t.isRange {
		return value == t.literal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	return n >= t.start && n <= t.end
}

// Match keeps the tasks whose normalized value of field matches any token of
// raw. Task order is preserved and a task is kept once even when several
// tokens match it. A range bound that is not an integer is an
// INVALID_FILTER error.
func Match(tasks []form.Task, field form.Field, raw string) ([]form.Task, error) {
	tokens, err := parse(raw)
	if err != nil {
		return nil, err
	}

	out := make([]form.Task, 0, len(tasks))
	for i := range tasks {
		value := form.Display(tasks[i].ValueOf(field))
		for _, tok := range tokens {
			if tok.match(value) {
				out = append(out, tasks[i])
				break
			}
		}
	}
	return out, nil
}

// Count returns the number of tasks Match would keep.
func Count(tasks []form.Task, field form.Field, raw string) (int, error) {
	kept, err := Match(tasks, field, raw)
	if err != nil {
		return 0, err
	}
	return len(kept), nil
}
