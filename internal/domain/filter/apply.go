package filter

import (
	"context"
	"fmt"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/form"
)

// Apply filters tasks by every rule in order (AND across rules, OR across
// the tokens of one rule) and builds the registry back-link of the rules.
//
// Rules whose field code does not resolve and literals that do not map to a
// platform identifier are reported in Result.Misses and otherwise ignored.
// An error means the owning table cannot be built.
func Apply(ctx context.Context, tasks []form.Task, rules []Rule, lookup FieldLookup, src ReferenceSource) (*Result, error) {
	res := &Result{Tasks: tasks}
	var params form.Params

	for _, rule := range rules {
		field, ok := lookup(rule.FieldCode)
		if !ok {
			res.Misses = append(res.Misses,
				apperror.NewResolutionMiss("filter field not found").
					WithDetail("field_code", rule.FieldCode).
					WithDetail("table", rule.Table))
			continue
		}

		kept, err := Match(res.Tasks, field, rule.Value)
		if err != nil {
			return nil, err
		}
		res.Tasks = kept

		ref, found, err := ResolveReference(ctx, field, rule.Value, src)
		if err != nil {
			return nil, apperror.NewUpstream("resolve filter reference", err).
				WithDetail("field_id", field.ID)
		}
		if !found {
			res.Misses = append(res.Misses,
				apperror.NewResolutionMiss(fmt.Sprintf("no registry reference for %q", rule.Value)).
					WithDetail("field_id", field.ID).
					WithDetail("field_name", field.Name).
					WithDetail("field_type", string(field.Type)))
			continue
		}
		params.Set(ref.Key, ref.Value)
	}

	res.Fragment = params.Encode()
	return res, nil
}
