package reports

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"crosstab/internal/core/apperror"
	"crosstab/internal/domain/filter"
	"crosstab/internal/domain/form"
)

var tracer = otel.Tracer("crosstab/reports")

// Builder builds single report tables. A failure aborts the table being
// built only.
type Builder struct {
	cfg   Config
	store Store
}

// NewBuilder creates a builder reading source forms from store.
func NewBuilder(cfg Config, store Store) *Builder {
	return &Builder{cfg: cfg.withDefaults(), store: store}
}

// Build runs DISCOVER_COLUMNS, VALIDATE_SORT, FILTER, GROUP, EVALUATE and
// SORT for one table. The result always carries the stage it stopped at.
func (b *Builder) Build(ctx context.Context, spec TableSpec, rules []filter.Rule) *TableResult {
	ctx, span := tracer.Start(ctx, "report.table",
		trace.WithAttributes(
			attribute.String("report.code", spec.Code),
			attribute.Int("report.form_id", spec.FormID),
			attribute.Int("report.field_id", spec.Field.ID),
		))
	defer span.End()

	res := &TableResult{FieldID: spec.Field.ID, Code: spec.Code, FormID: spec.FormID}
	if err := b.build(ctx, spec, rules, res); err != nil {
		res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, string(res.Stage))
		return res
	}
	res.Stage = StageReady
	span.SetAttributes(attribute.Int("report.rows", len(res.Table.Rows)))
	return res
}

func (b *Builder) build(ctx context.Context, spec TableSpec, rules []filter.Rule, res *TableResult) error {
	res.Stage = StageDiscoverColumns
	descs, directives, warnings := DescribeColumns(spec.Field)
	res.Warnings = append(res.Warnings, warnings...)
	if len(descs) == 0 {
		return apperror.NewConfiguration("report table has no columns").
			WithDetail("table", spec.Code)
	}

	source, err := b.store.Form(ctx, spec.FormID)
	if err != nil {
		return apperror.NewUpstream("get form", err).WithDetail("form_id", spec.FormID)
	}
	resolver := NewResolver(source.FlatFields(), b.cfg.Aliases)

	first := descs[0]
	var firstSource *form.Field
	if f, ok := resolver.Resolve(first.Code); ok && first.Code != "" {
		firstSource = &f
	} else {
		res.Warnings = append(res.Warnings, missing(first, spec.Code))
	}

	bound := make(map[form.FieldID]column, len(descs)-1)
	columns := make([]column, 0, len(descs)-1)
	for _, d := range descs[1:] {
		col, ok := classify(d, b.cfg, resolver)
		if !ok {
			res.Warnings = append(res.Warnings, missing(d, spec.Code))
			continue
		}
		bound[col.ID] = col
		columns = append(columns, col)
	}

	res.Stage = StageValidateSort
	for _, d := range directives {
		col, ok := bound[d.ColumnID]
		if ok && col.numeric() {
			continue
		}
		name := ""
		for _, desc := range descs {
			if desc.ID == d.ColumnID {
				name = desc.Name
			}
		}
		return apperror.NewConfiguration(fmt.Sprintf("sort column %q is not numeric", name)).
			WithDetail("table", spec.Code).
			WithDetail("column_id", d.ColumnID)
	}

	res.Stage = StageFilter
	registry, err := b.store.Registry(ctx, spec.FormID)
	if err != nil {
		return apperror.NewUpstream("get registry", err).WithDetail("form_id", spec.FormID)
	}
	var tasks []form.Task
	if registry != nil && registry.Tasks != nil {
		tasks = registry.Tasks
	}
	fragment := ""
	if len(rules) > 0 {
		filtered, err := filter.Apply(ctx, tasks, rules, resolver.Exact, b.store)
		if err != nil {
			return err
		}
		tasks = filtered.Tasks
		fragment = filtered.Fragment
		res.Warnings = append(res.Warnings, filtered.Misses...)
	}

	res.Stage = StageGroup
	rows, groups := Partition(tasks, firstSource, first.ID, b.cfg.TotalLabel)

	res.Stage = StageEvaluate
	ev := evaluator{host: b.cfg.RegistryHost, formID: spec.FormID, filterFragment: fragment}
	for _, col := range columns {
		if err := ev.evaluate(col, rows, groups); err != nil {
			return err
		}
	}

	res.Stage = StageSort
	Sort(rows, directives)

	res.Table = &Table{FieldID: spec.Field.ID, Rows: rows}
	return nil
}

func missing(d ColumnDescriptor, table string) *apperror.AppError {
	return apperror.NewResolutionMiss("column has no source field").
		WithDetail("table", table).
		WithDetail("column_id", d.ID).
		WithDetail("column_name", d.Name).
		WithDetail("code", d.Code)
}
