// Package run_repo stores the report run journal in PostgreSQL.
package run_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"crosstab/internal/core/apperror"
	"crosstab/internal/core/id"
	"crosstab/internal/domain/runs"
	"crosstab/internal/infrastructure/storage/postgres"
)

const tableName = "report_runs"

// CompressionAlgo specifies how table outcomes are stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the outcome size above which snapshots are
// zstd-compressed.
const DefaultCompressThreshold = 8 * 1024

var runColumns = postgres.ExtractDBColumns[runs.Run]()

// runRow is a journal row: the run plus its table outcomes, either as JSON
// or as a compressed snapshot.
type runRow struct {
	runs.Run
	TablesJSON  []byte          `db:"tables"`
	Snapshot    []byte          `db:"snapshot"`
	Compression CompressionAlgo `db:"compression"`
}

// RunRepo implements runs.Repository.
type RunRepo struct {
	txManager         *postgres.TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ runs.Repository = (*RunRepo)(nil)

// NewRunRepo creates a new run repository.
func NewRunRepo(txManager *postgres.TxManager) (*RunRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &RunRepo{
		txManager:         txManager,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Save inserts a finished run.
func (r *RunRepo) Save(ctx context.Context, run *runs.Run) error {
	row, err := r.encode(run)
	if err != nil {
		return err
	}

	sql, args, err := r.insertQuery(row).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert %s: %w", tableName, err)
		}
		return nil
	})
}

// Get returns a run with its table outcomes.
func (r *RunRepo) Get(ctx context.Context, runID id.ID) (*runs.Run, error) {
	sql, args, err := r.getQuery(runID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row runRow
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("run", runID.String())
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r.decode(&row)
}

// List returns runs without table outcomes, newest first.
func (r *RunRepo) List(ctx context.Context, filter runs.ListFilter) ([]runs.Run, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]runs.Run, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return items, nil
}

func (r *RunRepo) insertQuery(row *runRow) squirrel.InsertBuilder {
	return r.builder.
		Insert(tableName).
		SetMap(postgres.StructToMap(row))
}

func (r *RunRepo) getQuery(runID id.ID) squirrel.SelectBuilder {
	cols := append(append([]string{}, runColumns...), "tables", "snapshot", "compression")
	return r.builder.
		Select(cols...).
		From(tableName).
		Where(squirrel.Eq{"id": runID}).
		Limit(1)
}

func (r *RunRepo) listQuery(filter runs.ListFilter) squirrel.SelectBuilder {
	q := r.builder.
		Select(runColumns...).
		From(tableName)

	if filter.TaskID != 0 {
		q = q.Where(squirrel.Eq{"task_id": filter.TaskID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": filter.Status})
	}

	q = q.OrderBy("started_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

// encode serializes table outcomes, compressing large ones.
func (r *RunRepo) encode(run *runs.Run) (*runRow, error) {
	row := &runRow{Run: *run, Compression: CompressionNone}
	if len(run.Tables) == 0 {
		return row, nil
	}

	data, err := json.Marshal(run.Tables)
	if err != nil {
		return nil, fmt.Errorf("marshal table outcomes: %w", err)
	}
	if len(data) > r.compressThreshold {
		row.Snapshot = r.encoder.EncodeAll(data, nil)
		row.Compression = CompressionZstd
		return row, nil
	}
	row.TablesJSON = data
	return row, nil
}

func (r *RunRepo) decode(row *runRow) (*runs.Run, error) {
	run := row.Run
	data := row.TablesJSON
	if row.Compression == CompressionZstd && len(row.Snapshot) > 0 {
		decompressed, err := r.decoder.DecodeAll(row.Snapshot, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress table outcomes: %w", err)
		}
		data = decompressed
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &run.Tables); err != nil {
			return nil, fmt.Errorf("unmarshal table outcomes: %w", err)
		}
	}
	return &run, nil
}
