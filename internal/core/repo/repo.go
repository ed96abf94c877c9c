// Package repo persists node executions, truncating oversized inputs and
// outputs and offloading the untouched payload to blob storage.
//
// Write path per field: estimate the compact-JSON size without serializing;
// below the threshold the field is stored verbatim. Above it, the full
// payload is uploaded first, then the in-row copy is truncated and marked.
// The execution row and its offload record commit in one transaction, so a
// failed write never leaves a dangling file reference in the database
// (orphaned blobs are tolerated and cleaned up separately).
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/shortstop/internal/core/db"
	"github.com/solatis/shortstop/internal/core/filestore"
	"github.com/solatis/shortstop/internal/truncate"
	"github.com/solatis/shortstop/internal/types"
)

// ExecutionRepository stores and retrieves workflow node executions.
type ExecutionRepository struct {
	queries   *db.Queries
	uploader  filestore.Uploader
	truncator *truncate.Truncator
	threshold int
}

// NewExecutionRepository wires storage, blob uploads and the truncator.
// threshold is the compact-JSON byte size above which a field is offloaded.
func NewExecutionRepository(queries *db.Queries, uploader filestore.Uploader, truncator *truncate.Truncator, threshold int) (*ExecutionRepository, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("%w: offload threshold must be positive, got %d", types.ErrInvalidLimit, threshold)
	}
	return &ExecutionRepository{
		queries:   queries,
		uploader:  uploader,
		truncator: truncator,
		threshold: threshold,
	}, nil
}

// fieldResult carries the stored form of one payload field after processing.
type fieldResult struct {
	storedJSON string
	truncated  bool
	fileID     *types.FileID
}

// processField decides between storing a field verbatim and offloading it.
// The uploaded blob always holds the original payload; only the row copy
// is truncated.
func (r *ExecutionRepository) processField(ctx context.Context, field map[string]any) (fieldResult, error) {
	if field == nil {
		return fieldResult{}, nil
	}

	size, err := truncate.EstimateSize(field)
	if err != nil {
		return fieldResult{}, fmt.Errorf("failed to estimate payload size: %w", err)
	}

	raw, err := json.Marshal(field)
	if err != nil {
		return fieldResult{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	if size <= r.threshold {
		return fieldResult{storedJSON: string(raw)}, nil
	}

	fileID, err := r.uploader.Upload(ctx, raw)
	if err != nil {
		return fieldResult{}, fmt.Errorf("failed to offload payload: %w", err)
	}

	result, err := r.truncator.Truncate(types.ObjectSegment(field))
	if err != nil {
		return fieldResult{}, fmt.Errorf("failed to truncate payload: %w", err)
	}

	marked := markTruncated(result.Segment)
	stored, err := json.Marshal(marked)
	if err != nil {
		return fieldResult{}, fmt.Errorf("failed to encode truncated payload: %w", err)
	}

	return fieldResult{
		storedJSON: string(stored),
		truncated:  true,
		fileID:     &fileID,
	}, nil
}

// markTruncated tags a truncated result so readers can tell the row copy is
// partial. Object results carry the marker key in a shallow copy: the
// truncator may hand back the caller's own map, which must stay untouched.
// A string fallback gets wrapped since there is nowhere to put the key.
func markTruncated(seg types.Segment) map[string]any {
	if seg.Kind == types.KindObject {
		m, ok := seg.Value.(map[string]any)
		if ok {
			marked := make(map[string]any, len(m)+1)
			for k, v := range m {
				marked[k] = v
			}
			marked[types.TruncatedKey] = true
			return marked
		}
	}
	return map[string]any{
		types.TruncatedKey: true,
		"value":            seg.Value,
	}
}

// Save persists an execution, offloading oversized inputs and outputs.
// Uploads run before the transaction opens: if a later step fails, the
// orphaned blob is harmless, while a row pointing at a missing blob is not.
func (r *ExecutionRepository) Save(ctx context.Context, exec *types.Execution) error {
	inputs, err := r.processField(ctx, exec.Inputs)
	if err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	outputs, err := r.processField(ctx, exec.Outputs)
	if err != nil {
		return fmt.Errorf("outputs: %w", err)
	}

	exec.InputsTruncated = inputs.truncated
	exec.OutputsTruncated = outputs.truncated

	now := time.Now().UTC()
	if exec.CreatedAt.IsZero() {
		exec.CreatedAt = now
	}

	tx, err := r.queries.DB().Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var finishedAt any
	if exec.FinishedAt != nil {
		finishedAt = exec.FinishedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = r.queries.ExecTx(tx, "insert-execution",
		string(exec.ID), exec.WorkflowID, exec.NodeID, exec.Title, exec.Index,
		string(exec.Status), exec.Error,
		nullableJSON(inputs.storedJSON), nullableJSON(outputs.storedJSON),
		inputs.truncated, outputs.truncated,
		exec.CreatedAt.Format(time.RFC3339Nano), finishedAt,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert execution: %w", err)
	}

	if inputs.fileID != nil || outputs.fileID != nil {
		_, err = r.queries.ExecTx(tx, "insert-offload",
			string(exec.ID), fileIDValue(inputs.fileID), fileIDValue(outputs.fileID),
			now.Format(time.RFC3339Nano),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert offload record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit execution: %w", err)
	}

	return nil
}

// executionRow mirrors the executions table for sqlx scanning.
type executionRow struct {
	ExecutionID      string         `db:"execution_id"`
	WorkflowID       string         `db:"workflow_id"`
	NodeID           string         `db:"node_id"`
	Title            string         `db:"title"`
	NodeIndex        int            `db:"node_index"`
	Status           string         `db:"status"`
	Error            string         `db:"error"`
	Inputs           sql.NullString `db:"inputs"`
	Outputs          sql.NullString `db:"outputs"`
	InputsTruncated  bool           `db:"inputs_truncated"`
	OutputsTruncated bool           `db:"outputs_truncated"`
	CreatedAt        string         `db:"created_at"`
	FinishedAt       sql.NullString `db:"finished_at"`
}

func (row *executionRow) toExecution() (*types.Execution, error) {
	exec := &types.Execution{
		ID:               types.ExecutionID(row.ExecutionID),
		WorkflowID:       row.WorkflowID,
		NodeID:           row.NodeID,
		Title:            row.Title,
		Index:            row.NodeIndex,
		Status:           types.ExecutionStatus(row.Status),
		Error:            row.Error,
		InputsTruncated:  row.InputsTruncated,
		OutputsTruncated: row.OutputsTruncated,
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	exec.CreatedAt = createdAt

	if row.FinishedAt.Valid {
		finishedAt, err := time.Parse(time.RFC3339Nano, row.FinishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid finished_at: %w", err)
		}
		exec.FinishedAt = &finishedAt
	}

	if row.Inputs.Valid {
		if err := json.Unmarshal([]byte(row.Inputs.String), &exec.Inputs); err != nil {
			return nil, fmt.Errorf("invalid inputs payload: %w", err)
		}
	}
	if row.Outputs.Valid {
		if err := json.Unmarshal([]byte(row.Outputs.String), &exec.Outputs); err != nil {
			return nil, fmt.Errorf("invalid outputs payload: %w", err)
		}
	}

	return exec, nil
}

// Get retrieves an execution by ID.
func (r *ExecutionRepository) Get(ctx context.Context, id types.ExecutionID) (*types.Execution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row executionRow
	if err := r.queries.Get("get-execution", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", types.ErrExecutionNotFound, id)
		}
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}

	return row.toExecution()
}

// ListByWorkflow returns all executions for a workflow ordered by node index.
func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*types.Execution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []executionRow
	if err := r.queries.Select("list-executions-by-workflow", &rows, workflowID); err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	execs := make([]*types.Execution, 0, len(rows))
	for i := range rows {
		exec, err := rows[i].toExecution()
		if err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}
	return execs, nil
}

// offloadRow mirrors the execution_offloads table.
type offloadRow struct {
	ExecutionID   string         `db:"execution_id"`
	InputsFileID  sql.NullString `db:"inputs_file_id"`
	OutputsFileID sql.NullString `db:"outputs_file_id"`
	CreatedAt     string         `db:"created_at"`
}

func (row *offloadRow) toRecord() (*types.OffloadRecord, error) {
	rec := &types.OffloadRecord{
		ExecutionID: types.ExecutionID(row.ExecutionID),
	}
	createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	rec.CreatedAt = createdAt

	if row.InputsFileID.Valid {
		id, err := types.ParseFileID(row.InputsFileID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid inputs_file_id: %w", err)
		}
		rec.InputsFileID = &id
	}
	if row.OutputsFileID.Valid {
		id, err := types.ParseFileID(row.OutputsFileID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid outputs_file_id: %w", err)
		}
		rec.OutputsFileID = &id
	}
	return rec, nil
}

// GetOffload returns the offload record for an execution, or nil when the
// execution was small enough to store inline.
func (r *ExecutionRepository) GetOffload(ctx context.Context, id types.ExecutionID) (*types.OffloadRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var row offloadRow
	if err := r.queries.Get("get-offload", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get offload record: %w", err)
	}
	return row.toRecord()
}

// Delete removes an execution. The offload row goes with it via ON DELETE
// CASCADE; the returned record lists blob IDs the caller should clean up.
func (r *ExecutionRepository) Delete(ctx context.Context, id types.ExecutionID) (*types.OffloadRecord, error) {
	record, err := r.GetOffload(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.queries.Exec("delete-execution", string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to delete execution: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrExecutionNotFound, id)
	}

	return record, nil
}

func nullableJSON(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func fileIDValue(id *types.FileID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}
