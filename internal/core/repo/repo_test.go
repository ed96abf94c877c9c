package repo

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/solatis/shortstop/internal/core/db"
	"github.com/solatis/shortstop/internal/truncate"
	"github.com/solatis/shortstop/internal/types"
)

// fakeUploader records uploads and hands out real file IDs.
type fakeUploader struct {
	uploads [][]byte
	fail    bool
}

func (f *fakeUploader) Upload(_ context.Context, data []byte) (types.FileID, error) {
	if f.fail {
		return "", errors.New("upload rejected")
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	f.uploads = append(f.uploads, copied)
	return types.NewFileID(), nil
}

func newTestRepo(t *testing.T, uploader *fakeUploader) *ExecutionRepository {
	t.Helper()
	return newTestRepoWithThreshold(t, uploader, types.DefaultOffloadThreshold)
}

func newTestRepoWithThreshold(t *testing.T, uploader *fakeUploader, threshold int) *ExecutionRepository {
	t.Helper()

	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbURL)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.MigrateUp(database); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		t.Fatalf("LoadQueries failed: %v", err)
	}

	truncator, err := truncate.New(truncate.DefaultConfig())
	if err != nil {
		t.Fatalf("New truncator failed: %v", err)
	}

	repo, err := NewExecutionRepository(queries, uploader, truncator, threshold)
	if err != nil {
		t.Fatalf("NewExecutionRepository failed: %v", err)
	}
	return repo
}

func TestSaveAndGetSmallExecution(t *testing.T) {
	uploader := &fakeUploader{}
	repo := newTestRepo(t, uploader)
	ctx := context.Background()

	exec := &types.Execution{
		ID:         types.NewExecutionID(),
		WorkflowID: "wf-1",
		NodeID:     "node-1",
		Title:      "fetch",
		Index:      3,
		Status:     types.ExecutionSucceeded,
		Inputs:     map[string]any{"query": "hello", "limit": float64(10)},
		Outputs:    map[string]any{"rows": []any{"a", "b"}},
	}

	if err := repo.Save(ctx, exec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(uploader.uploads) != 0 {
		t.Errorf("expected no uploads for small payloads, got %d", len(uploader.uploads))
	}
	if exec.InputsTruncated || exec.OutputsTruncated {
		t.Error("small payloads must not be flagged as truncated")
	}

	got, err := repo.Get(ctx, exec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got.Inputs, exec.Inputs) {
		t.Errorf("inputs round-trip mismatch: got %v, want %v", got.Inputs, exec.Inputs)
	}
	if !reflect.DeepEqual(got.Outputs, exec.Outputs) {
		t.Errorf("outputs round-trip mismatch: got %v, want %v", got.Outputs, exec.Outputs)
	}
	if got.Status != types.ExecutionSucceeded {
		t.Errorf("got status %s, want %s", got.Status, types.ExecutionSucceeded)
	}
	if got.Index != 3 {
		t.Errorf("got index %d, want 3", got.Index)
	}

	record, err := repo.GetOffload(ctx, exec.ID)
	if err != nil {
		t.Fatalf("GetOffload failed: %v", err)
	}
	if record != nil {
		t.Errorf("expected no offload record, got %+v", record)
	}
}

func TestSaveOffloadsOversizedInputs(t *testing.T) {
	uploader := &fakeUploader{}
	repo := newTestRepo(t, uploader)
	ctx := context.Background()

	big := strings.Repeat("x", 11000)
	exec := &types.Execution{
		ID:         types.NewExecutionID(),
		WorkflowID: "wf-2",
		NodeID:     "node-2",
		Status:     types.ExecutionSucceeded,
		Inputs:     map[string]any{"big": big},
		Outputs:    map[string]any{"ok": "yes"},
	}

	if err := repo.Save(ctx, exec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Only the oversized field is offloaded, and the blob holds the
	// untouched payload.
	if len(uploader.uploads) != 1 {
		t.Fatalf("expected exactly 1 upload, got %d", len(uploader.uploads))
	}
	if !strings.Contains(string(uploader.uploads[0]), big) {
		t.Error("uploaded blob must contain the original payload")
	}
	if !exec.InputsTruncated {
		t.Error("expected InputsTruncated to be set")
	}
	if exec.OutputsTruncated {
		t.Error("expected OutputsTruncated to be unset")
	}

	got, err := repo.Get(ctx, exec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.InputsTruncated {
		t.Error("expected InputsTruncated on read")
	}
	if marked, ok := got.Inputs[types.TruncatedKey].(bool); !ok || !marked {
		t.Errorf("expected %s marker in stored inputs, got %v", types.TruncatedKey, got.Inputs[types.TruncatedKey])
	}
	stored, ok := got.Inputs["big"].(string)
	if !ok {
		t.Fatalf("expected stored big value to be a string, got %T", got.Inputs["big"])
	}
	if len(stored) >= len(big) {
		t.Errorf("stored value not shrunk: %d bytes", len(stored))
	}
	if !reflect.DeepEqual(got.Outputs, exec.Outputs) {
		t.Errorf("small outputs must survive untouched: got %v", got.Outputs)
	}

	record, err := repo.GetOffload(ctx, exec.ID)
	if err != nil {
		t.Fatalf("GetOffload failed: %v", err)
	}
	if record == nil {
		t.Fatal("expected an offload record")
	}
	if record.InputsFileID == nil {
		t.Error("expected inputs_file_id to be set")
	}
	if record.OutputsFileID != nil {
		t.Errorf("expected outputs_file_id to be unset, got %v", *record.OutputsFileID)
	}
	if record.Empty() {
		t.Error("record with inputs file must not report Empty")
	}
}

func TestSaveDoesNotMutateCallerPayload(t *testing.T) {
	uploader := &fakeUploader{}
	// Threshold below the payload size while the truncation limits stay at
	// their defaults: the payload is offloaded but comes back from the
	// truncator structurally unchanged, possibly as the caller's own map.
	repo := newTestRepoWithThreshold(t, uploader, 16)
	ctx := context.Background()

	inputs := map[string]any{"query": "hello world", "limit": float64(10)}
	exec := &types.Execution{
		ID:         types.NewExecutionID(),
		WorkflowID: "wf-mut",
		NodeID:     "node-mut",
		Status:     types.ExecutionSucceeded,
		Inputs:     inputs,
	}

	if err := repo.Save(ctx, exec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(uploader.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(uploader.uploads))
	}

	if _, found := inputs[types.TruncatedKey]; found {
		t.Errorf("caller payload mutated: %s marker injected into input map", types.TruncatedKey)
	}
	want := map[string]any{"query": "hello world", "limit": float64(10)}
	if !reflect.DeepEqual(inputs, want) {
		t.Errorf("caller payload mutated: got %v, want %v", inputs, want)
	}

	// The stored copy still carries the marker.
	got, err := repo.Get(ctx, exec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if marked, ok := got.Inputs[types.TruncatedKey].(bool); !ok || !marked {
		t.Errorf("expected %s marker in stored inputs, got %v", types.TruncatedKey, got.Inputs[types.TruncatedKey])
	}
}

func TestSaveUploadFailureAbortsWrite(t *testing.T) {
	uploader := &fakeUploader{fail: true}
	repo := newTestRepo(t, uploader)
	ctx := context.Background()

	exec := &types.Execution{
		ID:         types.NewExecutionID(),
		WorkflowID: "wf-3",
		NodeID:     "node-3",
		Status:     types.ExecutionFailed,
		Inputs:     map[string]any{"big": strings.Repeat("y", 11000)},
	}

	if err := repo.Save(ctx, exec); err == nil {
		t.Fatal("expected Save to fail when upload fails")
	}

	// Nothing persisted.
	if _, err := repo.Get(ctx, exec.ID); !errors.Is(err, types.ErrExecutionNotFound) {
		t.Errorf("got %v, want ErrExecutionNotFound", err)
	}
}

func TestDeleteCascadesOffloadRecord(t *testing.T) {
	uploader := &fakeUploader{}
	repo := newTestRepo(t, uploader)
	ctx := context.Background()

	exec := &types.Execution{
		ID:         types.NewExecutionID(),
		WorkflowID: "wf-4",
		NodeID:     "node-4",
		Status:     types.ExecutionSucceeded,
		Inputs:     map[string]any{"big": strings.Repeat("z", 11000)},
	}
	if err := repo.Save(ctx, exec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	record, err := repo.Delete(ctx, exec.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if record == nil || record.InputsFileID == nil {
		t.Fatal("Delete must return the offload record for blob cleanup")
	}

	if _, err := repo.Get(ctx, exec.ID); !errors.Is(err, types.ErrExecutionNotFound) {
		t.Errorf("got %v, want ErrExecutionNotFound after delete", err)
	}

	// Offload row went with the execution via ON DELETE CASCADE.
	gone, err := repo.GetOffload(ctx, exec.ID)
	if err != nil {
		t.Fatalf("GetOffload failed: %v", err)
	}
	if gone != nil {
		t.Errorf("expected cascade to remove offload record, got %+v", gone)
	}
}

func TestDeleteMissingExecution(t *testing.T) {
	repo := newTestRepo(t, &fakeUploader{})

	if _, err := repo.Delete(context.Background(), types.NewExecutionID()); !errors.Is(err, types.ErrExecutionNotFound) {
		t.Errorf("got %v, want ErrExecutionNotFound", err)
	}
}

func TestListByWorkflow(t *testing.T) {
	uploader := &fakeUploader{}
	repo := newTestRepo(t, uploader)
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		exec := &types.Execution{
			ID:         types.NewExecutionID(),
			WorkflowID: "wf-list",
			NodeID:     "node",
			Index:      i,
			Status:     types.ExecutionSucceeded,
		}
		if err := repo.Save(ctx, exec); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	execs, err := repo.ListByWorkflow(ctx, "wf-list")
	if err != nil {
		t.Fatalf("ListByWorkflow failed: %v", err)
	}
	if len(execs) != 3 {
		t.Fatalf("expected 3 executions, got %d", len(execs))
	}
	for i, exec := range execs {
		if exec.Index != i {
			t.Errorf("position %d: got index %d, want %d", i, exec.Index, i)
		}
	}
}
