package types

import "time"

// ExecutionStatus enumerates terminal and in-flight states of a workflow
// node execution.
type ExecutionStatus string

const (
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionSucceeded ExecutionStatus = "succeeded"
	ExecutionFailed    ExecutionStatus = "failed"
)

// Execution is a workflow-node execution log entry. Inputs and Outputs hold
// the payload as decoded JSON mappings; when persisted, oversized payloads are
// truncated inline and offloaded in full to blob storage.
type Execution struct {
	ID         ExecutionID
	WorkflowID string
	NodeID     string
	Title      string
	Index      int
	Status     ExecutionStatus
	Error      string
	Inputs     map[string]any
	Outputs    map[string]any
	CreatedAt  time.Time
	FinishedAt *time.Time

	// InputsTruncated / OutputsTruncated record at write time whether the
	// stored field is a truncated copy. A field is truncated exactly when
	// its offload file pointer exists; consumers rely on these flags, never
	// on deep-equality checks.
	InputsTruncated  bool
	OutputsTruncated bool
}

// OffloadRecord points at the full, untruncated payloads of one execution in
// blob storage. One-to-one with the execution row; present iff at least one
// field was offloaded. Immutable after creation, deleted only via cascade
// when the owning execution is deleted.
type OffloadRecord struct {
	ExecutionID   ExecutionID
	InputsFileID  *FileID
	OutputsFileID *FileID
	CreatedAt     time.Time
}

// Empty reports whether no field was offloaded. An empty record is never
// persisted.
func (r *OffloadRecord) Empty() bool {
	return r == nil || (r.InputsFileID == nil && r.OutputsFileID == nil)
}
