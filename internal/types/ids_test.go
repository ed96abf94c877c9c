package types

import (
	"testing"
	"time"
)

func TestParseExecutionID(t *testing.T) {
	id := NewExecutionID()
	parsed, err := ParseExecutionID(string(id))
	if err != nil {
		t.Fatalf("ParseExecutionID failed on generated id: %v", err)
	}
	if parsed != id {
		t.Errorf("got %s, want %s", parsed, id)
	}

	if _, err := ParseExecutionID("not-a-uuid"); err == nil {
		t.Error("expected error for malformed execution id")
	}
}

func TestParseFileID(t *testing.T) {
	id := NewFileID()
	parsed, err := ParseFileID(string(id))
	if err != nil {
		t.Fatalf("ParseFileID failed on generated id: %v", err)
	}
	if parsed != id {
		t.Errorf("got %s, want %s", parsed, id)
	}

	if _, err := ParseFileID(""); err == nil {
		t.Error("expected error for empty file id")
	}
}

func TestFileIDTime(t *testing.T) {
	before := time.Now().Add(-time.Minute)
	id := NewFileID()
	after := time.Now().Add(time.Minute)

	ts := FileIDTime(id)
	if ts.IsZero() {
		t.Fatal("expected embedded timestamp for generated file id")
	}
	if ts.Before(before) || ts.After(after) {
		t.Errorf("timestamp %v outside [%v, %v]", ts, before, after)
	}

	if !FileIDTime(FileID("junk")).IsZero() {
		t.Error("expected zero time for malformed file id")
	}
}
