package report

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/deixis/verdict/internal/expect"
	"github.com/deixis/verdict/internal/verify"
)

// memStore is an in-memory Store that counts calls, for exercising the
// LRU delegation paths.
type memStore struct {
	saves int
	loads int
	recs  map[string]*Record
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]*Record)}
}

func (s *memStore) Save(rec *Record) error {
	s.saves++
	s.recs[rec.ID] = rec
	return nil
}

func (s *memStore) Load(runID string) (*Record, error) {
	s.loads++
	rec, ok := s.recs[runID]
	if !ok {
		return nil, fmt.Errorf("record %s not found", runID)
	}
	return rec, nil
}

func sampleRecord(id string) *Record {
	stdout := "foo\n"
	return &Record{
		ID:           id,
		Program:      "echo",
		Args:         []string{"foo"},
		WantExitCode: 0,
		WantStdout:   &stdout,
		Passed:       true,
		Stdout:       "foo\n",
		Elapsed:      3 * time.Millisecond,
	}
}

func TestNewRecord(t *testing.T) {
	stdout := "ok\n"
	exp := &expect.Expectation{
		Program:  "sh",
		Args:     []string{"-c", "echo ok"},
		ExitCode: 0,
		Stdout:   &stdout,
	}
	v := &verify.Verdict{
		Passed:      false,
		Diagnostics: []string{"Got unexpected stdout output."},
		Result: verify.Result{
			Stdout:   []byte{'h', 'i', 0xFF},
			Stderr:   []byte("warn\n"),
			ExitCode: 2,
			Elapsed:  5 * time.Millisecond,
		},
	}

	rec := NewRecord("run-1", exp, v)
	if rec.ID != "run-1" {
		t.Errorf("ID = %q, want %q", rec.ID, "run-1")
	}
	if rec.Program != "sh" || len(rec.Args) != 2 {
		t.Errorf("command = %q %q, want sh with 2 args", rec.Program, rec.Args)
	}
	if rec.WantExitCode != 0 || rec.WantStdout == nil || *rec.WantStdout != "ok\n" {
		t.Errorf("expectation fields = %d %v, want 0 %q", rec.WantExitCode, rec.WantStdout, "ok\n")
	}
	if rec.Passed {
		t.Error("Passed = true, want false")
	}
	if rec.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", rec.ExitCode)
	}
	if rec.Stdout != "hi�" {
		t.Errorf("Stdout = %q, want lossily decoded %q", rec.Stdout, "hi�")
	}
	if rec.Stderr != "warn\n" {
		t.Errorf("Stderr = %q, want %q", rec.Stderr, "warn\n")
	}
	if len(rec.Diagnostics) != 1 {
		t.Errorf("Diagnostics = %q, want 1 line", rec.Diagnostics)
	}
	if rec.Elapsed != 5*time.Millisecond {
		t.Errorf("Elapsed = %v, want 5ms", rec.Elapsed)
	}
}

func TestDiskStore_SaveLoad(t *testing.T) {
	s := NewDiskStore()
	rec := sampleRecord("disk-1")
	rec.Diagnostics = []string{"Wrong or unexpected exit code 1. Expected 0"}

	if err := s.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("disk-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("Load = %+v, want %+v", got, rec)
	}
}

func TestDiskStore_LoadMissing(t *testing.T) {
	s := NewDiskStore()
	if _, err := s.Load("no-such-run"); err == nil {
		t.Fatal("Load succeeded, want error")
	}
}

func TestLRUStore_ServesFromCache(t *testing.T) {
	back := newMemStore()
	s := NewLRUStore(4, back)

	if err := s.Save(sampleRecord("a")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load("a"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.loads != 0 {
		t.Errorf("backing loads = %d, want 0 (cache hit)", back.loads)
	}
	if back.saves != 1 {
		t.Errorf("backing saves = %d, want 1 (write-through)", back.saves)
	}
}

func TestLRUStore_EvictsOldest(t *testing.T) {
	back := newMemStore()
	s := NewLRUStore(2, back)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(sampleRecord(id)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	// "a" was evicted, so its load must hit the backing store.
	if _, err := s.Load("a"); err != nil {
		t.Fatalf("Load a: %v", err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want 1 (evicted)", back.loads)
	}

	// "c" is still cached.
	if _, err := s.Load("c"); err != nil {
		t.Fatalf("Load c: %v", err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want still 1 (cached)", back.loads)
	}
}

func TestLRUStore_LoadPromotes(t *testing.T) {
	back := newMemStore()
	s := NewLRUStore(2, back)

	s.Save(sampleRecord("a"))
	s.Save(sampleRecord("b"))

	// Touch "a" so that the next insert evicts "b" instead.
	if _, err := s.Load("a"); err != nil {
		t.Fatalf("Load a: %v", err)
	}
	s.Save(sampleRecord("c"))

	if _, err := s.Load("b"); err != nil {
		t.Fatalf("Load b: %v", err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want 1 (b evicted after promotion of a)", back.loads)
	}
}

func TestLRUStore_MissPopulatesCache(t *testing.T) {
	back := newMemStore()
	back.recs["x"] = sampleRecord("x")
	s := NewLRUStore(2, back)

	if _, err := s.Load("x"); err != nil {
		t.Fatalf("Load x: %v", err)
	}
	if _, err := s.Load("x"); err != nil {
		t.Fatalf("Load x again: %v", err)
	}
	if back.loads != 1 {
		t.Errorf("backing loads = %d, want 1 (second load cached)", back.loads)
	}
}
