package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	mlerror "github.com/msto63/mlang/foundation/core/error"
)

func newTestStore(t *testing.T) *SQLiteHistoryStore {
	t.Helper()
	s, err := NewSQLiteHistoryStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "history.db")})
	if err != nil {
		t.Fatalf("NewSQLiteHistoryStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("a.ml", "PRINT 1", "run-1")

	if len(rec.ID) != 36 {
		t.Errorf("ID = %q, want a UUID", rec.ID)
	}
	if len(rec.SHA256) != 64 {
		t.Errorf("SHA256 = %q, want 64 hex chars", rec.SHA256)
	}
	if rec.Bytes != 7 || rec.RunID != "run-1" || rec.SourcePath != "a.ml" {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if NewRecord("a.ml", "PRINT 1", "").SHA256 != rec.SHA256 {
		t.Error("Same source must hash to the same digest")
	}
	if NewRecord("a.ml", "PRINT 2", "").SHA256 == rec.SHA256 {
		t.Error("Different sources must hash differently")
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := NewRecord("loop.ml", "WHILE x DONE", "run-1")
	rec.Success = false
	rec.ErrorCode = string(mlerror.CodeSyntax)
	rec.ErrorMessage = "expected DONE"
	rec.Line, rec.Column = 3, 7
	rec.Tokens = 4
	rec.Duration = 1500 * time.Microsecond

	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.SourcePath != "loop.ml" || got.Success || got.ErrorCode != "LANG_SYNTAX" ||
		got.Line != 3 || got.Column != 7 || got.Duration != rec.Duration || got.RunID != "run-1" {
		t.Errorf("Get() = %+v, want %+v", got, rec)
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, rec.Timestamp)
	}

	byPrefix, err := s.Get(ctx, rec.ID[:8])
	if err != nil || byPrefix.ID != rec.ID {
		t.Errorf("Get(prefix) = %v, %v", byPrefix, err)
	}

	if _, err := s.Get(ctx, "ffffffff-0000"); !mlerror.HasCode(err, mlerror.CodeNotFound) {
		t.Errorf("Get(unknown) error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Get(ctx, ""); !mlerror.HasCode(err, mlerror.CodeInvalidInput) {
		t.Errorf("Get(\"\") error = %v, want INVALID_INPUT", err)
	}
}

func TestGet_PrefixIsLiteral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := NewRecord("a.ml", "PRINT 1", "run-1")
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for _, prefix := range []string{"%", "_", rec.ID[:3] + "_", rec.ID[:3] + "%"} {
		t.Run(prefix, func(t *testing.T) {
			if _, err := s.Get(ctx, prefix); !mlerror.HasCode(err, mlerror.CodeNotFound) {
				t.Errorf("Get(%q) error = %v, want NOT_FOUND", prefix, err)
			}
		})
	}

	if got, err := s.Get(ctx, rec.ID[:4]); err != nil || got.ID != rec.ID {
		t.Errorf("Get(%q) = %v, %v", rec.ID[:4], got, err)
	}
}

func TestSave_AssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	rec := &Record{SourcePath: "x.ml", SHA256: "00", Success: true}

	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if rec.ID == "" || rec.Timestamp.IsZero() {
		t.Errorf("Save() should assign ID and timestamp, got %+v", rec)
	}
	if err := s.Save(context.Background(), rec); !mlerror.HasCode(err, mlerror.CodeDatabaseError) {
		t.Errorf("Duplicate Save() error = %v, want DATABASE_ERROR", err)
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i, path := range []string{"a.ml", "b.ml", "a.ml", "a.ml"} {
		rec := NewRecord(path, path, "")
		rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		rec.Success = i%2 == 0
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("List() returned %d records, want 4", len(all))
	}
	if !all[0].Timestamp.After(all[3].Timestamp) {
		t.Error("List() should return newest first")
	}

	failed := false
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by path", Filter{SourcePath: "a.ml"}, 3},
		{"failures only", Filter{Success: &failed}, 2},
		{"since", Filter{Since: base.Add(90 * time.Second)}, 2},
		{"limit", Filter{Limit: 3}, 3},
		{"limit and offset", Filter{Limit: 3, Offset: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("List() returned %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestStatsAndPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() on empty store error = %v", err)
	}
	if empty.Total != 0 || !empty.LastParse.IsZero() {
		t.Errorf("Unexpected empty stats: %+v", empty)
	}

	old := NewRecord("old.ml", "PRINT 1", "")
	old.Timestamp = time.Now().UTC().Add(-48 * time.Hour)
	old.Success = true
	old.Duration = 2 * time.Millisecond

	recent := NewRecord("new.ml", "PRINT (", "")
	recent.ErrorCode = string(mlerror.CodeSyntax)
	recent.Duration = 4 * time.Millisecond

	lexical := NewRecord("new.ml", "PRINT #", "")
	lexical.ErrorCode = string(mlerror.CodeLexical)
	lexical.Duration = 6 * time.Millisecond

	for _, rec := range []*Record{old, recent, lexical} {
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 3 || stats.Succeeded != 1 || stats.Failed != 2 || stats.Files != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.ByErrorCode["LANG_SYNTAX"] != 1 || stats.ByErrorCode["LANG_LEXICAL"] != 1 {
		t.Errorf("Unexpected error code counts: %v", stats.ByErrorCode)
	}
	if stats.AvgDuration != 4*time.Millisecond {
		t.Errorf("AvgDuration = %v, want 4ms", stats.AvgDuration)
	}
	if stats.LastParse.Before(recent.Timestamp.Add(-time.Second)) {
		t.Errorf("LastParse = %v, want about %v", stats.LastParse, recent.Timestamp)
	}

	deleted, err := s.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d records, want 1", deleted)
	}
	if _, err := s.Get(ctx, old.ID); !mlerror.HasCode(err, mlerror.CodeNotFound) {
		t.Errorf("Pruned record still present: %v", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteHistoryStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("open error = %v", err)
	}
	rec := NewRecord("a.ml", "PRINT 1", "")
	rec.Success = true
	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	s.Close()

	s, err = NewSQLiteHistoryStore(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	if _, err := s.Get(context.Background(), rec.ID); err != nil {
		t.Errorf("Record lost after reopen: %v", err)
	}
}
