package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func testMedia(t *testing.T) map[string]Medium {
	t.Helper()
	dir := t.TempDir()

	fm, err := NewFileMedium(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("creating file medium: %v", err)
	}
	bm, err := NewBoltMedium(filepath.Join(dir, "bolt", "desk.db"))
	if err != nil {
		t.Fatalf("creating bolt medium: %v", err)
	}
	t.Cleanup(func() { _ = bm.Close() })

	return map[string]Medium{
		"memory": NewMemoryMedium(),
		"file":   fm,
		"bolt":   bm,
	}
}

func TestMedium_LoadAbsentKey(t *testing.T) {
	for name, m := range testMedia(t) {
		t.Run(name, func(t *testing.T) {
			data, err := m.Load("missing")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if data != nil {
				t.Errorf("expected nil data for absent key, got %q", data)
			}
		})
	}
}

func TestMedium_StoreLoadRemove(t *testing.T) {
	for name, m := range testMedia(t) {
		t.Run(name, func(t *testing.T) {
			if err := m.Store("weatherEntries", []byte(`[{"id":1}]`)); err != nil {
				t.Fatalf("store: %v", err)
			}
			got, err := m.Load("weatherEntries")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if string(got) != `[{"id":1}]` {
				t.Errorf("expected stored blob back, got %q", got)
			}

			if err := m.Store("weatherEntries", []byte(`[]`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _ = m.Load("weatherEntries")
			if string(got) != `[]` {
				t.Errorf("expected overwritten blob, got %q", got)
			}

			if err := m.Remove("weatherEntries"); err != nil {
				t.Fatalf("remove: %v", err)
			}
			got, _ = m.Load("weatherEntries")
			if got != nil {
				t.Errorf("expected nil after remove, got %q", got)
			}
			if err := m.Remove("weatherEntries"); err != nil {
				t.Errorf("removing an absent key should not fail: %v", err)
			}
		})
	}
}

func TestMedium_EmptyKeyRejected(t *testing.T) {
	for name, m := range testMedia(t) {
		t.Run(name, func(t *testing.T) {
			if err := m.Store("", []byte("x")); err == nil {
				t.Error("expected error for empty key")
			}
		})
	}
}

func TestMemoryMedium_LoadReturnsCopy(t *testing.T) {
	m := NewMemoryMedium()
	if err := m.Store("k", []byte("abc")); err != nil {
		t.Fatal(err)
	}
	got, _ := m.Load("k")
	got[0] = 'z'
	again, _ := m.Load("k")
	if string(again) != "abc" {
		t.Errorf("mutating a loaded blob changed the medium: %q", again)
	}
}

func TestFileMedium_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	m, err := NewFileMedium(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := m.Store("registeredUsers", []byte("[]")); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "registeredUsers.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected only registeredUsers.json, got %v", names)
	}
}

func TestFileMedium_KeyForPath(t *testing.T) {
	dir := t.TempDir()
	m, err := NewFileMedium(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{filepath.Join(dir, "weatherEntries.json"), "weatherEntries", true},
		{filepath.Join(dir, "user.json"), "user", true},
		{filepath.Join(dir, ".weatherEntries-123.tmp"), "", false},
		{filepath.Join(dir, "notes.txt"), "", false},
		{filepath.Join(dir, "sub", "weatherEntries.json"), "", false},
	}
	for _, tt := range tests {
		got, ok := m.KeyForPath(tt.path)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("KeyForPath(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBoltMedium_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.db")
	m, err := NewBoltMedium(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Store("registeredUsers", []byte(`[{"id":9}]`)); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	m2, err := NewBoltMedium(path)
	if err != nil {
		t.Fatal(err)
	}
	defer m2.Close()
	got, err := m2.Load("registeredUsers")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `[{"id":9}]` {
		t.Errorf("expected data to survive reopen, got %q", got)
	}
}
