package dirvol

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"

	"github.com/picodeck/picodeck/internal/hal"
)

func newTestVolume(t *testing.T) (*Volume, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, name := range []string{"b.mp3", "a.mp3", "c.ogg"} {
		if err := afero.WriteFile(fs, "/vol/"+name, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := fs.MkdirAll("/vol/sub", 0o755); err != nil {
		t.Fatal(err)
	}
	return New(fs, "/vol"), fs
}

func TestTraversalOrderAndPositions(t *testing.T) {
	t.Parallel()

	v, _ := newTestVolume(t)
	if err := v.Rewind(); err != nil {
		t.Fatalf("rewind: %v", err)
	}

	want := []string{"a.mp3", "b.mp3", "c.ogg"}
	for i, name := range want {
		e, ok, err := v.NextEntry()
		if err != nil || !ok {
			t.Fatalf("entry %d: ok=%v err=%v", i, ok, err)
		}
		if e.Name != name || e.Position != uint32(i) {
			t.Errorf("entry %d = %q@%d, want %q@%d", i, e.Name, e.Position, name, i)
		}
	}
	if _, ok, _ := v.NextEntry(); ok {
		t.Fatal("expected traversal exhausted")
	}
}

func TestEntryAtReopensByPosition(t *testing.T) {
	t.Parallel()

	v, _ := newTestVolume(t)
	if err := v.Rewind(); err != nil {
		t.Fatal(err)
	}
	e, err := v.EntryAt(2)
	if err != nil {
		t.Fatalf("EntryAt(2): %v", err)
	}
	if e.Name != "c.ogg" {
		t.Fatalf("EntryAt(2) = %q, want c.ogg", e.Name)
	}

	if _, err := v.EntryAt(9); !errors.Is(err, hal.ErrFileNotFound) {
		t.Fatalf("expected file-not-found, got %v", err)
	}
}

func TestOpenAndCreate(t *testing.T) {
	t.Parallel()

	v, _ := newTestVolume(t)

	f, err := v.Open("a.mp3")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "a.mp3" {
		t.Fatalf("read %q", data)
	}

	if _, err := v.Open("missing.mp3"); !errors.Is(err, hal.ErrFileNotFound) {
		t.Fatalf("expected file-not-found, got %v", err)
	}

	out, err := v.Create("record00.ogg")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := out.Write([]byte("rec")); err != nil {
		t.Fatalf("write: %v", err)
	}
	out.Close()

	ok, err := v.Exists("record00.ogg")
	if err != nil || !ok {
		t.Fatalf("exists: ok=%v err=%v", ok, err)
	}
}

func TestPositionsRefreshOnRewind(t *testing.T) {
	t.Parallel()

	v, fs := newTestVolume(t)
	if err := v.Rewind(); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/vol/0new.mp3", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := v.Rewind(); err != nil {
		t.Fatal(err)
	}
	e, err := v.EntryAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "0new.mp3" {
		t.Fatalf("expected rescan to shift positions, position 0 = %q", e.Name)
	}
}
