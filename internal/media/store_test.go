package media

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "media"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ref, err := store.Save(strings.NewReader("jpeg bytes"), ".JPG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("ref = %q, want .jpg suffix", ref)
	}
	rc, err := store.Open(ref)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "jpeg bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestImportGivesDistinctRefs(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "antes.png")
	if err := os.WriteFile(src, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := NewStore(filepath.Join(dir, "media"))
	if err != nil {
		t.Fatal(err)
	}
	a, err := store.Import(src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	b, err := store.Import(src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if a == b {
		t.Fatalf("refs should differ, both %q", a)
	}
}

func TestPathRejectsForeignRefs(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{"../etc/passwd", "photo.jpg", "AgACAgEAAxkBAAIB"} {
		if _, err := store.Path(ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Path(%q) err = %v, want ErrInvalidRef", ref, err)
		}
	}
}
