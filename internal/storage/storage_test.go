// File: internal/storage/storage_test.go
package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestSaveAndReadBack(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save([]byte("image bytes"), "photo.PNG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Errorf("stored extension = %q, want lowercase .png", filepath.Ext(path))
	}

	name := filepath.Base(path)
	if !store.Exists(name) {
		t.Fatalf("saved file not found: %s", name)
	}

	data, err := store.ReadAll(name)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(data, []byte("image bytes")) {
		t.Errorf("read back %q", data)
	}
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Save([]byte("one"), "same.txt")
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Save([]byte("two"), "same.txt")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two saves produced the same path: %s", a)
	}
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save([]byte("binary"), "malware.exe"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v, want ErrUnsupportedType", err)
	}
	if _, err := store.Save([]byte("noext"), "README"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("got %v, want ErrUnsupportedType", err)
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := newTestStore(t)

	big := bytes.Repeat([]byte("x"), MaxUploadBytes+1)
	if _, err := store.Save(big, "big.txt"); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("got %v, want ErrFileTooLarge", err)
	}
}

func TestResolveBlocksTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"../secret.txt", "a/b.txt", strings.Repeat("../", 5) + "etc/passwd"} {
		if _, err := store.Resolve(name); !errors.Is(err, ErrFileNotFound) {
			t.Errorf("Resolve(%q) = %v, want ErrFileNotFound", name, err)
		}
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save([]byte("temp"), "temp.txt")
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Base(path)

	if err := store.Remove(name); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if store.Exists(name) {
		t.Error("file still exists after Remove")
	}
	if err := store.Remove(name); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("second Remove = %v, want ErrFileNotFound", err)
	}
}
