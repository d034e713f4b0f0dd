package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notegraph/notegraph/internal/apperr"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "artifacts"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestWriteReadDelete(t *testing.T) {
	s := testStore(t)

	if err := s.Write("node-1.md", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	data, err := s.Read("node-1.md")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q", data)
	}

	// Overwrite.
	if err := s.Write("node-1.md", []byte("updated")); err != nil {
		t.Fatal(err)
	}
	data, _ = s.Read("node-1.md")
	if string(data) != "updated" {
		t.Errorf("content after overwrite = %q", data)
	}

	if err := s.Delete("node-1.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("node-1.md"); !apperr.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
	// Deleting again is a no-op.
	if err := s.Delete("node-1.md"); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestWrite_CreatesDirectoryLazily(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does", "not", "exist")
	s, err := NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write("a.md", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "a.md")); err != nil {
		t.Errorf("file not on disk: %v", err)
	}
}

func TestSafePath_RejectsEscapes(t *testing.T) {
	s := testStore(t)

	for _, name := range []string{"", "../escape.md", "/etc/passwd", "a/../../b.md"} {
		if err := s.Write(name, []byte("x")); apperr.KindOf(err) != apperr.Validation {
			t.Errorf("Write(%q) err = %v, want Validation", name, err)
		}
		if _, err := s.Read(name); apperr.KindOf(err) != apperr.Validation {
			t.Errorf("Read(%q) err = %v, want Validation", name, err)
		}
	}
}

func TestRead_Missing(t *testing.T) {
	s := testStore(t)
	if _, err := s.Read("ghost.md"); !apperr.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}
