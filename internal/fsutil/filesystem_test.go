package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	if !fsys.Exists("filesystem.go") {
		t.Error("expected filesystem.go to exist")
	}

	if fsys.Exists("nonexistent_file_xyz.go") {
		t.Error("expected nonexistent file to not exist")
	}
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := mfs.WriteFile("/survey/out.html", []byte("<html>"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := mfs.ReadFile("/survey/out.html")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "<html>" {
		t.Errorf("expected %q, got %q", "<html>", data)
	}

	if _, err := mfs.ReadFile("/missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestMemoryFileSystem_Rename(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.WriteFile("/a", []byte("1"), 0644)
	_ = mfs.WriteFile("/b", []byte("old"), 0644)

	if err := mfs.Rename("/a", "/b"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if mfs.Exists("/a") {
		t.Error("source should be gone after rename")
	}
	data, _ := mfs.ReadFile("/b")
	if string(data) != "1" {
		t.Errorf("destination = %q, want %q", data, "1")
	}
	if err := mfs.Rename("/nope", "/c"); err == nil {
		t.Error("expected error renaming a missing file")
	}
}

func TestWriteFileAtomic_Memory(t *testing.T) {
	mfs := NewMemoryFileSystem()

	if err := WriteFileAtomic(mfs, "out/maps/heat.html", []byte("map"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	if data, err := mfs.ReadFile("out/maps/heat.html"); err != nil || string(data) != "map" {
		t.Fatalf("ReadFile = %q, %v", data, err)
	}
	if mfs.Exists("out/maps/.heat.html.tmp") {
		t.Error("temporary file left behind")
	}
	if !mfs.Exists("out/maps") {
		t.Error("expected parent directory to be created")
	}
}

// mkdirCounter records MkdirAll calls on top of a MemoryFileSystem.
type mkdirCounter struct {
	*MemoryFileSystem
	calls int
}

func (c *mkdirCounter) MkdirAll(path string, perm os.FileMode) error {
	c.calls++
	return c.MemoryFileSystem.MkdirAll(path, perm)
}

func TestWriteFileAtomic_ExistingDirSkipsMkdir(t *testing.T) {
	fsys := &mkdirCounter{MemoryFileSystem: NewMemoryFileSystem()}

	if err := WriteFileAtomic(fsys, "out/a.html", []byte("a"), 0644); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteFileAtomic(fsys, "out/b.html", []byte("b"), 0644); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	if err := WriteFileAtomic(fsys, "top.html", []byte("c"), 0644); err != nil {
		t.Fatalf("third write failed: %v", err)
	}
	if fsys.calls != 1 {
		t.Errorf("MkdirAll called %d times, want 1", fsys.calls)
	}
}

func TestWriteFileAtomic_OS(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "fixed.csv")

	if err := WriteFileAtomic(OSFileSystem{}, target, []byte("a,b\n"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "a,b\n" {
		t.Errorf("got %q", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(target))
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}

func TestMemoryFileSystem_StatAndRemove(t *testing.T) {
	mfs := NewMemoryFileSystem()
	_ = mfs.MkdirAll("/data/csv", 0755)
	_ = mfs.WriteFile("/data/csv/run.csv", []byte("12345"), 0600)

	info, err := mfs.Stat("/data/csv/run.csv")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 || info.IsDir() {
		t.Errorf("unexpected info: size=%d dir=%v", info.Size(), info.IsDir())
	}

	dirInfo, err := mfs.Stat("/data")
	if err != nil || !dirInfo.IsDir() {
		t.Errorf("expected /data to be a directory, err=%v", err)
	}

	if err := mfs.Remove("/data/csv/run.csv"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := mfs.Remove("/data/csv/run.csv"); err == nil {
		t.Error("expected error removing twice")
	}
}
