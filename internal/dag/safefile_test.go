package dag

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWrite_AtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	data := []byte("hello world")

	if err := SafeWrite(path, data, 0644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q, want %q", got, data)
	}

	// Verify permissions
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Fatalf("perm = %o, want 0644", info.Mode().Perm())
	}
}

func TestSafeWrite_OverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	if err := SafeWrite(path, []byte("first"), 0644); err != nil {
		t.Fatalf("SafeWrite first: %v", err)
	}
	if err := SafeWrite(path, []byte("second"), 0644); err != nil {
		t.Fatalf("SafeWrite second: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
}

func TestSafeWrite_NoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")

	// Write initial content
	if err := SafeWrite(path, []byte("original"), 0644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	// Try to write to a read-only directory (should fail)
	badPath := filepath.Join(dir, "nodir", "test.txt")
	err := SafeWrite(badPath, []byte("bad"), 0644)
	if err == nil {
		t.Fatal("expected error writing to nonexistent dir")
	}

	// Verify no temp files left behind in dir
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "test.txt" {
			t.Fatalf("unexpected file left behind: %s", e.Name())
		}
	}

	// Original is untouched
	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Fatalf("original corrupted: got %q", got)
	}
}

func TestSafeWrite_SameDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	os.MkdirAll(sub, 0755)

	path := filepath.Join(sub, "data.bin")
	if err := SafeWrite(path, []byte{0x01, 0x02}, 0600); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}

	// Temp files should be in sub/, not dir/
	entries, _ := os.ReadDir(sub)
	if len(entries) != 1 || entries[0].Name() != "data.bin" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("unexpected files in sub dir: %v", names)
	}
}

func TestWriteJSON_CreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staging", "stage.json")

	in := map[string][]string{"add": {"a.txt", "b/c.txt"}}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out map[string][]string
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(out["add"]) != 2 || out["add"][1] != "b/c.txt" {
		t.Fatalf("round trip lost data: %v", out)
	}

	raw, _ := os.ReadFile(path)
	if raw[len(raw)-1] != '\n' {
		t.Fatalf("missing trailing newline: %q", raw)
	}
}

func TestReadJSON_Missing(t *testing.T) {
	var v map[string]string
	err := ReadJSON(filepath.Join(t.TempDir(), "absent.json"), &v)
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := SafeWrite(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("SafeWrite: %v", err)
	}
	var v map[string]string
	if err := ReadJSON(path, &v); err == nil {
		t.Fatal("expected parse error")
	}
}
