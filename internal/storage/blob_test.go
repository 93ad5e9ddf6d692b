package storage

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixedNames cycles through a fixed list of names to force collisions.
type fixedNames struct {
	names []string
	at    int
}

func (g *fixedNames) NextName(ext string) string {
	name := g.names[g.at%len(g.names)]
	g.at++
	return name + ext
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), UUIDNames{})
	data := []byte("jkl\n")

	blob, err := store.Write("course1/challenge", "a.py", data)
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	sum := md5.Sum(data)
	if blob.Checksum != hex.EncodeToString(sum[:]) {
		t.Fatalf("expected checksum %x, got %s", sum, blob.Checksum)
	}
	if !strings.HasSuffix(blob.Name, ".py") {
		t.Fatalf("expected extension to be preserved, got %s", blob.Name)
	}

	read, err := store.Read("course1/challenge", blob.Name)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if !bytes.Equal(read, data) {
		t.Fatalf("expected %q, got %q", data, read)
	}
}

func TestWriteTruncatesLongExtension(t *testing.T) {
	store := NewStore(t.TempDir(), UUIDNames{})
	blob, err := store.Write("d", "a.abcdefghijklmnopqrstuvw", []byte("x"))
	if err != nil {
		t.Fatalf("write error: %v", err)
	}
	if !strings.HasSuffix(blob.Name, ".abcdefghi") {
		t.Fatalf("expected extension truncated to 10 bytes, got %s", blob.Name)
	}
}

func TestWriteRetriesOnCollision(t *testing.T) {
	root := t.TempDir()
	// Pre-create files for all but the last candidate name, so the write
	// succeeds only after maxAttempts-1 collisions.
	names := make([]string, maxAttempts)
	for i := range names {
		names[i] = fmt.Sprintf("name-%d", i)
	}
	dir := filepath.Join(root, "d")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	for _, name := range names[:maxAttempts-1] {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("setup error: %v", err)
		}
	}

	store := NewStore(root, &fixedNames{names: names})
	blob, err := store.Write("d", "", []byte("late"))
	if err != nil {
		t.Fatalf("expected success within retry budget, got %v", err)
	}
	if blob.Name != names[maxAttempts-1] {
		t.Fatalf("expected last candidate name, got %s", blob.Name)
	}
}

func TestWriteFailsWhenBudgetExhausted(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "d")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "only"), []byte("keep"), 0o644); err != nil {
		t.Fatalf("setup error: %v", err)
	}

	store := NewStore(root, &fixedNames{names: []string{"only"}})
	if _, err := store.Write("d", "", []byte("new")); !errors.Is(err, ErrNameConflict) {
		t.Fatalf("expected ErrNameConflict, got %v", err)
	}
	// Existing data must be untouched.
	kept, err := os.ReadFile(filepath.Join(dir, "only"))
	if err != nil || string(kept) != "keep" {
		t.Fatalf("expected existing file untouched, got %q err %v", kept, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected no new files, got %d err %v", len(entries), err)
	}
}
