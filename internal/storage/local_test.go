package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagim-hg/Astu-Steam-dev-project-sub000/internal/config"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(config.StorageConfig{
		UploadDir:     t.TempDir(),
		PublicBaseURL: "/uploads/",
	})
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestSaveWritesPayloadAndReturnsRef(t *testing.T) {
	store := newTestStore(t)

	ref, err := store.Save(strings.NewReader("payload bytes"), "photo.JPG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if ref.FileName != "photo.JPG" {
		t.Errorf("FileName = %q, want original name", ref.FileName)
	}
	if !strings.HasSuffix(ref.Key, ".jpg") {
		t.Errorf("Key = %q, want lowercased extension", ref.Key)
	}
	if !strings.HasPrefix(ref.URL, "/uploads/") || strings.Contains(ref.URL, "//"+ref.Key) {
		t.Errorf("URL = %q", ref.URL)
	}

	data, err := os.ReadFile(filepath.Join(store.dir, ref.Key))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "payload bytes" {
		t.Errorf("stored content = %q", data)
	}
}

func TestSaveStripsSuspiciousExtensions(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name    string
		wantExt string
	}{
		{"report.pdf", ".pdf"},
		{"noext", ""},
		{"weird.p@f", ""},
		{"long.extensionnnnn", ""},
	}
	for _, tt := range tests {
		ref, err := store.Save(strings.NewReader("x"), tt.name)
		if err != nil {
			t.Fatalf("Save(%q): %v", tt.name, err)
		}
		if got := filepath.Ext(ref.Key); got != tt.wantExt {
			t.Errorf("Save(%q) key ext = %q, want %q", tt.name, got, tt.wantExt)
		}
	}
}

func TestSaveKeysAreUnique(t *testing.T) {
	store := newTestStore(t)

	first, _ := store.Save(strings.NewReader("a"), "same.txt")
	second, _ := store.Save(strings.NewReader("b"), "same.txt")
	if first.Key == second.Key {
		t.Fatal("two saves of the same name must not collide")
	}
}
