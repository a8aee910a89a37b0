package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const sampleBundle = `book:
  id: grey-harbor
  title: The Grey Harbor
chapters:
  - id: c2
    order: 2
    title: The Signal
    content: Mora lit the beacon.
  - id: c1
    order: 1
    title: The Wait
    content: Mora waited in Harbor City.
characters:
  - id: mora
    name: Mora
    aliases: [the Grey Widow]
settings:
  - id: s1
    category: geography
    name: Harbor City
    description: Port town on the western coast.
`

func TestLoadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	if err := os.WriteFile(path, []byte(sampleBundle), 0o600); err != nil {
		t.Fatal(err)
	}

	store, book, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle() error = %v", err)
	}
	if book.ID != "grey-harbor" || book.Title != "The Grey Harbor" {
		t.Errorf("book = %+v", book)
	}

	ctx := context.Background()
	chapters, err := store.ChaptersByBook(ctx, "grey-harbor")
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(chapters))
	}
	if chapters[0].ID != "c1" || chapters[1].ID != "c2" {
		t.Errorf("chapters out of order: %s, %s", chapters[0].ID, chapters[1].ID)
	}
	if chapters[0].BookID != "grey-harbor" {
		t.Errorf("omitted book id not filled: %q", chapters[0].BookID)
	}

	characters, _ := store.CharactersByBook(ctx, "grey-harbor")
	if len(characters) != 1 || characters[0].Aliases[0] != "the Grey Widow" {
		t.Errorf("characters = %+v", characters)
	}
}

func TestLoadBundleErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, _, err := LoadBundle(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("book id required", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bundle.yaml")
		if err := os.WriteFile(path, []byte("book:\n  title: Untitled\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, _, err := LoadBundle(path); err == nil {
			t.Error("expected error for a bundle without a book id")
		}
	})
}
