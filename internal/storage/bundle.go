package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HannJia/novel-ai-studio-sub000/internal/story"
)

// Bundle is the YAML fixture format the CLI loads a whole book from.
type Bundle struct {
	Book        story.Book              `yaml:"book"`
	Chapters    []*story.Chapter        `yaml:"chapters"`
	Characters  []*story.Character      `yaml:"characters"`
	Settings    []*story.WorldSetting   `yaml:"settings"`
	Foreshadows []*story.Foreshadow     `yaml:"foreshadows"`
	Events      []*story.Event          `yaml:"events"`
	States      []*story.CharacterState `yaml:"states"`
}

// LoadBundle reads a book bundle from a YAML file and installs it into a
// fresh memory store.
func LoadBundle(path string) (*Memory, *story.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading bundle: %w", err)
	}

	var bundle Bundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, nil, fmt.Errorf("parsing bundle: %w", err)
	}
	if bundle.Book.ID == "" {
		return nil, nil, fmt.Errorf("bundle has no book id")
	}

	// Fill relational ids the fixture may omit.
	for _, ch := range bundle.Chapters {
		if ch.BookID == "" {
			ch.BookID = bundle.Book.ID
		}
	}
	for _, c := range bundle.Characters {
		if c.BookID == "" {
			c.BookID = bundle.Book.ID
		}
	}
	for _, s := range bundle.Settings {
		if s.BookID == "" {
			s.BookID = bundle.Book.ID
		}
	}
	for _, f := range bundle.Foreshadows {
		if f.BookID == "" {
			f.BookID = bundle.Book.ID
		}
	}
	for _, e := range bundle.Events {
		if e.BookID == "" {
			e.BookID = bundle.Book.ID
		}
	}
	for _, st := range bundle.States {
		if st.BookID == "" {
			st.BookID = bundle.Book.ID
		}
	}

	store := NewMemory()
	store.AddBook(&bundle.Book, bundle.Chapters, bundle.Characters,
		bundle.Settings, bundle.Foreshadows, bundle.Events, bundle.States)
	return store, &bundle.Book, nil
}
