// Package story holds the plain data structures that make up a book's
// structured memory: chapters, characters, world settings, foreshadows,
// timeline events and per-character state history. The review engine reads
// these through the Reader interface and never writes them.
package story

import "time"

// Book is the top-level container for a single work.
type Book struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Genre    string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Synopsis string `json:"synopsis,omitempty" yaml:"synopsis,omitempty"`
}

// Chapter is one unit of prose. Order is 1-based and dense within a book.
type Chapter struct {
	ID      string `json:"id" yaml:"id"`
	BookID  string `json:"book_id" yaml:"book_id"`
	Order   int    `json:"order" yaml:"order"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Character is a named actor with zero or more aliases. Aliases share the
// character's identity for every text scan the review rules perform.
type Character struct {
	ID         string   `json:"id" yaml:"id"`
	BookID     string   `json:"book_id" yaml:"book_id"`
	Name       string   `json:"name" yaml:"name"`
	Aliases    []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Traits     []string `json:"traits,omitempty" yaml:"traits,omitempty"`
	Goals      []string `json:"goals,omitempty" yaml:"goals,omitempty"`
	Background string   `json:"background,omitempty" yaml:"background,omitempty"`
}

// Names returns the primary name followed by every alias.
func (c *Character) Names() []string {
	names := make([]string, 0, 1+len(c.Aliases))
	names = append(names, c.Name)
	names = append(names, c.Aliases...)
	return names
}

// CharacterState is one record in a character's state-change history.
// IsAlive is nil when the record does not touch life status. Records are
// ordered by (ChapterOrder, Seq).
type CharacterState struct {
	ID           string    `json:"id" yaml:"id"`
	BookID       string    `json:"book_id" yaml:"book_id"`
	CharacterID  string    `json:"character_id" yaml:"character_id"`
	ChapterOrder int       `json:"chapter_order" yaml:"chapter_order"`
	Seq          int       `json:"seq" yaml:"seq"`
	IsAlive      *bool     `json:"is_alive,omitempty" yaml:"is_alive,omitempty"`
	Location     string    `json:"location,omitempty" yaml:"location,omitempty"`
	Note         string    `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Well-known world setting categories. Category is free-form; these are the
// values the heuristic rules key on.
const (
	SettingCategoryGeography = "geography"
	SettingCategoryLocation  = "location"
	SettingCategoryMagic     = "magic"
	SettingCategoryCulture   = "culture"
	SettingCategoryHistory   = "history"
)

// WorldSetting is one entry of the book's world bible.
type WorldSetting struct {
	ID          string `json:"id" yaml:"id"`
	BookID      string `json:"book_id" yaml:"book_id"`
	Category    string `json:"category" yaml:"category"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Foreshadow lifecycle and importance vocabularies.
const (
	ForeshadowPlanted   = "planted"
	ForeshadowResolved  = "resolved"
	ForeshadowAbandoned = "abandoned"

	ImportanceMajor = "major"
	ImportanceMinor = "minor"
)

// Foreshadow is a planted narrative element expected to pay off later.
type Foreshadow struct {
	ID             string `json:"id" yaml:"id"`
	BookID         string `json:"book_id" yaml:"book_id"`
	Title          string `json:"title" yaml:"title"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	Importance     string `json:"importance" yaml:"importance"`
	Status         string `json:"status" yaml:"status"`
	PlantedChapter int    `json:"planted_chapter" yaml:"planted_chapter"`
	PayoffChapter  int    `json:"payoff_chapter,omitempty" yaml:"payoff_chapter,omitempty"`
}

// Open reports whether the foreshadow still awaits resolution.
func (f *Foreshadow) Open() bool {
	return f.Status != ForeshadowResolved && f.Status != ForeshadowAbandoned
}

// Event is a node on the book's canonical timeline. Sequence is the
// timeline position; ChapterOrder is where the event is narrated.
type Event struct {
	ID           string   `json:"id" yaml:"id"`
	BookID       string   `json:"book_id" yaml:"book_id"`
	Sequence     int      `json:"sequence" yaml:"sequence"`
	ChapterOrder int      `json:"chapter_order" yaml:"chapter_order"`
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Characters   []string `json:"characters,omitempty" yaml:"characters,omitempty"`
	Location     string   `json:"location,omitempty" yaml:"location,omitempty"`
}
