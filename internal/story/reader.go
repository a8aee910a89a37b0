package story

import "context"

// Reader provides read access to a book's structured memory. Implementations
// back onto whatever store the surrounding application uses; the review
// engine only ever reads through this interface.
//
// Ordering contracts: ChaptersByBook returns chapters ascending by Order,
// EventsByBook ascending by Sequence, StatesByBook ascending by
// (ChapterOrder, Seq).
type Reader interface {
	BookByID(ctx context.Context, id string) (*Book, error)
	ChaptersByBook(ctx context.Context, bookID string) ([]*Chapter, error)
	CharactersByBook(ctx context.Context, bookID string) ([]*Character, error)
	SettingsByBook(ctx context.Context, bookID string) ([]*WorldSetting, error)
	ForeshadowsByBook(ctx context.Context, bookID string) ([]*Foreshadow, error)
	EventsByBook(ctx context.Context, bookID string) ([]*Event, error)
	StatesByBook(ctx context.Context, bookID string) ([]*CharacterState, error)
}
