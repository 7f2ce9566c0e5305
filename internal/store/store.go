package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already exists")
)

// DataStore is the persistence boundary for users and travel stories. Every
// story operation is scoped to its owner UID; a story is invisible to any
// other caller regardless of identifier knowledge.
type DataStore interface {
	InsertUser(ctx context.Context, r UserInsertRequest) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByUID(ctx context.Context, uid string) (User, error)

	InsertStory(ctx context.Context, r StoryInsertRequest) (TravelStory, error)
	GetStory(ctx context.Context, r StoryGetRequest) (TravelStory, error)
	GetStories(ctx context.Context, r StoriesGetRequest) ([]TravelStory, error)
	UpdateStory(ctx context.Context, r StoryUpdateRequest) (TravelStory, error)
	SetFavourite(ctx context.Context, r StorySetFavouriteRequest) (TravelStory, error)
	DeleteStory(ctx context.Context, r StoryDeleteRequest) (TravelStory, error)
	SearchStories(ctx context.Context, r StoriesSearchRequest) ([]TravelStory, error)
	FilterStories(ctx context.Context, r StoriesFilterRequest) ([]TravelStory, error)
	GetStoryOwnerByImage(ctx context.Context, imageURL string) (string, error)
}
