package store

import "time"

type User struct {
	ID           int64
	UID          string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type TravelStory struct {
	ID              int64
	OwnerUID        string
	Title           string
	Story           string
	VisitedLocation []string
	VisitedDate     time.Time
	ImageURL        string
	IsFavourite     bool
	CreatedAt       time.Time
}

type UserInsertRequest struct {
	UID          string
	FullName     string
	Email        string
	PasswordHash string
}

type StoryInsertRequest struct {
	OwnerUID        string
	Title           string
	Story           string
	VisitedLocation []string
	VisitedDate     time.Time
	ImageURL        string
}

type StoryGetRequest struct {
	ID       int64
	OwnerUID string
}

type StoriesGetRequest struct {
	OwnerUID string
}

type StoryUpdateRequest struct {
	ID              int64
	OwnerUID        string
	Title           string
	Story           string
	VisitedLocation []string
	VisitedDate     time.Time
	ImageURL        string
}

type StorySetFavouriteRequest struct {
	ID          int64
	OwnerUID    string
	IsFavourite bool
}

type StoryDeleteRequest struct {
	ID       int64
	OwnerUID string
}

type StoriesSearchRequest struct {
	OwnerUID string
	Query    string
}

type StoriesFilterRequest struct {
	OwnerUID string
	Start    *time.Time
	End      *time.Time
}
