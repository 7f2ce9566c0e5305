package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/NitishSati26/travel-story/internal/serr"
	"github.com/NitishSati26/travel-story/internal/store"
)

type blobStore interface {
	Save(img io.Reader, originalName string) (*url.URL, error)
	Delete(imageURL string) error
	Placeholder() *url.URL
}

// StoryService provides owner-scoped access to travel stories.
type StoryService struct {
	store store.DataStore
	blobs blobStore
}

func NewStoryService(store store.DataStore, blobs blobStore) *StoryService {
	return &StoryService{
		store: store,
		blobs: blobs,
	}
}

type AddStoryRequest struct {
	OwnerUID        string
	Title           string
	Story           string
	VisitedLocation []string
	VisitedDate     string
	Image           io.Reader
	ImageName       string
}

// AddStory stores the uploaded image, then persists a new story owned by the
// caller. Any missing field maps to 400. VisitedDate is epoch milliseconds.
func (s *StoryService) AddStory(ctx context.Context, r AddStoryRequest) (store.TravelStory, error) {
	if r.Title == "" || r.Story == "" || len(r.VisitedLocation) == 0 || r.VisitedDate == "" || r.Image == nil {
		return store.TravelStory{}, serr.NewServiceError(nil, http.StatusBadRequest, "all fields are required")
	}

	visited, err := parseMillis(r.VisitedDate)
	if err != nil {
		return store.TravelStory{}, serr.NewServiceError(err, http.StatusBadRequest, "invalid visitedDate")
	}

	imgUrl, err := s.blobs.Save(r.Image, r.ImageName)
	if err != nil {
		var se *serr.ServiceError
		if errors.As(err, &se) {
			return store.TravelStory{}, se
		}

		return store.TravelStory{}, fmt.Errorf("save image: %w", err)
	}

	ts, err := s.store.InsertStory(ctx, store.StoryInsertRequest{
		OwnerUID:        r.OwnerUID,
		Title:           r.Title,
		Story:           r.Story,
		VisitedLocation: r.VisitedLocation,
		VisitedDate:     visited,
		ImageURL:        imgUrl.String(),
	})
	if err != nil {
		return store.TravelStory{}, fmt.Errorf("insert story: %w", err)
	}

	return ts, nil
}

// ListStories returns all of the caller's stories, favourites first.
func (s *StoryService) ListStories(ctx context.Context, ownerUID string) ([]store.TravelStory, error) {
	stories, err := s.store.GetStories(ctx, store.StoriesGetRequest{OwnerUID: ownerUID})
	if err != nil {
		return nil, fmt.Errorf("get stories: %w", err)
	}

	return stories, nil
}

type EditStoryRequest struct {
	ID              int64
	OwnerUID        string
	Title           string
	Story           string
	VisitedLocation []string
	VisitedDate     string
	ImageURL        string
}

// EditStory updates all mutable fields of a story in place. An omitted image
// URL falls back to the placeholder. A story that does not exist for the
// caller maps to 404.
func (s *StoryService) EditStory(ctx context.Context, r EditStoryRequest) (store.TravelStory, error) {
	if r.Title == "" || r.Story == "" || len(r.VisitedLocation) == 0 || r.VisitedDate == "" {
		return store.TravelStory{}, serr.NewServiceError(nil, http.StatusBadRequest, "all fields are required")
	}

	visited, err := parseMillis(r.VisitedDate)
	if err != nil {
		return store.TravelStory{}, serr.NewServiceError(err, http.StatusBadRequest, "invalid visitedDate")
	}

	imageURL := r.ImageURL
	if imageURL == "" {
		imageURL = s.blobs.Placeholder().String()
	}

	ts, err := s.store.UpdateStory(ctx, store.StoryUpdateRequest{
		ID:              r.ID,
		OwnerUID:        r.OwnerUID,
		Title:           r.Title,
		Story:           r.Story,
		VisitedLocation: r.VisitedLocation,
		VisitedDate:     visited,
		ImageURL:        imageURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.TravelStory{}, storyNotFound(err, r.ID)
		}

		return store.TravelStory{}, fmt.Errorf("update story: %w", err)
	}

	return ts, nil
}

// DeleteStory removes a story, then attempts best-effort removal of its
// image blob. The record deletion is authoritative; a blob cleanup failure
// is logged and not surfaced.
func (s *StoryService) DeleteStory(ctx context.Context, id int64, ownerUID string) error {
	deleted, err := s.store.DeleteStory(ctx, store.StoryDeleteRequest{ID: id, OwnerUID: ownerUID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return storyNotFound(err, id)
		}

		return fmt.Errorf("delete story: %w", err)
	}

	if err := s.blobs.Delete(deleted.ImageURL); err != nil {
		slog.Error("failed to delete image blob",
			"error", err,
			"story_id", id,
			"image_url", deleted.ImageURL,
		)
	}

	return nil
}

type SetFavouriteRequest struct {
	ID          int64
	OwnerUID    string
	IsFavourite bool
}

// SetFavourite toggles the favourite flag on a story owned by the caller.
func (s *StoryService) SetFavourite(ctx context.Context, r SetFavouriteRequest) (store.TravelStory, error) {
	ts, err := s.store.SetFavourite(ctx, store.StorySetFavouriteRequest{
		ID:          r.ID,
		OwnerUID:    r.OwnerUID,
		IsFavourite: r.IsFavourite,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.TravelStory{}, storyNotFound(err, r.ID)
		}

		return store.TravelStory{}, fmt.Errorf("set favourite: %w", err)
	}

	return ts, nil
}

// SearchStories returns the caller's stories whose title, text or visited
// locations contain query, case-insensitively. An empty query maps to 400.
func (s *StoryService) SearchStories(ctx context.Context, ownerUID, query string) ([]store.TravelStory, error) {
	if query == "" {
		return nil, serr.NewServiceError(nil, http.StatusBadRequest, "query is required")
	}

	stories, err := s.store.SearchStories(ctx, store.StoriesSearchRequest{OwnerUID: ownerUID, Query: query})
	if err != nil {
		return nil, fmt.Errorf("search stories: %w", err)
	}

	return stories, nil
}

type FilterStoriesRequest struct {
	OwnerUID  string
	StartDate string
	EndDate   string
}

// FilterStories returns the caller's stories with a visited date inside the
// inclusive [start, end] range. Either bound may be omitted; a malformed
// bound maps to 400. Bounds are epoch milliseconds.
func (s *StoryService) FilterStories(ctx context.Context, r FilterStoriesRequest) ([]store.TravelStory, error) {
	var start, end *time.Time

	if r.StartDate != "" {
		t, err := parseMillis(r.StartDate)
		if err != nil {
			return nil, serr.NewServiceError(err, http.StatusBadRequest, "invalid startDate")
		}
		start = &t
	}
	if r.EndDate != "" {
		t, err := parseMillis(r.EndDate)
		if err != nil {
			return nil, serr.NewServiceError(err, http.StatusBadRequest, "invalid endDate")
		}
		end = &t
	}

	stories, err := s.store.FilterStories(ctx, store.StoriesFilterRequest{
		OwnerUID: r.OwnerUID,
		Start:    start,
		End:      end,
	})
	if err != nil {
		return nil, fmt.Errorf("filter stories: %w", err)
	}

	return stories, nil
}

// DeleteImage removes an uploaded blob by URL. A blob referenced by another
// user's story is invisible to the caller and maps to 404; deleting an
// absent blob succeeds.
func (s *StoryService) DeleteImage(ctx context.Context, ownerUID, imageURL string) error {
	if imageURL == "" {
		return serr.NewServiceError(nil, http.StatusBadRequest, "imageUrl parameter is required")
	}

	owner, err := s.store.GetStoryOwnerByImage(ctx, imageURL)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("get story owner by image: %w", err)
	}
	if err == nil && owner != ownerUID {
		se := serr.NewServiceError(nil, http.StatusNotFound, "image not found")
		se.Env["image_url"] = imageURL
		return se
	}

	if err := s.blobs.Delete(imageURL); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	return nil
}

func storyNotFound(err error, id int64) *serr.ServiceError {
	se := serr.NewServiceError(err, http.StatusNotFound, "travel story not found")
	se.Env["story_id"] = strconv.FormatInt(id, 10)
	return se
}

func parseMillis(millis string) (time.Time, error) {
	val, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse millis: %w", err)
	}

	return time.UnixMilli(val).UTC(), nil
}
