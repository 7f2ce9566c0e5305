package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NitishSati26/travel-story/internal/httpx"
	"github.com/NitishSati26/travel-story/internal/middleware"
	"github.com/NitishSati26/travel-story/internal/serr"
	"github.com/NitishSati26/travel-story/internal/service"
	"github.com/NitishSati26/travel-story/internal/store"
	"github.com/NitishSati26/travel-story/internal/testutil"
	"github.com/NitishSati26/travel-story/internal/token"
)

type mockAccountService struct {
	RegisterFunc       func(ctx context.Context, r service.RegisterRequest) (service.AuthResponse, error)
	LoginFunc          func(ctx context.Context, r service.LoginRequest) (service.AuthResponse, error)
	GetCurrentUserFunc func(ctx context.Context, uid string) (service.CurrentUser, error)
}

func (m *mockAccountService) Register(ctx context.Context, r service.RegisterRequest) (service.AuthResponse, error) {
	return m.RegisterFunc(ctx, r)
}

func (m *mockAccountService) Login(ctx context.Context, r service.LoginRequest) (service.AuthResponse, error) {
	return m.LoginFunc(ctx, r)
}

func (m *mockAccountService) GetCurrentUser(ctx context.Context, uid string) (service.CurrentUser, error) {
	return m.GetCurrentUserFunc(ctx, uid)
}

type mockStoryService struct {
	AddStoryFunc      func(ctx context.Context, r service.AddStoryRequest) (store.TravelStory, error)
	ListStoriesFunc   func(ctx context.Context, ownerUID string) ([]store.TravelStory, error)
	EditStoryFunc     func(ctx context.Context, r service.EditStoryRequest) (store.TravelStory, error)
	DeleteStoryFunc   func(ctx context.Context, id int64, ownerUID string) error
	SetFavouriteFunc  func(ctx context.Context, r service.SetFavouriteRequest) (store.TravelStory, error)
	SearchStoriesFunc func(ctx context.Context, ownerUID, query string) ([]store.TravelStory, error)
	FilterStoriesFunc func(ctx context.Context, r service.FilterStoriesRequest) ([]store.TravelStory, error)
	DeleteImageFunc   func(ctx context.Context, ownerUID, imageURL string) error
}

func (m *mockStoryService) AddStory(ctx context.Context, r service.AddStoryRequest) (store.TravelStory, error) {
	return m.AddStoryFunc(ctx, r)
}

func (m *mockStoryService) ListStories(ctx context.Context, ownerUID string) ([]store.TravelStory, error) {
	return m.ListStoriesFunc(ctx, ownerUID)
}

func (m *mockStoryService) EditStory(ctx context.Context, r service.EditStoryRequest) (store.TravelStory, error) {
	return m.EditStoryFunc(ctx, r)
}

func (m *mockStoryService) DeleteStory(ctx context.Context, id int64, ownerUID string) error {
	return m.DeleteStoryFunc(ctx, id, ownerUID)
}

func (m *mockStoryService) SetFavourite(ctx context.Context, r service.SetFavouriteRequest) (store.TravelStory, error) {
	return m.SetFavouriteFunc(ctx, r)
}

func (m *mockStoryService) SearchStories(ctx context.Context, ownerUID, query string) ([]store.TravelStory, error) {
	return m.SearchStoriesFunc(ctx, ownerUID, query)
}

func (m *mockStoryService) FilterStories(ctx context.Context, r service.FilterStoriesRequest) ([]store.TravelStory, error) {
	return m.FilterStoriesFunc(ctx, r)
}

func (m *mockStoryService) DeleteImage(ctx context.Context, ownerUID, imageURL string) error {
	return m.DeleteImageFunc(ctx, ownerUID, imageURL)
}

var testSecret = []byte("test-secret")

func newTestAPI(accounts accountService, stories storyService, opts ...APIOption) *API {
	opts = append([]APIOption{WithAuth(middleware.Auth(testSecret))}, opts...)
	return NewAPI(accounts, stories, opts...)
}

func bearerFor(t *testing.T, uid string) testutil.RequestOption {
	t.Helper()

	issuer := token.NewJWTIssuer(token.JwtConfig{Secret: testSecret, TTL: time.Hour})
	tk, err := issuer.Issue(token.UserClaims{UID: uid})
	require.NoError(t, err)

	return testutil.WithBearer(tk)
}

func testStory() store.TravelStory {
	return store.TravelStory{
		ID:              42,
		OwnerUID:        "user-1",
		Title:           "Lofoten",
		Story:           "Midnight sun over the fjord",
		VisitedLocation: []string{"Reine", "Hamnoy"},
		VisitedDate:     time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		ImageURL:        "http://localhost:8000/uploads/123.png",
		IsFavourite:     true,
		CreatedAt:       time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC),
	}
}

func TestPOSTCreateAccount(t *testing.T) {
	accounts := &mockAccountService{
		RegisterFunc: func(ctx context.Context, r service.RegisterRequest) (service.AuthResponse, error) {
			assert.Equal(t, "John Doe", r.FullName)
			assert.Equal(t, "john@example.com", r.Email)
			assert.Equal(t, "secret123", r.Password)
			return service.AuthResponse{
				UID:         "user-1",
				FullName:    r.FullName,
				Email:       r.Email,
				AccessToken: "token-abc",
			}, nil
		},
	}
	api := newTestAPI(accounts, &mockStoryService{})

	rec := testutil.SendRequest(t, api, "POST", "/create-account", createAccountRequest{
		FullName: "John Doe",
		Email:    "john@example.com",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := testutil.ParseResponse[authResponse](t, rec)
	assert.False(t, resp.Error)
	assert.Equal(t, "John Doe", resp.User.FullName)
	assert.Equal(t, "john@example.com", resp.User.Email)
	assert.Equal(t, "token-abc", resp.AccessToken)
	assert.Equal(t, "User created successfully", resp.Message)
}

func TestPOSTCreateAccount_InvalidBody(t *testing.T) {
	api := newTestAPI(&mockAccountService{}, &mockStoryService{})

	req, err := http.NewRequest("POST", "/create-account", strings.NewReader("{not json"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := testutil.ParseResponse[httpx.ErrorResponse](t, rec)
	assert.True(t, resp.Error)
}

func TestPOSTCreateAccount_ServiceError(t *testing.T) {
	accounts := &mockAccountService{
		RegisterFunc: func(ctx context.Context, r service.RegisterRequest) (service.AuthResponse, error) {
			return service.AuthResponse{}, serr.NewServiceError(nil, http.StatusBadRequest, "user already exists")
		},
	}
	api := newTestAPI(accounts, &mockStoryService{})

	rec := testutil.SendRequest(t, api, "POST", "/create-account", createAccountRequest{
		FullName: "John Doe",
		Email:    "john@example.com",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := testutil.ParseResponse[httpx.ErrorResponse](t, rec)
	assert.True(t, resp.Error)
	assert.Equal(t, "user already exists", resp.Message)
}

func TestPOSTLogin(t *testing.T) {
	accounts := &mockAccountService{
		LoginFunc: func(ctx context.Context, r service.LoginRequest) (service.AuthResponse, error) {
			assert.Equal(t, "john@example.com", r.Email)
			assert.Equal(t, "secret123", r.Password)
			return service.AuthResponse{
				UID:         "user-1",
				FullName:    "John Doe",
				Email:       r.Email,
				AccessToken: "token-abc",
			}, nil
		},
	}
	api := newTestAPI(accounts, &mockStoryService{})

	rec := testutil.SendRequest(t, api, "POST", "/login", loginRequest{
		Email:    "john@example.com",
		Password: "secret123",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[authResponse](t, rec)
	assert.Equal(t, "token-abc", resp.AccessToken)
	assert.Equal(t, "Login Successful", resp.Message)
}

func TestGETUser(t *testing.T) {
	accounts := &mockAccountService{
		GetCurrentUserFunc: func(ctx context.Context, uid string) (service.CurrentUser, error) {
			assert.Equal(t, "user-1", uid)
			return service.CurrentUser{UID: uid, FullName: "John Doe", Email: "john@example.com"}, nil
		},
	}
	api := newTestAPI(accounts, &mockStoryService{})

	rec := testutil.SendRequest(t, api, "GET", "/get-user", nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[getUserResponse](t, rec)
	assert.Equal(t, "John Doe", resp.User.FullName)
	assert.Equal(t, "john@example.com", resp.User.Email)
}

func TestGETUser_NoToken(t *testing.T) {
	api := newTestAPI(&mockAccountService{}, &mockStoryService{})

	rec := testutil.SendRequest(t, api, "GET", "/get-user", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := testutil.ParseResponse[httpx.ErrorResponse](t, rec)
	assert.True(t, resp.Error)
}

func TestPOSTAddTravelStory(t *testing.T) {
	stories := &mockStoryService{
		AddStoryFunc: func(ctx context.Context, r service.AddStoryRequest) (store.TravelStory, error) {
			assert.Equal(t, "user-1", r.OwnerUID)
			assert.Equal(t, "Lofoten", r.Title)
			assert.Equal(t, "Midnight sun over the fjord", r.Story)
			assert.Equal(t, []string{"Reine", "Hamnoy"}, r.VisitedLocation)
			assert.Equal(t, "1718841600000", r.VisitedDate)
			assert.Equal(t, "trip.png", r.ImageName)
			assert.NotNil(t, r.Image)
			return testStory(), nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	fields := url.Values{
		"title":           {"Lofoten"},
		"story":           {"Midnight sun over the fjord"},
		"visitedLocation": {"Reine", "Hamnoy"},
		"visitedDate":     {"1718841600000"},
	}
	rec := testutil.SendForm(t, api, "POST", "/add-travel-story", fields, &testutil.TestFile{
		Name:      "trip.png",
		FieldName: "imageUrl",
		Content:   strings.NewReader("png bytes"),
	}, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := testutil.ParseResponse[singleStoryResponse](t, rec)
	assert.Equal(t, int64(42), resp.Story.ID)
	assert.Equal(t, "Lofoten", resp.Story.Title)
	assert.Equal(t, "http://localhost:8000/uploads/123.png", resp.Story.ImageURL)
	assert.Equal(t, "Added Successfully", resp.Message)
}

func TestPOSTAddTravelStory_NoFile(t *testing.T) {
	stories := &mockStoryService{
		AddStoryFunc: func(ctx context.Context, r service.AddStoryRequest) (store.TravelStory, error) {
			assert.Nil(t, r.Image)
			return store.TravelStory{}, serr.NewServiceError(nil, http.StatusBadRequest, "image is required")
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	fields := url.Values{"title": {"Lofoten"}}
	rec := testutil.SendForm(t, api, "POST", "/add-travel-story", fields, nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGETAllStories(t *testing.T) {
	stories := &mockStoryService{
		ListStoriesFunc: func(ctx context.Context, ownerUID string) ([]store.TravelStory, error) {
			assert.Equal(t, "user-1", ownerUID)
			return []store.TravelStory{testStory()}, nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "GET", "/get-all-stories", nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[storiesResponse](t, rec)
	require.Len(t, resp.Stories, 1)
	assert.Equal(t, int64(42), resp.Stories[0].ID)
	assert.True(t, resp.Stories[0].IsFavourite)
}

func TestGETAllStories_Empty(t *testing.T) {
	stories := &mockStoryService{
		ListStoriesFunc: func(ctx context.Context, ownerUID string) ([]store.TravelStory, error) {
			return nil, nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "GET", "/get-all-stories", nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stories":[]`)
}

func TestPUTEditStory(t *testing.T) {
	stories := &mockStoryService{
		EditStoryFunc: func(ctx context.Context, r service.EditStoryRequest) (store.TravelStory, error) {
			assert.Equal(t, int64(42), r.ID)
			assert.Equal(t, "user-1", r.OwnerUID)
			assert.Equal(t, "Lofoten revisited", r.Title)
			assert.Equal(t, "1718841600000", r.VisitedDate)
			return testStory(), nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "PUT", "/edit-story/42", map[string]any{
		"title":           "Lofoten revisited",
		"story":           "Still stunning",
		"visitedLocation": []string{"Reine"},
		"visitedDate":     1718841600000,
		"imageUrl":        "http://localhost:8000/uploads/123.png",
	}, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[singleStoryResponse](t, rec)
	assert.Equal(t, "Update Successful", resp.Message)
}

func TestPUTEditStory_InvalidID(t *testing.T) {
	api := newTestAPI(&mockAccountService{}, &mockStoryService{})

	rec := testutil.SendRequest(t, api, "PUT", "/edit-story/abc", map[string]any{}, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDELETEStory(t *testing.T) {
	stories := &mockStoryService{
		DeleteStoryFunc: func(ctx context.Context, id int64, ownerUID string) error {
			assert.Equal(t, int64(42), id)
			assert.Equal(t, "user-1", ownerUID)
			return nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "DELETE", "/delete-story/42", nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[deleteStoryResponse](t, rec)
	assert.Equal(t, "Travel story deleted successfully", resp.Message)
}

func TestDELETEStory_NotFound(t *testing.T) {
	stories := &mockStoryService{
		DeleteStoryFunc: func(ctx context.Context, id int64, ownerUID string) error {
			return serr.NewServiceError(nil, http.StatusNotFound, "travel story not found")
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "DELETE", "/delete-story/42", nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPUTUpdateIsFavourite(t *testing.T) {
	stories := &mockStoryService{
		SetFavouriteFunc: func(ctx context.Context, r service.SetFavouriteRequest) (store.TravelStory, error) {
			assert.Equal(t, int64(42), r.ID)
			assert.Equal(t, "user-1", r.OwnerUID)
			assert.True(t, r.IsFavourite)
			return testStory(), nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "PUT", "/update-is-favourite/42", setFavouriteRequest{
		IsFavourite: true,
	}, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[singleStoryResponse](t, rec)
	assert.True(t, resp.Story.IsFavourite)
}

func TestGETSearch(t *testing.T) {
	stories := &mockStoryService{
		SearchStoriesFunc: func(ctx context.Context, ownerUID, query string) ([]store.TravelStory, error) {
			assert.Equal(t, "user-1", ownerUID)
			assert.Equal(t, "fjord", query)
			return []store.TravelStory{testStory()}, nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "GET", "/search?query=fjord", nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[storiesResponse](t, rec)
	require.Len(t, resp.Stories, 1)
}

func TestGETFilter(t *testing.T) {
	stories := &mockStoryService{
		FilterStoriesFunc: func(ctx context.Context, r service.FilterStoriesRequest) ([]store.TravelStory, error) {
			assert.Equal(t, "user-1", r.OwnerUID)
			assert.Equal(t, "1718841600000", r.StartDate)
			assert.Equal(t, "1719100800000", r.EndDate)
			return []store.TravelStory{testStory()}, nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "GET",
		"/travel-stories/filter?startDate=1718841600000&endDate=1719100800000",
		nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[storiesResponse](t, rec)
	require.Len(t, resp.Stories, 1)
}

func TestDELETEImage(t *testing.T) {
	stories := &mockStoryService{
		DeleteImageFunc: func(ctx context.Context, ownerUID, imageURL string) error {
			assert.Equal(t, "user-1", ownerUID)
			assert.Equal(t, "http://localhost:8000/uploads/123.png", imageURL)
			return nil
		},
	}
	api := newTestAPI(&mockAccountService{}, stories)

	rec := testutil.SendRequest(t, api, "DELETE",
		"/delete-image?imageUrl="+url.QueryEscape("http://localhost:8000/uploads/123.png"),
		nil, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)

	resp := testutil.ParseResponse[deleteImageResponse](t, rec)
	assert.Equal(t, "Image deleted successfully", resp.Message)
}

func TestGETUploadsStatic(t *testing.T) {
	root := t.TempDir()
	api := newTestAPI(&mockAccountService{}, &mockStoryService{}, WithUploadsDir(root))

	err := os.WriteFile(filepath.Join(root, "trip.png"), []byte("png bytes"), 0644)
	require.NoError(t, err)

	rec := testutil.SendRequest(t, api, "GET", "/uploads/trip.png", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png bytes", rec.Body.String())
}

func TestGETAssetsStatic(t *testing.T) {
	root := t.TempDir()
	api := newTestAPI(&mockAccountService{}, &mockStoryService{}, WithAssetsDir(root))

	err := os.WriteFile(filepath.Join(root, "placeholder.png"), []byte("placeholder bytes"), 0644)
	require.NoError(t, err)

	rec := testutil.SendRequest(t, api, "GET", "/assets/placeholder.png", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "placeholder bytes", rec.Body.String())
}
