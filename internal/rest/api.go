package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/NitishSati26/travel-story/internal/fn"
	"github.com/NitishSati26/travel-story/internal/httpx"
	"github.com/NitishSati26/travel-story/internal/middleware"
	"github.com/NitishSati26/travel-story/internal/router"
	"github.com/NitishSati26/travel-story/internal/serr"
	"github.com/NitishSati26/travel-story/internal/service"
	"github.com/NitishSati26/travel-story/internal/store"
)

type accountService interface {
	Register(ctx context.Context, r service.RegisterRequest) (service.AuthResponse, error)
	Login(ctx context.Context, r service.LoginRequest) (service.AuthResponse, error)
	GetCurrentUser(ctx context.Context, uid string) (service.CurrentUser, error)
}

type storyService interface {
	AddStory(ctx context.Context, r service.AddStoryRequest) (store.TravelStory, error)
	ListStories(ctx context.Context, ownerUID string) ([]store.TravelStory, error)
	EditStory(ctx context.Context, r service.EditStoryRequest) (store.TravelStory, error)
	DeleteStory(ctx context.Context, id int64, ownerUID string) error
	SetFavourite(ctx context.Context, r service.SetFavouriteRequest) (store.TravelStory, error)
	SearchStories(ctx context.Context, ownerUID, query string) ([]store.TravelStory, error)
	FilterStories(ctx context.Context, r service.FilterStoriesRequest) ([]store.TravelStory, error)
	DeleteImage(ctx context.Context, ownerUID, imageURL string) error
}

type APIOption func(*API) *API

func WithAuth(mw router.Middleware) APIOption {
	return func(api *API) *API {
		api.auth = mw
		return api
	}
}

func WithUploadsDir(dir string) APIOption {
	return func(api *API) *API {
		api.uploadsDir = dir
		return api
	}
}

func WithAssetsDir(dir string) APIOption {
	return func(api *API) *API {
		api.assetsDir = dir
		return api
	}
}

func WithMaxImageSize(size int64) APIOption {
	return func(api *API) *API {
		api.maxImgSize = size
		return api
	}
}

type API struct {
	accounts   accountService
	stories    storyService
	auth       router.Middleware
	uploadsDir string
	assetsDir  string
	maxImgSize int64
	mux        *http.ServeMux
}

func NewAPI(accounts accountService, stories storyService, opts ...APIOption) *API {
	api := &API{
		accounts:   accounts,
		stories:    stories,
		maxImgSize: 5 << 20,
		mux:        http.NewServeMux(),
	}

	for _, opt := range opts {
		api = opt(api)
	}

	if api.auth == nil {
		panic("auth middleware is required")
	}

	api.mount()
	return api
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

func (api *API) mount() {
	api.mux.HandleFunc("POST /create-account", api.handleCreateAccount)
	api.mux.HandleFunc("POST /login", api.handleLogin)
	api.mux.Handle("GET /get-user", api.authed(api.handleGetUser))
	api.mux.Handle("DELETE /delete-image", api.authed(api.handleDeleteImage))

	api.mux.Handle("POST /add-travel-story", api.authed(api.handleAddStory))
	api.mux.Handle("GET /get-all-stories", api.authed(api.handleGetStories))
	api.mux.Handle("PUT /edit-story/{id}", api.authed(api.handleEditStory))
	api.mux.Handle("DELETE /delete-story/{id}", api.authed(api.handleDeleteStory))
	api.mux.Handle("PUT /update-is-favourite/{id}", api.authed(api.handleSetFavourite))
	api.mux.Handle("GET /search", api.authed(api.handleSearch))
	api.mux.Handle("GET /travel-stories/filter", api.authed(api.handleFilter))

	if api.uploadsDir != "" {
		fs := http.FileServer(http.Dir(api.uploadsDir))
		api.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", fs))
	}
	if api.assetsDir != "" {
		fs := http.FileServer(http.Dir(api.assetsDir))
		api.mux.Handle("GET /assets/", http.StripPrefix("/assets/", fs))
	}
}

func (api *API) authed(handler func(http.ResponseWriter, *http.Request)) http.Handler {
	return api.auth(http.HandlerFunc(handler))
}

type userResponse struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type authResponse struct {
	Error       bool         `json:"error"`
	User        userResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	Message     string       `json:"message"`
}

type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (api *API) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	resp, err := api.accounts.Register(r.Context(), service.RegisterRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusCreated, authResponse{
		User:        userResponse{FullName: resp.FullName, Email: resp.Email},
		AccessToken: resp.AccessToken,
		Message:     "User created successfully",
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (api *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	resp, err := api.accounts.Login(r.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, authResponse{
		User:        userResponse{FullName: resp.FullName, Email: resp.Email},
		AccessToken: resp.AccessToken,
		Message:     "Login Successful",
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type getUserResponse struct {
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

func (api *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := api.accounts.GetCurrentUser(r.Context(), middleware.OwnerUIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, getUserResponse{
		User: userResponse{FullName: user.FullName, Email: user.Email},
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type storyResponse struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Story           string    `json:"story"`
	VisitedLocation []string  `json:"visitedLocation"`
	VisitedDate     time.Time `json:"visitedDate"`
	ImageURL        string    `json:"imageUrl"`
	IsFavourite     bool      `json:"isFavourite"`
	CreatedOn       time.Time `json:"createdOn"`
}

type singleStoryResponse struct {
	Story   storyResponse `json:"story"`
	Message string        `json:"message"`
}

type storiesResponse struct {
	Stories []storyResponse `json:"stories"`
}

func toStoryResponse(ts store.TravelStory) storyResponse {
	locations := ts.VisitedLocation
	if locations == nil {
		locations = []string{}
	}

	return storyResponse{
		ID:              ts.ID,
		Title:           ts.Title,
		Story:           ts.Story,
		VisitedLocation: locations,
		VisitedDate:     ts.VisitedDate,
		ImageURL:        ts.ImageURL,
		IsFavourite:     ts.IsFavourite,
		CreatedOn:       ts.CreatedAt,
	}
}

func toStoriesResponse(stories []store.TravelStory) storiesResponse {
	resp := storiesResponse{
		Stories: fn.Map(stories, toStoryResponse),
	}
	if resp.Stories == nil {
		resp.Stories = []storyResponse{}
	}

	return resp
}

func (api *API) handleAddStory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.maxImgSize)

	if err := r.ParseMultipartForm(api.maxImgSize); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid multipart form"))
		return
	}

	req := service.AddStoryRequest{
		OwnerUID:        middleware.OwnerUIDFromContext(r.Context()),
		Title:           r.FormValue("title"),
		Story:           r.FormValue("story"),
		VisitedLocation: r.MultipartForm.Value["visitedLocation"],
		VisitedDate:     r.FormValue("visitedDate"),
	}

	file, header, err := r.FormFile("imageUrl")
	if err == nil {
		defer file.Close()
		req.Image = file
		req.ImageName = header.Filename
	}

	ts, err := api.stories.AddStory(r.Context(), req)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusCreated, singleStoryResponse{
		Story:   toStoryResponse(ts),
		Message: "Added Successfully",
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleGetStories(w http.ResponseWriter, r *http.Request) {
	stories, err := api.stories.ListStories(r.Context(), middleware.OwnerUIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toStoriesResponse(stories))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type editStoryRequest struct {
	Title           string      `json:"title"`
	Story           string      `json:"story"`
	VisitedLocation []string    `json:"visitedLocation"`
	ImageURL        string      `json:"imageUrl"`
	VisitedDate     json.Number `json:"visitedDate"`
}

func (api *API) handleEditStory(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req editStoryRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	ts, err := api.stories.EditStory(r.Context(), service.EditStoryRequest{
		ID:              id,
		OwnerUID:        middleware.OwnerUIDFromContext(r.Context()),
		Title:           req.Title,
		Story:           req.Story,
		VisitedLocation: req.VisitedLocation,
		VisitedDate:     req.VisitedDate.String(),
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, singleStoryResponse{
		Story:   toStoryResponse(ts),
		Message: "Update Successful",
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type deleteStoryResponse struct {
	Message string `json:"message"`
}

func (api *API) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = api.stories.DeleteStory(r.Context(), id, middleware.OwnerUIDFromContext(r.Context()))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, deleteStoryResponse{Message: "Travel story deleted successfully"})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type setFavouriteRequest struct {
	IsFavourite bool `json:"isFavourite"`
}

func (api *API) handleSetFavourite(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	var req setFavouriteRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.HandleErr(w, r, serr.NewServiceError(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	ts, err := api.stories.SetFavourite(r.Context(), service.SetFavouriteRequest{
		ID:          id,
		OwnerUID:    middleware.OwnerUIDFromContext(r.Context()),
		IsFavourite: req.IsFavourite,
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, singleStoryResponse{
		Story:   toStoryResponse(ts),
		Message: "Update Successful",
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	stories, err := api.stories.SearchStories(r.Context(),
		middleware.OwnerUIDFromContext(r.Context()),
		r.URL.Query().Get("query"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toStoriesResponse(stories))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func (api *API) handleFilter(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	stories, err := api.stories.FilterStories(r.Context(), service.FilterStoriesRequest{
		OwnerUID:  middleware.OwnerUIDFromContext(r.Context()),
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
	})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, toStoriesResponse(stories))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

type deleteImageResponse struct {
	Message string `json:"message"`
}

func (api *API) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	err := api.stories.DeleteImage(r.Context(),
		middleware.OwnerUIDFromContext(r.Context()),
		r.URL.Query().Get("imageUrl"))
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}

	err = httpx.WriteJSON(w, http.StatusOK, deleteImageResponse{Message: "Image deleted successfully"})
	if err != nil {
		httpx.HandleErr(w, r, err)
		return
	}
}

func idFromRequest(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, serr.NewServiceError(err, http.StatusBadRequest, "invalid id parameter")
	}

	return id, nil
}
