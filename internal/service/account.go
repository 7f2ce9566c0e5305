package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/NitishSati26/travel-story/internal/serr"
	"github.com/NitishSati26/travel-story/internal/store"
	"github.com/NitishSati26/travel-story/internal/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type tokenIssuer interface {
	Issue(claims token.UserClaims) (string, error)
}

// AccountService handles registration, login and current-user lookup.
type AccountService struct {
	store    store.DataStore
	tokens   tokenIssuer
	hashCost int
}

type AccountServiceConfig struct {
	HashCost int
}

func NewAccountService(store store.DataStore, tokens tokenIssuer, cfg AccountServiceConfig) *AccountService {
	cost := cfg.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &AccountService{
		store:    store,
		tokens:   tokens,
		hashCost: cost,
	}
}

type RegisterRequest struct {
	FullName string
	Email    string
	Password string
}

type AuthResponse struct {
	UID         string
	FullName    string
	Email       string
	AccessToken string
}

// Register creates a new user and issues an access token. It returns a
// ServiceError with status 400 when a required field is missing or the email
// is already registered. The password is stored only as a salted hash.
func (s *AccountService) Register(ctx context.Context, r RegisterRequest) (AuthResponse, error) {
	if r.FullName == "" || r.Email == "" || r.Password == "" {
		return AuthResponse{}, serr.NewServiceError(nil, http.StatusBadRequest, "all fields are required")
	}

	_, err := s.store.GetUserByEmail(ctx, r.Email)
	if err == nil {
		se := serr.NewServiceError(store.ErrExists, http.StatusBadRequest, "user already exists")
		se.Env["email"] = r.Email
		return AuthResponse{}, se
	}
	if !errors.Is(err, store.ErrNotFound) {
		return AuthResponse{}, fmt.Errorf("get user by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.hashCost)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	uid := uuid.NewString()
	_, err = s.store.InsertUser(ctx, store.UserInsertRequest{
		UID:          uid,
		FullName:     r.FullName,
		Email:        r.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			se := serr.NewServiceError(err, http.StatusBadRequest, "user already exists")
			se.Env["email"] = r.Email
			return AuthResponse{}, se
		}

		return AuthResponse{}, fmt.Errorf("insert user: %w", err)
	}

	accessToken, err := s.tokens.Issue(token.UserClaims{UID: uid})
	if err != nil {
		return AuthResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	return AuthResponse{
		UID:         uid,
		FullName:    r.FullName,
		Email:       r.Email,
		AccessToken: accessToken,
	}, nil
}

type LoginRequest struct {
	Email    string
	Password string
}

// Login verifies credentials and issues an access token. A missing user maps
// to 404, a failed hash comparison to 400.
func (s *AccountService) Login(ctx context.Context, r LoginRequest) (AuthResponse, error) {
	if r.Email == "" || r.Password == "" {
		return AuthResponse{}, serr.NewServiceError(nil, http.StatusBadRequest, "email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, r.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusNotFound, "user not found")
			se.Env["email"] = r.Email
			return AuthResponse{}, se
		}

		return AuthResponse{}, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(r.Password)); err != nil {
		return AuthResponse{}, serr.NewServiceError(err, http.StatusBadRequest, "invalid password")
	}

	accessToken, err := s.tokens.Issue(token.UserClaims{UID: user.UID})
	if err != nil {
		return AuthResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	return AuthResponse{
		UID:         user.UID,
		FullName:    user.FullName,
		Email:       user.Email,
		AccessToken: accessToken,
	}, nil
}

type CurrentUser struct {
	UID      string
	FullName string
	Email    string
}

// GetCurrentUser resolves the identity attached by the auth gate. A UID that
// no longer resolves to a user maps to 401. The password hash is never part
// of the result.
func (s *AccountService) GetCurrentUser(ctx context.Context, uid string) (CurrentUser, error) {
	user, err := s.store.GetUserByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			se := serr.NewServiceError(err, http.StatusUnauthorized, "user not found")
			se.Env["uid"] = uid
			return CurrentUser{}, se
		}

		return CurrentUser{}, fmt.Errorf("get user by uid: %w", err)
	}

	return CurrentUser{
		UID:      user.UID,
		FullName: user.FullName,
		Email:    user.Email,
	}, nil
}
