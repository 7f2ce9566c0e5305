package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const errUniqueViolation pq.ErrorCode = "23505"

const storyColumns = `id, owner_uid, title, story, visited_location, visited_date, image_url, is_favourite, created_at`

// PostgresStore implements DataStore using PostgreSQL as the backend.
type PostgresStore struct {
	db *sql.DB
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func NewPostgresDB(cfg PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertUser(ctx context.Context, r UserInsertRequest) (int64, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (uid, full_name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING id`,
		r.UID, r.FullName, r.Email, r.PasswordHash)

	var id int64
	if err := row.Scan(&id); err != nil {
		if isPqErr(err, errUniqueViolation) {
			return 0, ErrExists
		}

		return 0, fmt.Errorf("insert user: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, uid, full_name, email, password_hash, created_at FROM users WHERE email = $1`, email)

	return scanUser(row)
}

func (s *PostgresStore) GetUserByUID(ctx context.Context, uid string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, uid, full_name, email, password_hash, created_at FROM users WHERE uid = $1`, uid)

	return scanUser(row)
}

func (s *PostgresStore) InsertStory(ctx context.Context, r StoryInsertRequest) (TravelStory, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO travel_stories (owner_uid, title, story, visited_location, visited_date, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+storyColumns,
		r.OwnerUID, r.Title, r.Story, pq.Array(r.VisitedLocation), r.VisitedDate, r.ImageURL)

	return scanStory(row)
}

func (s *PostgresStore) GetStory(ctx context.Context, r StoryGetRequest) (TravelStory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories WHERE id = $1 AND owner_uid = $2`,
		r.ID, r.OwnerUID)

	return scanStory(row)
}

func (s *PostgresStore) GetStories(ctx context.Context, r StoriesGetRequest) ([]TravelStory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories
		 WHERE owner_uid = $1
		 ORDER BY is_favourite DESC, id ASC`,
		r.OwnerUID)
	if err != nil {
		return nil, fmt.Errorf("query stories: %w", err)
	}
	defer rows.Close()

	return scanStories(rows)
}

func (s *PostgresStore) UpdateStory(ctx context.Context, r StoryUpdateRequest) (TravelStory, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE travel_stories
		 SET title = $3, story = $4, visited_location = $5, visited_date = $6, image_url = $7
		 WHERE id = $1 AND owner_uid = $2
		 RETURNING `+storyColumns,
		r.ID, r.OwnerUID, r.Title, r.Story, pq.Array(r.VisitedLocation), r.VisitedDate, r.ImageURL)

	return scanStory(row)
}

func (s *PostgresStore) SetFavourite(ctx context.Context, r StorySetFavouriteRequest) (TravelStory, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE travel_stories SET is_favourite = $3
		 WHERE id = $1 AND owner_uid = $2
		 RETURNING `+storyColumns,
		r.ID, r.OwnerUID, r.IsFavourite)

	return scanStory(row)
}

// DeleteStory removes the record and returns it, so the caller can clean up
// the associated image blob.
func (s *PostgresStore) DeleteStory(ctx context.Context, r StoryDeleteRequest) (TravelStory, error) {
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM travel_stories WHERE id = $1 AND owner_uid = $2 RETURNING `+storyColumns,
		r.ID, r.OwnerUID)

	return scanStory(row)
}

func (s *PostgresStore) SearchStories(ctx context.Context, r StoriesSearchRequest) ([]TravelStory, error) {
	pattern := "%" + r.Query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories
		 WHERE owner_uid = $1
		   AND (title ILIKE $2 OR story ILIKE $2 OR array_to_string(visited_location, ' ') ILIKE $2)
		 ORDER BY is_favourite DESC, id ASC`,
		r.OwnerUID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search stories: %w", err)
	}
	defer rows.Close()

	return scanStories(rows)
}

func (s *PostgresStore) FilterStories(ctx context.Context, r StoriesFilterRequest) ([]TravelStory, error) {
	// Bounds are inclusive, open on whichever side is nil.
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+storyColumns+` FROM travel_stories
		 WHERE owner_uid = $1
		   AND ($2::timestamptz IS NULL OR visited_date >= $2)
		   AND ($3::timestamptz IS NULL OR visited_date <= $3)
		 ORDER BY is_favourite DESC, id ASC`,
		r.OwnerUID, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("filter stories: %w", err)
	}
	defer rows.Close()

	return scanStories(rows)
}

func (s *PostgresStore) GetStoryOwnerByImage(ctx context.Context, imageURL string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT owner_uid FROM travel_stories WHERE image_url = $1 LIMIT 1`, imageURL)

	var owner string
	if err := row.Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("scan: %w", err)
	}

	return owner, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.UID, &u.FullName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, ErrNotFound
		}

		return u, fmt.Errorf("scan: %w", err)
	}

	return u, nil
}

func scanStory(row *sql.Row) (TravelStory, error) {
	var ts TravelStory
	err := row.Scan(
		&ts.ID,
		&ts.OwnerUID,
		&ts.Title,
		&ts.Story,
		pq.Array(&ts.VisitedLocation),
		&ts.VisitedDate,
		&ts.ImageURL,
		&ts.IsFavourite,
		&ts.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ts, ErrNotFound
		}

		return ts, fmt.Errorf("scan: %w", err)
	}

	return ts, nil
}

func scanStories(rows *sql.Rows) ([]TravelStory, error) {
	var stories []TravelStory
	for rows.Next() {
		var ts TravelStory
		err := rows.Scan(
			&ts.ID,
			&ts.OwnerUID,
			&ts.Title,
			&ts.Story,
			pq.Array(&ts.VisitedLocation),
			&ts.VisitedDate,
			&ts.ImageURL,
			&ts.IsFavourite,
			&ts.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		stories = append(stories, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return stories, nil
}

func isPqErr(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == code
}
