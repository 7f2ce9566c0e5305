package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/magiconair/properties"

	"github.com/NitishSati26/travel-story/internal/env"
)

type Config struct {
	AuthSecret string
	TokenTTL   time.Duration
	BcryptCost int
	HTTP       httpConfig
	DB         dbConfig
	Blob       blobConfig
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type dbConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type blobConfig struct {
	Root        string
	AssetsRoot  string
	ServeRoot   *url.URL
	Placeholder *url.URL
	MaxSize     int64
	MaxWidth    int
	MaxHeight   int
}

// FromEnv builds the configuration from environment variables alone. It
// panics when ACCESS_TOKEN_SECRET is not set.
func FromEnv() Config {
	cfg := fromEnv()
	cfg.AuthSecret = env.RequireString("ACCESS_TOKEN_SECRET")
	return cfg
}

// FromFile reads a java-style properties file and overlays it on top of the
// environment. Keys absent from the file keep their environment value.
func FromFile(path string) (Config, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Config{}, fmt.Errorf("load config file: %w", err)
	}

	cfg := fromEnv()
	cfg.AuthSecret = p.GetString("auth.secret", cfg.AuthSecret)
	cfg.TokenTTL = p.GetParsedDuration("auth.token_ttl", cfg.TokenTTL)
	cfg.BcryptCost = p.GetInt("auth.bcrypt_cost", cfg.BcryptCost)

	cfg.HTTP.ListenAddr = p.GetString("http.listen_addr", cfg.HTTP.ListenAddr)
	cfg.HTTP.IdleTimeout = p.GetParsedDuration("http.idle_timeout", cfg.HTTP.IdleTimeout)
	cfg.HTTP.ReadTimeout = p.GetParsedDuration("http.read_timeout", cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = p.GetParsedDuration("http.write_timeout", cfg.HTTP.WriteTimeout)
	cfg.HTTP.ShutdownTimeout = p.GetParsedDuration("http.shutdown_timeout", cfg.HTTP.ShutdownTimeout)

	cfg.DB.Host = p.GetString("db.host", cfg.DB.Host)
	cfg.DB.Port = p.GetInt("db.port", cfg.DB.Port)
	cfg.DB.User = p.GetString("db.user", cfg.DB.User)
	cfg.DB.Password = p.GetString("db.password", cfg.DB.Password)
	cfg.DB.Name = p.GetString("db.name", cfg.DB.Name)

	cfg.Blob.Root = p.GetString("blob.root", cfg.Blob.Root)
	cfg.Blob.AssetsRoot = p.GetString("blob.assets_root", cfg.Blob.AssetsRoot)
	cfg.Blob.MaxSize = p.GetInt64("blob.max_size", cfg.Blob.MaxSize)
	cfg.Blob.MaxWidth = p.GetInt("blob.max_width", cfg.Blob.MaxWidth)
	cfg.Blob.MaxHeight = p.GetInt("blob.max_height", cfg.Blob.MaxHeight)

	if serveRoot := p.GetString("blob.serve_root", ""); serveRoot != "" {
		u, err := url.Parse(serveRoot)
		if err != nil {
			return Config{}, fmt.Errorf("parse blob.serve_root: %w", err)
		}
		cfg.Blob.ServeRoot = u
	}
	if placeholder := p.GetString("blob.placeholder", ""); placeholder != "" {
		u, err := url.Parse(placeholder)
		if err != nil {
			return Config{}, fmt.Errorf("parse blob.placeholder: %w", err)
		}
		cfg.Blob.Placeholder = u
	}

	if cfg.AuthSecret == "" {
		return Config{}, errors.New("auth secret is not configured")
	}

	return cfg, nil
}

func fromEnv() Config {
	return Config{
		AuthSecret: env.String("ACCESS_TOKEN_SECRET", ""),
		TokenTTL:   env.Duration("ACCESS_TOKEN_TTL", 72*time.Hour),
		BcryptCost: env.Int("BCRYPT_COST", 10),
		HTTP: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8000"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		DB: dbConfig{
			Host:     env.String("DB_HOST", "localhost"),
			Port:     env.Int("DB_PORT", 5432),
			User:     env.String("DB_USER", "postgres"),
			Password: env.String("DB_PASSWORD", "postgres"),
			Name:     env.String("DB_NAME", "travel_story"),
		},
		Blob: blobConfig{
			Root:        env.String("UPLOADS_ROOT", "./uploads"),
			AssetsRoot:  env.String("ASSETS_ROOT", "./assets"),
			ServeRoot:   env.Url("UPLOADS_SERVE_ROOT", &url.URL{Scheme: "http", Host: "localhost:8000", Path: "/uploads/"}),
			Placeholder: env.Url("PLACEHOLDER_URL", &url.URL{Scheme: "http", Host: "localhost:8000", Path: "/assets/placeholder.png"}),
			MaxSize:     env.Int64("UPLOADS_MAX_SIZE", 5*1024*1024),
			MaxWidth:    env.Int("UPLOADS_MAX_WIDTH", 4096),
			MaxHeight:   env.Int("UPLOADS_MAX_HEIGHT", 4096),
		},
	}
}
