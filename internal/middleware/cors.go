package middleware

import (
	"github.com/NitishSati26/travel-story/internal/router"
	"github.com/rs/cors"
)

// CORS allows cross-origin calls from any origin, matching the browser
// client this API serves.
func CORS() router.Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler
}
