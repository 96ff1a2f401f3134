package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	gorillahandlers "github.com/gorilla/handlers"

	"tweetfeed/app"
	"tweetfeed/handlers"
)

// NewRouter builds the HTTP surface of the feed.
func NewRouter(app *app.App) http.Handler {
	r := chi.NewRouter()
	r.Use(handlers.RequestID)
	r.Use(handlers.Logger(app.Logger))
	r.Use(middleware.Recoverer)
	RegisterRoutes(r, app)
	return r
}

// RegisterRoutes mounts the feed handlers on r.
func RegisterRoutes(r chi.Router, app *app.App) {
	compress := func(next http.Handler) http.Handler {
		return gorillahandlers.CompressHandler(next)
	}

	r.Get("/", handlers.HomePageHandler(app))
	r.With(compress).Get("/show_posts", handlers.ShowPostsHandler(app))
	r.With(compress).Get("/export", handlers.ExportHandler(app))

	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/post_submit", handlers.PostSubmitHandler(app))
		r.Post("/interact", handlers.InteractHandler(app))
		r.Post("/retweet", handlers.RetweetHandler(app))
	})
	r.Delete("/posts/{id}", handlers.DeletePostHandler(app))
	r.Get("/ws", handlers.HandleConnections(app))
}
