package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweetfeed/app"
	"tweetfeed/database"
	"tweetfeed/models"
	"tweetfeed/tweets"
	"tweetfeed/utils"
)

// maxBodySize bounds JSON request bodies: a 5 MB image grows by a third
// once base64 encoded.
const maxBodySize = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// storageStatus maps a store error to an HTTP status.
func storageStatus(err error) int {
	if errors.Is(err, database.ErrQuotaExceeded) {
		return http.StatusInsufficientStorage
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ShowPostsHandler returns the feed as JSON, optionally filtered with
// ?filter=all|media|likes and searched with ?q=.
func ShowPostsHandler(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := tweets.ParseFilter(r.URL.Query().Get("filter"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		posts, err := app.Store.LoadAll()
		if err != nil {
			app.Logger.Error("Error loading posts", zap.Error(err))
			writeError(w, storageStatus(err), "Error retrieving posts")
			return
		}
		total := len(posts)
		posts = tweets.ApplyView(posts, filter, r.URL.Query().Get("q"))

		body, err := json.Marshal(posts)
		if err != nil {
			app.Logger.Error("Error encoding posts", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error processing posts")
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		writeCached(w, r, "application/json", body)
	}
}

// PostSubmitHandler creates a post from a JSON NewPost body.
func PostSubmitHandler(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.NewPost
		if err := decodeJSON(r, w, &in); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid post: %v", err))
			return
		}
		in.Author = strings.TrimSpace(in.Author)
		in.Content = strings.TrimSpace(in.Content)
		if in.Image != nil && *in.Image == "" {
			in.Image = nil
		}

		if errs, ok := ValidatePost(in.Author, in.Content, in.Image); !ok {
			app.Logger.Debug("Post rejected", zap.Any("errors", errs))
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "Post is not valid.",
				"fields": errs,
			})
			return
		}
		if in.Avatar == "" {
			in.Avatar = utils.RandomAvatar()
		}

		post, err := app.Store.Create(in)
		if err != nil {
			app.Logger.Error("Error creating post", zap.Error(err))
			writeError(w, storageStatus(err), "Failed to submit post.")
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

// InteractHandler toggles the viewer's like on {"post_id": n}.
func InteractHandler(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var action models.PostAction
		if err := decodeJSON(r, w, &action); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		post, ok, err := app.Store.ToggleLike(action.PostID)
		if err != nil {
			app.Logger.Error("Error toggling like", zap.Int64("id", action.PostID), zap.Error(err))
			writeError(w, storageStatus(err), "Failed to update like.")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Post not found.")
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

// RetweetHandler reposts {"post_id": n} as a new post.
func RetweetHandler(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var action models.PostAction
		if err := decodeJSON(r, w, &action); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		post, ok, err := app.Store.Retweet(action.PostID)
		if err != nil {
			app.Logger.Error("Error retweeting", zap.Int64("id", action.PostID), zap.Error(err))
			writeError(w, storageStatus(err), "Failed to retweet.")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Post not found.")
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

// DeletePostHandler removes /posts/{id}. Unknown ids succeed.
func DeletePostHandler(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		if err := app.Store.Remove(id); err != nil {
			app.Logger.Error("Error deleting post", zap.Int64("id", id), zap.Error(err))
			writeError(w, storageStatus(err), "Failed to delete post.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Post deleted"})
	}
}

// ExportHandler serves the whole feed as a dated JSON download.
func ExportHandler(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := app.Store.Export(&buf); err != nil {
			app.Logger.Error("Error exporting posts", zap.Error(err))
			writeError(w, storageStatus(err), "Failed to export posts.")
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", app.Store.ExportFilename()))
		writeCached(w, r, "application/json", buf.Bytes())
	}
}
