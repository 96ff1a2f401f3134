package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"tweetfeed/app"
	"tweetfeed/models"
	"tweetfeed/tweets"
	"tweetfeed/utils"
)

//go:embed templates/index.html
var templateFS embed.FS

var homeTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type postView struct {
	ID       int64
	Author   template.HTML
	Content  template.HTML
	Image    template.URL
	When     string
	Likes    int
	Retweets int
	Replies  int
	Liked    bool
	Avatar   string
}

type homeView struct {
	Total  int
	Filter string
	Query  string
	Posts  []postView
}

func newPostView(store *tweets.Store, p models.Post) postView {
	v := postView{
		ID:       p.ID,
		Author:   template.HTML(utils.EscapeString(p.Author)),
		Content:  template.HTML(utils.EscapeString(p.Content)),
		When:     store.FormatRelativeDate(p.Date),
		Likes:    p.Likes,
		Retweets: p.Retweets,
		Replies:  p.Replies,
		Liked:    p.Liked,
		Avatar:   utils.AvatarOrDefault(p.Avatar),
	}
	// only well-formed image data URIs reach the src attribute
	if p.HasImage() {
		if _, err := utils.ParseImageDataURI(*p.Image); err == nil {
			v.Image = template.URL(*p.Image)
		}
	}
	return v
}

// HomePageHandler renders the feed page.
func HomePageHandler(app *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := tweets.ParseFilter(r.URL.Query().Get("filter"))
		if err != nil {
			filter = tweets.FilterAll
		}
		query := r.URL.Query().Get("q")

		posts, err := app.Store.LoadAll()
		if err != nil {
			app.Logger.Error("Error loading posts", zap.Error(err))
			http.Error(w, "Error rendering posts", storageStatus(err))
			return
		}

		view := homeView{Total: len(posts), Filter: string(filter), Query: query}
		for _, p := range tweets.ApplyView(posts, filter, query) {
			view.Posts = append(view.Posts, newPostView(app.Store, p))
		}

		var buf bytes.Buffer
		if err := homeTemplate.Execute(&buf, view); err != nil {
			app.Logger.Error("Error executing template", zap.Error(err))
			http.Error(w, "Error rendering posts", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}
