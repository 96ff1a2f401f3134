package tweets

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"tweetfeed/models"
)

// Filter selects a derived view of the feed.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterMedia Filter = "media"
	FilterLikes Filter = "likes"
)

// ParseFilter accepts "", "all", "media" and "likes".
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterMedia, FilterLikes:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// MediaOnly keeps posts with an image attached.
func MediaOnly(posts []models.Post) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.HasImage() {
			out = append(out, p)
		}
	}
	return out
}

// TopLiked orders a copy of posts by likes, most first. Ties keep their
// original order.
func TopLiked(posts []models.Post) []models.Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b models.Post) int {
		return cmp.Compare(b.Likes, a.Likes)
	})
	return out
}

// Search keeps posts whose author or content contains query, ignoring case.
func Search(posts []models.Post, query string) []models.Post {
	q := strings.ToLower(query)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Content), q) || strings.Contains(strings.ToLower(p.Author), q) {
			out = append(out, p)
		}
	}
	return out
}

// ApplyView applies filter and then, when query is not empty, Search.
func ApplyView(posts []models.Post, filter Filter, query string) []models.Post {
	switch filter {
	case FilterMedia:
		posts = MediaOnly(posts)
	case FilterLikes:
		posts = TopLiked(posts)
	}
	if query != "" {
		posts = Search(posts, query)
	}
	return posts
}

// ShareText is the plain text used when sharing a post.
func ShareText(p models.Post) string {
	return p.Author + ": " + p.Content
}
