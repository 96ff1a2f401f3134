package tweets

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"tweetfeed/models"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var parseDefaults = sync.OnceValues(func() ([]models.Post, error) {
	var posts []models.Post
	if err := yaml.Unmarshal(defaultsYAML, &posts); err != nil {
		return nil, fmt.Errorf("parse default posts: %w", err)
	}
	return posts, nil
})

// DefaultPosts returns a fresh copy of the seed feed, newest first.
func DefaultPosts() []models.Post {
	posts, err := parseDefaults()
	if err != nil {
		panic(err)
	}
	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out
}
