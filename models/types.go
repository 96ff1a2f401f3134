package models

// Post is one entry of the feed. Field names are the persisted JSON layout.
type Post struct {
	ID       int64   `json:"id" yaml:"id"`
	Author   string  `json:"author" yaml:"author"`
	Content  string  `json:"content" yaml:"content"`
	Image    *string `json:"image" yaml:"image"`
	Date     string  `json:"date" yaml:"date"`
	Time     string  `json:"time" yaml:"time"`
	Likes    int     `json:"likes" yaml:"likes"`
	Retweets int     `json:"retweets" yaml:"retweets"`
	Replies  int     `json:"replies" yaml:"replies"`
	Liked    bool    `json:"liked" yaml:"liked"` // liked by the single implicit viewer
	Avatar   string  `json:"avatar" yaml:"avatar"`
}

// HasImage reports whether an image is attached.
func (p Post) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// NewPost holds the caller-supplied fields of a post. Everything else is
// assigned by the store.
type NewPost struct {
	Author  string  `json:"author"`
	Content string  `json:"content"`
	Image   *string `json:"image,omitempty"`
	Avatar  string  `json:"avatar"`
}

// PostAction is the body of like/retweet requests.
type PostAction struct {
	PostID int64 `json:"post_id"`
}
