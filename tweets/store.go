// Package tweets owns the feed: a single ordered list of posts persisted as
// one JSON document under one storage key.
//
// Every mutating call loads the whole list, changes it and writes the whole
// list back. Nothing is cached between calls, so two processes sharing the
// same storage race with last-writer-wins semantics over the entire list.
package tweets

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tweetfeed/models"
)

const (
	// DefaultKey is the storage key used when none is configured.
	DefaultKey = "tweets"

	RetweetAuthor = "You"
	RetweetPrefix = "🔁 Retweeted: "
	RetweetAvatar = "🔄"
)

// Storage is the durable key/value store the feed lives in.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Store provides synchronous CRUD over the feed.
type Store struct {
	storage Storage
	key     string
	now     func() time.Time
	logger  *zap.Logger

	// mu makes each operation run to completion before the next one starts.
	mu     sync.Mutex
	lastID int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore returns a Store keeping the feed under key in storage.
func NewStore(storage Storage, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		storage: storage,
		key:     key,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll returns the feed, newest first. An empty store yields the default
// posts, which are not written until the next mutation. Stored data that does
// not decode, or holds an entry without an id, is treated the same as an
// empty store.
func (s *Store) LoadAll() ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAll()
}

// SaveAll replaces the stored feed with posts.
func (s *Store) SaveAll(posts []models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveAll(posts)
}

// Get returns the post with id, if present.
func (s *Store) Get(id int64) (models.Post, bool, error) {
	posts, err := s.LoadAll()
	if err != nil {
		return models.Post{}, false, err
	}
	if i := indexOf(posts, id); i >= 0 {
		return posts[i], true, nil
	}
	return models.Post{}, false, nil
}

// Create prepends a new post built from in and persists the feed.
func (s *Store) Create(in models.NewPost) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(in)
}

// Remove deletes the post with id. A missing id is not an error.
func (s *Store) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadAll()
	if err != nil {
		return err
	}
	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := s.saveAll(kept); err != nil {
		return err
	}
	s.logger.Info("Post removed", zap.Int64("id", id), zap.Int("remaining", len(kept)))
	return nil
}

// ToggleLike flips the viewer's like on post id, moves its counter by one and
// returns the post as saved. A missing id is a no-op that writes nothing and
// returns ok false.
func (s *Store) ToggleLike(id int64) (post models.Post, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadAll()
	if err != nil {
		return models.Post{}, false, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		s.logger.Debug("Like on unknown post ignored", zap.Int64("id", id))
		return models.Post{}, false, nil
	}
	p := &posts[i]
	p.Liked = !p.Liked
	if p.Liked {
		p.Likes++
	} else {
		p.Likes--
	}
	if err := s.saveAll(posts); err != nil {
		return models.Post{}, false, err
	}
	s.logger.Debug("Like toggled", zap.Int64("id", id), zap.Bool("liked", p.Liked), zap.Int("likes", p.Likes))
	return *p, true, nil
}

// Retweet creates a new post quoting post id. The original is left as is.
// ok is false when id does not exist.
func (s *Store) Retweet(id int64) (post models.Post, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadAll()
	if err != nil {
		return models.Post{}, false, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return models.Post{}, false, nil
	}
	orig := posts[i]
	post, err = s.create(models.NewPost{
		Author:  RetweetAuthor,
		Content: RetweetPrefix + orig.Content,
		Image:   orig.Image,
		Avatar:  RetweetAvatar,
	})
	if err != nil {
		return models.Post{}, false, err
	}
	return post, true, nil
}

// FormatRelativeDate formats date relative to the store's clock.
func (s *Store) FormatRelativeDate(date string) string {
	return FormatRelativeDate(date, s.now())
}

// CurrentDate is today's date on the store's clock, as YYYY-MM-DD.
func (s *Store) CurrentDate() string {
	return s.now().Format(dateLayout)
}

func (s *Store) loadAll() ([]models.Post, error) {
	raw, ok, err := s.storage.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	if !ok || raw == "" {
		return DefaultPosts(), nil
	}

	var posts []models.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		s.logger.Warn("Stored posts are malformed, using defaults", zap.String("key", s.key), zap.Error(err))
		return DefaultPosts(), nil
	}
	if posts == nil {
		// a stored JSON null
		return DefaultPosts(), nil
	}
	for _, p := range posts {
		if p.ID == 0 {
			s.logger.Warn("Stored posts hold an entry without id, using defaults", zap.String("key", s.key))
			return DefaultPosts(), nil
		}
	}
	return posts, nil
}

func (s *Store) saveAll(posts []models.Post) error {
	if posts == nil {
		posts = []models.Post{}
	}
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode posts: %w", err)
	}
	if err := s.storage.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("save posts: %w", err)
	}
	return nil
}

func (s *Store) create(in models.NewPost) (models.Post, error) {
	posts, err := s.loadAll()
	if err != nil {
		return models.Post{}, err
	}

	now := s.now()
	post := models.Post{
		ID:      s.nextID(now, posts),
		Author:  in.Author,
		Content: in.Content,
		Image:   in.Image,
		Date:    now.Format(dateLayout),
		Time:    now.Format(timeLayout),
		Avatar:  in.Avatar,
	}

	posts = append([]models.Post{post}, posts...)
	if err := s.saveAll(posts); err != nil {
		return models.Post{}, err
	}
	s.logger.Info("Post created", zap.Int64("id", post.ID), zap.String("author", post.Author), zap.Bool("image", post.HasImage()))
	return post, nil
}

// nextID derives an id from the clock, bumped past every id handed out by
// this store and every id currently stored.
func (s *Store) nextID(now time.Time, posts []models.Post) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for _, p := range posts {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	s.lastID = id
	return id
}

func indexOf(posts []models.Post, id int64) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}
