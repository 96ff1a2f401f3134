package tweets

import (
	"encoding/json"
	"fmt"
	"io"

	"tweetfeed/models"
)

// ExportFilename names a backup taken today.
func (s *Store) ExportFilename() string {
	return fmt.Sprintf("tweets-backup-%s.json", s.CurrentDate())
}

// Export writes the whole feed to w as indented JSON.
func (s *Store) Export(w io.Writer) error {
	posts, err := s.LoadAll()
	if err != nil {
		return err
	}
	return WriteJSON(w, posts)
}

// WriteJSON writes posts as indented JSON without HTML escaping.
func WriteJSON(w io.Writer, posts []models.Post) error {
	if posts == nil {
		posts = []models.Post{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("export posts: %w", err)
	}
	return nil
}
